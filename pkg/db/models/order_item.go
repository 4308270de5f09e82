package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderItem is a priced line frozen at order creation. ProductName and
// UnitPricePaise are snapshots so history survives catalog edits.
type OrderItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	UnitPricePaise int64     `gorm:"column:unit_price_paise;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	SubtotalPaise  int64     `gorm:"column:subtotal_paise;not null"`
}

// BeforeCreate assigns an ID when the caller did not.
func (i *OrderItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
