package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopease/shopease-backend/pkg/enums"
)

// Order is a placed order with its payment bookkeeping. TotalPaise is the
// sum of line item subtotals captured at creation time; later catalog price
// edits never change it.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status            enums.OrderStatus   `gorm:"column:status;not null;default:pending"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;not null;default:created"`
	TotalPaise        int64               `gorm:"column:total_paise;not null"`
	Currency          string              `gorm:"column:currency;not null;default:INR"`
	GatewayOrderRef   string              `gorm:"column:gateway_order_ref;not null;uniqueIndex"`
	GatewayPaymentRef *string             `gorm:"column:gateway_payment_ref"`
	ShippingAddress   string              `gorm:"column:shipping_address;not null"`
	ShippingCity      string              `gorm:"column:shipping_city;not null"`
	ShippingState     *string             `gorm:"column:shipping_state"`
	ShippingPincode   string              `gorm:"column:shipping_pincode;not null"`
	ShippingPhone     string              `gorm:"column:shipping_phone;not null"`
	PaidAt            *time.Time          `gorm:"column:paid_at"`
	Items             []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an ID when the caller did not.
func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
