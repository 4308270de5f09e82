package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopease/shopease-backend/pkg/db/models"
	"github.com/shopease/shopease-backend/pkg/enums"
	"github.com/shopease/shopease-backend/pkg/types"
)

// OrderItemDTO is a frozen line on a placed order.
type OrderItemDTO struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   string    `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	Subtotal    string    `json:"subtotal"`
}

// OrderDTO is the transport shape for an order. Monetary fields are rupee
// strings derived from the stored paise amounts.
type OrderDTO struct {
	ID                uuid.UUID              `json:"id"`
	UserID            uuid.UUID              `json:"user_id"`
	Status            enums.OrderStatus      `json:"status"`
	PaymentStatus     enums.PaymentStatus    `json:"payment_status"`
	Total             string                 `json:"total"`
	TotalPaise        int64                  `json:"total_paise"`
	Currency          string                 `json:"currency"`
	GatewayOrderRef   string                 `json:"gateway_order_ref"`
	GatewayPaymentRef *string                `json:"gateway_payment_ref,omitempty"`
	ShippingAddress   types.ShippingAddress  `json:"shipping_address"`
	Items             []OrderItemDTO         `json:"items"`
	PaidAt            *time.Time             `json:"paid_at,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   types.RupeesFromPaise(item.UnitPricePaise),
			Quantity:    item.Quantity,
			Subtotal:    types.RupeesFromPaise(item.SubtotalPaise),
		})
	}

	state := ""
	if o.ShippingState != nil {
		state = *o.ShippingState
	}

	return &OrderDTO{
		ID:                o.ID,
		UserID:            o.UserID,
		Status:            o.Status,
		PaymentStatus:     o.PaymentStatus,
		Total:             types.RupeesFromPaise(o.TotalPaise),
		TotalPaise:        o.TotalPaise,
		Currency:          o.Currency,
		GatewayOrderRef:   o.GatewayOrderRef,
		GatewayPaymentRef: o.GatewayPaymentRef,
		ShippingAddress: types.ShippingAddress{
			Address: o.ShippingAddress,
			City:    o.ShippingCity,
			State:   state,
			Pincode: o.ShippingPincode,
			Phone:   o.ShippingPhone,
		},
		Items:     items,
		PaidAt:    o.PaidAt,
		CreatedAt: o.CreatedAt,
	}
}

func FromModels(items []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(items))
	for i := range items {
		out = append(out, *FromModel(&items[i]))
	}
	return out
}
