package types

import "strings"

// ShippingAddress is the destination captured during checkout. City and
// pincode are validated against the delivery zone allow-list; the rest is
// free text.
type ShippingAddress struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
}

// Normalize trims whitespace on every field in place.
func (a *ShippingAddress) Normalize() {
	a.Address = strings.TrimSpace(a.Address)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Pincode = strings.TrimSpace(a.Pincode)
	a.Phone = strings.TrimSpace(a.Phone)
}

// Equal reports whether two addresses match after normalization, with the
// city compared case-insensitively. Keeps address resubmission idempotent.
func (a ShippingAddress) Equal(other ShippingAddress) bool {
	a.Normalize()
	other.Normalize()
	return strings.EqualFold(a.City, other.City) &&
		a.Address == other.Address &&
		a.State == other.State &&
		a.Pincode == other.Pincode &&
		a.Phone == other.Phone
}
