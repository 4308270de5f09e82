package enums

// CheckoutStage identifies where a shopper is in the checkout flow. Stages
// only ever advance forward, except that a failed payment returns the
// session to the payment stage for a retry.
type CheckoutStage string

const (
	CheckoutStageCart      CheckoutStage = "cart"
	CheckoutStageAddress   CheckoutStage = "address"
	CheckoutStagePayment   CheckoutStage = "payment"
	CheckoutStageCompleted CheckoutStage = "completed"
)

// String implements fmt.Stringer.
func (s CheckoutStage) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CheckoutStage.
func (s CheckoutStage) IsValid() bool {
	switch s {
	case CheckoutStageCart, CheckoutStageAddress, CheckoutStagePayment, CheckoutStageCompleted:
		return true
	}
	return false
}
