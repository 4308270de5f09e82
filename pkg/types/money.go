package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var paisePerRupee = decimal.NewFromInt(100)

// PaiseFromRupees converts a rupee-denominated decimal string (admin input,
// e.g. "299.99") into integer paise. Amounts with sub-paise precision are
// rejected rather than rounded.
func PaiseFromRupees(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", value, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q must be non-negative", value)
	}
	paise := d.Mul(paisePerRupee)
	if !paise.Equal(paise.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has sub-paise precision", value)
	}
	return paise.IntPart(), nil
}

// RupeesFromPaise renders integer paise as a rupee decimal string with two
// fractional digits, for API responses and reporting.
func RupeesFromPaise(paise int64) string {
	return decimal.NewFromInt(paise).Div(paisePerRupee).StringFixed(2)
}
