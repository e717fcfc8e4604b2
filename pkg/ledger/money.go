package ledger

import (
	"math"

	"github.com/shopspring/decimal"
)

var maxCents = decimal.NewFromInt(math.MaxInt64)

// CentsFromDecimal converts an API-level amount into integer cents. Amounts
// must be strictly positive and carry at most two fraction digits.
func CentsFromDecimal(d decimal.Decimal) (int64, error) {
	if d.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	shifted := d.Shift(2)
	if !shifted.IsInteger() || shifted.Cmp(maxCents) > 0 {
		return 0, ErrInvalidAmount
	}
	return shifted.IntPart(), nil
}

// DecimalFromCents formats a stored cents value for API responses.
func DecimalFromCents(c int64) decimal.Decimal {
	return decimal.NewFromInt(c).Shift(-2)
}
