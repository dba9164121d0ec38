package custody

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest accepted amount, 2^128-1.
var MaxAmount = decimal.RequireFromString("340282366920938463463374607431768211455")

// ValidateAmount checks that amount is a non-negative integer no larger than MaxAmount.
func ValidateAmount(amount decimal.Decimal) error {
	switch {
	case amount.IsNegative():
		return fmt.Errorf("%w: %s is negative", ErrInvalidAmount, amount)
	case !amount.Equal(amount.Truncate(0)):
		return fmt.Errorf("%w: %s is not an integer", ErrInvalidAmount, amount)
	case amount.GreaterThan(MaxAmount):
		return fmt.Errorf("%w: %s exceeds 128 bits", ErrInvalidAmount, amount)
	}
	return nil
}
