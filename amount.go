package gnucashxml

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountSyntax    = errors.New("malformed amount")
	ErrZeroDenominator = errors.New("amount denominator is zero")
)

// ParseAmount parses a GnuCash rational amount of the form
// "numerator/denominator" into an exact big.Rat. Both parts are base-10
// integers of arbitrary size; no floating point is involved at any stage.
func ParseAmount(s string) (*big.Rat, error) {
	numstr, denstr, found := strings.Cut(s, "/")
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrAmountSyntax, s)
	}
	num, ok := new(big.Int).SetString(numstr, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAmountSyntax, s)
	}
	den, ok := new(big.Int).SetString(denstr, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAmountSyntax, s)
	}
	if den.Sign() == 0 {
		return nil, fmt.Errorf("%w: %q", ErrZeroDenominator, s)
	}
	return new(big.Rat).SetFrac(num, den), nil
}

// ratDecimal converts an exact rational to a decimal. The conversion is exact
// whenever the denominator divides a power of ten, which holds for every
// currency-denominated amount; otherwise the quotient is rounded at
// decimal.DivisionPrecision digits.
func ratDecimal(r *big.Rat) decimal.Decimal {
	num := decimal.NewFromBigInt(new(big.Int).Set(r.Num()), 0)
	den := decimal.NewFromBigInt(new(big.Int).Set(r.Denom()), 0)
	return num.Div(den)
}

// ValueDecimal returns the split value as a decimal in the transaction's
// currency. See ratDecimal for rounding.
func (s *Split) ValueDecimal() decimal.Decimal {
	return ratDecimal(s.Value)
}

// QuantityDecimal returns the split quantity as a decimal in the account's
// commodity. See ratDecimal for rounding.
func (s *Split) QuantityDecimal() decimal.Decimal {
	return ratDecimal(s.Quantity)
}
