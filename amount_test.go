package gnucashxml

import (
	"errors"
	"math/big"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *big.Rat
		err  error
	}{
		{"integer result", "6/3", big.NewRat(2, 1), nil},
		{"cents", "-2999/100", big.NewRat(-2999, 100), nil},
		{"non-terminating", "1/3", big.NewRat(1, 3), nil},
		{"negative denominator", "1/-4", big.NewRat(-1, 4), nil},
		{"explicit plus", "+5/2", big.NewRat(5, 2), nil},
		{
			"bigger than int64",
			"36893488147419103232/2", // 2^65 / 2
			new(big.Rat).SetInt(new(big.Int).Lsh(big.NewInt(1), 64)),
			nil,
		},
		{"zero denominator", "5/0", nil, ErrZeroDenominator},
		{"non-numeric numerator", "abc/2", nil, ErrAmountSyntax},
		{"two separators", "5/2/1", nil, ErrAmountSyntax},
		{"no separator", "5", nil, ErrAmountSyntax},
		{"empty", "", nil, ErrAmountSyntax},
		{"missing numerator", "/2", nil, ErrAmountSyntax},
		{"missing denominator", "5/", nil, ErrAmountSyntax},
		{"float numerator", "5.5/10", nil, ErrAmountSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("ParseAmount(%q) error = %v, want %v", tt.in, err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) failed: %v", tt.in, err)
			}
			if got.Cmp(tt.want) != 0 {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got.RatString(), tt.want.RatString())
			}
		})
	}
}

// A third times three must be exactly one; any binary rounding anywhere in
// the pipeline would break this.
func TestParseAmountExact(t *testing.T) {
	third, err := ParseAmount("1/3")
	if err != nil {
		t.Fatalf("ParseAmount(1/3) failed: %v", err)
	}
	product := new(big.Rat).Mul(third, big.NewRat(3, 1))
	if product.Cmp(big.NewRat(1, 1)) != 0 {
		t.Errorf("1/3 * 3 = %s, want 1", product.RatString())
	}
}

func TestRatDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"-2999/100", "-29.99"},
		{"6/3", "2"},
		{"1/8", "0.125"},
	}
	for _, tt := range tests {
		r, err := ParseAmount(tt.in)
		if err != nil {
			t.Fatalf("ParseAmount(%q) failed: %v", tt.in, err)
		}
		if got := ratDecimal(r); got.String() != tt.want {
			t.Errorf("ratDecimal(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
