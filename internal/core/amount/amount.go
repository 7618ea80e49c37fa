// Package amount provides fixed-width unsigned integer arithmetic for
// ledger accounting. Values are bounded by 2^96-1; every operation that
// could leave that range reports an explicit error instead of wrapping.
package amount

import (
	"errors"
	"fmt"
	"math/big"
)

// FracDenominator is the implied denominator for proportional fractions
// (fees, discounts). A fraction of 25_000_000_000_000_000 is 2.5%.
const FracDenominator = 1_000_000_000_000_000_000

var (
	// ErrOverflow indicates a result above the 96-bit bound.
	ErrOverflow = errors.New("amount: value exceeds 96-bit bound")

	// ErrUnderflow indicates a subtraction below zero.
	ErrUnderflow = errors.New("amount: value below zero")
)

// maxValue is 2^96 - 1.
var maxValue = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 96), big.NewInt(1))

var fracDen = new(big.Int).SetUint64(FracDenominator)

// Amount is an unsigned integer in [0, 2^96-1].
// The zero value is zero and ready to use. Amounts are immutable;
// all operations return new values.
type Amount struct {
	i big.Int
}

// Zero returns the zero amount.
func Zero() Amount {
	return Amount{}
}

// Max returns the largest representable amount (2^96 - 1).
func Max() Amount {
	var a Amount
	a.i.Set(maxValue)
	return a
}

// FromUint64 converts u to an Amount.
func FromUint64(u uint64) Amount {
	var a Amount
	a.i.SetUint64(u)
	return a
}

// Parse converts a base-10 string to an Amount.
func Parse(s string) (Amount, error) {
	var a Amount
	if _, ok := a.i.SetString(s, 10); !ok {
		return Amount{}, fmt.Errorf("amount: malformed value %q", s)
	}
	if a.i.Sign() < 0 {
		return Amount{}, ErrUnderflow
	}
	if a.i.Cmp(maxValue) > 0 {
		return Amount{}, ErrOverflow
	}
	return a, nil
}

// MustParse is Parse that panics on malformed input. For fixed constants
// in configuration defaults and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a+b, or ErrOverflow if the sum leaves the 96-bit range.
func (a Amount) Add(b Amount) (Amount, error) {
	var r Amount
	r.i.Add(&a.i, &b.i)
	if r.i.Cmp(maxValue) > 0 {
		return Amount{}, ErrOverflow
	}
	return r, nil
}

// Sub returns a-b, or ErrUnderflow if b > a.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.i.Cmp(&b.i) < 0 {
		return Amount{}, ErrUnderflow
	}
	var r Amount
	r.i.Sub(&a.i, &b.i)
	return r, nil
}

// Cmp returns -1, 0, or 1 comparing a to b.
func (a Amount) Cmp(b Amount) int {
	return a.i.Cmp(&b.i)
}

// IsZero reports whether a is zero.
func (a Amount) IsZero() bool {
	return a.i.Sign() == 0
}

// Min returns the smaller of a and b.
func (a Amount) Min(b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// MulDiv returns a*num/den with floor rounding.
// Returns ErrOverflow if the result leaves the 96-bit range.
func (a Amount) MulDiv(num, den uint64) (Amount, error) {
	if den == 0 {
		return Amount{}, fmt.Errorf("amount: division by zero")
	}
	var r Amount
	r.i.Mul(&a.i, new(big.Int).SetUint64(num))
	r.i.Quo(&r.i, new(big.Int).SetUint64(den))
	if r.i.Cmp(maxValue) > 0 {
		return Amount{}, ErrOverflow
	}
	return r, nil
}

// MulFrac returns a*frac/FracDenominator with floor rounding.
// frac must not exceed FracDenominator, so the result always fits.
func (a Amount) MulFrac(frac uint64) Amount {
	if frac > FracDenominator {
		frac = FracDenominator
	}
	var r Amount
	r.i.Mul(&a.i, new(big.Int).SetUint64(frac))
	r.i.Quo(&r.i, fracDen)
	return r
}

// Div returns a/d with floor rounding.
func (a Amount) Div(d uint64) Amount {
	if d == 0 {
		return Amount{}
	}
	var r Amount
	r.i.Quo(&a.i, new(big.Int).SetUint64(d))
	return r
}

// Mod returns a mod d.
func (a Amount) Mod(d uint64) uint64 {
	if d == 0 {
		return 0
	}
	var m big.Int
	m.Mod(&a.i, new(big.Int).SetUint64(d))
	return m.Uint64()
}

// Mul returns a*m, or ErrOverflow if the product leaves the 96-bit range.
func (a Amount) Mul(m uint64) (Amount, error) {
	var r Amount
	r.i.Mul(&a.i, new(big.Int).SetUint64(m))
	if r.i.Cmp(maxValue) > 0 {
		return Amount{}, ErrOverflow
	}
	return r, nil
}

// BigInt returns a copy of the underlying integer.
func (a Amount) BigInt() *big.Int {
	return new(big.Int).Set(&a.i)
}

// String returns the base-10 representation.
func (a Amount) String() string {
	return a.i.String()
}

// MarshalJSON encodes the amount as a base-10 JSON string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.i.String() + `"`), nil
}

// UnmarshalJSON decodes a base-10 JSON string or number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
