package domain

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"math/big"
)

// Amount is an exact quantity of the smallest currency unit. Values are
// immutable; every operation returns a new Amount. The zero value is 0.
type Amount struct {
	v *big.Int
}

// wrap keeps zero as a nil pointer so that equal amounts are also
// reflect.DeepEqual.
func wrap(x *big.Int) Amount {
	if x == nil || x.Sign() == 0 {
		return Amount{}
	}
	return Amount{v: x}
}

func NewAmount(x int64) Amount {
	return wrap(big.NewInt(x))
}

// AmountFromBig copies x.
func AmountFromBig(x *big.Int) Amount {
	if x == nil {
		return Amount{}
	}
	return wrap(new(big.Int).Set(x))
}

// ParseAmount reads a base-10 integer.
func ParseAmount(s string) (Amount, error) {
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	return wrap(x), nil
}

func (a Amount) big() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}

// Big returns a copy of the underlying integer.
func (a Amount) Big() *big.Int { return new(big.Int).Set(a.big()) }

func (a Amount) Sign() int {
	if a.v == nil {
		return 0
	}
	return a.v.Sign()
}

func (a Amount) IsZero() bool { return a.Sign() == 0 }

func (a Amount) Cmp(b Amount) int { return a.big().Cmp(b.big()) }

func (a Amount) Equal(b Amount) bool { return a.Cmp(b) == 0 }

func (a Amount) Add(b Amount) Amount { return wrap(new(big.Int).Add(a.big(), b.big())) }

func (a Amount) Sub(b Amount) Amount { return wrap(new(big.Int).Sub(a.big(), b.big())) }

func (a Amount) Neg() Amount { return wrap(new(big.Int).Neg(a.big())) }

func (a Amount) MulInt64(n int64) Amount {
	return wrap(new(big.Int).Mul(a.big(), big.NewInt(n)))
}

// MulDivFloor returns floor(a * num / den) for non-negative a, num and den.
func (a Amount) MulDivFloor(num, den int64) Amount {
	x := new(big.Int).Mul(a.big(), big.NewInt(num))
	return wrap(x.Quo(x, big.NewInt(den)))
}

func (a Amount) String() string { return a.big().String() }

func (a Amount) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON writes a decimal string so JavaScript clients keep every digit.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts a decimal string or a bare JSON integer.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	return a.UnmarshalText(data)
}

// Value stores the amount as a NUMERIC literal.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Amount{}
		return nil
	case int64:
		*a = NewAmount(v)
		return nil
	case []byte:
		return a.UnmarshalText(v)
	case string:
		return a.UnmarshalText([]byte(v))
	}
	return fmt.Errorf("cannot scan %T into Amount", src)
}
