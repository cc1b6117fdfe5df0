package field

import (
	"fmt"
	"math/big"

	"github.com/smallyu/go-ecc/pkg/ecc"
)

// Element is a value of GF(p), always held in [0, p).
type Element struct {
	f *Field
	v *big.Int
}

// Field returns the field e belongs to.
func (e *Element) Field() *Field {
	return e.f
}

// BigInt returns a copy of the reduced value.
func (e *Element) BigInt() *big.Int {
	return new(big.Int).Set(e.v)
}

// IsZero reports whether e == 0.
func (e *Element) IsZero() bool {
	return e.v.Sign() == 0
}

// Equal compares reduced representatives. Elements of different fields are
// never equal.
func (e *Element) Equal(o *Element) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.f.Equal(o.f) && e.v.Cmp(o.v) == 0
}

// Bytes returns the fixed-width big-endian encoding of e.
func (e *Element) Bytes() []byte {
	out := make([]byte, e.f.byteLen)
	return e.v.FillBytes(out)
}

func (e *Element) String() string {
	return fmt.Sprintf("%0*x", e.f.byteLen*2, e.v)
}

func (e *Element) check(op string, o *Element) error {
	if !e.f.Equal(o.f) {
		return ecc.Errorf(op, ecc.ErrModulusMismatch, "%x != %x", e.f.p, o.f.p)
	}
	return nil
}

func (e *Element) wrap(v *big.Int) *Element {
	return &Element{f: e.f, v: v.Mod(v, e.f.p)}
}

// Add returns e + o mod p.
func (e *Element) Add(o *Element) (*Element, error) {
	if err := e.check("field.Add", o); err != nil {
		return nil, err
	}
	return e.wrap(new(big.Int).Add(e.v, o.v)), nil
}

// Sub returns e - o mod p.
func (e *Element) Sub(o *Element) (*Element, error) {
	if err := e.check("field.Sub", o); err != nil {
		return nil, err
	}
	return e.wrap(new(big.Int).Sub(e.v, o.v)), nil
}

// Mul returns e * o mod p.
func (e *Element) Mul(o *Element) (*Element, error) {
	if err := e.check("field.Mul", o); err != nil {
		return nil, err
	}
	return e.wrap(new(big.Int).Mul(e.v, o.v)), nil
}

// Div returns e * o^-1 mod p.
func (e *Element) Div(o *Element) (*Element, error) {
	if err := e.check("field.Div", o); err != nil {
		return nil, err
	}
	inv, err := o.Inv()
	if err != nil {
		return nil, err
	}
	return e.wrap(new(big.Int).Mul(e.v, inv.v)), nil
}

// Neg returns -e mod p.
func (e *Element) Neg() *Element {
	return e.wrap(new(big.Int).Neg(e.v))
}

// Square returns e^2 mod p.
func (e *Element) Square() *Element {
	return e.wrap(new(big.Int).Mul(e.v, e.v))
}

// Pow returns e^exp mod p. A negative exponent raises the inverse of e and
// fails on zero.
func (e *Element) Pow(exp *big.Int) (*Element, error) {
	base := e
	if exp.Sign() < 0 {
		inv, err := e.Inv()
		if err != nil {
			return nil, err
		}
		base = inv
		exp = new(big.Int).Neg(exp)
	}
	return &Element{f: e.f, v: new(big.Int).Exp(base.v, exp, e.f.p)}, nil
}

// Inv returns e^-1 mod p using the extended Euclidean algorithm.
func (e *Element) Inv() (*Element, error) {
	if e.IsZero() {
		return nil, ecc.NewError("field.Inv", ecc.ErrDivisionByZero, "")
	}
	r := new(big.Int).ModInverse(e.v, e.f.p)
	if r == nil {
		// p is prime, so every non-zero value has an inverse.
		return nil, ecc.NewError("field.Inv", ecc.ErrInvariantViolation, "no inverse for non-zero value")
	}
	return &Element{f: e.f, v: r}, nil
}

// InvFermat returns e^(p-2) mod p. It always agrees with Inv.
func (e *Element) InvFermat() (*Element, error) {
	if e.IsZero() {
		return nil, ecc.NewError("field.InvFermat", ecc.ErrDivisionByZero, "")
	}
	exp := new(big.Int).Sub(e.f.p, two)
	return &Element{f: e.f, v: new(big.Int).Exp(e.v, exp, e.f.p)}, nil
}

// Sqrt returns a square root of e and true, or nil and false when e is not a
// quadratic residue.
func (e *Element) Sqrt() (*Element, bool) {
	r := new(big.Int).ModSqrt(e.v, e.f.p)
	if r == nil {
		return nil, false
	}
	return &Element{f: e.f, v: r}, true
}

// IsOdd reports the parity of the reduced value.
func (e *Element) IsOdd() bool {
	return e.v.Bit(0) == 1
}
