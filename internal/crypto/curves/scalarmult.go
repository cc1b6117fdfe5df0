package curves

import (
	"math/big"
	"strings"

	"github.com/smallyu/go-ecc/pkg/ecc"
)

// Strategy selects a scalar multiplication algorithm.
type Strategy int

const (
	// DoubleAndAdd scans the scalar from the most significant bit.
	DoubleAndAdd Strategy = iota
	// WNAF uses a width-w non-adjacent form with precomputed odd multiples.
	WNAF
)

// Window bounds for the w-NAF strategy.
const (
	DefaultWindow = 5
	MinWindow     = 2
	MaxWindow     = 8
)

// MultFunc computes k*P. Both strategies share this signature.
type MultFunc func(k *big.Int, p *Point) (*Point, error)

func (s Strategy) String() string {
	switch s {
	case DoubleAndAdd:
		return "double-and-add"
	case WNAF:
		return "wnaf"
	default:
		return "unknown"
	}
}

// ParseStrategy maps a configuration name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "double-and-add", "doubleandadd", "binary":
		return DoubleAndAdd, nil
	case "wnaf", "w-naf":
		return WNAF, nil
	default:
		return 0, ecc.Errorf("curves.ParseStrategy", ecc.ErrUnknownStrategy, "%q", name)
	}
}

// Func returns the multiplication function for s, or nil if s is unknown.
func (s Strategy) Func() MultFunc {
	switch s {
	case DoubleAndAdd:
		return ScalarMultDoubleAndAdd
	case WNAF:
		return ScalarMultWNAF
	default:
		return nil
	}
}

// WindowFunc is Func with an explicit w-NAF window. DoubleAndAdd ignores w.
func (s Strategy) WindowFunc(w int) MultFunc {
	switch s {
	case DoubleAndAdd:
		return ScalarMultDoubleAndAdd
	case WNAF:
		return func(k *big.Int, p *Point) (*Point, error) {
			return ScalarMultWNAFWindow(k, p, w)
		}
	default:
		return nil
	}
}

// ScalarMult computes k*P with the selected strategy.
func ScalarMult(s Strategy, k *big.Int, p *Point) (*Point, error) {
	mult := s.Func()
	if mult == nil {
		return nil, ecc.Errorf("curves.ScalarMult", ecc.ErrUnknownStrategy, "%d", int(s))
	}
	return mult(k, p)
}

// ScalarBaseMult computes k*G with the selected strategy.
func (c *Curve) ScalarBaseMult(s Strategy, k *big.Int) (*Point, error) {
	return ScalarMult(s, k, c.g)
}

// reduce normalizes k into [0, N). It reports false when the product is
// trivially the identity.
func reduce(op string, k *big.Int, p *Point) (*big.Int, bool, error) {
	if k == nil || p == nil {
		return nil, false, ecc.NewError(op, ecc.ErrInvalidScalar, "nil operand")
	}
	r := new(big.Int).Mod(k, p.curve.params.N)
	if r.Sign() == 0 || p.IsInfinity() {
		return nil, false, nil
	}
	return r, true, nil
}

// ScalarMultDoubleAndAdd computes k*P scanning k from the most significant
// bit: R = 2R, then R = R + P when the bit is set.
func ScalarMultDoubleAndAdd(k *big.Int, p *Point) (*Point, error) {
	k, ok, err := reduce("curves.ScalarMultDoubleAndAdd", k, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return p.curve.inf, nil
	}

	r := p.curve.inf
	for i := k.BitLen() - 1; i >= 0; i-- {
		if r, err = r.Double(); err != nil {
			return nil, err
		}
		if k.Bit(i) == 1 {
			if r, err = r.Add(p); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// ScalarMultWNAF computes k*P with the default window width.
func ScalarMultWNAF(k *big.Int, p *Point) (*Point, error) {
	return ScalarMultWNAFWindow(k, p, DefaultWindow)
}

// ScalarMultWNAFWindow computes k*P using a width-w NAF of k and the
// precomputed multiples P, 3P, ..., (2^(w-1)-1)P.
func ScalarMultWNAFWindow(k *big.Int, p *Point, w int) (*Point, error) {
	if w < MinWindow || w > MaxWindow {
		return nil, ecc.Errorf("curves.ScalarMultWNAF", ecc.ErrInvalidScalar, "window %d outside [%d, %d]", w, MinWindow, MaxWindow)
	}
	k, ok, err := reduce("curves.ScalarMultWNAF", k, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return p.curve.inf, nil
	}

	table, err := oddMultiples(p, w)
	if err != nil {
		return nil, err
	}

	digits := wnaf(k, w)
	r := p.curve.inf
	for i := len(digits) - 1; i >= 0; i-- {
		if r, err = r.Double(); err != nil {
			return nil, err
		}
		d := digits[i]
		switch {
		case d > 0:
			r, err = r.Add(table[(d-1)/2])
		case d < 0:
			r, err = r.Add(table[(-d-1)/2].Negate())
		}
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// oddMultiples returns [P, 3P, 5P, ..., (2^(w-1)-1)P].
func oddMultiples(p *Point, w int) ([]*Point, error) {
	size := 1 << (w - 2)
	table := make([]*Point, size)
	table[0] = p
	twoP, err := p.Double()
	if err != nil {
		return nil, err
	}
	for i := 1; i < size; i++ {
		if table[i], err = table[i-1].Add(twoP); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// wnaf returns the width-w non-adjacent form of k >= 0, least significant
// digit first. Non-zero digits are odd with |d| < 2^(w-1) and any w
// consecutive digits contain at most one non-zero.
func wnaf(k *big.Int, w int) []int {
	k = new(big.Int).Set(k)
	mod := int64(1) << w
	half := mod >> 1
	mask := big.NewInt(mod - 1)
	low := new(big.Int)

	digits := make([]int, 0, k.BitLen()+1)
	for k.Sign() > 0 {
		var d int64
		if k.Bit(0) == 1 {
			d = low.And(k, mask).Int64()
			if d >= half {
				d -= mod
			}
			k.Sub(k, big.NewInt(d))
		}
		digits = append(digits, int(d))
		k.Rsh(k, 1)
	}
	return digits
}
