package curves

import (
	"fmt"
	"math/big"

	"github.com/smallyu/go-ecc/internal/crypto/field"
	"github.com/smallyu/go-ecc/pkg/ecc"
)

// Point is either the point at infinity or an affine point (x, y) on its
// curve. Points are immutable.
type Point struct {
	curve *Curve
	x, y  *field.Element // both nil for the point at infinity
}

// Curve returns the curve p belongs to.
func (p *Point) Curve() *Curve {
	return p.curve
}

// IsInfinity reports whether p is the identity element.
func (p *Point) IsInfinity() bool {
	return p.x == nil
}

// X returns a copy of the affine x coordinate, or nil for infinity.
func (p *Point) X() *big.Int {
	if p.IsInfinity() {
		return nil
	}
	return p.x.BigInt()
}

// Y returns a copy of the affine y coordinate, or nil for infinity.
func (p *Point) Y() *big.Int {
	if p.IsInfinity() {
		return nil
	}
	return p.y.BigInt()
}

// Equal reports whether p and q are the same point of the same curve.
func (p *Point) Equal(q *Point) bool {
	if p == nil || q == nil {
		return p == q
	}
	if !p.curve.Equal(q.curve) {
		return false
	}
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() == q.IsInfinity()
	}
	return p.x.Equal(q.x) && p.y.Equal(q.y)
}

func (p *Point) String() string {
	if p.IsInfinity() {
		return p.curve.Name() + "(inf)"
	}
	return fmt.Sprintf("%s(%s, %s)", p.curve.Name(), p.x, p.y)
}

// Negate returns -p. Infinity is its own negation.
func (p *Point) Negate() *Point {
	if p.IsInfinity() {
		return p
	}
	return p.curve.point(p.x, p.y.Neg())
}

// Add returns p + q.
func (p *Point) Add(q *Point) (*Point, error) {
	if !p.curve.Equal(q.curve) {
		return nil, ecc.Errorf("curves.Add", ecc.ErrCurveMismatch, "%s + %s", p.curve.Name(), q.curve.Name())
	}
	if p.IsInfinity() {
		return q, nil
	}
	if q.IsInfinity() {
		return p, nil
	}

	if p.x.Equal(q.x) {
		if p.y.Equal(q.y.Neg()) {
			// vertical line, also covers doubling a point with y == 0
			return p.curve.inf, nil
		}
		if !p.y.Equal(q.y) {
			return nil, ecc.NewError("curves.Add", ecc.ErrInvariantViolation, "equal x with unrelated y")
		}
		return p.double()
	}

	// lambda = (Qy - Py) / (Qx - Px)
	var f formula
	lambda := f.div(f.sub(q.y, p.y), f.sub(q.x, p.x))
	return p.chord("curves.Add", &f, lambda, q.x)
}

// Double returns 2p.
func (p *Point) Double() (*Point, error) {
	if p.IsInfinity() {
		return p, nil
	}
	if p.y.IsZero() {
		return p.curve.inf, nil
	}
	return p.double()
}

func (p *Point) double() (*Point, error) {
	// lambda = (3x^2 + a) / (2y)
	var f formula
	c := p.curve
	num := f.add(f.mul(c.field.NewElementInt64(3), p.x.Square()), c.a)
	den := f.add(p.y, p.y)
	lambda := f.div(num, den)
	return p.chord("curves.Double", &f, lambda, p.x)
}

// chord finishes the group law: x3 = lambda^2 - Px - Qx, y3 = lambda(Px - x3) - Py.
func (p *Point) chord(op string, f *formula, lambda, qx *field.Element) (*Point, error) {
	x3 := f.sub(f.sub(f.square(lambda), p.x), qx)
	y3 := f.sub(f.mul(lambda, f.sub(p.x, x3)), p.y)
	if f.err != nil {
		return nil, ecc.Errorf(op, ecc.ErrInvariantViolation, "%v", f.err)
	}
	return p.curve.point(x3, y3), nil
}

// formula chains field operations and keeps the first error. Once an error
// is recorded every further step is a no-op returning nil.
type formula struct {
	err error
}

func (f *formula) step(a, b *field.Element, op func(*field.Element, *field.Element) (*field.Element, error)) *field.Element {
	if f.err != nil {
		return nil
	}
	r, err := op(a, b)
	if err != nil {
		f.err = err
		return nil
	}
	return r
}

func (f *formula) add(a, b *field.Element) *field.Element {
	return f.step(a, b, (*field.Element).Add)
}

func (f *formula) sub(a, b *field.Element) *field.Element {
	return f.step(a, b, (*field.Element).Sub)
}

func (f *formula) mul(a, b *field.Element) *field.Element {
	return f.step(a, b, (*field.Element).Mul)
}

func (f *formula) div(a, b *field.Element) *field.Element {
	return f.step(a, b, (*field.Element).Div)
}

func (f *formula) square(a *field.Element) *field.Element {
	if f.err != nil {
		return nil
	}
	return a.Square()
}
