// Package curves implements the group law of short Weierstrass curves
// y^2 = x^3 + a*x + b over GF(p), along with scalar multiplication and the
// secp256r1 / secp256k1 parameter presets.
//
// A Curve is immutable once built and is shared by reference between every
// point and key that uses it.
package curves

import (
	"math/big"
	"strings"

	"github.com/smallyu/go-ecc/internal/crypto/field"
	"github.com/smallyu/go-ecc/pkg/ecc"
)

// Params holds the domain parameters of a short Weierstrass curve.
type Params struct {
	Name   string
	P      *big.Int // field modulus
	A, B   *big.Int // curve coefficients
	Gx, Gy *big.Int // base point
	N      *big.Int // order of the base point
	H      *big.Int // cofactor
}

func (p Params) clone() Params {
	cp := func(v *big.Int) *big.Int { return new(big.Int).Set(v) }
	return Params{
		Name: p.Name,
		P:    cp(p.P),
		A:    cp(p.A),
		B:    cp(p.B),
		Gx:   cp(p.Gx),
		Gy:   cp(p.Gy),
		N:    cp(p.N),
		H:    cp(p.H),
	}
}

// Curve is a validated set of domain parameters.
type Curve struct {
	params Params
	field  *field.Field
	a, b   *field.Element
	g      *Point
	inf    *Point
}

// NewCurve validates params and builds a Curve. The modulus must be an odd
// prime, the coefficients reduced, the curve non-singular and the base point
// on the curve.
func NewCurve(params Params) (*Curve, error) {
	if params.P == nil || params.A == nil || params.B == nil || params.Gx == nil ||
		params.Gy == nil || params.N == nil || params.H == nil {
		return nil, ecc.NewError("curves.NewCurve", ecc.ErrInvalidScalar, "missing parameter")
	}
	f, err := field.New(params.P)
	if err != nil {
		return nil, err
	}
	if !f.Contains(params.A) || !f.Contains(params.B) {
		return nil, ecc.NewError("curves.NewCurve", ecc.ErrInvalidScalar, "coefficients must be reduced modulo p")
	}
	if params.N.Cmp(big.NewInt(1)) <= 0 || params.H.Sign() <= 0 {
		return nil, ecc.NewError("curves.NewCurve", ecc.ErrInvalidScalar, "order and cofactor must be positive")
	}

	c := &Curve{
		params: params.clone(),
		field:  f,
		a:      f.NewElement(params.A),
		b:      f.NewElement(params.B),
	}

	// 4a^3 + 27b^2 != 0
	var fm formula
	a3 := fm.mul(c.a.Square(), c.a)
	disc := fm.add(fm.mul(f.NewElementInt64(4), a3), fm.mul(f.NewElementInt64(27), c.b.Square()))
	if fm.err != nil || disc.IsZero() {
		return nil, ecc.NewError("curves.NewCurve", ecc.ErrInvalidPoint, "singular curve")
	}

	c.inf = &Point{curve: c}
	g, err := c.NewPoint(params.Gx, params.Gy)
	if err != nil {
		return nil, err
	}
	c.g = g
	return c, nil
}

func mustCurve(params Params) *Curve {
	c, err := NewCurve(params)
	if err != nil {
		panic("invalid curve preset " + params.Name + ": " + err.Error())
	}
	return c
}

// hexToBig converts a hard-coded hex constant and panics on malformed input.
func hexToBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("invalid hex in source file: " + s)
	}
	return v
}

var (
	secp256r1 = mustCurve(Params{
		Name: "secp256r1",
		P:    hexToBig("ffffffff00000001000000000000000000000000ffffffffffffffffffffffff"),
		A:    hexToBig("ffffffff00000001000000000000000000000000fffffffffffffffffffffffc"),
		B:    hexToBig("5ac635d8aa3a93e7b3ebbd55769886bc651d06b0cc53b0f63bce3c3e27d2604b"),
		Gx:   hexToBig("6b17d1f2e12c4247f8bce6e563a440f277037d812deb33a0f4a13945d898c296"),
		Gy:   hexToBig("4fe342e2fe1a7f9b8ee7eb4a7c0f9e162bce33576b315ececbb6406837bf51f5"),
		N:    hexToBig("ffffffff00000000ffffffffffffffffbce6faada7179e84f3b9cac2fc632551"),
		H:    big.NewInt(1),
	})

	secp256k1 = mustCurve(Params{
		Name: "secp256k1",
		P:    hexToBig("fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f"),
		A:    big.NewInt(0),
		B:    big.NewInt(7),
		Gx:   hexToBig("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"),
		Gy:   hexToBig("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"),
		N:    hexToBig("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"),
		H:    big.NewInt(1),
	})
)

// Secp256r1 returns the NIST P-256 curve.
func Secp256r1() *Curve {
	return secp256r1
}

// Secp256k1 returns the SEC 2 secp256k1 curve.
func Secp256k1() *Curve {
	return secp256k1
}

// ByName looks up a preset. "p256" and "prime256v1" are accepted as aliases
// of secp256r1.
func ByName(name string) (*Curve, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "secp256r1", "p256", "p-256", "prime256v1":
		return secp256r1, nil
	case "secp256k1":
		return secp256k1, nil
	default:
		return nil, ecc.Errorf("curves.ByName", ecc.ErrUnknownCurve, "%q", name)
	}
}

// Names lists the preset names accepted by ByName.
func Names() []string {
	return []string{secp256r1.params.Name, secp256k1.params.Name}
}

// Name returns the curve's canonical name.
func (c *Curve) Name() string {
	return c.params.Name
}

func (c *Curve) String() string {
	return c.params.Name
}

// Params returns a copy of the domain parameters.
func (c *Curve) Params() Params {
	return c.params.clone()
}

// Field returns GF(p).
func (c *Curve) Field() *field.Field {
	return c.field
}

// N returns a copy of the group order.
func (c *Curve) N() *big.Int {
	return new(big.Int).Set(c.params.N)
}

// BitSize returns the bit length of the group order.
func (c *Curve) BitSize() int {
	return c.params.N.BitLen()
}

// ByteLen is the width of encoded field elements.
func (c *Curve) ByteLen() int {
	return c.field.ByteLen()
}

// ScalarByteLen is the width of encoded scalars modulo N.
func (c *Curve) ScalarByteLen() int {
	return (c.params.N.BitLen() + 7) / 8
}

// Generator returns the base point G.
func (c *Curve) Generator() *Point {
	return c.g
}

// Infinity returns the identity element.
func (c *Curve) Infinity() *Point {
	return c.inf
}

// Equal reports whether c and o describe the same group.
func (c *Curve) Equal(o *Curve) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil {
		return false
	}
	a, b := c.params, o.params
	return a.P.Cmp(b.P) == 0 && a.A.Cmp(b.A) == 0 && a.B.Cmp(b.B) == 0 &&
		a.Gx.Cmp(b.Gx) == 0 && a.Gy.Cmp(b.Gy) == 0 && a.N.Cmp(b.N) == 0
}

// rhs returns x^3 + a*x + b.
func (c *Curve) rhs(x *field.Element) *field.Element {
	var f formula
	x3 := f.mul(x.Square(), x)
	ax := f.mul(c.a, x)
	return f.add(f.add(x3, ax), c.b)
}

// IsOnCurve reports whether y^2 = x^3 + a*x + b (mod p). Coordinates outside
// [0, p) are rejected.
func (c *Curve) IsOnCurve(x, y *big.Int) bool {
	if !c.field.Contains(x) || !c.field.Contains(y) {
		return false
	}
	fx, fy := c.field.NewElement(x), c.field.NewElement(y)
	return fy.Square().Equal(c.rhs(fx))
}

// NewPoint validates an externally supplied affine point.
func (c *Curve) NewPoint(x, y *big.Int) (*Point, error) {
	if x == nil || y == nil {
		return nil, ecc.NewError("curves.NewPoint", ecc.ErrInvalidPoint, "missing coordinate")
	}
	if !c.IsOnCurve(x, y) {
		return nil, ecc.Errorf("curves.NewPoint", ecc.ErrInvalidPoint, "(%x, %x) on %s", x, y, c.params.Name)
	}
	return c.point(c.field.NewElement(x), c.field.NewElement(y)), nil
}

// point builds a point from trusted arithmetic without re-validating.
func (c *Curve) point(x, y *field.Element) *Point {
	return &Point{curve: c, x: x, y: y}
}

// ScalarBytes encodes k mod N as a fixed-width big-endian byte string.
func (c *Curve) ScalarBytes(k *big.Int) []byte {
	out := make([]byte, c.ScalarByteLen())
	return new(big.Int).Mod(k, c.params.N).FillBytes(out)
}

// ScalarFromBytes decodes a fixed-width scalar and rejects values >= N.
func (c *Curve) ScalarFromBytes(b []byte) (*big.Int, error) {
	if len(b) != c.ScalarByteLen() {
		return nil, ecc.Errorf("curves.ScalarFromBytes", ecc.ErrInvalidEncoding, "expected %d bytes, got %d", c.ScalarByteLen(), len(b))
	}
	k := new(big.Int).SetBytes(b)
	if k.Cmp(c.params.N) >= 0 {
		return nil, ecc.NewError("curves.ScalarFromBytes", ecc.ErrInvalidScalar, "scalar >= group order")
	}
	return k, nil
}

// InScalarRange reports whether 1 <= k <= N-1.
func (c *Curve) InScalarRange(k *big.Int) bool {
	return k != nil && k.Sign() > 0 && k.Cmp(c.params.N) < 0
}
