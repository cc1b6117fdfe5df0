// Package field implements arithmetic in the prime field GF(p).
//
// Elements are immutable: every operation returns a fresh Element whose value
// is reduced into [0, p). Elements remember the Field they were created from
// and binary operations refuse operands from a field with a different modulus.
package field

import (
	"math/big"

	"github.com/smallyu/go-ecc/pkg/ecc"
)

var two = big.NewInt(2)

// Field represents GF(p) for a prime p. It is read-only after construction
// and may be shared freely.
type Field struct {
	p       *big.Int
	byteLen int
}

// New returns the field of integers modulo p. p must be an odd prime.
func New(p *big.Int) (*Field, error) {
	if p == nil || p.Cmp(two) <= 0 || p.Bit(0) == 0 || !p.ProbablyPrime(20) {
		return nil, ecc.NewError("field.New", ecc.ErrInvalidScalar, "modulus must be an odd prime")
	}
	return &Field{
		p:       new(big.Int).Set(p),
		byteLen: (p.BitLen() + 7) / 8,
	}, nil
}

// Modulus returns a copy of p.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.p)
}

// BitLen returns the bit length of p.
func (f *Field) BitLen() int {
	return f.p.BitLen()
}

// ByteLen returns the fixed width, in bytes, of encoded elements.
func (f *Field) ByteLen() int {
	return f.byteLen
}

// Equal reports whether f and g have the same modulus.
func (f *Field) Equal(g *Field) bool {
	if f == g {
		return true
	}
	if f == nil || g == nil {
		return false
	}
	return f.p.Cmp(g.p) == 0
}

// NewElement returns v mod p. Negative and out of range values are reduced.
func (f *Field) NewElement(v *big.Int) *Element {
	r := new(big.Int).Mod(v, f.p)
	return &Element{f: f, v: r}
}

// NewElementInt64 is NewElement for small constants.
func (f *Field) NewElementInt64(v int64) *Element {
	return f.NewElement(big.NewInt(v))
}

// Zero returns the additive identity.
func (f *Field) Zero() *Element {
	return &Element{f: f, v: new(big.Int)}
}

// One returns the multiplicative identity.
func (f *Field) One() *Element {
	return &Element{f: f, v: big.NewInt(1)}
}

// ElementFromBytes decodes a fixed-width big-endian element. The encoding
// must be exactly ByteLen bytes and canonical (value < p).
func (f *Field) ElementFromBytes(b []byte) (*Element, error) {
	if len(b) != f.byteLen {
		return nil, ecc.Errorf("field.ElementFromBytes", ecc.ErrInvalidEncoding, "expected %d bytes, got %d", f.byteLen, len(b))
	}
	v := new(big.Int).SetBytes(b)
	if v.Cmp(f.p) >= 0 {
		return nil, ecc.NewError("field.ElementFromBytes", ecc.ErrInvalidEncoding, "value not reduced modulo p")
	}
	return &Element{f: f, v: v}, nil
}

// Contains reports whether v is a canonical representative, 0 <= v < p.
func (f *Field) Contains(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(f.p) < 0
}
