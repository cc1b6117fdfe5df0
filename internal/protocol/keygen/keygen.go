// Package keygen creates and decodes ECDSA/ECDH key pairs.
package keygen

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/smallyu/go-ecc/internal/crypto/curves"
	"github.com/smallyu/go-ecc/pkg/ecc"
)

// maxSampleAttempts bounds rejection sampling. With n close to 2^bitlen the
// probability of hitting it is negligible.
const maxSampleAttempts = 128

// KeyPair holds a private scalar d in [1, n-1] and its public point d*G.
type KeyPair struct {
	curve *curves.Curve
	d     *big.Int
	pub   *curves.Point
}

// GenerateKey samples a private key uniformly from [1, n-1] using rand. A
// nil reader selects crypto/rand.
func GenerateKey(curve *curves.Curve, r io.Reader) (*KeyPair, error) {
	if curve == nil {
		return nil, ecc.NewError("keygen.GenerateKey", ecc.ErrInvalidScalar, "nil curve")
	}
	if r == nil {
		r = rand.Reader
	}

	n := curve.N()
	buf := make([]byte, curve.ScalarByteLen())
	excess := uint(len(buf)*8 - n.BitLen())
	for i := 0; i < maxSampleAttempts; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, ecc.Errorf("keygen.GenerateKey", ecc.ErrInvalidScalar, "read randomness: %v", err)
		}
		d := new(big.Int).SetBytes(buf)
		d.Rsh(d, excess)
		if curve.InScalarRange(d) {
			return NewKeyPair(curve, d)
		}
	}
	return nil, ecc.NewError("keygen.GenerateKey", ecc.ErrInvalidScalar, "rejection sampling exhausted")
}

// NewKeyPair derives the public point for a known private scalar.
func NewKeyPair(curve *curves.Curve, d *big.Int) (*KeyPair, error) {
	if curve == nil {
		return nil, ecc.NewError("keygen.NewKeyPair", ecc.ErrInvalidScalar, "nil curve")
	}
	if !curve.InScalarRange(d) {
		return nil, ecc.NewError("keygen.NewKeyPair", ecc.ErrInvalidScalar, "private key outside [1, n-1]")
	}
	pub, err := curve.ScalarBaseMult(curves.WNAF, d)
	if err != nil {
		return nil, err
	}
	return &KeyPair{curve: curve, d: new(big.Int).Set(d), pub: pub}, nil
}

// KeyPairFromBytes decodes a fixed-width big-endian private scalar.
func KeyPairFromBytes(curve *curves.Curve, b []byte) (*KeyPair, error) {
	if curve == nil {
		return nil, ecc.NewError("keygen.KeyPairFromBytes", ecc.ErrInvalidScalar, "nil curve")
	}
	d, err := curve.ScalarFromBytes(b)
	if err != nil {
		return nil, err
	}
	return NewKeyPair(curve, d)
}

// Curve returns the curve the key belongs to.
func (k *KeyPair) Curve() *curves.Curve { return k.curve }

// D returns a copy of the private scalar.
func (k *KeyPair) D() *big.Int { return new(big.Int).Set(k.d) }

// Public returns the public point.
func (k *KeyPair) Public() *curves.Point { return k.pub }

// Bytes encodes the private scalar as fixed-width big-endian bytes.
func (k *KeyPair) Bytes() []byte { return k.curve.ScalarBytes(k.d) }

// PublicBytes is the uncompressed SEC1 encoding of the public point.
func (k *KeyPair) PublicBytes() []byte { return k.pub.Bytes() }
