// Package schnorr implements a non-interactive Schnorr proof of knowledge of
// a discrete logarithm, used as proof of possession for exported public keys.
package schnorr

import (
	crand "crypto/rand"
	"crypto/sha256"
	"io"
	"math/big"

	"github.com/smallyu/go-ecc/internal/crypto/curves"
	"github.com/smallyu/go-ecc/pkg/ecc"
)

// Proof proves knowledge of x such that X = x * G.
type Proof struct {
	R *curves.Point // Commitment R = k * G
	S *big.Int      // Response s = k + e * x
}

// Prove generates a proof for the secret x of X = x*G. A nil reader selects
// crypto/rand.
func Prove(x *big.Int, X *curves.Point, rand io.Reader) (*Proof, error) {
	if x == nil || X == nil || X.IsInfinity() {
		return nil, ecc.NewError("schnorr.Prove", ecc.ErrInvalidScalar, "inputs cannot be nil")
	}
	if rand == nil {
		rand = crand.Reader
	}
	c := X.Curve()
	n := c.N()

	// 1. Nonce k in [1, n-1]
	k, err := crand.Int(rand, new(big.Int).Sub(n, big.NewInt(1)))
	if err != nil {
		return nil, ecc.Errorf("schnorr.Prove", ecc.ErrInvalidScalar, "nonce: %v", err)
	}
	k.Add(k, big.NewInt(1))

	// 2. R = k * G
	R, err := c.ScalarBaseMult(curves.WNAF, k)
	if err != nil {
		return nil, err
	}

	// 3. e = H(curve, X, R), s = k + e * x mod n
	e := challenge(X, R)
	s := new(big.Int).Mul(e, x)
	s.Add(s, k)
	s.Mod(s, n)

	return &Proof{R: R, S: s}, nil
}

// Verify checks s*G == R + e*X. A malformed proof yields false; an error means
// the proof and key live on different curves.
func (p *Proof) Verify(X *curves.Point) (bool, error) {
	if p == nil || p.R == nil || p.S == nil || X == nil || X.IsInfinity() {
		return false, nil
	}
	c := X.Curve()
	if !c.Equal(p.R.Curve()) {
		return false, ecc.NewError("schnorr.Verify", ecc.ErrCurveMismatch, "proof and key on different curves")
	}
	if p.S.Sign() < 0 || p.S.Cmp(c.N()) >= 0 || p.R.IsInfinity() {
		return false, nil
	}

	e := challenge(X, p.R)
	lhs, err := c.ScalarBaseMult(curves.WNAF, p.S)
	if err != nil {
		return false, err
	}
	eX, err := curves.ScalarMult(curves.WNAF, e, X)
	if err != nil {
		return false, err
	}
	rhs, err := p.R.Add(eX)
	if err != nil {
		return false, err
	}
	return lhs.Equal(rhs), nil
}

// Bytes encodes the proof as compressed R followed by fixed-width s.
func (p *Proof) Bytes() []byte {
	c := p.R.Curve()
	return append(p.R.CompressedBytes(), c.ScalarBytes(p.S)...)
}

// ParseProof decodes the output of Bytes.
func ParseProof(c *curves.Curve, b []byte) (*Proof, error) {
	rl := 1 + c.ByteLen()
	if len(b) != rl+c.ScalarByteLen() {
		return nil, ecc.Errorf("schnorr.ParseProof", ecc.ErrInvalidEncoding, "expected %d bytes, got %d", rl+c.ScalarByteLen(), len(b))
	}
	R, err := c.PointFromBytes(b[:rl])
	if err != nil {
		return nil, err
	}
	s, err := c.ScalarFromBytes(b[rl:])
	if err != nil {
		return nil, err
	}
	return &Proof{R: R, S: s}, nil
}

// challenge computes H(curve name, X, R) mod n over compressed encodings.
func challenge(X, R *curves.Point) *big.Int {
	c := X.Curve()
	h := sha256.New()
	h.Write([]byte(c.Name()))
	h.Write(X.CompressedBytes())
	h.Write(R.CompressedBytes())

	e := new(big.Int).SetBytes(h.Sum(nil))
	return e.Mod(e, c.N())
}
