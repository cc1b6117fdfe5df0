// Package sign implements deterministic ECDSA over SHA-256 with RFC 6979
// nonces and low-S normalization.
//
// Signing runs a small state machine per call:
// hash, derive nonce, compute point, compute s, normalize, emit. A rejected
// nonce candidate loops back to nonce derivation on the same generator.
package sign

import (
	"crypto/sha256"
	"math/big"

	"github.com/smallyu/go-ecc/internal/crypto/curves"
	"github.com/smallyu/go-ecc/internal/log"
	"github.com/smallyu/go-ecc/internal/protocol/keygen"
	"github.com/smallyu/go-ecc/pkg/ecc"
)

// Signer signs and verifies with a chosen scalar multiplication strategy.
// A Signer holds no per-call state and is safe for concurrent use.
type Signer struct {
	strategy curves.Strategy
	window   int
	log      log.Logger
}

// NewSigner returns a Signer using w-NAF at the default window and a no-op
// logger.
func NewSigner() *Signer {
	return &Signer{strategy: curves.WNAF, window: curves.DefaultWindow, log: log.NewNop()}
}

// WithStrategy returns a copy of the signer using strategy s.
func (sg *Signer) WithStrategy(s curves.Strategy) *Signer {
	cp := *sg
	cp.strategy = s
	return &cp
}

// WithWindow returns a copy of the signer using w-NAF window w.
func (sg *Signer) WithWindow(w int) *Signer {
	cp := *sg
	cp.window = w
	return &cp
}

// WithLogger returns a copy of the signer logging to l.
func (sg *Signer) WithLogger(l log.Logger) *Signer {
	cp := *sg
	if l == nil {
		l = log.NewNop()
	}
	cp.log = l.Named("sign")
	return &cp
}

// Strategy returns the configured multiplication strategy.
func (sg *Signer) Strategy() curves.Strategy { return sg.strategy }

func (sg *Signer) mult() (curves.MultFunc, error) {
	m := sg.strategy.WindowFunc(sg.window)
	if m == nil {
		return nil, ecc.Errorf("sign.Signer", ecc.ErrUnknownStrategy, "%d", int(sg.strategy))
	}
	return m, nil
}

var defaultSigner = NewSigner()

// Sign signs SHA-256(msg) with key.
func Sign(key *keygen.KeyPair, msg []byte) (*Signature, error) {
	return defaultSigner.Sign(key, msg)
}

// SignDigest signs a precomputed SHA-256 digest.
func SignDigest(key *keygen.KeyPair, digest []byte) (*Signature, error) {
	return defaultSigner.SignDigest(key, digest)
}

// Verify checks sig over SHA-256(msg) against pub.
func Verify(pub *curves.Point, msg []byte, sig *Signature) (bool, error) {
	return defaultSigner.Verify(pub, msg, sig)
}

// VerifyDigest checks sig over a precomputed SHA-256 digest.
func VerifyDigest(pub *curves.Point, digest []byte, sig *Signature) (bool, error) {
	return defaultSigner.VerifyDigest(pub, digest, sig)
}

// Sign signs SHA-256(msg) with key. The result is deterministic and low-S.
func (sg *Signer) Sign(key *keygen.KeyPair, msg []byte) (*Signature, error) {
	if key == nil {
		return nil, ecc.NewError("sign.Sign", ecc.ErrInvalidScalar, "nil key")
	}
	return newState(sg, key, msg, nil).run()
}

// SignDigest signs a precomputed 32-byte SHA-256 digest.
func (sg *Signer) SignDigest(key *keygen.KeyPair, digest []byte) (*Signature, error) {
	if key == nil {
		return nil, ecc.NewError("sign.SignDigest", ecc.ErrInvalidScalar, "nil key")
	}
	if len(digest) != sha256.Size {
		return nil, ecc.Errorf("sign.SignDigest", ecc.ErrInvalidEncoding, "digest must be %d bytes, got %d", sha256.Size, len(digest))
	}
	return newState(sg, key, nil, digest).run()
}

// Verify checks sig over SHA-256(msg). A well-formed but wrong signature
// yields false with a nil error; an error means the inputs were malformed.
func (sg *Signer) Verify(pub *curves.Point, msg []byte, sig *Signature) (bool, error) {
	h := sha256.Sum256(msg)
	return sg.verify("sign.Verify", pub, h[:], sig)
}

// VerifyDigest is Verify over a precomputed 32-byte SHA-256 digest.
func (sg *Signer) VerifyDigest(pub *curves.Point, digest []byte, sig *Signature) (bool, error) {
	if len(digest) != sha256.Size {
		return false, ecc.Errorf("sign.VerifyDigest", ecc.ErrInvalidEncoding, "digest must be %d bytes, got %d", sha256.Size, len(digest))
	}
	return sg.verify("sign.VerifyDigest", pub, digest, sig)
}

func (sg *Signer) verify(op string, pub *curves.Point, digest []byte, sig *Signature) (bool, error) {
	if pub == nil {
		return false, ecc.NewError(op, ecc.ErrInvalidPoint, "nil public key")
	}
	if sig == nil {
		return false, ecc.NewError(op, ecc.ErrInvalidScalar, "nil signature")
	}
	if pub.IsInfinity() {
		return false, ecc.NewError(op, ecc.ErrInvalidPoint, "public key is the point at infinity")
	}

	c := pub.Curve()
	if !c.InScalarRange(sig.R) || !c.InScalarRange(sig.S) {
		return false, nil
	}

	n := c.N()
	z := hashToInt(digest, n)
	w := new(big.Int).ModInverse(sig.S, n)
	u1 := new(big.Int).Mul(z, w)
	u1.Mod(u1, n)
	u2 := new(big.Int).Mul(sig.R, w)
	u2.Mod(u2, n)

	mult, err := sg.mult()
	if err != nil {
		return false, err
	}
	p1, err := mult(u1, c.Generator())
	if err != nil {
		return false, err
	}
	p2, err := mult(u2, pub)
	if err != nil {
		return false, err
	}
	p, err := p1.Add(p2)
	if err != nil {
		return false, err
	}
	if p.IsInfinity() {
		return false, nil
	}
	v := new(big.Int).Mod(p.X(), n)
	return v.Cmp(sig.R) == 0, nil
}
