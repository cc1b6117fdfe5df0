// Package ecdh derives shared secrets between key pairs on the same curve.
package ecdh

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/smallyu/go-ecc/internal/crypto/curves"
	"github.com/smallyu/go-ecc/internal/protocol/keygen"
	"github.com/smallyu/go-ecc/pkg/ecc"
)

// MaxKeyLength is the longest output HKDF-SHA256 can produce.
const MaxKeyLength = 255 * sha256.Size

// SharedSecret computes d_a * pub_b and returns its x-coordinate as
// fixed-width big-endian bytes.
func SharedSecret(priv *keygen.KeyPair, pub *curves.Point) ([]byte, error) {
	return SharedSecretWith(curves.WNAF, priv, pub)
}

// SharedSecretWith is SharedSecret with an explicit multiplication strategy.
func SharedSecretWith(s curves.Strategy, priv *keygen.KeyPair, pub *curves.Point) ([]byte, error) {
	if priv == nil {
		return nil, ecc.NewError("ecdh.SharedSecret", ecc.ErrInvalidScalar, "nil private key")
	}
	if pub == nil {
		return nil, ecc.NewError("ecdh.SharedSecret", ecc.ErrInvalidPoint, "nil public key")
	}
	c := priv.Curve()
	if !c.Equal(pub.Curve()) {
		return nil, ecc.Errorf("ecdh.SharedSecret", ecc.ErrCurveMismatch, "private key on %s, public key on %s", c.Name(), pub.Curve().Name())
	}

	shared, err := curves.ScalarMult(s, priv.D(), pub)
	if err != nil {
		return nil, err
	}
	if shared.IsInfinity() {
		return nil, ecc.NewError("ecdh.SharedSecret", ecc.ErrIdentityResult, "shared point is the point at infinity")
	}
	return c.Field().NewElement(shared.X()).Bytes(), nil
}

// DeriveKey expands a shared secret into length bytes of key material with
// HKDF-SHA256.
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ecc.NewError("ecdh.DeriveKey", ecc.ErrInvalidEncoding, "empty secret")
	}
	if length <= 0 || length > MaxKeyLength {
		return nil, ecc.Errorf("ecdh.DeriveKey", ecc.ErrInvalidEncoding, "key length %d outside [1, %d]", length, MaxKeyLength)
	}
	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), out); err != nil {
		return nil, ecc.Errorf("ecdh.DeriveKey", ecc.ErrInvariantViolation, "hkdf: %v", err)
	}
	return out, nil
}
