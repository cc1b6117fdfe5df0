// Package interop converts keys and signatures to the types of established
// ECDSA libraries and checks signatures against them.
//
// secp256k1 maps to decred's dcrec/secp256k1 and btcec/v2, secp256r1 maps to
// the standard library's crypto/ecdsa.
package interop

import (
	stdecdsa "crypto/ecdsa"
	"crypto/elliptic"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/smallyu/go-ecc/internal/crypto/curves"
	"github.com/smallyu/go-ecc/internal/protocol/keygen"
	"github.com/smallyu/go-ecc/internal/protocol/sign"
	"github.com/smallyu/go-ecc/pkg/ecc"
)

func requireCurve(op string, got, want *curves.Curve) error {
	if !got.Equal(want) {
		return ecc.Errorf(op, ecc.ErrCurveMismatch, "expected %s, got %s", want.Name(), got.Name())
	}
	return nil
}

// DecredPublicKey converts a secp256k1 point to a decred public key.
func DecredPublicKey(p *curves.Point) (*secp256k1.PublicKey, error) {
	if p == nil || p.IsInfinity() {
		return nil, ecc.NewError("interop.DecredPublicKey", ecc.ErrInvalidPoint, "no affine point")
	}
	if err := requireCurve("interop.DecredPublicKey", p.Curve(), curves.Secp256k1()); err != nil {
		return nil, err
	}
	pub, err := secp256k1.ParsePubKey(p.Bytes())
	if err != nil {
		return nil, ecc.Errorf("interop.DecredPublicKey", ecc.ErrInvalidPoint, "%v", err)
	}
	return pub, nil
}

// PointFromDecred converts a decred public key back to a secp256k1 point.
func PointFromDecred(pub *secp256k1.PublicKey) (*curves.Point, error) {
	if pub == nil {
		return nil, ecc.NewError("interop.PointFromDecred", ecc.ErrInvalidPoint, "nil public key")
	}
	return curves.Secp256k1().PointFromBytes(pub.SerializeUncompressed())
}

// DecredPrivateKey converts a secp256k1 key pair to a decred private key.
func DecredPrivateKey(kp *keygen.KeyPair) (*secp256k1.PrivateKey, error) {
	if kp == nil {
		return nil, ecc.NewError("interop.DecredPrivateKey", ecc.ErrInvalidScalar, "nil key")
	}
	if err := requireCurve("interop.DecredPrivateKey", kp.Curve(), curves.Secp256k1()); err != nil {
		return nil, err
	}
	return secp256k1.PrivKeyFromBytes(kp.Bytes()), nil
}

func modNScalar(op string, v *big.Int) (*secp256k1.ModNScalar, error) {
	if v == nil || v.Sign() <= 0 || v.BitLen() > 256 {
		return nil, ecc.NewError(op, ecc.ErrInvalidScalar, "value outside [1, n-1]")
	}
	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(v.FillBytes(make([]byte, 32))); overflow {
		return nil, ecc.NewError(op, ecc.ErrInvalidScalar, "value >= n")
	}
	return &s, nil
}

// DecredSignature converts a signature to decred's representation.
func DecredSignature(sig *sign.Signature) (*dcrecdsa.Signature, error) {
	if sig == nil {
		return nil, ecc.NewError("interop.DecredSignature", ecc.ErrInvalidScalar, "nil signature")
	}
	r, err := modNScalar("interop.DecredSignature", sig.R)
	if err != nil {
		return nil, err
	}
	s, err := modNScalar("interop.DecredSignature", sig.S)
	if err != nil {
		return nil, err
	}
	return dcrecdsa.NewSignature(r, s), nil
}

// SignatureFromDecred converts a decred signature.
func SignatureFromDecred(ds *dcrecdsa.Signature) *sign.Signature {
	r, s := ds.R(), ds.S()
	rb, sb := r.Bytes(), s.Bytes()
	return &sign.Signature{R: new(big.Int).SetBytes(rb[:]), S: new(big.Int).SetBytes(sb[:])}
}

// BTCECPublicKey converts a secp256k1 point to a btcec public key.
func BTCECPublicKey(p *curves.Point) (*btcec.PublicKey, error) {
	if p == nil || p.IsInfinity() {
		return nil, ecc.NewError("interop.BTCECPublicKey", ecc.ErrInvalidPoint, "no affine point")
	}
	if err := requireCurve("interop.BTCECPublicKey", p.Curve(), curves.Secp256k1()); err != nil {
		return nil, err
	}
	pub, err := btcec.ParsePubKey(p.CompressedBytes())
	if err != nil {
		return nil, ecc.Errorf("interop.BTCECPublicKey", ecc.ErrInvalidPoint, "%v", err)
	}
	return pub, nil
}

// BTCECSignature converts a signature to btcec's representation.
func BTCECSignature(sig *sign.Signature) (*btcecdsa.Signature, error) {
	if sig == nil {
		return nil, ecc.NewError("interop.BTCECSignature", ecc.ErrInvalidScalar, "nil signature")
	}
	r, err := modNScalar("interop.BTCECSignature", sig.R)
	if err != nil {
		return nil, err
	}
	s, err := modNScalar("interop.BTCECSignature", sig.S)
	if err != nil {
		return nil, err
	}
	return btcecdsa.NewSignature(r, s), nil
}

// StdPublicKey converts a secp256r1 point to a crypto/ecdsa public key.
func StdPublicKey(p *curves.Point) (*stdecdsa.PublicKey, error) {
	if p == nil || p.IsInfinity() {
		return nil, ecc.NewError("interop.StdPublicKey", ecc.ErrInvalidPoint, "no affine point")
	}
	if err := requireCurve("interop.StdPublicKey", p.Curve(), curves.Secp256r1()); err != nil {
		return nil, err
	}
	return &stdecdsa.PublicKey{Curve: elliptic.P256(), X: p.X(), Y: p.Y()}, nil
}

// PointFromStd converts a crypto/ecdsa P-256 public key back to a point.
func PointFromStd(pub *stdecdsa.PublicKey) (*curves.Point, error) {
	if pub == nil || pub.Curve != elliptic.P256() {
		return nil, ecc.NewError("interop.PointFromStd", ecc.ErrCurveMismatch, "expected a P-256 key")
	}
	return curves.Secp256r1().NewPoint(pub.X, pub.Y)
}

// CrossVerify checks sig over a SHA-256 digest with the external libraries
// for the point's curve. For secp256k1, decred and btcec must agree.
func CrossVerify(pub *curves.Point, digest []byte, sig *sign.Signature) (bool, error) {
	if pub == nil {
		return false, ecc.NewError("interop.CrossVerify", ecc.ErrInvalidPoint, "nil public key")
	}
	switch {
	case pub.Curve().Equal(curves.Secp256k1()):
		return crossVerifyK1(pub, digest, sig)
	case pub.Curve().Equal(curves.Secp256r1()):
		std, err := StdPublicKey(pub)
		if err != nil {
			return false, err
		}
		if sig == nil || sig.R == nil || sig.S == nil {
			return false, ecc.NewError("interop.CrossVerify", ecc.ErrInvalidScalar, "nil signature")
		}
		return stdecdsa.Verify(std, digest, sig.R, sig.S), nil
	default:
		return false, ecc.Errorf("interop.CrossVerify", ecc.ErrUnknownCurve, "no external verifier for %s", pub.Curve().Name())
	}
}

func crossVerifyK1(pub *curves.Point, digest []byte, sig *sign.Signature) (bool, error) {
	dpub, err := DecredPublicKey(pub)
	if err != nil {
		return false, err
	}
	bpub, err := BTCECPublicKey(pub)
	if err != nil {
		return false, err
	}
	dsig, err := DecredSignature(sig)
	if err != nil {
		return false, err
	}
	bsig, err := BTCECSignature(sig)
	if err != nil {
		return false, err
	}

	dok := dsig.Verify(digest, dpub)
	bok := bsig.Verify(digest, bpub)
	if dok != bok {
		return false, ecc.NewError("interop.CrossVerify", ecc.ErrInvariantViolation, "decred and btcec disagree")
	}
	return dok, nil
}
