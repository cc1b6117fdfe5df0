package sign

import (
	"fmt"
	"math/big"

	"github.com/smallyu/go-ecc/internal/crypto/curves"
	"github.com/smallyu/go-ecc/pkg/ecc"
)

// Signature is an ECDSA signature with r, s in [1, n-1].
type Signature struct {
	R *big.Int
	S *big.Int
}

// Bytes encodes the signature as r||s, each fixed-width big-endian for the
// curve's order.
func (sig *Signature) Bytes(c *curves.Curve) []byte {
	return append(c.ScalarBytes(sig.R), c.ScalarBytes(sig.S)...)
}

// ParseSignature decodes an r||s encoding. Both halves must lie in [1, n-1].
func ParseSignature(c *curves.Curve, b []byte) (*Signature, error) {
	l := c.ScalarByteLen()
	if len(b) != 2*l {
		return nil, ecc.Errorf("sign.ParseSignature", ecc.ErrInvalidEncoding, "expected %d bytes, got %d", 2*l, len(b))
	}
	r := new(big.Int).SetBytes(b[:l])
	s := new(big.Int).SetBytes(b[l:])
	if !c.InScalarRange(r) || !c.InScalarRange(s) {
		return nil, ecc.NewError("sign.ParseSignature", ecc.ErrInvalidScalar, "r and s must lie in [1, n-1]")
	}
	return &Signature{R: r, S: s}, nil
}

// IsLowS reports whether s <= n/2.
func (sig *Signature) IsLowS(c *curves.Curve) bool {
	half := new(big.Int).Rsh(c.N(), 1)
	return sig.S != nil && sig.S.Cmp(half) <= 0
}

// Equal compares r and s by value.
func (sig *Signature) Equal(o *Signature) bool {
	if sig == nil || o == nil {
		return sig == o
	}
	return sig.R.Cmp(o.R) == 0 && sig.S.Cmp(o.S) == 0
}

func (sig *Signature) String() string {
	return fmt.Sprintf("Signature(r=%064x, s=%064x)", sig.R, sig.S)
}
