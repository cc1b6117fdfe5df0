// Package rfc6979 derives deterministic ECDSA nonces as described in
// RFC 6979 section 3.2, using HMAC-SHA256.
//
// A Generator is scoped to a single signing call. Successive calls to Next
// continue the same HMAC_DRBG stream, so a candidate rejected by the signer
// (r == 0 or s == 0) is never reused and the sequence is reproducible.
package rfc6979

import (
	"crypto/hmac"
	"crypto/sha256"
	"math/big"
)

// Generator holds the K and V state of one nonce derivation.
type Generator struct {
	n     *big.Int
	qlen  int
	rolen int
	k, v  []byte
	drawn bool
}

// New seeds a generator from the private key x and the message digest h1
// for a group of order n.
func New(n, x *big.Int, h1 []byte) *Generator {
	g := &Generator{
		n:     new(big.Int).Set(n),
		qlen:  n.BitLen(),
		rolen: (n.BitLen() + 7) / 8,
	}

	// Step b, c.
	g.v = make([]byte, sha256.Size)
	for i := range g.v {
		g.v[i] = 0x01
	}
	g.k = make([]byte, sha256.Size)

	seed := append(Int2Octets(x, g.rolen), Bits2Octets(h1, n)...)

	// Step d-g.
	g.k = g.mac(g.v, []byte{0x00}, seed)
	g.v = g.mac(g.v)
	g.k = g.mac(g.v, []byte{0x01}, seed)
	g.v = g.mac(g.v)
	return g
}

// Next returns the next candidate k in [1, n-1] (step h).
func (g *Generator) Next() *big.Int {
	for {
		if g.drawn {
			g.reseed()
		}
		g.drawn = true

		t := make([]byte, 0, g.rolen+sha256.Size)
		for len(t) < g.rolen {
			g.v = g.mac(g.v)
			t = append(t, g.v...)
		}
		k := Bits2Int(t, g.qlen)
		if k.Sign() > 0 && k.Cmp(g.n) < 0 {
			return k
		}
	}
}

// reseed applies K = HMAC_K(V || 0x00), V = HMAC_K(V).
func (g *Generator) reseed() {
	g.k = g.mac(g.v, []byte{0x00})
	g.v = g.mac(g.v)
}

func (g *Generator) mac(parts ...[]byte) []byte {
	h := hmac.New(sha256.New, g.k)
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// Bits2Int interprets b as a big-endian integer and keeps its leftmost qlen
// bits.
func Bits2Int(b []byte, qlen int) *big.Int {
	v := new(big.Int).SetBytes(b)
	if blen := len(b) * 8; blen > qlen {
		v.Rsh(v, uint(blen-qlen))
	}
	return v
}

// Int2Octets encodes x as rolen big-endian bytes.
func Int2Octets(x *big.Int, rolen int) []byte {
	out := make([]byte, rolen)
	return x.FillBytes(out)
}

// Bits2Octets returns int2octets(bits2int(b) mod n).
func Bits2Octets(b []byte, n *big.Int) []byte {
	z := Bits2Int(b, n.BitLen())
	z.Mod(z, n)
	return Int2Octets(z, (n.BitLen()+7)/8)
}
