package curves

import (
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-ecc/pkg/ecc"
)

func TestPointEncodingRoundTrip(t *testing.T) {
	for _, c := range []*Curve{Secp256r1(), Secp256k1()} {
		for _, k := range []int64{1, 2, 3, 1000, 0xfeedface} {
			p, err := c.ScalarBaseMult(WNAF, big.NewInt(k))
			require.NoError(t, err)

			raw := p.Bytes()
			require.Len(t, raw, 65)
			assert.Equal(t, byte(0x04), raw[0])
			back, err := c.PointFromBytes(raw)
			require.NoError(t, err)
			assert.True(t, back.Equal(p))

			comp := p.CompressedBytes()
			require.Len(t, comp, 33)
			back, err = c.PointFromBytes(comp)
			require.NoError(t, err)
			assert.True(t, back.Equal(p), "%s k=%d", c.Name(), k)
		}

		inf := c.Infinity()
		assert.Equal(t, []byte{0x00}, inf.Bytes())
		assert.Equal(t, []byte{0x00}, inf.CompressedBytes())
		back, err := c.PointFromBytes(inf.Bytes())
		require.NoError(t, err)
		assert.True(t, back.IsInfinity())
	}
}

func TestGeneratorEncoding(t *testing.T) {
	g := Secp256k1().Generator()
	assert.Equal(t,
		"0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798",
		hex.EncodeToString(g.CompressedBytes()))
}

func TestPointFromBytesRejects(t *testing.T) {
	c := Secp256k1()
	g := c.Generator()

	offCurve := g.Bytes()
	offCurve[64] ^= 0x01

	nonCanonical := make([]byte, 65)
	nonCanonical[0] = 0x04
	copy(nonCanonical[1:33], c.Field().Modulus().Bytes())
	copy(nonCanonical[33:], g.Y().FillBytes(make([]byte, 32)))

	// x = 5 has no square root of x^3 + 7 on secp256k1
	noRoot := make([]byte, 33)
	noRoot[0] = 0x02
	noRoot[32] = 0x05

	tests := []struct {
		name  string
		input []byte
		kind  error
	}{
		{"empty", nil, ecc.ErrInvalidEncoding},
		{"unknown tag", append([]byte{0x05}, g.Bytes()[1:]...), ecc.ErrInvalidEncoding},
		{"short uncompressed", g.Bytes()[:64], ecc.ErrInvalidEncoding},
		{"long compressed", append(g.CompressedBytes(), 0x00), ecc.ErrInvalidEncoding},
		{"infinity with payload", []byte{0x00, 0x00}, ecc.ErrInvalidEncoding},
		{"off curve", offCurve, ecc.ErrInvalidPoint},
		{"non canonical x", nonCanonical, ecc.ErrInvalidEncoding},
		{"no square root", noRoot, ecc.ErrInvalidPoint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.PointFromBytes(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
		})
	}
}

func FuzzPointFromBytes(f *testing.F) {
	c := Secp256r1()
	f.Add(c.Generator().Bytes())
	f.Add(c.Generator().CompressedBytes())
	f.Add([]byte{0x00})
	f.Add([]byte{0x03, 0x01})
	f.Add(make([]byte, 65))

	f.Fuzz(func(t *testing.T, data []byte) {
		p, err := c.PointFromBytes(data)
		if err != nil {
			return
		}
		if p.IsInfinity() {
			return
		}
		if !c.IsOnCurve(p.X(), p.Y()) {
			t.Fatalf("decoded point not on curve: %s", p)
		}
		again, err := c.PointFromBytes(p.Bytes())
		if err != nil || !again.Equal(p) {
			t.Fatalf("re-encoding mismatch for %x", data)
		}
	})
}
