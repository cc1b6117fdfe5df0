package sign

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/smallyu/go-ecc/internal/crypto/curves"
	"github.com/smallyu/go-ecc/internal/log"
	"github.com/smallyu/go-ecc/internal/protocol/keygen"
	"github.com/smallyu/go-ecc/pkg/ecc"
)

func hexInt(t testing.TB, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 16)
	require.True(t, ok, s)
	return v
}

func keyPair(t testing.TB, c *curves.Curve, d *big.Int) *keygen.KeyPair {
	t.Helper()
	kp, err := keygen.NewKeyPair(c, d)
	require.NoError(t, err)
	return kp
}

// toyCurve is y^2 = x^3 + 7 over GF(211) with a generator of order 199.
func toyCurve(t testing.TB) *curves.Curve {
	t.Helper()
	c, err := curves.NewCurve(curves.Params{
		Name: "toy211",
		P:    big.NewInt(211),
		A:    big.NewInt(0),
		B:    big.NewInt(7),
		Gx:   big.NewInt(3),
		Gy:   big.NewInt(33),
		N:    big.NewInt(199),
		H:    big.NewInt(1),
	})
	require.NoError(t, err)
	return c
}

func TestSignKnownVectors(t *testing.T) {
	k1n1 := new(big.Int).Sub(curves.Secp256k1().N(), big.NewInt(1))

	tests := []struct {
		name  string
		curve *curves.Curve
		d     *big.Int
		msg   string
		r, s  string
	}{
		{
			name:  "secp256r1 sample",
			curve: curves.Secp256r1(),
			d:     hexInt(t, "c9afa9d845ba75166b5c215767b1d6934e50c3db36e89b127b8a622b120f6721"),
			msg:   "sample",
			r:     "efd48b2aacb6a8fd1140dd9cd45e81d69d2c877b56aaf991c34d0ea84eaf3716",
			s:     "0834e36ad29a83bf2bc9385e491d6099c8fdf9d1ed67aa7ea5f51f93782857a9",
		},
		{
			name:  "secp256r1 test",
			curve: curves.Secp256r1(),
			d:     hexInt(t, "c9afa9d845ba75166b5c215767b1d6934e50c3db36e89b127b8a622b120f6721"),
			msg:   "test",
			r:     "f1abb023518351cd71d881567b1ea663ed3efcf6c5132b354f28d3b0b7d38367",
			s:     "019f4113742a2b14bd25926b49c649155f267e60d3814b4c0cc84250e46f0083",
		},
		{
			name:  "secp256k1 key one",
			curve: curves.Secp256k1(),
			d:     big.NewInt(1),
			msg:   "Satoshi Nakamoto",
			r:     "934b1ea10a4b3c1757e2b0c017d0b6143ce3c9a7e6a4a49860d7a6ab210ee3d8",
			s:     "2442ce9d2b916064108014783e923ec36b49743e2ffa1c4496f01a512aafd9e5",
		},
		{
			name:  "secp256k1 key n-1",
			curve: curves.Secp256k1(),
			d:     k1n1,
			msg:   "Satoshi Nakamoto",
			r:     "fd567d121db66e382991534ada77a6bd3106f0a1098c231e47993447cd6af2d0",
			s:     "6b39cd0eb1bc8603e159ef5c20a5c8ad685a45b06ce9bebed3f153d10d93bed5",
		},
		{
			name:  "secp256k1 alan turing",
			curve: curves.Secp256k1(),
			d:     hexInt(t, "f8b8af8ce3c7cca5e300d33939540c10d45ce001b8f252bfbc57ba0342904181"),
			msg:   "Alan Turing",
			r:     "7063ae83e7f62bbb171798131b4a0564b956930092b33b07b395615d9ec7e15c",
			s:     "58dfcc1e00a35e1572f366ffe34ba0fc47db1e7189759b9fb233c5b05ab388ea",
		},
	}

	for _, tt := range tests {
		for _, strategy := range []curves.Strategy{curves.DoubleAndAdd, curves.WNAF} {
			t.Run(tt.name+"/"+strategy.String(), func(t *testing.T) {
				signer := NewSigner().WithStrategy(strategy)
				kp := keyPair(t, tt.curve, tt.d)

				sig, err := signer.Sign(kp, []byte(tt.msg))
				require.NoError(t, err)
				assert.Equal(t, 0, hexInt(t, tt.r).Cmp(sig.R), "r")
				assert.Equal(t, 0, hexInt(t, tt.s).Cmp(sig.S), "s")

				ok, err := signer.Verify(kp.Public(), []byte(tt.msg), sig)
				require.NoError(t, err)
				assert.True(t, ok)
			})
		}
	}
}

func TestSignDeterministicAndLowS(t *testing.T) {
	for _, c := range []*curves.Curve{curves.Secp256r1(), curves.Secp256k1()} {
		t.Run(c.Name(), func(t *testing.T) {
			kp, err := keygen.GenerateKey(c, nil)
			require.NoError(t, err)

			for i := 0; i < 16; i++ {
				msg := []byte{byte(i), 'm', 's', 'g'}
				a, err := Sign(kp, msg)
				require.NoError(t, err)
				b, err := Sign(kp, msg)
				require.NoError(t, err)

				assert.Equal(t, a.Bytes(c), b.Bytes(c))
				assert.True(t, a.IsLowS(c))

				ok, err := Verify(kp.Public(), msg, a)
				require.NoError(t, err)
				assert.True(t, ok)
			}
		})
	}
}

func TestVerifyRejectsBitFlips(t *testing.T) {
	c := curves.Secp256k1()
	kp, err := keygen.GenerateKey(c, nil)
	require.NoError(t, err)

	msg := []byte("flip every bit of this message")
	sig, err := Sign(kp, msg)
	require.NoError(t, err)

	bits := len(msg) * 8
	if testing.Short() {
		bits = 16
	}
	for i := 0; i < bits; i++ {
		tampered := append([]byte(nil), msg...)
		tampered[i/8] ^= 1 << uint(i%8)
		ok, err := Verify(kp.Public(), tampered, sig)
		require.NoError(t, err)
		assert.False(t, ok, "bit %d", i)
	}
}

func TestVerifyWrongInputs(t *testing.T) {
	c := curves.Secp256r1()
	kp, err := keygen.GenerateKey(c, nil)
	require.NoError(t, err)
	other, err := keygen.GenerateKey(c, nil)
	require.NoError(t, err)

	msg := []byte("payload")
	sig, err := Sign(kp, msg)
	require.NoError(t, err)

	ok, err := Verify(other.Public(), msg, sig)
	require.NoError(t, err)
	assert.False(t, ok, "other key")

	n := c.N()
	one := big.NewInt(1)
	for name, bad := range map[string]*Signature{
		"r zero":  {R: big.NewInt(0), S: sig.S},
		"s zero":  {R: sig.R, S: big.NewInt(0)},
		"r = n":   {R: n, S: sig.S},
		"s > n":   {R: sig.R, S: new(big.Int).Add(n, one)},
		"r minus": {R: big.NewInt(-1), S: sig.S},
		"nil r":   {R: nil, S: sig.S},
	} {
		ok, err := Verify(kp.Public(), msg, bad)
		assert.NoError(t, err, name)
		assert.False(t, ok, name)
	}

	// The high-S twin verifies too; only signing normalizes.
	high := &Signature{R: sig.R, S: new(big.Int).Sub(n, sig.S)}
	assert.False(t, high.IsLowS(c))
	ok, err = Verify(kp.Public(), msg, high)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = Verify(nil, msg, sig)
	assert.True(t, errors.Is(err, ecc.ErrInvalidPoint))
	_, err = Verify(c.Infinity(), msg, sig)
	assert.True(t, errors.Is(err, ecc.ErrInvalidPoint))
	_, err = Verify(kp.Public(), msg, nil)
	assert.True(t, errors.Is(err, ecc.ErrInvalidScalar))
	_, err = Sign(nil, msg)
	assert.True(t, errors.Is(err, ecc.ErrInvalidScalar))
}

func TestSignDigest(t *testing.T) {
	c := curves.Secp256k1()
	kp, err := keygen.GenerateKey(c, nil)
	require.NoError(t, err)

	msg := []byte("digest variant")
	digest := sha256.Sum256(msg)

	a, err := Sign(kp, msg)
	require.NoError(t, err)
	b, err := SignDigest(kp, digest[:])
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	ok, err := VerifyDigest(kp.Public(), digest[:], a)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = SignDigest(kp, digest[:31])
	assert.True(t, errors.Is(err, ecc.ErrInvalidEncoding))
	_, err = VerifyDigest(kp.Public(), append(digest[:], 0), a)
	assert.True(t, errors.Is(err, ecc.ErrInvalidEncoding))
}

func TestSignatureEncoding(t *testing.T) {
	c := curves.Secp256r1()
	kp, err := keygen.GenerateKey(c, nil)
	require.NoError(t, err)
	sig, err := Sign(kp, []byte("encode me"))
	require.NoError(t, err)

	b := sig.Bytes(c)
	require.Len(t, b, 64)
	back, err := ParseSignature(c, b)
	require.NoError(t, err)
	assert.True(t, sig.Equal(back))

	_, err = ParseSignature(c, b[:63])
	assert.True(t, errors.Is(err, ecc.ErrInvalidEncoding))
	_, err = ParseSignature(c, make([]byte, 64))
	assert.True(t, errors.Is(err, ecc.ErrInvalidScalar))

	overflow := append(c.N().FillBytes(make([]byte, 32)), b[32:]...)
	_, err = ParseSignature(c, overflow)
	assert.True(t, errors.Is(err, ecc.ErrInvalidScalar))
}

func TestSignRetriesRejectedNonce(t *testing.T) {
	c := toyCurve(t)
	kp := keyPair(t, c, big.NewInt(1))

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	signer := NewSigner().WithLogger(log.New(zapcore.AddSync(w), log.DebugLevel, true))

	// The first RFC 6979 candidate for this key and message gives r or s = 0.
	sig, err := signer.Sign(kp, []byte("retry-8"))
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	assert.Equal(t, int64(80), sig.R.Int64())
	assert.Equal(t, int64(47), sig.S.Int64())
	assert.Contains(t, buf.String(), "nonce rejected")

	ok, err := signer.Verify(kp.Public(), []byte("retry-8"), sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignToyCurveExhaustive(t *testing.T) {
	c := toyCurve(t)
	half := new(big.Int).Rsh(c.N(), 1)

	for d := int64(1); d < 199; d += 7 {
		kp := keyPair(t, c, big.NewInt(d))
		for i := 0; i < 8; i++ {
			msg := []byte{byte(d), byte(i)}
			sig, err := Sign(kp, msg)
			require.NoError(t, err)
			assert.True(t, sig.S.Cmp(half) <= 0)

			ok, err := Verify(kp.Public(), msg, sig)
			require.NoError(t, err)
			assert.True(t, ok, "d=%d i=%d", d, i)
		}
	}
}

func TestComputeSRetriesOnZero(t *testing.T) {
	c := toyCurve(t)
	kp := keyPair(t, c, big.NewInt(5))

	st := newState(NewSigner(), kp, []byte("x"), nil)
	st.k = big.NewInt(3)
	st.r = big.NewInt(10)
	// z = -r*d mod n makes s vanish.
	st.z = big.NewInt(199 - 50)
	st.step = stepComputeS
	assert.True(t, errors.Is(st.nextStep(), errRetryNonce))
	assert.Equal(t, stepComputeS, st.step)
}

func TestStepNames(t *testing.T) {
	names := []string{"hash", "derive-nonce", "compute-point", "compute-s", "normalize", "emit", "done"}
	for i, name := range names {
		assert.Equal(t, name, step(i).String())
	}
	assert.Equal(t, "step(42)", step(42).String())
}

func TestBatch(t *testing.T) {
	c := curves.Secp256k1()
	kp, err := keygen.GenerateKey(c, nil)
	require.NoError(t, err)

	signer := NewSigner()
	msgs := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	sigs, err := signer.SignBatch(kp, msgs)
	require.NoError(t, err)
	require.Len(t, sigs, 3)

	idx, err := signer.VerifyBatch(kp.Public(), msgs, sigs)
	require.NoError(t, err)
	assert.Equal(t, -1, idx)

	sigs[1], sigs[2] = sigs[2], sigs[1]
	idx, err = signer.VerifyBatch(kp.Public(), msgs, sigs)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = signer.VerifyBatch(kp.Public(), msgs, sigs[:2])
	assert.True(t, errors.Is(err, ecc.ErrInvalidEncoding))
	_, err = signer.SignBatch(kp, nil)
	assert.True(t, errors.Is(err, ecc.ErrInvalidEncoding))
}

func TestSignWindowsAgree(t *testing.T) {
	c := curves.Secp256r1()
	kp, err := keygen.GenerateKey(c, nil)
	require.NoError(t, err)
	msg := []byte("window independent")

	want, err := NewSigner().WithStrategy(curves.DoubleAndAdd).Sign(kp, msg)
	require.NoError(t, err)
	for w := curves.MinWindow; w <= curves.MaxWindow; w++ {
		signer := NewSigner().WithWindow(w)
		got, err := signer.Sign(kp, msg)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "window %d", w)

		ok, err := signer.Verify(kp.Public(), msg, got)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	_, err = NewSigner().WithWindow(1).Sign(kp, msg)
	assert.True(t, errors.Is(err, ecc.ErrInvalidScalar))
	_, err = NewSigner().WithStrategy(curves.Strategy(9)).Sign(kp, msg)
	assert.True(t, errors.Is(err, ecc.ErrUnknownStrategy))
}
