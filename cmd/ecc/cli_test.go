package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-ecc/internal/crypto/curves"
	"github.com/smallyu/go-ecc/internal/protocol/keygen"
	"github.com/smallyu/go-ecc/pkg/ecc"
)

func run(args ...string) (string, error) {
	var buf bytes.Buffer
	output = &buf
	logOutput = io.Discard
	err := CLI().Run(append([]string{"ecc"}, args...))
	return strings.TrimSpace(buf.String()), err
}

func TestKeygenSignVerify(t *testing.T) {
	for _, curve := range []string{"secp256k1", "secp256r1"} {
		t.Run(curve, func(t *testing.T) {
			tmp := t.TempDir()
			keyPath := filepath.Join(tmp, "key.toml")

			pub, err := run("--curve", curve, "keygen", "--out", keyPath)
			require.NoError(t, err)
			require.Len(t, pub, 130)
			require.FileExists(t, keyPath+".pub")

			again, err := run("pubkey", "--key", keyPath)
			require.NoError(t, err)
			require.Equal(t, pub, again)

			compressed, err := run("pubkey", "--key", keyPath, "--compressed")
			require.NoError(t, err)
			require.Len(t, compressed, 66)

			sig, err := run("sign", "--key", keyPath, "--msg", "hello")
			require.NoError(t, err)
			require.Len(t, sig, 128)

			sig2, err := run("--strategy", "double-and-add", "sign", "--key", keyPath, "--msg", "hello")
			require.NoError(t, err)
			require.Equal(t, sig, sig2)

			out, err := run("verify", "--pub", keyPath+".pub", "--msg", "hello", "--sig", sig, "--crosscheck")
			require.NoError(t, err)
			require.Equal(t, "valid", out)

			out, err = run("--curve", curve, "verify", "--pub-hex", compressed, "--msg", "hello", "--sig", sig)
			require.NoError(t, err)
			require.Equal(t, "valid", out)

			out, err = run("verify", "--pub", keyPath+".pub", "--msg", "hellO", "--sig", sig, "--crosscheck")
			require.True(t, errors.Is(err, errInvalidSignature))
			require.Equal(t, "invalid", out)
		})
	}
}

func TestSignKnownVector(t *testing.T) {
	tmp := t.TempDir()
	keyPath := filepath.Join(tmp, "key.toml")
	require.NoError(t, saveTOML(keyPath, &PairTOML{
		Curve:   "secp256k1",
		Private: "0000000000000000000000000000000000000000000000000000000000000001",
	}))

	msgPath := filepath.Join(tmp, "msg.txt")
	require.NoError(t, os.WriteFile(msgPath, []byte("Satoshi Nakamoto"), 0o600))

	sig, err := run("sign", "--key", keyPath, "--msg-file", msgPath)
	require.NoError(t, err)
	require.Equal(t,
		"934b1ea10a4b3c1757e2b0c017d0b6143ce3c9a7e6a4a49860d7a6ab210ee3d8"+
			"2442ce9d2b916064108014783e923ec36b49743e2ffa1c4496f01a512aafd9e5", sig)
}

func TestECDH(t *testing.T) {
	tmp := t.TempDir()
	alice := filepath.Join(tmp, "alice.toml")
	bob := filepath.Join(tmp, "bob.toml")

	alicePub, err := run("keygen", "--out", alice)
	require.NoError(t, err)
	bobPub, err := run("keygen", "--out", bob)
	require.NoError(t, err)

	ab, err := run("ecdh", "--key", alice, "--peer", bobPub)
	require.NoError(t, err)
	ba, err := run("--strategy", "binary", "ecdh", "--key", bob, "--peer", alicePub)
	require.NoError(t, err)
	require.Equal(t, ab, ba)
	require.Len(t, ab, 64)

	k1, err := run("ecdh", "--key", alice, "--peer", bobPub, "--derive", "16", "--info", "session", "--salt", "00ff")
	require.NoError(t, err)
	k2, err := run("ecdh", "--key", bob, "--peer", alicePub, "--derive", "16", "--info", "session", "--salt", "00ff")
	require.NoError(t, err)
	require.Equal(t, k1, k2)
	require.Len(t, k1, 32)

	// A peer key from the other curve does not decode on secp256k1.
	r1 := filepath.Join(tmp, "r1.toml")
	r1Pub, err := run("--curve", "secp256r1", "keygen", "--out", r1)
	require.NoError(t, err)
	_, err = run("ecdh", "--key", alice, "--peer", r1Pub)
	require.True(t, errors.Is(err, ecc.ErrInvalidPoint))
}

func TestConfigFile(t *testing.T) {
	tmp := t.TempDir()
	confPath := filepath.Join(tmp, "ecc.toml")
	require.NoError(t, os.WriteFile(confPath, []byte("curve = \"secp256r1\"\nwindow = 3\n"), 0o600))

	keyPath := filepath.Join(tmp, "key.toml")
	_, err := run("--config", confPath, "keygen", "--out", keyPath)
	require.NoError(t, err)

	kp, err := loadPair(keyPath)
	require.NoError(t, err)
	require.True(t, kp.Curve().Equal(curves.Secp256r1()))

	require.NoError(t, os.WriteFile(confPath, []byte("curve = \"nope\"\n"), 0o600))
	_, err = run("--config", confPath, "keygen")
	require.True(t, errors.Is(err, ecc.ErrUnknownCurve))
}

func TestErrors(t *testing.T) {
	_, err := run("--curve", "ed25519", "keygen")
	require.True(t, errors.Is(err, ecc.ErrUnknownCurve))

	_, err = run("--window", "12", "keygen")
	require.True(t, errors.Is(err, ecc.ErrUnknownStrategy))

	tmp := t.TempDir()
	keyPath := filepath.Join(tmp, "key.toml")
	_, err = run("keygen", "--out", keyPath)
	require.NoError(t, err)

	_, err = run("sign", "--key", keyPath)
	require.Error(t, err)

	_, err = run("verify", "--msg", "x", "--sig", "00")
	require.Error(t, err)

	_, err = run("verify", "--pub", keyPath+".pub", "--msg", "x", "--sig", strings.Repeat("00", 64))
	require.True(t, errors.Is(err, ecc.ErrInvalidScalar))

	// A key file whose public key was edited is rejected.
	p := pairToTOML(mustLoad(t, keyPath))
	p.Public = "04" + strings.Repeat("11", 64)
	require.NoError(t, saveTOML(keyPath, p))
	_, err = run("pubkey", "--key", keyPath)
	require.Error(t, err)
}

func TestPublicKeyProof(t *testing.T) {
	tmp := t.TempDir()
	keyPath := filepath.Join(tmp, "key.toml")
	_, err := run("keygen", "--out", keyPath)
	require.NoError(t, err)

	pub, err := loadPublic(keyPath + ".pub")
	require.NoError(t, err)
	require.True(t, pub.Equal(mustLoad(t, keyPath).Public()))

	// Swap in a proof made for another key.
	other := filepath.Join(tmp, "other.toml")
	_, err = run("keygen", "--out", other)
	require.NoError(t, err)
	p1, p2 := new(PublicTOML), new(PublicTOML)
	_, err = toml.DecodeFile(keyPath+".pub", p1)
	require.NoError(t, err)
	_, err = toml.DecodeFile(other+".pub", p2)
	require.NoError(t, err)
	p1.Proof = p2.Proof
	require.NoError(t, saveTOML(keyPath+".pub", p1))

	_, err = loadPublic(keyPath + ".pub")
	require.Error(t, err)

	// Without a proof the key is accepted as is.
	p1.Proof = ""
	require.NoError(t, saveTOML(keyPath+".pub", p1))
	_, err = loadPublic(keyPath + ".pub")
	require.NoError(t, err)
}

func TestDemoCommand(t *testing.T) {
	out, err := run("--verbose", "demo")
	require.NoError(t, err)
	require.Contains(t, out, "Verify: true")
	require.Contains(t, out, "ECDH matches: true")
}

func mustLoad(t *testing.T, path string) *keygen.KeyPair {
	t.Helper()
	kp, err := loadPair(path)
	require.NoError(t, err)
	return kp
}
