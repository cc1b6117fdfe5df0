package benchmark

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/smallyu/go-ecc/internal/crypto/curves"
	"github.com/smallyu/go-ecc/internal/protocol/ecdh"
	"github.com/smallyu/go-ecc/internal/protocol/keygen"
	"github.com/smallyu/go-ecc/internal/protocol/sign"
)

var scalar, _ = new(big.Int).SetString("c9afa9d845ba75166b5c215767b1d6934e50c3db36e89b127b8a622b120f6721", 16)

func BenchmarkScalarMult(b *testing.B) {
	for _, c := range []*curves.Curve{curves.Secp256r1(), curves.Secp256k1()} {
		b.Run(c.Name()+"/double-and-add", func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := curves.ScalarMultDoubleAndAdd(scalar, c.Generator()); err != nil {
					b.Fatal(err)
				}
			}
		})
		for w := curves.MinWindow; w <= curves.MaxWindow; w++ {
			b.Run(fmt.Sprintf("%s/wnaf-%d", c.Name(), w), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					if _, err := curves.ScalarMultWNAFWindow(scalar, c.Generator(), w); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkSign(b *testing.B) {
	for _, c := range []*curves.Curve{curves.Secp256r1(), curves.Secp256k1()} {
		kp, err := keygen.NewKeyPair(c, scalar)
		if err != nil {
			b.Fatal(err)
		}
		msg := []byte("benchmark message")
		for _, s := range []curves.Strategy{curves.DoubleAndAdd, curves.WNAF} {
			signer := sign.NewSigner().WithStrategy(s)
			b.Run(c.Name()+"/"+s.String(), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					if _, err := signer.Sign(kp, msg); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkVerify(b *testing.B) {
	c := curves.Secp256k1()
	kp, err := keygen.NewKeyPair(c, scalar)
	if err != nil {
		b.Fatal(err)
	}
	msg := []byte("benchmark message")
	sig, err := sign.Sign(kp, msg)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if ok, err := sign.Verify(kp.Public(), msg, sig); err != nil || !ok {
			b.Fatalf("verify: %v %v", ok, err)
		}
	}
}

func BenchmarkSharedSecret(b *testing.B) {
	c := curves.Secp256r1()
	a, err := keygen.NewKeyPair(c, scalar)
	if err != nil {
		b.Fatal(err)
	}
	peer, err := keygen.NewKeyPair(c, big.NewInt(0x1234567890abcdef))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ecdh.SharedSecret(a, peer.Public()); err != nil {
			b.Fatal(err)
		}
	}
}
