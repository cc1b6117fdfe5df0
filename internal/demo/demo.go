// Package demo walks through key generation, signing, verification and key
// agreement, printing each step.
package demo

import (
	"bytes"
	"fmt"
	"io"

	"github.com/smallyu/go-ecc/internal/config"
	"github.com/smallyu/go-ecc/internal/crypto/curves"
	"github.com/smallyu/go-ecc/internal/log"
	"github.com/smallyu/go-ecc/internal/protocol/ecdh"
	"github.com/smallyu/go-ecc/internal/protocol/keygen"
	"github.com/smallyu/go-ecc/internal/protocol/sign"
)

// Message is the message signed by Run.
var Message = []byte("hello elliptic curves")

// Options controls a demo run.
type Options struct {
	SignCurve *curves.Curve
	ECDHCurve *curves.Curve
	Strategy  curves.Strategy
	Window    int
	Rand      io.Reader // nil selects crypto/rand
	Logger    log.Logger
}

// DefaultOptions signs on secp256r1 and agrees keys on secp256k1.
func DefaultOptions() Options {
	return Options{
		SignCurve: curves.Secp256r1(),
		ECDHCurve: curves.Secp256k1(),
		Strategy:  curves.WNAF,
		Window:    curves.DefaultWindow,
		Logger:    log.NewNop(),
	}
}

// FromConfig uses the configured strategy for both phases and the configured
// curve for key agreement.
func FromConfig(c *config.Config) (Options, error) {
	opts := DefaultOptions()
	curve, err := c.ResolveCurve()
	if err != nil {
		return opts, err
	}
	strategy, err := c.ResolveStrategy()
	if err != nil {
		return opts, err
	}
	opts.ECDHCurve = curve
	opts.Strategy = strategy
	opts.Window = c.Window
	opts.Logger = c.Logger()
	return opts, nil
}

// Run executes the demo and writes a transcript to w.
func Run(w io.Writer, opts Options) error {
	l := opts.Logger
	if l == nil {
		l = log.NewNop()
	}
	l = l.Named("demo")

	fmt.Fprintln(w, "== ECC demo ==")

	alice, err := keygen.GenerateKey(opts.SignCurve, opts.Rand)
	if err != nil {
		return fmt.Errorf("generate signing key: %w", err)
	}
	l.Infow("generated key", "curve", opts.SignCurve.Name())
	fmt.Fprintf(w, "Alice priv: 0x%064x\n", alice.D())
	fmt.Fprintf(w, "Alice pub:  (0x%s,\n             0x%s)\n",
		opts.SignCurve.Field().NewElement(alice.Public().X()),
		opts.SignCurve.Field().NewElement(alice.Public().Y()))

	signer := sign.NewSigner().WithStrategy(opts.Strategy).WithWindow(opts.Window).WithLogger(l)
	sig, err := signer.Sign(alice, Message)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}
	fmt.Fprintf(w, "Signature (r,s) = (0x%x, 0x%x)\n", sig.R, sig.S)

	ok, err := signer.Verify(alice.Public(), Message, sig)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	fmt.Fprintln(w, "Verify:", ok)

	bob, err := keygen.GenerateKey(opts.ECDHCurve, opts.Rand)
	if err != nil {
		return fmt.Errorf("generate bob: %w", err)
	}
	carol, err := keygen.GenerateKey(opts.ECDHCurve, opts.Rand)
	if err != nil {
		return fmt.Errorf("generate carol: %w", err)
	}
	s1, err := ecdh.SharedSecretWith(opts.Strategy, bob, carol.Public())
	if err != nil {
		return fmt.Errorf("ecdh: %w", err)
	}
	s2, err := ecdh.SharedSecretWith(opts.Strategy, carol, bob.Public())
	if err != nil {
		return fmt.Errorf("ecdh: %w", err)
	}
	l.Infow("agreed key", "curve", opts.ECDHCurve.Name())
	fmt.Fprintln(w, "ECDH matches:", bytes.Equal(s1, s2))

	key, err := ecdh.DeriveKey(s1, nil, []byte("go-ecc demo"), 32)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}
	fmt.Fprintf(w, "Shared secret (x):   %x\n", s1)
	fmt.Fprintf(w, "Derived key (HKDF):  %x\n", key)
	return nil
}
