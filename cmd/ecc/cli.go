package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"github.com/smallyu/go-ecc/internal/config"
	"github.com/smallyu/go-ecc/internal/crypto/curves"
	"github.com/smallyu/go-ecc/internal/crypto/interop"
	"github.com/smallyu/go-ecc/internal/demo"
	"github.com/smallyu/go-ecc/internal/log"
	"github.com/smallyu/go-ecc/internal/protocol/ecdh"
	"github.com/smallyu/go-ecc/internal/protocol/keygen"
	"github.com/smallyu/go-ecc/internal/protocol/sign"
)

// output receives command results; logs go to logOutput.
var (
	output    io.Writer = os.Stdout
	logOutput io.Writer = os.Stderr
)

// Automatically set through -ldflags
var (
	version   = "master"
	gitCommit = "none"
)

var errInvalidSignature = errors.New("signature invalid")

var configFlag = &cli.StringFlag{
	Name:  "config",
	Usage: "TOML configuration file (curve, strategy, window, log).",
}

var curveFlag = &cli.StringFlag{
	Name:  "curve",
	Usage: "Curve preset: secp256k1 or secp256r1.",
}

var strategyFlag = &cli.StringFlag{
	Name:  "strategy",
	Usage: "Scalar multiplication strategy: wnaf or double-and-add.",
}

var windowFlag = &cli.IntFlag{
	Name:  "window",
	Usage: "w-NAF window width, between 2 and 8.",
}

var verboseFlag = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "If set, verbosity is at the debug level.",
}

var jsonLogFlag = &cli.BoolFlag{
	Name:  "json-log",
	Usage: "Write logs as JSON.",
}

var keyFlag = &cli.StringFlag{
	Name:     "key",
	Usage:    "Key pair TOML file written by keygen.",
	Required: true,
}

var outFlag = &cli.StringFlag{
	Name:  "out",
	Usage: "Write the key pair to this TOML file and the public key to <out>.pub.",
}

var compressedFlag = &cli.BoolFlag{
	Name:  "compressed",
	Usage: "Print the compressed point encoding.",
}

var msgFlag = &cli.StringFlag{
	Name:  "msg",
	Usage: "Message to sign or verify.",
}

var msgFileFlag = &cli.StringFlag{
	Name:  "msg-file",
	Usage: "Read the message from this file instead of --msg.",
}

var sigFlag = &cli.StringFlag{
	Name:     "sig",
	Usage:    "Signature as hex r||s.",
	Required: true,
}

var pubFlag = &cli.StringFlag{
	Name:  "pub",
	Usage: "Public key TOML file written by keygen --out.",
}

var pubHexFlag = &cli.StringFlag{
	Name:  "pub-hex",
	Usage: "Public key as hex SEC1 encoding, on the configured curve.",
}

var crossCheckFlag = &cli.BoolFlag{
	Name:  "crosscheck",
	Usage: "Also verify with decred/btcec (secp256k1) or crypto/ecdsa (secp256r1).",
}

var peerFlag = &cli.StringFlag{
	Name:     "peer",
	Usage:    "Peer public key as hex SEC1 encoding.",
	Required: true,
}

var deriveFlag = &cli.IntFlag{
	Name:  "derive",
	Usage: "Expand the shared secret into this many bytes with HKDF-SHA256.",
}

var infoFlag = &cli.StringFlag{
	Name:  "info",
	Usage: "HKDF info string used with --derive.",
}

var saltFlag = &cli.StringFlag{
	Name:  "salt",
	Usage: "HKDF salt as hex, used with --derive.",
}

var appCommands = []*cli.Command{
	{
		Name:   "keygen",
		Usage:  "Generate a key pair on the configured curve.",
		Flags:  toArray(outFlag),
		Action: keygenCmd,
	},
	{
		Name:   "pubkey",
		Usage:  "Print the public key of a key file.",
		Flags:  toArray(keyFlag, compressedFlag),
		Action: pubkeyCmd,
	},
	{
		Name:   "sign",
		Usage:  "Sign SHA-256(message) deterministically (RFC 6979, low-S).",
		Flags:  toArray(keyFlag, msgFlag, msgFileFlag),
		Action: signCmd,
	},
	{
		Name:   "verify",
		Usage:  "Verify a signature over SHA-256(message).",
		Flags:  toArray(pubFlag, pubHexFlag, msgFlag, msgFileFlag, sigFlag, crossCheckFlag),
		Action: verifyCmd,
	},
	{
		Name:   "ecdh",
		Usage:  "Compute the shared secret with a peer public key.",
		Flags:  toArray(keyFlag, peerFlag, deriveFlag, infoFlag, saltFlag),
		Action: ecdhCmd,
	},
	{
		Name:   "demo",
		Usage:  "Run the sign/verify and key agreement walkthrough.",
		Action: demoCmd,
	},
}

// CLI runs the ecc command line tool.
func CLI() *cli.App {
	app := cli.NewApp()
	app.Name = "ecc"
	app.Version = version
	app.Usage = "elliptic-curve keys, ECDSA and ECDH over short Weierstrass curves"
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(output, "ecc %v (commit %v)\n", version, gitCommit)
	}
	app.ExitErrHandler = func(context *cli.Context, err error) {
		// override to prevent default behavior of calling OS.exit(1),
		// when tests expect to be able to run multiple commands.
	}
	app.Writer = output
	app.Commands = appCommands
	app.Flags = toArray(configFlag, curveFlag, strategyFlag, windowFlag, verboseFlag, jsonLogFlag)
	return app
}

func toArray(flags ...cli.Flag) []cli.Flag {
	return flags
}

func contextToConfig(c *cli.Context) (*config.Config, error) {
	conf := config.Default()
	if c.IsSet(configFlag.Name) {
		var err error
		if conf, err = config.Load(c.String(configFlag.Name)); err != nil {
			return nil, err
		}
	}
	if c.IsSet(curveFlag.Name) {
		conf.Curve = c.String(curveFlag.Name)
	}
	if c.IsSet(strategyFlag.Name) {
		conf.Strategy = c.String(strategyFlag.Name)
	}
	if c.IsSet(windowFlag.Name) {
		conf.Window = c.Int(windowFlag.Name)
	}
	if c.Bool(verboseFlag.Name) {
		conf.Log.Level = "debug"
	}
	if c.Bool(jsonLogFlag.Name) {
		conf.Log.JSON = true
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func contextToLogger(conf *config.Config) log.Logger {
	level, err := log.ParseLevel(conf.Log.Level)
	if err != nil {
		level = log.DefaultLevel
	}
	return log.New(zapcore.AddSync(logOutput), level, conf.Log.JSON)
}

func contextToSigner(conf *config.Config, l log.Logger) (*sign.Signer, error) {
	strategy, err := conf.ResolveStrategy()
	if err != nil {
		return nil, err
	}
	return sign.NewSigner().WithStrategy(strategy).WithWindow(conf.Window).WithLogger(l), nil
}

func readMessage(c *cli.Context) ([]byte, error) {
	if c.IsSet(msgFileFlag.Name) {
		return os.ReadFile(c.String(msgFileFlag.Name))
	}
	if c.IsSet(msgFlag.Name) {
		return []byte(c.String(msgFlag.Name)), nil
	}
	return nil, fmt.Errorf("missing --%s or --%s", msgFlag.Name, msgFileFlag.Name)
}

func keygenCmd(c *cli.Context) error {
	conf, err := contextToConfig(c)
	if err != nil {
		return err
	}
	curve, err := conf.ResolveCurve()
	if err != nil {
		return err
	}
	l := contextToLogger(conf)
	defer l.Sync() //nolint:errcheck

	kp, err := keygen.GenerateKey(curve, nil)
	if err != nil {
		return err
	}
	if out := c.String(outFlag.Name); out != "" {
		if err := saveTOML(out, pairToTOML(kp)); err != nil {
			return fmt.Errorf("saving key pair: %w", err)
		}
		pub, err := publicToTOML(kp)
		if err != nil {
			return err
		}
		if err := saveTOML(out+".pub", pub); err != nil {
			return fmt.Errorf("saving public key: %w", err)
		}
		l.Infow("key pair written", "curve", curve.Name(), "path", out)
	}
	fmt.Fprintln(output, hex.EncodeToString(kp.PublicBytes()))
	return nil
}

func pubkeyCmd(c *cli.Context) error {
	kp, err := loadPair(c.String(keyFlag.Name))
	if err != nil {
		return err
	}
	if c.Bool(compressedFlag.Name) {
		fmt.Fprintln(output, hex.EncodeToString(kp.Public().CompressedBytes()))
		return nil
	}
	fmt.Fprintln(output, hex.EncodeToString(kp.PublicBytes()))
	return nil
}

func signCmd(c *cli.Context) error {
	conf, err := contextToConfig(c)
	if err != nil {
		return err
	}
	l := contextToLogger(conf)
	defer l.Sync() //nolint:errcheck

	kp, err := loadPair(c.String(keyFlag.Name))
	if err != nil {
		return err
	}
	msg, err := readMessage(c)
	if err != nil {
		return err
	}
	signer, err := contextToSigner(conf, l)
	if err != nil {
		return err
	}
	sig, err := signer.Sign(kp, msg)
	if err != nil {
		return err
	}
	l.Debugw("signed", "curve", kp.Curve().Name(), "strategy", signer.Strategy().String())
	fmt.Fprintln(output, hex.EncodeToString(sig.Bytes(kp.Curve())))
	return nil
}

func verifyPublic(c *cli.Context, conf *config.Config) (*curves.Point, error) {
	switch {
	case c.IsSet(pubFlag.Name):
		return loadPublic(c.String(pubFlag.Name))
	case c.IsSet(pubHexFlag.Name):
		curve, err := conf.ResolveCurve()
		if err != nil {
			return nil, err
		}
		return parsePoint(curve, c.String(pubHexFlag.Name))
	default:
		return nil, fmt.Errorf("missing --%s or --%s", pubFlag.Name, pubHexFlag.Name)
	}
}

func verifyCmd(c *cli.Context) error {
	conf, err := contextToConfig(c)
	if err != nil {
		return err
	}
	l := contextToLogger(conf)
	defer l.Sync() //nolint:errcheck

	pub, err := verifyPublic(c, conf)
	if err != nil {
		return err
	}
	msg, err := readMessage(c)
	if err != nil {
		return err
	}
	raw, err := hex.DecodeString(c.String(sigFlag.Name))
	if err != nil {
		return fmt.Errorf("decoding signature: %w", err)
	}
	sig, err := sign.ParseSignature(pub.Curve(), raw)
	if err != nil {
		return err
	}
	signer, err := contextToSigner(conf, l)
	if err != nil {
		return err
	}

	ok, err := signer.Verify(pub, msg, sig)
	if err != nil {
		return err
	}
	if c.Bool(crossCheckFlag.Name) {
		digest := sha256.Sum256(msg)
		ext, err := interop.CrossVerify(pub, digest[:], sig)
		if err != nil {
			return err
		}
		if ext != ok {
			l.Errorw("external verifier disagrees", "local", ok, "external", ext)
			return fmt.Errorf("crosscheck mismatch: local=%v external=%v", ok, ext)
		}
		l.Debugw("crosscheck agrees", "curve", pub.Curve().Name())
	}
	if !ok {
		fmt.Fprintln(output, "invalid")
		return errInvalidSignature
	}
	fmt.Fprintln(output, "valid")
	return nil
}

func ecdhCmd(c *cli.Context) error {
	conf, err := contextToConfig(c)
	if err != nil {
		return err
	}
	strategy, err := conf.ResolveStrategy()
	if err != nil {
		return err
	}

	kp, err := loadPair(c.String(keyFlag.Name))
	if err != nil {
		return err
	}
	peer, err := parsePoint(kp.Curve(), c.String(peerFlag.Name))
	if err != nil {
		return err
	}
	secret, err := ecdh.SharedSecretWith(strategy, kp, peer)
	if err != nil {
		return err
	}

	if n := c.Int(deriveFlag.Name); n > 0 {
		var salt []byte
		if c.IsSet(saltFlag.Name) {
			if salt, err = hex.DecodeString(c.String(saltFlag.Name)); err != nil {
				return fmt.Errorf("decoding salt: %w", err)
			}
		}
		key, err := ecdh.DeriveKey(secret, salt, []byte(c.String(infoFlag.Name)), n)
		if err != nil {
			return err
		}
		fmt.Fprintln(output, hex.EncodeToString(key))
		return nil
	}
	fmt.Fprintln(output, hex.EncodeToString(secret))
	return nil
}

func demoCmd(c *cli.Context) error {
	conf, err := contextToConfig(c)
	if err != nil {
		return err
	}
	opts, err := demo.FromConfig(conf)
	if err != nil {
		return err
	}
	l := contextToLogger(conf)
	defer l.Sync() //nolint:errcheck
	opts.Logger = l
	return demo.Run(output, opts)
}
