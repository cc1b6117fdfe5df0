package main

import (
	"encoding/hex"
	"errors"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/smallyu/go-ecc/internal/crypto/curves"
	"github.com/smallyu/go-ecc/internal/crypto/zk/schnorr"
	"github.com/smallyu/go-ecc/internal/protocol/keygen"
)

// PairTOML is the TOML-able version of a key pair.
type PairTOML struct {
	Curve   string
	Private string
	Public  string
}

// PublicTOML is the TOML-able version of a public key. Proof is an optional
// Schnorr proof of possession of the private key.
type PublicTOML struct {
	Curve string
	Key   string
	Proof string
}

func publicToTOML(kp *keygen.KeyPair) (*PublicTOML, error) {
	proof, err := schnorr.Prove(kp.D(), kp.Public(), nil)
	if err != nil {
		return nil, err
	}
	return &PublicTOML{
		Curve: kp.Curve().Name(),
		Key:   hex.EncodeToString(kp.PublicBytes()),
		Proof: hex.EncodeToString(proof.Bytes()),
	}, nil
}

func pairToTOML(kp *keygen.KeyPair) *PairTOML {
	return &PairTOML{
		Curve:   kp.Curve().Name(),
		Private: hex.EncodeToString(kp.Bytes()),
		Public:  hex.EncodeToString(kp.PublicBytes()),
	}
}

// pairFromTOML rebuilds the key pair and checks that the stored public key
// matches the private scalar.
func pairFromTOML(p *PairTOML) (*keygen.KeyPair, error) {
	c, err := curves.ByName(p.Curve)
	if err != nil {
		return nil, err
	}
	buff, err := hex.DecodeString(p.Private)
	if err != nil {
		return nil, err
	}
	kp, err := keygen.KeyPairFromBytes(c, buff)
	if err != nil {
		return nil, err
	}
	if p.Public != "" && p.Public != hex.EncodeToString(kp.PublicBytes()) {
		return nil, errors.New("key file: public key does not match private key")
	}
	return kp, nil
}

func publicFromTOML(p *PublicTOML) (*curves.Point, error) {
	c, err := curves.ByName(p.Curve)
	if err != nil {
		return nil, err
	}
	pub, err := parsePoint(c, p.Key)
	if err != nil {
		return nil, err
	}
	if p.Proof == "" {
		return pub, nil
	}
	buff, err := hex.DecodeString(p.Proof)
	if err != nil {
		return nil, err
	}
	proof, err := schnorr.ParseProof(c, buff)
	if err != nil {
		return nil, err
	}
	ok, err := proof.Verify(pub)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("public key file: invalid proof of possession")
	}
	return pub, nil
}

func parsePoint(c *curves.Curve, s string) (*curves.Point, error) {
	buff, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return c.PointFromBytes(buff)
}

func saveTOML(path string, v interface{}) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(v)
}

func loadPair(path string) (*keygen.KeyPair, error) {
	p := new(PairTOML)
	if _, err := toml.DecodeFile(path, p); err != nil {
		return nil, err
	}
	return pairFromTOML(p)
}

func loadPublic(path string) (*curves.Point, error) {
	p := new(PublicTOML)
	if _, err := toml.DecodeFile(path, p); err != nil {
		return nil, err
	}
	return publicFromTOML(p)
}
