//go:build js && wasm

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/smallyu/go-ecc/internal/crypto/curves"
	"github.com/smallyu/go-ecc/internal/protocol/ecdh"
	"github.com/smallyu/go-ecc/internal/protocol/keygen"
	"github.com/smallyu/go-ecc/internal/protocol/sign"
)

func main() {
	c := make(chan struct{})

	fmt.Println("Go ECC WASM Initialized")

	// Expose Go functions to JS
	js.Global().Set("GoECC", map[string]interface{}{
		"GenerateKey":  js.FuncOf(GenerateKey),
		"Sign":         js.FuncOf(Sign),
		"Verify":       js.FuncOf(Verify),
		"SharedSecret": js.FuncOf(SharedSecret),
	})

	<-c
}

// keyDTO carries keys across the JS boundary. Big integers travel as hex
// strings since JS numbers lose precision.
type keyDTO struct {
	Curve   string `json:"curve"`
	Private string `json:"private,omitempty"`
	Public  string `json:"public"`
}

func errorf(format string, args ...interface{}) string {
	return "error: " + fmt.Sprintf(format, args...)
}

func marshal(v interface{}) interface{} {
	b, err := json.Marshal(v)
	if err != nil {
		return errorf("marshal: %v", err)
	}
	return string(b)
}

func loadKey(curveName, privHex string) (*keygen.KeyPair, error) {
	c, err := curves.ByName(curveName)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(privHex)
	if err != nil {
		return nil, err
	}
	return keygen.KeyPairFromBytes(c, b)
}

func loadPoint(curveName, pubHex string) (*curves.Point, error) {
	c, err := curves.ByName(curveName)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(pubHex)
	if err != nil {
		return nil, err
	}
	return c.PointFromBytes(b)
}

// GenerateKey creates a key pair.
// Arguments:
// 0: curve name
// Returns:
// JSON keyDTO or an error string
func GenerateKey(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return errorf("expected 1 argument (curve)")
	}
	c, err := curves.ByName(args[0].String())
	if err != nil {
		return errorf("%v", err)
	}
	kp, err := keygen.GenerateKey(c, nil)
	if err != nil {
		return errorf("%v", err)
	}
	return marshal(keyDTO{
		Curve:   c.Name(),
		Private: hex.EncodeToString(kp.Bytes()),
		Public:  hex.EncodeToString(kp.PublicBytes()),
	})
}

// Sign signs a UTF-8 message.
// Arguments:
// 0: curve name, 1: private key hex, 2: message
// Returns:
// r||s hex or an error string
func Sign(this js.Value, args []js.Value) interface{} {
	if len(args) != 3 {
		return errorf("expected 3 arguments (curve, privateKey, message)")
	}
	kp, err := loadKey(args[0].String(), args[1].String())
	if err != nil {
		return errorf("%v", err)
	}
	sig, err := sign.Sign(kp, []byte(args[2].String()))
	if err != nil {
		return errorf("%v", err)
	}
	return hex.EncodeToString(sig.Bytes(kp.Curve()))
}

// Verify checks a signature.
// Arguments:
// 0: curve name, 1: public key hex, 2: message, 3: r||s hex
// Returns:
// bool or an error string
func Verify(this js.Value, args []js.Value) interface{} {
	if len(args) != 4 {
		return errorf("expected 4 arguments (curve, publicKey, message, signature)")
	}
	pub, err := loadPoint(args[0].String(), args[1].String())
	if err != nil {
		return errorf("%v", err)
	}
	raw, err := hex.DecodeString(args[3].String())
	if err != nil {
		return errorf("%v", err)
	}
	sig, err := sign.ParseSignature(pub.Curve(), raw)
	if err != nil {
		return false
	}
	ok, err := sign.Verify(pub, []byte(args[2].String()), sig)
	if err != nil {
		return errorf("%v", err)
	}
	return ok
}

// SharedSecret runs ECDH.
// Arguments:
// 0: curve name, 1: private key hex, 2: peer public key hex
// Returns:
// x-coordinate hex or an error string
func SharedSecret(this js.Value, args []js.Value) interface{} {
	if len(args) != 3 {
		return errorf("expected 3 arguments (curve, privateKey, peerPublicKey)")
	}
	kp, err := loadKey(args[0].String(), args[1].String())
	if err != nil {
		return errorf("%v", err)
	}
	peer, err := loadPoint(args[0].String(), args[2].String())
	if err != nil {
		return errorf("%v", err)
	}
	secret, err := ecdh.SharedSecret(kp, peer)
	if err != nil {
		return errorf("%v", err)
	}
	return hex.EncodeToString(secret)
}
