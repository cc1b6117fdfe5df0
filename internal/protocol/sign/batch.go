package sign

import (
	"github.com/smallyu/go-ecc/internal/crypto/curves"
	"github.com/smallyu/go-ecc/internal/protocol/keygen"
	"github.com/smallyu/go-ecc/pkg/ecc"
)

// SignBatch signs every message with the same key. Each message gets its own
// state machine and nonce generator.
func (sg *Signer) SignBatch(key *keygen.KeyPair, messages [][]byte) ([]*Signature, error) {
	if len(messages) == 0 {
		return nil, ecc.NewError("sign.SignBatch", ecc.ErrInvalidEncoding, "no messages")
	}
	sigs := make([]*Signature, 0, len(messages))
	for i, msg := range messages {
		sig, err := sg.Sign(key, msg)
		if err != nil {
			return nil, ecc.Errorf("sign.SignBatch", err, "message %d", i)
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// VerifyBatch verifies signatures pairwise against messages and returns the
// index of the first invalid signature, or -1 when all verify.
func (sg *Signer) VerifyBatch(pub *curves.Point, messages [][]byte, sigs []*Signature) (int, error) {
	if len(messages) != len(sigs) {
		return 0, ecc.Errorf("sign.VerifyBatch", ecc.ErrInvalidEncoding, "%d messages but %d signatures", len(messages), len(sigs))
	}
	for i := range messages {
		ok, err := sg.Verify(pub, messages[i], sigs[i])
		if err != nil {
			return i, err
		}
		if !ok {
			return i, nil
		}
	}
	return -1, nil
}
