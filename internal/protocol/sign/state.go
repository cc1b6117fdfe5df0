package sign

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"

	"github.com/smallyu/go-ecc/internal/crypto/curves"
	"github.com/smallyu/go-ecc/internal/crypto/rfc6979"
	"github.com/smallyu/go-ecc/internal/protocol/keygen"
	"github.com/smallyu/go-ecc/pkg/ecc"
)

// errRetryNonce sends the state machine back to nonce derivation. It never
// leaves this package.
var errRetryNonce = errors.New("retry nonce")

// maxNonceRetries caps the retry loop. Reaching it means r or s was zero for
// that many consecutive candidates, which does not happen for a sound curve.
const maxNonceRetries = 64

type step int

const (
	stepHash step = iota
	stepDeriveNonce
	stepComputePoint
	stepComputeS
	stepNormalize
	stepEmit
	stepDone
)

func (s step) String() string {
	switch s {
	case stepHash:
		return "hash"
	case stepDeriveNonce:
		return "derive-nonce"
	case stepComputePoint:
		return "compute-point"
	case stepComputeS:
		return "compute-s"
	case stepNormalize:
		return "normalize"
	case stepEmit:
		return "emit"
	case stepDone:
		return "done"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// state carries one signing call through its steps. The nonce generator is
// created in the hash step and dropped with the state.
type state struct {
	signer *Signer
	key    *keygen.KeyPair
	curve  *curves.Curve
	n      *big.Int

	msg    []byte
	digest []byte

	z      *big.Int
	nonces *rfc6979.Generator
	k      *big.Int
	r      *big.Int
	s      *big.Int
	result *Signature

	step    step
	retries int
}

func newState(signer *Signer, key *keygen.KeyPair, msg, digest []byte) *state {
	return &state{
		signer: signer,
		key:    key,
		curve:  key.Curve(),
		n:      key.Curve().N(),
		msg:    msg,
		digest: digest,
		step:   stepHash,
	}
}

// run drives the state machine until a signature is emitted.
func (s *state) run() (*Signature, error) {
	for s.step != stepDone {
		err := s.nextStep()
		if errors.Is(err, errRetryNonce) {
			s.retries++
			s.signer.log.Debugw("nonce rejected", "step", s.step.String(), "retries", s.retries)
			if s.retries >= maxNonceRetries {
				return nil, ecc.Errorf("sign.Sign", ecc.ErrInvariantViolation, "no usable nonce after %d candidates", s.retries)
			}
			s.step = stepDeriveNonce
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return s.result, nil
}

func (s *state) nextStep() error {
	switch s.step {
	case stepHash:
		return s.hash()
	case stepDeriveNonce:
		return s.deriveNonce()
	case stepComputePoint:
		return s.computePoint()
	case stepComputeS:
		return s.computeS()
	case stepNormalize:
		return s.normalize()
	case stepEmit:
		return s.emit()
	default:
		return ecc.Errorf("sign.Sign", ecc.ErrInvariantViolation, "unknown step %s", s.step)
	}
}

func (s *state) hash() error {
	if s.digest == nil {
		h := sha256.Sum256(s.msg)
		s.digest = h[:]
	}
	s.z = hashToInt(s.digest, s.n)
	s.nonces = rfc6979.New(s.n, s.key.D(), s.digest)
	s.step = stepDeriveNonce
	return nil
}

func (s *state) deriveNonce() error {
	s.k = s.nonces.Next()
	s.step = stepComputePoint
	return nil
}

func (s *state) computePoint() error {
	mult, err := s.signer.mult()
	if err != nil {
		return err
	}
	rp, err := mult(s.k, s.curve.Generator())
	if err != nil {
		return err
	}
	if rp.IsInfinity() {
		return errRetryNonce
	}
	s.r = new(big.Int).Mod(rp.X(), s.n)
	if s.r.Sign() == 0 {
		return errRetryNonce
	}
	s.step = stepComputeS
	return nil
}

// computeS evaluates s = k^-1 (z + r*d) mod n.
func (s *state) computeS() error {
	kInv := new(big.Int).ModInverse(s.k, s.n)
	if kInv == nil {
		return errRetryNonce
	}
	v := new(big.Int).Mul(s.r, s.key.D())
	v.Add(v, s.z)
	v.Mul(v, kInv)
	v.Mod(v, s.n)
	if v.Sign() == 0 {
		return errRetryNonce
	}
	s.s = v
	s.step = stepNormalize
	return nil
}

func (s *state) normalize() error {
	half := new(big.Int).Rsh(s.n, 1)
	if s.s.Cmp(half) > 0 {
		s.s.Sub(s.n, s.s)
	}
	s.step = stepEmit
	return nil
}

func (s *state) emit() error {
	s.result = &Signature{R: s.r, S: s.s}
	s.k = nil
	s.nonces = nil
	s.step = stepDone
	return nil
}

// hashToInt takes the leftmost bit-length(n) bits of the digest and reduces
// them mod n.
func hashToInt(digest []byte, n *big.Int) *big.Int {
	z := rfc6979.Bits2Int(digest, n.BitLen())
	return z.Mod(z, n)
}
