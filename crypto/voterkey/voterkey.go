// Package voterkey derives the voter's nullification keypair from an opaque
// external secret. The secret comes from an identity-proof hash or external
// authenticator; this package only requires it to be uniform, secret, and
// stable per credential.
package voterkey

import (
	"errors"
	"math/big"

	"github.com/anonvote/nullcore/crypto/ecc"
	"github.com/anonvote/nullcore/crypto/ecc/bjj"
)

// SecretLength is the exact length in bytes of the input secret.
const SecretLength = 32

// ErrInvalidSecretLength is returned when the input secret is not exactly
// SecretLength bytes.
var ErrInvalidSecretLength = errors.New("secret must be exactly 32 bytes")

// Keypair holds a voter's nullification key. Invariant: Public = Secret*G.
// It is derived deterministically and never regenerated with different
// randomness for the same secret.
type Keypair struct {
	Secret *big.Int
	Public ecc.Point
}

// Derive computes the voter keypair from a 32 byte secret. The secret is
// interpreted as a big-endian integer and reduced modulo the subgroup order;
// a zero result is remapped to 1 so the identity key is never emitted. The
// same secret yields a bit-identical keypair on every invocation and every
// platform.
func Derive(secret []byte) (*Keypair, error) {
	if len(secret) != SecretLength {
		return nil, ErrInvalidSecretLength
	}
	order := bjj.New().Order()
	s := ecc.BigToFF(order, new(big.Int).SetBytes(secret))
	if s.Sign() == 0 {
		s.SetInt64(1)
	}
	pub := bjj.New()
	pub.ScalarBaseMult(s)
	return &Keypair{Secret: s, Public: pub}, nil
}
