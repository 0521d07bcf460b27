// Package prover generates and verifies nullification proofs. The Groth16
// backend is the real prover; the Mock backend produces cheap deterministic
// transcripts with the same acceptance behavior, for tests and local
// development.
package prover

import (
	"context"
	"errors"
	"math/big"

	"github.com/anonvote/nullcore/crypto/ecc"
	"github.com/anonvote/nullcore/crypto/elgamal"
	"github.com/anonvote/nullcore/types"
)

var (
	// ErrWitnessComputation is returned when the witness cannot be built or
	// does not satisfy the circuit constraints.
	ErrWitnessComputation = errors.New("witness computation failed")
	// ErrProofInvalid is returned by Verify when the proof does not verify
	// against the public inputs.
	ErrProofInvalid = errors.New("proof verification failed")
)

// Proof is an opaque serialized nullification proof.
type Proof struct {
	Data types.HexBytes `json:"data"`
}

// ProveRequest carries the full witness of a nullification submission.
type ProveRequest struct {
	// AuthorityKey is the tally authority encryption key.
	AuthorityKey ecc.Point
	// VoterKey is the public key the submission targets.
	VoterKey ecc.Point
	// Ciphertext is the encryption of Flag under AuthorityKey with
	// randomness Randomness.
	Ciphertext *elgamal.Ciphertext
	// Flag is true for a revocation, false for a dummy.
	Flag bool
	// Randomness is the encryption randomness used for Ciphertext.
	Randomness *big.Int
	// VoterSecret is the scalar behind VoterKey. Required when Flag is
	// true, ignored otherwise.
	VoterSecret *big.Int
}

// VerifyRequest carries the public inputs of a submission and the proof to
// check against them.
type VerifyRequest struct {
	AuthorityKey ecc.Point
	VoterKey     ecc.Point
	Ciphertext   *elgamal.Ciphertext
	Proof        *Proof
}

// Backend generates and verifies nullification proofs.
type Backend interface {
	// Prove generates a proof for the given witness.
	Prove(ctx context.Context, req *ProveRequest) (*Proof, error)
	// Verify checks a proof against its public inputs. It returns
	// ErrProofInvalid when the proof does not verify.
	Verify(ctx context.Context, req *VerifyRequest) error
}
