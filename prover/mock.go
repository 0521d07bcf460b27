package prover

import (
	"context"
	"fmt"
	"math/big"

	"github.com/anonvote/nullcore/circuits"
	"github.com/anonvote/nullcore/crypto/elgamal"
	"github.com/anonvote/nullcore/crypto/hash/poseidon"
)

// mock proof domain tags, bound into the transcript so a proof generated
// from an inconsistent witness never verifies
const (
	mockTagValid   = 1
	mockTagInvalid = 2
)

// Mock is a proof backend that replaces the zkSNARK with a deterministic
// poseidon transcript over the public inputs. Proofs from well-formed
// witnesses verify and proofs from inconsistent witnesses do not, so the
// tally engine behaves exactly as with the Groth16 backend. It offers no
// soundness and must never be used outside tests and local development.
type Mock struct{}

// NewMock creates a new mock proof backend.
func NewMock() *Mock {
	return &Mock{}
}

func mockTranscript(tag int64, req *VerifyRequest) ([]byte, error) {
	akx, aky := req.AuthorityKey.Point()
	vkx, vky := req.VoterKey.Point()
	c1x, c1y := req.Ciphertext.C1.Point()
	c2x, c2y := req.Ciphertext.C2.Point()
	h, err := poseidon.MultiPoseidon(
		big.NewInt(tag), akx, aky, vkx, vky, c1x, c1y, c2x, c2y)
	if err != nil {
		return nil, fmt.Errorf("failed to compute mock transcript: %w", err)
	}
	return h.Bytes(), nil
}

// witnessConsistent reports whether the witness satisfies the same relations
// the real circuit enforces.
func witnessConsistent(req *ProveRequest) bool {
	// the ciphertext must encrypt the flag with the claimed randomness
	c1, c2, err := elgamal.EncryptWithK(req.AuthorityKey, circuits.BoolToBigInt(req.Flag), req.Randomness)
	if err != nil {
		return false
	}
	if !c1.Equal(req.Ciphertext.C1) || !c2.Equal(req.Ciphertext.C2) {
		return false
	}
	// a revocation must know the secret behind the voter key
	if req.Flag {
		if req.VoterSecret == nil {
			return false
		}
		pk := req.VoterKey.New()
		pk.ScalarBaseMult(req.VoterSecret)
		if !pk.Equal(req.VoterKey) {
			return false
		}
	}
	return true
}

// Prove builds the transcript for the request. An inconsistent witness still
// yields a proof, tagged so that Verify rejects it, mirroring what happens
// when a malformed submission reaches the tally.
func (m *Mock) Prove(ctx context.Context, req *ProveRequest) (*Proof, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tag := int64(mockTagInvalid)
	if witnessConsistent(req) {
		tag = mockTagValid
	}
	transcript, err := mockTranscript(tag, &VerifyRequest{
		AuthorityKey: req.AuthorityKey,
		VoterKey:     req.VoterKey,
		Ciphertext:   req.Ciphertext,
	})
	if err != nil {
		return nil, err
	}
	return &Proof{Data: transcript}, nil
}

// Verify recomputes the valid transcript for the public inputs and compares.
func (m *Mock) Verify(ctx context.Context, req *VerifyRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	expected, err := mockTranscript(mockTagValid, req)
	if err != nil {
		return err
	}
	if !req.Proof.Data.Equal(expected) {
		return ErrProofInvalid
	}
	return nil
}
