package prover

import (
	"bytes"
	"context"
	"fmt"

	gecc "github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"

	"github.com/anonvote/nullcore/circuits/nullification"
)

// Groth16 is the production proof backend, backed by a compiled nullification
// circuit and a trusted setup key pair.
type Groth16 struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

// NewGroth16 creates a Groth16 backend from a compiled constraint system and
// the proving and verifying keys of a trusted setup. The proving key may be
// nil for a verify-only backend.
func NewGroth16(ccs constraint.ConstraintSystem, pk groth16.ProvingKey, vk groth16.VerifyingKey) *Groth16 {
	return &Groth16{ccs: ccs, pk: pk, vk: vk}
}

// Prove generates a Groth16 proof for the given witness. It returns
// ErrWitnessComputation when the witness does not satisfy the circuit.
func (g *Groth16) Prove(ctx context.Context, req *ProveRequest) (*Proof, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.pk == nil {
		return nil, fmt.Errorf("no proving key available")
	}
	assignment := nullification.Assignment(
		req.AuthorityKey, req.VoterKey, req.Ciphertext,
		req.Flag, req.Randomness, req.VoterSecret)
	witness, err := frontend.NewWitness(assignment, gecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWitnessComputation, err)
	}
	proof, err := groth16.Prove(g.ccs, g.pk, witness)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWitnessComputation, err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize proof: %w", err)
	}
	return &Proof{Data: buf.Bytes()}, nil
}

// Verify checks a Groth16 proof against the public inputs of the request.
func (g *Groth16) Verify(ctx context.Context, req *VerifyRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	proof := groth16.NewProof(gecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(req.Proof.Data)); err != nil {
		return fmt.Errorf("%w: malformed proof encoding: %v", ErrProofInvalid, err)
	}
	assignment := nullification.PublicAssignment(req.AuthorityKey, req.VoterKey, req.Ciphertext)
	witness, err := frontend.NewWitness(assignment, gecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("failed to build public witness: %w", err)
	}
	if err := groth16.Verify(proof, g.vk, witness); err != nil {
		return fmt.Errorf("%w: %v", ErrProofInvalid, err)
	}
	return nil
}
