// Package setup manages the trusted setup material of the nullification
// circuit: generation, publication, activation and integrity checks. Proving
// keys and constraint systems are large, so they live in the artifact cache
// addressed by their sha256 hash; the storage layer only keeps the record
// with the hashes and the inline verification key.
package setup

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	gecc "github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"

	"github.com/anonvote/nullcore/circuits"
	"github.com/anonvote/nullcore/circuits/nullification"
	"github.com/anonvote/nullcore/log"
	"github.com/anonvote/nullcore/prover"
	"github.com/anonvote/nullcore/storage"
)

var (
	// ErrSetupMissing is returned when no active trusted setup exists.
	ErrSetupMissing = errors.New("no active trusted setup")
	// ErrIntegrityMismatch is returned when cached setup material does not
	// match the hash recorded at publication time.
	ErrIntegrityMismatch = errors.New("trusted setup integrity mismatch")
)

// Manager handles the lifecycle of trusted setup material.
type Manager struct {
	stg *storage.Storage
}

// NewManager creates a setup Manager on top of the given storage.
func NewManager(stg *storage.Storage) *Manager {
	return &Manager{stg: stg}
}

// Generate compiles the nullification circuit, runs the Groth16 setup
// ceremony locally and publishes the result under the given version. The
// local ceremony is only trustworthy for development; production setups are
// produced externally and registered with Publish.
func (m *Manager) Generate(ctx context.Context, version string) (*storage.TrustedSetupArtifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Infow("compiling nullification circuit", "version", version)
	ccs, err := nullification.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile circuit: %w", err)
	}
	log.Infow("running groth16 setup", "version", version, "constraints", ccs.GetNbConstraints())
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup failed: %w", err)
	}
	return m.Publish(version, ccs, pk, vk)
}

// Publish stores the setup material in the artifact cache and registers the
// record under the given version. Re-publishing an existing version fails.
func (m *Manager) Publish(version string, ccs constraint.ConstraintSystem,
	pk groth16.ProvingKey, vk groth16.VerifyingKey,
) (*storage.TrustedSetupArtifact, error) {
	var ccsBuf, pkBuf, vkBuf bytes.Buffer
	if _, err := ccs.WriteTo(&ccsBuf); err != nil {
		return nil, fmt.Errorf("failed to serialize constraint system: %w", err)
	}
	if _, err := pk.WriteTo(&pkBuf); err != nil {
		return nil, fmt.Errorf("failed to serialize proving key: %w", err)
	}
	if _, err := vk.WriteTo(&vkBuf); err != nil {
		return nil, fmt.Errorf("failed to serialize verification key: %w", err)
	}

	ccsArt := &circuits.Artifact{Content: ccsBuf.Bytes()}
	if err := ccsArt.Store(); err != nil {
		return nil, fmt.Errorf("failed to store constraint system: %w", err)
	}
	pkArt := &circuits.Artifact{Content: pkBuf.Bytes()}
	if err := pkArt.Store(); err != nil {
		return nil, fmt.Errorf("failed to store proving key: %w", err)
	}

	ts := &storage.TrustedSetupArtifact{
		Version:         version,
		ProvingKeyRef:   hex.EncodeToString(pkArt.Hash),
		ProvingKeyHash:  pkArt.Hash,
		ConstraintsHash: ccsArt.Hash,
		VerificationKey: vkBuf.Bytes(),
		CreatedAt:       time.Now().UTC(),
	}
	if err := m.stg.SetTrustedSetup(ts); err != nil {
		return nil, err
	}
	log.Infow("trusted setup published", "version", version,
		"provingKeyHash", ts.ProvingKeyHash.String())
	return ts, nil
}

// Activate marks a published version as the single active setup.
func (m *Manager) Activate(version string) error {
	return m.stg.ActivateTrustedSetup(version)
}

// Active returns the currently active setup record, or ErrSetupMissing.
func (m *Manager) Active() (*storage.TrustedSetupArtifact, error) {
	ts, err := m.stg.ActiveTrustedSetup()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSetupMissing
		}
		return nil, err
	}
	return ts, nil
}

// VerifyIntegrity checks that the cached setup material still matches the
// hashes recorded at publication time. It returns ErrIntegrityMismatch when
// any artifact was tampered with or lost.
func (m *Manager) VerifyIntegrity(ts *storage.TrustedSetupArtifact) error {
	for _, hash := range [][]byte{ts.ConstraintsHash, ts.ProvingKeyHash} {
		art := &circuits.Artifact{Hash: hash}
		if err := art.Load(); err != nil {
			return fmt.Errorf("%w: %v", ErrIntegrityMismatch, err)
		}
		sum := sha256.Sum256(art.Content)
		if !bytes.Equal(sum[:], hash) {
			return fmt.Errorf("%w: artifact %x", ErrIntegrityMismatch, hash)
		}
	}
	return nil
}

// loadVerifyingKey decodes the inline verification key of a record.
func loadVerifyingKey(ts *storage.TrustedSetupArtifact) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(gecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(ts.VerificationKey)); err != nil {
		return nil, fmt.Errorf("failed to decode verification key: %w", err)
	}
	return vk, nil
}

// ProvingBackend loads the active setup material from the artifact cache and
// returns a full Groth16 backend able to prove and verify.
func (m *Manager) ProvingBackend(ctx context.Context) (*prover.Groth16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ts, err := m.Active()
	if err != nil {
		return nil, err
	}
	if err := m.VerifyIntegrity(ts); err != nil {
		return nil, err
	}
	ccsArt := &circuits.Artifact{Hash: ts.ConstraintsHash}
	if err := ccsArt.Load(); err != nil {
		return nil, fmt.Errorf("failed to load constraint system: %w", err)
	}
	ccs := groth16.NewCS(gecc.BN254)
	if _, err := ccs.ReadFrom(bytes.NewReader(ccsArt.Content)); err != nil {
		return nil, fmt.Errorf("failed to decode constraint system: %w", err)
	}
	pkArt := &circuits.Artifact{Hash: ts.ProvingKeyHash}
	if err := pkArt.Load(); err != nil {
		return nil, fmt.Errorf("failed to load proving key: %w", err)
	}
	pk := groth16.NewProvingKey(gecc.BN254)
	if _, err := pk.ReadFrom(bytes.NewReader(pkArt.Content)); err != nil {
		return nil, fmt.Errorf("failed to decode proving key: %w", err)
	}
	vk, err := loadVerifyingKey(ts)
	if err != nil {
		return nil, err
	}
	return prover.NewGroth16(ccs, pk, vk), nil
}

// VerifyingBackend returns a verify-only Groth16 backend for the active
// setup. The verification key is stored inline in the record, but the
// cached setup material is still checked against the published hashes, so a
// tampered setup is refused on the verify path as well as the prove path.
func (m *Manager) VerifyingBackend(ctx context.Context) (*prover.Groth16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ts, err := m.Active()
	if err != nil {
		return nil, err
	}
	if err := m.VerifyIntegrity(ts); err != nil {
		return nil, err
	}
	vk, err := loadVerifyingKey(ts)
	if err != nil {
		return nil, err
	}
	return prover.NewGroth16(nil, nil, vk), nil
}
