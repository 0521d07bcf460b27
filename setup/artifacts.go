package setup

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/anonvote/nullcore/circuits"
	"github.com/anonvote/nullcore/config"
	"github.com/anonvote/nullcore/storage"
)

// DefaultArtifacts returns the remote artifact set of the bundled circuit
// version, ready to be downloaded into the local cache.
func DefaultArtifacts() *circuits.CircuitArtifacts {
	return circuits.NewCircuitArtifacts(
		&circuits.Artifact{
			RemoteURL: config.NullificationCircuitURL,
			Hash:      hexToBytes(config.NullificationCircuitHash),
		},
		&circuits.Artifact{
			RemoteURL: config.NullificationProvingKeyURL,
			Hash:      hexToBytes(config.NullificationProvingKeyHash),
		},
		&circuits.Artifact{
			RemoteURL: config.NullificationVerificationKeyURL,
			Hash:      hexToBytes(config.NullificationVerificationKeyHash),
		},
	)
}

// PublishDefault downloads the bundled circuit artifacts and registers them
// as a trusted setup under config.CircuitVersion. It is the counterpart of
// Generate for deployments that use the published ceremony output instead of
// a local one.
func (m *Manager) PublishDefault(ctx context.Context) (*storage.TrustedSetupArtifact, error) {
	arts := DefaultArtifacts()
	if err := arts.DownloadAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to download circuit artifacts: %w", err)
	}
	if err := arts.LoadAll(); err != nil {
		return nil, fmt.Errorf("failed to load circuit artifacts: %w", err)
	}
	ts := &storage.TrustedSetupArtifact{
		Version:         config.CircuitVersion,
		ProvingKeyRef:   config.NullificationProvingKeyHash,
		ProvingKeyHash:  hexToBytes(config.NullificationProvingKeyHash),
		ConstraintsHash: hexToBytes(config.NullificationCircuitHash),
		VerificationKey: arts.VerifyingKey(),
		CreatedAt:       time.Now().UTC(),
	}
	if err := m.stg.SetTrustedSetup(ts); err != nil {
		return nil, err
	}
	return ts, nil
}

func hexToBytes(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(fmt.Sprintf("invalid artifact hash constant: %v", err))
	}
	return b
}
