package storage

import (
	"errors"
	"fmt"

	"go.vocdoni.io/dvote/db/prefixeddb"
)

// setupVersionKey builds the key of a trusted setup record from its version
// string.
func setupVersionKey(version string) []byte {
	return []byte(version)
}

// SetTrustedSetup stores a trusted setup record under its version. Publishing
// an already existing version returns ErrConflict, setup material is
// immutable once published.
func (s *Storage) SetTrustedSetup(ts *TrustedSetupArtifact) error {
	if ts == nil || ts.Version == "" {
		return fmt.Errorf("trusted setup needs a version")
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	existing := &TrustedSetupArtifact{}
	err := s.getArtifact(trustedSetupPrefix, setupVersionKey(ts.Version), existing)
	if err == nil {
		return fmt.Errorf("%w: trusted setup version %q already published", ErrConflict, ts.Version)
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.setArtifact(trustedSetupPrefix, setupVersionKey(ts.Version), ts)
}

// TrustedSetup retrieves a trusted setup record by version. Returns
// ErrNotFound if the version is unknown.
func (s *Storage) TrustedSetup(version string) (*TrustedSetupArtifact, error) {
	ts := &TrustedSetupArtifact{}
	if err := s.getArtifact(trustedSetupPrefix, setupVersionKey(version), ts); err != nil {
		return nil, err
	}
	return ts, nil
}

// ListTrustedSetups returns the versions of all published trusted setups.
func (s *Storage) ListTrustedSetups() ([]string, error) {
	keys, err := s.listArtifactKeys(trustedSetupPrefix, nil)
	if err != nil {
		return nil, err
	}
	versions := make([]string, 0, len(keys))
	for _, k := range keys {
		versions = append(versions, string(k))
	}
	return versions, nil
}

// ActiveTrustedSetup returns the single active trusted setup. Returns
// ErrNotFound when no setup has been activated.
func (s *Storage) ActiveTrustedSetup() (*TrustedSetupArtifact, error) {
	versions, err := s.ListTrustedSetups()
	if err != nil {
		return nil, err
	}
	for _, v := range versions {
		ts, err := s.TrustedSetup(v)
		if err != nil {
			return nil, err
		}
		if ts.IsActive {
			return ts, nil
		}
	}
	return nil, ErrNotFound
}

// ActivateTrustedSetup marks the given version as the single active setup,
// deactivating any previously active one in the same transaction, so there is
// never a moment with two active setups on disk. Returns ErrNotFound if the
// version is unknown.
func (s *Storage) ActivateTrustedSetup(version string) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	target, err := s.TrustedSetup(version)
	if err != nil {
		return err
	}
	versions, err := s.ListTrustedSetups()
	if err != nil {
		return err
	}

	tx := s.db.WriteTx()
	wTx := prefixeddb.NewPrefixedWriteTx(tx, trustedSetupPrefix)
	for _, v := range versions {
		if v == version {
			continue
		}
		ts, err := s.TrustedSetup(v)
		if err != nil {
			tx.Discard()
			return err
		}
		if !ts.IsActive {
			continue
		}
		ts.IsActive = false
		val, err := encodeRecord(ts)
		if err != nil {
			tx.Discard()
			return fmt.Errorf("encode trusted setup: %w", err)
		}
		if err := wTx.Set(setupVersionKey(v), val); err != nil {
			tx.Discard()
			return err
		}
	}
	target.IsActive = true
	val, err := encodeRecord(target)
	if err != nil {
		tx.Discard()
		return fmt.Errorf("encode trusted setup: %w", err)
	}
	if err := wTx.Set(setupVersionKey(version), val); err != nil {
		tx.Discard()
		return err
	}
	return tx.Commit()
}
