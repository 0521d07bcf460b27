// Package storage persists the authority-side state of the nullification
// system in a prefixed key-value store: elections with their lifecycle
// status, plain votes, nullification submissions, per-voter tally entries and
// trusted setup artifacts. The following prefixes are used:
//   - 'e/' for elections
//   - 'v/' for votes
//   - 'n/' for nullification submissions
//   - 't/' for tally entries
//   - 's/' for trusted setup artifacts
package storage

import (
	"errors"
	"sync"

	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var (
	// Prefixes for the keys in the database.
	electionPrefix      = []byte("e/")
	votePrefix          = []byte("v/")
	nullificationPrefix = []byte("n/")
	tallyEntryPrefix    = []byte("t/")
	trustedSetupPrefix  = []byte("s/")
)

const (
	// maxKeySize is the maximum size of the key in bytes. It is used to
	// generate the key of content-addressed artifacts by truncating the hash
	// of the artifact itself.
	maxKeySize = 12
)

var (
	// ErrNotFound is returned when the requested artifact does not exist.
	ErrNotFound = errors.New("artifact not found")
	// ErrConflict is returned by compare-and-swap operations when the stored
	// state does not match the expected one.
	ErrConflict = errors.New("conflicting storage state")
)

// Storage is the interface that wraps the basic methods to interact with the
// storage.
type Storage struct {
	db db.Database
	// globalLock serializes read-modify-write sequences that span a read
	// and a write transaction.
	globalLock sync.Mutex
}

// New creates a new Storage instance.
func New(db db.Database) *Storage {
	return &Storage{db: db}
}

// Close closes the storage.
func (s *Storage) Close() {
	s.db.Close()
}

// setArtifact encodes and stores an artifact under the given prefix and key.
func (s *Storage) setArtifact(prefix, key []byte, artifact any) error {
	val, err := encodeRecord(artifact)
	if err != nil {
		return err
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Set(key, val); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

// getArtifact loads and decodes the artifact stored under the given prefix
// and key into out. Returns ErrNotFound if the key does not exist.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	val, err := rd.Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	return decodeRecord(val, out)
}

// listArtifactKeys returns a copy of all keys stored under the given prefix,
// optionally filtered by a key sub-prefix.
func (s *Storage) listArtifactKeys(prefix, subPrefix []byte) ([][]byte, error) {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	var keys [][]byte
	if err := rd.Iterate(subPrefix, func(k, _ []byte) bool {
		key := make([]byte, len(subPrefix)+len(k))
		copy(key, subPrefix)
		copy(key[len(subPrefix):], k)
		keys = append(keys, key)
		return true
	}); err != nil {
		return nil, err
	}
	return keys, nil
}
