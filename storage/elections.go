package storage

import (
	"fmt"

	"github.com/anonvote/nullcore/types"
)

// SetElection stores an election record, overwriting any previous one with
// the same ID.
func (s *Storage) SetElection(e *Election) error {
	if e == nil {
		return fmt.Errorf("nil election")
	}
	return s.setArtifact(electionPrefix, e.ID, e)
}

// Election retrieves an election by ID. Returns ErrNotFound if it does not
// exist.
func (s *Storage) Election(id types.HexBytes) (*Election, error) {
	e := &Election{}
	if err := s.getArtifact(electionPrefix, id, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListElections returns the IDs of all stored elections.
func (s *Storage) ListElections() ([][]byte, error) {
	return s.listArtifactKeys(electionPrefix, nil)
}

// TransitionElectionStatus atomically moves an election from one status to
// another. It returns ErrConflict when the stored status does not match the
// expected one, which makes concurrent transitions fail fast instead of
// racing each other.
func (s *Storage) TransitionElectionStatus(id types.HexBytes, from, to uint8) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	e, err := s.Election(id)
	if err != nil {
		return err
	}
	if e.Status != from {
		return fmt.Errorf("%w: election %x is %s, expected %s",
			ErrConflict, id, types.StatusName(e.Status), types.StatusName(from))
	}
	e.Status = to
	return s.setArtifact(electionPrefix, id, e)
}
