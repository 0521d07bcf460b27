package storage

import (
	"fmt"

	"github.com/anonvote/nullcore/types"
)

// PushNullification appends a nullification submission for an election. The
// key is the election ID followed by a content hash, so duplicate submissions
// collapse into one record while distinct ones accumulate.
func (s *Storage) PushNullification(n *NullificationRecord) error {
	if n == nil {
		return fmt.Errorf("nil nullification record")
	}
	val, err := encodeRecord(n)
	if err != nil {
		return fmt.Errorf("encode nullification: %w", err)
	}
	key := append(append([]byte{}, n.ElectionID...), hashKey(val)...)
	return s.setArtifact(nullificationPrefix, key, n)
}

// Nullifications returns all nullification submissions of an election, in
// key order.
func (s *Storage) Nullifications(electionID types.HexBytes) ([]*NullificationRecord, error) {
	keys, err := s.listArtifactKeys(nullificationPrefix, electionID)
	if err != nil {
		return nil, err
	}
	records := make([]*NullificationRecord, 0, len(keys))
	for _, key := range keys {
		n := &NullificationRecord{}
		if err := s.getArtifact(nullificationPrefix, key, n); err != nil {
			return nil, fmt.Errorf("failed to load nullification %x: %w", key, err)
		}
		records = append(records, n)
	}
	return records, nil
}

// CountNullifications returns the number of stored submissions for an
// election.
func (s *Storage) CountNullifications(electionID types.HexBytes) (int, error) {
	keys, err := s.listArtifactKeys(nullificationPrefix, electionID)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
