package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/anonvote/nullcore/types"
)

// voteKey builds the key of a vote from the election ID and voter address,
// so each voter holds at most one vote per election.
func voteKey(electionID types.HexBytes, voter common.Address) []byte {
	return append(append([]byte{}, electionID...), voter.Bytes()...)
}

// SetVote stores a vote for an election. A later vote by the same voter
// replaces the earlier one.
func (s *Storage) SetVote(electionID types.HexBytes, v *Vote) error {
	if v == nil {
		return fmt.Errorf("nil vote")
	}
	return s.setArtifact(votePrefix, voteKey(electionID, v.Voter), v)
}

// Vote retrieves the vote of a voter in an election. Returns ErrNotFound if
// the voter has not voted.
func (s *Storage) Vote(electionID types.HexBytes, voter common.Address) (*Vote, error) {
	v := &Vote{}
	if err := s.getArtifact(votePrefix, voteKey(electionID, voter), v); err != nil {
		return nil, err
	}
	return v, nil
}

// Votes returns all votes cast in an election.
func (s *Storage) Votes(electionID types.HexBytes) ([]*Vote, error) {
	keys, err := s.listArtifactKeys(votePrefix, electionID)
	if err != nil {
		return nil, err
	}
	votes := make([]*Vote, 0, len(keys))
	for _, key := range keys {
		v := &Vote{}
		if err := s.getArtifact(votePrefix, key, v); err != nil {
			return nil, fmt.Errorf("failed to load vote %x: %w", key, err)
		}
		votes = append(votes, v)
	}
	return votes, nil
}

// CountVotes returns the number of votes cast in an election.
func (s *Storage) CountVotes(electionID types.HexBytes) (int, error) {
	keys, err := s.listArtifactKeys(votePrefix, electionID)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
