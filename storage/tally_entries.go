package storage

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/dvote/db/prefixeddb"

	"github.com/anonvote/nullcore/types"
)

// tallyEntryKey builds the key of a tally entry from the election ID and
// voter address.
func tallyEntryKey(electionID types.HexBytes, voter common.Address) []byte {
	return append(append([]byte{}, electionID...), voter.Bytes()...)
}

// TallyEntry retrieves the tally entry of a voter in an election. Returns
// ErrNotFound if the election has not been tallied or the voter cast no vote.
func (s *Storage) TallyEntry(electionID types.HexBytes, voter common.Address) (*TallyEntry, error) {
	e := &TallyEntry{}
	if err := s.getArtifact(tallyEntryPrefix, tallyEntryKey(electionID, voter), e); err != nil {
		return nil, err
	}
	return e, nil
}

// TallyEntries returns all tally entries of an election.
func (s *Storage) TallyEntries(electionID types.HexBytes) ([]*TallyEntry, error) {
	keys, err := s.listArtifactKeys(tallyEntryPrefix, electionID)
	if err != nil {
		return nil, err
	}
	entries := make([]*TallyEntry, 0, len(keys))
	for _, key := range keys {
		e := &TallyEntry{}
		if err := s.getArtifact(tallyEntryPrefix, key, e); err != nil {
			return nil, fmt.Errorf("failed to load tally entry %x: %w", key, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// TallyResult is the aggregate outcome committed together with the per-voter
// entries.
type TallyResult struct {
	RawTotals       map[string]uint64
	AdjustedTotals  map[string]uint64
	NullifiedVoters uint64
}

// CommitTally writes all per-voter tally entries and the election results in
// a single transaction, flipping the election status from TallyInProgress to
// Tallied. Either everything commits or nothing does; a crash mid-tally
// leaves the election without results and with no entries, ready for a
// retry.
func (s *Storage) CommitTally(electionID types.HexBytes, entries []*TallyEntry, result *TallyResult) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	e, err := s.Election(electionID)
	if err != nil {
		return err
	}
	if e.Status != types.StatusTallyInProgress {
		return fmt.Errorf("%w: election %x is %s, expected %s",
			ErrConflict, electionID, types.StatusName(e.Status),
			types.StatusName(types.StatusTallyInProgress))
	}

	e.Status = types.StatusTallied
	e.RawTotals = result.RawTotals
	e.AdjustedTotals = result.AdjustedTotals
	e.NullifiedVoters = result.NullifiedVoters
	e.TalliedAt = time.Now().UTC()

	tx := s.db.WriteTx()
	entryTx := prefixeddb.NewPrefixedWriteTx(tx, tallyEntryPrefix)
	for _, entry := range entries {
		val, err := encodeRecord(entry)
		if err != nil {
			tx.Discard()
			return fmt.Errorf("encode tally entry: %w", err)
		}
		if err := entryTx.Set(tallyEntryKey(electionID, entry.Voter), val); err != nil {
			tx.Discard()
			return err
		}
	}
	electionVal, err := encodeRecord(e)
	if err != nil {
		tx.Discard()
		return fmt.Errorf("encode election: %w", err)
	}
	electionTx := prefixeddb.NewPrefixedWriteTx(tx, electionPrefix)
	if err := electionTx.Set(electionID, electionVal); err != nil {
		tx.Discard()
		return err
	}
	return tx.Commit()
}
