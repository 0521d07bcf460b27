package storage

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/anonvote/nullcore/crypto/ecc/curves"
	"github.com/anonvote/nullcore/crypto/elgamal"
	"github.com/anonvote/nullcore/prover"
	"github.com/anonvote/nullcore/types"
)

func testElectionID(nonce uint64) types.HexBytes {
	id := types.ElectionID{
		ChainID: 1,
		Address: common.HexToAddress("0x1234567890123456789012345678901234567890"),
		Nonce:   nonce,
	}
	return id.Marshal()
}

func testElection(nonce uint64) *Election {
	return &Election{
		ID:            testElectionID(nonce),
		Choices:       []string{"A", "B"},
		AuthorityKeyX: types.NewInt(1),
		AuthorityKeyY: types.NewInt(2),
		Status:        types.StatusActive,
		EndTime:       time.Now().Add(time.Hour).UTC(),
	}
}

func TestElectionRoundTrip(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	e := testElection(1)
	c.Assert(stg.SetElection(e), qt.IsNil)

	got, err := stg.Election(e.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Choices, qt.DeepEquals, e.Choices)
	c.Assert(got.Status, qt.Equals, types.StatusActive)

	ids, err := stg.ListElections()
	c.Assert(err, qt.IsNil)
	c.Assert(ids, qt.HasLen, 1)

	_, err = stg.Election(testElectionID(99))
	c.Assert(err, qt.ErrorIs, ErrNotFound)
}

func TestTransitionElectionStatus(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	e := testElection(1)
	c.Assert(stg.SetElection(e), qt.IsNil)

	err := stg.TransitionElectionStatus(e.ID, types.StatusActive, types.StatusClosed)
	c.Assert(err, qt.IsNil)

	// a second transition from Active must conflict
	err = stg.TransitionElectionStatus(e.ID, types.StatusActive, types.StatusClosed)
	c.Assert(err, qt.ErrorIs, ErrConflict)

	got, err := stg.Election(e.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Status, qt.Equals, types.StatusClosed)
}

func TestVotes(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	eid := testElectionID(1)
	voter := common.HexToAddress("0x0000000000000000000000000000000000000001")
	c.Assert(stg.SetVote(eid, &Vote{Voter: voter, Choice: "A"}), qt.IsNil)

	// a later vote by the same voter replaces the earlier one
	c.Assert(stg.SetVote(eid, &Vote{Voter: voter, Choice: "B"}), qt.IsNil)

	v, err := stg.Vote(eid, voter)
	c.Assert(err, qt.IsNil)
	c.Assert(v.Choice, qt.Equals, "B")

	votes, err := stg.Votes(eid)
	c.Assert(err, qt.IsNil)
	c.Assert(votes, qt.HasLen, 1)

	// votes from another election stay invisible
	other := testElectionID(2)
	c.Assert(stg.SetVote(other, &Vote{Voter: voter, Choice: "A"}), qt.IsNil)
	count, err := stg.CountVotes(eid)
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, 1)
}

func TestNullifications(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	eid := testElectionID(1)
	voter := common.HexToAddress("0x0000000000000000000000000000000000000002")

	curve := curves.NewDefault()
	authKey, _, err := elgamal.GenerateKey(curve)
	c.Assert(err, qt.IsNil)
	createdAt := time.Now().UTC()
	for i := range 3 {
		ct, err := elgamal.NewCiphertext(curve).Encrypt(big.NewInt(int64(i%2)), authKey, nil)
		c.Assert(err, qt.IsNil)
		rec := &NullificationRecord{
			ElectionID: eid,
			Voter:      voter,
			VoterKeyX:  types.NewInt(int64(i)),
			VoterKeyY:  types.NewInt(int64(i)),
			Ciphertext: ct,
			Proof:      &prover.Proof{Data: []byte{byte(i)}},
			CreatedAt:  createdAt,
		}
		c.Assert(stg.PushNullification(rec), qt.IsNil)
	}

	records, err := stg.Nullifications(eid)
	c.Assert(err, qt.IsNil)
	c.Assert(records, qt.HasLen, 3)
	for _, r := range records {
		c.Assert(r.Voter, qt.Equals, voter)
		c.Assert(r.Ciphertext.C1.IsOnCurve(), qt.IsTrue)
	}

	count, err := stg.CountNullifications(testElectionID(2))
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, 0)
}

func TestCommitTally(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	e := testElection(1)
	e.Status = types.StatusTallyInProgress
	c.Assert(stg.SetElection(e), qt.IsNil)

	voter := common.HexToAddress("0x0000000000000000000000000000000000000003")
	entries := []*TallyEntry{{
		ElectionID:         e.ID,
		Voter:              voter,
		NullificationCount: 2,
		VoteNullified:      true,
		ProcessedAt:        time.Now().UTC(),
	}}
	result := &TallyResult{
		RawTotals:       map[string]uint64{"A": 2, "B": 1},
		AdjustedTotals:  map[string]uint64{"A": 1, "B": 1},
		NullifiedVoters: 1,
	}
	c.Assert(stg.CommitTally(e.ID, entries, result), qt.IsNil)

	got, err := stg.Election(e.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Status, qt.Equals, types.StatusTallied)
	c.Assert(got.AdjustedTotals, qt.DeepEquals, result.AdjustedTotals)
	c.Assert(got.NullifiedVoters, qt.Equals, uint64(1))

	entry, err := stg.TallyEntry(e.ID, voter)
	c.Assert(err, qt.IsNil)
	c.Assert(entry.VoteNullified, qt.IsTrue)

	// a second commit must conflict, the election is already tallied
	err = stg.CommitTally(e.ID, entries, result)
	c.Assert(err, qt.ErrorIs, ErrConflict)
}

func TestCommitTallyRequiresInProgress(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	e := testElection(1)
	c.Assert(stg.SetElection(e), qt.IsNil)

	err := stg.CommitTally(e.ID, nil, &TallyResult{})
	c.Assert(err, qt.ErrorIs, ErrConflict)

	entries, err := stg.TallyEntries(e.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(entries, qt.HasLen, 0)
}

func TestTrustedSetups(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	v1 := &TrustedSetupArtifact{
		Version:         "v1",
		ProvingKeyRef:   "cafe01",
		ProvingKeyHash:  types.HexStringToHexBytes("0xcafe01"),
		VerificationKey: []byte("vk1"),
		CreatedAt:       time.Now().UTC(),
	}
	c.Assert(stg.SetTrustedSetup(v1), qt.IsNil)

	// versions are immutable once published
	err := stg.SetTrustedSetup(v1)
	c.Assert(err, qt.ErrorIs, ErrConflict)

	_, err = stg.ActiveTrustedSetup()
	c.Assert(err, qt.ErrorIs, ErrNotFound)

	c.Assert(stg.ActivateTrustedSetup("v1"), qt.IsNil)
	active, err := stg.ActiveTrustedSetup()
	c.Assert(err, qt.IsNil)
	c.Assert(active.Version, qt.Equals, "v1")

	// activating another version deactivates the previous one
	v2 := &TrustedSetupArtifact{Version: "v2", VerificationKey: []byte("vk2")}
	c.Assert(stg.SetTrustedSetup(v2), qt.IsNil)
	c.Assert(stg.ActivateTrustedSetup("v2"), qt.IsNil)

	active, err = stg.ActiveTrustedSetup()
	c.Assert(err, qt.IsNil)
	c.Assert(active.Version, qt.Equals, "v2")
	old, err := stg.TrustedSetup("v1")
	c.Assert(err, qt.IsNil)
	c.Assert(old.IsActive, qt.IsFalse)

	// the swap leaves exactly one active version on disk
	versions, err := stg.ListTrustedSetups()
	c.Assert(err, qt.IsNil)
	activeCount := 0
	for _, v := range versions {
		ts, err := stg.TrustedSetup(v)
		c.Assert(err, qt.IsNil)
		if ts.IsActive {
			activeCount++
		}
	}
	c.Assert(activeCount, qt.Equals, 1)

	c.Assert(stg.ActivateTrustedSetup("v3"), qt.ErrorIs, ErrNotFound)
}
