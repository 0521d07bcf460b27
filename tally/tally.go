// Package tally implements the authority-side tally engine. It verifies the
// stored nullification proofs, homomorphically aggregates the valid
// ciphertexts per voter, decrypts the accumulators with the authority key
// and commits the per-voter entries and adjusted totals atomically.
package tally

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/anonvote/nullcore/crypto/dlog"
	"github.com/anonvote/nullcore/crypto/ecc"
	"github.com/anonvote/nullcore/crypto/ecc/curves"
	"github.com/anonvote/nullcore/crypto/elgamal"
	"github.com/anonvote/nullcore/log"
	"github.com/anonvote/nullcore/prover"
	"github.com/anonvote/nullcore/storage"
	"github.com/anonvote/nullcore/types"
)

// DefaultDlogBound is the default bound of the discrete log table. It caps
// the number of valid submissions per voter that can be resolved to an exact
// count.
const DefaultDlogBound = 1024

var (
	// ErrElectionStillActive is returned when the election has not ended.
	ErrElectionStillActive = errors.New("election is still active")
	// ErrTallyInProgress is returned when another tally run holds the
	// election.
	ErrTallyInProgress = errors.New("tally already in progress")
	// ErrAlreadyProcessed is returned when the election was already tallied.
	ErrAlreadyProcessed = errors.New("election already tallied")
	// ErrAuthorityKeyMismatch is returned when the provided private key does
	// not correspond to the election authority key.
	ErrAuthorityKeyMismatch = errors.New("authority key mismatch")
)

// Config carries the collaborators of the tally engine.
type Config struct {
	// Backend verifies the nullification proofs.
	Backend prover.Backend
	// DlogBound overrides DefaultDlogBound when non-zero.
	DlogBound uint64
	// IntegrityCheck, when set, gates every run; any error aborts the tally
	// before touching the election.
	IntegrityCheck func() error
	// ProcessedBy labels the tally entries with the identity of the runner.
	ProcessedBy string
}

// Engine runs tallies over stored elections.
type Engine struct {
	stg     *storage.Storage
	backend prover.Backend
	table   *dlog.Table
	check   func() error
	runner  string
}

// NewEngine creates a tally engine. The discrete log table is precomputed
// once at construction.
func NewEngine(stg *storage.Storage, cfg Config) *Engine {
	bound := cfg.DlogBound
	if bound == 0 {
		bound = DefaultDlogBound
	}
	return &Engine{
		stg:     stg,
		backend: cfg.Backend,
		table:   dlog.NewTable(curves.NewDefault(), bound),
		check:   cfg.IntegrityCheck,
		runner:  cfg.ProcessedBy,
	}
}

// Result is the outcome of a tally run.
type Result struct {
	Entries         []*storage.TallyEntry
	RawTotals       map[string]uint64
	AdjustedTotals  map[string]uint64
	NullifiedVoters uint64
	// ExcludedProofs counts submissions dropped for failing verification.
	ExcludedProofs int
}

// Run executes the tally of an election with the authority private key. It
// claims the election with a status transition, so concurrent runs on the
// same election fail fast with ErrTallyInProgress. On error or context
// cancellation the claim is reverted and no entries are written.
func (e *Engine) Run(ctx context.Context, electionID types.HexBytes, authorityKey *big.Int) (*Result, error) {
	if e.check != nil {
		if err := e.check(); err != nil {
			return nil, err
		}
	}
	election, err := e.stg.Election(electionID)
	if err != nil {
		return nil, err
	}
	expire := false
	switch election.Status {
	case types.StatusActive:
		if time.Now().Before(election.EndTime) {
			return nil, ErrElectionStillActive
		}
		// the end time passed; mark it expired once the guards pass, so a
		// rejected run leaves the election untouched
		expire = true
	case types.StatusClosed, types.StatusExpired:
	case types.StatusTallyInProgress:
		return nil, ErrTallyInProgress
	case types.StatusTallied:
		return nil, ErrAlreadyProcessed
	default:
		return nil, fmt.Errorf("unexpected election status %s", types.StatusName(election.Status))
	}

	authPub, err := electionAuthorityKey(election)
	if err != nil {
		return nil, err
	}
	check := authPub.New()
	check.ScalarBaseMult(authorityKey)
	if !check.Equal(authPub) {
		return nil, ErrAuthorityKeyMismatch
	}

	if expire {
		if err := e.stg.TransitionElectionStatus(electionID, types.StatusActive, types.StatusExpired); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return nil, ErrTallyInProgress
			}
			return nil, err
		}
		election.Status = types.StatusExpired
	}

	prevStatus := election.Status
	if err := e.stg.TransitionElectionStatus(electionID, prevStatus, types.StatusTallyInProgress); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrTallyInProgress
		}
		return nil, err
	}
	revert := func() {
		if err := e.stg.TransitionElectionStatus(electionID, types.StatusTallyInProgress, prevStatus); err != nil {
			log.Errorw(err, fmt.Sprintf("failed to revert tally claim on election %x", electionID))
		}
	}

	result, entries, err := e.tally(ctx, election, authPub, authorityKey)
	if err != nil {
		revert()
		return nil, err
	}
	if err := e.stg.CommitTally(electionID, entries, &storage.TallyResult{
		RawTotals:       result.RawTotals,
		AdjustedTotals:  result.AdjustedTotals,
		NullifiedVoters: result.NullifiedVoters,
	}); err != nil {
		revert()
		return nil, err
	}
	log.Infow("tally committed", "election", fmt.Sprintf("%x", electionID),
		"voters", len(entries), "nullified", result.NullifiedVoters,
		"excludedProofs", result.ExcludedProofs)
	result.Entries = entries
	return result, nil
}

// tally does the actual work between the claim and the commit.
func (e *Engine) tally(ctx context.Context, election *storage.Election,
	authPub ecc.Point, authorityKey *big.Int,
) (*Result, []*storage.TallyEntry, error) {
	records, err := e.stg.Nullifications(election.ID)
	if err != nil {
		return nil, nil, err
	}

	// verify every submission and aggregate the valid ciphertexts per voter
	type accumulator struct {
		ct    *elgamal.Ciphertext
		valid int
	}
	accs := make(map[common.Address]*accumulator)
	excluded := 0
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		voterKey, err := recordVoterKey(rec)
		if err != nil {
			log.Warnw("skipping malformed submission", "voter", rec.Voter.Hex(), "error", err.Error())
			excluded++
			continue
		}
		err = e.backend.Verify(ctx, &prover.VerifyRequest{
			AuthorityKey: authPub,
			VoterKey:     voterKey,
			Ciphertext:   rec.Ciphertext,
			Proof:        rec.Proof,
		})
		if err != nil {
			if errors.Is(err, prover.ErrProofInvalid) {
				log.Warnw("excluding submission with invalid proof", "voter", rec.Voter.Hex())
				excluded++
				continue
			}
			return nil, nil, err
		}
		acc, ok := accs[rec.Voter]
		if !ok {
			acc = &accumulator{ct: elgamal.NewCiphertext(curves.NewDefault())}
			accs[rec.Voter] = acc
		}
		acc.ct.Add(acc.ct, rec.Ciphertext)
		acc.valid++
	}

	// decrypt each accumulator and resolve the nullification count
	now := time.Now().UTC()
	entries := make([]*storage.TallyEntry, 0, len(accs))
	nullified := make(map[common.Address]bool, len(accs))
	for voter, acc := range accs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		entry := &storage.TallyEntry{
			ElectionID:  election.ID,
			Voter:       voter,
			ProcessedAt: now,
			ProcessedBy: e.runner,
		}
		m := elgamal.DecryptPoint(authorityKey, acc.ct.C1, acc.ct.C2)
		count, err := e.table.Lookup(m)
		switch {
		case errors.Is(err, dlog.ErrNotFound):
			// treat an unresolvable accumulator as nullified rather than
			// silently counting the vote
			entry.CountUnresolved = true
			entry.VoteNullified = true
			log.Warnw("nullification count exceeds dlog bound",
				"voter", voter.Hex(), "submissions", acc.valid)
		case err != nil:
			return nil, nil, err
		default:
			entry.NullificationCount = count
			entry.VoteNullified = count > 0
		}
		if entry.VoteNullified {
			nullified[voter] = true
		}
		entries = append(entries, entry)
	}

	// count the votes, raw and with nullified voters removed
	votes, err := e.stg.Votes(election.ID)
	if err != nil {
		return nil, nil, err
	}
	raw := make(map[string]uint64, len(election.Choices))
	adjusted := make(map[string]uint64, len(election.Choices))
	for _, choice := range election.Choices {
		raw[choice] = 0
		adjusted[choice] = 0
	}
	for _, v := range votes {
		if _, ok := raw[v.Choice]; !ok {
			log.Warnw("vote for unknown choice ignored", "voter", v.Voter.Hex(), "choice", v.Choice)
			continue
		}
		raw[v.Choice]++
		if !nullified[v.Voter] {
			adjusted[v.Choice]++
		}
	}

	return &Result{
		RawTotals:       raw,
		AdjustedTotals:  adjusted,
		NullifiedVoters: uint64(len(nullified)),
		ExcludedProofs:  excluded,
	}, entries, nil
}

func electionAuthorityKey(e *storage.Election) (ecc.Point, error) {
	if e.AuthorityKeyX == nil || e.AuthorityKeyY == nil {
		return nil, fmt.Errorf("election %x has no authority key", e.ID)
	}
	p := curves.NewDefault().SetPoint(e.AuthorityKeyX.MathBigInt(), e.AuthorityKeyY.MathBigInt())
	if !p.IsOnCurve() {
		return nil, fmt.Errorf("election %x authority key is not on the curve", e.ID)
	}
	return p, nil
}

func recordVoterKey(rec *storage.NullificationRecord) (ecc.Point, error) {
	if rec.VoterKeyX == nil || rec.VoterKeyY == nil || rec.Ciphertext == nil || rec.Proof == nil {
		return nil, fmt.Errorf("incomplete nullification record")
	}
	p := curves.NewDefault().SetPoint(rec.VoterKeyX.MathBigInt(), rec.VoterKeyY.MathBigInt())
	if !p.IsOnCurve() {
		return nil, ecc.ErrPointNotOnCurve
	}
	return p, nil
}
