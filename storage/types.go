package storage

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/anonvote/nullcore/crypto/elgamal"
	"github.com/anonvote/nullcore/prover"
	"github.com/anonvote/nullcore/types"
)

// Election is the stored record of an election, including its lifecycle
// status and, once tallied, its results.
type Election struct {
	ID            types.HexBytes `json:"id"`
	Choices       []string       `json:"choices"`
	AuthorityKeyX *types.BigInt  `json:"authorityKeyX"`
	AuthorityKeyY *types.BigInt  `json:"authorityKeyY"`
	Status        uint8          `json:"status"`
	EndTime       time.Time      `json:"endTime"`

	// results, populated atomically when the tally commits
	RawTotals       map[string]uint64 `json:"rawTotals,omitempty"`
	AdjustedTotals  map[string]uint64 `json:"adjustedTotals,omitempty"`
	NullifiedVoters uint64            `json:"nullifiedVoters,omitempty"`
	TalliedAt       time.Time         `json:"talliedAt,omitempty"`
}

// Vote is a plain (non-anonymous) vote cast in an election. One vote per
// voter; a later vote by the same voter replaces the earlier one.
type Vote struct {
	Voter  common.Address `json:"voter"`
	Choice string         `json:"choice"`
}

// NullificationRecord is a stored nullification submission: the encrypted
// flag attributed to a voter key together with its proof. Submissions are
// append-only and verified at tally time.
type NullificationRecord struct {
	ElectionID types.HexBytes      `json:"electionId"`
	Voter      common.Address      `json:"voter"`
	VoterKeyX  *types.BigInt       `json:"voterKeyX"`
	VoterKeyY  *types.BigInt       `json:"voterKeyY"`
	Ciphertext *elgamal.Ciphertext `json:"ciphertext"`
	Proof      *prover.Proof       `json:"proof"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// TallyEntry is the per-voter outcome of a tally run.
type TallyEntry struct {
	ElectionID types.HexBytes `json:"electionId"`
	Voter      common.Address `json:"voter"`
	// NullificationCount is the decrypted sum of valid revocation flags.
	NullificationCount uint64 `json:"nullificationCount"`
	// VoteNullified is true when NullificationCount is greater than zero.
	VoteNullified bool `json:"voteNullified"`
	// CountUnresolved marks entries whose decrypted accumulator exceeded the
	// discrete log table bound. The vote is treated as nullified.
	CountUnresolved bool      `json:"countUnresolved,omitempty"`
	ProcessedAt     time.Time `json:"processedAt"`
	ProcessedBy     string    `json:"processedBy,omitempty"`
}

// TrustedSetupArtifact references the proving and verification material of a
// published trusted setup. The proving key is kept in the artifact cache and
// referenced by hash; the verification key is small and stored inline.
type TrustedSetupArtifact struct {
	Version         string         `json:"version"`
	ProvingKeyRef   string         `json:"provingKeyRef"`
	ProvingKeyHash  types.HexBytes `json:"provingKeyHash"`
	ConstraintsHash types.HexBytes `json:"constraintsHash"`
	VerificationKey types.HexBytes `json:"verificationKey"`
	IsActive        bool           `json:"isActive"`
	CreatedAt       time.Time      `json:"createdAt"`
}
