// Command nullcore-demo runs the whole nullification flow end to end against
// a throwaway database: it creates an election, casts votes, submits a
// revocation and some dummies, and tallies the result. With -zk it uses a
// real Groth16 setup; by default it uses the mock proof backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/anonvote/nullcore/config"
	"github.com/anonvote/nullcore/crypto/ecc/curves"
	"github.com/anonvote/nullcore/crypto/elgamal"
	"github.com/anonvote/nullcore/crypto/voterkey"
	"github.com/anonvote/nullcore/log"
	"github.com/anonvote/nullcore/prover"
	"github.com/anonvote/nullcore/setup"
	"github.com/anonvote/nullcore/storage"
	"github.com/anonvote/nullcore/tally"
	"github.com/anonvote/nullcore/types"
	"github.com/anonvote/nullcore/util"
)

func main() {
	var (
		numVoters = flag.Int("voters", 10, "number of voters")
		useZK     = flag.Bool("zk", false, "use a real groth16 setup instead of the mock backend")
		curveType = flag.String("curve", curves.CurveTypeBabyJubJub, "curve implementation")
		logLevel  = flag.String("loglevel", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()
	log.Init(*logLevel, "stdout", nil)

	curve, err := curves.New(*curveType)
	if err != nil {
		log.Fatalf("unsupported curve: %v", err)
	}

	dir, err := os.MkdirTemp("", "nullcore-demo")
	if err != nil {
		log.Fatalf("cannot create temp dir: %v", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warnf("cannot remove temp dir: %v", err)
		}
	}()
	database, err := metadb.New(config.DefaultDatabaseType, dir)
	if err != nil {
		log.Fatalf("cannot open database: %v", err)
	}
	stg := storage.New(database)
	defer stg.Close()

	ctx := context.Background()
	var backend prover.Backend = prover.NewMock()
	if *useZK {
		manager := setup.NewManager(stg)
		if _, err := manager.Generate(ctx, config.CircuitVersion); err != nil {
			log.Fatalf("setup generation failed: %v", err)
		}
		if err := manager.Activate(config.CircuitVersion); err != nil {
			log.Fatalf("setup activation failed: %v", err)
		}
		backend, err = manager.ProvingBackend(ctx)
		if err != nil {
			log.Fatalf("cannot load proving backend: %v", err)
		}
	}

	// authority key and election
	authPub, authKey, err := elgamal.GenerateKey(curve)
	if err != nil {
		log.Fatalf("cannot generate authority key: %v", err)
	}
	id := types.ElectionID{ChainID: 1, Nonce: 1,
		Address: common.BytesToAddress(util.RandomBytes(20))}
	x, y := authPub.Point()
	election := &storage.Election{
		ID:            id.Marshal(),
		Choices:       []string{"yes", "no"},
		AuthorityKeyX: types.FromMathBig(x),
		AuthorityKeyY: types.FromMathBig(y),
		Status:        types.StatusActive,
		EndTime:       time.Now().Add(time.Minute).UTC(),
	}
	if err := stg.SetElection(election); err != nil {
		log.Fatalf("cannot store election: %v", err)
	}
	log.Infow("election created", "id", id.String(), "choices", election.Choices)

	// votes and voter keys
	voters := make([]common.Address, *numVoters)
	keypairs := make([]*voterkey.Keypair, *numVoters)
	for i := range voters {
		voters[i] = common.BytesToAddress(util.RandomBytes(20))
		secret := util.Random32()
		keypairs[i], err = voterkey.Derive(secret[:])
		if err != nil {
			log.Fatalf("cannot derive voter key: %v", err)
		}
		choice := election.Choices[i%len(election.Choices)]
		if err := stg.SetVote(election.ID, &storage.Vote{Voter: voters[i], Choice: choice}); err != nil {
			log.Fatalf("cannot store vote: %v", err)
		}
	}
	log.Infow("votes cast", "count", *numVoters)

	// voter 0 revokes, voter 1 submits a dummy
	submit := func(i int, flag bool) {
		kp := keypairs[i]
		k, err := elgamal.DeterministicK(kp.Secret, kp.Public)
		if err != nil {
			log.Fatalf("cannot derive randomness: %v", err)
		}
		msg := big.NewInt(0)
		if flag {
			msg = big.NewInt(1)
		}
		ct, err := elgamal.NewCiphertext(curve).Encrypt(msg, authPub, k)
		if err != nil {
			log.Fatalf("cannot encrypt flag: %v", err)
		}
		proof, err := backend.Prove(ctx, &prover.ProveRequest{
			AuthorityKey: authPub,
			VoterKey:     kp.Public,
			Ciphertext:   ct,
			Flag:         flag,
			Randomness:   k,
			VoterSecret:  kp.Secret,
		})
		if err != nil {
			log.Fatalf("cannot generate proof: %v", err)
		}
		vx, vy := kp.Public.Point()
		err = stg.PushNullification(&storage.NullificationRecord{
			ElectionID: election.ID,
			Voter:      voters[i],
			VoterKeyX:  types.FromMathBig(vx),
			VoterKeyY:  types.FromMathBig(vy),
			Ciphertext: ct,
			Proof:      proof,
			CreatedAt:  time.Now().UTC(),
		})
		if err != nil {
			log.Fatalf("cannot store submission: %v", err)
		}
	}
	submit(0, true)
	if *numVoters > 1 {
		submit(1, false)
	}
	log.Info("nullification submissions stored")

	// close and tally
	if err := stg.TransitionElectionStatus(election.ID, types.StatusActive, types.StatusClosed); err != nil {
		log.Fatalf("cannot close election: %v", err)
	}
	engine := tally.NewEngine(stg, tally.Config{
		Backend:     backend,
		DlogBound:   config.DefaultDlogBound,
		ProcessedBy: "nullcore-demo",
	})
	start := time.Now()
	result, err := engine.Run(ctx, election.ID, authKey)
	if err != nil {
		log.Fatalf("tally failed: %v", err)
	}
	log.Infow("tally finished", "took", time.Since(start).String(),
		"nullified", result.NullifiedVoters, "excludedProofs", result.ExcludedProofs)
	for _, choice := range election.Choices {
		fmt.Printf("%8s: raw=%d adjusted=%d\n", choice,
			result.RawTotals[choice], result.AdjustedTotals[choice])
	}
}
