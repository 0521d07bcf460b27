// Command nullcore-setup manages the trusted setup material of the
// nullification circuit: generate a local development ceremony, download the
// published artifacts, activate a version and list what is available.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/gnark/backend/groth16"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/anonvote/nullcore/circuits"
	"github.com/anonvote/nullcore/circuits/nullification"
	"github.com/anonvote/nullcore/config"
	"github.com/anonvote/nullcore/log"
	"github.com/anonvote/nullcore/setup"
	"github.com/anonvote/nullcore/storage"
)

func main() {
	var (
		action    = flag.String("action", "list", "one of: generate, download, activate, list")
		version   = flag.String("version", config.CircuitVersion, "trusted setup version")
		dataDir   = flag.String("datadir", "", "data directory (default: $HOME/"+config.DefaultDataDir+")")
		logLevel  = flag.String("loglevel", "info", "log level (debug, info, warn, error)")
		timeout   = flag.Duration("timeout", 10*time.Minute, "operation timeout")
		exportDir = flag.String("export", "", "also write the generated artifacts as files in this directory (generate only)")
	)
	flag.Parse()
	log.Init(*logLevel, "stdout", nil)

	if *dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("cannot resolve home directory: %v", err)
		}
		*dataDir = filepath.Join(home, config.DefaultDataDir)
	}
	database, err := metadb.New(config.DefaultDatabaseType, filepath.Join(*dataDir, "db"))
	if err != nil {
		log.Fatalf("cannot open database: %v", err)
	}
	stg := storage.New(database)
	defer stg.Close()
	manager := setup.NewManager(stg)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *action {
	case "generate":
		ccs, err := nullification.Compile()
		if err != nil {
			log.Fatalf("circuit compilation failed: %v", err)
		}
		pk, vk, err := groth16.Setup(ccs)
		if err != nil {
			log.Fatalf("groth16 setup failed: %v", err)
		}
		ts, err := manager.Publish(*version, ccs, pk, vk)
		if err != nil {
			log.Fatalf("setup publication failed: %v", err)
		}
		if *exportDir != "" {
			if err := os.MkdirAll(*exportDir, 0o755); err != nil {
				log.Fatalf("cannot create export directory: %v", err)
			}
			if err := circuits.StoreConstraintSystem(ccs,
				filepath.Join(*exportDir, "nullification.ccs")); err != nil {
				log.Fatalf("cannot export constraint system: %v", err)
			}
			if err := circuits.StoreProvingKey(pk,
				filepath.Join(*exportDir, "nullification.pk")); err != nil {
				log.Fatalf("cannot export proving key: %v", err)
			}
			if err := circuits.StoreVerificationKey(vk,
				filepath.Join(*exportDir, "nullification.vk")); err != nil {
				log.Fatalf("cannot export verification key: %v", err)
			}
		}
		log.Infow("trusted setup generated", "version", ts.Version,
			"provingKeyHash", ts.ProvingKeyHash.String())
	case "download":
		ts, err := manager.PublishDefault(ctx)
		if err != nil {
			log.Fatalf("artifact download failed: %v", err)
		}
		log.Infow("trusted setup downloaded", "version", ts.Version)
	case "activate":
		if err := manager.Activate(*version); err != nil {
			log.Fatalf("activation failed: %v", err)
		}
		log.Infow("trusted setup activated", "version", *version)
	case "list":
		versions, err := stg.ListTrustedSetups()
		if err != nil {
			log.Fatalf("cannot list trusted setups: %v", err)
		}
		if len(versions) == 0 {
			log.Info("no trusted setups published")
			return
		}
		for _, v := range versions {
			ts, err := stg.TrustedSetup(v)
			if err != nil {
				log.Fatalf("cannot read trusted setup %q: %v", v, err)
			}
			log.Infow("trusted setup", "version", ts.Version, "active", ts.IsActive,
				"createdAt", ts.CreatedAt.Format(time.RFC3339))
		}
	default:
		log.Fatalf("unknown action %q", *action)
	}
}
