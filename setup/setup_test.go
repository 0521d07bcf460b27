package setup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/anonvote/nullcore/circuits"
	"github.com/anonvote/nullcore/storage"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	prev := circuits.BaseDir
	circuits.BaseDir = t.TempDir()
	t.Cleanup(func() { circuits.BaseDir = prev })
	return NewManager(storage.New(metadb.NewTest(t)))
}

func TestActiveMissing(t *testing.T) {
	c := qt.New(t)
	m := testManager(t)

	_, err := m.Active()
	c.Assert(err, qt.ErrorIs, ErrSetupMissing)

	_, err = m.VerifyingBackend(context.Background())
	c.Assert(err, qt.ErrorIs, ErrSetupMissing)
}

func TestGenerateActivateAndLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping groth16 setup in short mode")
	}
	c := qt.New(t)
	m := testManager(t)
	ctx := context.Background()

	ts, err := m.Generate(ctx, "v1")
	c.Assert(err, qt.IsNil)
	c.Assert(ts.VerificationKey, qt.Not(qt.HasLen), 0)

	// not active until activated
	_, err = m.Active()
	c.Assert(err, qt.ErrorIs, ErrSetupMissing)
	c.Assert(m.Activate("v1"), qt.IsNil)

	active, err := m.Active()
	c.Assert(err, qt.IsNil)
	c.Assert(active.Version, qt.Equals, "v1")
	c.Assert(m.VerifyIntegrity(active), qt.IsNil)

	backend, err := m.ProvingBackend(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(backend, qt.IsNotNil)

	verifier, err := m.VerifyingBackend(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(verifier, qt.IsNotNil)
}

func TestVerifyIntegrityTampered(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping groth16 setup in short mode")
	}
	c := qt.New(t)
	m := testManager(t)
	ctx := context.Background()

	ts, err := m.Generate(ctx, "v1")
	c.Assert(err, qt.IsNil)
	c.Assert(m.Activate("v1"), qt.IsNil)

	// overwrite the cached proving key with garbage
	path := filepath.Join(circuits.BaseDir, ts.ProvingKeyRef)
	c.Assert(os.WriteFile(path, []byte("tampered"), 0o644), qt.IsNil)

	err = m.VerifyIntegrity(ts)
	c.Assert(err, qt.ErrorIs, ErrIntegrityMismatch)

	_, err = m.ProvingBackend(ctx)
	c.Assert(err, qt.ErrorIs, ErrIntegrityMismatch)

	_, err = m.VerifyingBackend(ctx)
	c.Assert(err, qt.ErrorIs, ErrIntegrityMismatch)
}
