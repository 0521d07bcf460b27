package circuits

import (
	"bytes"
	"context"
	"crypto/sha256"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

var (
	dummyPath       = "dummy.key"
	dummyKeyContent = []byte("dummy content")
)

func testDummyKeyServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, dummyPath, time.Now(), bytes.NewReader(dummyKeyContent))
	}))
}

func TestMain(m *testing.M) {
	var err error
	BaseDir, err = os.MkdirTemp("", "nullcore-artifacts-test")
	if err != nil {
		panic(err)
	}
	code := m.Run()
	if err := os.RemoveAll(BaseDir); err != nil {
		panic(err)
	}
	os.Exit(code)
}

func TestDownloadAndLoad(t *testing.T) {
	c := qt.New(t)
	server := testDummyKeyServer()
	defer server.Close()

	expectedHash := sha256.Sum256(dummyKeyContent)
	remoteURL, err := url.JoinPath(server.URL, dummyPath)
	c.Assert(err, qt.IsNil)
	dummyKey := &Artifact{
		RemoteURL: remoteURL,
		Hash:      expectedHash[:],
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// download stores the content by hash in the cache
	c.Assert(dummyKey.Download(ctx), qt.IsNil)
	// loading picks it up from the cache
	c.Assert(dummyKey.Load(), qt.IsNil)
	c.Assert([]byte(dummyKey.Content), qt.DeepEquals, dummyKeyContent)
	// a second load with content already set is a no-op
	c.Assert(dummyKey.Load(), qt.IsNil)
}

func TestLoadWrongHash(t *testing.T) {
	c := qt.New(t)
	key := &Artifact{Hash: []byte("wrong hash")}
	c.Assert(key.Load(), qt.IsNotNil)
}

func TestStoreComputesHash(t *testing.T) {
	c := qt.New(t)
	content := []byte("stored artifact")
	art := &Artifact{Content: content}
	c.Assert(art.Store(), qt.IsNil)

	expected := sha256.Sum256(content)
	c.Assert(art.Hash, qt.DeepEquals, expected[:])

	back := &Artifact{Hash: art.Hash}
	c.Assert(back.Load(), qt.IsNil)
	c.Assert([]byte(back.Content), qt.DeepEquals, content)
}
