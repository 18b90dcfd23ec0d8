package ledger

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/realtime"
	"github.com/stretchr/testify/require"
)

// countingBackend counts the writes that reach the store.
type countingBackend struct {
	Backend
	writes atomic.Int32
}

func (c *countingBackend) Push(ctx context.Context, path string, value interface{}) (string, error) {
	c.writes.Add(1)
	return c.Backend.Push(ctx, path, value)
}

func (c *countingBackend) Set(ctx context.Context, path string, value interface{}) error {
	c.writes.Add(1)
	return c.Backend.Set(ctx, path, value)
}

func (c *countingBackend) Remove(ctx context.Context, path string) error {
	c.writes.Add(1)
	return c.Backend.Remove(ctx, path)
}

func newTestBackend(t *testing.T) *countingBackend {
	t.Helper()
	store, err := realtime.OpenBoltStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return &countingBackend{Backend: store}
}

var testIdentity = Identity{UID: "uid-1", Email: "recepcion@angelina.co", DisplayName: "Recepcion"}

func newTestSession(t *testing.T) (*Session, *countingBackend) {
	t.Helper()
	backend := newTestBackend(t)
	s := NewSession(backend, testIdentity, 0)
	require.NoError(t, s.Start())
	t.Cleanup(s.Close)
	return s, backend
}

func int64p(v int64) *int64 {
	return &v
}
