// Package realtime implements the push-based document store the ledger
// runs on. Documents live under a collection path and are addressed as
// "<collection>/<key>". Every change to a collection delivers the whole
// collection to its subscribers.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable wraps every failure of the underlying database.
	ErrUnavailable = errors.New("realtime store unavailable")
	ErrInvalidPath = errors.New("invalid realtime path")
)

// ServerValue is a placeholder replaced by the store when a document is written.
type ServerValue int

const (
	// ServerTimestamp resolves to the write time in unix milliseconds.
	ServerTimestamp ServerValue = iota + 1
)

// Entry is one document of a collection.
type Entry struct {
	Key   string
	Value interface{}
}

// Snapshot is the full content of a collection at one point in time.
// Entries are in insertion order.
type Snapshot struct {
	Path    string
	Entries []Entry
}

func (s Snapshot) Exists() bool {
	return len(s.Entries) > 0
}

func (s Snapshot) Len() int {
	return len(s.Entries)
}

// SnapshotFunc receives collection snapshots.
type SnapshotFunc func(Snapshot)

// Unsubscribe stops a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// Store is the capability set of a real-time document store.
type Store interface {
	// Push appends value to the collection under a generated key.
	Push(ctx context.Context, path string, value interface{}) (string, error)
	// Set writes value at "<collection>/<key>", replacing any previous document.
	Set(ctx context.Context, path string, value interface{}) error
	// Remove deletes one document or, given a bare collection path, all of them.
	Remove(ctx context.Context, path string) error
	// Subscribe calls fn with the current collection and again after every change.
	Subscribe(path string, fn SnapshotFunc) (Unsubscribe, error)
	Close() error
}

// splitPath returns the collection and optional key of path.
func splitPath(path string) (collection, key string, err error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return parts[0], "", nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return parts[0], parts[1], nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
}

func unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// resolveServerValues replaces ServerValue placeholders found in value.
func resolveServerValues(value interface{}, nowMillis int64) interface{} {
	switch v := value.(type) {
	case ServerValue:
		if v == ServerTimestamp {
			return nowMillis
		}
		return nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			out[k] = resolveServerValues(item, nowMillis)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = resolveServerValues(item, nowMillis)
		}
		return out
	}
	return value
}
