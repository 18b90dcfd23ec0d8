package ledger

import (
	"context"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/realtime"
)

// Backend is the subset of a realtime store the ledger depends on.
type Backend interface {
	Push(ctx context.Context, path string, value interface{}) (string, error)
	Set(ctx context.Context, path string, value interface{}) error
	Remove(ctx context.Context, path string) error
	Subscribe(path string, fn realtime.SnapshotFunc) (realtime.Unsubscribe, error)
}

var (
	_ Backend = (*realtime.GormStore)(nil)
	_ Backend = (*realtime.BoltStore)(nil)
)

// Identity is the authenticated operator a session acts for. UID is written
// as createdBy on every record.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

func (i Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.Email
}
