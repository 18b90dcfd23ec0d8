package ledger

import (
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/realtime"
	"github.com/pkg/errors"
)

// Error kinds returned by the mutation gateway. Callers test them with
// errors.Is; the wrapped message carries the failing field.
var (
	ErrAuthRequired     = errors.New("authentication required")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidReference = errors.New("referenced record does not exist")
	ErrInvalidDateRange = errors.New("check-out must be after check-in")
	ErrDuplicateName    = errors.New("an active product with that name already exists")
	ErrSessionClosed    = errors.New("session closed")
	// ErrBackendUnavailable is returned unchanged from the store.
	ErrBackendUnavailable = realtime.ErrUnavailable
)

func invalidInput(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}
