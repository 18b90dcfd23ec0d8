package ledger

import (
	"sync"
	"sync/atomic"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/realtime"
)

// Session is the ledger state of one signed-in operator: identity,
// read-model, live subscriptions and the derived views. It is created on
// sign-in and closed on sign-out.
type Session struct {
	backend Backend
	ident   Identity
	model   *ReadModel
	gateway *Gateway
	limit   int

	// readOnly sessions never authenticate their gateway.
	readOnly bool

	mu      sync.Mutex
	subs    []realtime.Unsubscribe
	started bool
	closed  bool

	viewMu        sync.Mutex
	balance       atomic.Pointer[Balance]
	detail        atomic.Pointer[Detail]
	detailVisible atomic.Bool
	connected     atomic.Bool

	obsMu     sync.RWMutex
	observers map[uint64]func(Balance)
	nextObs   uint64
}

// NewSession returns a session for ident. detailLimit <= 0 means
// DefaultDetailLimit. Start must be called to receive data.
func NewSession(backend Backend, ident Identity, detailLimit int) *Session {
	if detailLimit <= 0 {
		detailLimit = DefaultDetailLimit
	}
	s := &Session{
		backend:   backend,
		ident:     ident,
		model:     NewReadModel(),
		limit:     detailLimit,
		observers: make(map[uint64]func(Balance)),
	}
	s.gateway = NewGateway(backend, s.model)
	s.balance.Store(&Balance{})
	return s
}

// NewObserver returns a session that follows the ledger without acting for
// an operator. Its gateway rejects every mutation with ErrAuthRequired.
func NewObserver(backend Backend, detailLimit int) *Session {
	s := NewSession(backend, Identity{}, detailLimit)
	s.readOnly = true
	return s
}

// Start subscribes to the four collections. Each subscription delivers the
// current snapshot as soon as it is registered.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.started {
		return nil
	}
	if !s.readOnly {
		s.gateway.Authenticate(s.ident)
	}
	subs, err := s.subscribeAll()
	if err != nil {
		s.gateway.Revoke()
		return err
	}
	s.subs = subs
	s.started = true
	s.connected.Store(true)
	return nil
}

// Close releases every subscription. Later mutations fail with
// ErrAuthRequired. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.closed = true
	s.mu.Unlock()

	s.gateway.Revoke()
	s.connected.Store(false)
	for _, u := range subs {
		u()
	}
	s.obsMu.Lock()
	s.observers = make(map[uint64]func(Balance))
	s.obsMu.Unlock()
}

func (s *Session) Identity() Identity {
	return s.ident
}

func (s *Session) Gateway() *Gateway {
	return s.gateway
}

func (s *Session) Model() *ReadModel {
	return s.model
}

// Connected reports whether the session holds live subscriptions.
func (s *Session) Connected() bool {
	return s.connected.Load()
}

func (s *Session) Balance() Balance {
	return *s.balance.Load()
}

// Detail returns the last projected detail view, or false while the
// detail view is hidden.
func (s *Session) Detail() (Detail, bool) {
	if !s.detailVisible.Load() {
		return Detail{}, false
	}
	d := s.detail.Load()
	if d == nil {
		return Detail{}, false
	}
	return *d, true
}

func (s *Session) DetailVisible() bool {
	return s.detailVisible.Load()
}

// SetDetailVisible turns the detail projection on or off. Turning it on
// projects the current read-model at once.
func (s *Session) SetDetailVisible(visible bool) {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()
	s.detailVisible.Store(visible)
	if !visible {
		s.detail.Store(nil)
		return
	}
	d := ProjectDetail(s.model.Sales(), s.model.Stays(), s.model.Expenses(), s.limit)
	s.detail.Store(&d)
}

// OnChange registers fn to receive the balance after every ledger
// snapshot. fn runs on the writer's goroutine and must not block.
func (s *Session) OnChange(fn func(Balance)) func() {
	s.obsMu.Lock()
	s.nextObs++
	id := s.nextObs
	s.observers[id] = fn
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
		})
	}
}

// refresh recomputes the balance and, when visible, the detail view.
func (s *Session) refresh() {
	s.viewMu.Lock()
	sales, stays, expenses := s.model.Sales(), s.model.Stays(), s.model.Expenses()
	b := ReduceBalance(sales, stays, expenses)
	s.balance.Store(&b)
	if s.detailVisible.Load() {
		d := ProjectDetail(sales, stays, expenses, s.limit)
		s.detail.Store(&d)
	}
	s.viewMu.Unlock()

	s.obsMu.RLock()
	fns := make([]func(Balance), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.RUnlock()
	for _, fn := range fns {
		fn(b)
	}
}
