package ledger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// SessionOptions configures sessions opened by a Sessions registry.
type SessionOptions struct {
	DetailLimit int
	// SeedProducts writes the default catalogue after sign-in when the
	// products collection is empty.
	SeedProducts bool
	SeedWorkers  int
}

// Sessions keeps one live Session per signed-in operator, keyed by UID.
type Sessions struct {
	backend Backend
	opts    SessionOptions
	mu      sync.Mutex
	items   map[string]*Session
}

func NewSessions(backend Backend, opts SessionOptions) *Sessions {
	return &Sessions{
		backend: backend,
		opts:    opts,
		items:   make(map[string]*Session),
	}
}

// Open returns the live session of ident, starting a new one if needed.
func (r *Sessions) Open(ctx context.Context, ident Identity) (*Session, error) {
	r.mu.Lock()
	if s, ok := r.items[ident.UID]; ok {
		r.mu.Unlock()
		return s, nil
	}
	s := NewSession(r.backend, ident, r.opts.DetailLimit)
	if r.opts.SeedWorkers > 0 {
		s.gateway.seedWorkers = r.opts.SeedWorkers
	}
	if err := s.Start(); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.items[ident.UID] = s
	r.mu.Unlock()

	zap.L().Info("ledger session opened",
		zap.String("namespace", "ledger"),
		zap.String("uid", ident.UID),
		zap.String("email", ident.Email))

	if r.opts.SeedProducts {
		if _, err := s.Gateway().SeedProducts(ctx); err != nil {
			zap.L().Error("seed products failed",
				zap.String("namespace", "ledger"),
				zap.Error(err))
		}
	}
	return s, nil
}

func (r *Sessions) Get(uid string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[uid]
	return s, ok
}

// Close ends the session of uid, if any.
func (r *Sessions) Close(uid string) {
	r.mu.Lock()
	s, ok := r.items[uid]
	delete(r.items, uid)
	r.mu.Unlock()
	if !ok {
		return
	}
	s.Close()
	zap.L().Info("ledger session closed",
		zap.String("namespace", "ledger"),
		zap.String("uid", uid))
}

// Apply follows an auth state change: a nil identity closes the session
// of uid, otherwise one is opened.
func (r *Sessions) Apply(ctx context.Context, uid string, ident *Identity) {
	if ident == nil {
		r.Close(uid)
		return
	}
	if _, err := r.Open(ctx, *ident); err != nil {
		zap.L().Error("open ledger session failed",
			zap.String("namespace", "ledger"),
			zap.String("uid", uid),
			zap.Error(err))
	}
}

func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *Sessions) CloseAll() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range items {
		s.Close()
	}
}
