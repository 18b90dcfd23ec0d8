package realtime

import (
	"sync"
	"sync/atomic"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

const topicChanged = "realtime:changed"

// loadFunc reads the current content of a collection.
type loadFunc func(collection string) (Snapshot, error)

type listener struct {
	id     uint64
	fn     SnapshotFunc
	active atomic.Bool
}

// deliveryState serializes snapshot delivery for one collection. A change
// notified while a delivery is running, including one made from inside a
// listener, is folded into one more pass by the goroutine already delivering.
type deliveryState struct {
	mu         sync.Mutex
	delivering bool
	pending    bool
}

// Hub fans collection changes out to subscribers. Stores call Notify after
// every successful write. Snapshot listeners run on the writer's goroutine;
// change observers registered with OnChange run asynchronously on the bus.
type Hub struct {
	bus       EventBus.Bus
	load      loadFunc
	mu        sync.RWMutex
	listeners map[string]map[uint64]*listener
	states    map[string]*deliveryState
	nextID    atomic.Uint64
}

func newHub(load loadFunc) *Hub {
	return &Hub{
		bus:       EventBus.New(),
		load:      load,
		listeners: make(map[string]map[uint64]*listener),
		states:    make(map[string]*deliveryState),
	}
}

// Subscribe registers fn for collection and delivers the current snapshot.
func (h *Hub) Subscribe(collection string, fn SnapshotFunc) (Unsubscribe, error) {
	l := &listener{id: h.nextID.Add(1), fn: fn}
	l.active.Store(true)

	h.mu.Lock()
	if h.listeners[collection] == nil {
		h.listeners[collection] = make(map[uint64]*listener)
	}
	h.listeners[collection][l.id] = l
	h.mu.Unlock()

	h.deliver(collection)

	var once sync.Once
	return func() {
		once.Do(func() {
			l.active.Store(false)
			h.mu.Lock()
			delete(h.listeners[collection], l.id)
			h.mu.Unlock()
		})
	}, nil
}

// OnChange registers fn to be told, asynchronously, the name of every
// collection that changed.
func (h *Hub) OnChange(fn func(collection string)) error {
	return h.bus.SubscribeAsync(topicChanged, fn, false)
}

// Notify signals that collection changed.
func (h *Hub) Notify(collection string) {
	h.deliver(collection)
	h.bus.Publish(topicChanged, collection)
}

// Flush waits for pending OnChange observers.
func (h *Hub) Flush() {
	h.bus.WaitAsync()
}

// ListenerCount returns the live subscriptions on collection.
func (h *Hub) ListenerCount(collection string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[collection])
}

func (h *Hub) state(collection string) *deliveryState {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.states[collection]
	if !ok {
		st = &deliveryState{}
		h.states[collection] = st
	}
	return st
}

func (h *Hub) deliver(collection string) {
	st := h.state(collection)
	st.mu.Lock()
	if st.delivering {
		st.pending = true
		st.mu.Unlock()
		return
	}
	st.delivering = true
	for {
		st.pending = false
		st.mu.Unlock()
		h.fanOut(collection)
		st.mu.Lock()
		if !st.pending {
			st.delivering = false
			st.mu.Unlock()
			return
		}
	}
}

func (h *Hub) fanOut(collection string) {
	h.mu.RLock()
	targets := make([]*listener, 0, len(h.listeners[collection]))
	for _, l := range h.listeners[collection] {
		targets = append(targets, l)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	snap, err := h.load(collection)
	if err != nil {
		zap.L().Error("realtime snapshot load failed",
			zap.String("namespace", "realtime"),
			zap.String("collection", collection),
			zap.Error(err))
		return
	}
	for _, l := range targets {
		if !l.active.Load() {
			continue
		}
		h.call(l, snap)
	}
}

func (h *Hub) call(l *listener, snap Snapshot) {
	defer func() {
		if err := recover(); err != nil {
			zap.L().Error("realtime listener panic",
				zap.String("namespace", "realtime"),
				zap.String("collection", snap.Path),
				zap.Any("error", err))
		}
	}()
	l.fn(snap)
}

// Close drops every listener and waits for running change observers.
func (h *Hub) Close() {
	h.mu.Lock()
	for collection, ls := range h.listeners {
		for _, l := range ls {
			l.active.Store(false)
		}
		delete(h.listeners, collection)
	}
	h.mu.Unlock()
	h.bus.WaitAsync()
}
