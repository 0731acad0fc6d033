package netstatus

import (
	"context"
	"sync"
)

// Status is a connectivity reading.
type Status struct {
	Connected bool
}

// Listener receives status transitions.
type Listener func(Status)

// Source reports connectivity and notifies subscribers of changes.
type Source interface {
	Status(ctx context.Context) (Status, error)
	Subscribe(fn Listener) *Subscription
}

// Subscription is the handle returned by Subscribe. Close releases the listener;
// it is safe to call more than once.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Close stops further deliveries to the subscribed listener.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// listeners is the registry shared by Source implementations.
type listeners struct {
	mu   sync.Mutex
	next int
	fns  map[int]Listener
}

func (l *listeners) add(fn Listener) *Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]Listener)
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return &Subscription{cancel: func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.fns, id)
	}}
}

func (l *listeners) snapshot() []Listener {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Listener, 0, len(l.fns))
	for i := 0; i < l.next; i++ {
		if fn, ok := l.fns[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func (l *listeners) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}

func (l *listeners) emit(s Status) {
	for _, fn := range l.snapshot() {
		fn(s)
	}
}

// Static is a Source whose state is set by the caller. Used for --offline runs and tests.
type Static struct {
	mu        sync.Mutex
	connected bool
	subs      listeners
}

var _ Source = (*Static)(nil)

// NewStatic returns a Static source with the given initial state.
func NewStatic(connected bool) *Static {
	return &Static{connected: connected}
}

func (s *Static) Status(context.Context) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Connected: s.connected}, nil
}

func (s *Static) Subscribe(fn Listener) *Subscription {
	return s.subs.add(fn)
}

// Set changes the state and notifies listeners synchronously when it differs.
// Setting the same state again is a no-op.
func (s *Static) Set(connected bool) {
	s.mu.Lock()
	changed := s.connected != connected
	s.connected = connected
	s.mu.Unlock()
	if changed {
		s.subs.emit(Status{Connected: connected})
	}
}

// Listeners reports how many subscriptions are active.
func (s *Static) Listeners() int {
	return s.subs.count()
}
