package state

import "sync"

// Dispatcher is anything actions can be sent to.
type Dispatcher interface {
	Dispatch(a Action) State
}

// Listener observes a dispatch after it has been applied.
type Listener func(a Action, prev, next State)

// Store owns one State and mutates it only through Reduce.
// Thread-safety: Dispatch and State are safe for concurrent use. Reductions are
// serialized; listeners run after the lock is released, so a listener may dispatch.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// NewStore creates a Store starting at initial.
func NewStore(initial State) *Store {
	return &Store{
		state:     initial,
		listeners: make(map[int]Listener),
	}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and returns the resulting state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, a)
	s.state = next
	listeners := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(a, prev, next)
	}
	return next
}

// Subscribe registers l and returns a function that removes it.
// Listeners are called in subscription order.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
