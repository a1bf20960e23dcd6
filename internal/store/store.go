package store

import "sync"

// Store is the state container for one desktop session. Dispatch applies
// actions one at a time in call order.
type Store struct {
	mu          sync.Mutex
	state       State
	subscribers []func(Action, State)
}

// New returns a store seeded with initial.
func New(initial State) *Store {
	return &Store{state: initial}
}

// Dispatch reduces action into the state and notifies subscribers with the
// result. Subscribers run with the store locked and must not call Dispatch.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Reduce(s.state, action)
	for _, fn := range s.subscribers {
		fn(action, s.state)
	}
	return s.state
}

// State returns the current snapshot. Callers must treat it as read-only.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every dispatch.
func (s *Store) Subscribe(fn func(Action, State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}
