// Package clipboard holds the pending copy/cut selection consumed by paste.
//
// A single Store is shared by every request of the process. It is not keyed
// by client: concurrent Copy/Cut calls race and the last writer wins. If
// per-client isolation is ever needed, key Stores by session identity in
// the composition root instead of sharing one.
package clipboard

import (
	"slices"
	"sync"
)

// Operation is the pending clipboard mode.
type Operation string

const (
	None Operation = ""
	Copy Operation = "copy"
	Cut  Operation = "cut"
)

// State is an immutable snapshot of the clipboard.
type State struct {
	Items     []string  `json:"items"`
	Operation Operation `json:"operation"`
	// Version increments on every mutation.
	Version uint64 `json:"version"`
}

// Empty reports whether there is nothing to paste.
func (s State) Empty() bool {
	return len(s.Items) == 0
}

// Store is a mutex protected clipboard.
type Store struct {
	mu    sync.RWMutex
	state State
}

// NewStore creates an empty clipboard.
func NewStore() *Store {
	return &Store{state: State{Items: []string{}}}
}

// Set overwrites the selection wholesale.
func (s *Store) Set(items []string, op Operation) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{
		Items:     slices.Clone(items),
		Operation: op,
		Version:   s.state.Version + 1,
	}
	if s.state.Items == nil {
		s.state.Items = []string{}
	}
	return s.snapshot()
}

// Get returns a snapshot the caller may keep.
func (s *Store) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Clear empties the clipboard.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}

// ClearIfUnchanged empties the clipboard only if nobody wrote to it since
// the snapshot with the given version was taken.
func (s *Store) ClearIfUnchanged(version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Version != version {
		return false
	}
	s.clear()
	return true
}

func (s *Store) clear() {
	s.state = State{Items: []string{}, Operation: None, Version: s.state.Version + 1}
}

func (s *Store) snapshot() State {
	st := s.state
	st.Items = slices.Clone(s.state.Items)
	return st
}
