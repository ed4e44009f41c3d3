package backend

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownBackend is returned by FromRecord for unregistered identifiers.
var ErrUnknownBackend = errors.New("backend: unknown backend")

// ErrNotImplemented signals an incomplete backend implementation.
var ErrNotImplemented = errors.New("backend: not implemented")

// Factory builds a backend instance from a selection record. The record
// carries the identifier plus backend-specific fields.
type Factory func(rec map[string]any) (Backend, error)

var (
	regMu    sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds a backend factory under id. Implementations register
// themselves at package load time; the table is read-only afterwards.
// Registering an id twice panics, as that is a programmer error.
func Register(id string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := registry[id]; dup {
		panic("backend: duplicate backend id " + id)
	}
	registry[id] = f
}

// FromRecord constructs a backend from a selection record. The record must
// carry a string "id" field naming a registered backend; the remaining
// fields are handed to that backend's factory. Fails before any I/O when
// the identifier is missing or unregistered.
func FromRecord(rec map[string]any) (Backend, error) {
	id, _ := rec["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("backend: selection record has no id field")
	}
	regMu.RLock()
	f, ok := registry[id]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, id)
	}
	return f(rec)
}
