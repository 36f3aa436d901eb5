// Package memory implements an in-process Backend kept in a map. Nothing
// survives Close; it backs tests and throwaway stores.
package memory

import (
	"errors"
	"sync"

	"github.com/mesh-intelligence/kvconf/pkg/types"
)

var _ types.Backend = (*Backend)(nil)

// ErrClosed is returned by operations on a closed Backend.
var ErrClosed = errors.New("memory backend is closed")

// Backend stores rows in a map guarded by a mutex.
type Backend struct {
	mu     sync.RWMutex
	rows   map[string]types.Row
	closed bool
}

// New returns an empty, open Backend.
func New() *Backend {
	return &Backend{rows: make(map[string]types.Row)}
}

func (b *Backend) EnsureSchema() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if b.rows == nil {
		b.rows = make(map[string]types.Row)
	}
	return nil
}

func (b *Backend) Upsert(key, value string, dataType types.Tag) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	b.rows[key] = types.Row{Key: key, Value: value, DataType: dataType}
	return nil
}

func (b *Backend) Fetch(key string) (types.Row, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return types.Row{}, false, ErrClosed
	}
	row, ok := b.rows[key]
	return row, ok, nil
}

func (b *Backend) Remove(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	delete(b.rows, key)
	return nil
}

// Close drops all rows. It is idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.rows = nil
	return nil
}

// Len returns the number of stored rows.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rows)
}
