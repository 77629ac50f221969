// Package memory provides a volatile Store with the same contract as the
// SQLite repository: store-assigned monotonic ids, idempotent delete, and
// id-descending listing. It backs the non-persistent deployment mode and the
// engine's tests.
package memory

import (
	"context"
	"sync"

	"ledger/internal/core"
	"ledger/internal/storage"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Expense // insertion order, ids strictly increasing
}

func New() *Store {
	return &Store{}
}

func (s *Store) Close() error {
	return nil
}

// Insert assigns the next id and stores the expense. Ids are never reused,
// even after deletes.
func (s *Store) Insert(_ context.Context, e core.Expense) (int64, error) {
	if err := checkRequired(e); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = s.nextID
	s.items = append(s.items, e)
	return e.ID, nil
}

// Update replaces the stored fields for an existing id; missing ids are a
// successful no-op.
func (s *Store) Update(_ context.Context, e core.Expense) error {
	if err := checkRequired(e); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == e.ID {
			s.items[i] = e
			break
		}
	}
	return nil
}

// Delete removes the expense if present. Idempotent.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return nil
}

// ListAll returns all expenses ordered by id descending.
func (s *Store) ListAll(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.items))
	for i := len(s.items) - 1; i >= 0; i-- {
		out = append(out, s.items[i])
	}
	return out, nil
}

func checkRequired(e core.Expense) error {
	if err := e.Validate(); err != nil {
		return storage.ErrConstraint
	}
	return nil
}
