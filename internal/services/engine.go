package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ledger/internal/core"
)

// Store is the persistence contract the engine mediates every mutation
// through. The SQLite repository is the durable implementation; the memory
// store is the volatile one.
type Store interface {
	Insert(ctx context.Context, e core.Expense) (int64, error)
	Update(ctx context.Context, e core.Expense) error
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]core.Expense, error)
	Close() error
}

// Engine owns the canonical expense set. It validates input, assigns nothing
// itself (ids come from the store), and keeps an in-memory snapshot that is
// fully re-read from the store after every mutation. The store stays the
// source of truth; the snapshot is only a cache.
//
// Operations are not self-serializing: the caller must not issue two
// mutations concurrently. The snapshot is swapped atomically after each
// store round-trip, so awaited callers never observe a partial state.
type Engine struct {
	store    Store
	now      func() time.Time
	snapshot []core.Expense
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		now:   time.Now,
	}
}

// NewEngineWithClock injects the time source. Used by tests and anything
// that needs a fixed reference day.
func NewEngineWithClock(store Store, now func() time.Time) *Engine {
	return &Engine{
		store: store,
		now:   now,
	}
}

// AddExpense records a new expense from raw form input.
//
// Invalid input is silently ignored: an unparseable or non-positive amount,
// or a category that is empty after trimming, leaves the ledger unchanged
// and returns a nil record with no error. That is the product's
// tolerant-entry policy, not a validation failure.
func (e *Engine) AddExpense(ctx context.Context, amountRaw, categoryRaw, noteRaw string) (*core.Expense, []core.Expense, error) {
	amount, err := core.ParseAmount(amountRaw)
	if err != nil {
		slog.DebugContext(ctx, "Ignoring expense with invalid amount", "amount_raw", amountRaw)
		return nil, e.Snapshot(), nil
	}

	category := strings.TrimSpace(categoryRaw)
	if category == "" {
		slog.DebugContext(ctx, "Ignoring expense with empty category")
		return nil, e.Snapshot(), nil
	}

	exp := core.Expense{
		Amount:   amount,
		Category: category,
		Note:     trimNote(noteRaw),
		Date:     core.Today(e.now()),
	}

	id, err := e.store.Insert(ctx, exp)
	if err != nil {
		return nil, nil, fmt.Errorf("save expense: %w", err)
	}
	exp.ID = id

	snap, err := e.refresh(ctx)
	if err != nil {
		return nil, nil, err
	}

	slog.InfoContext(ctx, "Expense created",
		"id", exp.ID,
		"amount", exp.Amount.String(),
		"category", exp.Category,
		"date", exp.Date.String())

	return &exp, snap, nil
}

// UpdateExpense rewrites amount/category/note/date for an existing id. The
// same silent-rejection rules as AddExpense apply. A zero date preserves the
// stored date. A missing id is a successful no-op, tolerating a race with a
// concurrent delete.
func (e *Engine) UpdateExpense(ctx context.Context, id int64, amountRaw, categoryRaw, noteRaw string, date core.Date) ([]core.Expense, error) {
	amount, err := core.ParseAmount(amountRaw)
	if err != nil {
		slog.DebugContext(ctx, "Ignoring update with invalid amount", "id", id, "amount_raw", amountRaw)
		return e.Snapshot(), nil
	}

	category := strings.TrimSpace(categoryRaw)
	if category == "" {
		slog.DebugContext(ctx, "Ignoring update with empty category", "id", id)
		return e.Snapshot(), nil
	}

	existing, ok := e.find(id)
	if !ok {
		// Cold cache: re-read before concluding the id is gone.
		if _, err := e.refresh(ctx); err != nil {
			return nil, err
		}
		existing, ok = e.find(id)
	}
	if !ok {
		slog.DebugContext(ctx, "Ignoring update of unknown expense", "id", id)
		return e.Snapshot(), nil
	}

	if date.IsZero() {
		date = existing.Date
	}

	updated := core.Expense{
		ID:       id,
		Amount:   amount,
		Category: category,
		Note:     trimNote(noteRaw),
		Date:     date,
	}

	if err := e.store.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}

	snap, err := e.refresh(ctx)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Expense updated",
		"id", id,
		"amount", updated.Amount.String(),
		"category", updated.Category,
		"date", updated.Date.String())

	return snap, nil
}

// DeleteExpense removes an expense. Deleting a missing id is a successful
// no-op.
func (e *Engine) DeleteExpense(ctx context.Context, id int64) ([]core.Expense, error) {
	if err := e.store.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete expense: %w", err)
	}

	snap, err := e.refresh(ctx)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return snap, nil
}

// ListExpenses re-reads the full ordered set from the store into the
// snapshot and returns it. This is the only read path to the store.
func (e *Engine) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return e.refresh(ctx)
}

// Snapshot returns a copy of the cached snapshot without touching the store.
// The shell re-renders from this between mutations.
func (e *Engine) Snapshot() []core.Expense {
	out := make([]core.Expense, len(e.snapshot))
	copy(out, e.snapshot)
	return out
}

func (e *Engine) Close() error {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			return fmt.Errorf("close store: %w", err)
		}
	}
	return nil
}

// refresh replaces the snapshot with the store's full ordered set. Never
// merged incrementally, so cache and store cannot diverge.
func (e *Engine) refresh(ctx context.Context) ([]core.Expense, error) {
	items, err := e.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh snapshot: %w", err)
	}
	e.snapshot = items
	return e.Snapshot(), nil
}

func (e *Engine) find(id int64) (core.Expense, bool) {
	for _, exp := range e.snapshot {
		if exp.ID == id {
			return exp, true
		}
	}
	return core.Expense{}, false
}

func trimNote(raw string) *string {
	note := strings.TrimSpace(raw)
	if note == "" {
		return nil
	}
	return &note
}
