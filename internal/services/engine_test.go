package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/storage/memory"
)

func newTestEngine(t *testing.T) (*Engine, func() time.Time) {
	t.Helper()
	now := func() time.Time {
		return time.Date(2025, 6, 18, 14, 30, 0, 0, time.UTC)
	}
	return NewEngineWithClock(memory.New(), now), now
}

func TestAddExpenseRoundTrip(t *testing.T) {
	engine, now := newTestEngine(t)
	ctx := context.Background()

	created, snap, err := engine.AddExpense(ctx, "12.5", "Food", "lunch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected a created expense")
	}
	if len(snap) != 1 {
		t.Fatalf("expected snapshot of 1, got %d", len(snap))
	}

	got := snap[0]
	if !got.Amount.Equal(decimal.NewFromFloat(12.5)) {
		t.Errorf("expected amount 12.5, got %s", got.Amount)
	}
	if got.Category != "Food" {
		t.Errorf("expected category Food, got %s", got.Category)
	}
	if got.Note == nil || *got.Note != "lunch" {
		t.Errorf("expected note lunch, got %v", got.Note)
	}
	if want := core.Today(now()).String(); got.Date.String() != want {
		t.Errorf("expected date %s, got %s", want, got.Date)
	}
}

func TestAddExpenseAssignsIncreasingIDs(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	var lastID int64
	for i := 0; i < 3; i++ {
		created, snap, err := engine.AddExpense(ctx, "5", "Food", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.ID <= lastID {
			t.Fatalf("expected id > %d, got %d", lastID, created.ID)
		}
		if len(snap) != i+1 {
			t.Fatalf("expected snapshot of %d, got %d", i+1, len(snap))
		}
		if snap[0].ID != created.ID {
			t.Fatalf("expected newest expense first, got id %d", snap[0].ID)
		}
		lastID = created.ID
	}
}

func TestAddExpenseSilentlyRejectsInvalidInput(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	if _, _, err := engine.AddExpense(ctx, "10", "Food", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before, err := engine.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name              string
		amount, cat, note string
	}{
		{"non-numeric amount", "abc", "Food", ""},
		{"zero amount", "0", "Food", ""},
		{"negative amount", "-5", "Food", ""},
		{"empty amount", "", "Food", ""},
		{"empty category", "10", "", ""},
		{"whitespace category", "10", "   ", "note"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			created, snap, err := engine.AddExpense(ctx, tc.amount, tc.cat, tc.note)
			if err != nil {
				t.Fatalf("invalid input must not error, got %v", err)
			}
			if created != nil {
				t.Fatalf("invalid input must not create a record, got id %d", created.ID)
			}
			if len(snap) != len(before) {
				t.Fatalf("snapshot changed: %d -> %d", len(before), len(snap))
			}
			for i := range snap {
				if snap[i].ID != before[i].ID {
					t.Fatalf("snapshot order changed at %d", i)
				}
			}
		})
	}
}

func TestAddExpenseTrimsAndDropsEmptyNote(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	created, _, err := engine.AddExpense(ctx, "3", "  Books ", "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Category != "Books" {
		t.Errorf("expected trimmed category, got %q", created.Category)
	}
	if created.Note != nil {
		t.Errorf("expected blank note stored as absent, got %q", *created.Note)
	}
}

func TestDeleteExpenseIsIdempotent(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	created, _, err := engine.AddExpense(ctx, "10", "Food", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := engine.DeleteExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range snap {
		if e.ID == created.ID {
			t.Fatalf("expected id %d gone from snapshot", created.ID)
		}
	}

	// Second delete of the same id is a successful no-op.
	again, err := engine.DeleteExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("second delete must not error: %v", err)
	}
	if len(again) != len(snap) {
		t.Fatalf("second delete changed snapshot: %d -> %d", len(snap), len(again))
	}
}

func TestUpdateExpense(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	first, _, err := engine.AddExpense(ctx, "10", "Food", "lunch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _, err := engine.AddExpense(ctx, "7", "Books", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := engine.UpdateExpense(ctx, first.ID, "15.25", "Groceries", "", core.Date{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got core.Expense
	for _, e := range snap {
		if e.ID == first.ID {
			got = e
		}
	}
	if !got.Amount.Equal(decimal.NewFromFloat(15.25)) {
		t.Errorf("expected amount 15.25, got %s", got.Amount)
	}
	if got.Category != "Groceries" {
		t.Errorf("expected category Groceries, got %s", got.Category)
	}
	if got.Note != nil {
		t.Errorf("expected note cleared, got %v", got.Note)
	}
	if got.Date.String() != first.Date.String() {
		t.Errorf("zero date must preserve stored date: got %s, want %s", got.Date, first.Date)
	}

	// The other record is untouched.
	for _, e := range snap {
		if e.ID == second.ID {
			if !e.Amount.Equal(second.Amount) || e.Category != second.Category {
				t.Errorf("unrelated record changed: %+v", e)
			}
		}
	}
}

func TestUpdateExpenseOverridesDate(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	created, _, err := engine.AddExpense(ctx, "10", "Food", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	override := core.NewDate(2025, 1, 2)
	snap, err := engine.UpdateExpense(ctx, created.ID, "10", "Food", "", override)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap[0].Date.String() != "2025-01-02" {
		t.Fatalf("expected overridden date, got %s", snap[0].Date)
	}
}

func TestUpdateExpenseUnknownIDIsNoOp(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	if _, _, err := engine.AddExpense(ctx, "10", "Food", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before, err := engine.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := engine.UpdateExpense(ctx, 9999, "20", "Rent", "", core.Date{})
	if err != nil {
		t.Fatalf("unknown id must not error: %v", err)
	}
	if len(snap) != len(before) {
		t.Fatalf("snapshot changed: %d -> %d", len(before), len(snap))
	}
	if !snap[0].Amount.Equal(before[0].Amount) || snap[0].Category != before[0].Category {
		t.Fatalf("existing record changed: %+v", snap[0])
	}
}

func TestUpdateExpenseInvalidInputIsNoOp(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	created, _, err := engine.AddExpense(ctx, "10", "Food", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, tc := range []struct{ amount, cat string }{
		{"nope", "Food"},
		{"0", "Food"},
		{"10", ""},
	} {
		snap, err := engine.UpdateExpense(ctx, created.ID, tc.amount, tc.cat, "", core.Date{})
		if err != nil {
			t.Fatalf("invalid input must not error: %v", err)
		}
		if !snap[0].Amount.Equal(created.Amount) || snap[0].Category != created.Category {
			t.Fatalf("record changed by invalid update: %+v", snap[0])
		}
	}
}

func TestListExpensesRefreshesFromStore(t *testing.T) {
	store := memory.New()
	engine := NewEngine(store)
	ctx := context.Background()

	// A row written behind the engine's back shows up after a list.
	if _, err := store.Insert(ctx, core.Expense{
		Amount:   decimal.NewFromInt(4),
		Category: "Food",
		Date:     core.NewDate(2025, 2, 3),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := engine.Snapshot(); len(got) != 0 {
		t.Fatalf("snapshot is a cache, expected empty before first list, got %d", len(got))
	}

	snap, err := engine.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(snap))
	}
	if got := engine.Snapshot(); len(got) != 1 {
		t.Fatalf("expected refreshed cache, got %d", len(got))
	}
}
