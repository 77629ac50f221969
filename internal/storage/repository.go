package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"ledger/internal/core"
)

// SQLiteRepository is the durable expense store. It owns the schema and the
// row-level operations; all snapshot/caching logic lives above it.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", errors.Join(ErrUnavailable, err))
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", errors.Join(ErrUnavailable, err))
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", errors.Join(ErrUnavailable, err))
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", errors.Join(ErrUnavailable, err))
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Insert persists a new expense and returns the store-assigned id.
// Required fields are re-checked defensively; the engine validates first.
func (r *SQLiteRepository) Insert(ctx context.Context, e core.Expense) (int64, error) {
	if err := checkRequired(e); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (amount, category, note, date) VALUES (?, ?, ?, ?)`,
		e.Amount.String(), e.Category, noteValue(e.Note), e.Date.String())
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"amount", e.Amount.String(),
		"category", e.Category,
		"date", e.Date.String())

	return id, nil
}

// Update rewrites an expense row. Updating an id that does not exist is a
// successful no-op; callers pre-check existence when the distinction matters.
func (r *SQLiteRepository) Update(ctx context.Context, e core.Expense) error {
	if err := checkRequired(e); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, category = ?, note = ?, date = ? WHERE id = ?`,
		e.Amount.String(), e.Category, noteValue(e.Note), e.Date.String(), e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return nil
}

// Delete removes the row if present. Deleting a missing id is a no-op.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// ListAll returns every expense ordered by id descending, most recently
// created first. This ordering is a contract the shell and the query
// functions rely on.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, category, note, date FROM expenses ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			amount  decimal.Decimal
			note    sql.NullString
			rawDate string
		)
		// decimal.Decimal scans REAL and text-encoded numerics alike.
		if err := rows.Scan(&e.ID, &amount, &e.Category, &note, &rawDate); err != nil {
			return nil, fmt.Errorf("scan expense row: %w", err)
		}
		e.Amount = amount
		if note.Valid {
			n := note.String
			e.Note = &n
		}
		d, err := core.ParseDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", rawDate, err)
		}
		e.Date = d
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense rows: %w", err)
	}

	return expenses, nil
}

func checkRequired(e core.Expense) error {
	if !e.Amount.IsPositive() || strings.TrimSpace(e.Category) == "" || e.Date.IsZero() {
		return ErrConstraint
	}
	return nil
}

func noteValue(note *string) any {
	if note == nil {
		return nil
	}
	return *note
}
