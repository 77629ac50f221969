package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"ledger/internal/core"
	"ledger/internal/query"
)

type expenseJSON struct {
	ID       int64   `json:"id"`
	Amount   string  `json:"amount"`
	Category string  `json:"category"`
	Note     *string `json:"note,omitempty"`
	Date     string  `json:"date"`
}

type snapshotResponse struct {
	Expenses []expenseJSON `json:"expenses"`
	Count    int           `json:"count"`
}

type listResponse struct {
	Window           string            `json:"window"`
	Expenses         []expenseJSON     `json:"expenses"`
	Total            string            `json:"total"`
	TotalsByCategory map[string]string `json:"totals_by_category"`
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListExpenses(w, r)
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		writeError(w, http.StatusBadRequest, "invalid request format")
		return
	}

	// Invalid amount or category is a silent no-op: the engine returns the
	// unchanged snapshot and no error.
	_, snap, err := s.engine.AddExpense(r.Context(),
		r.Form.Get("amount"), r.Form.Get("category"), r.Form.Get("note"))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save expense", "error", err, "operation", "create")
		writeError(w, http.StatusInternalServerError, "error saving expense")
		return
	}

	writeJSON(w, http.StatusOK, toSnapshotResponse(snap))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		writeError(w, http.StatusBadRequest, "invalid request format")
		return
	}

	id, ok := parseID(r.Form.Get("id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid expense id")
		return
	}

	// An absent or unparseable date preserves the stored one; the edit flow
	// resubmits the record's existing date when it doesn't change it.
	var date core.Date
	if raw := strings.TrimSpace(r.Form.Get("date")); raw != "" {
		if d, err := core.ParseDate(raw); err == nil {
			date = d
		}
	}

	snap, err := s.engine.UpdateExpense(r.Context(), id,
		r.Form.Get("amount"), r.Form.Get("category"), r.Form.Get("note"), date)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to update expense", "error", err, "id", id, "operation", "update")
		writeError(w, http.StatusInternalServerError, "error updating expense")
		return
	}

	writeJSON(w, http.StatusOK, toSnapshotResponse(snap))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		w.Header().Set("Allow", "POST, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		writeError(w, http.StatusBadRequest, "invalid request format")
		return
	}

	id, ok := parseID(r.Form.Get("id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid expense id")
		return
	}

	snap, err := s.engine.DeleteExpense(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete expense", "error", err, "id", id, "operation", "delete")
		writeError(w, http.StatusInternalServerError, "error deleting expense")
		return
	}

	writeJSON(w, http.StatusOK, toSnapshotResponse(snap))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.ListExpenses(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list expenses", "error", err, "operation", "list")
		writeError(w, http.StatusInternalServerError, "error listing expenses")
		return
	}

	window := query.ParseWindow(strings.TrimSpace(r.URL.Query().Get("window")))
	filtered := query.FilterByWindow(snap, window, s.clock())

	totals := make(map[string]string)
	for cat, sum := range query.TotalsByCategory(filtered) {
		totals[cat] = sum.String()
	}

	writeJSON(w, http.StatusOK, listResponse{
		Window:           window.String(),
		Expenses:         toExpenseJSON(filtered),
		Total:            query.TotalAmount(filtered).String(),
		TotalsByCategory: totals,
	})
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func toExpenseJSON(expenses []core.Expense) []expenseJSON {
	out := make([]expenseJSON, len(expenses))
	for i, e := range expenses {
		out[i] = expenseJSON{
			ID:       e.ID,
			Amount:   e.Amount.String(),
			Category: e.Category,
			Note:     e.Note,
			Date:     e.Date.String(),
		}
	}
	return out
}

func toSnapshotResponse(snap []core.Expense) snapshotResponse {
	return snapshotResponse{
		Expenses: toExpenseJSON(snap),
		Count:    len(snap),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
