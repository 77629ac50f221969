// Package query contains the pure filtering and aggregation functions that
// derive views from a ledger snapshot. Nothing here performs I/O or holds
// state; callers re-derive on every render.
package query

import (
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// Window selects the time span a view is restricted to.
type Window string

const (
	All       Window = "all"
	ThisWeek  Window = "week"
	ThisMonth Window = "month"
)

// String implements fmt.Stringer
func (w Window) String() string {
	return string(w)
}

// IsValid returns true if the window is one of the known selectors.
func (w Window) IsValid() bool {
	switch w {
	case All, ThisWeek, ThisMonth:
		return true
	default:
		return false
	}
}

// ParseWindow maps a raw selector to a Window, defaulting to All for
// anything empty or unknown.
func ParseWindow(s string) Window {
	switch Window(s) {
	case ThisWeek:
		return ThisWeek
	case ThisMonth:
		return ThisMonth
	default:
		return All
	}
}

// FilterByWindow returns the expenses of the snapshot whose date falls inside
// the selected window relative to now. Comparisons are by calendar date only.
//
// All returns the snapshot unchanged, in the same order. ThisWeek covers the
// inclusive range [sunday, sunday+6] of the week containing now. ThisMonth
// matches calendar month and year.
func FilterByWindow(snapshot []core.Expense, w Window, now time.Time) []core.Expense {
	switch w {
	case ThisWeek:
		first := core.NewDate(now.Year(), int(now.Month()), now.Day()-int(now.Weekday()))
		last := core.NewDate(first.Year(), first.Month(), first.Day()+6)
		out := make([]core.Expense, 0, len(snapshot))
		for _, e := range snapshot {
			if e.Date.Before(first.Time) || e.Date.After(last.Time) {
				continue
			}
			out = append(out, e)
		}
		return out
	case ThisMonth:
		out := make([]core.Expense, 0, len(snapshot))
		for _, e := range snapshot {
			if e.Date.Year() == now.Year() && e.Date.Month() == int(now.Month()) {
				out = append(out, e)
			}
		}
		return out
	default:
		return snapshot
	}
}

// TotalAmount sums the amounts of the filtered set. Zero for an empty set.
func TotalAmount(filtered []core.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range filtered {
		total = total.Add(e.Amount)
	}
	return total
}

// TotalsByCategory sums amounts per category over one pass of the filtered
// set. Map iteration order is not part of the contract.
func TotalsByCategory(filtered []core.Expense) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range filtered {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return totals
}
