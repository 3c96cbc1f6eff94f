// Package storage defines the expense store contract shared by the SQLite
// and Postgres backends.
package storage

import (
	"context"

	"expensed/internal/core"
)

// Store is the pooled-connection expense store. Every operation is a single
// atomic statement scoped to the acting user; ownership is enforced by
// (id, user_id) equality inside the statement, not by application locks.
//
// Delete and Update report "not found" as a false boolean, not an error: a
// missing id and an id owned by someone else are deliberately
// indistinguishable.
type Store interface {
	// Add inserts one row and returns the newly assigned id.
	Add(ctx context.Context, e core.Expense) (int64, error)

	// List returns the user's rows with date in the inclusive range,
	// ordered by date ascending. An empty result is a nil slice, not an
	// error.
	List(ctx context.Context, userID, startDate, endDate string) ([]core.Expense, error)

	// Summarize returns per-category amount sums for the range, optionally
	// filtered to one category (empty string means all), ordered by
	// category name ascending. Categories with no rows are omitted.
	Summarize(ctx context.Context, userID, startDate, endDate, category string) ([]core.CategoryTotal, error)

	// Delete removes the row if it belongs to userID.
	Delete(ctx context.Context, id int64, userID string) (bool, error)

	// Update applies only the set fields of upd to the user's row.
	Update(ctx context.Context, id int64, userID string, upd core.ExpenseUpdate) (bool, error)

	Close() error
}
