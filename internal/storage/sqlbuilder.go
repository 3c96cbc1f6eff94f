package storage

import (
	"fmt"
	"strings"

	"expensed/internal/core"
)

// Placeholder renders the parameter marker for 1-based position i.
type Placeholder func(i int) string

// Dollar is the Postgres marker style ($1, $2, …).
func Dollar(i int) string { return fmt.Sprintf("$%d", i) }

// Question is the SQLite marker style.
func Question(i int) string { return "?" }

// BuildUpdateSet folds the update's set fields, in fixed column order, into
// a SET clause and its arguments. Unset fields are skipped entirely; set
// fields are emitted even when empty or zero. Returns "" when nothing is
// set — callers are expected to have validated that already.
//
// Placeholder numbering starts at `start`, so the caller can append the
// WHERE arguments after the returned ones.
func BuildUpdateSet(upd core.ExpenseUpdate, ph Placeholder, start int) (string, []any) {
	type column struct {
		name  string
		value any
		set   bool
	}

	date, dateSet := upd.Date.Get()
	amount, amountSet := upd.Amount.Get()
	category, categorySet := upd.Category.Get()
	subcategory, subcategorySet := upd.Subcategory.Get()
	note, noteSet := upd.Note.Get()

	columns := []column{
		{"date", date, dateSet},
		{"amount", amount, amountSet},
		{"category", category, categorySet},
		{"subcategory", subcategory, subcategorySet},
		{"note", note, noteSet},
	}

	var (
		clauses []string
		args    []any
	)
	i := start
	for _, c := range columns {
		if !c.set {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s = %s", c.name, ph(i)))
		args = append(args, c.value)
		i++
	}

	return strings.Join(clauses, ", "), args
}
