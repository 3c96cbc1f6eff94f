package mcp

import (
	"encoding/json"
	"fmt"

	"expensed/internal/core"
)

// The tool surface reports every failure in-band: a successful tool result
// whose text starts with a recognized error prefix. The exact strings below
// are a compatibility contract with existing callers and must not drift.

func renderAdded(id int64) string {
	return fmt.Sprintf("Expense added successfully. ID: %d", id)
}

func renderListEmpty(userID, startDate, endDate string) string {
	return fmt.Sprintf("No expenses found for user %s between %s and %s.", userID, startDate, endDate)
}

func renderSummaryEmpty(userID string) string {
	return fmt.Sprintf("No expenses found for user %s.", userID)
}

func renderDeleted(id int64) string {
	return fmt.Sprintf("Expense ID %d deleted successfully.", id)
}

func renderUpdated(id int64) string {
	return fmt.Sprintf("Expense ID %d updated successfully.", id)
}

func renderNotFound(id int64, userID string) string {
	return fmt.Sprintf("Expense ID %d not found for user %s.", id, userID)
}

// renderError maps the error taxonomy onto the in-band prefixes. Validation
// errors already carry their full caller-facing text.
func renderError(err error) string {
	switch core.KindOf(err) {
	case core.KindIdentityUnknown, core.KindUnauthenticated:
		return "IDENTITY_ERROR: " + err.Error()
	case core.KindValidation:
		return err.Error()
	default:
		return "Database error: " + err.Error()
	}
}

// renderJSON serializes a structured success payload.
func renderJSON(v any) string {
	body, err := json.Marshal(v)
	if err != nil {
		return renderError(core.WrapErrorf(core.KindStore, err, "encode result"))
	}
	return string(body)
}
