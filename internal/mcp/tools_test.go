package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"expensed/internal/identity"
	"expensed/internal/services"
	"expensed/internal/storage/sqlite"
	"expensed/internal/taxonomy"
)

func newTestServer(t *testing.T, mode identity.Mode) *Server {
	t.Helper()
	store := sqlite.New(sqlite.Config{Path: filepath.Join(t.TempDir(), "test.db")}, nil)
	t.Cleanup(func() { store.Close() })
	svc := services.NewExpenseService(store, nil, nil)
	return NewServer(svc, identity.NewGuard(mode, nil), taxonomy.Load("", nil), nil)
}

func callReq(name string, args map[string]any) mcplib.CallToolRequest {
	req := mcplib.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected single content block, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcplib.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestAddListDeleteFlow(t *testing.T) {
	s := newTestServer(t, identity.ModeSelfServe)
	ctx := context.Background()

	res, err := s.handleAdd(ctx, callReq("add_expense", map[string]any{
		"user_id":  "alice",
		"date":     "2026-02-10",
		"amount":   12.5,
		"category": "food",
	}))
	if err != nil {
		t.Fatalf("handleAdd: %v", err)
	}
	if got := resultText(t, res); got != "Expense added successfully. ID: 1" {
		t.Fatalf("add result = %q", got)
	}

	res, err = s.handleList(ctx, callReq("list_expenses", map[string]any{
		"user_id":    "alice",
		"start_date": "2026-02-01",
		"end_date":   "2026-02-28",
	}))
	if err != nil {
		t.Fatalf("handleList: %v", err)
	}
	if got := resultText(t, res); !strings.Contains(got, `"amount":12.5`) {
		t.Errorf("list result missing expense: %q", got)
	}

	res, err = s.handleDelete(ctx, callReq("delete_expense", map[string]any{
		"user_id":    "alice",
		"expense_id": float64(1),
	}))
	if err != nil {
		t.Fatalf("handleDelete: %v", err)
	}
	if got := resultText(t, res); got != "Expense ID 1 deleted successfully." {
		t.Errorf("delete result = %q", got)
	}

	res, _ = s.handleList(ctx, callReq("list_expenses", map[string]any{
		"user_id":    "alice",
		"start_date": "2026-02-01",
		"end_date":   "2026-02-28",
	}))
	want := "No expenses found for user alice between 2026-02-01 and 2026-02-28."
	if got := resultText(t, res); got != want {
		t.Errorf("empty list = %q, want %q", got, want)
	}
}

func TestGuestIdentityRejected(t *testing.T) {
	s := newTestServer(t, identity.ModeSelfServe)
	ctx := context.Background()

	for _, userID := range []any{nil, "guest", "GUEST", `"guest"`} {
		args := map[string]any{
			"date":     "2026-02-10",
			"amount":   5.0,
			"category": "food",
		}
		if userID != nil {
			args["user_id"] = userID
		}
		res, err := s.handleAdd(ctx, callReq("add_expense", args))
		if err != nil {
			t.Fatalf("handleAdd(%v): %v", userID, err)
		}
		if got := resultText(t, res); !strings.HasPrefix(got, "IDENTITY_ERROR: ") {
			t.Errorf("user_id=%v: got %q, want IDENTITY_ERROR prefix", userID, got)
		}
	}
}

func TestTokenModeUsesContextIdentity(t *testing.T) {
	s := newTestServer(t, identity.ModeToken)

	// No verified identity on the context.
	res, err := s.handleList(context.Background(), callReq("list_expenses", map[string]any{
		"start_date": "2026-01-01",
		"end_date":   "2026-12-31",
	}))
	if err != nil {
		t.Fatalf("handleList: %v", err)
	}
	if got := resultText(t, res); !strings.HasPrefix(got, "IDENTITY_ERROR: ") {
		t.Errorf("unauthenticated call = %q, want IDENTITY_ERROR prefix", got)
	}

	// A verified identity wins even if the caller smuggles a user_id arg.
	ctx := identity.WithUser(context.Background(), "bob")
	res, err = s.handleList(ctx, callReq("list_expenses", map[string]any{
		"user_id":    "mallory",
		"start_date": "2026-01-01",
		"end_date":   "2026-12-31",
	}))
	if err != nil {
		t.Fatalf("handleList: %v", err)
	}
	if got := resultText(t, res); !strings.Contains(got, "user bob") {
		t.Errorf("token-mode list = %q, want bob's view", got)
	}
}

func TestUpdateFieldPresence(t *testing.T) {
	s := newTestServer(t, identity.ModeSelfServe)
	ctx := context.Background()

	if _, err := s.handleAdd(ctx, callReq("add_expense", map[string]any{
		"user_id":  "alice",
		"date":     "2026-02-10",
		"amount":   20.0,
		"category": "food",
		"note":     "d",
	})); err != nil {
		t.Fatalf("handleAdd: %v", err)
	}

	// No updatable fields at all.
	res, err := s.handleUpdate(ctx, callReq("update_expense", map[string]any{
		"user_id":    "alice",
		"expense_id": float64(1),
	}))
	if err != nil {
		t.Fatalf("handleUpdate: %v", err)
	}
	if got := resultText(t, res); got != "No fields provided for update." {
		t.Errorf("empty update = %q", got)
	}

	// A bare-integer date must surface the format guidance, not a fault.
	res, _ = s.handleUpdate(ctx, callReq("update_expense", map[string]any{
		"user_id":    "alice",
		"expense_id": float64(1),
		"date":       float64(2026),
	}))
	want := "Error: Invalid date format '2026'. Please use YYYY-MM-DD (e.g., '2026-01-01')."
	if got := resultText(t, res); got != want {
		t.Errorf("bare-integer date = %q, want %q", got, want)
	}

	// Explicitly clearing the note is distinct from omitting it.
	res, _ = s.handleUpdate(ctx, callReq("update_expense", map[string]any{
		"user_id":    "alice",
		"expense_id": float64(1),
		"note":       "",
	}))
	if got := resultText(t, res); got != "Expense ID 1 updated successfully." {
		t.Errorf("clear-note update = %q", got)
	}

	// Unknown id and someone else's id collapse to the same answer.
	for _, args := range []map[string]any{
		{"user_id": "alice", "expense_id": float64(99), "note": "x"},
		{"user_id": "carol", "expense_id": float64(1), "note": "x"},
	} {
		res, _ = s.handleUpdate(ctx, callReq("update_expense", args))
		if got := resultText(t, res); !strings.HasPrefix(got, "Expense ID ") || !strings.Contains(got, "not found for user ") {
			t.Errorf("update %v = %q, want not-found message", args, got)
		}
	}
}

func TestSummarizeEmptyAndFiltered(t *testing.T) {
	s := newTestServer(t, identity.ModeSelfServe)
	ctx := context.Background()

	res, err := s.handleSummarize(ctx, callReq("summarize_expenses", map[string]any{
		"user_id":    "alice",
		"start_date": "2026-01-01",
		"end_date":   "2026-12-31",
	}))
	if err != nil {
		t.Fatalf("handleSummarize: %v", err)
	}
	if got := resultText(t, res); got != "No expenses found for user alice." {
		t.Errorf("empty summary = %q", got)
	}

	for _, e := range []map[string]any{
		{"user_id": "alice", "date": "2026-03-01", "amount": 10.0, "category": "food"},
		{"user_id": "alice", "date": "2026-03-02", "amount": 4.0, "category": "transport"},
	} {
		if _, err := s.handleAdd(ctx, callReq("add_expense", e)); err != nil {
			t.Fatalf("handleAdd: %v", err)
		}
	}

	res, _ = s.handleSummarize(ctx, callReq("summarize_expenses", map[string]any{
		"user_id":    "alice",
		"start_date": "2026-01-01",
		"end_date":   "2026-12-31",
		"category":   `"food"`,
	}))
	got := resultText(t, res)
	if !strings.Contains(got, `"category":"food"`) || strings.Contains(got, "transport") {
		t.Errorf("filtered summary = %q", got)
	}
}

func TestUpdateFromArgs(t *testing.T) {
	upd := updateFromArgs(map[string]any{
		"expense_id": float64(3),
		"amount":     float64(9.75),
		"note":       nil,
		"category":   "food",
	})
	if upd.Date.IsSet() || upd.Note.IsSet() || upd.Subcategory.IsSet() {
		t.Error("omitted or null fields must stay unset")
	}
	if v, ok := upd.Amount.Get(); !ok || v != 9.75 {
		t.Errorf("amount = %v set=%v", v, ok)
	}
	if v, ok := upd.Category.Get(); !ok || v != "food" {
		t.Errorf("category = %v set=%v", v, ok)
	}
}

func TestUserIDParamOnlyInSelfServe(t *testing.T) {
	if opts := newTestServer(t, identity.ModeSelfServe).userOption(); len(opts) != 1 {
		t.Errorf("selfserve userOption len = %d, want 1", len(opts))
	}
	if opts := newTestServer(t, identity.ModeToken).userOption(); len(opts) != 0 {
		t.Errorf("token userOption len = %d, want 0", len(opts))
	}
}
