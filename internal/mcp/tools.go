package mcp

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"expensed/internal/core"
	"expensed/internal/identity"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("add_expense",
		append([]mcp.ToolOption{
			mcp.WithDescription("Add a new expense for a user."),
			mcp.WithString("date", mcp.Required(),
				mcp.Description("Expense date in YYYY-MM-DD form, e.g. '2026-01-01'."),
			),
			mcp.WithNumber("amount", mcp.Required(),
				mcp.Description("Amount spent."),
			),
			mcp.WithString("category", mcp.Required(),
				mcp.Description("Top-level category. Read the expense://categories resource for the known taxonomy."),
			),
			mcp.WithString("subcategory",
				mcp.Description("Optional subcategory within the category."),
			),
			mcp.WithString("note",
				mcp.Description("Optional free-form note."),
			),
		}, s.userOption()...)...,
	), s.handleAdd)

	s.mcp.AddTool(mcp.NewTool("list_expenses",
		append([]mcp.ToolOption{
			mcp.WithDescription("List expenses for a user within an inclusive date range."),
			mcp.WithString("start_date", mcp.Required(),
				mcp.Description("Range start in YYYY-MM-DD form, inclusive."),
			),
			mcp.WithString("end_date", mcp.Required(),
				mcp.Description("Range end in YYYY-MM-DD form, inclusive."),
			),
		}, s.userOption()...)...,
	), s.handleList)

	s.mcp.AddTool(mcp.NewTool("summarize_expenses",
		append([]mcp.ToolOption{
			mcp.WithDescription("Summarize spending per category within an inclusive date range."),
			mcp.WithString("start_date", mcp.Required(),
				mcp.Description("Range start in YYYY-MM-DD form, inclusive."),
			),
			mcp.WithString("end_date", mcp.Required(),
				mcp.Description("Range end in YYYY-MM-DD form, inclusive."),
			),
			mcp.WithString("category",
				mcp.Description("Optional category to restrict the summary to."),
			),
		}, s.userOption()...)...,
	), s.handleSummarize)

	s.mcp.AddTool(mcp.NewTool("delete_expense",
		append([]mcp.ToolOption{
			mcp.WithDescription("Delete an expense by ID. Only the owner's expenses can be deleted."),
			mcp.WithNumber("expense_id", mcp.Required(),
				mcp.Description("ID of the expense to delete."),
			),
		}, s.userOption()...)...,
	), s.handleDelete)

	s.mcp.AddTool(mcp.NewTool("update_expense",
		append([]mcp.ToolOption{
			mcp.WithDescription("Update fields of an existing expense. Omitted fields are left untouched."),
			mcp.WithNumber("expense_id", mcp.Required(),
				mcp.Description("ID of the expense to update."),
			),
			mcp.WithString("date",
				mcp.Description("New date in YYYY-MM-DD form."),
			),
			mcp.WithNumber("amount",
				mcp.Description("New amount."),
			),
			mcp.WithString("category",
				mcp.Description("New category."),
			),
			mcp.WithString("subcategory",
				mcp.Description("New subcategory."),
			),
			mcp.WithString("note",
				mcp.Description("New note."),
			),
		}, s.userOption()...)...,
	), s.handleUpdate)
}

// userOption declares the user_id parameter only in self-serve mode. In token
// mode the caller identity comes exclusively from the verified request
// context, so the parameter must not exist on the tool schema at all.
func (s *Server) userOption() []mcp.ToolOption {
	if s.guard.Mode() != identity.ModeSelfServe {
		return nil
	}
	return []mcp.ToolOption{
		mcp.WithString("user_id",
			mcp.DefaultString(core.GuestUser),
			mcp.Description("Name of the user the expense belongs to. Ask the user for their name before calling; do not leave it as the guest default."),
		),
	}
}

func (s *Server) handleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := s.guard.Resolve(ctx, req.GetString("user_id", ""))
	if err != nil {
		return mcp.NewToolResultText(renderError(err)), nil
	}

	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultText(renderError(argError(err))), nil
	}
	amount, err := req.RequireFloat("amount")
	if err != nil {
		return mcp.NewToolResultText(renderError(argError(err))), nil
	}
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultText(renderError(argError(err))), nil
	}

	exp := core.Expense{
		UserID:      userID,
		Date:        date,
		Amount:      amount,
		Category:    category,
		Subcategory: req.GetString("subcategory", ""),
		Note:        req.GetString("note", ""),
	}
	id, err := s.svc.Add(ctx, exp)
	if err != nil {
		return mcp.NewToolResultText(renderError(err)), nil
	}
	return mcp.NewToolResultText(renderAdded(id)), nil
}

func (s *Server) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := s.guard.Resolve(ctx, req.GetString("user_id", ""))
	if err != nil {
		return mcp.NewToolResultText(renderError(err)), nil
	}

	startDate, err := req.RequireString("start_date")
	if err != nil {
		return mcp.NewToolResultText(renderError(argError(err))), nil
	}
	endDate, err := req.RequireString("end_date")
	if err != nil {
		return mcp.NewToolResultText(renderError(argError(err))), nil
	}

	rows, err := s.svc.List(ctx, userID, startDate, endDate)
	if err != nil {
		return mcp.NewToolResultText(renderError(err)), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText(renderListEmpty(userID, startDate, endDate)), nil
	}
	return mcp.NewToolResultText(renderJSON(rows)), nil
}

func (s *Server) handleSummarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := s.guard.Resolve(ctx, req.GetString("user_id", ""))
	if err != nil {
		return mcp.NewToolResultText(renderError(err)), nil
	}

	startDate, err := req.RequireString("start_date")
	if err != nil {
		return mcp.NewToolResultText(renderError(argError(err))), nil
	}
	endDate, err := req.RequireString("end_date")
	if err != nil {
		return mcp.NewToolResultText(renderError(argError(err))), nil
	}

	totals, err := s.svc.Summarize(ctx, userID, startDate, endDate, req.GetString("category", ""))
	if err != nil {
		return mcp.NewToolResultText(renderError(err)), nil
	}
	if len(totals) == 0 {
		return mcp.NewToolResultText(renderSummaryEmpty(userID)), nil
	}
	return mcp.NewToolResultText(renderJSON(totals)), nil
}

func (s *Server) handleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := s.guard.Resolve(ctx, req.GetString("user_id", ""))
	if err != nil {
		return mcp.NewToolResultText(renderError(err)), nil
	}

	id, err := req.RequireInt("expense_id")
	if err != nil {
		return mcp.NewToolResultText(renderError(argError(err))), nil
	}

	found, err := s.svc.Delete(ctx, int64(id), userID)
	if err != nil {
		return mcp.NewToolResultText(renderError(err)), nil
	}
	if !found {
		return mcp.NewToolResultText(renderNotFound(int64(id), userID)), nil
	}
	return mcp.NewToolResultText(renderDeleted(int64(id))), nil
}

func (s *Server) handleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := s.guard.Resolve(ctx, req.GetString("user_id", ""))
	if err != nil {
		return mcp.NewToolResultText(renderError(err)), nil
	}

	id, err := req.RequireInt("expense_id")
	if err != nil {
		return mcp.NewToolResultText(renderError(argError(err))), nil
	}

	upd := updateFromArgs(req.GetArguments())
	found, err := s.svc.Update(ctx, int64(id), userID, upd)
	if err != nil {
		return mcp.NewToolResultText(renderError(err)), nil
	}
	if !found {
		return mcp.NewToolResultText(renderNotFound(int64(id), userID)), nil
	}
	return mcp.NewToolResultText(renderUpdated(int64(id))), nil
}

// updateFromArgs distinguishes an omitted field from one explicitly set to an
// empty value, which the typed getters cannot do. A JSON null counts as
// omitted.
func updateFromArgs(args map[string]any) core.ExpenseUpdate {
	var upd core.ExpenseUpdate
	if v, ok := args["date"]; ok && v != nil {
		// A bare number here must survive to validation so the caller
		// gets the date-format message rather than a type fault.
		upd.Date = core.Set(argString(v))
	}
	if v, ok := args["amount"]; ok && v != nil {
		if f, ok := argFloat(v); ok {
			upd.Amount = core.Set(f)
		}
	}
	if v, ok := args["category"]; ok && v != nil {
		upd.Category = core.Set(argString(v))
	}
	if v, ok := args["subcategory"]; ok && v != nil {
		upd.Subcategory = core.Set(argString(v))
	}
	if v, ok := args["note"]; ok && v != nil {
		upd.Note = core.Set(argString(v))
	}
	return upd
}

func argString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func argFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// argError wraps a missing or mistyped required argument as a validation
// failure so it renders in-band instead of faulting the call.
func argError(err error) error {
	return core.WrapErrorf(core.KindValidation, err, "Error: invalid arguments")
}
