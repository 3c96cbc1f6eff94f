package core

import (
	"errors"
	"testing"
)

func TestTrimQuoted(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-01-01", "2026-01-01"},
		{"'2026-01-01'", "2026-01-01"},
		{`"2026-01-01"`, "2026-01-01"},
		{"  ' food '  ", "food"},
		{"", ""},
		{`'"nested"'`, "nested"},
	}
	for i, tc := range cases {
		if got := TrimQuoted(tc.in); got != tc.want {
			t.Errorf("case %d: TrimQuoted(%q) = %q, want %q", i, tc.in, got, tc.want)
		}
	}
}

func TestValidateDate(t *testing.T) {
	if err := ValidateDate("2026-01-01"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	// Lenient on anything that is not a bare integer.
	if err := ValidateDate("jan 1st"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	err := ValidateDate("2026")
	if err == nil {
		t.Fatal("expected error for bare integer date")
	}
	if KindOf(err) != KindValidation {
		t.Fatalf("kind = %v, want %v", KindOf(err), KindValidation)
	}
	want := "Error: Invalid date format '2026'. Please use YYYY-MM-DD (e.g., '2026-01-01')."
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2024 || int(d.Month()) != 3 || d.Day() != 1 {
		t.Fatalf("parsed = %v", d)
	}
	if _, err := ParseDate("03/01/2024"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}

func TestFieldSetUnset(t *testing.T) {
	var zero Field[string]
	if zero.IsSet() {
		t.Fatal("zero Field must be unset")
	}

	empty := Set("")
	if !empty.IsSet() {
		t.Fatal("Set(\"\") must count as set")
	}
	if v, ok := empty.Get(); !ok || v != "" {
		t.Fatalf("Get() = %q, %v", v, ok)
	}

	if got := zero.Or("fallback"); got != "fallback" {
		t.Fatalf("Or = %q", got)
	}
	if got := Set(2.5).Or(0); got != 2.5 {
		t.Fatalf("Or = %v", got)
	}
}

func TestExpenseUpdateValidate(t *testing.T) {
	err := ExpenseUpdate{}.Validate()
	if err == nil {
		t.Fatal("expected error for empty update")
	}
	if err.Error() != "No fields provided for update." {
		t.Fatalf("message = %q", err.Error())
	}

	upd := ExpenseUpdate{Date: Set("2026")}
	if err := upd.Validate(); err == nil {
		t.Fatal("expected error for numeric date")
	}

	ok := ExpenseUpdate{Note: Set("")}
	if err := ok.Validate(); err != nil {
		t.Fatalf("empty-string note must be a valid update: %v", err)
	}
}

func TestExpenseUpdateClean(t *testing.T) {
	upd := ExpenseUpdate{
		Date:     Set("'2026-01-01'"),
		Category: Set(` "food" `),
		Amount:   Set(3.0),
	}
	cleaned := upd.Clean()

	if v, _ := cleaned.Date.Get(); v != "2026-01-01" {
		t.Errorf("date = %q", v)
	}
	if v, _ := cleaned.Category.Get(); v != "food" {
		t.Errorf("category = %q", v)
	}
	if v, _ := cleaned.Amount.Get(); v != 3.0 {
		t.Errorf("amount = %v", v)
	}
	if cleaned.Note.IsSet() {
		t.Error("unset note must stay unset after Clean")
	}
}

func TestErrorKinds(t *testing.T) {
	base := NewError(KindNotFound, "gone")
	if KindOf(base) != KindNotFound {
		t.Fatalf("KindOf = %v", KindOf(base))
	}

	wrapped := WrapErrorf(KindStore, errors.New("boom"), "insert expense")
	if KindOf(wrapped) != KindStore {
		t.Fatalf("KindOf = %v", KindOf(wrapped))
	}
	if wrapped.Error() != "insert expense: boom" {
		t.Fatalf("message = %q", wrapped.Error())
	}
	if !errors.As(error(wrapped), new(*Error)) {
		t.Fatal("errors.As must find *Error")
	}

	if KindOf(errors.New("plain")) != KindStore {
		t.Fatal("unclassified errors default to store kind")
	}
}
