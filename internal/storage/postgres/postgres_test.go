package postgres

import (
	"context"
	"testing"

	"expensed/internal/core"
)

func TestEnsureSSLMode(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{
			name: "url without params",
			dsn:  "postgres://u:p@db.example.com:5432/expenses",
			want: "postgres://u:p@db.example.com:5432/expenses?sslmode=require",
		},
		{
			name: "url with params",
			dsn:  "postgres://u:p@db.example.com/expenses?connect_timeout=5",
			want: "postgres://u:p@db.example.com/expenses?connect_timeout=5&sslmode=require",
		},
		{
			name: "url with explicit sslmode untouched",
			dsn:  "postgres://u:p@localhost/expenses?sslmode=disable",
			want: "postgres://u:p@localhost/expenses?sslmode=disable",
		},
		{
			name: "key value form",
			dsn:  "host=localhost user=u dbname=expenses",
			want: "host=localhost user=u dbname=expenses sslmode=require",
		},
		{
			name: "key value with sslmode untouched",
			dsn:  "host=localhost sslmode=verify-full",
			want: "host=localhost sslmode=verify-full",
		},
		{
			name: "empty stays empty",
			dsn:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ensureSSLMode(tt.dsn); got != tt.want {
				t.Errorf("ensureSSLMode(%q) = %q, want %q", tt.dsn, got, tt.want)
			}
		})
	}
}

func TestStartupFailureReplayed(t *testing.T) {
	// An unparseable DSN fails pool construction without touching the
	// network; the store must capture that instead of crashing.
	s := New(context.Background(), Config{DSN: "://not-a-dsn"}, nil)

	for i := 0; i < 2; i++ {
		_, err := s.Add(context.Background(), core.Expense{
			UserID: "alice", Date: "2024-01-01", Amount: 1, Category: "food",
		})
		if err == nil {
			t.Fatal("expected pool-unavailable error")
		}
		if core.KindOf(err) != core.KindPoolUnavailable {
			t.Fatalf("kind = %v, want pool unavailable", core.KindOf(err))
		}
	}

	if _, err := s.List(context.Background(), "alice", "2024-01-01", "2024-12-31"); err == nil {
		t.Fatal("expected pool-unavailable error from List")
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close on unavailable store: %v", err)
	}
}

func TestEmptyDSNCaptured(t *testing.T) {
	s := New(context.Background(), Config{}, nil)
	_, err := s.Summarize(context.Background(), "alice", "2024-01-01", "2024-12-31", "")
	if err == nil || core.KindOf(err) != core.KindPoolUnavailable {
		t.Fatalf("err = %v, want pool unavailable", err)
	}
}
