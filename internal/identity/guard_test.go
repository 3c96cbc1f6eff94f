package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"expensed/internal/core"
)

func TestSelfServeResolve(t *testing.T) {
	g := NewGuard(ModeSelfServe, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		supplied string
		want     string
		wantKind core.ErrorKind
	}{
		{name: "named user", supplied: "alice", want: "alice"},
		{name: "quoted name is trimmed", supplied: "'alice'", want: "alice"},
		{name: "empty defaults to guest and is rejected", supplied: "", wantKind: core.KindIdentityUnknown},
		{name: "explicit guest rejected", supplied: "guest", wantKind: core.KindIdentityUnknown},
		{name: "guest rejection is case-insensitive", supplied: "GuEsT", wantKind: core.KindIdentityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Resolve(ctx, tt.supplied)
			if tt.wantKind != "" {
				if err == nil {
					t.Fatal("expected error")
				}
				if core.KindOf(err) != tt.wantKind {
					t.Fatalf("kind = %v, want %v", core.KindOf(err), tt.wantKind)
				}
				if !strings.Contains(err.Error(), "user") {
					t.Errorf("message should guide the caller, got %q", err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.want {
				t.Errorf("user = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenModeResolve(t *testing.T) {
	g := NewGuard(ModeToken, nil)

	// Without a verified claim the caller is unauthenticated, whatever
	// user_id they may have supplied.
	_, err := g.Resolve(context.Background(), "alice")
	if err == nil || core.KindOf(err) != core.KindUnauthenticated {
		t.Fatalf("err = %v, want unauthenticated", err)
	}

	ctx := WithUser(context.Background(), "octocat")
	got, err := g.Resolve(ctx, "somebody-else")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "octocat" {
		t.Errorf("user = %q, want claim subject", got)
	}
}

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	tok, err := svc.Issue("octocat")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	subject, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if subject != "octocat" {
		t.Errorf("subject = %q", subject)
	}

	if _, err := svc.Verify(tok + "tampered"); err == nil {
		t.Error("tampered token must not verify")
	}

	other := NewTokenService("different-secret", time.Hour)
	if _, err := other.Verify(tok); err == nil {
		t.Error("token must not verify under a different secret")
	}

	if _, err := svc.Issue(""); err == nil {
		t.Error("empty subject must be rejected")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)
	tok, err := svc.Issue("octocat")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Verify(tok); err == nil {
		t.Error("expired token must not verify")
	}
}
