// Package identity resolves the acting user for every tool call. A
// deployment runs in exactly one of two modes: self-service, where callers
// name themselves, or token, where the user comes from a verified JWT.
package identity

import (
	"context"
	"log/slog"
	"strings"

	"expensed/internal/core"
)

// Mode selects the identity policy. The two policies are never merged.
type Mode string

const (
	// ModeSelfServe accepts a caller-supplied user_id, defaulting to the
	// guest sentinel, and rejects the sentinel itself.
	ModeSelfServe Mode = "selfserve"
	// ModeToken derives the user solely from a verified token claim.
	ModeToken Mode = "token"
)

func (m Mode) IsValid() bool {
	return m == ModeSelfServe || m == ModeToken
}

type ctxKey struct{}

// WithUser stores a verified user id on the context. Only the transport
// layer should call this, after token verification.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserFromContext returns the verified user id, if any.
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ctxKey{}).(string)
	return userID, ok && userID != ""
}

// Guard produces the effective user_id for one call.
type Guard struct {
	mode   Mode
	logger *slog.Logger
}

func NewGuard(mode Mode, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{mode: mode, logger: logger}
}

func (g *Guard) Mode() Mode {
	return g.mode
}

// Resolve maps the caller-supplied identifier (self-service mode) or the
// context's verified claim (token mode) to the effective user id.
func (g *Guard) Resolve(ctx context.Context, supplied string) (string, error) {
	switch g.mode {
	case ModeToken:
		userID, ok := UserFromContext(ctx)
		if !ok {
			return "", core.NewError(core.KindUnauthenticated,
				"authentication required. Log in with expensed-login and send the token as a Bearer Authorization header.")
		}
		return userID, nil

	default:
		userID := core.TrimQuoted(supplied)
		if userID == "" {
			userID = core.GuestUser
		}
		if strings.EqualFold(userID, core.GuestUser) {
			return "", core.NewError(core.KindIdentityUnknown,
				"no user identity provided. Ask the user which name to record expenses under, then call the tool again with user_id set to that name.")
		}
		return userID, nil
	}
}
