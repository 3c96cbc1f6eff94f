// Package mcp exposes the expense service as a Model Context Protocol tool
// server, over stdio for local agents or streamable HTTP for remote ones.
package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"expensed/internal/identity"
	"expensed/internal/services"
	"expensed/internal/taxonomy"
)

const (
	serverName    = "expense-tracker"
	serverVersion = "1.0.0"

	categoriesURI = "expense://categories"
)

// Server wires tool handlers to the expense service behind the identity
// guard.
type Server struct {
	mcp    *server.MCPServer
	svc    *services.ExpenseService
	guard  *identity.Guard
	tax    *taxonomy.Taxonomy
	logger *slog.Logger
}

func NewServer(svc *services.ExpenseService, guard *identity.Guard, tax *taxonomy.Taxonomy, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mcp: server.NewMCPServer(serverName, serverVersion,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		svc:    svc,
		guard:  guard,
		tax:    tax,
		logger: logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

func (s *Server) registerResources() {
	s.mcp.AddResource(mcp.NewResource(categoriesURI, "Expense Categories",
		mcp.WithResourceDescription("Known expense categories and their subcategories."),
		mcp.WithMIMEType("application/json"),
	), s.handleCategories)
}

func (s *Server) handleCategories(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      categoriesURI,
			MIMEType: "application/json",
			Text:     s.tax.JSON(),
		},
	}, nil
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout. Logging must
// already be routed to stderr or it would corrupt the framing.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// ServeHTTP blocks serving streamable HTTP on addr until ctx is cancelled.
// tokens may be nil when the deployment runs self-service.
func (s *Server) ServeHTTP(ctx context.Context, addr string, tokens *identity.TokenService) error {
	httpServer := server.NewStreamableHTTPServer(s.mcp,
		server.WithHTTPContextFunc(bearerContext(tokens, s.logger)),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// bearerContext lifts a verified Bearer token subject onto the request
// context. A missing or bad token is not rejected here; the guard reports it
// in-band when a tool actually runs.
func bearerContext(tokens *identity.TokenService, logger *slog.Logger) server.HTTPContextFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		if tokens == nil {
			return ctx
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return ctx
		}
		userID, err := tokens.Verify(token)
		if err != nil {
			logger.Warn("rejected bearer token", "error", err)
			return ctx
		}
		return identity.WithUser(ctx, userID)
	}
}
