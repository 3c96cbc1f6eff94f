// Package postgres implements the expense store over a hosted PostgreSQL
// instance using a bounded pgx connection pool.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"expensed/internal/core"
	"expensed/internal/storage"
)

// Config holds the Postgres store configuration.
type Config struct {
	// DSN is the connection string, URL or key/value form.
	DSN string
	// MinConns and MaxConns bound the pool. Zero values take the defaults
	// (1 and 20).
	MinConns int32
	MaxConns int32
	// RequireSSL forces sslmode=require onto the DSN when absent, for
	// managed cloud stores that reject plaintext connections.
	RequireSSL bool
}

// Store is the Postgres-backed expense store. Pool construction happens once
// at startup; a failure there is logged once and replayed as a
// pool-unavailable error on every subsequent call.
type Store struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	initErr error
}

// New builds the pool, verifies connectivity and applies migrations. It
// never fails the process: on error the returned store replays the captured
// failure per call.
func New(ctx context.Context, cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := connect(ctx, cfg)
	if err != nil {
		logger.Error("Error creating connection pool", "error", err)
		return &Store{logger: logger, initErr: err}
	}

	logger.Info("Initialized Postgres store",
		"min_conns", pool.Config().MinConns,
		"max_conns", pool.Config().MaxConns)
	return &Store{pool: pool, logger: logger}
}

func connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	dsn := cfg.DSN
	if cfg.RequireSSL {
		dsn = ensureSSLMode(dsn)
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolConfig.MinConns = cfg.MinConns
	if poolConfig.MinConns <= 0 {
		poolConfig.MinConns = 1
	}
	poolConfig.MaxConns = cfg.MaxConns
	if poolConfig.MaxConns <= 0 {
		poolConfig.MaxConns = 20
	}
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dsn); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return pool, nil
}

// ensureSSLMode appends sslmode=require when the DSN does not already pick
// an ssl mode. Both URL and key/value DSN forms are handled.
func ensureSSLMode(dsn string) string {
	if dsn == "" || strings.Contains(dsn, "sslmode=") {
		return dsn
	}
	if strings.Contains(dsn, "://") {
		if strings.Contains(dsn, "?") {
			return dsn + "&sslmode=require"
		}
		return dsn + "?sslmode=require"
	}
	return dsn + " sslmode=require"
}

// acquire checks out a connection, replaying the captured startup failure
// when the pool never came up. Callers must Release on every path.
func (s *Store) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	if s.initErr != nil {
		return nil, core.WrapErrorf(core.KindPoolUnavailable, s.initErr, "Database pool is not initialized")
	}
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, core.WrapErrorf(core.KindStore, err, "acquire connection")
	}
	return conn, nil
}

func (s *Store) Add(ctx context.Context, e core.Expense) (int64, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	var id int64
	err = conn.QueryRow(ctx, `
		INSERT INTO expenses (user_id, date, amount, category, subcategory, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, e.UserID, e.Date, e.Amount, e.Category, e.Subcategory, e.Note).Scan(&id)
	if err != nil {
		return 0, core.WrapErrorf(core.KindStore, err, "insert expense")
	}

	s.logger.InfoContext(ctx, "Expense saved", "id", id, "user_id", e.UserID,
		"date", e.Date, "amount", e.Amount, "category", e.Category)
	return id, nil
}

func (s *Store) List(ctx context.Context, userID, startDate, endDate string) ([]core.Expense, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
		SELECT id, user_id, date, amount, category, subcategory, note
		FROM expenses
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`, userID, startDate, endDate)
	if err != nil {
		return nil, core.WrapErrorf(core.KindStore, err, "query expenses")
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Amount, &e.Category, &e.Subcategory, &e.Note); err != nil {
			return nil, core.WrapErrorf(core.KindStore, err, "scan expense")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapErrorf(core.KindStore, err, "iterate expenses")
	}
	return out, nil
}

func (s *Store) Summarize(ctx context.Context, userID, startDate, endDate, category string) ([]core.CategoryTotal, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	query := `
		SELECT category, SUM(amount) AS total_amount
		FROM expenses
		WHERE user_id = $1 AND date BETWEEN $2 AND $3`
	args := []any{userID, startDate, endDate}

	if category != "" {
		query += " AND category = $4"
		args = append(args, category)
	}
	query += " GROUP BY category ORDER BY category ASC"

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, core.WrapErrorf(core.KindStore, err, "summarize expenses")
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, core.WrapErrorf(core.KindStore, err, "scan summary row")
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapErrorf(core.KindStore, err, "iterate summary")
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx,
		"DELETE FROM expenses WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, core.WrapErrorf(core.KindStore, err, "delete expense")
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	s.logger.InfoContext(ctx, "Expense deleted", "id", id, "user_id", userID)
	return true, nil
}

func (s *Store) Update(ctx context.Context, id int64, userID string, upd core.ExpenseUpdate) (bool, error) {
	if err := upd.Validate(); err != nil {
		return false, err
	}

	conn, err := s.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Release()

	set, args := storage.BuildUpdateSet(upd, storage.Dollar, 1)
	query := fmt.Sprintf("UPDATE expenses SET %s WHERE id = %s AND user_id = %s",
		set, storage.Dollar(len(args)+1), storage.Dollar(len(args)+2))
	args = append(args, id, userID)

	tag, err := conn.Exec(ctx, query, args...)
	if err != nil {
		return false, core.WrapErrorf(core.KindStore, err, "update expense")
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	s.logger.InfoContext(ctx, "Expense updated", "id", id, "user_id", userID)
	return true, nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
