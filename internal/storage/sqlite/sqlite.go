// Package sqlite implements the expense store over an embedded file-based
// database using modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expensed/internal/core"
	"expensed/internal/storage"

	_ "modernc.org/sqlite"
)

// Config holds the SQLite store configuration.
type Config struct {
	// Path is the database file location. The parent directory is created
	// on demand.
	Path string
	// MaxConns bounds the database/sql connection pool.
	MaxConns int
}

// Store is the SQLite-backed expense store. The database/sql pool is its
// connection pool; a construction failure is remembered and replayed on
// every call instead of crashing the process.
type Store struct {
	db      *sql.DB
	logger  *slog.Logger
	initErr error
}

// New opens the database and applies migrations. On failure the returned
// store is unavailable but usable: every operation reports the captured
// error. The diagnostic is logged exactly once, here.
func New(cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 5
	}

	db, err := open(cfg)
	if err != nil {
		logger.Error("Error creating connection pool", "error", err, "path", cfg.Path)
		return &Store{logger: logger, initErr: err}
	}

	logger.Info("Initialized SQLite store", "path", cfg.Path, "max_conns", cfg.MaxConns)
	return &Store{db: db, logger: logger}
}

func open(cfg Config) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(cfg.Path); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// ready replays the captured startup failure, if any.
func (s *Store) ready() error {
	if s.initErr != nil {
		return core.WrapErrorf(core.KindPoolUnavailable, s.initErr, "Database pool is not initialized")
	}
	return nil
}

func (s *Store) Add(ctx context.Context, e core.Expense) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (user_id, date, amount, category, subcategory, note)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.UserID, e.Date, e.Amount, e.Category, e.Subcategory, e.Note)
	if err != nil {
		return 0, core.WrapErrorf(core.KindStore, err, "insert expense")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, core.WrapErrorf(core.KindStore, err, "read inserted id")
	}

	s.logger.InfoContext(ctx, "Expense saved", "id", id, "user_id", e.UserID,
		"date", e.Date, "amount", e.Amount, "category", e.Category)
	return id, nil
}

func (s *Store) List(ctx context.Context, userID, startDate, endDate string) ([]core.Expense, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, amount, category, subcategory, note
		FROM expenses
		WHERE user_id = ? AND date BETWEEN ? AND ?
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
	if err := s.ready(); err != nil {
		return nil, err
	}

	query := `
		SELECT category, SUM(amount) AS total_amount
		FROM expenses
		WHERE user_id = ? AND date BETWEEN ? AND ?`
	args := []any{userID, startDate, endDate}

	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " GROUP BY category ORDER BY category ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
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
	if err := s.ready(); err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM expenses WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, core.WrapErrorf(core.KindStore, err, "delete expense")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, core.WrapErrorf(core.KindStore, err, "read rows affected")
	}
	if affected == 0 {
		return false, nil
	}

	s.logger.InfoContext(ctx, "Expense deleted", "id", id, "user_id", userID)
	return true, nil
}

func (s *Store) Update(ctx context.Context, id int64, userID string, upd core.ExpenseUpdate) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	if err := upd.Validate(); err != nil {
		return false, err
	}

	set, args := storage.BuildUpdateSet(upd, storage.Question, 1)
	query := fmt.Sprintf("UPDATE expenses SET %s WHERE id = ? AND user_id = ?", set)
	args = append(args, id, userID)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, core.WrapErrorf(core.KindStore, err, "update expense")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, core.WrapErrorf(core.KindStore, err, "read rows affected")
	}
	if affected == 0 {
		return false, nil
	}

	s.logger.InfoContext(ctx, "Expense updated", "id", id, "user_id", userID)
	return true, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
