// Package services orchestrates expense operations across the store and the
// optional event stream.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"expensed/internal/amqp"
	"expensed/internal/core"
	"expensed/internal/storage"
)

// ExpenseService executes the tool operations against the store and
// publishes a best-effort event after every successful mutation. Identity is
// resolved before this layer: every method takes the effective user id.
type ExpenseService struct {
	store  storage.Store
	events *amqp.Client
	logger *slog.Logger
}

func NewExpenseService(store storage.Store, events *amqp.Client, logger *slog.Logger) *ExpenseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpenseService{store: store, events: events, logger: logger}
}

// Add inserts one expense and returns its new id.
func (s *ExpenseService) Add(ctx context.Context, e core.Expense) (int64, error) {
	id, err := s.store.Add(ctx, e)
	if err != nil {
		return 0, err
	}

	s.publish(ctx, amqp.EventExpenseAdded, id, e.UserID)
	return id, nil
}

// List returns the user's expenses in the inclusive date range, date
// ascending. Empty result is a nil slice.
func (s *ExpenseService) List(ctx context.Context, userID, startDate, endDate string) ([]core.Expense, error) {
	return s.store.List(ctx, userID, startDate, endDate)
}

// Summarize returns per-category totals, optionally filtered to one
// category (empty string means all), category name ascending.
func (s *ExpenseService) Summarize(ctx context.Context, userID, startDate, endDate, category string) ([]core.CategoryTotal, error) {
	return s.store.Summarize(ctx, userID, startDate, endDate, core.TrimQuoted(category))
}

// Delete removes the user's expense. The false outcome covers both a
// missing id and someone else's row.
func (s *ExpenseService) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	found, err := s.store.Delete(ctx, id, userID)
	if err != nil || !found {
		return found, err
	}

	s.publish(ctx, amqp.EventExpenseDeleted, id, userID)
	return true, nil
}

// Update applies the set fields after trimming stray quotes from string
// inputs. Validation (zero fields, bare-integer date) happens in the store
// path and surfaces as a validation error.
func (s *ExpenseService) Update(ctx context.Context, id int64, userID string, upd core.ExpenseUpdate) (bool, error) {
	found, err := s.store.Update(ctx, id, userID, upd.Clean())
	if err != nil || !found {
		return found, err
	}

	s.publish(ctx, amqp.EventExpenseUpdated, id, userID)
	return true, nil
}

// publish emits a mutation event when a broker is configured. Failures are
// logged and never fail the operation.
func (s *ExpenseService) publish(ctx context.Context, event string, id int64, userID string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpenseEvent(ctx, event, id, userID); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish expense event",
			"event", event, "id", id, "user_id", userID, "error", err)
	}
}

// Close releases the store and the event client.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}
	return nil
}
