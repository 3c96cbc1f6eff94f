package amqp

import (
	"encoding/json"
	"time"
)

// Event names published on the expense stream.
const (
	EventExpenseAdded   = "expense_added"
	EventExpenseUpdated = "expense_updated"
	EventExpenseDeleted = "expense_deleted"
)

// ExpenseEvent is the lightweight message published after a successful
// mutation. Consumers fetch the full row themselves if they need it.
type ExpenseEvent struct {
	Event     string    `json:"event"`
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(event string, id int64, userID string) *ExpenseEvent {
	return &ExpenseEvent{
		Event:     event,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON creates an event from JSON bytes.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var e ExpenseEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
