package events

import (
	"encoding/json"
	"time"

	"github.com/fairsplit/fairsplit/internal/models"
)

// ExpenseCreatedMessage is a lightweight notification of a ledger append.
// Consumers fetch the full expense from the API when they need the splits.
type ExpenseCreatedMessage struct {
	ExpenseID   int64     `json:"expense_id"`
	GroupID     int64     `json:"group_id"`
	AmountCents int64     `json:"amount_cents"`
	PaidBy      int64     `json:"paid_by"`
	SplitKind   string    `json:"split_kind"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpenseCreatedMessage builds the notification for an accepted expense.
func NewExpenseCreatedMessage(expense *models.Expense) *ExpenseCreatedMessage {
	return &ExpenseCreatedMessage{
		ExpenseID:   expense.ID,
		GroupID:     expense.GroupID,
		AmountCents: expense.AmountCents,
		PaidBy:      expense.PaidBy,
		SplitKind:   string(expense.SplitKind),
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExpenseCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseCreatedMessageFromJSON parses a message from JSON bytes.
func ExpenseCreatedMessageFromJSON(data []byte) (*ExpenseCreatedMessage, error) {
	var msg ExpenseCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
