package models

// SplitKind is the rule used to divide an expense among its participants.
type SplitKind string

const (
	// SplitEqual divides the amount evenly among the participants.
	SplitEqual SplitKind = "equal"

	// SplitPercentage divides the amount by caller-supplied percentages.
	SplitPercentage SplitKind = "percentage"
)

// Valid reports whether k is a known split kind.
func (k SplitKind) Valid() bool {
	return k == SplitEqual || k == SplitPercentage
}

// Expense represents a shared cost paid by one group member.
// Expenses are immutable after creation; the ledger is append-only.
type Expense struct {
	// ID is the unique identifier for the expense.
	ID int64 `json:"id"`

	// GroupID is the group this expense belongs to.
	GroupID int64 `json:"group_id"`

	// Description is the human-readable purpose of the expense.
	Description string `json:"description"`

	// AmountCents is the total amount in integer minor units.
	AmountCents int64 `json:"amount_cents"`

	// PaidBy is the user ID of the member who paid. Must be a group member.
	PaidBy int64 `json:"paid_by"`

	// SplitKind is the rule used to compute the splits.
	SplitKind SplitKind `json:"split_kind"`

	// Splits are the frozen per-participant shares.
	// Invariant: the split amounts sum exactly to AmountCents.
	Splits []Split `json:"splits"`

	// CreatedAt is the Unix timestamp when the expense was appended.
	CreatedAt int64 `json:"created_at"`
}

// Split represents one participant's share of an expense.
type Split struct {
	// ID is the unique identifier for the split.
	ID int64 `json:"id"`

	// ExpenseID is the owning expense.
	ExpenseID int64 `json:"expense_id"`

	// UserID is the participant. Must be a member of the expense's group.
	UserID int64 `json:"user_id"`

	// AmountCents is this participant's share in integer minor units.
	AmountCents int64 `json:"amount_cents"`

	// Percentage is the source percentage for percentage-kind splits.
	// Nil for equal-kind splits.
	Percentage *float64 `json:"percentage,omitempty"`
}
