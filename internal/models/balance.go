package models

// Balance is one user's derived net position within a group.
// Positive means the user is owed money, negative means the user owes.
// Balances are never stored; they are recomputed from the expense ledger.
type Balance struct {
	UserID      int64  `json:"user_id"`
	UserName    string `json:"user_name"`
	AmountCents int64  `json:"amount_cents"`
}

// GroupContribution is one group's contribution to a user's overall position.
type GroupContribution struct {
	GroupID     int64  `json:"group_id"`
	GroupName   string `json:"group_name"`
	AmountCents int64  `json:"amount_cents"`
}

// UserBalance is one user's derived position aggregated across all groups.
type UserBalance struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`

	// NetCents is the sum of the per-group contributions.
	NetCents int64 `json:"net_cents"`

	// Groups is the per-group breakdown of NetCents.
	Groups []GroupContribution `json:"groups"`
}
