package calculator

import "github.com/fairsplit/fairsplit/internal/money"

// Entry is one ledger expense reduced to what balance derivation needs.
type Entry struct {
	PayerID     int64
	AmountCents int64
	Shares      []Share
}

// GroupBalances folds a group's expense log into per-user net balances.
// The payer is credited the full expense amount; every share participant is
// debited their share. A payer who also participates nets the two.
//
// The fold is commutative: reordering entries cannot change the result, and
// recomputing from the same log always yields identical balances. Because
// each entry's shares sum exactly to its amount, the balances sum to zero.
//
// An empty log yields an empty map, which readers interpret as all-zero
// balances. Accumulation is overflow-checked; overflow fails the whole
// derivation rather than returning a truncated balance.
func GroupBalances(entries []Entry) (map[int64]int64, error) {
	balances := make(map[int64]int64)
	for _, e := range entries {
		credited, err := money.CheckedAdd(balances[e.PayerID], e.AmountCents)
		if err != nil {
			return nil, err
		}
		balances[e.PayerID] = credited

		for _, s := range e.Shares {
			debited, err := money.CheckedSub(balances[s.UserID], s.AmountCents)
			if err != nil {
				return nil, err
			}
			balances[s.UserID] = debited
		}
	}
	return balances, nil
}
