package calculator

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/fairsplit/fairsplit/internal/models"
)

func entry(t *testing.T, total, payer int64, members []int64, spec Spec) Entry {
	t.Helper()
	shares, err := Split(total, payer, members, spec)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	return Entry{PayerID: payer, AmountCents: total, Shares: shares}
}

func TestGroupBalances(t *testing.T) {
	members := []int64{1, 2, 3}
	entries := []Entry{
		entry(t, 1000, 1, members, Equal{Participants: []int64{1, 2, 3}}),
		entry(t, 999, 2, members, Percentage{Shares: map[int64]float64{1: 50, 2: 30, 3: 20}}),
		entry(t, 250, 3, members, Equal{Participants: []int64{1, 2}}),
	}

	balances, err := GroupBalances(entries)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}

	// Expense 1: user 1 pays 1000; shares 334/333/333.
	// Expense 2: user 2 pays 999; corrected shares 500/300/199.
	// Expense 3: user 3 pays 250; shares 125/125 for users 1 and 2.
	want := map[int64]int64{
		1: 1000 - 334 - 500 - 125, // +41
		2: -333 + 999 - 300 - 125, // +241
		3: -333 - 199 + 250,       // -282
	}

	if !reflect.DeepEqual(balances, want) {
		t.Errorf("balances = %v, want %v", balances, want)
	}

	var sum int64
	for _, b := range balances {
		sum += b
	}
	if sum != 0 {
		t.Errorf("balances sum to %d, want 0", sum)
	}
}

// TestGroupBalancesZeroSum feeds a long mixed sequence through the fold and
// checks the invariant after every prefix.
func TestGroupBalancesZeroSum(t *testing.T) {
	members := []int64{1, 2, 3, 4, 5}
	specs := []Spec{
		Equal{Participants: []int64{1, 2, 3, 4, 5}},
		Equal{Participants: []int64{2, 4}},
		Percentage{Shares: map[int64]float64{1: 33.33, 3: 33.33, 5: 33.34}},
		Percentage{Shares: map[int64]float64{2: 99.99, 5: 0.01}},
		Equal{Participants: []int64{5}},
	}

	var entries []Entry
	amount := int64(1)
	for i := 0; i < 50; i++ {
		payer := members[i%len(members)]
		entries = append(entries, entry(t, amount, payer, members, specs[i%len(specs)]))
		amount = amount*3 + 7

		balances, err := GroupBalances(entries)
		if err != nil {
			t.Fatalf("GroupBalances failed at %d entries: %v", len(entries), err)
		}
		var sum int64
		for _, b := range balances {
			sum += b
		}
		if sum != 0 {
			t.Fatalf("after %d entries balances sum to %d, want 0", len(entries), sum)
		}

		if amount > 1<<40 {
			amount = 13
		}
	}
}

func TestGroupBalancesIdempotent(t *testing.T) {
	members := []int64{7, 8, 9}
	entries := []Entry{
		entry(t, 12345, 7, members, Equal{Participants: []int64{7, 8, 9}}),
		entry(t, 999, 9, members, Percentage{Shares: map[int64]float64{7: 10, 8: 90}}),
	}

	first, err := GroupBalances(entries)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	second, err := GroupBalances(entries)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("recomputation differs: %v vs %v", first, second)
	}
}

func TestGroupBalancesOrderIndependent(t *testing.T) {
	members := []int64{1, 2, 3}
	a := entry(t, 1000, 1, members, Equal{Participants: []int64{1, 2, 3}})
	b := entry(t, 501, 2, members, Equal{Participants: []int64{1, 3}})
	c := entry(t, 999, 3, members, Percentage{Shares: map[int64]float64{1: 25, 2: 75}})

	forward, err := GroupBalances([]Entry{a, b, c})
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	reversed, err := GroupBalances([]Entry{c, b, a})
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	if !reflect.DeepEqual(forward, reversed) {
		t.Errorf("fold is order dependent: %v vs %v", forward, reversed)
	}
}

func TestGroupBalancesEmptyLog(t *testing.T) {
	balances, err := GroupBalances(nil)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	if len(balances) != 0 {
		t.Errorf("expected empty balances for empty log, got %v", balances)
	}
}

func TestGroupBalancesOverflow(t *testing.T) {
	huge := []Entry{
		{PayerID: 1, AmountCents: math.MaxInt64, Shares: []Share{{UserID: 2, AmountCents: math.MaxInt64}}},
		{PayerID: 1, AmountCents: math.MaxInt64, Shares: []Share{{UserID: 2, AmountCents: math.MaxInt64}}},
	}
	_, err := GroupBalances(huge)
	if !errors.Is(err, models.ErrOverflow) {
		t.Errorf("expected overflow error, got %v", err)
	}
}
