package calculator

import (
	"testing"

	"github.com/fairsplit/fairsplit/internal/models"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name         string
		total        int64
		payer        int64
		members      []int64
		spec         Spec
		wantErr      bool
		validateFunc func(t *testing.T, shares []Share)
	}{
		{
			name:    "equal split with remainder goes to lowest user ids",
			total:   1000,
			payer:   1,
			members: []int64{1, 2, 3},
			spec:    Equal{Participants: []int64{3, 1, 2}}, // order must not matter
			validateFunc: func(t *testing.T, shares []Share) {
				want := map[int64]int64{1: 334, 2: 333, 3: 333}
				assertShares(t, shares, want)
			},
		},
		{
			name:    "equal split with no remainder",
			total:   1000,
			payer:   2,
			members: []int64{1, 2, 3, 4},
			spec:    Equal{Participants: []int64{1, 2, 3, 4}},
			validateFunc: func(t *testing.T, shares []Share) {
				want := map[int64]int64{1: 250, 2: 250, 3: 250, 4: 250}
				assertShares(t, shares, want)
			},
		},
		{
			name:    "single participant takes the whole amount",
			total:   777,
			payer:   5,
			members: []int64{5, 6},
			spec:    Equal{Participants: []int64{6}},
			validateFunc: func(t *testing.T, shares []Share) {
				assertShares(t, shares, map[int64]int64{6: 777})
			},
		},
		{
			name:    "percentage split corrects rounding toward lowest user id",
			total:   999,
			payer:   1,
			members: []int64{1, 2, 3},
			spec:    Percentage{Shares: map[int64]float64{1: 50, 2: 30, 3: 20}},
			validateFunc: func(t *testing.T, shares []Share) {
				// floor: 499 + 299 + 199 = 997; the two leftover cents go
				// to users 1 and 2.
				want := map[int64]int64{1: 500, 2: 300, 3: 199}
				assertShares(t, shares, want)
				for _, s := range shares {
					if s.Percentage == nil {
						t.Errorf("share for user %d missing source percentage", s.UserID)
					}
				}
			},
		},
		{
			name:    "zero-percent participant never charged a corrective cent",
			total:   999,
			payer:   1,
			members: []int64{1, 2, 3},
			spec:    Percentage{Shares: map[int64]float64{1: 0, 2: 50, 3: 50}},
			validateFunc: func(t *testing.T, shares []Share) {
				// floor: 0 + 499 + 499 = 998; the leftover cent goes to
				// the lowest user id among the floored shares, not user 1.
				want := map[int64]int64{1: 0, 2: 500, 3: 499}
				assertShares(t, shares, want)
			},
		},
		{
			name:    "overshooting sum within tolerance shrinks exact shares",
			total:   10000,
			payer:   1,
			members: []int64{1, 2},
			spec:    Percentage{Shares: map[int64]float64{1: 60.006, 2: 40.003}},
			validateFunc: func(t *testing.T, shares []Share) {
				// Basis points 6001 + 4000 assign one cent too many; it is
				// taken back from the lowest exactly-divided share.
				want := map[int64]int64{1: 6000, 2: 4000}
				assertShares(t, shares, want)
			},
		},
		{
			name:    "percentages summing to exactly 100.00 accepted",
			total:   1000,
			payer:   1,
			members: []int64{1, 2},
			spec:    Percentage{Shares: map[int64]float64{1: 66.67, 2: 33.33}},
			validateFunc: func(t *testing.T, shares []Share) {
				assertShares(t, shares, map[int64]int64{1: 667, 2: 333})
			},
		},
		{
			name:    "percentages summing to 99.5 rejected",
			total:   1000,
			payer:   1,
			members: []int64{1, 2},
			spec:    Percentage{Shares: map[int64]float64{1: 50, 2: 49.5}},
			wantErr: true,
		},
		{
			name:    "percentages summing to 100.5 rejected",
			total:   1000,
			payer:   1,
			members: []int64{1, 2},
			spec:    Percentage{Shares: map[int64]float64{1: 50.5, 2: 50}},
			wantErr: true,
		},
		{
			name:    "percentage above 100 rejected",
			total:   1000,
			payer:   1,
			members: []int64{1, 2},
			spec:    Percentage{Shares: map[int64]float64{1: 150, 2: -50}},
			wantErr: true,
		},
		{
			name:    "empty participant list rejected",
			total:   1000,
			payer:   1,
			members: []int64{1, 2},
			spec:    Equal{},
			wantErr: true,
		},
		{
			name:    "payer outside group rejected",
			total:   1000,
			payer:   9,
			members: []int64{1, 2},
			spec:    Equal{Participants: []int64{1, 2}},
			wantErr: true,
		},
		{
			name:    "participant outside group rejected",
			total:   1000,
			payer:   1,
			members: []int64{1, 2},
			spec:    Equal{Participants: []int64{1, 7}},
			wantErr: true,
		},
		{
			name:    "duplicate participant rejected",
			total:   1000,
			payer:   1,
			members: []int64{1, 2},
			spec:    Equal{Participants: []int64{2, 2}},
			wantErr: true,
		},
		{
			name:    "zero amount rejected",
			total:   0,
			payer:   1,
			members: []int64{1},
			spec:    Equal{Participants: []int64{1}},
			wantErr: true,
		},
		{
			name:    "negative amount rejected",
			total:   -500,
			payer:   1,
			members: []int64{1},
			spec:    Equal{Participants: []int64{1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Split(tt.total, tt.payer, tt.members, tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Split() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !models.IsValidation(err) {
					t.Errorf("expected a validation error, got %v", err)
				}
				if shares != nil {
					t.Errorf("expected no shares on validation failure, got %v", shares)
				}
				return
			}

			var sum int64
			for _, s := range shares {
				sum += s.AmountCents
			}
			if sum != tt.total {
				t.Errorf("shares sum to %d, want %d", sum, tt.total)
			}
			for i := 1; i < len(shares); i++ {
				if shares[i-1].UserID >= shares[i].UserID {
					t.Errorf("shares not in ascending user-id order: %v", shares)
				}
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, shares)
			}
		})
	}
}

// TestSplitDeterministic verifies that identical inputs always produce
// identical shares regardless of participant order in the request.
func TestSplitDeterministic(t *testing.T) {
	members := []int64{10, 20, 30, 40, 50}
	first, err := Split(10007, 10, members, Equal{Participants: []int64{50, 10, 30, 20, 40}})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	for n := 0; n < 20; n++ {
		again, err := Split(10007, 10, members, Equal{Participants: []int64{20, 40, 10, 50, 30}})
		if err != nil {
			t.Fatalf("Split failed: %v", err)
		}
		for i := range first {
			if first[i].UserID != again[i].UserID || first[i].AmountCents != again[i].AmountCents {
				t.Fatalf("split not deterministic: %v vs %v", first, again)
			}
		}
	}
}

func TestSplitPercentageValidationNamesSum(t *testing.T) {
	_, err := Split(1000, 1, []int64{1, 2}, Percentage{Shares: map[int64]float64{1: 50, 2: 47.5}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := err.Error(); got != "percentages sum to 97.5, expected 100" {
		t.Errorf("unexpected error detail: %q", got)
	}
}

func assertShares(t *testing.T, shares []Share, want map[int64]int64) {
	t.Helper()
	if len(shares) != len(want) {
		t.Fatalf("got %d shares, want %d", len(shares), len(want))
	}
	for _, s := range shares {
		if want[s.UserID] != s.AmountCents {
			t.Errorf("user %d share = %d, want %d", s.UserID, s.AmountCents, want[s.UserID])
		}
	}
}
