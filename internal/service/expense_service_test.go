package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fairsplit/fairsplit/internal/guard"
	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/storage"
	"github.com/fairsplit/fairsplit/internal/storage/sqlite"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "fairsplit.db"))
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestGroup(t *testing.T, store storage.Store) *models.Group {
	t.Helper()
	group := &models.Group{
		Name: "Trip",
		Members: []models.User{
			{Name: "Alice", Email: "alice@example.com"},
			{Name: "Bob", Email: "bob@example.com"},
			{Name: "Carol", Email: "carol@example.com"},
		},
	}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("Failed to create group: %v", err)
	}
	return group
}

func newTestServices(t *testing.T) (storage.Store, *ExpenseService, *BalanceService) {
	t.Helper()
	store := newTestStore(t)
	balances := NewBalanceService(store, 16, time.Minute)
	expenses := NewExpenseService(store, guard.New(5*time.Second), balances, nil)
	return store, expenses, balances
}

func TestCreateExpenseEqualSplit(t *testing.T) {
	store, expenses, balances := newTestServices(t)
	group := newTestGroup(t, store)
	ctx := context.Background()

	expense, err := expenses.CreateExpense(ctx, group.ID, CreateExpenseInput{
		Description: "Dinner",
		AmountCents: 1000,
		PaidBy:      group.Members[0].ID,
		SplitKind:   models.SplitEqual,
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if expense.ID == 0 {
		t.Error("Expected a persisted expense id")
	}
	if len(expense.Splits) != 3 {
		t.Fatalf("Expected 3 splits, got %d", len(expense.Splits))
	}

	views, err := balances.GroupBalances(ctx, group.ID)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	var sum int64
	byUser := make(map[int64]int64)
	for _, b := range views {
		sum += b.AmountCents
		byUser[b.UserID] = b.AmountCents
	}
	if sum != 0 {
		t.Errorf("Balances sum to %d, expected 0", sum)
	}
	if got := byUser[group.Members[0].ID]; got != 1000-334 {
		t.Errorf("Payer balance = %d, expected %d", got, 1000-334)
	}
}

func TestCreateExpensePercentageSplit(t *testing.T) {
	store, expenses, _ := newTestServices(t)
	group := newTestGroup(t, store)
	ctx := context.Background()

	pct := func(v float64) *float64 { return &v }
	expense, err := expenses.CreateExpense(ctx, group.ID, CreateExpenseInput{
		Description: "Hotel",
		AmountCents: 999,
		PaidBy:      group.Members[1].ID,
		SplitKind:   models.SplitPercentage,
		Participants: []ParticipantInput{
			{UserID: group.Members[0].ID, Percentage: pct(50)},
			{UserID: group.Members[1].ID, Percentage: pct(30)},
			{UserID: group.Members[2].ID, Percentage: pct(20)},
		},
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	var total int64
	for _, sp := range expense.Splits {
		total += sp.AmountCents
		if sp.Percentage == nil {
			t.Errorf("Split for user %d is missing its percentage", sp.UserID)
		}
	}
	if total != 999 {
		t.Errorf("Splits sum to %d, expected 999", total)
	}
}

func TestCreateExpenseRejections(t *testing.T) {
	store, expenses, balances := newTestServices(t)
	group := newTestGroup(t, store)
	ctx := context.Background()
	pct := func(v float64) *float64 { return &v }

	tests := []struct {
		name         string
		groupID      int64
		input        CreateExpenseInput
		validateFunc func(t *testing.T, err error)
	}{
		{
			name:    "missing description",
			groupID: group.ID,
			input: CreateExpenseInput{
				AmountCents: 100,
				PaidBy:      group.Members[0].ID,
				SplitKind:   models.SplitEqual,
			},
			validateFunc: func(t *testing.T, err error) {
				if !models.IsValidation(err) {
					t.Errorf("Expected validation error, got %v", err)
				}
			},
		},
		{
			name:    "unknown group",
			groupID: group.ID + 999,
			input: CreateExpenseInput{
				Description: "Dinner",
				AmountCents: 100,
				PaidBy:      group.Members[0].ID,
				SplitKind:   models.SplitEqual,
			},
			validateFunc: func(t *testing.T, err error) {
				if !errors.Is(err, models.ErrNotFound) {
					t.Errorf("Expected not-found, got %v", err)
				}
			},
		},
		{
			name:    "non-member payer",
			groupID: group.ID,
			input: CreateExpenseInput{
				Description: "Dinner",
				AmountCents: 100,
				PaidBy:      group.Members[2].ID + 999,
				SplitKind:   models.SplitEqual,
			},
			validateFunc: func(t *testing.T, err error) {
				if !models.IsValidation(err) {
					t.Errorf("Expected validation error, got %v", err)
				}
			},
		},
		{
			name:    "percentage without participants",
			groupID: group.ID,
			input: CreateExpenseInput{
				Description: "Hotel",
				AmountCents: 100,
				PaidBy:      group.Members[0].ID,
				SplitKind:   models.SplitPercentage,
			},
			validateFunc: func(t *testing.T, err error) {
				if !models.IsValidation(err) {
					t.Errorf("Expected validation error, got %v", err)
				}
			},
		},
		{
			name:    "participant missing percentage",
			groupID: group.ID,
			input: CreateExpenseInput{
				Description: "Hotel",
				AmountCents: 100,
				PaidBy:      group.Members[0].ID,
				SplitKind:   models.SplitPercentage,
				Participants: []ParticipantInput{
					{UserID: group.Members[0].ID, Percentage: pct(60)},
					{UserID: group.Members[1].ID},
				},
			},
			validateFunc: func(t *testing.T, err error) {
				if !models.IsValidation(err) {
					t.Errorf("Expected validation error, got %v", err)
				}
			},
		},
		{
			name:    "percentage on equal split",
			groupID: group.ID,
			input: CreateExpenseInput{
				Description: "Dinner",
				AmountCents: 100,
				PaidBy:      group.Members[0].ID,
				SplitKind:   models.SplitEqual,
				Participants: []ParticipantInput{
					{UserID: group.Members[0].ID, Percentage: pct(100)},
				},
			},
			validateFunc: func(t *testing.T, err error) {
				if !models.IsValidation(err) {
					t.Errorf("Expected validation error, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := expenses.CreateExpense(ctx, tt.groupID, tt.input)
			if err == nil {
				t.Fatal("Expected an error")
			}
			tt.validateFunc(t, err)
		})
	}

	// Nothing above may have touched the ledger.
	views, err := balances.GroupBalances(ctx, group.ID)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	for _, b := range views {
		if b.AmountCents != 0 {
			t.Errorf("Balance for user %d = %d after rejected submissions, expected 0", b.UserID, b.AmountCents)
		}
	}
}

func TestCreateExpenseConcurrent(t *testing.T) {
	store, expenses, balances := newTestServices(t)
	group := newTestGroup(t, store)
	ctx := context.Background()

	const submissions = 20
	var eg errgroup.Group
	for i := 0; i < submissions; i++ {
		payer := group.Members[i%len(group.Members)].ID
		eg.Go(func() error {
			_, err := expenses.CreateExpense(ctx, group.ID, CreateExpenseInput{
				Description: "Round",
				AmountCents: 1000,
				PaidBy:      payer,
				SplitKind:   models.SplitEqual,
			})
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		t.Fatalf("Concurrent submission failed: %v", err)
	}

	log, err := expenses.ListGroupExpenses(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListGroupExpenses failed: %v", err)
	}
	if len(log) != submissions {
		t.Errorf("Ledger holds %d expenses, expected %d", len(log), submissions)
	}

	views, err := balances.GroupBalances(ctx, group.ID)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	var sum int64
	for _, b := range views {
		sum += b.AmountCents
	}
	if sum != 0 {
		t.Errorf("Balances sum to %d after %d concurrent appends, expected 0", sum, submissions)
	}
}

func TestListGroupExpensesOrder(t *testing.T) {
	store, expenses, _ := newTestServices(t)
	group := newTestGroup(t, store)
	ctx := context.Background()

	descriptions := []string{"Breakfast", "Lunch", "Dinner"}
	for _, d := range descriptions {
		if _, err := expenses.CreateExpense(ctx, group.ID, CreateExpenseInput{
			Description: d,
			AmountCents: 300,
			PaidBy:      group.Members[0].ID,
			SplitKind:   models.SplitEqual,
		}); err != nil {
			t.Fatalf("CreateExpense(%q) failed: %v", d, err)
		}
	}

	log, err := expenses.ListGroupExpenses(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListGroupExpenses failed: %v", err)
	}
	if len(log) != len(descriptions) {
		t.Fatalf("Expected %d expenses, got %d", len(descriptions), len(log))
	}
	for i, d := range descriptions {
		if log[i].Description != d {
			t.Errorf("Expense %d = %q, expected %q", i, log[i].Description, d)
		}
	}
}

