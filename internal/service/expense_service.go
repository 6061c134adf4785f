package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fairsplit/fairsplit/internal/calculator"
	"github.com/fairsplit/fairsplit/internal/guard"
	"github.com/fairsplit/fairsplit/internal/metrics"
	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// Publisher broadcasts accepted ledger appends to interested consumers.
type Publisher interface {
	PublishExpenseCreated(ctx context.Context, expense *models.Expense) error
}

// ExpenseService handles guarded expense submission and ledger reads.
type ExpenseService struct {
	store    storage.Store
	guard    *guard.Guard
	balances *BalanceService
	events   Publisher // optional, may be nil
}

// NewExpenseService creates an ExpenseService. events may be nil to
// disable publishing.
func NewExpenseService(store storage.Store, g *guard.Guard, balances *BalanceService, events Publisher) *ExpenseService {
	return &ExpenseService{store: store, guard: g, balances: balances, events: events}
}

// ParticipantInput is one requested participant, with a percentage for
// percentage-kind splits.
type ParticipantInput struct {
	UserID     int64
	Percentage *float64
}

// CreateExpenseInput is a create-expense request after transport decoding.
type CreateExpenseInput struct {
	Description  string
	AmountCents  int64
	PaidBy       int64
	SplitKind    models.SplitKind
	Participants []ParticipantInput
}

// CreateExpense validates the submission, computes the frozen splits and
// appends expense+splits atomically under the group's write guard.
//
// The sequence is all-or-nothing: any validation failure happens before the
// append, leaving the ledger untouched. Submissions to different groups
// proceed in parallel; within one group, appends are strictly serialized.
func (s *ExpenseService) CreateExpense(ctx context.Context, groupID int64, in CreateExpenseInput) (*models.Expense, error) {
	expense, err := s.createExpense(ctx, groupID, in)
	if err != nil {
		metrics.ExpensesRejected.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}
	metrics.ExpensesCreated.Inc()
	return expense, nil
}

func (s *ExpenseService) createExpense(ctx context.Context, groupID int64, in CreateExpenseInput) (*models.Expense, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, models.Invalid("description is required")
	}
	if !in.SplitKind.Valid() {
		return nil, models.Invalid("split_kind must be %q or %q", models.SplitEqual, models.SplitPercentage)
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	spec, err := buildSpec(group, in)
	if err != nil {
		return nil, err
	}
	shares, err := calculator.Split(in.AmountCents, in.PaidBy, group.MemberIDs(), spec)
	if err != nil {
		return nil, err
	}

	release, err := s.guard.Acquire(ctx, groupID)
	if err != nil {
		return nil, err
	}
	defer release()

	splits := make([]models.Split, len(shares))
	for i, sh := range shares {
		splits[i] = models.Split{
			UserID:      sh.UserID,
			AmountCents: sh.AmountCents,
			Percentage:  sh.Percentage,
		}
	}
	expense := &models.Expense{
		GroupID:     groupID,
		Description: strings.TrimSpace(in.Description),
		AmountCents: in.AmountCents,
		PaidBy:      in.PaidBy,
		SplitKind:   in.SplitKind,
		Splits:      splits,
	}

	if err := s.store.AppendExpense(ctx, expense); err != nil {
		return nil, err
	}
	s.balances.Invalidate(groupID)

	if s.events != nil {
		// Best effort: the ledger row is the source of truth.
		if err := s.events.PublishExpenseCreated(ctx, expense); err != nil {
			slog.Warn("Failed to publish expense event", "expense_id", expense.ID, "error", err)
		}
	}

	slog.Info("Expense appended",
		"expense_id", expense.ID,
		"group_id", groupID,
		"amount_cents", expense.AmountCents,
		"split_kind", expense.SplitKind,
		"participants", len(expense.Splits),
	)
	return expense, nil
}

// ListGroupExpenses returns the group's expense log in append order.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, groupID int64) ([]models.Expense, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListGroupExpenses(ctx, groupID)
}

// buildSpec turns transport-level participants into a typed split spec.
// For equal splits an empty participant list means the whole group shares.
func buildSpec(group *models.Group, in CreateExpenseInput) (calculator.Spec, error) {
	switch in.SplitKind {
	case models.SplitEqual:
		ids := make([]int64, 0, len(in.Participants))
		for _, p := range in.Participants {
			if p.Percentage != nil {
				return nil, models.Invalid("percentage not allowed for equal splits")
			}
			ids = append(ids, p.UserID)
		}
		if len(ids) == 0 {
			ids = group.MemberIDs()
		}
		return calculator.Equal{Participants: ids}, nil

	case models.SplitPercentage:
		if len(in.Participants) == 0 {
			return nil, models.Invalid("percentage splits require participants")
		}
		shares := make(map[int64]float64, len(in.Participants))
		for _, p := range in.Participants {
			if p.Percentage == nil {
				return nil, models.Invalid("participant %d is missing a percentage", p.UserID)
			}
			if _, dup := shares[p.UserID]; dup {
				return nil, models.Invalid("duplicate participant %d", p.UserID)
			}
			shares[p.UserID] = *p.Percentage
		}
		return calculator.Percentage{Shares: shares}, nil

	default:
		return nil, models.Invalid("unknown split kind %q", in.SplitKind)
	}
}

// rejectReason maps an error to a metric label.
func rejectReason(err error) string {
	switch {
	case models.IsValidation(err):
		return "validation"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrLockTimeout):
		return "lock_timeout"
	case errors.Is(err, models.ErrOverflow):
		return "overflow"
	default:
		return "storage"
	}
}
