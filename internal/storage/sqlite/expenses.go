package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/fairsplit/fairsplit/internal/models"
)

// AppendExpense appends an expense and its frozen splits in one
// transaction. Readers observe the expense with all of its splits or not
// at all.
func (s *Store) AppendExpense(ctx context.Context, expense *models.Expense) error {
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (group_id, description, amount_cents, paid_by, split_kind, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		expense.GroupID, expense.Description, expense.AmountCents,
		expense.PaidBy, string(expense.SplitKind), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	if expense.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("expense id: %w", err)
	}

	for i := range expense.Splits {
		split := &expense.Splits[i]
		split.ExpenseID = expense.ID

		res, err := tx.ExecContext(ctx,
			`INSERT INTO splits (expense_id, user_id, amount_cents, percentage)
			 VALUES (?, ?, ?, ?)`,
			split.ExpenseID, split.UserID, split.AmountCents, split.Percentage,
		)
		if err != nil {
			return fmt.Errorf("insert split: %w", err)
		}
		if split.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("split id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListGroupExpenses retrieves a group's expense log with splits, in append
// order.
func (s *Store) ListGroupExpenses(ctx context.Context, groupID int64) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, description, amount_cents, paid_by, split_kind, created_at
		 FROM expenses WHERE group_id = ? ORDER BY id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var kind string
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &e.AmountCents,
			&e.PaidBy, &kind, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.SplitKind = models.SplitKind(kind)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	for i := range expenses {
		if expenses[i].Splits, err = s.expenseSplits(ctx, expenses[i].ID); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

func (s *Store) expenseSplits(ctx context.Context, expenseID int64) ([]models.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, expense_id, user_id, amount_cents, percentage
		 FROM splits WHERE expense_id = ? ORDER BY user_id`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("get splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var sp models.Split
		if err := rows.Scan(&sp.ID, &sp.ExpenseID, &sp.UserID, &sp.AmountCents, &sp.Percentage); err != nil {
			return nil, fmt.Errorf("scan split: %w", err)
		}
		splits = append(splits, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate splits: %w", err)
	}
	return splits, nil
}
