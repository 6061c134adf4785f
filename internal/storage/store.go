// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"

	"github.com/fairsplit/fairsplit/internal/models"
)

// Store is the persistence contract for the expense ledger and the
// group/user directory. The ledger side is append-only by construction:
// there is no way to mutate or delete an expense through this interface.
//
// Implementations must make AppendExpense atomic: the expense and all of
// its splits become visible together or not at all.
type Store interface {
	// CreateGroup persists a new group together with its members.
	// Members are matched to existing users by email; unknown emails
	// create new users. The group ID, member IDs and CreatedAt are
	// populated on return.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its full membership.
	// Returns models.ErrNotFound for an unknown id.
	GetGroup(ctx context.Context, groupID int64) (*models.Group, error)

	// ListGroups retrieves all groups with their memberships.
	ListGroups(ctx context.Context) ([]models.Group, error)

	// GetUser retrieves a user by id.
	// Returns models.ErrNotFound for an unknown id.
	GetUser(ctx context.Context, userID int64) (*models.User, error)

	// ListUserGroups retrieves every group the user is a member of.
	ListUserGroups(ctx context.Context, userID int64) ([]models.Group, error)

	// AppendExpense appends an expense and its frozen splits to the
	// ledger in a single transaction. The expense ID, split IDs and
	// CreatedAt are populated on return.
	AppendExpense(ctx context.Context, expense *models.Expense) error

	// ListGroupExpenses retrieves a group's expense log, including
	// splits, in append order.
	ListGroupExpenses(ctx context.Context, groupID int64) ([]models.Expense, error)

	// Close releases any resources held by the store.
	Close() error
}
