// Package service implements the application operations on top of the
// ledger store: group directory management, guarded expense submission and
// balance derivation.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// GroupService manages the group/user directory.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// MemberInput identifies a group member by name and email.
type MemberInput struct {
	Name  string
	Email string
}

// CreateGroup creates a group with the given members. Members are matched
// to existing users by email; unknown emails create users.
func (s *GroupService) CreateGroup(ctx context.Context, name, description string, members []MemberInput) (*models.Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, models.Invalid("group name is required")
	}
	if len(members) == 0 {
		return nil, models.Invalid("at least one member is required")
	}

	group := &models.Group{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Members:     make([]models.User, len(members)),
	}
	for i, m := range members {
		email := strings.TrimSpace(strings.ToLower(m.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, models.Invalid("member %d has an invalid email %q", i+1, m.Email)
		}
		if strings.TrimSpace(m.Name) == "" {
			return nil, models.Invalid("member %d has an empty name", i+1)
		}
		group.Members[i] = models.User{Name: strings.TrimSpace(m.Name), Email: email}
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "members", len(group.Members))
	return group, nil
}

// GetGroup retrieves a group with its membership.
func (s *GroupService) GetGroup(ctx context.Context, groupID int64) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context) ([]models.Group, error) {
	return s.store.ListGroups(ctx)
}
