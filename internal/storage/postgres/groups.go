package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fairsplit/fairsplit/internal/models"
)

// CreateGroup persists a group and its members in one transaction,
// resolving members by email and creating unknown users on the fly.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO groups (name, description, created_at) VALUES ($1, $2, $3) RETURNING id`,
		group.Name, group.Description, group.CreatedAt,
	).Scan(&group.ID)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	seen := make(map[string]bool, len(group.Members))
	members := group.Members[:0]
	for _, m := range group.Members {
		if seen[m.Email] {
			continue
		}
		seen[m.Email] = true

		err := tx.QueryRow(ctx,
			`SELECT id, name FROM users WHERE email = $1`, m.Email,
		).Scan(&m.ID, &m.Name)
		if errors.Is(err, pgx.ErrNoRows) {
			err = tx.QueryRow(ctx,
				`INSERT INTO users (email, name) VALUES ($1, $2) RETURNING id`,
				m.Email, m.Name,
			).Scan(&m.ID)
			if err != nil {
				return fmt.Errorf("insert user: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("lookup user by email: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)`,
			group.ID, m.ID,
		); err != nil {
			return fmt.Errorf("insert group member: %w", err)
		}
		members = append(members, m)
	}
	group.Members = members

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group with its full membership.
func (s *Store) GetGroup(ctx context.Context, groupID int64) (*models.Group, error) {
	group := &models.Group{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM groups WHERE id = $1`,
		groupID,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("group %d: %w", groupID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}

	if group.Members, err = s.groupMembers(ctx, groupID); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroups retrieves all groups with their memberships.
func (s *Store) ListGroups(ctx context.Context) ([]models.Group, error) {
	groups, err := s.scanGroups(ctx,
		`SELECT id, name, description, created_at FROM groups ORDER BY id`)
	if err != nil {
		return nil, err
	}

	for i := range groups {
		if groups[i].Members, err = s.groupMembers(ctx, groups[i].ID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// GetUser retrieves a user by id.
func (s *Store) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email FROM users WHERE id = $1`, userID,
	).Scan(&user.ID, &user.Name, &user.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUserGroups retrieves every group the user belongs to.
func (s *Store) ListUserGroups(ctx context.Context, userID int64) ([]models.Group, error) {
	groups, err := s.scanGroups(ctx,
		`SELECT g.id, g.name, g.description, g.created_at
		 FROM groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id = $1
		 ORDER BY g.id`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	for i := range groups {
		if groups[i].Members, err = s.groupMembers(ctx, groups[i].ID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (s *Store) scanGroups(ctx context.Context, query string, args ...any) ([]models.Group, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}

func (s *Store) groupMembers(ctx context.Context, groupID int64) ([]models.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT u.id, u.name, u.email
		 FROM users u
		 JOIN group_members gm ON gm.user_id = u.id
		 WHERE gm.group_id = $1
		 ORDER BY u.id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("get group members: %w", err)
	}
	defer rows.Close()

	var members []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}
