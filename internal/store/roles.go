package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pkghub/internal/models"
)

const roleColumns = "id, name, description, is_active, created_at, updated_at"

// RoleUpdate holds optional role field changes.
type RoleUpdate struct {
	Name        *string
	Description *string
	UpdatedAt   time.Time
}

// CreateRole inserts one role, assigning an id when empty.
func (s *Store) CreateRole(ctx context.Context, role *models.Role) error {
	if role == nil {
		return fmt.Errorf("role is required")
	}
	if strings.TrimSpace(role.ID) == "" {
		id, err := GenerateID(PrefixRole, func(id string) (bool, error) {
			return exists(ctx, s.db, "SELECT 1 FROM roles WHERE id = ? LIMIT 1", id)
		})
		if err != nil {
			return err
		}
		role.ID = id
	}
	stampTimes(&role.CreatedAt, &role.UpdatedAt)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO roles (id, name, description, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, role.ID, role.Name, role.Description, boolToInt(role.IsActive), dbFormatTime(role.CreatedAt), dbFormatTime(role.UpdatedAt))
	return err
}

// GetRole returns one role by id, or nil when absent.
func (s *Store) GetRole(ctx context.Context, id string) (*models.Role, error) {
	return scanRole(s.db.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = ?`, id))
}

// ListRoles lists roles ordered by name.
func (s *Store) ListRoles(ctx context.Context, includeInactive bool) ([]models.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles`
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name ASC, id ASC`
	return s.queryRoles(ctx, query)
}

// UpdateRole applies non-nil fields. It reports whether a row matched.
func (s *Store) UpdateRole(ctx context.Context, id string, update RoleUpdate) (bool, error) {
	set := []string{}
	args := []any{}
	if update.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *update.Description)
	}
	return s.applyUpdate(ctx, "roles", id, set, args, update.UpdatedAt)
}

// DeactivateRole soft-deletes a role and its user assignments.
func (s *Store) DeactivateRole(ctx context.Context, id string, at time.Time) (_ bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := dbFormatTime(at)
	result, err := tx.ExecContext(ctx, "UPDATE roles SET is_active = 0, updated_at = ? WHERE id = ?", now, id)
	if err != nil {
		return false, err
	}
	found, err := affected(result)
	if err != nil {
		return false, err
	}
	if !found {
		_ = tx.Rollback()
		return false, nil
	}
	if _, err = tx.ExecContext(ctx, "UPDATE user_roles SET is_active = 0, updated_at = ? WHERE role_id = ? AND is_active = 1", now, id); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// AssignRole links a user to a role, reactivating an earlier assignment.
func (s *Store) AssignRole(ctx context.Context, userID, roleID string, at time.Time) (_ *models.UserRole, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	id, err := GenerateID(PrefixUserRole, func(id string) (bool, error) {
		return exists(ctx, tx, "SELECT 1 FROM user_roles WHERE id = ? LIMIT 1", id)
	})
	if err != nil {
		return nil, err
	}

	now := dbFormatTime(at)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_roles (id, user_id, role_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(user_id, role_id) DO UPDATE SET is_active = 1, updated_at = excluded.updated_at
	`, id, userID, roleID, now, now)
	if err != nil {
		return nil, err
	}

	assignment := models.UserRole{}
	var active int
	var createdAt, updatedAt string
	err = tx.QueryRowContext(ctx, `
		SELECT id, user_id, role_id, is_active, created_at, updated_at
		FROM user_roles WHERE user_id = ? AND role_id = ?
	`, userID, roleID).Scan(&assignment.ID, &assignment.UserID, &assignment.RoleID, &active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	assignment.IsActive = active == 1
	if err = parseTimes(createdAt, updatedAt, &assignment.CreatedAt, &assignment.UpdatedAt); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListUserRoles lists active roles actively assigned to a user.
func (s *Store) ListUserRoles(ctx context.Context, userID string) ([]models.Role, error) {
	return s.queryRoles(ctx, `
		SELECT r.id, r.name, r.description, r.is_active, r.created_at, r.updated_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ? AND ur.is_active = 1 AND r.is_active = 1
		ORDER BY r.name ASC, r.id ASC
	`, userID)
}

func (s *Store) queryRoles(ctx context.Context, query string, args ...any) ([]models.Role, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := []models.Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		if role != nil {
			roles = append(roles, *role)
		}
	}
	return roles, rows.Err()
}

func scanRole(row scanner) (*models.Role, error) {
	role := models.Role{}
	var active int
	var createdAt, updatedAt string
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &active, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	role.IsActive = active == 1
	if err := parseTimes(createdAt, updatedAt, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return nil, err
	}
	return &role, nil
}
