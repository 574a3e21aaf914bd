package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pkghub/internal/models"
)

// Avatar bytes are deliberately absent from this list.
const userColumns = "id, firstname, lastname, email, password_hash, avatar_media_type, is_active, created_at, updated_at"

// UserUpdate holds optional user field changes.
type UserUpdate struct {
	Firstname    *string
	Lastname     *string
	Email        *string
	PasswordHash *string
	UpdatedAt    time.Time
}

// CreateUser inserts one user, assigning an id when empty.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	if strings.TrimSpace(user.ID) == "" {
		id, err := GenerateID(PrefixUser, func(id string) (bool, error) {
			return exists(ctx, s.db, "SELECT 1 FROM users WHERE id = ? LIMIT 1", id)
		})
		if err != nil {
			return err
		}
		user.ID = id
	}
	stampTimes(&user.CreatedAt, &user.UpdatedAt)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, firstname, lastname, email, password_hash, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Firstname, user.Lastname, user.Email, user.PasswordHash, boolToInt(user.IsActive),
		dbFormatTime(user.CreatedAt), dbFormatTime(user.UpdatedAt))
	return err
}

// GetUser returns one user by id, or nil when absent.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail returns one user by normalized email, or nil when absent.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

// UserExists reports whether a user row exists regardless of active state.
func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, s.db, "SELECT 1 FROM users WHERE id = ? LIMIT 1", id)
}

// ListUsers lists users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context, includeInactive bool) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		if user != nil {
			users = append(users, *user)
		}
	}
	return users, rows.Err()
}

// UpdateUser applies non-nil fields. It reports whether a row matched.
func (s *Store) UpdateUser(ctx context.Context, id string, update UserUpdate) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("id is required")
	}

	set := []string{}
	args := []any{}
	if update.Firstname != nil {
		set = append(set, "firstname = ?")
		args = append(args, *update.Firstname)
	}
	if update.Lastname != nil {
		set = append(set, "lastname = ?")
		args = append(args, *update.Lastname)
	}
	if update.Email != nil {
		set = append(set, "email = ?")
		args = append(args, *update.Email)
	}
	if update.PasswordHash != nil {
		set = append(set, "password_hash = ?")
		args = append(args, *update.PasswordHash)
	}
	return s.applyUpdate(ctx, "users", id, set, args, update.UpdatedAt)
}

// DeactivateUser soft-deletes a user together with its profiles and role
// assignments. It reports whether the user existed.
func (s *Store) DeactivateUser(ctx context.Context, id string, at time.Time) (_ bool, err error) {
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
	result, err := tx.ExecContext(ctx, "UPDATE users SET is_active = 0, updated_at = ? WHERE id = ?", now, id)
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

	if _, err = tx.ExecContext(ctx, "UPDATE profiles SET is_active = 0, updated_at = ? WHERE user_id = ? AND is_active = 1", now, id); err != nil {
		return false, err
	}
	if _, err = tx.ExecContext(ctx, "UPDATE user_roles SET is_active = 0, updated_at = ? WHERE user_id = ? AND is_active = 1", now, id); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// SetUserAvatar stores avatar bytes and media type for one user.
func (s *Store) SetUserAvatar(ctx context.Context, avatar models.Avatar, at time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET avatar = ?, avatar_media_type = ?, updated_at = ? WHERE id = ?
	`, avatar.Data, nullIfEmpty(avatar.MediaType), dbFormatTime(at), avatar.UserID)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// GetUserAvatar loads the avatar bytes of one user. It returns nil when the
// user is absent or has no avatar.
func (s *Store) GetUserAvatar(ctx context.Context, userID string) (*models.Avatar, error) {
	var data []byte
	var mediaType sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT avatar, avatar_media_type FROM users WHERE id = ?", userID).Scan(&data, &mediaType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return &models.Avatar{UserID: userID, MediaType: mediaType.String, Data: data}, nil
}

func scanUser(row scanner) (*models.User, error) {
	user := models.User{}
	var mediaType sql.NullString
	var active int
	var createdAt, updatedAt string

	err := row.Scan(&user.ID, &user.Firstname, &user.Lastname, &user.Email, &user.PasswordHash,
		&mediaType, &active, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	user.AvatarMediaType = mediaType.String
	user.IsActive = active == 1
	if err := parseTimes(createdAt, updatedAt, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) applyUpdate(ctx context.Context, table, id string, set []string, args []any, updatedAt time.Time) (bool, error) {
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	set = append(set, "updated_at = ?")
	args = append(args, dbFormatTime(updatedAt), id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(set, ", "))
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return affected(result)
}

func stampTimes(createdAt, updatedAt *time.Time) {
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
}

func parseTimes(createdRaw, updatedRaw string, createdAt, updatedAt *time.Time) error {
	created, err := dbParseTime(createdRaw)
	if err != nil {
		return err
	}
	updated, err := dbParseTime(updatedRaw)
	if err != nil {
		return err
	}
	*createdAt = created
	*updatedAt = updated
	return nil
}
