package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pkghub/internal/models"
)

const postColumns = "id, title, content, user_id, created_at, updated_at"
const profileColumns = "id, bio, address, is_active, user_id, created_at, updated_at"

// PostUpdate holds optional post field changes.
type PostUpdate struct {
	Title     *string
	Content   *string
	UpdatedAt time.Time
}

// ProfileUpdate holds optional profile field changes.
type ProfileUpdate struct {
	Bio       *string
	Address   *string
	IsActive  *bool
	UpdatedAt time.Time
}

// CreatePost inserts one post, assigning an id when empty.
func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	if post == nil {
		return fmt.Errorf("post is required")
	}
	if strings.TrimSpace(post.ID) == "" {
		id, err := GenerateID(PrefixPost, func(id string) (bool, error) {
			return exists(ctx, s.db, "SELECT 1 FROM posts WHERE id = ? LIMIT 1", id)
		})
		if err != nil {
			return err
		}
		post.ID = id
	}
	stampTimes(&post.CreatedAt, &post.UpdatedAt)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, title, content, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, post.ID, post.Title, post.Content, post.UserID, dbFormatTime(post.CreatedAt), dbFormatTime(post.UpdatedAt))
	return err
}

// GetPost returns one post by id, or nil when absent.
func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
}

// ListPosts lists posts newest first, optionally for one user.
func (s *Store) ListPosts(ctx context.Context, userID string) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		if post != nil {
			posts = append(posts, *post)
		}
	}
	return posts, rows.Err()
}

// UpdatePost applies non-nil fields. It reports whether a row matched.
func (s *Store) UpdatePost(ctx context.Context, id string, update PostUpdate) (bool, error) {
	set := []string{}
	args := []any{}
	if update.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Content != nil {
		set = append(set, "content = ?")
		args = append(args, *update.Content)
	}
	return s.applyUpdate(ctx, "posts", id, set, args, update.UpdatedAt)
}

// DeletePost removes one post row.
func (s *Store) DeletePost(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// CreateProfile inserts one profile, assigning an id when empty.
func (s *Store) CreateProfile(ctx context.Context, profile *models.Profile) error {
	if profile == nil {
		return fmt.Errorf("profile is required")
	}
	if strings.TrimSpace(profile.ID) == "" {
		id, err := GenerateID(PrefixProfile, func(id string) (bool, error) {
			return exists(ctx, s.db, "SELECT 1 FROM profiles WHERE id = ? LIMIT 1", id)
		})
		if err != nil {
			return err
		}
		profile.ID = id
	}
	stampTimes(&profile.CreatedAt, &profile.UpdatedAt)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, bio, address, is_active, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, profile.ID, nullIfEmpty(profile.Bio), nullIfEmpty(profile.Address), boolToInt(profile.IsActive), profile.UserID,
		dbFormatTime(profile.CreatedAt), dbFormatTime(profile.UpdatedAt))
	return err
}

// GetProfile returns one profile by id, or nil when absent.
func (s *Store) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	return scanProfile(s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
}

// GetProfileByUser returns the newest active profile of a user, or nil.
func (s *Store) GetProfileByUser(ctx context.Context, userID string) (*models.Profile, error) {
	return scanProfile(s.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM profiles
		WHERE user_id = ? AND is_active = 1
		ORDER BY created_at DESC LIMIT 1
	`, userID))
}

// UpdateProfile applies non-nil fields. It reports whether a row matched.
func (s *Store) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (bool, error) {
	set := []string{}
	args := []any{}
	if update.Bio != nil {
		set = append(set, "bio = ?")
		args = append(args, nullIfEmpty(*update.Bio))
	}
	if update.Address != nil {
		set = append(set, "address = ?")
		args = append(args, nullIfEmpty(*update.Address))
	}
	if update.IsActive != nil {
		set = append(set, "is_active = ?")
		args = append(args, boolToInt(*update.IsActive))
	}
	return s.applyUpdate(ctx, "profiles", id, set, args, update.UpdatedAt)
}

func scanPost(row scanner) (*models.Post, error) {
	post := models.Post{}
	var createdAt, updatedAt string
	if err := row.Scan(&post.ID, &post.Title, &post.Content, &post.UserID, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := parseTimes(createdAt, updatedAt, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return nil, err
	}
	return &post, nil
}

func scanProfile(row scanner) (*models.Profile, error) {
	profile := models.Profile{}
	var bio, address sql.NullString
	var active int
	var createdAt, updatedAt string
	if err := row.Scan(&profile.ID, &bio, &address, &active, &profile.UserID, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	profile.Bio = bio.String
	profile.Address = address.String
	profile.IsActive = active == 1
	if err := parseTimes(createdAt, updatedAt, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		return nil, err
	}
	return &profile, nil
}
