package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"pkghub/internal/models"
)

// Projections. Only artifactColumns selects the payload.
const (
	artifactSummaryColumns = "id, name, package_id, created_by, size_bytes, sha256, created_at, updated_at"
	artifactColumns        = artifactSummaryColumns + ", payload"
)

var (
	// ErrPackageNotFound is returned when an artifact targets an unknown package.
	ErrPackageNotFound = errors.New("package not found")
	// ErrUserNotFound is returned when a row references an unknown user.
	ErrUserNotFound = errors.New("user not found")
)

// CreateArtifact inserts one artifact with its full payload. The package and
// owner are checked in the same transaction; nothing is written when either
// is missing.
func (s *Store) CreateArtifact(ctx context.Context, artifact *models.Artifact) (err error) {
	if artifact == nil {
		return fmt.Errorf("artifact is required")
	}
	if len(artifact.Payload) == 0 {
		return fmt.Errorf("artifact payload is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	found, err := exists(ctx, tx, "SELECT 1 FROM packages WHERE id = ? LIMIT 1", artifact.PackageID)
	if err != nil {
		return err
	}
	if !found {
		err = ErrPackageNotFound
		return err
	}
	found, err = exists(ctx, tx, "SELECT 1 FROM users WHERE id = ? LIMIT 1", artifact.CreatedBy)
	if err != nil {
		return err
	}
	if !found {
		err = ErrUserNotFound
		return err
	}

	if strings.TrimSpace(artifact.ID) == "" {
		artifact.ID, err = GenerateID(PrefixArtifact, func(id string) (bool, error) {
			return exists(ctx, tx, "SELECT 1 FROM artifacts WHERE id = ? LIMIT 1", id)
		})
		if err != nil {
			return err
		}
	}
	stampTimes(&artifact.CreatedAt, &artifact.UpdatedAt)
	sum := sha256.Sum256(artifact.Payload)
	artifact.SHA256 = hex.EncodeToString(sum[:])
	artifact.SizeBytes = int64(len(artifact.Payload))

	_, err = tx.ExecContext(ctx, `
		INSERT INTO artifacts (id, name, package_id, created_by, payload, size_bytes, sha256, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, artifact.ID, artifact.Name, artifact.PackageID, artifact.CreatedBy, artifact.Payload, artifact.SizeBytes,
		artifact.SHA256, dbFormatTime(artifact.CreatedAt), dbFormatTime(artifact.UpdatedAt))
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetArtifactSummary returns one artifact without its payload, or nil.
func (s *Store) GetArtifactSummary(ctx context.Context, id string) (*models.ArtifactSummary, error) {
	return scanArtifactSummary(s.db.QueryRowContext(ctx, `SELECT `+artifactSummaryColumns+` FROM artifacts WHERE id = ?`, id))
}

// GetArtifact returns one artifact including its payload, or nil.
func (s *Store) GetArtifact(ctx context.Context, id string) (*models.Artifact, error) {
	return scanArtifact(s.db.QueryRowContext(ctx, `SELECT `+artifactColumns+` FROM artifacts WHERE id = ?`, id))
}

// ListArtifactSummaries lists a package's artifacts in insertion order
// without payloads.
func (s *Store) ListArtifactSummaries(ctx context.Context, packageID string) ([]models.ArtifactSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+artifactSummaryColumns+` FROM artifacts
		WHERE package_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, packageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []models.ArtifactSummary{}
	for rows.Next() {
		summary, err := scanArtifactSummary(rows)
		if err != nil {
			return nil, err
		}
		if summary != nil {
			summaries = append(summaries, *summary)
		}
	}
	return summaries, rows.Err()
}

// ListArtifacts lists a package's artifacts in insertion order with payloads.
func (s *Store) ListArtifacts(ctx context.Context, packageID string) ([]models.Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+artifactColumns+` FROM artifacts
		WHERE package_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, packageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	artifacts := []models.Artifact{}
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		if artifact != nil {
			artifacts = append(artifacts, *artifact)
		}
	}
	return artifacts, rows.Err()
}

// CountArtifacts returns the number of stored artifacts.
func (s *Store) CountArtifacts(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM artifacts").Scan(&count)
	return count, err
}

func scanArtifactSummary(row scanner) (*models.ArtifactSummary, error) {
	summary := models.ArtifactSummary{}
	var createdAt, updatedAt string
	err := row.Scan(&summary.ID, &summary.Name, &summary.PackageID, &summary.CreatedBy,
		&summary.SizeBytes, &summary.SHA256, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := parseTimes(createdAt, updatedAt, &summary.CreatedAt, &summary.UpdatedAt); err != nil {
		return nil, err
	}
	return &summary, nil
}

func scanArtifact(row scanner) (*models.Artifact, error) {
	artifact := models.Artifact{}
	var createdAt, updatedAt string
	err := row.Scan(&artifact.ID, &artifact.Name, &artifact.PackageID, &artifact.CreatedBy,
		&artifact.SizeBytes, &artifact.SHA256, &createdAt, &updatedAt, &artifact.Payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := parseTimes(createdAt, updatedAt, &artifact.CreatedAt, &artifact.UpdatedAt); err != nil {
		return nil, err
	}
	return &artifact, nil
}
