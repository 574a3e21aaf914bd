package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pkghub/internal/models"
)

const packageColumns = "id, name, created_by, created_at, updated_at"

// CreatePackage inserts one package, assigning an id when empty.
func (s *Store) CreatePackage(ctx context.Context, pkg *models.Package) error {
	if pkg == nil {
		return fmt.Errorf("package is required")
	}
	if strings.TrimSpace(pkg.ID) == "" {
		id, err := GenerateID(PrefixPackage, func(id string) (bool, error) {
			return s.PackageExists(ctx, id)
		})
		if err != nil {
			return err
		}
		pkg.ID = id
	}
	stampTimes(&pkg.CreatedAt, &pkg.UpdatedAt)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO packages (id, name, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, pkg.ID, pkg.Name, pkg.CreatedBy, dbFormatTime(pkg.CreatedAt), dbFormatTime(pkg.UpdatedAt))
	return err
}

// GetPackage returns one package by id, or nil when absent.
func (s *Store) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	return scanPackage(s.db.QueryRowContext(ctx, `SELECT `+packageColumns+` FROM packages WHERE id = ?`, id))
}

// PackageExists reports whether a package row exists.
func (s *Store) PackageExists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, s.db, "SELECT 1 FROM packages WHERE id = ? LIMIT 1", id)
}

// ListPackages lists packages ordered by creation time, optionally for one owner.
func (s *Store) ListPackages(ctx context.Context, createdBy string) ([]models.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages`
	args := []any{}
	if createdBy != "" {
		query += ` WHERE created_by = ?`
		args = append(args, createdBy)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	packages := []models.Package{}
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		if pkg != nil {
			packages = append(packages, *pkg)
		}
	}
	return packages, rows.Err()
}

func scanPackage(row scanner) (*models.Package, error) {
	pkg := models.Package{}
	var createdAt, updatedAt string
	if err := row.Scan(&pkg.ID, &pkg.Name, &pkg.CreatedBy, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := parseTimes(createdAt, updatedAt, &pkg.CreatedAt, &pkg.UpdatedAt); err != nil {
		return nil, err
	}
	return &pkg, nil
}
