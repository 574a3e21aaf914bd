package store

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func testRawDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenRaw(DefaultConfig(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunMigrationsFreshDB(t *testing.T) {
	db := testRawDB(t)

	if err := runMigrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	version, err := currentVersion(db)
	if err != nil {
		t.Fatalf("current version: %v", err)
	}
	if version != 2 {
		t.Fatalf("expected version 2, got %d", version)
	}

	for _, table := range []string{"users", "roles", "user_roles", "posts", "profiles", "packages", "artifacts"} {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count); err != nil {
			t.Fatalf("check %s: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("%s table not created", table)
		}
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db := testRawDB(t)

	if err := runMigrations(db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := runMigrations(db); err != nil {
		t.Fatalf("second run: %v", err)
	}

	version, err := currentVersion(db)
	if err != nil {
		t.Fatalf("current version: %v", err)
	}
	if version != 2 {
		t.Fatalf("expected version 2, got %d", version)
	}
}

func TestMigrationPlan(t *testing.T) {
	db := testRawDB(t)

	plan, err := MigrationPlan(db)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.CurrentVersion != 0 || plan.AvailableVersion != 2 {
		t.Fatalf("unexpected plan before migrate: %#v", plan)
	}
	if len(plan.Pending) != 2 {
		t.Fatalf("expected 2 pending migrations, got %d", len(plan.Pending))
	}

	if err := runMigrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	plan, err = MigrationPlan(db)
	if err != nil {
		t.Fatalf("plan after migrate: %v", err)
	}
	if plan.CurrentVersion != 2 || len(plan.Pending) != 0 {
		t.Fatalf("unexpected plan after migrate: %#v", plan)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	st := testStore(t)

	_, err := st.db.Exec(`INSERT INTO packages (id, name, created_by, created_at, updated_at) VALUES ('pk-aaaaaa', 'p', 'us-missing', 'x', 'x')`)
	if err == nil {
		t.Fatal("expected foreign key violation for unknown created_by")
	}
}
