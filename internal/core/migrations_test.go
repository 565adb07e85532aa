package core

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"), Discard())
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var testMigrations = []Migration{
	{
		Version: 2,
		Name:    "add_notes",
		UpSQL:   `CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL);`,
		DownSQL: `DROP TABLE notes;`,
	},
	{
		Version:     1,
		Name:        "add_items",
		Description: "items table",
		UpSQL:       `CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT NOT NULL);`,
		DownSQL:     `DROP TABLE items;`,
	},
}

func tableExists(t *testing.T, db *Database, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	return count == 1
}

func TestMigrateAppliesInVersionOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	service := NewMigrationService(db, Discard(), "test")

	if err := service.Migrate(ctx, testMigrations); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	// running again is a no-op
	if err := service.Migrate(ctx, testMigrations); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}

	applied, err := service.GetAppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("GetAppliedMigrations failed: %v", err)
	}
	if len(applied) != 2 || applied[0].Version != 1 || applied[1].Version != 2 {
		t.Fatalf("unexpected applied migrations: %+v", applied)
	}
	if applied[0].Description != "items table" {
		t.Errorf("expected description to round-trip, got %q", applied[0].Description)
	}
	if !tableExists(t, db, "items") || !tableExists(t, db, "notes") {
		t.Errorf("expected both tables to exist")
	}
}

func TestMigrationScopesAreIndependent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := NewMigrationService(db, Discard(), "a").Migrate(ctx, testMigrations[1:]); err != nil {
		t.Fatalf("Migrate a failed: %v", err)
	}

	other := []Migration{{Version: 1, Name: "other", UpSQL: `CREATE TABLE other (id INTEGER PRIMARY KEY);`, DownSQL: `DROP TABLE other;`}}
	serviceB := NewMigrationService(db, Discard(), "b")
	if err := serviceB.Migrate(ctx, other); err != nil {
		t.Fatalf("Migrate b failed: %v", err)
	}

	status, err := serviceB.GetMigrationStatus(ctx)
	if err != nil {
		t.Fatalf("GetMigrationStatus failed: %v", err)
	}
	if status.Scope != "b" || status.AppliedCount != 1 || status.LastApplied == nil || status.LastApplied.Name != "other" {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestRollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	service := NewMigrationService(db, Discard(), "test")

	if err := service.Migrate(ctx, testMigrations); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := service.Rollback(ctx, testMigrations); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	if tableExists(t, db, "notes") {
		t.Errorf("expected notes to be dropped")
	}
	if !tableExists(t, db, "items") {
		t.Errorf("expected items to remain")
	}

	status, _ := service.GetMigrationStatus(ctx)
	if status.AppliedCount != 1 {
		t.Errorf("expected one applied migration, got %d", status.AppliedCount)
	}

	if err := service.Rollback(ctx, testMigrations); err != nil {
		t.Fatalf("second Rollback failed: %v", err)
	}
	if err := service.Rollback(ctx, testMigrations); err == nil {
		t.Errorf("expected rollback with nothing applied to fail")
	}
}

func TestFailedMigrationIsNotRecorded(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	service := NewMigrationService(db, Discard(), "test")

	broken := []Migration{{Version: 1, Name: "broken", UpSQL: `CREATE TABLE broken (`}}
	if err := service.Migrate(ctx, broken); err == nil {
		t.Fatal("expected broken migration to fail")
	}

	applied, err := service.GetAppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("GetAppliedMigrations failed: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("expected nothing recorded, got %+v", applied)
	}
}
