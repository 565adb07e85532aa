package core

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Name        string
	Description string
	UpSQL       string
	DownSQL     string
	AppliedAt   time.Time
}

// MigrationService applies the migrations of one scope (a store or feature).
// Versions only need to be unique within their scope.
type MigrationService struct {
	db     *Database
	logger *Logger
	scope  string
}

// NewMigrationService creates a migration service for scope
func NewMigrationService(db *Database, logger *Logger, scope string) *MigrationService {
	return &MigrationService{
		db:     db,
		logger: logger.With("migration_scope", scope),
		scope:  scope,
	}
}

// InitMigrations creates the bookkeeping table
func (m *MigrationService) InitMigrations(ctx context.Context) error {
	createMigrationsTable := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		scope TEXT NOT NULL,
		version INTEGER NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (scope, version)
	);`

	if _, err := m.db.ExecWithTimeout(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	return nil
}

// GetAppliedMigrations returns the applied migrations of this scope in version order
func (m *MigrationService) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	query := `SELECT version, name, description, applied_at FROM schema_migrations WHERE scope = ? ORDER BY version`

	rows, err := m.db.QueryContext(ctx, query, m.scope)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	var migrations []Migration
	for rows.Next() {
		var migration Migration
		var description sql.NullString
		if err := rows.Scan(&migration.Version, &migration.Name, &description, &migration.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		migration.Description = description.String
		migrations = append(migrations, migration)
	}

	return migrations, rows.Err()
}

// Migrate applies every pending migration in version order
func (m *MigrationService) Migrate(ctx context.Context, migrations []Migration) error {
	if err := m.InitMigrations(ctx); err != nil {
		return err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	pending := make([]Migration, 0, len(migrations))
	for _, migration := range migrations {
		if !applied[migration.Version] {
			pending = append(pending, migration)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })

	for _, migration := range pending {
		if err := m.ApplyMigration(ctx, migration); err != nil {
			return err
		}
	}

	m.logger.Info("Migrations up to date", "applied_now", len(pending), "total", len(migrations))
	return nil
}

// ApplyMigration applies a single migration and records it
func (m *MigrationService) ApplyMigration(ctx context.Context, migration Migration) error {
	err := m.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, migration.UpSQL); err != nil {
			return fmt.Errorf("failed to execute migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		insertQuery := `INSERT INTO schema_migrations (scope, version, name, description) VALUES (?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, insertQuery, m.scope, migration.Version, migration.Name, migration.Description); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info("Applied migration", "version", migration.Version, "name", migration.Name)
	return nil
}

// Rollback reverts the most recently applied migration of this scope
func (m *MigrationService) Rollback(ctx context.Context, migrations []Migration) error {
	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return fmt.Errorf("no migrations to rollback in scope %s", m.scope)
	}

	last := applied[len(applied)-1]
	var target *Migration
	for i := range migrations {
		if migrations[i].Version == last.Version {
			target = &migrations[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("applied migration %d is unknown to scope %s", last.Version, m.scope)
	}

	err = m.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, target.DownSQL); err != nil {
			return fmt.Errorf("failed to rollback migration %d (%s): %w", target.Version, target.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE scope = ? AND version = ?`, m.scope, target.Version); err != nil {
			return fmt.Errorf("failed to remove migration record %d: %w", target.Version, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info("Rolled back migration", "version", target.Version, "name", target.Name)
	return nil
}

func (m *MigrationService) appliedVersions(ctx context.Context) (map[int]bool, error) {
	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	versions := make(map[int]bool, len(applied))
	for _, migration := range applied {
		versions[migration.Version] = true
	}
	return versions, nil
}

// GetMigrationStatus returns the status of this scope's migrations
func (m *MigrationService) GetMigrationStatus(ctx context.Context) (*MigrationStatus, error) {
	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	status := &MigrationStatus{
		Scope:        m.scope,
		AppliedCount: len(applied),
		Applied:      applied,
	}

	if len(applied) > 0 {
		status.LastApplied = &applied[len(applied)-1]
	}

	return status, nil
}

// MigrationStatus represents the current migration status
type MigrationStatus struct {
	Scope        string      `json:"scope"`
	AppliedCount int         `json:"applied_count"`
	Applied      []Migration `json:"applied"`
	LastApplied  *Migration  `json:"last_applied,omitempty"`
}
