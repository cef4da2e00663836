// -----------------------------------------------------------------------------
// Database Migration System - Laravel-Inspired
// -----------------------------------------------------------------------------
// Bu package, veritabanı şema değişikliklerini dialect'ten bağımsız olarak
// yönetir. DDL Generator tarafından üretilir; migration kayıtları ise
// querykit Fetcher'ı ile okunur ve yazılır.
//
// Kullanım:
//
//	type CreateUsersTable struct{}
//
//	func (CreateUsersTable) Name() string { return "2024_01_01_create_users_table" }
//
//	func (CreateUsersTable) Up(ctx context.Context, m *migration.Migrator) error {
//	    return m.CreateTable(ctx, "users", func(t *migration.Blueprint) {
//	        t.ID()
//	        t.String("name", 255)
//	        t.String("email", 255).Unique()
//	        t.Timestamps()
//	    })
//	}
//
//	func (CreateUsersTable) Down(ctx context.Context, m *migration.Migrator) error {
//	    return m.DropTable(ctx, "users")
//	}
// -----------------------------------------------------------------------------

package migration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/biyonik/querykit/pkg/database"
)

// MigrationsTable is the table that tracks applied migrations.
const MigrationsTable = "migrations"

// Migration is a reversible schema change.
type Migration interface {
	Name() string
	Up(ctx context.Context, m *Migrator) error
	Down(ctx context.Context, m *Migrator) error
}

// Migrator manages database migrations.
type Migrator struct {
	exec      database.Executor
	generator *Generator
	builder   *database.Builder
	logger    *slog.Logger
}

// NewMigrator creates a new Migrator instance.
func NewMigrator(exec database.Executor, dialect database.Dialect, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{
		exec:      exec,
		generator: NewGenerator(dialect),
		builder:   database.New(exec, dialect, database.WithLogger(logger)),
		logger:    logger,
	}
}

// Generator returns the DDL generator.
func (m *Migrator) Generator() *Generator {
	return m.generator
}

// CreateTable creates a new table.
func (m *Migrator) CreateTable(ctx context.Context, tableName string, callback func(*Blueprint)) error {
	blueprint := NewBlueprint(tableName)
	callback(blueprint)

	statements, err := m.generator.CompileCreateTable(blueprint)
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if _, err := m.exec.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", tableName, err)
		}
	}

	m.logger.InfoContext(ctx, "created table", slog.String("table", tableName))
	return nil
}

// DropTable drops a table if it exists.
func (m *Migrator) DropTable(ctx context.Context, tableName string) error {
	stmt, err := m.generator.CompileDropTable(tableName)
	if err != nil {
		return err
	}
	if _, err := m.exec.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}

	m.logger.InfoContext(ctx, "dropped table", slog.String("table", tableName))
	return nil
}

// AlterTable adds the columns declared in callback to an existing table.
func (m *Migrator) AlterTable(ctx context.Context, tableName string, callback func(*Blueprint)) error {
	blueprint := NewBlueprint(tableName)
	callback(blueprint)

	for _, column := range blueprint.columns {
		stmt, err := m.generator.CompileAddColumn(tableName, column)
		if err != nil {
			return err
		}
		if _, err := m.exec.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add column %s: %w", column.Name, err)
		}
	}

	m.logger.InfoContext(ctx, "altered table", slog.String("table", tableName))
	return nil
}

// HasTable checks if a table exists.
func (m *Migrator) HasTable(ctx context.Context, tableName string) (bool, error) {
	query, args, err := m.generator.CompileHasTable(tableName)
	if err != nil {
		return false, err
	}

	rows, err := m.exec.QueryContext(ctx, m.generator.Dialect().Rebind(query), args...)
	if err != nil {
		return false, fmt.Errorf("has table %s: %w", tableName, err)
	}
	defer rows.Close()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return false, err
		}
	}
	return count > 0, rows.Err()
}

// CreateMigrationsTable creates the migrations tracking table.
func (m *Migrator) CreateMigrationsTable(ctx context.Context) error {
	exists, err := m.HasTable(ctx, MigrationsTable)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return m.CreateTable(ctx, MigrationsTable, func(t *Blueprint) {
		t.ID()
		t.String("migration", 255).Unique()
		t.Integer("batch")
		t.Timestamp("created_at").Nullable()
	})
}

// RecordMigration records a migration as run.
func (m *Migrator) RecordMigration(ctx context.Context, name string, batch int) error {
	_, err := m.builder.Table(MigrationsTable).Insert(ctx, map[string]any{
		"migration": name,
		"batch":     batch,
	})
	return err
}

// DeleteMigration removes a migration record.
func (m *Migrator) DeleteMigration(ctx context.Context, name string) error {
	_, err := m.builder.Table(MigrationsTable).
		Where(database.Eq("migration", name)).
		Delete(ctx)
	return err
}

// RanMigrations returns all migrations that have been run, oldest first.
func (m *Migrator) RanMigrations(ctx context.Context) ([]string, error) {
	values, err := m.builder.Table(MigrationsTable).
		Select("migration").
		OrderBy("id", "asc").
		Flat(ctx, "migration")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(values))
	for _, v := range values {
		switch s := v.(type) {
		case string:
			names = append(names, s)
		case []byte:
			names = append(names, string(s))
		default:
			names = append(names, fmt.Sprint(s))
		}
	}
	return names, nil
}

// LastBatch returns the last batch number, or 0 if nothing has run.
func (m *Migrator) LastBatch(ctx context.Context) (int, error) {
	row, found, err := m.builder.Table(MigrationsTable).
		Select("MAX(batch) AS batch").
		First(ctx)
	if err != nil || !found {
		return 0, err
	}

	switch v := row.Value("batch").(type) {
	case nil:
		return 0, nil
	case int64:
		return int(v), nil
	case []byte:
		var n int
		_, err := fmt.Sscan(string(v), &n)
		return n, err
	default:
		var n int
		_, err := fmt.Sscan(fmt.Sprint(v), &n)
		return n, err
	}
}

// Run applies every migration that has not run yet, in order, as one batch.
// It returns the names of the migrations it applied.
func (m *Migrator) Run(ctx context.Context, migrations ...Migration) ([]string, error) {
	if err := m.CreateMigrationsTable(ctx); err != nil {
		return nil, err
	}

	ran, err := m.RanMigrations(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(ran))
	for _, name := range ran {
		done[name] = true
	}

	last, err := m.LastBatch(ctx)
	if err != nil {
		return nil, err
	}
	batch := last + 1

	var applied []string
	for _, mig := range migrations {
		if done[mig.Name()] {
			continue
		}
		if err := mig.Up(ctx, m); err != nil {
			return applied, fmt.Errorf("migration %s: %w", mig.Name(), err)
		}
		if err := m.RecordMigration(ctx, mig.Name(), batch); err != nil {
			return applied, err
		}
		m.logger.InfoContext(ctx, "migrated", slog.String("migration", mig.Name()), slog.Int("batch", batch))
		applied = append(applied, mig.Name())
	}
	return applied, nil
}

// Rollback reverts the migrations of the last batch in reverse order.
// Migrations recorded in the batch but missing from migrations are skipped.
func (m *Migrator) Rollback(ctx context.Context, migrations ...Migration) ([]string, error) {
	last, err := m.LastBatch(ctx)
	if err != nil || last == 0 {
		return nil, err
	}

	values, err := m.builder.Table(MigrationsTable).
		Select("migration").
		Where(database.Eq("batch", last)).
		OrderBy("id", "desc").
		Flat(ctx, "migration")
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Migration, len(migrations))
	for _, mig := range migrations {
		byName[mig.Name()] = mig
	}

	var reverted []string
	for _, v := range values {
		name := fmt.Sprint(v)
		if b, ok := v.([]byte); ok {
			name = string(b)
		}
		mig, ok := byName[name]
		if !ok {
			continue
		}
		if err := mig.Down(ctx, m); err != nil {
			return reverted, fmt.Errorf("rollback %s: %w", name, err)
		}
		if err := m.DeleteMigration(ctx, name); err != nil {
			return reverted, err
		}
		m.logger.InfoContext(ctx, "rolled back", slog.String("migration", name))
		reverted = append(reverted, name)
	}
	return reverted, nil
}
