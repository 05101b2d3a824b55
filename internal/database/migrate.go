package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    VARCHAR(255) NOT NULL PRIMARY KEY,
    applied_at DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// Migrate applies ("up") or reverts ("down") the embedded migrations and
// returns the versions it touched. Applied versions are tracked in
// schema_migrations so repeated runs are no-ops.
func Migrate(ctx context.Context, db *sql.DB, direction string) ([]string, error) {
	if direction != "up" && direction != "down" {
		return nil, fmt.Errorf("direction must be up or down, got %q", direction)
	}
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return nil, err
	}

	files, err := migrationFiles(direction)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, name := range files {
		version := strings.TrimSuffix(name, "."+direction+".sql")
		if (direction == "up") == applied[version] {
			continue
		}
		content, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return done, fmt.Errorf("read migration %s: %w", name, err)
		}
		for _, stmt := range SplitStatements(string(content)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return done, fmt.Errorf("execute migration %s: %w", name, err)
			}
		}
		if direction == "up" {
			_, err = db.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version)
		} else {
			_, err = db.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", version)
		}
		if err != nil {
			return done, fmt.Errorf("record migration %s: %w", name, err)
		}
		done = append(done, version)
	}
	return done, nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("list schema_migrations: %w", err)
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

// migrationFiles lists files for direction, newest last for up and newest
// first for down.
func migrationFiles(direction string) ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), "."+direction+".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if direction == "down" {
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
	}
	return names, nil
}

// SplitStatements breaks a migration script on semicolons that end a
// line. The driver runs one statement per Exec.
func SplitStatements(script string) []string {
	var out []string
	for _, part := range strings.Split(script, ";\n") {
		part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), ";"))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
