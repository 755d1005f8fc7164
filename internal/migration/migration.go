package migration

import (
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var schemaFS embed.FS

// step is one versioned schema change. The version comes from the numeric
// prefix of the file name, e.g. sql/003_leads.sql is version 3, "leads".
type step struct {
	version int
	name    string
	path    string
}

// Run brings the schema up to date. Each pending step executes inside its
// own transaction together with the row that marks it applied, so a failed
// step leaves no trace.
func Run(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP DEFAULT NOW()
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	steps, err := loadSteps()
	if err != nil {
		return err
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	for _, s := range steps {
		if applied[s.version] {
			continue
		}
		if err := apply(db, s); err != nil {
			return err
		}
	}
	return nil
}

func apply(db *sql.DB, s step) error {
	content, err := schemaFS.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read migration %d (%s): %w", s.version, s.name, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(content)); err != nil {
		return fmt.Errorf("migration %d (%s) failed: %w", s.version, s.name, err)
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES ($1, $2)",
		s.version, s.name,
	); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", s.version, err)
	}
	return tx.Commit()
}

// loadSteps lists the embedded migrations ordered by version. Duplicate
// version numbers are a packaging mistake and refuse to run.
func loadSteps() ([]step, error) {
	entries, err := schemaFS.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	seen := make(map[int]string)
	var steps []step
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, name, err := parseName(entry.Name())
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %d (%s and %s)", version, prev, entry.Name())
		}
		seen[version] = entry.Name()
		steps = append(steps, step{version: version, name: name, path: "sql/" + entry.Name()})
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].version < steps[j].version })
	return steps, nil
}

// parseName splits "003_leads.sql" into version 3 and name "leads".
func parseName(fileName string) (int, string, error) {
	base := strings.TrimSuffix(fileName, ".sql")
	prefix, name, ok := strings.Cut(base, "_")
	if !ok {
		return 0, "", fmt.Errorf("migration %s is not named <version>_<name>.sql", fileName)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, "", fmt.Errorf("migration %s has a non-numeric version prefix: %w", fileName, err)
	}
	return version, name, nil
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}
