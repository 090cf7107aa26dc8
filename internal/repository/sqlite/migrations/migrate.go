package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed *.sql
var migrationsFS embed.FS

// GoMigrationFunc applies a data migration that cannot be written in SQL
type GoMigrationFunc func(tx *sql.Tx) error

// Migration is one schema step. SQL steps carry Up/Down text, Go steps carry GoUp/GoDown.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
	GoUp    GoMigrationFunc
	GoDown  GoMigrationFunc
}

func (m Migration) apply(tx *sql.Tx) error {
	if m.GoUp != nil {
		return m.GoUp(tx)
	}
	_, err := tx.Exec(m.Up)
	return err
}

var goMigrations = map[int]Migration{}

// RegisterGoMigration adds a Go migration to the set applied by RunMigrations.
// It is called from init functions and panics on duplicate versions.
func RegisterGoMigration(version int, name string, up, down GoMigrationFunc) {
	if _, exists := goMigrations[version]; exists {
		panic(fmt.Sprintf("duplicate go migration version %d", version))
	}
	goMigrations[version] = Migration{Version: version, Name: name, GoUp: up, GoDown: down}
}

// DirtyError reports migrations that started but never completed.
type DirtyError struct {
	Versions []int
}

func (e *DirtyError) Error() string {
	return fmt.Sprintf("database is in a dirty state; failed migration(s): %v", e.Versions)
}

const migrationsTable = `
CREATE TABLE IF NOT EXISTS migrations (
	version INTEGER PRIMARY KEY,
	dirty INTEGER NOT NULL DEFAULT 0,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// RunMigrations brings the schema up to date. It refuses to run when an
// earlier attempt left a migration half applied.
func RunMigrations(db *sql.DB) error {
	if _, err := db.Exec(migrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, dirty, err := readState(db)
	if err != nil {
		return fmt.Errorf("failed to read migration state: %w", err)
	}
	if len(dirty) > 0 {
		return &DirtyError{Versions: dirty}
	}

	all, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	for _, m := range all {
		if applied[m.Version] {
			continue
		}
		log.Debug().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// readState returns the cleanly applied versions and the dirty ones in ascending order
func readState(db *sql.DB) (map[int]bool, []int, error) {
	rows, err := db.Query("SELECT version, dirty FROM migrations ORDER BY version")
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	applied := map[int]bool{}
	var dirty []int
	for rows.Next() {
		var version int
		var isDirty bool
		if err := rows.Scan(&version, &isDirty); err != nil {
			return nil, nil, err
		}
		if isDirty {
			dirty = append(dirty, version)
		} else {
			applied[version] = true
		}
	}
	return applied, dirty, rows.Err()
}

// loadMigrations merges the embedded SQL files with the registered Go migrations
func loadMigrations() ([]Migration, error) {
	ups, err := fs.Glob(migrationsFS, "*.up.sql")
	if err != nil {
		return nil, err
	}

	byVersion := make(map[int]Migration, len(ups)+len(goMigrations))
	for _, file := range ups {
		version := extractVersion(file)
		if version == 0 {
			continue
		}
		up, err := migrationsFS.ReadFile(file)
		if err != nil {
			return nil, err
		}
		down, err := migrationsFS.ReadFile(strings.TrimSuffix(file, ".up.sql") + ".down.sql")
		if err != nil {
			return nil, err
		}
		byVersion[version] = Migration{
			Version: version,
			Name:    strings.TrimSuffix(file, ".up.sql"),
			Up:      string(up),
			Down:    string(down),
		}
	}

	for version, m := range goMigrations {
		if existing, ok := byVersion[version]; ok {
			return nil, fmt.Errorf("go migration %d clashes with %s", version, existing.Name)
		}
		byVersion[version] = m
	}

	versions := make([]int, 0, len(byVersion))
	for version := range byVersion {
		versions = append(versions, version)
	}
	slices.Sort(versions)

	ordered := make([]Migration, 0, len(versions))
	for _, version := range versions {
		ordered = append(ordered, byVersion[version])
	}
	return ordered, nil
}

// applyMigration marks the version dirty, runs it in a transaction and
// clears the mark. A failure leaves the mark so the next run refuses to start.
func applyMigration(db *sql.DB, m Migration) error {
	if _, err := db.Exec("INSERT OR REPLACE INTO migrations (version, dirty) VALUES (?, 1)", m.Version); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.apply(tx); err != nil {
		return err
	}
	if _, err := tx.Exec("UPDATE migrations SET dirty = 0 WHERE version = ?", m.Version); err != nil {
		return err
	}
	return tx.Commit()
}

// extractVersion reads the numeric prefix of "000012_name.up.sql", or 0
func extractVersion(filename string) int {
	prefix, _, ok := strings.Cut(filename, "_")
	if !ok {
		return 0
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0
	}
	return version
}
