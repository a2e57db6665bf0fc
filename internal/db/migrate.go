package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embeddedMigrations embed.FS

// Dialects with their own migration sets.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

type migrationFile struct {
	name string
	data []byte
}

// Execer is satisfied by *sql.DB and by the pgx pool adapter.
type Execer interface {
	ExecContext(ctx context.Context, query string) error
}

type sqlExecer struct{ db *sql.DB }

func (e sqlExecer) ExecContext(ctx context.Context, query string) error {
	_, err := e.db.ExecContext(ctx, query)
	return err
}

// RunMigrations applies the SQLite migrations from migrationsDir/sqlite when
// that directory exists, otherwise the embedded copies. Every statement is
// idempotent, so running them on each start is safe.
func RunMigrations(db *sql.DB, migrationsDir string) error {
	return applyMigrations(context.Background(), sqlExecer{db: db}, DialectSQLite, migrationsDir)
}

func applyMigrations(ctx context.Context, ex Execer, dialect, migrationsDir string) error {
	files, err := loadMigrations(dialect, migrationsDir)
	if err != nil {
		return err
	}
	for _, mf := range files {
		if len(mf.data) == 0 {
			continue
		}
		if err := ex.ExecContext(ctx, string(mf.data)); err != nil {
			return fmt.Errorf("exec migration %s/%s: %w", dialect, mf.name, err)
		}
	}
	return nil
}

func loadMigrations(dialect, dir string) ([]migrationFile, error) {
	var files []migrationFile
	if dir != "" {
		dir = filepath.Join(dir, dialect)
		entries, err := os.ReadDir(dir)
		if err == nil {
			for _, entry := range entries {
				if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
					continue
				}
				content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
				if err != nil {
					return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
				}
				files = append(files, migrationFile{name: entry.Name(), data: content})
			}
			sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
			return files, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read migrations: %w", err)
		}
	}

	root := path.Join("migrations", dialect)
	entries, err := embeddedMigrations.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		content, err := embeddedMigrations.ReadFile(path.Join(root, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read embedded migration %s: %w", entry.Name(), err)
		}
		files = append(files, migrationFile{name: entry.Name(), data: content})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}
