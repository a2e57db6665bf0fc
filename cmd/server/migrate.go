package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/talentflow/talentflow/internal/api"
	dbstore "github.com/talentflow/talentflow/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply SQLite migrations and import a JSON snapshot",
	Long: "Creates the SQLite schema and, when --snapshot is given, copies its assessments " +
		"and responses into the database. An existing database file is left alone unless --force is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		imported, err := migrateSnapshot(cmd.Context(), cfg.SnapshotPath, cfg.SQLitePath, cfg.MigrationsDir, force)
		if err != nil {
			return err
		}
		if !imported {
			db, err := dbstore.OpenSQLite(cfg.SQLitePath)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := dbstore.RunMigrations(db, cfg.MigrationsDir); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			log.Printf("schema up to date at %s", cfg.SQLitePath)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("force", false, "Import the snapshot even if the database file already exists")
}

// migrateSnapshot seeds sqlitePath from snapshotPath. It reports false
// without touching anything when there is no snapshot, or when the database
// already exists and force is off.
func migrateSnapshot(ctx context.Context, snapshotPath, sqlitePath, migrationsDir string, force bool) (bool, error) {
	if sqlitePath == "" {
		return false, errors.New("sqlite path is required")
	}
	if snapshotPath == "" {
		return false, nil
	}
	if _, err := os.Stat(sqlitePath); err == nil && !force {
		return false, nil
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("check sqlite file: %w", err)
	}

	snap, err := api.LoadSnapshot(snapshotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("load snapshot: %w", err)
	}

	log.Printf("importing snapshot %s into %s...", snapshotPath, sqlitePath)
	db, err := dbstore.OpenSQLite(sqlitePath)
	if err != nil {
		return false, err
	}
	if err := dbstore.RunMigrations(db, migrationsDir); err != nil {
		_ = db.Close()
		return false, fmt.Errorf("run migrations: %w", err)
	}
	dst, err := dbstore.NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return false, fmt.Errorf("init sqlite store: %w", err)
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil {
			log.Printf("warning: failed to close sqlite db: %v", cerr)
		}
	}()

	na, nr, skipped, err := api.ImportSnapshot(ctx, dst, snap)
	if err != nil {
		return false, fmt.Errorf("copy data: %w", err)
	}
	log.Printf("snapshot imported: %d assessments, %d responses, %d skipped", na, nr, skipped)
	return true, nil
}
