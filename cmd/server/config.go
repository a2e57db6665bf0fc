package main

import (
	"github.com/spf13/cobra"

	"github.com/talentflow/talentflow/internal/config"
)

// loadConfig reads env and .env, then lets command line flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var files []string
	if f, _ := cmd.Flags().GetString("env-file"); f != "" {
		files = append(files, f)
	}
	cfg, err := config.Read(files...)
	if err != nil {
		return nil, err
	}
	override := func(flag string, dst *string) {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			*dst = v
		}
	}
	override("store", &cfg.Store)
	override("sqlite", &cfg.SQLitePath)
	override("database-url", &cfg.DatabaseURL)
	override("migrations", &cfg.MigrationsDir)
	override("snapshot", &cfg.SnapshotPath)
	if cmd.Flags().Lookup("addr") != nil {
		override("addr", &cfg.Addr)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
