package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var rootCmd = &cobra.Command{
	Use:           "talentflow",
	Short:         "TalentFlow assessment service",
	Long:          "TalentFlow hosts candidate assessments: builder API, conditional visibility, automatic scoring and results.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "Path to a .env file (defaults to ./.env)")
	rootCmd.PersistentFlags().String("store", "", "Store backend: memory, sqlite or postgres (overrides TALENTFLOW_STORE)")
	rootCmd.PersistentFlags().String("sqlite", "", "Path to the SQLite database (overrides TALENTFLOW_SQLITE_PATH)")
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string (overrides TALENTFLOW_DATABASE_URL)")
	rootCmd.PersistentFlags().String("migrations", "", "Directory with sqlite/ and postgres/ migrations (overrides TALENTFLOW_MIGRATIONS_DIR)")
	rootCmd.PersistentFlags().String("snapshot", "", "JSON snapshot of assessments and responses (overrides TALENTFLOW_SNAPSHOT_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("talentflow: %v", err)
		os.Exit(1)
	}
}
