package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/talentflow/talentflow/internal/utils"
)

const envPrefix = "TALENTFLOW_"

// Store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	Addr           string
	Store          string
	SQLitePath     string
	DatabaseURL    string
	MigrationsDir  string
	SnapshotPath   string
	InviteSecret   string
	InviteTTL      time.Duration
	RequireInvite  bool
	PassThreshold  float64
	StaticDir      string
	DevFrontendURL string
	CORSOrigins    []string
	Commit         string
	BuildTime      string
}

func env(key, fallback string) string { return utils.SafeEnv(envPrefix+key, fallback) }

// Load is Read followed by Validate.
func Load(files ...string) (*Config, error) {
	cfg, err := Read(files...)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Read loads the given .env files (".env" when none are named) into the
// process environment without overriding variables already set, then builds
// the configuration from TALENTFLOW_* variables. Missing files are ignored.
func Read(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	cfg := &Config{
		Addr:           env("ADDR", ":8080"),
		Store:          strings.ToLower(env("STORE", StoreMemory)),
		SQLitePath:     env("SQLITE_PATH", "data/talentflow.db"),
		DatabaseURL:    env("DATABASE_URL", ""),
		MigrationsDir:  env("MIGRATIONS_DIR", ""),
		SnapshotPath:   env("SNAPSHOT_PATH", ""),
		InviteSecret:   env("INVITE_SECRET", ""),
		InviteTTL:      utils.EnvDuration(envPrefix+"INVITE_TTL", 7*24*time.Hour),
		RequireInvite:  utils.EnvBool(envPrefix+"REQUIRE_INVITE", false),
		PassThreshold:  utils.EnvFloat(envPrefix+"PASS_THRESHOLD", 0.6),
		StaticDir:      env("STATIC_DIR", ""),
		DevFrontendURL: env("DEV_FRONTEND_URL", ""),
		CORSOrigins:    splitList(env("CORS_ORIGINS", "")),
		Commit:         env("COMMIT", ""),
		BuildTime:      env("BUILD_TIME", ""),
	}
	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the combination of settings, after flags have been applied.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite store needs " + envPrefix + "SQLITE_PATH")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("postgres store needs " + envPrefix + "DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown store %q (want memory, sqlite or postgres)", c.Store)
	}
	if c.PassThreshold <= 0 || c.PassThreshold > 1 {
		return fmt.Errorf("pass threshold %g outside (0, 1]", c.PassThreshold)
	}
	if c.InviteTTL <= 0 {
		return errors.New("invite ttl must be positive")
	}
	if c.RequireInvite && c.InviteSecret == "" {
		return errors.New(envPrefix + "REQUIRE_INVITE needs " + envPrefix + "INVITE_SECRET")
	}
	return nil
}
