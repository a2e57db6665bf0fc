package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talentflow/talentflow/internal/api"
	"github.com/talentflow/talentflow/internal/config"
	dbstore "github.com/talentflow/talentflow/internal/db"
	"github.com/talentflow/talentflow/internal/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides TALENTFLOW_ADDR)")
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Printf("warning: failed to close store: %v", cerr)
		}
	}()

	rt := api.NewRouter(store, api.Options{
		Signer:        middleware.NewInviteSigner(cfg.InviteSecret),
		InviteTTL:     cfg.InviteTTL,
		RequireInvite: cfg.RequireInvite,
		PassThreshold: cfg.PassThreshold,
		Version:       version,
		Commit:        cfg.Commit,
		BuildTime:     cfg.BuildTime,
	})
	if cfg.InviteSecret == "" {
		log.Printf("warning: TALENTFLOW_INVITE_SECRET not set, invites use a development secret")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           middleware.CORS(cfg.CORSOrigins...)(rt.Handler(frontend(cfg))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("TalentFlow %s listening on %s (store=%s)", version, cfg.Addr, cfg.Store)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore builds the configured backend. A fresh SQLite file is seeded
// from the snapshot when one is configured.
func openStore(ctx context.Context, cfg *config.Config) (api.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		if _, err := migrateSnapshot(ctx, cfg.SnapshotPath, cfg.SQLitePath, cfg.MigrationsDir, false); err != nil {
			return nil, err
		}
		db, err := dbstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := dbstore.RunMigrations(db, cfg.MigrationsDir); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return dbstore.NewStore(db)
	case config.StorePostgres:
		return dbstore.OpenPostgres(ctx, cfg.DatabaseURL, cfg.MigrationsDir)
	}
	if cfg.SnapshotPath != "" {
		log.Printf("loading snapshot %s into memory", cfg.SnapshotPath)
		return api.NewMemoryStoreFromSnapshot(ctx, cfg.SnapshotPath)
	}
	return api.NewMemoryStore(), nil
}

// frontend serves the built UI when a static dir is configured, otherwise
// proxies to a dev server when one is configured.
func frontend(cfg *config.Config) http.Handler {
	if cfg.StaticDir != "" {
		return http.FileServer(http.Dir(cfg.StaticDir))
	}
	if cfg.DevFrontendURL == "" {
		return nil
	}
	u, err := url.Parse(cfg.DevFrontendURL)
	if err != nil {
		log.Printf("invalid TALENTFLOW_DEV_FRONTEND_URL=%q: %v", cfg.DevFrontendURL, err)
		return nil
	}
	rp := httputil.NewSingleHostReverseProxy(u)
	rp.ModifyResponse = func(res *http.Response) error {
		res.Header.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		return nil
	}
	return rp
}
