// Package app wires configuration into a running trackd instance.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"trackd/internal/api"
	"trackd/internal/backup"
	"trackd/internal/config"
	"trackd/internal/store"
	"trackd/internal/tracker"
)

// App is the application layer between the CLI and the tracker service.
// It constructs all dependencies from config and manages their lifecycle
// on Close.
type App struct {
	cfg     *config.Config
	store   *store.Store
	service *tracker.Service
	logger  tracker.Logger
	logFile *os.File
}

// New creates a fully wired App from the given config. The caller must
// call Close when done.
func New(cfg *config.Config) (*App, error) {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := st.CheckMigrations(); err != nil {
		st.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	slogger, logFile, err := newLogger(cfg.LogDir)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	clock := tracker.RealClock{}
	idgen := tracker.UUIDGenerator{}
	dispatcher := tracker.NewStoreDispatcher(st, logger, clock, idgen)
	svc := tracker.NewService(st, dispatcher, logger, clock, idgen)

	return &App{
		cfg:     cfg,
		store:   st,
		service: svc,
		logger:  logger,
		logFile: logFile,
	}, nil
}

// Config returns the config the app was built from.
func (a *App) Config() *config.Config { return a.cfg }

// Service exposes the tracker service for CLI operations.
func (a *App) Service() *tracker.Service { return a.service }

// Logger exposes the application logger.
func (a *App) Logger() tracker.Logger { return a.logger }

// Handler builds the HTTP handler for the API server.
func (a *App) Handler() http.Handler {
	ttl := time.Duration(a.cfg.Auth.SessionTTLHours) * time.Hour
	return api.NewServer(a.service, a.logger, ttl).Handler()
}

// Snapshot uploads an encrypted database snapshot to the configured vault
// and returns the stored snapshot name.
func (a *App) Snapshot(ctx context.Context) (string, error) {
	vault, err := backup.NewVaultFromConfig(ctx, a.cfg.Backup.Vault)
	if err != nil {
		return "", fmt.Errorf("creating vault: %w", err)
	}
	if err := vault.ValidateSetup(ctx); err != nil {
		return "", fmt.Errorf("validating vault: %w", err)
	}

	enc, err := backup.NewEncryptorFromConfig(a.cfg.Backup.Encryption)
	if err != nil {
		return "", fmt.Errorf("creating encryptor: %w", err)
	}
	if !enc.IsConfigured() {
		return "", fmt.Errorf("encryption keys not set up; run the backup setup command first")
	}

	snap := backup.NewSnapshotter(vault, enc, a.logger, tracker.RealClock{})
	return snap.Snapshot(ctx, a.store)
}

// CleanupSessions drops expired login sessions.
func (a *App) CleanupSessions(ctx context.Context) error {
	return a.store.DeleteExpiredSessions(ctx, time.Now())
}

// Close closes the database and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
