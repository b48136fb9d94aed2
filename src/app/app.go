package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/elee1766/gemchat/src/config"
	"github.com/elee1766/gemchat/src/gemini"
	"github.com/elee1766/gemchat/src/session"
	"github.com/elee1766/gemchat/src/storage"
)

// App holds the services shared by every command
type App struct {
	Config  *config.Config
	Client  *gemini.Client
	DB      *storage.DB
	Threads *storage.ThreadStore
	Logger  *slog.Logger
}

// Options selects which services New sets up
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	// SkipStorage leaves DB and Threads nil, for commands that never touch history
	SkipStorage bool
	// SkipClient leaves Client nil, so no API key is required
	SkipClient bool
}

// New creates the services named by opts. The Gemini client is created once
// here and injected everywhere else.
func New(ctx context.Context, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	a := &App{Config: cfg, Logger: logger}

	if !opts.SkipClient {
		key, err := cfg.RequireAPIKey()
		if err != nil {
			return nil, err
		}
		client, err := gemini.NewClient(gemini.Config{
			APIKey:  key,
			BaseURL: cfg.API.BaseURL,
			Timeout: cfg.API.Timeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		a.Client = client
	}

	if !opts.SkipStorage {
		db, err := storage.Open(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		a.DB = db
		a.Threads = storage.NewThreadStore(db, logger)
		logger.Debug("storage opened", "path", db.Path())
	}

	return a, nil
}

// Model returns the configured chat model.
func (a *App) Model() *gemini.Model {
	return a.Client.Model(a.Config.API.Model)
}

// Controller builds a session controller for policy. Stateless controllers get
// no store.
func (a *App) Controller(policy session.Policy) *session.Controller {
	var store session.Store
	if policy == session.Persisting && a.Threads != nil {
		store = a.Threads
	}
	return session.New(a.Model(), store, policy, a.Logger)
}

// Close closes all resources held by the app
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
