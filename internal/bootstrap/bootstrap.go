package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"sheet-quiz/internal/config"
	"sheet-quiz/internal/logging"
	"sheet-quiz/internal/quiz"
	"sheet-quiz/internal/quiz/sqlite"
	"sheet-quiz/internal/sheet"
)

// Options tweak how the shared pieces are assembled.
type Options struct {
	ConfigDir string
	// LogOutput overrides the console log destination.
	LogOutput io.Writer
	// LogLevel overrides the configured level when set.
	LogLevel string
	Observer quiz.Observer
}

// Runtime bundles everything a binary needs to serve quizzes.
type Runtime struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   *sqlite.SQLiteStore
	Service *quiz.Service
}

// Open loads config, builds the logger, opens the database and seeds default
// settings for absent keys.
func Open(ctx context.Context, opts Options) (*Runtime, error) {
	cfg, err := config.Load(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	logOptions := cfg.Log.Options()
	logOptions.Output = opts.LogOutput
	if opts.LogLevel != "" {
		logOptions.Level = opts.LogLevel
	}
	logger, err := logging.New(logOptions)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}

	importer := sheet.Importer{
		Client: sheet.NewClient(&http.Client{Timeout: cfg.Sheet.Timeout}),
		URL:    cfg.Sheet.URL,
		Format: cfg.Sheet.Format,
	}
	service := quiz.NewService(store, store, importer.Fetch, quiz.ServiceOptions{
		Policy:     cfg.Quiz.Policy(),
		MinOptions: cfg.Quiz.MinOptions,
		Logger:     logger.Named("quiz"),
		Observer:   opts.Observer,
	})

	if err := service.SeedSettings(ctx, cfg.Quiz.Settings()); err != nil {
		service.Close()
		_ = store.Close()
		return nil, fmt.Errorf("seed settings: %w", err)
	}

	logger.Debug("runtime ready",
		zap.String("database", cfg.Database.Path),
		zap.String("sheet_format", cfg.Sheet.Format))
	return &Runtime{Config: cfg, Logger: logger, Store: store, Service: service}, nil
}

// Close abandons live sessions and releases the database.
func (r *Runtime) Close() error {
	r.Service.Close()
	err := r.Store.Close()
	_ = r.Logger.Sync()
	return err
}
