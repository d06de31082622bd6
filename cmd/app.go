package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/pastrypath/pastrypath/internal/catalog"
	"github.com/pastrypath/pastrypath/internal/config"
	"github.com/pastrypath/pastrypath/internal/engine"
	"github.com/pastrypath/pastrypath/internal/logger"
	"github.com/pastrypath/pastrypath/internal/store"
)

// app bundles what a command needs: configuration, logger, the opened
// storage backend and the engine on top of it.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	backend store.Backend
	engine  *engine.Engine
	out     io.Writer
	json    bool
}

// openApp loads configuration, applies flag overrides, opens the storage
// backend and builds the engine. Callers must Close the result.
func openApp(cmd *cobra.Command) (*app, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if b, _ := cmd.Flags().GetString("backend"); b != "" {
		cfg.Storage.Backend = b
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if c, _ := cmd.Flags().GetString("catalog"); c != "" {
		cfg.Catalog = c
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	cat := catalog.Default()
	if cfg.Catalog != "" {
		if cat, err = catalog.Load(cfg.Catalog); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}

	backend, err := openBackend(cmd, cfg)
	if err != nil {
		return nil, err
	}
	log.Debug("storage opened", "backend", cfg.Storage.Backend)

	eng, err := engine.New(cmd.Context(), engine.Options{
		Catalog:           cat,
		Blobs:             backend.BlobRepo(),
		Events:            backend.EventRepo(),
		Logger:            log,
		Policy:            &cfg.Unlock,
		PopularityCeiling: cfg.Recommend.PopularityCeiling,
	})
	if err != nil {
		backend.Close()
		return nil, err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	return &app{
		cfg:     cfg,
		log:     log,
		backend: backend,
		engine:  eng,
		out:     cmd.OutOrStdout(),
		json:    asJSON,
	}, nil
}

func openBackend(cmd *cobra.Command, cfg *config.Config) (store.Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return store.NewMemory(), nil
	case config.BackendRedis:
		r, err := store.OpenRedis(cfg.Storage.RedisURL, cfg.Storage.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		return r, nil
	default:
		dbPath, err := resolveDBPath(cmd, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return st, nil
	}
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.log.Warn("close storage", "error", err)
	}
	a.log.Sync()
}

// withApp opens the app, runs fn and closes the app.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// println writes styled output, downsampling colors to the terminal.
func (a *app) println(v ...any) {
	lipgloss.Fprintln(a.out, v...)
}

func (a *app) printf(format string, v ...any) {
	lipgloss.Fprintf(a.out, format, v...)
}

// emit prints v as JSON when --json is set and reports whether it did.
func (a *app) emit(v any) (bool, error) {
	if !a.json {
		return false, nil
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}
