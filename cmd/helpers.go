package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ziadkadry99/labelkit/internal/config"
	"github.com/ziadkadry99/labelkit/internal/db"
	"github.com/ziadkadry99/labelkit/internal/kvstore"
	"github.com/ziadkadry99/labelkit/internal/logging"
	"github.com/ziadkadry99/labelkit/internal/sites"
	"github.com/ziadkadry99/labelkit/internal/templates"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `labelkit init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the logger for cfg; --verbose forces debug level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logging.New(level, cfg.Log.Format)
}

// backend is the opened storage shared by the commands.
type backend struct {
	cfg       *config.Config
	log       *zap.Logger
	db        *db.DB
	kv        *kvstore.SQLStore
	templates *templates.Store
	sites     *sites.Store
}

// openBackend loads the config and opens the database in its data
// directory, creating it if needed.
func openBackend() (*backend, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	database, err := db.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	kv := kvstore.NewSQLStore(database, log)
	return &backend{
		cfg:       cfg,
		log:       log,
		db:        database,
		kv:        kv,
		templates: templates.NewStore(kv, log),
		sites:     sites.NewStore(kv, log),
	}, nil
}

func (b *backend) Close() {
	b.log.Sync()
	b.db.Close()
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
