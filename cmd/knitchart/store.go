package main

import (
	"fmt"
	"log/slog"

	"github.com/RowanDark/knitcipher/internal/chartstore"
	"github.com/RowanDark/knitcipher/internal/config"
)

func loadConfig() (config.Config, bool) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return config.Config{}, false
	}
	return cfg, true
}

// openStore opens the chart library named by the configuration. Only
// warnings from the store reach stderr.
func openStore(cfg config.Config) (*chartstore.Store, bool) {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	store, err := chartstore.Open(cfg.Store.Path, logger)
	if err != nil {
		fmt.Fprintf(stderr, "open chart store %s: %v\n", cfg.Store.Path, err)
		return nil, false
	}
	return store, true
}
