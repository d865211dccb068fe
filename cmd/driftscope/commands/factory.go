package commands

import (
	"fmt"

	"github.com/driftscope/driftscope/internal/cache"
	"github.com/driftscope/driftscope/internal/differ"
	"github.com/driftscope/driftscope/internal/drift"
	"github.com/driftscope/driftscope/internal/logger"
	"github.com/driftscope/driftscope/internal/output"
	"github.com/driftscope/driftscope/internal/storage"
)

// newService wires the storage, engine, and cache from the loaded
// configuration.
func newService() (*drift.Service, logger.Logger, error) {
	log := logger.New(cfg.Logging.Level)

	store, err := storage.NewLocalStore(storage.Config{BaseDir: cfg.Storage.BaseDir})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open snapshot storage: %w", err)
	}

	engine := differ.NewEngine(log, differ.Options{Parallelism: cfg.Engine.Parallelism})

	var resultCache *cache.ResultCache
	if cfg.Cache.Enabled {
		resultCache, err = cache.NewResultCache(cfg.Cache.MaxEntries)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create result cache: %w", err)
		}
	}

	return drift.NewService(store, engine, resultCache, log), log, nil
}

// newFormatter builds the output formatter selected by flags/config.
func newFormatter() (output.Formatter, error) {
	return output.NewFormatter(cfg.Output.Format, cfg.Output.NoColor)
}
