package main

import (
	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/Faultbox/chameleon/internal/assets"
	"github.com/Faultbox/chameleon/internal/logger"
	"github.com/Faultbox/chameleon/internal/progress"
)

// openStore returns the asset index for the configured roots, from the
// cache when it matches and by scanning otherwise. force always rescans.
func openStore(force bool) *assets.Store {
	log := logger.Named("assets")
	store := assets.New(assets.Options{
		Logger:      log,
		PreviewSize: cfg.Preview.Size,
		JPEGQuality: cfg.Preview.JPEGQuality,
	})

	useCache := !cfg.Cache.Disabled && cfg.Cache.Path != ""
	if useCache && !force {
		err := store.LoadCache(cfg.Cache.Path)
		switch {
		case err == nil:
		case errors.Is(err, assets.ErrNoCache):
			log.Debug("no asset cache yet", zap.String("path", cfg.Cache.Path))
		case errors.Is(err, assets.ErrCorruptCache):
			log.Warn("ignoring corrupt asset cache", zap.Error(err))
		default:
			log.Warn("cannot read asset cache", zap.Error(err))
		}
	}

	sink := progress.Multi{
		progress.NewBar("Scanning sources"),
		progress.NewLog(log, "sources"),
	}
	changed := store.Load(cfg.Paths.BasePath, cfg.Paths.HomePath, force, sink)
	if changed && useCache {
		if err := store.SaveCache(cfg.Cache.Path); err != nil {
			log.Warn("cannot write asset cache", zap.Error(err))
		}
	}

	if store.Len() == 0 {
		pterm.Warning.Printf("No textures or shaders found under %q and %q\n",
			cfg.Paths.BasePath, cfg.Paths.HomePath)
	}
	return store
}
