package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philocompass/compass/internal/api"
	"github.com/philocompass/compass/internal/auth"
	"github.com/philocompass/compass/internal/config"
	"github.com/philocompass/compass/internal/logging"
	"github.com/philocompass/compass/internal/store"
)

// deps is what every command needs: the session restored from the store
// and a client that signs requests with it.
type deps struct {
	cfg      config.Config
	logger   *zap.Logger
	kv       store.KV
	sessions *auth.Manager
	client   *api.Client
}

func openDeps(cmd *cobra.Command) (*deps, error) {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Path, cfg.Verbose)
	if err != nil {
		return nil, err
	}

	kv, err := openKV(ctx, cfg)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open store: %w", err)
	}

	sessions := auth.NewManager(kv, logger.Named("auth"))
	if err := sessions.Restore(ctx); err != nil {
		kv.Close()
		_ = logger.Sync()
		return nil, err
	}

	client := api.New(cfg.API.BaseURL, cfg.RequestTimeout(), sessions,
		api.WithLogger(logger.Named("api")))

	logger.Debug("dependencies ready",
		zap.String("api", cfg.API.BaseURL),
		zap.String("store", cfg.Store.Backend),
		zap.Bool("signed_in", sessions.IsAuthenticated()))

	return &deps{
		cfg:      cfg,
		logger:   logger,
		kv:       kv,
		sessions: sessions,
		client:   client,
	}, nil
}

func (d *deps) Close() error {
	err := d.kv.Close()
	// Sync on a file-backed logger only fails for closed descriptors.
	_ = d.logger.Sync()
	return err
}

// openKV opens the session store the config selects.
func openKV(ctx context.Context, cfg config.Config) (store.KV, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return store.NewMemoryKV(), nil
	case config.StoreRedis:
		return store.OpenRedis(ctx, cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB, cfg.Store.RedisPrefix)
	case config.StoreSQLite:
		path, err := resolveDBPath(cfg)
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		return store.Open(path)
	}
	return nil, errors.New("unknown store backend: " + cfg.Store.Backend)
}
