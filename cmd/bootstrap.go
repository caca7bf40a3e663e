package cmd

import (
	"context"
	"fmt"
	"io"

	"krosmoz-scrapper/core/cache"
	"krosmoz-scrapper/core/config"
	"krosmoz-scrapper/core/database"
	"krosmoz-scrapper/core/logger"
	"krosmoz-scrapper/core/storage"
	"krosmoz-scrapper/feature/alias"
	"krosmoz-scrapper/feature/collect"
	"krosmoz-scrapper/feature/collect/dofusdb"
	"krosmoz-scrapper/feature/conversion"
	"krosmoz-scrapper/feature/gameconfig"
	"krosmoz-scrapper/feature/integration"
	"krosmoz-scrapper/feature/limits"
	"krosmoz-scrapper/feature/scrapping"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// pipeline is the wired object graph shared by the commands.
type pipeline struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	backend cache.Backend
	service *scrapping.Service
}

// bootstrap loads configuration and wires every collaborator of a collection run.
func bootstrap(ctx context.Context) (*pipeline, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	return wire(ctx, cfg, logg, db)
}

// wire builds the pipeline around an open database. The database is closed
// when wiring fails.
func wire(ctx context.Context, cfg *config.Config, logg *zap.Logger, db *gorm.DB) (*pipeline, error) {
	p := &pipeline{cfg: cfg, logger: logg, db: db}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		p.Close()
		return nil, err
	}

	p.backend, err = cache.NewBackend(ctx, cfg.Cache)
	if err != nil {
		p.Close()
		return nil, err
	}
	cacheStore := cache.NewStore(p.backend, cfg.Cache.Prefix, logg)

	store := gameconfig.NewStore(db, logg)
	characteristics := conversion.NewCharacteristics(store, cacheStore)
	formulas := conversion.NewFormulas(store, cacheStore)
	equipment := conversion.NewEquipment(store, cacheStore)
	conversion.Wire(store, characteristics, formulas, equipment)

	var registry alias.Source = alias.FileSource{Path: cfg.Scrapping.RegistryPath}
	if cfg.Scrapping.RegistryObject != "" {
		registry = alias.ObjectSource{Client: client, Bucket: cfg.Storage.Bucket, Object: cfg.Scrapping.RegistryObject}
	}

	collector := collect.NewCollector(limits.Default(), logg)
	collector.Register(dofusdb.SourceName, dofusdb.New(cfg.Remote, logg))

	p.service = scrapping.NewService(scrapping.Deps{
		Resolver:        alias.NewResolver(registry, logg),
		Collector:       collector,
		Integrator:      integration.New(db, formulas, characteristics, cfg.Remote.Lang, logg),
		Archive:         scrapping.NewArchive(client, cfg.Storage.Bucket, cfg.Storage.Region),
		Store:           store,
		Characteristics: characteristics,
		Formulas:        formulas,
		Equipment:       equipment,
	}, cfg.Scrapping, logg)

	return p, nil
}

// Close releases the cache and database connections.
func (a *pipeline) Close() {
	if c, ok := a.backend.(io.Closer); ok {
		_ = c.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}
