package cli

import (
	"alcyxob/fitlog-bot/internal/clock"
	"alcyxob/fitlog-bot/internal/config"
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/events"
	"alcyxob/fitlog-bot/internal/logging"
	"alcyxob/fitlog-bot/internal/reaper"
	"alcyxob/fitlog-bot/internal/repository"
	"alcyxob/fitlog-bot/internal/repository/backend"
	"alcyxob/fitlog-bot/internal/service"
	"alcyxob/fitlog-bot/internal/stats"
	"alcyxob/fitlog-bot/internal/storage"
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// core is what every command needs: configuration, logging, the store and
// the services that read it.
type core struct {
	cfg       config.Config
	log       *logging.ZapLogger
	store     *repository.Store
	clock     clock.Clock
	publisher events.Publisher
	reaper    *reaper.Reaper
	reports   service.ReportService
	exports   service.ExportService
}

func openCore(ctx context.Context, cmd *cobra.Command) (*core, error) {
	// --- Configuration ---
	cfg, err := config.LoadConfig(configPath(cmd))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// --- Logging ---
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	// --- Database Connection ---
	store, err := backend.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Infof("storage: %s backend ready", cfg.Storage.Backend)

	if cfg.SeedOnStart {
		res, err := repository.SeedCatalog(ctx, store, domain.DefaultCatalog())
		if err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		log.Debugf("catalog: %d groups, %d exercises", res.Groups, res.Exercises)
	}

	// --- Initialize Storage ---
	var files storage.FileStorage
	if cfg.S3.Enabled() {
		files, err = storage.NewS3Storage(ctx, cfg.S3, log)
		if err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
	} else {
		log.Info("storage: s3 bucket not configured, exports disabled")
	}

	clk := clock.System{}
	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	engine := stats.NewEngine(store.Sessions, store.SetRecords, store.Exercises, clk)

	return &core{
		cfg:       cfg,
		log:       log,
		store:     store,
		clock:     clk,
		publisher: publisher,
		reaper:    reaper.New(store.Sessions, store.SetRecords, store.Users, clk, cfg.Session.InactivityTimeout, publisher, log),
		reports:   service.NewReportService(store.Users, engine),
		exports:   service.NewExportService(store, files, clk),
	}, nil
}

func (c *core) Close(ctx context.Context) {
	if err := c.publisher.Close(); err != nil {
		c.log.Warnf("events: close publisher: %v", err)
	}
	if err := c.store.Close(ctx); err != nil {
		c.log.Warnf("storage: close: %v", err)
	}
	_ = c.log.Sync()
}
