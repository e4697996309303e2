// Command worker runs the scheduled evaluation cycles in-process, for
// deployments without an external cron hitting the HTTP endpoints. A
// distributed lock keeps cycles single-flight across replicas.
package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/brightlane/cardrank/internal/config"
	"github.com/brightlane/cardrank/internal/content"
	"github.com/brightlane/cardrank/internal/metrics"
	"github.com/brightlane/cardrank/internal/pagehealth"
	"github.com/brightlane/cardrank/internal/pkg/distlock"
	"github.com/brightlane/cardrank/internal/pkg/logger"
	"github.com/brightlane/cardrank/internal/tier"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}
	cancelPing()

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, falling back to advisory locks", "error", err)
			rdb = nil
		}
	}

	pages, err := content.LoadDir(cfg.Content.PagesDir)
	if err != nil {
		log.Fatalf("Failed to load page definitions: %v", err)
	}
	refs := make([]pagehealth.PageRef, 0, len(pages))
	for _, p := range pages {
		if p.IssuerID != "" {
			refs = append(refs, pagehealth.PageRef{Slug: p.Slug, IssuerID: p.IssuerID})
		}
	}

	store := metrics.NewStore(db)
	engine := tier.NewEngine(tier.Config{
		WindowDays:             cfg.Tier.WindowDays,
		MinClicks:              cfg.Tier.MinClicks,
		MinApprovalRate:        cfg.Tier.MinApprovalRate,
		PromotionEPCMultiplier: cfg.Tier.PromotionEPCMultiplier,
		MaxTierAIssuers:        cfg.Tier.MaxTierAIssuers,
	}, store, metrics.NewPerformanceStore(db))
	evaluator := pagehealth.NewEvaluator(pagehealth.Config{
		WindowDays:         cfg.PageHealth.WindowDays,
		ApprovalRateFloor:  cfg.PageHealth.ApprovalRateFloor,
		EPCDropThreshold:   cfg.PageHealth.EPCDropThreshold,
		RecoveryWindowDays: cfg.PageHealth.RecoveryWindowDays,
	}, store, metrics.NewPageHealthStore(db))

	interval := 24 * time.Hour
	if v := os.Getenv("EVALUATION_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runCycles := func() {
		lock := distlock.NewLock(rdb, db, "evaluation-cycle", time.Hour)
		ok, err := lock.Acquire(ctx)
		if err != nil {
			logger.Error("worker: lock acquire failed", "error", err)
			return
		}
		if !ok {
			logger.Info("worker: another replica holds the evaluation lock, skipping")
			return
		}
		defer lock.Release(ctx)

		until := time.Now().UTC().Truncate(24 * time.Hour)
		since := until.AddDate(0, 0, -cfg.Tier.WindowDays)
		issuers, err := store.ListIssuersWithClicks(ctx, since, until)
		if err != nil {
			logger.Error("worker: issuer listing failed", "error", err)
		} else if _, err := engine.EvaluateAll(ctx, issuers); err != nil {
			logger.Error("worker: tier cycle failed", "error", err)
		}

		if _, err := evaluator.Run(ctx, refs); err != nil {
			logger.Error("worker: page health cycle failed", "error", err)
		}
	}

	logger.Info("evaluation worker starting", "interval", interval.String(), "pages", len(refs))
	runCycles()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			runCycles()
		case <-quit:
			logger.Info("worker shutting down")
			cancel()
			return
		}
	}
}
