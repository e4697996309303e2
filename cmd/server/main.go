package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brightlane/cardrank/internal/abtest"
	"github.com/brightlane/cardrank/internal/api"
	"github.com/brightlane/cardrank/internal/config"
	"github.com/brightlane/cardrank/internal/content"
	"github.com/brightlane/cardrank/internal/metrics"
	"github.com/brightlane/cardrank/internal/pagehealth"
	"github.com/brightlane/cardrank/internal/pkg/logger"
	"github.com/brightlane/cardrank/internal/rollout"
	"github.com/brightlane/cardrank/internal/tier"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale/stub processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetConnMaxIdleTime(time.Duration(cfg.Database.ConnMaxIdleSecs) * time.Second)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}
	cancelPing()

	var counters *metrics.Counters
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			// Hot counters are loss-tolerant; the server runs without them.
			logger.Warn("redis unreachable, hot counters disabled", "error", err)
		} else {
			counters = metrics.NewCounters(rdb)
		}
	}

	pages, err := content.LoadDir(cfg.Content.PagesDir)
	if err != nil {
		log.Fatalf("Failed to load page definitions: %v", err)
	}
	offers, err := content.LoadOffers(cfg.Content.OffersFile)
	if err != nil {
		log.Fatalf("Failed to load offer catalog: %v", err)
	}

	pageRefs := make([]pagehealth.PageRef, 0, len(pages))
	issuerBySlug := make(map[string]string, len(pages))
	for _, p := range pages {
		if p.IssuerID == "" {
			continue
		}
		pageRefs = append(pageRefs, pagehealth.PageRef{Slug: p.Slug, IssuerID: p.IssuerID})
		issuerBySlug[p.Slug] = p.IssuerID
	}

	registry := rollout.New(rollout.Config{
		KillSwitch:  cfg.Rollout.KillSwitch,
		StagedLimit: cfg.Rollout.StagedLimit,
		HardCap:     cfg.Rollout.HardCap,
		Promoted:    rollout.PromotedByType(cfg.Rollout.Promoted),
		StaticURLs:  cfg.Rollout.StaticURLs,
		BaseURL:     cfg.Rollout.BaseURL,
	})
	if err := rollout.ValidateCounts(registry); err != nil {
		log.Fatalf("Rollout configuration invalid: %v", err)
	}

	store := metrics.NewStore(db)
	perf := metrics.NewPerformanceStore(db)
	health := metrics.NewPageHealthStore(db)

	handlers := api.NewHandlers(api.Deps{
		Store:       store,
		Counters:    counters,
		Performance: perf,
		Health:      health,
		TierEngine: tier.NewEngine(tier.Config{
			WindowDays:             cfg.Tier.WindowDays,
			MinClicks:              cfg.Tier.MinClicks,
			MinApprovalRate:        cfg.Tier.MinApprovalRate,
			PromotionEPCMultiplier: cfg.Tier.PromotionEPCMultiplier,
			MaxTierAIssuers:        cfg.Tier.MaxTierAIssuers,
		}, store, perf),
		HealthEval: pagehealth.NewEvaluator(pagehealth.Config{
			WindowDays:         cfg.PageHealth.WindowDays,
			ApprovalRateFloor:  cfg.PageHealth.ApprovalRateFloor,
			EPCDropThreshold:   cfg.PageHealth.EPCDropThreshold,
			RecoveryWindowDays: cfg.PageHealth.RecoveryWindowDays,
		}, store, health),
		Registry: registry,
		Assigner: abtest.NewAssigner(abtest.Config{
			BThreshold: cfg.ABTest.BThreshold,
			CookieTTL:  cfg.ABTest.CookieTTL(),
			Secure:     cfg.Server.IsProduction(),
		}),
		Offers:       offers,
		PageRefs:     pageRefs,
		IssuerBySlug: issuerBySlug,
		CronSecret:   cfg.Cron.Secret,
		WebhookToken: cfg.Webhook.Token,
		TierWindow:   cfg.Tier.WindowDays,
	})

	server := api.NewServer(cfg.Server, handlers)
	addr := fmt.Sprintf("%s:%d", host, cfg.Server.Port)

	go func() {
		logger.Info("server starting",
			"addr", addr,
			"pages", len(pages),
			"offers", len(offers),
			"kill_switch", cfg.Rollout.KillSwitch)
		if err := server.ListenAndServe(addr); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	db.Close()
}
