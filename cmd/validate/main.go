// Command validate runs every build-time publication gate over the page
// corpus and the rollout configuration. It exits non-zero on the first
// violation so CI blocks the publish.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/brightlane/cardrank/internal/abtest"
	"github.com/brightlane/cardrank/internal/config"
	"github.com/brightlane/cardrank/internal/content"
	"github.com/brightlane/cardrank/internal/rollout"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "validation FAILED: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("validation passed")
}

func run(cfg *config.Config) error {
	pages, err := content.LoadDir(cfg.Content.PagesDir)
	if err != nil {
		return err
	}
	fmt.Printf("loaded %d page definitions from %s\n", len(pages), cfg.Content.PagesDir)

	if err := content.CheckCorpus(pages, content.GuardConfig{
		SimilarityThreshold: cfg.Content.SimilarityThreshold,
	}); err != nil {
		return err
	}

	if _, err := content.LoadOffers(cfg.Content.OffersFile); err != nil {
		return err
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
		return err
	}
	fmt.Printf("rollout: %d promoted pages, sitemap limit %d\n",
		registry.PromotedCount(), registry.SitemapLimit())

	// Promoted slugs must exist in the corpus, otherwise the sitemap
	// advertises pages that 404.
	known := map[string]bool{}
	for _, p := range pages {
		known[p.Slug] = true
	}
	for _, path := range registry.PromotedPaths() {
		if _, slug, ok := rollout.ClassifyPath(path); ok && !known[slug] {
			return fmt.Errorf("promoted page %q has no definition in %s", path, cfg.Content.PagesDir)
		}
	}

	return abtest.SelfCheck()
}
