package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/brightlane/cardrank/internal/pkg/logger"
	"github.com/brightlane/cardrank/internal/rollout"
	"github.com/brightlane/cardrank/internal/sitemap"
)

// Sitemap handles GET /sitemap.xml. When the demoted set cannot be read the
// handler returns 503 instead of guessing: serving a sitemap without the
// demotion overlay could re-surface pages the health cycle pulled.
func (h *Handlers) Sitemap(w http.ResponseWriter, r *http.Request) {
	demoted, err := h.health.DemotedSlugs(r.Context())
	if err != nil {
		logger.Error("sitemap: demoted set unavailable", "error", err)
		respondError(w, http.StatusServiceUnavailable, "sitemap unavailable")
		return
	}

	tiers, err := h.performance.TierByIssuer(r.Context())
	if err != nil {
		// Tiers only tune priority hints; an empty map degrades gracefully.
		logger.Warn("sitemap: tier map unavailable", "error", err)
		tiers = nil
	}

	set := sitemap.Build(h.registry, sitemap.State{
		TierByIssuer: tiers,
		Demoted:      demoted,
		IssuerBySlug: h.issuerBySlug,
	})
	body, err := sitemap.Render(set)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "render failed")
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(body)
}

// Robots handles GET /robots.txt. Under the kill switch every programmatic
// prefix is disallowed so crawlers back off while the allow-list is dark.
func (h *Handlers) Robots(w http.ResponseWriter, r *http.Request) {
	cfg := h.registry.Config()

	var b strings.Builder
	b.WriteString("User-agent: *\n")
	if cfg.KillSwitch {
		for _, prefix := range rollout.ProgrammaticPrefixes() {
			fmt.Fprintf(&b, "Disallow: %s\n", prefix)
		}
	} else {
		b.WriteString("Disallow:\n")
	}
	fmt.Fprintf(&b, "Sitemap: %s/sitemap.xml\n", strings.TrimRight(cfg.BaseURL, "/"))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(b.String()))
}

// LinkAllowed handles GET /api/links/allowed?path=<path>. The render layer
// calls it when assembling internal navigation. A failed demoted-set read
// fails closed for programmatic paths.
func (h *Handlers) LinkAllowed(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respondError(w, http.StatusBadRequest, "missing path")
		return
	}

	demoted, err := h.health.DemotedSlugs(r.Context())
	if err != nil {
		logger.Warn("links: demoted set unavailable, failing closed", "error", err)
		if _, _, programmatic := rollout.ClassifyPath(path); programmatic {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"path": path, "allowed": false, "indexable": false, "in_sitemap": false,
			})
			return
		}
		demoted = nil
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"path":       path,
		"allowed":    h.registry.ShouldLinkTo(path, demoted),
		"indexable":  h.registry.ShouldIndex(path),
		"in_sitemap": h.registry.ShouldIncludeInSitemap(path),
	})
}
