// Package rollout gates which programmatic pages may be indexed, appear in
// the sitemap, or receive internal links. Three independent gates derive
// from one promotion decision; a global kill switch and the demoted-page
// set overlay the static allow-list at read time.
package rollout

import (
	"strings"

	"github.com/brightlane/cardrank/internal/domain"
)

// prefixByType maps URL path prefixes to programmatic page types. Paths
// outside these prefixes are static pages and bypass rollout gating.
var prefixByType = []struct {
	prefix   string
	pageType domain.PageType
}{
	{"/compare/", domain.PageComparison},
	{"/hub/", domain.PageHub},
	{"/best/", domain.PageCategory},
	{"/cards/", domain.PageReview},
	{"/results/", domain.PageResults},
	{"/guides/", domain.PageEducation},
}

// PromotedByType converts a promoted allow-list keyed by page type name
// (the configuration file representation) into the typed form.
func PromotedByType(m map[string][]string) map[domain.PageType][]string {
	out := make(map[domain.PageType][]string, len(m))
	for pt, slugs := range m {
		out[domain.PageType(pt)] = slugs
	}
	return out
}

// ProgrammaticPrefixes returns the URL prefixes subject to rollout gating.
func ProgrammaticPrefixes() []string {
	out := make([]string, 0, len(prefixByType))
	for _, p := range prefixByType {
		out = append(out, p.prefix)
	}
	return out
}

// ClassifyPath maps a request path to its programmatic page type and slug.
// ok is false for non-programmatic paths.
func ClassifyPath(path string) (pageType domain.PageType, slug string, ok bool) {
	for _, p := range prefixByType {
		if strings.HasPrefix(path, p.prefix) {
			slug = strings.Trim(strings.TrimPrefix(path, p.prefix), "/")
			if slug == "" {
				return "", "", false
			}
			return p.pageType, slug, true
		}
	}
	return "", "", false
}

// Config is the static rollout configuration. It is passed explicitly so
// tests can construct independent registries per case.
type Config struct {
	KillSwitch  bool
	StagedLimit int
	HardCap     int
	Promoted    map[domain.PageType][]string
	StaticURLs  []string
	BaseURL     string
}

// Registry answers the promotion gates for request paths.
type Registry struct {
	cfg      Config
	promoted map[domain.PageType]map[string]bool
}

// New builds a registry from static configuration.
func New(cfg Config) *Registry {
	promoted := map[domain.PageType]map[string]bool{}
	for pt, slugs := range cfg.Promoted {
		set := make(map[string]bool, len(slugs))
		for _, s := range slugs {
			set[s] = true
		}
		promoted[pt] = set
	}
	return &Registry{cfg: cfg, promoted: promoted}
}

// Config returns the registry's static configuration.
func (r *Registry) Config() Config { return r.cfg }

// IsPromoted reports whether the path's page is statically promoted.
// Non-programmatic paths are always allowed; the kill switch suppresses
// every programmatic page regardless of the allow-list.
func (r *Registry) IsPromoted(path string) bool {
	pt, slug, ok := ClassifyPath(path)
	if !ok {
		return true
	}
	if r.cfg.KillSwitch {
		return false
	}
	return r.promoted[pt][slug]
}

// ShouldIndex reports whether the page may carry an index directive.
func (r *Registry) ShouldIndex(path string) bool {
	return r.IsPromoted(path)
}

// ShouldIncludeInSitemap reports whether the page belongs in the sitemap.
// The sitemap builder additionally enforces the staged count ceiling.
func (r *Registry) ShouldIncludeInSitemap(path string) bool {
	return r.IsPromoted(path)
}

// ShouldLinkTo reports whether internal navigation may link to the path.
// On top of promotion it excludes any page in the current demoted set, so
// navigation never points at a page whose performance collapsed.
func (r *Registry) ShouldLinkTo(path string, demoted map[string]bool) bool {
	if !r.IsPromoted(path) {
		return false
	}
	_, slug, ok := ClassifyPath(path)
	if !ok {
		return true
	}
	return !demoted[slug]
}

// SitemapLimit is the absolute ceiling on emitted programmatic URLs:
// min(staged limit, hard cap), a phased-rollout valve independent of
// per-page promotion.
func (r *Registry) SitemapLimit() int {
	if r.cfg.StagedLimit < r.cfg.HardCap {
		return r.cfg.StagedLimit
	}
	return r.cfg.HardCap
}

// PromotedCount returns the total number of statically promoted
// programmatic pages across all types.
func (r *Registry) PromotedCount() int {
	n := 0
	for _, set := range r.promoted {
		n += len(set)
	}
	return n
}

// PromotedPaths returns the full promoted URL path list in deterministic
// order (type prefix order, then slug order as configured).
func (r *Registry) PromotedPaths() []string {
	var out []string
	for _, p := range prefixByType {
		for _, slug := range r.cfg.Promoted[p.pageType] {
			out = append(out, p.prefix+slug)
		}
	}
	return out
}
