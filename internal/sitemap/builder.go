// Package sitemap renders the sitemap.xml for the comparison site. The
// programmatic URL count is capped by the rollout registry's staged limit
// and hard cap; a small fixed set of static URLs is always present.
package sitemap

import (
	"encoding/xml"
	"strings"

	"github.com/brightlane/cardrank/internal/domain"
	"github.com/brightlane/cardrank/internal/rollout"
)

// URL is one sitemap entry.
type URL struct {
	XMLName    xml.Name `xml:"url"`
	Loc        string   `xml:"loc"`
	ChangeFreq string   `xml:"changefreq,omitempty"`
	Priority   string   `xml:"priority,omitempty"`
}

// URLSet is the sitemap document root.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// State carries the evaluation results consulted while building.
type State struct {
	// TierByIssuer maps issuer id to current tier; Tier A pages get a
	// higher priority hint.
	TierByIssuer map[string]domain.Tier
	// Demoted is the set of demoted page slugs, excluded entirely.
	Demoted map[string]bool
	// IssuerBySlug maps page slug to the issuer whose offer it carries.
	IssuerBySlug map[string]string
}

// Build assembles the ordered URL list: static URLs first, then promoted
// programmatic pages up to min(staged limit, hard cap). Demoted pages are
// skipped before the cap is applied, so a demotion never starves a healthy
// page of its slot.
func Build(reg *rollout.Registry, st State) URLSet {
	cfg := reg.Config()
	set := URLSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}

	for _, u := range cfg.StaticURLs {
		set.URLs = append(set.URLs, URL{
			Loc:        absolute(cfg.BaseURL, u),
			ChangeFreq: "monthly",
			Priority:   "0.8",
		})
	}

	limit := reg.SitemapLimit()
	emitted := 0
	for _, path := range reg.PromotedPaths() {
		if emitted >= limit {
			break
		}
		if !reg.ShouldIncludeInSitemap(path) {
			continue
		}
		_, slug, ok := rollout.ClassifyPath(path)
		if !ok || st.Demoted[slug] {
			continue
		}

		set.URLs = append(set.URLs, URL{
			Loc:        absolute(cfg.BaseURL, path),
			ChangeFreq: changeFreq(slug, st),
			Priority:   priority(slug, st),
		})
		emitted++
	}

	return set
}

// Render serializes the URL set as an XML document.
func Render(set URLSet) ([]byte, error) {
	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

func priority(slug string, st State) string {
	if issuer, ok := st.IssuerBySlug[slug]; ok && st.TierByIssuer[issuer] == domain.TierA {
		return "0.9"
	}
	return "0.6"
}

func changeFreq(slug string, st State) string {
	if issuer, ok := st.IssuerBySlug[slug]; ok && st.TierByIssuer[issuer] == domain.TierA {
		return "daily"
	}
	return "weekly"
}

func absolute(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
