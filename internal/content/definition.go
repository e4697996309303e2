// Package content defines the programmatic page corpus and the build-time
// guards that keep it publishable: token-set uniqueness, free-text
// similarity limits, banned-claim phrases, and per-slot length ceilings.
// Violations are build failures, never runtime truncation.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// PageDefinition is the fixed fact structure behind one templated page.
// Free-text slots are Liquid templates rendered against the page's facts
// before any guard runs.
type PageDefinition struct {
	Slug          string            `yaml:"slug"`
	PageType      string            `yaml:"page_type"`
	IntentKey     string            `yaml:"intent_key"`
	AudienceKey   string            `yaml:"audience_key"`
	VariationSeed int               `yaml:"variation_seed"`
	IssuerID      string            `yaml:"issuer_id"`
	Entities      []string          `yaml:"entities"`
	Facts         map[string]string `yaml:"facts"`
	Slots         map[string]string `yaml:"slots"`
}

// Validate checks the structural requirements of a definition.
func (d PageDefinition) Validate() error {
	if d.Slug == "" {
		return fmt.Errorf("page definition missing slug")
	}
	if d.IntentKey == "" || d.AudienceKey == "" {
		return fmt.Errorf("page %q: intent_key and audience_key are required", d.Slug)
	}
	if len(d.Entities) == 0 {
		return fmt.Errorf("page %q: at least one entity is required", d.Slug)
	}
	return nil
}

// LoadDir reads every .yaml page definition under dir, sorted by filename
// so corpus checks are order-stable ("newer" means later in sort order).
func LoadDir(dir string) ([]PageDefinition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read pages dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	defs := make([]PageDefinition, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read page %s: %w", name, err)
		}
		var d PageDefinition
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, nil
}
