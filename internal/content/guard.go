package content

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/brightlane/cardrank/internal/pkg/logger"
)

// TokenSet is the semantic identity tuple of a templated page. Two pages
// sharing a tuple would render the same comparison for the same audience,
// so the whole corpus must be duplicate-free.
type TokenSet struct {
	IntentKey     string
	AudienceKey   string
	EntityHash    uint64
	VariationSeed int
}

// DeriveTokenSet computes a page's identity tuple. The entity hash is
// commutative: names are sorted before hashing so "A vs B" and "B vs A"
// collide as intended.
func DeriveTokenSet(d PageDefinition) TokenSet {
	names := make([]string, len(d.Entities))
	for i, e := range d.Entities {
		names[i] = strings.ToLower(strings.TrimSpace(e))
	}
	sort.Strings(names)

	return TokenSet{
		IntentKey:     d.IntentKey,
		AudienceKey:   d.AudienceKey,
		EntityHash:    xxhash.Sum64String(strings.Join(names, "|")),
		VariationSeed: d.VariationSeed,
	}
}

// bannedPhrases are absolute claims that may never appear in generated
// facts or free text. Matching is case-insensitive substring.
var bannedPhrases = []string{
	"guaranteed approval",
	"100% approval",
	"#1",
	"pre-approved",
	"instant approval guaranteed",
}

// superlatives are flagged with a warning but do not block publication.
var superlatives = []string{
	"best ever",
	"unbeatable",
	"lowest rate anywhere",
	"greatest",
}

// defaultSlotLimits are per-slot maximum rendered lengths in characters.
// Slots not listed fall back to the generic limit.
var defaultSlotLimits = map[string]int{
	"intro":             600,
	"editorial_context": 900,
	"summary_takeaway":  400,
}

const genericSlotLimit = 500

// GuardConfig tunes the corpus checks.
type GuardConfig struct {
	// SimilarityThreshold blocks a page whose free-text fingerprint is at
	// least this similar to an earlier page's. Default 0.85.
	SimilarityThreshold float64
}

// CheckCorpus runs every publication gate over the full page corpus:
//
//  1. token-set uniqueness across all pages
//  2. free-text similarity below the threshold for every pair
//  3. no banned absolute-claim phrases in facts or rendered slots
//  4. per-slot length ceilings on rendered text
//
// The first violation is returned as a hard error; promotional
// superlatives only log a warning. Pages are checked in corpus order and
// a similarity collision blocks the later page.
func CheckCorpus(defs []PageDefinition, cfg GuardConfig) error {
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = 0.85
	}

	seen := map[TokenSet]string{}
	var fingerprints []wordSet
	var slugs []string

	for _, d := range defs {
		ts := DeriveTokenSet(d)
		if prior, dup := seen[ts]; dup {
			return fmt.Errorf("page %q duplicates token set of %q: intent=%s audience=%s entity_hash=%x seed=%d",
				d.Slug, prior, ts.IntentKey, ts.AudienceKey, ts.EntityHash, ts.VariationSeed)
		}
		seen[ts] = d.Slug

		rendered, err := RenderSlots(d)
		if err != nil {
			return err
		}

		if err := checkPhrases(d, rendered); err != nil {
			return err
		}
		if err := checkLengths(d.Slug, rendered); err != nil {
			return err
		}

		fp := fingerprint(joinSlots(rendered))
		for i, prior := range fingerprints {
			sim := similarity(fp, prior)
			if sim >= cfg.SimilarityThreshold {
				return fmt.Errorf("page %q free text is %.0f%% similar to %q (threshold %.0f%%)",
					d.Slug, sim*100, slugs[i], cfg.SimilarityThreshold*100)
			}
		}
		fingerprints = append(fingerprints, fp)
		slugs = append(slugs, d.Slug)
	}
	return nil
}

func checkPhrases(d PageDefinition, rendered map[string]string) error {
	check := func(where, text string) error {
		lower := strings.ToLower(text)
		for _, p := range bannedPhrases {
			if strings.Contains(lower, p) {
				return fmt.Errorf("page %q %s contains banned phrase %q", d.Slug, where, p)
			}
		}
		for _, s := range superlatives {
			if strings.Contains(lower, s) {
				logger.Warn("promotional superlative in page copy",
					"page", d.Slug, "where", where, "phrase", s)
			}
		}
		return nil
	}

	for key, val := range d.Facts {
		if err := check("fact "+key, val); err != nil {
			return err
		}
	}
	for slot, text := range rendered {
		if err := check("slot "+slot, text); err != nil {
			return err
		}
	}
	return nil
}

func checkLengths(slug string, rendered map[string]string) error {
	for slot, text := range rendered {
		limit, ok := defaultSlotLimits[slot]
		if !ok {
			limit = genericSlotLimit
		}
		if len(text) > limit {
			return fmt.Errorf("page %q slot %q is %d chars, limit %d", slug, slot, len(text), limit)
		}
	}
	return nil
}

// wordSet is a bag-of-normalized-words fingerprint.
type wordSet map[string]bool

func fingerprint(text string) wordSet {
	out := wordSet{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()[]")
		if len(w) < 2 {
			continue
		}
		out[w] = true
	}
	return out
}

// similarity is Jaccard similarity over normalized word sets:
// 1 - normalized word-set distance.
func similarity(a, b wordSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func joinSlots(rendered map[string]string) string {
	keys := make([]string, 0, len(rendered))
	for k := range rendered {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(rendered[k])
		b.WriteByte(' ')
	}
	return b.String()
}
