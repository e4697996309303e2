package content

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defWith(slug string, entities []string, seed int, intro string) PageDefinition {
	return PageDefinition{
		Slug:          slug,
		PageType:      "comparison",
		IntentKey:     "compare-rewards",
		AudienceKey:   "students",
		VariationSeed: seed,
		IssuerID:      "capital-trust",
		Entities:      entities,
		Facts:         map[string]string{"apr_low": "19.24"},
		Slots:         map[string]string{"intro": intro},
	}
}

func words(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%02d", prefix, i)
	}
	return out
}

func TestDeriveTokenSet_CommutativeEntityHash(t *testing.T) {
	a := DeriveTokenSet(defWith("a", []string{"Visa Platinum", "Visa Gold"}, 1, "x"))
	b := DeriveTokenSet(defWith("b", []string{"Visa Gold", "Visa Platinum"}, 1, "x"))
	assert.Equal(t, a.EntityHash, b.EntityHash, "entity order must not matter")

	c := DeriveTokenSet(defWith("c", []string{"Visa Gold", "Mastercard Core"}, 1, "x"))
	assert.NotEqual(t, a.EntityHash, c.EntityHash)
}

func TestCheckCorpus_DuplicateTokenSetRejected(t *testing.T) {
	defs := []PageDefinition{
		defWith("first", []string{"Visa Platinum", "Visa Gold"}, 1, "completely distinct words here about rewards"),
		defWith("second", []string{"Visa Gold", "Visa Platinum"}, 1, "other copy entirely unrelated about travel perks"),
	}

	err := CheckCorpus(defs, GuardConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"second"`)
	assert.Contains(t, err.Error(), `"first"`)
}

func TestCheckCorpus_DifferentSeedAccepted(t *testing.T) {
	defs := []PageDefinition{
		defWith("first", []string{"Visa Platinum", "Visa Gold"}, 1, strings.Join(words("alpha", 20), " ")),
		defWith("second", []string{"Visa Gold", "Visa Platinum"}, 2, strings.Join(words("beta", 20), " ")),
	}

	assert.NoError(t, CheckCorpus(defs, GuardConfig{}))
}

func TestCheckCorpus_SimilarityBoundary(t *testing.T) {
	shared := words("shared", 18)

	t.Run("90 percent similar rejected", func(t *testing.T) {
		// inter=18, union=20 -> 0.90
		a := append(append([]string{}, shared...), "uniquea")
		b := append(append([]string{}, shared...), "uniqueb")
		defs := []PageDefinition{
			defWith("first", []string{"Card A", "Card B"}, 1, strings.Join(a, " ")),
			defWith("second", []string{"Card C", "Card D"}, 1, strings.Join(b, " ")),
		}

		err := CheckCorpus(defs, GuardConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"second"`)
		assert.Contains(t, err.Error(), `"first"`)
	})

	t.Run("84 percent similar accepted", func(t *testing.T) {
		// inter=16, union=19 -> 0.842
		sixteen := words("shared", 16)
		a := append(append([]string{}, sixteen...), "uniquea", "uniqueaa")
		b := append(append([]string{}, sixteen...), "uniqueb")
		defs := []PageDefinition{
			defWith("first", []string{"Card A", "Card B"}, 1, strings.Join(a, " ")),
			defWith("second", []string{"Card C", "Card D"}, 1, strings.Join(b, " ")),
		}

		assert.NoError(t, CheckCorpus(defs, GuardConfig{}))
	})
}

func TestCheckCorpus_BannedPhraseInSlot(t *testing.T) {
	defs := []PageDefinition{
		defWith("page", []string{"Card A", "Card B"}, 1, "Apply now with guaranteed approval today"),
	}

	err := CheckCorpus(defs, GuardConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "guaranteed approval")
}

func TestCheckCorpus_BannedPhraseInFact(t *testing.T) {
	d := defWith("page", []string{"Card A", "Card B"}, 1, "plain copy")
	d.Facts["pitch"] = "The #1 card for students"

	err := CheckCorpus([]PageDefinition{d}, GuardConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "#1")
}

func TestCheckCorpus_LengthOverflowRejected(t *testing.T) {
	long := strings.Repeat("lengthy words in the introduction block ", 20) // > 600 chars
	defs := []PageDefinition{
		defWith("page", []string{"Card A", "Card B"}, 1, long),
	}

	err := CheckCorpus(defs, GuardConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `slot "intro"`)
}

func TestSimilarity_EdgeCases(t *testing.T) {
	assert.Equal(t, 1.0, similarity(wordSet{}, wordSet{}))
	assert.Equal(t, 0.0, similarity(fingerprint("alpha beta"), fingerprint("gamma delta")))
	assert.Equal(t, 1.0, similarity(fingerprint("alpha beta"), fingerprint("beta alpha")))
}

func TestFingerprint_Normalizes(t *testing.T) {
	fp := fingerprint("Rewards, rewards! REWARDS? (rewards)")
	assert.Len(t, fp, 1)
	assert.True(t, fp["rewards"])
}
