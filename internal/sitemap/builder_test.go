package sitemap

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightlane/cardrank/internal/domain"
	"github.com/brightlane/cardrank/internal/rollout"
)

func testConfig(staged, hardCap int, slugs []string) rollout.Config {
	return rollout.Config{
		StagedLimit: staged,
		HardCap:     hardCap,
		BaseURL:     "https://www.cardrank.example",
		StaticURLs:  []string{"/", "/about", "/privacy"},
		Promoted: map[domain.PageType][]string{
			domain.PageComparison: slugs,
		},
	}
}

func TestBuild_CapsProgrammaticURLs(t *testing.T) {
	slugs := make([]string, 30)
	for i := range slugs {
		slugs[i] = fmt.Sprintf("pair-%02d", i)
	}
	reg := rollout.New(testConfig(5, 20, slugs))

	set := Build(reg, State{})

	programmatic := 0
	for _, u := range set.URLs {
		if strings.Contains(u.Loc, "/compare/") {
			programmatic++
		}
	}
	assert.Equal(t, 5, programmatic, "staged limit caps emission")
	assert.Len(t, set.URLs, 8, "3 static URLs always present")
}

func TestBuild_HardCapIsAbsolute(t *testing.T) {
	slugs := make([]string, 30)
	for i := range slugs {
		slugs[i] = fmt.Sprintf("pair-%02d", i)
	}
	reg := rollout.New(testConfig(100, 10, slugs))

	set := Build(reg, State{})

	programmatic := 0
	for _, u := range set.URLs {
		if strings.Contains(u.Loc, "/compare/") {
			programmatic++
		}
	}
	assert.Equal(t, 10, programmatic)
}

func TestBuild_DemotedPagesExcludedBeforeCap(t *testing.T) {
	reg := rollout.New(testConfig(2, 20, []string{"a", "b", "c"}))
	st := State{Demoted: map[string]bool{"a": true}}

	set := Build(reg, st)

	var locs []string
	for _, u := range set.URLs {
		if strings.Contains(u.Loc, "/compare/") {
			locs = append(locs, u.Loc)
		}
	}
	// "a" is demoted; its slot goes to "c" rather than being wasted.
	assert.Equal(t, []string{
		"https://www.cardrank.example/compare/b",
		"https://www.cardrank.example/compare/c",
	}, locs)
}

func TestBuild_TierAffectsPriorityAndChangeFreq(t *testing.T) {
	reg := rollout.New(testConfig(10, 20, []string{"hot", "cold"}))
	st := State{
		TierByIssuer: map[string]domain.Tier{"issuer-hot": domain.TierA, "issuer-cold": domain.TierB},
		IssuerBySlug: map[string]string{"hot": "issuer-hot", "cold": "issuer-cold"},
	}

	set := Build(reg, st)

	byLoc := map[string]URL{}
	for _, u := range set.URLs {
		byLoc[u.Loc] = u
	}

	hot := byLoc["https://www.cardrank.example/compare/hot"]
	assert.Equal(t, "0.9", hot.Priority)
	assert.Equal(t, "daily", hot.ChangeFreq)

	cold := byLoc["https://www.cardrank.example/compare/cold"]
	assert.Equal(t, "0.6", cold.Priority)
	assert.Equal(t, "weekly", cold.ChangeFreq)
}

func TestBuild_KillSwitchLeavesOnlyStaticURLs(t *testing.T) {
	cfg := testConfig(10, 20, []string{"a", "b"})
	cfg.KillSwitch = true
	reg := rollout.New(cfg)

	set := Build(reg, State{})

	assert.Len(t, set.URLs, 3)
	for _, u := range set.URLs {
		assert.NotContains(t, u.Loc, "/compare/")
	}
}

func TestRender_ValidXML(t *testing.T) {
	reg := rollout.New(testConfig(10, 20, []string{"a"}))
	out, err := Render(Build(reg, State{}))
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, xmlHeader()))
	assert.Contains(t, s, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, s, "<loc>https://www.cardrank.example/compare/a</loc>")
}

func xmlHeader() string { return "<?xml version=\"1.0\" encoding=\"UTF-8\"?>" }
