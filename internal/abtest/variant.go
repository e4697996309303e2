// Package abtest assigns display variants and rotates affiliate offers
// deterministically. Assignments are session-sticky and bots are always
// pinned to the control path so crawlers index the canonical experience.
package abtest

import (
	"hash/fnv"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Variant identifies a display variant.
type Variant string

const (
	VariantA Variant = "A"
	VariantB Variant = "B"
)

// Variants is the fixed set of display variants.
var Variants = []Variant{VariantA, VariantB}

// Cookie names for the session id and the assigned variant.
const (
	SessionCookie = "cr_session"
	VariantCookie = "cr_variant"
)

// botPattern matches known crawler user agents. Matching is deliberately
// broad: misclassifying a human as a bot costs one control impression,
// misclassifying a crawler as human skews the index.
var botPattern = regexp.MustCompile(`(?i)bot|crawl|spider|slurp|bingpreview|headless|lighthouse|pagespeed|facebookexternalhit|pingdom|gtmetrix`)

// IsBot reports whether the user agent looks like a crawler.
func IsBot(userAgent string) bool {
	return userAgent == "" || botPattern.MatchString(userAgent)
}

// Config holds variant assignment settings.
type Config struct {
	// BThreshold is the share of sessions assigned variant B, in [0, 1].
	BThreshold float64
	// CookieTTL is the lifetime of the session and variant cookies.
	CookieTTL time.Duration
	// Secure marks issued cookies Secure (production).
	Secure bool
}

// Assigner hands out session-sticky variants.
type Assigner struct{ cfg Config }

// NewAssigner creates a variant assigner.
func NewAssigner(cfg Config) *Assigner { return &Assigner{cfg: cfg} }

// Assignment is the result of one GetVariant call.
type Assignment struct {
	Variant   Variant
	SessionID string
	// NewSession is true when cookies were issued on this response.
	NewSession bool
	Bot        bool
}

// GetVariant resolves the variant for a request. Bots always get control
// with no cookie writes. A request with an existing variant cookie keeps
// it unchanged. Otherwise the session id (existing or newly minted) is
// hashed into a percentage bucket and both cookies are set on w.
func (a *Assigner) GetVariant(w http.ResponseWriter, r *http.Request) Assignment {
	if IsBot(r.UserAgent()) {
		return Assignment{Variant: VariantA, Bot: true}
	}

	if c, err := r.Cookie(VariantCookie); err == nil {
		if v := Variant(c.Value); v == VariantA || v == VariantB {
			sessionID := ""
			if sc, err := r.Cookie(SessionCookie); err == nil {
				sessionID = sc.Value
			}
			return Assignment{Variant: v, SessionID: sessionID}
		}
	}

	sessionID := ""
	if sc, err := r.Cookie(SessionCookie); err == nil && sc.Value != "" {
		sessionID = sc.Value
	} else {
		sessionID = uuid.New().String()
	}

	v := BucketVariant(sessionID, a.cfg.BThreshold)

	a.setCookie(w, SessionCookie, sessionID)
	a.setCookie(w, VariantCookie, string(v))

	return Assignment{Variant: v, SessionID: sessionID, NewSession: true}
}

// BucketVariant maps a session id to a variant. FNV-1a keeps the bucketing
// stable across platforms and runtimes.
func BucketVariant(sessionID string, bThreshold float64) Variant {
	if Hash32(sessionID)%100 < uint32(100*bThreshold) {
		return VariantB
	}
	return VariantA
}

// Hash32 is the shared FNV-1a 32-bit string hash for bucketing.
func Hash32(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

func (a *Assigner) setCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(a.cfg.CookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.cfg.Secure,
	})
}
