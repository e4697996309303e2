// Package domain holds the shared value types of the decision core:
// issuer metrics and tiers, page health state, affiliate offers, and
// programmatic page classification. Types here carry no behavior beyond
// derivation helpers so every engine can depend on them without cycles.
package domain
