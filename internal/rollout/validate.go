package rollout

import "fmt"

// ValidateCounts fails when the statically promoted programmatic page
// count exceeds the hard cap. This runs at build time so configuration
// drift is caught before publication, even when every individual page is
// legitimately promoted.
func ValidateCounts(r *Registry) error {
	count := r.PromotedCount()
	if count > r.cfg.HardCap {
		return fmt.Errorf("rollout: %d promoted programmatic pages exceed hard cap %d",
			count, r.cfg.HardCap)
	}
	return nil
}
