package tier

import "errors"

// ErrAllFailed is returned when no issuer in a cycle could be evaluated.
// Partial failure is tolerated; total failure is not.
var ErrAllFailed = errors.New("tier evaluation: all issuers failed")
