package override

import "time"

// Tier identifies one of the fallback strategies used to persist an
// override record.
type Tier string

// Recording tiers in preference order, plus the terminal no-tier value.
const (
	TierAmend          Tier = "amend"
	TierOverrideCommit Tier = "override-commit"
	TierLogAppend      Tier = "log-append"
	TierNone           Tier = "none"
)

// Outcome reports which tier persisted the override record.
type Outcome struct {
	Tier Tier
}

// Clock abstracts time-dependent functionality for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the standard library.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
