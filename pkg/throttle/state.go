// Package throttle tracks the remote API's query-cost bucket and holds back
// requests while the bucket is nearly empty. The bucket is reported in the
// cost extension of every GraphQL response (throttleStatus) and is stored
// per shop, so concurrent runs against one shop share the same view.
package throttle

import (
	"time"
)

// Defaults for throttle decisions.
const (
	// DefaultMinAvailable is the bucket level below which requests wait.
	DefaultMinAvailable = 100

	// DefaultMaxStale is how old a stored state may be before it is ignored.
	DefaultMaxStale = 60 * time.Second

	// DefaultMaxWait caps a single throttle wait.
	DefaultMaxWait = 10 * time.Second
)

// Status is the throttleStatus object of the cost extension.
type Status struct {
	MaximumAvailable   float64 `json:"maximumAvailable"`
	CurrentlyAvailable float64 `json:"currentlyAvailable"`
	RestoreRate        float64 `json:"restoreRate"`
}

// State is a Status with the time it was observed.
type State struct {
	Status

	// LastUpdate is when this state was last reported by the remote API.
	LastUpdate time.Time `json:"last_update"`
}

// IsStale returns true if the state is older than maxAge.
// Stale state no longer reflects the bucket and must not delay requests.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsWait returns true when the bucket is below minAvailable.
func (s *State) NeedsWait(minAvailable float64) bool {
	return s.CurrentlyAvailable < minAvailable
}

// TimeUntilAvailable returns how long the bucket needs to restore up to
// minAvailable, capped at maxWait. Time already elapsed since the last
// update counts towards the restore.
func (s *State) TimeUntilAvailable(minAvailable float64, maxWait time.Duration) time.Duration {
	if !s.NeedsWait(minAvailable) {
		return 0
	}
	if s.RestoreRate <= 0 {
		return maxWait
	}

	deficit := minAvailable - s.CurrentlyAvailable
	wait := time.Duration(deficit / s.RestoreRate * float64(time.Second))
	wait -= time.Since(s.LastUpdate)

	switch {
	case wait < 0:
		return 0
	case wait > maxWait:
		return maxWait
	default:
		return wait
	}
}
