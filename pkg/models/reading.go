package models

import "time"

// Source identifies one of the stores holding a copy of the environment.
type Source string

const (
	SourcePrimaryRemote   Source = "primary-remote"
	SourceSecondaryRemote Source = "secondary-remote"
	SourceLocalCache      Source = "local-cache"
	SourceVisualMarker    Source = "visual-marker"
	SourceContext         Source = "in-memory-context"
)

// AllSources returns every source in the order status readings are reported.
func AllSources() []Source {
	return []Source{
		SourcePrimaryRemote,
		SourceSecondaryRemote,
		SourceLocalCache,
		SourceVisualMarker,
		SourceContext,
	}
}

// StoreReading is the environment as seen from one store at one instant.
// An empty Value means the store holds nothing. UpdatedAt is set for remote
// rows only.
type StoreReading struct {
	Source    Source      `json:"source"`
	Value     Environment `json:"value,omitempty"`
	ReadAt    time.Time   `json:"read_at"`
	UpdatedAt time.Time   `json:"updated_at,omitempty"`
}

// Present reports whether the store held a value.
func (r StoreReading) Present() bool { return !r.Value.IsZero() }

// SyncStatus aggregates one reading per store.
type SyncStatus struct {
	UserID      UserID         `json:"user_id"`
	Readings    []StoreReading `json:"readings"`
	AllInSync   bool           `json:"all_in_sync"`
	ErrorDetail string         `json:"error_detail,omitempty"`
	CheckedAt   time.Time      `json:"checked_at"`
}

// NewSyncStatus builds a status from readings and derives AllInSync.
func NewSyncStatus(userID UserID, readings []StoreReading, checkedAt time.Time) SyncStatus {
	return SyncStatus{
		UserID:    userID,
		Readings:  readings,
		AllInSync: Agree(readings),
		CheckedAt: checkedAt,
	}
}

// Agree reports whether all non-empty readings hold the same value.
// Empty readings never count as disagreement.
func Agree(readings []StoreReading) bool {
	var seen Environment
	for _, r := range readings {
		if !r.Present() {
			continue
		}
		if seen.IsZero() {
			seen = r.Value
			continue
		}
		if r.Value != seen {
			return false
		}
	}
	return true
}

// Reading returns the reading for source, if the status has one.
func (s SyncStatus) Reading(source Source) (StoreReading, bool) {
	for _, r := range s.Readings {
		if r.Source == source {
			return r, true
		}
	}
	return StoreReading{}, false
}

// Value returns the environment read from source, or "" when absent.
func (s SyncStatus) Value(source Source) Environment {
	r, _ := s.Reading(source)
	return r.Value
}

// LatestWrite returns the newest remote row timestamp, or the zero time when
// no remote row was read.
func (s SyncStatus) LatestWrite() time.Time {
	var latest time.Time
	for _, r := range s.Readings {
		if r.UpdatedAt.After(latest) {
			latest = r.UpdatedAt
		}
	}
	return latest
}

// Distinct returns the distinct non-empty values in reading order.
func (s SyncStatus) Distinct() []Environment {
	var out []Environment
	for _, r := range s.Readings {
		if !r.Present() {
			continue
		}
		dup := false
		for _, v := range out {
			if v == r.Value {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r.Value)
		}
	}
	return out
}
