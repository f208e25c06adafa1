package models

import "time"

// Table describes where a remote store keeps the environment: the table name,
// the column or field holding the value, and the short store name used in
// errors and logs.
type Table struct {
	Name  string
	Field string
	Store string
}

var (
	// ProfileTable is the authoritative Remote Primary location.
	ProfileTable = Table{Name: "profiles", Field: "last_selected_environment", Store: "profile"}

	// OnboardingTable is the Remote Secondary location, read by onboarding.
	OnboardingTable = Table{Name: "onboarding_preferences", Field: "learning_environment", Store: "onboarding"}
)

// UpdatedAtField is the column carrying the last-writer timestamp in both tables.
const UpdatedAtField = "environment_updated_at"

// EnvironmentRecord is the environment as stored in one remote table row.
type EnvironmentRecord struct {
	UserID      UserID      `json:"user_id"`
	Environment Environment `json:"environment"`
	// UpdatedAt orders concurrent writers. Stores keep the newest.
	UpdatedAt time.Time `json:"updated_at"`
}

// Local cache keys.
const (
	CacheKeyEnvironment = "environment"
	CacheKeyPreferences = "userPreferences"
)
