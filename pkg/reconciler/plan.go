package reconciler

import "github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"

// Action is what an automatic check decided to do.
type Action struct {
	// Heal is set when the save path must run with Target.
	Heal   bool
	Target models.Environment
	Reason string
}

// PlanCheck decides the automatic check's action from observed readings.
//
// Stores that agree need nothing. Otherwise Remote Primary is trusted: when
// it holds a value and the in-memory context or the Local Cache differ from
// it, the stores are healed toward it. Without a primary value nothing is
// done automatically.
func PlanCheck(status models.SyncStatus) Action {
	if models.Agree(status.Readings) {
		return Action{Reason: "in sync"}
	}

	primary := status.Value(models.SourcePrimaryRemote)
	if primary.IsZero() {
		return Action{Reason: "no primary value"}
	}

	if status.Value(models.SourceContext) != primary || status.Value(models.SourceLocalCache) != primary {
		return Action{Heal: true, Target: primary, Reason: "context or cache differ from primary"}
	}
	return Action{Reason: "primary, context and cache agree"}
}

// sourcePriority is the order a user-initiated sync looks for a value.
var sourcePriority = []models.Source{
	models.SourcePrimaryRemote,
	models.SourceContext,
	models.SourceLocalCache,
	models.SourceVisualMarker,
}

// ResolveSourceOfTruth returns the first value found in priority order, or
// fallback when every store is empty.
func ResolveSourceOfTruth(status models.SyncStatus, fallback models.Environment) (models.Environment, models.Source) {
	for _, src := range sourcePriority {
		if v := status.Value(src); !v.IsZero() {
			return v, src
		}
	}
	return fallback, ""
}
