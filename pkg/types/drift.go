package types

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Provenance is deliberately unknown: the engine never infers who made a
// change or why, even when snapshot payloads carry plausible signals.
const (
	ActorUnknown        = "unknown"
	SourceUnknown       = "unknown"
	ActorConfidenceNone = "none"
)

// CompletenessLevels is the discrete set of valid completeness percentages.
var CompletenessLevels = []int{0, 25, 50, 85, 100}

// IsValidCompleteness reports whether p is one of the fixed levels.
func IsValidCompleteness(p int) bool {
	for _, level := range CompletenessLevels {
		if p == level {
			return true
		}
	}
	return false
}

// TimeWindow is the capture interval a drift event was observed over.
type TimeWindow struct {
	FromCapturedAt time.Time `json:"from_captured_at"`
	ToCapturedAt   time.Time `json:"to_captured_at"`
}

// DriftEvent represents one observed change between two snapshots of the
// same tenant. Its ID is generated fresh per computation; determinism
// guarantees apply to content (via CanonicalHash), not to the ID.
type DriftEvent struct {
	ID                     string                 `json:"drift_event_id"`
	TenantID               TenantID               `json:"tenant_id"`
	FromSnapshotID         string                 `json:"from_snapshot_id"`
	ToSnapshotID           string                 `json:"to_snapshot_id"`
	TimeWindow             TimeWindow             `json:"time_window"`
	ObjectType             ObjectType             `json:"object_type"`
	ObjectID               string                 `json:"object_id"`
	ChangeType             ChangeType             `json:"change_type"`
	Classification         Classification         `json:"classification"`
	BeforeState            map[string]interface{} `json:"before_state"`
	AfterState             map[string]interface{} `json:"after_state"`
	Actor                  string                 `json:"actor"`
	Source                 string                 `json:"source"`
	ActorConfidence        string                 `json:"actor_confidence"`
	CompletenessPercentage int                    `json:"completeness_percentage"`
	MissingDataReference   []string               `json:"missing_data_reference"`
	CanonicalHash          string                 `json:"canonical_hash"`
}

// Validate enforces the drift event invariants. A violation here is an
// internal-consistency failure, not bad user input: the engine must abort
// the event's construction rather than emit corrupted output.
func (e *DriftEvent) Validate() error {
	if strings.TrimSpace(string(e.TenantID)) == "" {
		return fmt.Errorf("drift event tenant ID is required")
	}
	if e.FromSnapshotID == "" || e.ToSnapshotID == "" {
		return fmt.Errorf("drift event snapshot linkage is required")
	}
	if e.ObjectID == "" {
		return fmt.Errorf("drift event object ID is required")
	}
	if !e.ChangeType.IsValid() {
		return fmt.Errorf("invalid change type: %s", e.ChangeType)
	}
	if !e.Classification.IsValid() {
		return fmt.Errorf("invalid classification: %s", e.Classification)
	}

	switch e.ChangeType {
	case ChangeTypeAdded:
		if e.BeforeState != nil {
			return fmt.Errorf("added event for %s must not have a before state", e.ObjectID)
		}
		if e.AfterState == nil {
			return fmt.Errorf("added event for %s must have an after state", e.ObjectID)
		}
	case ChangeTypeRemoved:
		if e.BeforeState == nil {
			return fmt.Errorf("removed event for %s must have a before state", e.ObjectID)
		}
		if e.AfterState != nil {
			return fmt.Errorf("removed event for %s must not have an after state", e.ObjectID)
		}
	case ChangeTypeModified:
		if e.BeforeState == nil || e.AfterState == nil {
			return fmt.Errorf("modified event for %s must have both states", e.ObjectID)
		}
		if reflect.DeepEqual(e.BeforeState, e.AfterState) {
			return fmt.Errorf("modified event for %s records no difference", e.ObjectID)
		}
	}

	// The unknown triad is a hard invariant, not a default.
	if e.Actor != ActorUnknown || e.Source != SourceUnknown || e.ActorConfidence != ActorConfidenceNone {
		return fmt.Errorf("event for %s carries inferred provenance", e.ObjectID)
	}

	if !IsValidCompleteness(e.CompletenessPercentage) {
		return fmt.Errorf("invalid completeness percentage: %d", e.CompletenessPercentage)
	}
	if e.CompletenessPercentage == 100 && len(e.MissingDataReference) > 0 {
		return fmt.Errorf("event for %s is fully complete but lists missing data", e.ObjectID)
	}
	if e.CompletenessPercentage < 100 && len(e.MissingDataReference) == 0 {
		return fmt.Errorf("event for %s is incomplete but lists no missing data", e.ObjectID)
	}

	return nil
}

// CompareEvents imposes the single total order on drift events:
// object_type, then object_id, then change_type, then classification, all
// lexicographic, ties broken left to right.
func CompareEvents(a, b *DriftEvent) int {
	if c := strings.Compare(string(a.ObjectType), string(b.ObjectType)); c != 0 {
		return c
	}
	if c := strings.Compare(a.ObjectID, b.ObjectID); c != 0 {
		return c
	}
	if c := strings.Compare(string(a.ChangeType), string(b.ChangeType)); c != 0 {
		return c
	}
	return strings.Compare(string(a.Classification), string(b.Classification))
}
