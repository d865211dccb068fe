package differ

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/driftscope/driftscope/internal/canonical"
	"github.com/driftscope/driftscope/internal/errors"
	"github.com/driftscope/driftscope/internal/logger"
	"github.com/driftscope/driftscope/pkg/types"
)

func testEngine() *Engine {
	return NewEngine(logger.NewWithOutput("error", io.Discard), Options{})
}

func testSnapshot(id string, capturedAt time.Time, objects map[types.ObjectType][]types.ConfigObject) *types.Snapshot {
	return &types.Snapshot{
		TenantID:   "acme",
		ID:         id,
		CapturedAt: capturedAt,
		Objects:    objects,
	}
}

func TestEngine_ComputeDrift_IdenticalSnapshots(t *testing.T) {
	engine := testEngine()
	now := time.Now().UTC()

	snap := testSnapshot("snap-1", now, map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeField: {
			{ID: "F1", Attributes: map[string]interface{}{"name": "Severity", "required": true}},
		},
		types.ObjectTypeWorkflow: {
			{ID: "W1", Attributes: map[string]interface{}{"steps": []interface{}{"open", "closed"}}},
		},
	})

	events, err := engine.ComputeDrift(context.Background(), "acme", snap, snap)
	if err != nil {
		t.Fatalf("ComputeDrift failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected empty set for identical snapshots, got %d events", len(events))
	}
}

func TestEngine_ComputeDrift_RemovedFieldAddedWorkflow(t *testing.T) {
	engine := testEngine()
	now := time.Now().UTC()

	from := testSnapshot("snap-1", now, map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeField: {
			{ID: "F1", Attributes: map[string]interface{}{"name": "Severity"}},
		},
	})
	to := testSnapshot("snap-2", now.Add(time.Hour), map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeWorkflow: {
			{ID: "W1", Attributes: map[string]interface{}{"name": "Release"}},
		},
	})

	events, err := engine.ComputeDrift(context.Background(), "acme", from, to)
	if err != nil {
		t.Fatalf("ComputeDrift failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	// field sorts before workflow on the object_type key
	first := events[0]
	if first.ObjectType != types.ObjectTypeField || first.ObjectID != "F1" {
		t.Errorf("expected field/F1 first, got %s/%s", first.ObjectType, first.ObjectID)
	}
	if first.ChangeType != types.ChangeTypeRemoved {
		t.Errorf("expected removed, got %s", first.ChangeType)
	}
	if first.Classification != types.ClassificationStructural {
		t.Errorf("expected STRUCTURAL, got %s", first.Classification)
	}
	if first.CompletenessPercentage != 100 {
		t.Errorf("expected 100%% completeness, got %d", first.CompletenessPercentage)
	}
	if first.BeforeState == nil || first.AfterState != nil {
		t.Error("removed event must have only a before state")
	}

	second := events[1]
	if second.ObjectType != types.ObjectTypeWorkflow || second.ObjectID != "W1" {
		t.Errorf("expected workflow/W1 second, got %s/%s", second.ObjectType, second.ObjectID)
	}
	if second.ChangeType != types.ChangeTypeAdded {
		t.Errorf("expected added, got %s", second.ChangeType)
	}
	if second.Classification != types.ClassificationConfigChange {
		t.Errorf("expected CONFIG_CHANGE, got %s", second.Classification)
	}
	if second.CompletenessPercentage != 100 {
		t.Errorf("expected 100%% completeness, got %d", second.CompletenessPercentage)
	}
	if second.BeforeState != nil || second.AfterState == nil {
		t.Error("added event must have only an after state")
	}
}

func TestEngine_ComputeDrift_ModifiedObject(t *testing.T) {
	engine := testEngine()
	now := time.Now().UTC()

	from := testSnapshot("snap-1", now, map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeProject: {
			{ID: "P1", Attributes: map[string]interface{}{"key": "CORE", "lead": "x"}},
		},
	})
	to := testSnapshot("snap-2", now.Add(time.Hour), map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeProject: {
			{ID: "P1", Attributes: map[string]interface{}{"key": "CORE", "lead": "y"}},
		},
	})

	events, err := engine.ComputeDrift(context.Background(), "acme", from, to)
	if err != nil {
		t.Fatalf("ComputeDrift failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	event := events[0]
	if event.ChangeType != types.ChangeTypeModified {
		t.Errorf("expected modified, got %s", event.ChangeType)
	}
	if event.BeforeState == nil || event.AfterState == nil {
		t.Error("modified event must have both states")
	}
	if event.Classification != types.ClassificationStructural {
		t.Errorf("expected STRUCTURAL for project, got %s", event.Classification)
	}
}

func TestEngine_ComputeDrift_KeyOrderInsensitive(t *testing.T) {
	engine := testEngine()
	now := time.Now().UTC()

	// Same logical payload, different construction order.
	from := testSnapshot("snap-1", now, map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeField: {
			{ID: "F1", Attributes: map[string]interface{}{"a": 1, "b": 2, "nested": map[string]interface{}{"x": true, "y": false}}},
		},
	})
	to := testSnapshot("snap-2", now.Add(time.Hour), map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeField: {
			{ID: "F1", Attributes: map[string]interface{}{"nested": map[string]interface{}{"y": false, "x": true}, "b": 2, "a": 1}},
		},
	})

	events, err := engine.ComputeDrift(context.Background(), "acme", from, to)
	if err != nil {
		t.Fatalf("ComputeDrift failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("key order must not produce phantom drift, got %d events", len(events))
	}
}

func TestEngine_ComputeDrift_Deterministic(t *testing.T) {
	engine := testEngine()
	now := time.Now().UTC()

	from := testSnapshot("snap-1", now, map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeField: {
			{ID: "F1", Attributes: map[string]interface{}{"name": "a"}},
			{ID: "F2", Attributes: map[string]interface{}{"name": "b"}},
		},
		types.ObjectTypeScope: {
			{ID: "S1", Attributes: map[string]interface{}{"level": "site"}},
		},
	})
	to := testSnapshot("snap-2", now.Add(time.Hour), map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeField: {
			{ID: "F2", Attributes: map[string]interface{}{"name": "b2"}},
			{ID: "F3", Attributes: map[string]interface{}{"name": "c"}},
		},
		types.ObjectTypeScope: {
			{ID: "S1", Attributes: map[string]interface{}{"level": "project"}},
		},
	})

	first, err := engine.ComputeDrift(context.Background(), "acme", from, to)
	if err != nil {
		t.Fatalf("first ComputeDrift failed: %v", err)
	}
	second, err := engine.ComputeDrift(context.Background(), "acme", from, to)
	if err != nil {
		t.Fatalf("second ComputeDrift failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("event counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].CanonicalHash != second[i].CanonicalHash {
			t.Errorf("event %d hash differs across runs", i)
		}
		if first[i].ID == second[i].ID {
			t.Errorf("event %d reused an ephemeral ID across runs", i)
		}
	}

	firstSet, err := canonical.HashEventSet(first)
	if err != nil {
		t.Fatalf("set hash failed: %v", err)
	}
	secondSet, err := canonical.HashEventSet(second)
	if err != nil {
		t.Fatalf("set hash failed: %v", err)
	}
	if firstSet != secondSet {
		t.Errorf("set-level hash differs across runs: %s vs %s", firstSet, secondSet)
	}
}

func TestEngine_ComputeDrift_NoProvenanceGuessing(t *testing.T) {
	engine := testEngine()
	now := time.Now().UTC()

	// Payload carries plausible actor metadata; it must never leak into
	// the event's provenance fields.
	from := testSnapshot("snap-1", now, map[types.ObjectType][]types.ConfigObject{})
	to := testSnapshot("snap-2", now.Add(time.Hour), map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeAutomationRule: {
			{ID: "R1", Attributes: map[string]interface{}{
				"last_modified_by": "alice@example.com",
				"updated_at":       now.Format(time.RFC3339),
			}},
		},
	})

	events, err := engine.ComputeDrift(context.Background(), "acme", from, to)
	if err != nil {
		t.Fatalf("ComputeDrift failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	event := events[0]
	if event.Actor != types.ActorUnknown || event.Source != types.SourceUnknown {
		t.Errorf("provenance was inferred: actor=%q source=%q", event.Actor, event.Source)
	}
	if event.ActorConfidence != types.ActorConfidenceNone {
		t.Errorf("actor confidence was inferred: %q", event.ActorConfidence)
	}
}

func TestEngine_ComputeDrift_PairingErrors(t *testing.T) {
	engine := testEngine()
	now := time.Now().UTC()

	valid := testSnapshot("snap-1", now, nil)
	later := testSnapshot("snap-2", now.Add(time.Hour), nil)
	otherTenant := &types.Snapshot{TenantID: "rival", ID: "snap-3", CapturedAt: now}

	tests := []struct {
		name   string
		caller types.TenantID
		from   *types.Snapshot
		to     *types.Snapshot
		kind   errors.Kind
	}{
		{"nil from", "acme", nil, valid, errors.KindInvalidSnapshotPairing},
		{"nil to", "acme", valid, nil, errors.KindInvalidSnapshotPairing},
		{"reversed order", "acme", later, valid, errors.KindInvalidSnapshotPairing},
		{"foreign snapshot", "acme", valid, otherTenant, errors.KindCrossTenantAccessDenied},
		{"caller mismatch", "rival", valid, later, errors.KindCrossTenantAccessDenied},
		{"empty caller", "", valid, later, errors.KindCrossTenantAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.ComputeDrift(context.Background(), tt.caller, tt.from, tt.to)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.IsKind(err, tt.kind) {
				t.Errorf("expected kind %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestEngine_ComputeDrift_MalformedObjectPayload(t *testing.T) {
	engine := testEngine()
	now := time.Now().UTC()

	from := testSnapshot("snap-1", now, map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeScope: {
			{ID: "S1", Attributes: map[string]interface{}{"level": "site"}},
		},
	})
	to := testSnapshot("snap-2", now.Add(time.Hour), map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeScope: {
			{ID: "S1", Attributes: map[string]interface{}{}, ParseError: "unexpected end of JSON input"},
		},
	})

	events, err := engine.ComputeDrift(context.Background(), "acme", from, to)
	if err != nil {
		t.Fatalf("a per-object payload problem must not fail the computation: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	event := events[0]
	if event.CompletenessPercentage != 0 {
		t.Errorf("expected 0%% completeness for unparseable payload, got %d", event.CompletenessPercentage)
	}
	if len(event.MissingDataReference) == 0 {
		t.Error("expected a missing-data reference for the failed dataset")
	}
}

func TestEngine_ComputeDrift_ParseFailureIsARecordedDifference(t *testing.T) {
	engine := testEngine()
	now := time.Now().UTC()

	// Identical surviving attributes on both sides; only the parse state
	// differs. The event must still record a difference between its
	// states, not two canonically equal fragments.
	from := testSnapshot("snap-1", now, map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeScope: {
			{ID: "S1", Attributes: map[string]interface{}{"level": "site"}},
		},
	})
	to := testSnapshot("snap-2", now.Add(time.Hour), map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeScope: {
			{ID: "S1", Attributes: map[string]interface{}{"level": "site"}, ParseError: "truncated payload"},
		},
	})

	events, err := engine.ComputeDrift(context.Background(), "acme", from, to)
	if err != nil {
		t.Fatalf("ComputeDrift failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	event := events[0]
	if event.ChangeType != types.ChangeTypeModified {
		t.Errorf("change type = %s, want modified", event.ChangeType)
	}
	if event.CompletenessPercentage != 0 {
		t.Errorf("completeness = %d, want 0", event.CompletenessPercentage)
	}
	equal, err := canonical.Equal(event.BeforeState, event.AfterState)
	if err != nil {
		t.Fatal(err)
	}
	if equal {
		t.Error("before and after states are canonically equal for a modified event")
	}
	if event.AfterState["parse_error"] != "truncated payload" {
		t.Errorf("after state must carry the parse failure, got %v", event.AfterState["parse_error"])
	}
}

func TestEngine_ComputeDrift_PartialDependencyDataset(t *testing.T) {
	engine := testEngine()
	now := time.Now().UTC()

	from := testSnapshot("snap-1", now, map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeScope: {
			{ID: "S1", Attributes: map[string]interface{}{"level": "site"}},
		},
	})
	to := testSnapshot("snap-2", now.Add(time.Hour), map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeScope: {
			{ID: "S1", Attributes: map[string]interface{}{"level": "project"}},
		},
	})
	to.Availability = types.SnapshotAvailability{
		types.ObjectTypeScope: {
			Dataset: "scope_dataset",
			Status:  types.CaptureFull,
			Dependencies: []types.DependencyCapture{
				{Dataset: "permission_dataset", Status: types.CapturePartial},
			},
		},
	}

	events, err := engine.ComputeDrift(context.Background(), "acme", from, to)
	if err != nil {
		t.Fatalf("ComputeDrift failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	event := events[0]
	if event.ChangeType != types.ChangeTypeModified {
		t.Errorf("expected modified, got %s", event.ChangeType)
	}
	if event.CompletenessPercentage != 85 {
		t.Errorf("expected 85%% completeness, got %d", event.CompletenessPercentage)
	}
	if len(event.MissingDataReference) != 1 || event.MissingDataReference[0] != "permission_dataset" {
		t.Errorf("expected [permission_dataset], got %v", event.MissingDataReference)
	}
}

func TestEngine_ComputeDrift_EventsValidate(t *testing.T) {
	engine := testEngine()
	now := time.Now().UTC()

	from := testSnapshot("snap-1", now, map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeField:    {{ID: "F1", Attributes: map[string]interface{}{"v": 1}}},
		types.ObjectTypeWorkflow: {{ID: "W1", Attributes: map[string]interface{}{"v": 1}}},
	})
	to := testSnapshot("snap-2", now.Add(time.Hour), map[types.ObjectType][]types.ConfigObject{
		types.ObjectTypeField:   {{ID: "F1", Attributes: map[string]interface{}{"v": 2}}},
		types.ObjectTypeProject: {{ID: "P1", Attributes: map[string]interface{}{"v": 1}}},
	})

	events, err := engine.ComputeDrift(context.Background(), "acme", from, to)
	if err != nil {
		t.Fatalf("ComputeDrift failed: %v", err)
	}
	for i := range events {
		if err := events[i].Validate(); err != nil {
			t.Errorf("emitted event %d violates invariants: %v", i, err)
		}
		if events[i].CanonicalHash == "" {
			t.Errorf("emitted event %d has no canonical hash", i)
		}
	}
}
