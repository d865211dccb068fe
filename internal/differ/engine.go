// Package differ implements the drift detection engine: a pure function
// of two tenant snapshots producing a deterministic, fully disclosed set
// of drift events.
package differ

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/driftscope/driftscope/internal/canonical"
	"github.com/driftscope/driftscope/internal/errors"
	"github.com/driftscope/driftscope/internal/logger"
	"github.com/driftscope/driftscope/internal/tenant"
	"github.com/driftscope/driftscope/pkg/types"
)

// Options configures the engine.
type Options struct {
	// Parallelism bounds how many object types are diffed concurrently.
	// Zero means one worker per known object type.
	Parallelism int
}

// Engine computes drift between two snapshots of the same tenant. It
// holds no long-lived state: every computation is self-contained, so
// concurrent computations for different tenants or snapshot pairs are
// fully independent.
type Engine struct {
	resolver   *Resolver
	classifier *Classifier
	estimator  *Estimator
	log        logger.Logger
}

// NewEngine creates a drift engine.
func NewEngine(log logger.Logger, opts Options) *Engine {
	parallelism := opts.Parallelism
	if parallelism == 0 {
		parallelism = len(types.KnownObjectTypes)
	}
	return &Engine{
		resolver:   NewResolver(parallelism),
		classifier: NewClassifier(),
		estimator:  NewEstimator(),
		log:        log,
	}
}

// ComputeDrift computes the exact set of drift events between two
// snapshots. The caller tenant must match both snapshots, and the pair
// must be ordered by capture time; violations fail fast, before any
// computation. The returned events are in the 4-key total order.
func (e *Engine) ComputeDrift(ctx context.Context, caller types.TenantID, from, to *types.Snapshot) ([]types.DriftEvent, error) {
	if from == nil || to == nil {
		return nil, errors.New(errors.KindInvalidSnapshotPairing, "both snapshots are required")
	}
	if err := tenant.Authorize(caller, from, to); err != nil {
		return nil, err
	}
	if from.CapturedAt.After(to.CapturedAt) {
		return nil, errors.Newf(errors.KindInvalidSnapshotPairing,
			"snapshot %s was captured after %s", from.ID, to.ID)
	}
	if err := from.Validate(); err != nil {
		return nil, errors.Newf(errors.KindMalformedSnapshotPayload, "snapshot %s is invalid", from.ID).WithCause(err)
	}
	if err := to.Validate(); err != nil {
		return nil, errors.Newf(errors.KindMalformedSnapshotPayload, "snapshot %s is invalid", to.ID).WithCause(err)
	}

	started := time.Now()

	raw, err := e.resolver.Resolve(ctx, from, to)
	if err != nil {
		return nil, err
	}

	events := make([]types.DriftEvent, 0, len(raw))
	window := types.TimeWindow{FromCapturedAt: from.CapturedAt, ToCapturedAt: to.CapturedAt}
	for _, change := range raw {
		event, err := e.buildEvent(caller, from, to, window, change)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return types.CompareEvents(&events[i], &events[j]) < 0
	})

	e.log.WithFields(map[string]interface{}{
		"tenant":   string(caller),
		"from":     from.ID,
		"to":       to.ID,
		"events":   len(events),
		"duration": time.Since(started).String(),
	}).Debug("drift computation complete")

	return events, nil
}

// buildEvent assembles, classifies, estimates, validates, and hashes one
// drift event. An invariant violation aborts the computation rather than
// emitting corrupted output.
func (e *Engine) buildEvent(caller types.TenantID, from, to *types.Snapshot, window types.TimeWindow, change rawChange) (*types.DriftEvent, error) {
	visibilityFlag := e.classifier.VisibilityFlagged(change)

	event := &types.DriftEvent{
		ID:              uuid.NewString(),
		TenantID:        caller,
		FromSnapshotID:  from.ID,
		ToSnapshotID:    to.ID,
		TimeWindow:      window,
		ObjectType:      change.ObjectType,
		ObjectID:        change.ObjectID,
		ChangeType:      change.ChangeType,
		Classification:  e.classifier.Classify(change.ObjectType, change.ChangeType, visibilityFlag),
		Actor:           types.ActorUnknown,
		Source:          types.SourceUnknown,
		ActorConfidence: types.ActorConfidenceNone,
	}
	if change.Before != nil {
		event.BeforeState = stateOf(change.Before)
	}
	if change.After != nil {
		event.AfterState = stateOf(change.After)
	}

	event.CompletenessPercentage, event.MissingDataReference = e.estimator.Estimate(e.evidenceFor(from, to, change))

	if err := event.Validate(); err != nil {
		return nil, errors.Newf(errors.KindInvariantViolation,
			"refusing to emit inconsistent event for %s/%s", change.ObjectType, change.ObjectID).WithCause(err)
	}

	hash, err := canonical.HashEvent(event)
	if err != nil {
		return nil, errors.New(errors.KindInvariantViolation, "event could not be canonically hashed").WithCause(err)
	}
	event.CanonicalHash = hash

	return event, nil
}

// evidenceFor gathers the dataset availability on both sides of a change
// plus any payload parse failure.
func (e *Engine) evidenceFor(from, to *types.Snapshot, change rawChange) Evidence {
	ev := Evidence{
		Before: from.Availability.Capture(change.ObjectType),
		After:  to.Availability.Capture(change.ObjectType),
	}
	if (change.Before != nil && change.Before.ParseError != "") ||
		(change.After != nil && change.After.ParseError != "") {
		ev.ParseFailed = true
		ev.FailedDataset = change.ObjectType.Dataset()
	}
	return ev
}

// stateOf returns the snapshot fragment recorded on an event. A non-nil
// object always yields a non-nil state, even when its attribute map is
// empty, so the nullity invariants hold. A parse failure is part of the
// recorded state: an object whose payload broke differs from one whose
// payload did not, even when the surviving attributes look identical.
func stateOf(obj *types.ConfigObject) map[string]interface{} {
	state := make(map[string]interface{}, len(obj.Attributes)+1)
	for k, v := range obj.Attributes {
		state[k] = v
	}
	if obj.ParseError != "" {
		state["parse_error"] = obj.ParseError
	}
	return state
}

// SetHash computes the order-independent set-level canonical hash of a
// drift event set.
func SetHash(events []types.DriftEvent) (string, error) {
	return canonical.HashEventSet(events)
}
