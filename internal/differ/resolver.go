package differ

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/driftscope/driftscope/internal/canonical"
	"github.com/driftscope/driftscope/pkg/types"
)

// rawChange is one detected difference before classification and
// completeness estimation. Exactly one of Before/After is nil for
// added/removed changes; both are set for modified.
type rawChange struct {
	ObjectType types.ObjectType
	ObjectID   string
	ChangeType types.ChangeType
	Before     *types.ConfigObject
	After      *types.ConfigObject
}

// Resolver walks two snapshots and produces the raw change set: a keyed
// set-difference plus a canonical equality check per object type. No
// heuristic matching, no fuzzy identity.
type Resolver struct {
	parallelism int
}

// NewResolver creates a resolver that diffs up to parallelism object
// types concurrently. Values below 1 mean sequential.
func NewResolver(parallelism int) *Resolver {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Resolver{parallelism: parallelism}
}

// Resolve computes the raw changes between two snapshots. Object types
// are diffed independently (and concurrently), then merged in
// lexicographic type order so the result is deterministic regardless of
// scheduling.
func (r *Resolver) Resolve(ctx context.Context, from, to *types.Snapshot) ([]rawChange, error) {
	objectTypes := unionObjectTypes(from, to)

	perType := make([][]rawChange, len(objectTypes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for i, ot := range objectTypes {
		i, ot := i, ot
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			changes, err := diffObjectType(ot, from.Objects[ot], to.Objects[ot])
			if err != nil {
				return err
			}
			perType[i] = changes
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []rawChange
	for _, changes := range perType {
		all = append(all, changes...)
	}
	return all, nil
}

// diffObjectType diffs one object type: keys only in `to` are added, keys
// only in `from` are removed, keys in both with unequal canonical payload
// are modified. Equal payloads emit nothing.
func diffObjectType(ot types.ObjectType, from, to []types.ConfigObject) ([]rawChange, error) {
	fromByID := make(map[string]*types.ConfigObject, len(from))
	for i := range from {
		fromByID[from[i].ID] = &from[i]
	}
	toByID := make(map[string]*types.ConfigObject, len(to))
	for i := range to {
		toByID[to[i].ID] = &to[i]
	}

	var changes []rawChange

	for id, fromObj := range fromByID {
		toObj, exists := toByID[id]
		if !exists {
			changes = append(changes, rawChange{
				ObjectType: ot,
				ObjectID:   id,
				ChangeType: types.ChangeTypeRemoved,
				Before:     fromObj,
			})
			continue
		}
		equal, err := objectsEqual(fromObj, toObj)
		if err != nil {
			return nil, err
		}
		if !equal {
			changes = append(changes, rawChange{
				ObjectType: ot,
				ObjectID:   id,
				ChangeType: types.ChangeTypeModified,
				Before:     fromObj,
				After:      toObj,
			})
		}
	}

	for id, toObj := range toByID {
		if _, exists := fromByID[id]; !exists {
			changes = append(changes, rawChange{
				ObjectType: ot,
				ObjectID:   id,
				ChangeType: types.ChangeTypeAdded,
				After:      toObj,
			})
		}
	}

	// Map iteration order is random; sort so the merge is reproducible.
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].ObjectID != changes[j].ObjectID {
			return changes[i].ObjectID < changes[j].ObjectID
		}
		return changes[i].ChangeType < changes[j].ChangeType
	})

	return changes, nil
}

// objectsEqual compares two objects by canonical payload, so attribute
// key order and serialization whitespace never produce phantom drift. A
// parse error on either side counts as a difference: the payloads cannot
// be shown equal, and the event will disclose 0% completeness.
func objectsEqual(a, b *types.ConfigObject) (bool, error) {
	if a.ParseError != "" || b.ParseError != "" {
		return a.ParseError == b.ParseError && a.ParseError != "", nil
	}
	return canonical.Equal(a.Attributes, b.Attributes)
}

// scalarEqual compares two attribute values through their canonical
// encoding, matching the equality the resolver uses.
func scalarEqual(a, b interface{}) bool {
	ab, errA := canonical.Marshal(a)
	bb, errB := canonical.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ab) == string(bb)
}

// unionObjectTypes returns the object types present in either snapshot,
// in lexicographic order.
func unionObjectTypes(from, to *types.Snapshot) []types.ObjectType {
	seen := make(map[types.ObjectType]bool)
	for ot := range from.Objects {
		seen[ot] = true
	}
	for ot := range to.Objects {
		seen[ot] = true
	}
	out := make([]types.ObjectType, 0, len(seen))
	for ot := range seen {
		out = append(out, ot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
