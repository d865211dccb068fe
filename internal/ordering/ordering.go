// Package ordering imposes the deterministic total order on drift event
// sets and slices them into pages without ever reordering, duplicating,
// or dropping elements across calls.
package ordering

import (
	"sort"
	"time"

	"github.com/driftscope/driftscope/pkg/types"
)

// Filter holds the read-path predicates applied before sorting and
// pagination.
type Filter struct {
	FromDate       *time.Time
	ToDate         *time.Time
	ObjectType     types.ObjectType
	Classification types.Classification
}

// Matches reports whether an event passes the filter.
func (f Filter) Matches(e *types.DriftEvent) bool {
	if f.ObjectType != "" && e.ObjectType != f.ObjectType {
		return false
	}
	if f.Classification != "" && e.Classification != f.Classification {
		return false
	}
	if f.FromDate != nil && e.TimeWindow.ToCapturedAt.Before(*f.FromDate) {
		return false
	}
	if f.ToDate != nil && e.TimeWindow.FromCapturedAt.After(*f.ToDate) {
		return false
	}
	return true
}

// Apply returns the events passing the filter, preserving input order.
func Apply(events []types.DriftEvent, f Filter) []types.DriftEvent {
	out := make([]types.DriftEvent, 0, len(events))
	for i := range events {
		if f.Matches(&events[i]) {
			out = append(out, events[i])
		}
	}
	return out
}

// Sort orders events in place by the 4-key total order: object_type,
// object_id, change_type, classification, all lexicographic, ties broken
// left to right. Any event set has exactly one well-defined order.
func Sort(events []types.DriftEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return types.CompareEvents(&events[i], &events[j]) < 0
	})
}

// SortForDisplay is the presentation-layer variant: newest time window
// first, falling back to the 4-key order as the tie-break. It layers on
// top of the canonical order, it does not replace it.
func SortForDisplay(events []types.DriftEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		ti := events[i].TimeWindow.ToCapturedAt
		tj := events[j].TimeWindow.ToCapturedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return types.CompareEvents(&events[i], &events[j]) < 0
	})
}

// Page is one slice of an ordered event sequence.
type Page struct {
	Items      []types.DriftEvent `json:"items"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalCount int                `json:"total_count"`
	HasMore    bool               `json:"has_more"`
}

// Paginate slices an already-sorted sequence. It is a pure slicing
// operation: repeated calls over the same sequence never reorder,
// duplicate, or drop elements across adjacent pages.
func Paginate(events []types.DriftEvent, page, limit int) Page {
	if page < 0 {
		page = 0
	}
	if limit < 1 {
		limit = 50
	}

	total := len(events)
	start := page * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	items := make([]types.DriftEvent, end-start)
	copy(items, events[start:end])

	return Page{
		Items:      items,
		Page:       page,
		Limit:      limit,
		TotalCount: total,
		HasMore:    (page+1)*limit < total,
	}
}
