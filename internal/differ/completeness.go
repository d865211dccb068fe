package differ

import (
	"sort"

	"github.com/driftscope/driftscope/pkg/types"
)

// Evidence describes what was actually observable when a drift event was
// computed: the dataset capture status on each snapshot side plus any
// payload parse failure on the objects themselves.
type Evidence struct {
	Before        types.DatasetCapture
	After         types.DatasetCapture
	ParseFailed   bool
	FailedDataset string
}

// completenessRule is one entry of the ordered completeness table. The
// first rule whose predicate matches decides the percentage and the
// missing-data references. The table ends with a 0% catch-all so it is
// exhaustive by construction.
type completenessRule struct {
	Match      func(ev Evidence) bool
	Percentage int
	References func(ev Evidence) []string
}

// completenessRules encodes the disclosure policy as data, in the order
// the rules are specified: full evidence, one side gone, a single partial
// dependency, multiple missing dependencies, then the unparseable
// catch-all.
var completenessRules = []completenessRule{
	{
		Match: func(ev Evidence) bool {
			return !ev.ParseFailed && len(unavailableSides(ev)) == 0 && len(datasetCaveats(ev)) == 0
		},
		Percentage: 100,
		References: func(Evidence) []string { return nil },
	},
	{
		Match: func(ev Evidence) bool {
			return !ev.ParseFailed && len(unavailableSides(ev)) > 0
		},
		Percentage: 50,
		References: unavailableSides,
	},
	{
		Match: func(ev Evidence) bool {
			return !ev.ParseFailed && len(datasetCaveats(ev)) == 1
		},
		Percentage: 85,
		References: datasetCaveats,
	},
	{
		Match: func(ev Evidence) bool {
			return !ev.ParseFailed && len(datasetCaveats(ev)) >= 2
		},
		Percentage: 25,
		References: datasetCaveats,
	},
	{
		// Catch-all: the payload itself could not be parsed or retrieved.
		Match:      func(Evidence) bool { return true },
		Percentage: 0,
		References: func(ev Evidence) []string {
			if ev.FailedDataset != "" {
				return []string{ev.FailedDataset}
			}
			return orderedUnique([]string{ev.Before.Dataset, ev.After.Dataset})
		},
	},
}

// Estimator computes the completeness disclosure for drift events.
type Estimator struct{}

// NewEstimator creates an estimator backed by the fixed rule table.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate returns the completeness percentage and the ordered list of
// dataset identifiers that reduced it. Absence of data is disclosed,
// never guessed around.
func (e *Estimator) Estimate(ev Evidence) (int, []string) {
	for _, rule := range completenessRules {
		if rule.Match(ev) {
			return rule.Percentage, rule.References(ev)
		}
	}
	// Unreachable: the table ends with a catch-all.
	return 0, nil
}

// unavailableSides lists the datasets of snapshot sides that were fully
// unavailable.
func unavailableSides(ev Evidence) []string {
	var refs []string
	if ev.Before.Status == types.CaptureUnavailable {
		refs = append(refs, ev.Before.Dataset)
	}
	if ev.After.Status == types.CaptureUnavailable {
		refs = append(refs, ev.After.Dataset)
	}
	return orderedUnique(refs)
}

// datasetCaveats lists every dataset that was only partially captured on
// either side: the side's own dataset when its status is partial, plus
// any dependent dataset (e.g. permission data) that was not fully
// captured.
func datasetCaveats(ev Evidence) []string {
	var refs []string
	for _, side := range []types.DatasetCapture{ev.Before, ev.After} {
		if side.Status == types.CapturePartial {
			refs = append(refs, side.Dataset)
		}
		for _, dep := range side.Dependencies {
			if dep.Status != types.CaptureFull {
				refs = append(refs, dep.Dataset)
			}
		}
	}
	return orderedUnique(refs)
}

// orderedUnique sorts and deduplicates references so the disclosure list
// is deterministic regardless of evaluation order.
func orderedUnique(refs []string) []string {
	if len(refs) == 0 {
		return nil
	}
	sort.Strings(refs)
	out := refs[:0]
	var last string
	for i, ref := range refs {
		if ref == "" || (i > 0 && ref == last) {
			continue
		}
		out = append(out, ref)
		last = ref
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
