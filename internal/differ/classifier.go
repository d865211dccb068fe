package differ

import (
	"strings"

	"github.com/driftscope/driftscope/pkg/types"
)

// visibilityKeys is the fixed predicate for visibility-affecting changes:
// a change is visibility-flagged when any changed attribute path contains
// one of these fragments. Kept as a data table so the policy can be
// audited independently of the diffing algorithm.
var visibilityKeys = []string{
	"visibility",
	"permission",
	"exposure",
	"access_level",
	"screen_access",
}

// classificationInput is the lookup key for the classification table.
type classificationInput struct {
	ObjectType     types.ObjectType
	ChangeType     types.ChangeType
	VisibilityFlag bool
}

// classificationRule is one entry of the ordered rule table: the first
// rule whose predicate matches decides the classification.
type classificationRule struct {
	Match  func(in classificationInput) bool
	Result types.Classification
}

// classificationRules is the fixed, ordered classification table. The
// visibility rule is checked before the generic object-type rules, and
// unmapped combinations fall through to UNKNOWN rather than erroring.
var classificationRules = []classificationRule{
	{
		Match:  func(in classificationInput) bool { return in.VisibilityFlag },
		Result: types.ClassificationDataVisibility,
	},
	{
		Match: func(in classificationInput) bool {
			return in.ObjectType == types.ObjectTypeField || in.ObjectType == types.ObjectTypeProject
		},
		Result: types.ClassificationStructural,
	},
	{
		Match: func(in classificationInput) bool {
			return in.ObjectType == types.ObjectTypeWorkflow ||
				in.ObjectType == types.ObjectTypeAutomationRule ||
				in.ObjectType == types.ObjectTypeScope
		},
		Result: types.ClassificationConfigChange,
	},
}

// Classifier maps raw changes to the fixed classification taxonomy.
type Classifier struct{}

// NewClassifier creates a classifier backed by the fixed rule table.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify is a pure, total function: it never errors. Any combination
// the table does not map resolves to UNKNOWN.
func (c *Classifier) Classify(objectType types.ObjectType, changeType types.ChangeType, visibilityFlag bool) types.Classification {
	in := classificationInput{ObjectType: objectType, ChangeType: changeType, VisibilityFlag: visibilityFlag}
	for _, rule := range classificationRules {
		if rule.Match(in) {
			return rule.Result
		}
	}
	return types.ClassificationUnknown
}

// VisibilityFlagged decides whether a raw change affects data visibility.
// For modified objects only the changed attribute paths are considered;
// for added and removed objects every attribute path of the present side
// counts, because the object's entire exposure surface appeared or
// disappeared.
func (c *Classifier) VisibilityFlagged(change rawChange) bool {
	var paths []string
	switch change.ChangeType {
	case types.ChangeTypeModified:
		paths = changedPaths("", change.Before.Attributes, change.After.Attributes)
	case types.ChangeTypeAdded:
		paths = attributePaths("", change.After.Attributes)
	case types.ChangeTypeRemoved:
		paths = attributePaths("", change.Before.Attributes)
	}

	for _, path := range paths {
		lower := strings.ToLower(path)
		for _, key := range visibilityKeys {
			if strings.Contains(lower, key) {
				return true
			}
		}
	}
	return false
}

// changedPaths returns the attribute paths whose values differ between
// the two payloads, in dotted form ("renderer.type").
func changedPaths(prefix string, before, after map[string]interface{}) []string {
	var paths []string

	for key, beforeVal := range before {
		path := joinPath(prefix, key)
		afterVal, exists := after[key]
		if !exists {
			paths = append(paths, path)
			continue
		}
		beforeMap, beforeIsMap := beforeVal.(map[string]interface{})
		afterMap, afterIsMap := afterVal.(map[string]interface{})
		if beforeIsMap && afterIsMap {
			paths = append(paths, changedPaths(path, beforeMap, afterMap)...)
			continue
		}
		if !scalarEqual(beforeVal, afterVal) {
			paths = append(paths, path)
		}
	}

	for key := range after {
		if _, exists := before[key]; !exists {
			paths = append(paths, joinPath(prefix, key))
		}
	}

	return paths
}

// attributePaths returns every leaf path of a payload.
func attributePaths(prefix string, attrs map[string]interface{}) []string {
	var paths []string
	for key, val := range attrs {
		path := joinPath(prefix, key)
		if nested, ok := val.(map[string]interface{}); ok && len(nested) > 0 {
			paths = append(paths, attributePaths(path, nested)...)
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
