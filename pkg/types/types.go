// Package types defines the core data model for tenant configuration
// drift detection: snapshots, configuration objects, and drift events.
package types

// TenantID identifies an isolated customer organization. It is part of
// every snapshot and drift event so that mixing tenants is a
// construction-time mistake, not just a runtime one.
type TenantID string

// ObjectType enumerates the configuration object kinds a snapshot captures.
type ObjectType string

const (
	ObjectTypeField          ObjectType = "field"
	ObjectTypeWorkflow       ObjectType = "workflow"
	ObjectTypeAutomationRule ObjectType = "automation_rule"
	ObjectTypeProject        ObjectType = "project"
	ObjectTypeScope          ObjectType = "scope"
)

// KnownObjectTypes lists the recognized object types in lexicographic order.
var KnownObjectTypes = []ObjectType{
	ObjectTypeAutomationRule,
	ObjectTypeField,
	ObjectTypeProject,
	ObjectTypeScope,
	ObjectTypeWorkflow,
}

// IsKnown reports whether the object type is one of the recognized kinds.
// Unknown types still diff and classify (as UNKNOWN); they never error.
func (ot ObjectType) IsKnown() bool {
	switch ot {
	case ObjectTypeField, ObjectTypeWorkflow, ObjectTypeAutomationRule, ObjectTypeProject, ObjectTypeScope:
		return true
	default:
		return false
	}
}

// String returns the string representation of the object type.
func (ot ObjectType) String() string {
	return string(ot)
}

// Dataset returns the dataset identifier used in availability records and
// missing-data references for this object type, e.g. "field_dataset".
func (ot ObjectType) Dataset() string {
	return string(ot) + "_dataset"
}

// ChangeType represents the nature of a detected change.
type ChangeType string

const (
	ChangeTypeAdded    ChangeType = "added"
	ChangeTypeRemoved  ChangeType = "removed"
	ChangeTypeModified ChangeType = "modified"
)

// IsValid checks if the ChangeType is one of the three fixed values.
func (ct ChangeType) IsValid() bool {
	switch ct {
	case ChangeTypeAdded, ChangeTypeRemoved, ChangeTypeModified:
		return true
	default:
		return false
	}
}

// String returns the string representation of the change type.
func (ct ChangeType) String() string {
	return string(ct)
}

// Classification is the fixed category describing the nature of a drift
// event. It is always derived, never user-supplied.
type Classification string

const (
	ClassificationStructural     Classification = "STRUCTURAL"
	ClassificationConfigChange   Classification = "CONFIG_CHANGE"
	ClassificationDataVisibility Classification = "DATA_VISIBILITY_CHANGE"
	ClassificationUnknown        Classification = "UNKNOWN"
)

// IsValid checks if the Classification is one of the four fixed values.
func (c Classification) IsValid() bool {
	switch c {
	case ClassificationStructural, ClassificationConfigChange, ClassificationDataVisibility, ClassificationUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the classification.
func (c Classification) String() string {
	return string(c)
}

// CaptureStatus states how much of a dataset was observable when a
// snapshot was taken.
type CaptureStatus string

const (
	CaptureFull        CaptureStatus = "full"
	CapturePartial     CaptureStatus = "partial"
	CaptureUnavailable CaptureStatus = "unavailable"
)

// IsValid checks if the CaptureStatus is one of the three fixed values.
func (cs CaptureStatus) IsValid() bool {
	switch cs {
	case CaptureFull, CapturePartial, CaptureUnavailable:
		return true
	default:
		return false
	}
}
