// Package errors defines the typed error taxonomy surfaced by the drift
// engine and its storage layer.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind represents the category of error.
type Kind string

const (
	// KindInvalidSnapshotPairing covers caller-contract violations on the
	// snapshot pair: reversed capture order, missing snapshots, or
	// snapshots belonging to different tenants.
	KindInvalidSnapshotPairing Kind = "InvalidSnapshotPairing"

	// KindCrossTenantAccessDenied is returned when a snapshot's tenant
	// does not match the declared caller tenant.
	KindCrossTenantAccessDenied Kind = "CrossTenantAccessDenied"

	// KindMalformedSnapshotPayload is returned when an entire snapshot is
	// unreadable. Per-object payload problems are not errors; they become
	// 0%-completeness disclosures instead.
	KindMalformedSnapshotPayload Kind = "MalformedSnapshotPayload"

	// KindInvariantViolation marks internal-consistency failures, e.g. an
	// added event carrying a non-null before state. Correctness over
	// availability: the computation fails rather than emit corrupt output.
	KindInvariantViolation Kind = "InvariantViolation"

	KindNotFound Kind = "NotFound"
	KindStorage  Kind = "Storage"
)

// DriftError is a typed error with actionable guidance.
type DriftError struct {
	Kind      Kind
	Message   string
	Cause     error
	Solutions []string
}

// Error implements the error interface.
func (e *DriftError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", e.Kind, e.Message))
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Cause))
	}
	return sb.String()
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *DriftError) Unwrap() error {
	return e.Cause
}

// New creates a new DriftError.
func New(kind Kind, message string) *DriftError {
	return &DriftError{Kind: kind, Message: message}
}

// Newf creates a new DriftError with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *DriftError {
	return &DriftError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithCause attaches the underlying error.
func (e *DriftError) WithCause(cause error) *DriftError {
	e.Cause = cause
	return e
}

// WithSolutions adds suggested remediation steps.
func (e *DriftError) WithSolutions(solutions ...string) *DriftError {
	e.Solutions = append(e.Solutions, solutions...)
	return e
}

// IsKind reports whether err (or anything it wraps) is a DriftError of
// the given kind.
func IsKind(err error, kind Kind) bool {
	var de *DriftError
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

// GetKind returns the Kind of err, or an empty Kind for untyped errors.
func GetKind(err error) Kind {
	var de *DriftError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// GetExitCode returns the process exit code for an error kind, using
// sysexits conventions where they fit.
func GetExitCode(err error) int {
	var de *DriftError
	if !errors.As(err, &de) {
		return 1
	}
	switch de.Kind {
	case KindCrossTenantAccessDenied:
		return 77 // EX_NOPERM
	case KindInvalidSnapshotPairing:
		return 64 // EX_USAGE
	case KindMalformedSnapshotPayload:
		return 65 // EX_DATAERR
	case KindNotFound:
		return 66 // EX_NOINPUT
	case KindInvariantViolation:
		return 70 // EX_SOFTWARE
	default:
		return 1
	}
}
