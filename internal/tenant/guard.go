// Package tenant enforces tenant isolation: every operation is scoped to
// exactly one tenant, and storage keys are namespaced so enumeration can
// never cross a tenant boundary.
package tenant

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/driftscope/driftscope/internal/errors"
	"github.com/driftscope/driftscope/pkg/types"
)

// ValidateID checks that the tenant identifier is usable as an isolation
// namespace.
func ValidateID(id types.TenantID) error {
	if strings.TrimSpace(string(id)) == "" {
		return errors.New(errors.KindCrossTenantAccessDenied, "tenant ID is required")
	}
	return nil
}

// Authorize verifies that every snapshot belongs to the declared caller
// tenant. Any mismatch fails with CrossTenantAccessDenied before any
// computation happens.
func Authorize(caller types.TenantID, snapshots ...*types.Snapshot) error {
	if err := ValidateID(caller); err != nil {
		return err
	}
	for _, snap := range snapshots {
		if snap == nil {
			continue
		}
		if snap.TenantID != caller {
			return errors.Newf(errors.KindCrossTenantAccessDenied,
				"snapshot %s belongs to tenant %q, caller is %q", snap.ID, snap.TenantID, caller)
		}
	}
	return nil
}

// Namespace builds a tenant-scoped key from path components. The tenant
// segment is sanitized so a crafted identifier cannot escape its
// directory.
func Namespace(id types.TenantID, parts ...string) string {
	segments := make([]string, 0, len(parts)+2)
	segments = append(segments, "tenants", Sanitize(string(id)))
	for _, p := range parts {
		segments = append(segments, Sanitize(p))
	}
	return filepath.Join(segments...)
}

var segmentReplacer = strings.NewReplacer(
	"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-",
	"\"", "-", "<", "-", ">", "-", "|", "-", " ", "-", "..", "-",
)

// Sanitize replaces path-hostile characters in a key segment. Replacement
// is lossy, so whenever it changes the segment a short digest of the raw
// value is appended: identifiers that differ only in replaced characters
// ("a/b" vs "a-b") must never collapse to the same key.
func Sanitize(segment string) string {
	cleaned := segmentReplacer.Replace(segment)
	if cleaned == segment {
		return cleaned
	}
	sum := sha256.Sum256([]byte(segment))
	return cleaned + "-" + hex.EncodeToString(sum[:4])
}
