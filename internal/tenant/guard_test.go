package tenant

import (
	"strings"
	"testing"

	"github.com/driftscope/driftscope/internal/errors"
	"github.com/driftscope/driftscope/pkg/types"
)

func TestAuthorize(t *testing.T) {
	acme := &types.Snapshot{TenantID: "acme", ID: "snap-1"}
	globex := &types.Snapshot{TenantID: "globex", ID: "snap-2"}

	tests := []struct {
		name      string
		caller    types.TenantID
		snapshots []*types.Snapshot
		wantErr   bool
	}{
		{"matching tenant", "acme", []*types.Snapshot{acme}, false},
		{"several matching snapshots", "acme", []*types.Snapshot{acme, acme}, false},
		{"foreign snapshot", "acme", []*types.Snapshot{globex}, true},
		{"one foreign among matching", "acme", []*types.Snapshot{acme, globex}, true},
		{"empty caller", "", []*types.Snapshot{acme}, true},
		{"whitespace caller", "   ", []*types.Snapshot{acme}, true},
		{"nil snapshots are skipped", "acme", []*types.Snapshot{nil, acme}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.caller, tt.snapshots...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Authorize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.IsKind(err, errors.KindCrossTenantAccessDenied) {
				t.Errorf("Authorize() kind = %s, want %s", errors.GetKind(err), errors.KindCrossTenantAccessDenied)
			}
		})
	}
}

func TestNamespace(t *testing.T) {
	got := Namespace("acme", "snapshots", "snap-1.json")
	want := "tenants/acme/snapshots/snap-1.json"
	if got != want {
		t.Errorf("Namespace = %q, want %q", got, want)
	}
}

func TestNamespace_HostileTenantCannotEscape(t *testing.T) {
	hostile := []types.TenantID{
		"../other",
		"..\\..\\other",
		"a/b/c",
		"tenant:with:colons",
		"spaced tenant",
	}

	for _, id := range hostile {
		key := Namespace(id, "snapshots")
		if strings.Contains(key, "..") {
			t.Errorf("Namespace(%q) = %q still contains a parent traversal", id, key)
		}
		if !strings.HasPrefix(key, "tenants/") {
			t.Errorf("Namespace(%q) = %q escapes the tenants prefix", id, key)
		}
	}
}

func TestSanitize(t *testing.T) {
	// Clean segments pass through untouched.
	for _, in := range []string{"plain", "snap-1.json", "acme"} {
		if got := Sanitize(in); got != in {
			t.Errorf("Sanitize(%q) = %q, want unchanged", in, got)
		}
	}

	// Hostile characters are replaced, and the digest suffix keeps the
	// result stable across calls.
	for _, in := range []string{"a/b", "a\\b", "a:b", "a b", ".."} {
		got := Sanitize(in)
		if strings.ContainsAny(got, "/\\:*?\"<>| ") || strings.Contains(got, "..") {
			t.Errorf("Sanitize(%q) = %q still contains hostile characters", in, got)
		}
		if again := Sanitize(in); again != got {
			t.Errorf("Sanitize(%q) is not stable: %q vs %q", in, got, again)
		}
	}
}

func TestSanitize_LossyInputsStayDistinct(t *testing.T) {
	// Replacement alone would collapse all of these onto "a-b"; the
	// digest suffix must keep every pair apart.
	inputs := []string{"a-b", "a/b", "a\\b", "a:b", "a b"}

	seen := make(map[string]string, len(inputs))
	for _, in := range inputs {
		got := Sanitize(in)
		if prev, ok := seen[got]; ok {
			t.Errorf("Sanitize collapses %q and %q onto %q", prev, in, got)
		}
		seen[got] = in
	}
}

func TestNamespace_LossyTenantIDsStayDistinct(t *testing.T) {
	a := Namespace("a/b", "snapshots", "snap-1")
	b := Namespace("a-b", "snapshots", "snap-1")
	if a == b {
		t.Errorf("tenants \"a/b\" and \"a-b\" share namespace %q", a)
	}
}
