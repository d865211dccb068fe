package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	drifterrors "github.com/driftscope/driftscope/internal/errors"
	"github.com/driftscope/driftscope/pkg/types"
)

func testStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	return store
}

func testStoredSnapshot(tenantID types.TenantID, id string, capturedAt time.Time) *types.Snapshot {
	return &types.Snapshot{
		TenantID:   tenantID,
		ID:         id,
		CapturedAt: capturedAt,
		Objects: map[types.ObjectType][]types.ConfigObject{
			types.ObjectTypeField: {
				{ID: "F1", Attributes: map[string]interface{}{"name": "Priority", "required": true}},
			},
			types.ObjectTypeWorkflow: {
				{ID: "W1", Attributes: map[string]interface{}{"steps": []interface{}{"open", "closed"}}},
			},
		},
	}
}

func TestLocalStore_SaveLoadRoundtrip(t *testing.T) {
	store := testStore(t)
	at := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	snap := testStoredSnapshot("acme", "snap-1", at)

	if err := store.SaveSnapshot("acme", snap); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := store.LoadSnapshot("acme", "snap-1")
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.TenantID != "acme" || loaded.ID != "snap-1" {
		t.Errorf("loaded identity = %s/%s, want acme/snap-1", loaded.TenantID, loaded.ID)
	}
	if !loaded.CapturedAt.Equal(at) {
		t.Errorf("captured_at = %v, want %v", loaded.CapturedAt, at)
	}
	if loaded.ObjectCount() != 2 {
		t.Errorf("object count = %d, want 2", loaded.ObjectCount())
	}
	obj := loaded.GetObject(types.ObjectTypeField, "F1")
	if obj == nil || obj.Attributes["name"] != "Priority" {
		t.Errorf("field F1 did not survive the roundtrip: %+v", obj)
	}
}

func TestLocalStore_LoadMissing(t *testing.T) {
	store := testStore(t)

	_, err := store.LoadSnapshot("acme", "nope")
	if !drifterrors.IsKind(err, drifterrors.KindNotFound) {
		t.Errorf("LoadSnapshot on missing file: kind = %s, want %s",
			drifterrors.GetKind(err), drifterrors.KindNotFound)
	}
}

func TestLocalStore_MalformedFile(t *testing.T) {
	store := testStore(t)
	dir := store.snapshotsDir("acme")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := store.LoadSnapshot("acme", "bad")
	if !drifterrors.IsKind(err, drifterrors.KindMalformedSnapshotPayload) {
		t.Errorf("LoadSnapshot on corrupt file: kind = %s, want %s",
			drifterrors.GetKind(err), drifterrors.KindMalformedSnapshotPayload)
	}

	// Listing skips the corrupt file instead of failing the call.
	infos, err := store.ListSnapshots("acme")
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("corrupt file surfaced in listing: %+v", infos)
	}
}

func TestLocalStore_TenantIsolation(t *testing.T) {
	store := testStore(t)
	at := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	if err := store.SaveSnapshot("acme", testStoredSnapshot("acme", "snap-1", at)); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveSnapshot("globex", testStoredSnapshot("globex", "snap-1", at)); err != nil {
		t.Fatal(err)
	}

	// Saving under the wrong tenant is refused before touching disk.
	err := store.SaveSnapshot("acme", testStoredSnapshot("globex", "snap-2", at))
	if !drifterrors.IsKind(err, drifterrors.KindCrossTenantAccessDenied) {
		t.Errorf("cross-tenant save: kind = %s, want %s",
			drifterrors.GetKind(err), drifterrors.KindCrossTenantAccessDenied)
	}

	// Each tenant lists only its own snapshots.
	for _, tenantID := range []types.TenantID{"acme", "globex"} {
		infos, err := store.ListSnapshots(tenantID)
		if err != nil {
			t.Fatalf("ListSnapshots(%s) failed: %v", tenantID, err)
		}
		if len(infos) != 1 {
			t.Fatalf("ListSnapshots(%s) = %d entries, want 1", tenantID, len(infos))
		}
		if infos[0].TenantID != tenantID {
			t.Errorf("ListSnapshots(%s) surfaced tenant %s", tenantID, infos[0].TenantID)
		}
	}

	// A file planted in one tenant's directory but recorded for another
	// tenant is refused on load.
	dir := store.snapshotsDir("acme")
	data, err := os.ReadFile(store.snapshotPath("globex", "snap-1"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "planted.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = store.LoadSnapshot("acme", "planted")
	if !drifterrors.IsKind(err, drifterrors.KindCrossTenantAccessDenied) {
		t.Errorf("planted foreign snapshot: kind = %s, want %s",
			drifterrors.GetKind(err), drifterrors.KindCrossTenantAccessDenied)
	}
}

func TestLocalStore_SimilarTenantIDsNeverShareDirectories(t *testing.T) {
	store := testStore(t)
	at := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	// Tenant IDs that differ only in path-hostile characters must land
	// in distinct directories; otherwise one tenant's save clobbers the
	// other's snapshot file.
	first := testStoredSnapshot("a/b", "snap-1", at)
	first.Objects[types.ObjectTypeField][0].Attributes["name"] = "Victim"
	if err := store.SaveSnapshot("a/b", first); err != nil {
		t.Fatal(err)
	}

	second := testStoredSnapshot("a-b", "snap-1", at)
	second.Objects[types.ObjectTypeField][0].Attributes["name"] = "Intruder"
	if err := store.SaveSnapshot("a-b", second); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.LoadSnapshot("a/b", "snap-1")
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if got := loaded.GetObject(types.ObjectTypeField, "F1").Attributes["name"]; got != "Victim" {
		t.Errorf("tenant \"a-b\"'s save reached tenant \"a/b\"'s file: name = %v", got)
	}

	for _, tenantID := range []types.TenantID{"a/b", "a-b"} {
		infos, err := store.ListSnapshots(tenantID)
		if err != nil {
			t.Fatalf("ListSnapshots(%s) failed: %v", tenantID, err)
		}
		if len(infos) != 1 || infos[0].TenantID != tenantID {
			t.Errorf("ListSnapshots(%s) = %+v, want exactly its own snapshot", tenantID, infos)
		}
	}
}

func TestLocalStore_ListOrderedOldestFirst(t *testing.T) {
	store := testStore(t)
	base := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)

	// Saved out of capture order on purpose.
	for _, s := range []struct {
		id     string
		offset time.Duration
	}{
		{"snap-c", 48 * time.Hour},
		{"snap-a", 0},
		{"snap-b", 24 * time.Hour},
	} {
		if err := store.SaveSnapshot("acme", testStoredSnapshot("acme", s.id, base.Add(s.offset))); err != nil {
			t.Fatal(err)
		}
	}

	infos, err := store.ListSnapshots("acme")
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	want := []string{"snap-a", "snap-b", "snap-c"}
	if len(infos) != len(want) {
		t.Fatalf("ListSnapshots = %d entries, want %d", len(infos), len(want))
	}
	for i, id := range want {
		if infos[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, infos[i].ID, id)
		}
	}
}

func TestLocalStore_Delete(t *testing.T) {
	store := testStore(t)
	at := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	if err := store.SaveSnapshot("acme", testStoredSnapshot("acme", "snap-1", at)); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteSnapshot("acme", "snap-1"); err != nil {
		t.Fatalf("DeleteSnapshot failed: %v", err)
	}
	if _, err := store.LoadSnapshot("acme", "snap-1"); !drifterrors.IsKind(err, drifterrors.KindNotFound) {
		t.Errorf("deleted snapshot still loads")
	}
	if err := store.DeleteSnapshot("acme", "snap-1"); !drifterrors.IsKind(err, drifterrors.KindNotFound) {
		t.Errorf("double delete: kind = %s, want %s", drifterrors.GetKind(err), drifterrors.KindNotFound)
	}
}

func TestLocalStore_RejectsInvalidSnapshot(t *testing.T) {
	store := testStore(t)

	invalid := &types.Snapshot{TenantID: "acme", ID: "snap-1"} // zero captured_at
	err := store.SaveSnapshot("acme", invalid)
	if !drifterrors.IsKind(err, drifterrors.KindMalformedSnapshotPayload) {
		t.Errorf("invalid snapshot save: kind = %s, want %s",
			drifterrors.GetKind(err), drifterrors.KindMalformedSnapshotPayload)
	}
}
