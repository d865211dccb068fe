// Package storage persists tenant snapshots on the local filesystem,
// one JSON file per snapshot under a per-tenant directory.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	drifterrors "github.com/driftscope/driftscope/internal/errors"
	"github.com/driftscope/driftscope/internal/tenant"
	"github.com/driftscope/driftscope/pkg/types"
)

// LocalStore implements Store using the local filesystem. Snapshots for
// tenant T live under <base>/tenants/<T>/snapshots/, so listing one
// tenant's directory can never surface another tenant's files.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a local store rooted at config.BaseDir,
// defaulting to ~/.driftscope.
func NewLocalStore(config Config) (*LocalStore, error) {
	baseDir := config.BaseDir
	if baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".driftscope")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", baseDir, err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// snapshotsDir returns the tenant-namespaced snapshot directory.
func (s *LocalStore) snapshotsDir(tenantID types.TenantID) string {
	return filepath.Join(s.baseDir, tenant.Namespace(tenantID, "snapshots"))
}

func (s *LocalStore) snapshotPath(tenantID types.TenantID, id string) string {
	return filepath.Join(s.snapshotsDir(tenantID), tenant.Sanitize(id)+".json")
}

// SaveSnapshot writes a snapshot under its tenant's namespace.
func (s *LocalStore) SaveSnapshot(tenantID types.TenantID, snapshot *types.Snapshot) error {
	if err := tenant.Authorize(tenantID, snapshot); err != nil {
		return err
	}
	if err := snapshot.Validate(); err != nil {
		return drifterrors.Newf(drifterrors.KindMalformedSnapshotPayload,
			"snapshot %s is invalid", snapshot.ID).WithCause(err)
	}

	dir := s.snapshotsDir(tenantID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return drifterrors.New(drifterrors.KindStorage, "failed to create snapshot directory").WithCause(err)
	}

	file, err := os.Create(s.snapshotPath(tenantID, snapshot.ID))
	if err != nil {
		return drifterrors.New(drifterrors.KindStorage, "failed to create snapshot file").WithCause(err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot); err != nil {
		return drifterrors.New(drifterrors.KindStorage, "failed to encode snapshot").WithCause(err)
	}
	return nil
}

// LoadSnapshot reads one snapshot from the tenant's namespace. An
// unreadable file fails the whole call with MalformedSnapshotPayload; a
// snapshot whose recorded tenant does not match the directory it was
// found in is refused outright.
func (s *LocalStore) LoadSnapshot(tenantID types.TenantID, id string) (*types.Snapshot, error) {
	if err := tenant.ValidateID(tenantID); err != nil {
		return nil, err
	}

	path := s.snapshotPath(tenantID, id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, drifterrors.Newf(drifterrors.KindNotFound, "snapshot not found: %s", id)
		}
		return nil, drifterrors.New(drifterrors.KindStorage, "failed to read snapshot file").WithCause(err)
	}

	var snapshot types.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, drifterrors.Newf(drifterrors.KindMalformedSnapshotPayload,
			"snapshot %s is unreadable", id).WithCause(err)
	}

	if snapshot.TenantID != tenantID {
		return nil, drifterrors.Newf(drifterrors.KindCrossTenantAccessDenied,
			"snapshot %s is recorded for tenant %q", id, snapshot.TenantID)
	}
	return &snapshot, nil
}

// ListSnapshots returns metadata for the tenant's stored snapshots,
// oldest first. Files that fail to parse are skipped here; loading them
// individually reports the malformed-payload error.
func (s *LocalStore) ListSnapshots(tenantID types.TenantID) ([]SnapshotInfo, error) {
	if err := tenant.ValidateID(tenantID); err != nil {
		return nil, err
	}

	files, err := os.ReadDir(s.snapshotsDir(tenantID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, drifterrors.New(drifterrors.KindStorage, "failed to read snapshots directory").WithCause(err)
	}

	var infos []SnapshotInfo
	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.snapshotsDir(tenantID), file.Name())
		stat, err := file.Info()
		if err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var snapshot types.Snapshot
		if err := json.Unmarshal(data, &snapshot); err != nil {
			continue
		}
		if snapshot.TenantID != tenantID {
			continue
		}
		infos = append(infos, SnapshotInfo{
			ID:          snapshot.ID,
			TenantID:    snapshot.TenantID,
			CapturedAt:  snapshot.CapturedAt,
			ObjectCount: snapshot.ObjectCount(),
			FilePath:    path,
			FileSize:    stat.Size(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CapturedAt.Before(infos[j].CapturedAt)
	})
	return infos, nil
}

// DeleteSnapshot removes a snapshot from the tenant's namespace.
func (s *LocalStore) DeleteSnapshot(tenantID types.TenantID, id string) error {
	if err := tenant.ValidateID(tenantID); err != nil {
		return err
	}
	path := s.snapshotPath(tenantID, id)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return drifterrors.Newf(drifterrors.KindNotFound, "snapshot not found: %s", id)
		}
		return drifterrors.New(drifterrors.KindStorage, "failed to delete snapshot").WithCause(err)
	}
	return nil
}
