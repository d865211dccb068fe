package storage

import (
	"time"

	"github.com/driftscope/driftscope/pkg/types"
)

// Store defines the read/write contract the drift engine needs from the
// snapshot store. Every operation is scoped to exactly one tenant; an
// implementation must namespace its keys so no enumeration can return
// another tenant's data.
type Store interface {
	SaveSnapshot(tenantID types.TenantID, snapshot *types.Snapshot) error
	LoadSnapshot(tenantID types.TenantID, id string) (*types.Snapshot, error)
	ListSnapshots(tenantID types.TenantID) ([]SnapshotInfo, error)
	DeleteSnapshot(tenantID types.TenantID, id string) error
}

// SnapshotInfo provides metadata about a stored snapshot.
type SnapshotInfo struct {
	ID          string         `json:"id"`
	TenantID    types.TenantID `json:"tenant_id"`
	CapturedAt  time.Time      `json:"captured_at"`
	ObjectCount int            `json:"object_count"`
	FilePath    string         `json:"file_path"`
	FileSize    int64          `json:"file_size"`
}

// Config holds storage configuration.
type Config struct {
	BaseDir string `json:"base_dir"`
}
