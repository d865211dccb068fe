// Package drift is the orchestration layer the CLI and the HTTP read
// path share: load snapshots, run the engine (through the result cache),
// filter, order, paginate.
package drift

import (
	"context"

	"github.com/driftscope/driftscope/internal/cache"
	"github.com/driftscope/driftscope/internal/differ"
	"github.com/driftscope/driftscope/internal/logger"
	"github.com/driftscope/driftscope/internal/ordering"
	"github.com/driftscope/driftscope/internal/storage"
	"github.com/driftscope/driftscope/pkg/types"
)

// Service wires the snapshot store, the drift engine, and the result
// cache behind tenant-scoped operations.
type Service struct {
	store  storage.Store
	engine *differ.Engine
	cache  *cache.ResultCache
	log    logger.Logger
}

// NewService creates a drift service. The cache may be nil to disable
// memoization.
func NewService(store storage.Store, engine *differ.Engine, resultCache *cache.ResultCache, log logger.Logger) *Service {
	return &Service{store: store, engine: engine, cache: resultCache, log: log}
}

// Query holds the read-path parameters for a drift listing.
type Query struct {
	FromSnapshotID string
	ToSnapshotID   string
	Filter         ordering.Filter
	Page           int
	Limit          int
	// DisplayOrder selects the presentation ordering (newest time window
	// first) instead of the canonical 4-key order.
	DisplayOrder bool
}

// ComputeDrift loads both snapshots, runs (or recalls) the drift
// computation, and returns the ordered event set plus its set-level
// canonical hash.
func (s *Service) ComputeDrift(ctx context.Context, tenantID types.TenantID, fromID, toID string) ([]types.DriftEvent, string, error) {
	if s.cache != nil {
		if events, ok := s.cache.Get(tenantID, fromID, toID); ok {
			setHash, err := differ.SetHash(events)
			if err != nil {
				return nil, "", err
			}
			return events, setHash, nil
		}
	}

	events, err := s.computeFresh(ctx, tenantID, fromID, toID)
	if err != nil {
		return nil, "", err
	}

	if s.cache != nil {
		s.cache.Add(tenantID, fromID, toID, events)
	}

	setHash, err := differ.SetHash(events)
	if err != nil {
		return nil, "", err
	}
	return events, setHash, nil
}

func (s *Service) computeFresh(ctx context.Context, tenantID types.TenantID, fromID, toID string) ([]types.DriftEvent, error) {
	from, err := s.store.LoadSnapshot(tenantID, fromID)
	if err != nil {
		return nil, err
	}
	to, err := s.store.LoadSnapshot(tenantID, toID)
	if err != nil {
		return nil, err
	}
	return s.engine.ComputeDrift(ctx, tenantID, from, to)
}

// ListDrift computes (or recalls) a drift set and applies the read-path
// pipeline: filter, order, paginate.
func (s *Service) ListDrift(ctx context.Context, tenantID types.TenantID, q Query) (*ordering.Page, error) {
	events, _, err := s.ComputeDrift(ctx, tenantID, q.FromSnapshotID, q.ToSnapshotID)
	if err != nil {
		return nil, err
	}

	filtered := ordering.Apply(events, q.Filter)
	if q.DisplayOrder {
		ordering.SortForDisplay(filtered)
	} else {
		ordering.Sort(filtered)
	}

	page := ordering.Paginate(filtered, q.Page, q.Limit)
	return &page, nil
}

// VerifyResult reports a determinism check over two independent
// computations of the same snapshot pair.
type VerifyResult struct {
	TenantID       types.TenantID `json:"tenant_id"`
	FromSnapshotID string         `json:"from_snapshot_id"`
	ToSnapshotID   string         `json:"to_snapshot_id"`
	EventCount     int            `json:"event_count"`
	SetHash        string         `json:"set_hash"`
	RecomputedHash string         `json:"recomputed_hash"`
	Deterministic  bool           `json:"deterministic"`
}

// Verify recomputes a drift set from scratch and compares its set-level
// canonical hash against the (possibly cached) first computation. Same
// inputs must yield an identical hash.
func (s *Service) Verify(ctx context.Context, tenantID types.TenantID, fromID, toID string) (*VerifyResult, error) {
	events, setHash, err := s.ComputeDrift(ctx, tenantID, fromID, toID)
	if err != nil {
		return nil, err
	}

	recomputed, err := s.computeFresh(ctx, tenantID, fromID, toID)
	if err != nil {
		return nil, err
	}
	recomputedHash, err := differ.SetHash(recomputed)
	if err != nil {
		return nil, err
	}

	return &VerifyResult{
		TenantID:       tenantID,
		FromSnapshotID: fromID,
		ToSnapshotID:   toID,
		EventCount:     len(events),
		SetHash:        setHash,
		RecomputedHash: recomputedHash,
		Deterministic:  setHash == recomputedHash,
	}, nil
}

// Snapshots lists the tenant's stored snapshots.
func (s *Service) Snapshots(tenantID types.TenantID) ([]storage.SnapshotInfo, error) {
	return s.store.ListSnapshots(tenantID)
}

// ImportSnapshot stores an externally captured snapshot.
func (s *Service) ImportSnapshot(tenantID types.TenantID, snapshot *types.Snapshot) error {
	return s.store.SaveSnapshot(tenantID, snapshot)
}
