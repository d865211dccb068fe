package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConfigObject is a single configuration object inside a snapshot. The
// attribute payload is schemaless; when the source payload could not be
// parsed at capture time the object carries the parse error and an empty
// attribute map, and any drift event touching it discloses 0% completeness.
type ConfigObject struct {
	ID         string                 `json:"id"`
	Attributes map[string]interface{} `json:"attributes"`
	ParseError string                 `json:"parse_error,omitempty"`
}

// Validate checks if the ConfigObject has the required fields.
func (o *ConfigObject) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return errors.New("object ID is required")
	}
	return nil
}

// DependencyCapture records the capture status of a dataset another
// dataset depends on, e.g. the permission data needed to evaluate a
// scope's visibility.
type DependencyCapture struct {
	Dataset string        `json:"dataset"`
	Status  CaptureStatus `json:"status"`
}

// DatasetCapture records how completely one object type's dataset was
// captured in a snapshot, including any dependent datasets.
type DatasetCapture struct {
	Dataset      string              `json:"dataset"`
	Status       CaptureStatus       `json:"status"`
	Dependencies []DependencyCapture `json:"dependencies,omitempty"`
}

// SnapshotAvailability maps object types to their dataset capture records.
// An absent entry means the dataset was fully captured.
type SnapshotAvailability map[ObjectType]DatasetCapture

// Capture returns the dataset capture record for an object type,
// defaulting to a full capture when none was recorded.
func (a SnapshotAvailability) Capture(ot ObjectType) DatasetCapture {
	if a != nil {
		if c, ok := a[ot]; ok {
			if c.Dataset == "" {
				c.Dataset = ot.Dataset()
			}
			return c
		}
	}
	return DatasetCapture{Dataset: ot.Dataset(), Status: CaptureFull}
}

// Snapshot is an immutable, timestamped capture of one tenant's
// configuration objects, grouped by object type. The engine only reads it.
type Snapshot struct {
	TenantID     TenantID                      `json:"tenant_id"`
	ID           string                        `json:"snapshot_id"`
	CapturedAt   time.Time                     `json:"captured_at"`
	Objects      map[ObjectType][]ConfigObject `json:"objects"`
	Availability SnapshotAvailability          `json:"availability,omitempty"`
}

// Validate checks if the Snapshot has all required fields and no
// duplicate object IDs within a type.
func (s *Snapshot) Validate() error {
	if strings.TrimSpace(string(s.TenantID)) == "" {
		return errors.New("snapshot tenant ID is required")
	}
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("snapshot ID is required")
	}
	if s.CapturedAt.IsZero() {
		return errors.New("snapshot capture timestamp is required")
	}
	for ot, objects := range s.Objects {
		seen := make(map[string]bool, len(objects))
		for i := range objects {
			if err := objects[i].Validate(); err != nil {
				return fmt.Errorf("%s object at index %d is invalid: %w", ot, i, err)
			}
			if seen[objects[i].ID] {
				return fmt.Errorf("duplicate %s object ID %q", ot, objects[i].ID)
			}
			seen[objects[i].ID] = true
		}
	}
	return nil
}

// ObjectCount returns the total number of objects across all types.
func (s *Snapshot) ObjectCount() int {
	n := 0
	for _, objects := range s.Objects {
		n += len(objects)
	}
	return n
}

// ObjectTypes returns the object types present in the snapshot.
func (s *Snapshot) ObjectTypes() []ObjectType {
	out := make([]ObjectType, 0, len(s.Objects))
	for ot := range s.Objects {
		out = append(out, ot)
	}
	return out
}

// GetObject returns the object of the given type and ID, or nil.
func (s *Snapshot) GetObject(ot ObjectType, id string) *ConfigObject {
	for i := range s.Objects[ot] {
		if s.Objects[ot][i].ID == id {
			return &s.Objects[ot][i]
		}
	}
	return nil
}

// String returns a string representation of the snapshot.
func (s *Snapshot) String() string {
	return fmt.Sprintf("%s snapshot %s (%s)", s.TenantID, s.ID, s.CapturedAt.Format(time.RFC3339))
}
