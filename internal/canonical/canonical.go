// Package canonical produces stable, content-addressed hashes of drift
// events. Two events with identical field values hash identically
// regardless of the order fields were set or serialized.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/driftscope/driftscope/pkg/types"
)

// Marshal encodes a value as canonical JSON: object keys sorted
// recursively, no insignificant whitespace, timestamps in RFC 3339 UTC
// with nanoseconds. The output is byte-stable for logically equal inputs.
func Marshal(v interface{}) ([]byte, error) {
	var sb strings.Builder
	if err := encode(&sb, v); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func encode(sb *strings.Builder, v interface{}) error {
	switch val := v.(type) {
	case nil:
		sb.WriteString("null")
	case time.Time:
		b, _ := json.Marshal(val.UTC().Format(time.RFC3339Nano))
		sb.Write(b)
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			sb.Write(kb)
			sb.WriteByte(':')
			if err := encode(sb, val[k]); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	case []interface{}:
		sb.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := encode(sb, item); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case []string:
		sb.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				sb.WriteByte(',')
			}
			b, err := json.Marshal(item)
			if err != nil {
				return err
			}
			sb.Write(b)
		}
		sb.WriteByte(']')
	case string, bool, int, int32, int64, float32, float64, json.Number:
		b, err := json.Marshal(val)
		if err != nil {
			return err
		}
		sb.Write(b)
	default:
		// Structs and anything else: round-trip through encoding/json so
		// nested maps get re-canonicalized.
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("canonical encode %T: %w", val, err)
		}
		var generic interface{}
		dec := json.NewDecoder(strings.NewReader(string(b)))
		dec.UseNumber()
		if err := dec.Decode(&generic); err != nil {
			return err
		}
		return encode(sb, generic)
	}
	return nil
}

// HashEvent computes the SHA-256 content hash of a drift event over the
// canonical serialization of all fields except drift_event_id and the
// hash field itself.
func HashEvent(e *types.DriftEvent) (string, error) {
	fields := map[string]interface{}{
		"tenant_id":        string(e.TenantID),
		"from_snapshot_id": e.FromSnapshotID,
		"to_snapshot_id":   e.ToSnapshotID,
		"time_window": map[string]interface{}{
			"from_captured_at": e.TimeWindow.FromCapturedAt,
			"to_captured_at":   e.TimeWindow.ToCapturedAt,
		},
		"object_type":             string(e.ObjectType),
		"object_id":               e.ObjectID,
		"change_type":             string(e.ChangeType),
		"classification":          string(e.Classification),
		"before_state":            stateValue(e.BeforeState),
		"after_state":             stateValue(e.AfterState),
		"actor":                   e.Actor,
		"source":                  e.Source,
		"actor_confidence":        e.ActorConfidence,
		"completeness_percentage": e.CompletenessPercentage,
		"missing_data_reference":  e.MissingDataReference,
	}

	payload, err := Marshal(fields)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// stateValue maps a nil state map to an explicit JSON null so that
// "absent" hashes distinctly from "empty".
func stateValue(state map[string]interface{}) interface{} {
	if state == nil {
		return nil
	}
	return state
}

// HashEventSet computes the set-level hash: SHA-256 over the
// newline-joined per-event hashes after sorting events into the 4-key
// total order. The result is independent of input order but sensitive to
// every event's content.
func HashEventSet(events []types.DriftEvent) (string, error) {
	sorted := make([]types.DriftEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return types.CompareEvents(&sorted[i], &sorted[j]) < 0
	})

	h := sha256.New()
	for i := range sorted {
		eventHash := sorted[i].CanonicalHash
		if eventHash == "" {
			var err error
			eventHash, err = HashEvent(&sorted[i])
			if err != nil {
				return "", err
			}
		}
		h.Write([]byte(eventHash))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Equal reports whether two attribute payloads are canonically equal,
// insensitive to key order and whitespace.
func Equal(a, b map[string]interface{}) (bool, error) {
	ab, err := Marshal(a)
	if err != nil {
		return false, err
	}
	bb, err := Marshal(b)
	if err != nil {
		return false, err
	}
	return string(ab) == string(bb), nil
}
