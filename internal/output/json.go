package output

import (
	"encoding/json"

	"github.com/driftscope/driftscope/internal/ordering"
	"github.com/driftscope/driftscope/internal/storage"
)

// JSONFormatter handles JSON output formatting.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// FormatDriftPage formats one page of drift events as indented JSON.
func (j *JSONFormatter) FormatDriftPage(page *ordering.Page) ([]byte, error) {
	return json.MarshalIndent(page, "", "  ")
}

// FormatSnapshotList formats snapshot metadata as indented JSON.
func (j *JSONFormatter) FormatSnapshotList(infos []storage.SnapshotInfo) ([]byte, error) {
	return json.MarshalIndent(infos, "", "  ")
}
