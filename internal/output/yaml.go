package output

import (
	"gopkg.in/yaml.v3"

	"github.com/driftscope/driftscope/internal/ordering"
	"github.com/driftscope/driftscope/internal/storage"
)

// YAMLFormatter handles YAML output formatting.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// FormatDriftPage formats one page of drift events as YAML.
func (y *YAMLFormatter) FormatDriftPage(page *ordering.Page) ([]byte, error) {
	return yaml.Marshal(page)
}

// FormatSnapshotList formats snapshot metadata as YAML.
func (y *YAMLFormatter) FormatSnapshotList(infos []storage.SnapshotInfo) ([]byte, error) {
	return yaml.Marshal(infos)
}
