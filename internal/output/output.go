// Package output renders drift listings and snapshot metadata for the
// CLI in table, JSON, or YAML form.
package output

import (
	"fmt"

	"github.com/driftscope/driftscope/internal/ordering"
	"github.com/driftscope/driftscope/internal/storage"
)

// Formatter renders engine results into one output encoding.
type Formatter interface {
	FormatDriftPage(page *ordering.Page) ([]byte, error)
	FormatSnapshotList(infos []storage.SnapshotInfo) ([]byte, error)
}

// NewFormatter returns the formatter for a format name.
func NewFormatter(format string, noColor bool) (Formatter, error) {
	switch format {
	case "", "table":
		return NewTableFormatter(noColor), nil
	case "json":
		return NewJSONFormatter(), nil
	case "yaml":
		return NewYAMLFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
