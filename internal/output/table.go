package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/driftscope/driftscope/internal/ordering"
	"github.com/driftscope/driftscope/internal/storage"
	"github.com/driftscope/driftscope/pkg/types"
)

// TableFormatter renders human-readable tables.
type TableFormatter struct {
	noColor bool
}

// NewTableFormatter creates a table formatter.
func NewTableFormatter(noColor bool) *TableFormatter {
	return &TableFormatter{noColor: noColor}
}

// FormatDriftPage renders one page of drift events.
func (t *TableFormatter) FormatDriftPage(page *ordering.Page) ([]byte, error) {
	var buf bytes.Buffer

	if page.TotalCount == 0 {
		buf.WriteString("No drift detected\n")
		return buf.Bytes(), nil
	}

	fmt.Fprintf(&buf, "Drift events (page %d, showing %d of %d)\n\n",
		page.Page, len(page.Items), page.TotalCount)

	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tOBJECT\tCHANGE\tCLASSIFICATION\tCOMPLETE\tMISSING DATA")
	for i := range page.Items {
		e := &page.Items[i]
		missing := "-"
		if len(e.MissingDataReference) > 0 {
			missing = strings.Join(e.MissingDataReference, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\t%s\n",
			e.ObjectType, e.ObjectID, t.colorChange(e.ChangeType), e.Classification,
			e.CompletenessPercentage, missing)
	}
	w.Flush()

	if page.HasMore {
		fmt.Fprintf(&buf, "\nMore events available: --page %d\n", page.Page+1)
	}
	return buf.Bytes(), nil
}

// FormatSnapshotList renders snapshot metadata.
func (t *TableFormatter) FormatSnapshotList(infos []storage.SnapshotInfo) ([]byte, error) {
	var buf bytes.Buffer

	if len(infos) == 0 {
		buf.WriteString("No snapshots stored\n")
		return buf.Bytes(), nil
	}

	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCAPTURED\tOBJECTS\tSIZE")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s (%s)\t%d\t%s\n",
			info.ID,
			info.CapturedAt.Format(time.RFC3339),
			humanize.Time(info.CapturedAt),
			info.ObjectCount,
			humanize.Bytes(uint64(info.FileSize)))
	}
	w.Flush()
	return buf.Bytes(), nil
}

func (t *TableFormatter) colorChange(ct types.ChangeType) string {
	if t.noColor {
		return string(ct)
	}
	switch ct {
	case types.ChangeTypeAdded:
		return color.GreenString(string(ct))
	case types.ChangeTypeRemoved:
		return color.RedString(string(ct))
	case types.ChangeTypeModified:
		return color.YellowString(string(ct))
	default:
		return string(ct)
	}
}
