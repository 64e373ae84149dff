package launcher

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/gridware/wd-launcher/types"
)

// printResultsTable prints the per-worker results of the run to the console.
func (l *Launcher) printResultsTable(runID string) {
	if l.result == nil {
		return
	}
	l.config.Log.Infow("Printing results...")

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Run Results %s (%s)", runID, formatDuration(l.result.Duration)))

	t.AppendHeader(table.Row{
		"Worker", "Capability", "Specs", "Duration", "Status", "Error",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Capability", WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Specs", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Error", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, w := range l.result.Workers {
		t.AppendRow(table.Row{
			w.WorkerID,
			w.Capability.DisplayName(),
			len(w.Specs),
			formatDuration(w.Duration),
			getResultString(w.Status),
			w.Error,
		})
	}

	t.AppendFooter(table.Row{
		"", "", "", "",
		getResultString(l.result.Status()),
		hookMarkerSummary(l.markers),
	})
	t.Render()
}

// hookMarkerSummary renders the post-run hook markers for the footer.
func hookMarkerSummary(markers []int) string {
	if len(markers) == 0 {
		return ""
	}
	failed := 0
	cells := make([]string, len(markers))
	for i, m := range markers {
		cells[i] = fmt.Sprintf("%d", m)
		if m != 0 {
			failed++
		}
	}
	if failed == 0 {
		return "onComplete hooks ok"
	}
	return fmt.Sprintf("onComplete hooks [%s]", strings.Join(cells, " "))
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Truncate(time.Millisecond).String()
}

// getResultString returns a short string representing the worker outcome
func getResultString(status types.WorkerStatus) string {
	switch status {
	case types.WorkerStatusPass:
		return "✓ pass"
	case types.WorkerStatusError:
		return "! error"
	default:
		return "✗ fail"
	}
}
