package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dori/doable/internal/model"
	"github.com/dori/doable/internal/quickadd"
	"github.com/dori/doable/internal/store"
)

// PrintView writes the visible tasks, one per line, followed by a stats line
func PrintView(w io.Writer, view store.View, now time.Time) {
	if len(view.Tasks) == 0 {
		title, hint := view.Settings.EmptyState()
		fmt.Fprintln(w, Bold(title))
		fmt.Fprintln(w, Dim(hint))
	}

	for _, t := range view.Tasks {
		fmt.Fprintln(w, TaskLine(t, now))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, StatsLine(view.Stats))
}

// TaskLine renders one task: short id, checkbox, priority, text and extras
func TaskLine(t model.Task, now time.Time) string {
	text := t.Text
	if t.Completed {
		text = Dim(text)
	}

	parts := []string{Dim(t.ShortID()), Checkbox(t.Completed), PriorityLabel(t.Priority), text}

	if cat := t.CategoryName(); cat != "" {
		parts = append(parts, Cyan("#"+cat))
	}
	if t.DueDate != nil {
		due := "due " + quickadd.FormatDue(*t.DueDate, now)
		if t.IsOverdue(now) {
			parts = append(parts, BoldRed(due+" (overdue)"))
		} else {
			parts = append(parts, Yellow(due))
		}
	}

	return strings.Join(parts, " ")
}

// StatsLine renders the aggregate counts
func StatsLine(s model.Stats) string {
	line := fmt.Sprintf("%s total  %s active  %s completed  %s high priority  %s done",
		Bold(s.Total),
		BoldCyan(s.Active),
		BoldGreen(s.Completed),
		BoldRed(s.HighPriority),
		Bold(fmt.Sprintf("%d%%", s.CompletionRate())),
	)
	return line
}

// PrintStats writes the stats block used by `doable stats`
func PrintStats(w io.Writer, s model.Stats, lastSaved time.Time, saved bool) {
	fmt.Fprintf(w, "%s %d\n", Bold("Total:        "), s.Total)
	fmt.Fprintf(w, "%s %d\n", Cyan("Active:       "), s.Active)
	fmt.Fprintf(w, "%s %d\n", Green("Completed:    "), s.Completed)
	fmt.Fprintf(w, "%s %d\n", Red("High priority:"), s.HighPriority)
	fmt.Fprintf(w, "%s %d%%\n", Bold("Done:         "), s.CompletionRate())
	if saved {
		fmt.Fprintf(w, "%s %s\n", Dim("Last saved:   "), lastSaved.Local().Format("2006-01-02 15:04:05"))
	}
}

// JSON writes v as indented JSON
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
