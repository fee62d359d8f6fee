package store

import (
	"slices"
	"strings"

	"github.com/dori/doable/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// View is what the presentation layer shows
type View struct {
	Tasks    []model.Task
	Stats    model.Stats
	Settings model.ViewSettings
}

// Derive filters and sorts tasks for settings. Stats always cover the full
// collection. The input is never modified and the view shares no pointers with it.
func Derive(tasks []model.Task, settings model.ViewSettings, lang language.Tag) View {
	visible := make([]model.Task, 0, len(tasks))
	for i := range tasks {
		if matches(tasks[i], settings) {
			visible = append(visible, tasks[i].Clone())
		}
	}

	slices.SortStableFunc(visible, comparator(settings.SortMode, lang))

	return View{
		Tasks:    visible,
		Stats:    ComputeStats(tasks),
		Settings: settings,
	}
}

func matches(t model.Task, vs model.ViewSettings) bool {
	if vs.SearchQuery != "" && !strings.Contains(strings.ToLower(t.Text), strings.ToLower(vs.SearchQuery)) {
		return false
	}

	// Hiding completed wins over the status filter
	if !vs.ShowCompleted && t.Completed {
		return false
	}

	switch vs.StatusFilter {
	case model.FilterActive:
		return !t.Completed
	case model.FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

func comparator(mode model.SortMode, lang language.Tag) func(a, b model.Task) int {
	switch mode {
	case model.SortPriority:
		return func(a, b model.Task) int {
			return b.Priority.Weight() - a.Priority.Weight()
		}

	case model.SortDueDate:
		return func(a, b model.Task) int {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			}
			return a.DueDate.Compare(*b.DueDate)
		}

	case model.SortAlphabetical:
		c := collate.New(lang)
		return func(a, b model.Task) int {
			return c.CompareString(a.Text, b.Text)
		}

	default:
		return func(a, b model.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	}
}

// ComputeStats counts tasks by state
func ComputeStats(tasks []model.Task) model.Stats {
	stats := model.Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			stats.Completed++
			continue
		}
		stats.Active++
		if t.Priority == model.PriorityHigh {
			stats.HighPriority++
		}
	}
	return stats
}
