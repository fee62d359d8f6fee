package store

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/dori/doable/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return base.Add(time.Duration(minutes) * time.Minute)
}

func ptr[T any](v T) *T {
	return &v
}

// randomTasks builds a collection stored newest first, as the store keeps it
func randomTasks(r *rand.Rand, n int) []model.Task {
	words := []string{"milk", "Car", "rent", "email", "Dentist", "plants", "éclair", "zebra"}
	tasks := make([]model.Task, n)
	for i := range tasks {
		t := model.Task{
			ID:        fmt.Sprintf("id-%d", i),
			Text:      fmt.Sprintf("%s %d", words[r.Intn(len(words))], r.Intn(100)),
			Completed: r.Intn(2) == 0,
			Priority:  model.Priorities[r.Intn(len(model.Priorities))],
			CreatedAt: at(n - i),
		}
		if r.Intn(3) > 0 {
			t.DueDate = ptr(at(r.Intn(1000) - 500))
		}
		tasks[i] = t
	}
	return tasks
}

func allSettings() []model.ViewSettings {
	var out []model.ViewSettings
	for _, f := range model.Filters {
		for _, m := range model.SortModes {
			for _, show := range []bool{true, false} {
				for _, q := range []string{"", "MILK", "e", "nothing-matches"} {
					out = append(out, model.ViewSettings{StatusFilter: f, SortMode: m, ShowCompleted: show, SearchQuery: q})
				}
			}
		}
	}
	return out
}

func TestStatsInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		tasks := randomTasks(r, r.Intn(30))
		for _, vs := range allSettings() {
			stats := Derive(tasks, vs, language.English).Stats
			require.Equal(t, stats.Total, stats.Active+stats.Completed)
			require.LessOrEqual(t, stats.HighPriority, stats.Active)
			require.Equal(t, len(tasks), stats.Total, "stats ignore view settings")
		}
	}
}

func TestDeriveDoesNotMutateInput(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	tasks := randomTasks(r, 25)
	snapshot := slices.Clone(tasks)

	for _, vs := range allSettings() {
		Derive(tasks, vs, language.English)
	}
	assert.Equal(t, snapshot, tasks)
}

func TestFilterPredicates(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Text: "Buy MILK", CreatedAt: at(3)},
		{ID: "2", Text: "Milkshake", Completed: true, CreatedAt: at(2)},
		{ID: "3", Text: "Wash car", CreatedAt: at(1)},
	}

	cases := []struct {
		name string
		vs   model.ViewSettings
		want []string
	}{
		{"all", model.ViewSettings{StatusFilter: model.FilterAll, ShowCompleted: true}, []string{"1", "2", "3"}},
		{"active", model.ViewSettings{StatusFilter: model.FilterActive, ShowCompleted: true}, []string{"1", "3"}},
		{"completed", model.ViewSettings{StatusFilter: model.FilterCompleted, ShowCompleted: true}, []string{"2"}},
		{"search is case-insensitive", model.ViewSettings{SearchQuery: "milk", ShowCompleted: true}, []string{"1", "2"}},
		{"hide completed under all", model.ViewSettings{StatusFilter: model.FilterAll}, []string{"1", "3"}},
		{"hide completed wins over completed filter", model.ViewSettings{StatusFilter: model.FilterCompleted}, []string{}},
		{"search and status combine", model.ViewSettings{SearchQuery: "MiLk", StatusFilter: model.FilterActive, ShowCompleted: true}, []string{"1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			view := Derive(tasks, tc.vs, language.English)
			ids := []string{}
			for _, task := range view.Tasks {
				ids = append(ids, task.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestSortCreatedNewestFirst(t *testing.T) {
	tasks := []model.Task{
		{ID: "old", Text: "a", CreatedAt: at(1)},
		{ID: "new", Text: "b", CreatedAt: at(5)},
		{ID: "mid", Text: "c", CreatedAt: at(3)},
	}

	view := Derive(tasks, model.DefaultViewSettings(), language.English)
	assert.Equal(t, []string{"b", "c", "a"}, texts(view.Tasks))
}

func TestSortPriority(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	vs := model.ViewSettings{SortMode: model.SortPriority, ShowCompleted: true}

	for round := 0; round < 50; round++ {
		view := Derive(randomTasks(r, 20), vs, language.English)
		for i := 1; i < len(view.Tasks); i++ {
			require.GreaterOrEqual(t, view.Tasks[i-1].Priority.Weight(), view.Tasks[i].Priority.Weight())
		}
	}
}

func TestSortPriorityIsStable(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Text: "first high", Priority: model.PriorityHigh},
		{ID: "2", Text: "low", Priority: model.PriorityLow},
		{ID: "3", Text: "second high", Priority: model.PriorityHigh},
		{ID: "4", Text: "medium", Priority: model.PriorityMedium},
	}
	vs := model.ViewSettings{SortMode: model.SortPriority, ShowCompleted: true}

	view := Derive(tasks, vs, language.English)
	assert.Equal(t, []string{"first high", "second high", "medium", "low"}, texts(view.Tasks))
}

func TestSortDueDate(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	vs := model.ViewSettings{SortMode: model.SortDueDate, ShowCompleted: true}

	for round := 0; round < 50; round++ {
		view := Derive(randomTasks(r, 20), vs, language.English)

		seenMissing := false
		for i, task := range view.Tasks {
			if task.DueDate == nil {
				seenMissing = true
				continue
			}
			require.False(t, seenMissing, "task with due date after one without")
			if i > 0 && view.Tasks[i-1].DueDate != nil {
				require.False(t, task.DueDate.Before(*view.Tasks[i-1].DueDate))
			}
		}
	}
}

func TestSortDueDateKeepsUndatedOrder(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Text: "undated one"},
		{ID: "2", Text: "later", DueDate: ptr(at(10))},
		{ID: "3", Text: "undated two"},
		{ID: "4", Text: "sooner", DueDate: ptr(at(1))},
	}
	vs := model.ViewSettings{SortMode: model.SortDueDate, ShowCompleted: true}

	view := Derive(tasks, vs, language.English)
	assert.Equal(t, []string{"sooner", "later", "undated one", "undated two"}, texts(view.Tasks))
}

func TestSortAlphabeticalIsLocaleAware(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Text: "zebra"},
		{ID: "2", Text: "Éclair"},
		{ID: "3", Text: "apple"},
		{ID: "4", Text: "Banana"},
	}
	vs := model.ViewSettings{SortMode: model.SortAlphabetical, ShowCompleted: true}

	view := Derive(tasks, vs, language.English)
	// Byte order would put "Banana" and "Éclair" in the wrong places
	assert.Equal(t, []string{"apple", "Banana", "Éclair", "zebra"}, texts(view.Tasks))
}

func TestSortAlphabeticalCyrillic(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Text: "Яблоко"},
		{ID: "2", Text: "арбуз"},
		{ID: "3", Text: "Ёлка"},
		{ID: "4", Text: "ель"},
	}
	vs := model.ViewSettings{SortMode: model.SortAlphabetical, ShowCompleted: true}

	view := Derive(tasks, vs, language.Russian)
	assert.Equal(t, "арбуз", view.Tasks[0].Text)
	assert.Equal(t, "Яблоко", view.Tasks[3].Text)
}

func TestComputeStats(t *testing.T) {
	tasks := []model.Task{
		{Priority: model.PriorityHigh},
		{Priority: model.PriorityHigh, Completed: true},
		{Priority: model.PriorityLow},
		{Priority: model.PriorityMedium, Completed: true},
	}

	assert.Equal(t, model.Stats{Total: 4, Active: 2, Completed: 2, HighPriority: 1}, ComputeStats(tasks))
	assert.Equal(t, model.Stats{}, ComputeStats(nil))
}
