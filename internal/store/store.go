// Package store owns the task collection and the view settings applied to it.
//
// A Store is loaded once at startup and writes the whole collection back
// through its Persistence after every mutation that changes it. It is driven
// by a single event loop and is not safe for concurrent use.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dori/doable/internal/logging"
	"github.com/dori/doable/internal/model"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

var (
	ErrNotFound  = errors.New("task not found")
	ErrAmbiguous = errors.New("id prefix matches more than one task")
)

// Persistence loads and saves the full collection
type Persistence interface {
	Load() []model.Task
	Save(tasks []model.Task) error
}

// Store holds the task collection, newest first
type Store struct {
	persist  Persistence
	log      *slog.Logger
	tasks    []model.Task
	settings model.ViewSettings
	lang     language.Tag
	now      func() time.Time
	newID    func() string
	lastErr  error
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for persistence failures
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithSettings sets the initial view settings
func WithSettings(vs model.ViewSettings) Option {
	return func(s *Store) { s.settings = vs }
}

// WithLocale sets the language used for alphabetical sorting
func WithLocale(tag language.Tag) Option {
	return func(s *Store) { s.lang = tag }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUID generator
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// New creates a store and loads the persisted collection
func New(p Persistence, opts ...Option) *Store {
	s := &Store{
		persist:  p,
		log:      logging.Discard(),
		settings: model.DefaultViewSettings(),
		lang:     language.English,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}

	s.tasks = p.Load()
	if s.tasks == nil {
		s.tasks = []model.Task{}
	}
	return s
}

// TaskOption sets an optional field on a new task
type TaskOption func(*model.Task)

// WithDueDate sets the task deadline
func WithDueDate(due time.Time) TaskOption {
	return func(t *model.Task) { t.DueDate = &due }
}

// WithCategory sets the task category. Blank labels are ignored.
func WithCategory(category string) TaskOption {
	return func(t *model.Task) {
		category = strings.TrimSpace(category)
		if category == "" {
			t.Category = nil
			return
		}
		t.Category = &category
	}
}

// AddTask prepends a new open task. It returns false, and adds nothing, when
// text is blank. An empty or unknown priority becomes medium.
func (s *Store) AddTask(text string, priority model.Priority, opts ...TaskOption) (model.Task, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, false
	}
	if !priority.Valid() {
		priority = model.PriorityMedium
	}

	task := model.Task{
		ID:        s.newID(),
		Text:      text,
		Priority:  priority,
		CreatedAt: s.now(),
	}
	for _, opt := range opts {
		opt(&task)
	}

	s.tasks = append([]model.Task{task}, s.tasks...)
	s.save()
	return task.Clone(), true
}

// ToggleTask flips the completed flag of the task with id.
// Unknown ids are ignored.
func (s *Store) ToggleTask(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.save()
	return true
}

// DeleteTask removes the task with id. Unknown ids are ignored.
func (s *Store) DeleteTask(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.save()
	return true
}

// ClearCompleted removes every completed task and returns how many went
func (s *Store) ClearCompleted() int {
	before := len(s.tasks)
	s.tasks = slices.DeleteFunc(s.tasks, func(t model.Task) bool { return t.Completed })
	removed := before - len(s.tasks)
	if removed > 0 {
		s.save()
	}
	return removed
}

// Tasks returns a deep copy of the whole collection in stored order
func (s *Store) Tasks() []model.Task {
	tasks := make([]model.Task, len(s.tasks))
	for i := range s.tasks {
		tasks[i] = s.tasks[i].Clone()
	}
	return tasks
}

// Get returns the task with id
func (s *Store) Get(id string) (model.Task, bool) {
	i := s.index(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Resolve finds the one task whose id starts with prefix
func (s *Store) Resolve(prefix string) (model.Task, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return model.Task{}, ErrNotFound
	}
	if t, ok := s.Get(prefix); ok {
		return t, nil
	}

	var match *model.Task
	for i := range s.tasks {
		if strings.HasPrefix(s.tasks[i].ID, prefix) {
			if match != nil {
				return model.Task{}, fmt.Errorf("%w: %s", ErrAmbiguous, prefix)
			}
			match = &s.tasks[i]
		}
	}
	if match == nil {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}
	return match.Clone(), nil
}

// View derives the visible tasks and stats from the current state
func (s *Store) View() View {
	return Derive(s.tasks, s.settings, s.lang)
}

// Stats returns aggregate counts over the whole collection
func (s *Store) Stats() model.Stats {
	return ComputeStats(s.tasks)
}

// Settings returns the current view settings
func (s *Store) Settings() model.ViewSettings {
	return s.settings
}

// SetStatusFilter sets the status filter
func (s *Store) SetStatusFilter(f model.StatusFilter) {
	s.settings.StatusFilter = f
}

// SetSearchQuery sets the free-text search
func (s *Store) SetSearchQuery(q string) {
	s.settings.SearchQuery = q
}

// SetSortMode sets the sort mode
func (s *Store) SetSortMode(m model.SortMode) {
	s.settings.SortMode = m
}

// SetShowCompleted shows or hides completed tasks
func (s *Store) SetShowCompleted(show bool) {
	s.settings.ShowCompleted = show
}

// LastSaveError returns the error from the most recent save, or nil
func (s *Store) LastSaveError() error {
	return s.lastErr
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
}

// save writes the collection through. Failures are logged and kept for the
// caller; the in-memory state stays as it is.
func (s *Store) save() {
	s.lastErr = s.persist.Save(s.Tasks())
	if s.lastErr != nil {
		s.log.Error("failed to save tasks", "err", s.lastErr, "count", len(s.tasks))
	}
}
