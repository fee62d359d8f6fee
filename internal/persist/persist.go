// Package persist stores the task collection as a single JSON document in a
// key-value store.
package persist

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dori/doable/internal/model"
	"github.com/tidwall/gjson"
)

// Key is the fixed key the task list is stored under
const Key = "todos-app-data"

// TimeLayout is the ISO-8601 form used for createdAt and dueDate
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// KV is the storage capability the adapter needs
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Adapter loads and saves tasks under Key
type Adapter struct {
	kv  KV
	log *slog.Logger
}

// New creates an adapter over kv
func New(kv KV, log *slog.Logger) *Adapter {
	return &Adapter{kv: kv, log: log}
}

// record is the written shape of a task. Timestamps are kept as text.
type record struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Completed bool    `json:"completed"`
	Priority  string  `json:"priority"`
	CreatedAt string  `json:"createdAt"`
	DueDate   *string `json:"dueDate,omitempty"`
	Category  *string `json:"category,omitempty"`
}

// Load returns the stored tasks. A missing key, a read failure or a payload
// that does not decode into valid tasks all yield an empty collection.
func (a *Adapter) Load() []model.Task {
	raw, ok, err := a.kv.Get(Key)
	if err != nil {
		a.log.Error("failed to read stored tasks", "err", err)
		return []model.Task{}
	}
	if !ok {
		a.log.Debug("no stored tasks")
		return []model.Task{}
	}

	tasks, err := Decode(raw)
	if err != nil {
		a.log.Warn("failed to parse stored tasks", "err", err)
		return []model.Task{}
	}

	a.log.Debug("loaded tasks", "count", len(tasks))
	return tasks
}

// Save replaces the stored collection with tasks
func (a *Adapter) Save(tasks []model.Task) error {
	payload, err := Encode(tasks)
	if err != nil {
		return err
	}
	if err := a.kv.Set(Key, payload); err != nil {
		return fmt.Errorf("failed to write tasks: %w", err)
	}
	a.log.Debug("saved tasks", "count", len(tasks))
	return nil
}

// Encode serializes tasks in stored form
func Encode(tasks []model.Task) (string, error) {
	records := make([]record, 0, len(tasks))
	for _, t := range tasks {
		r := record{
			ID:        t.ID,
			Text:      t.Text,
			Completed: t.Completed,
			Priority:  string(t.Priority),
			CreatedAt: formatTime(t.CreatedAt),
			Category:  t.Category,
		}
		if t.DueDate != nil {
			due := formatTime(*t.DueDate)
			r.DueDate = &due
		}
		records = append(records, r)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to encode tasks: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored payload. Any invalid record rejects the whole payload.
func Decode(raw string) ([]model.Task, error) {
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("payload is not valid JSON")
	}
	root := gjson.Parse(raw)
	if !root.IsArray() {
		return nil, fmt.Errorf("payload is not a JSON array")
	}

	tasks := []model.Task{}
	seen := make(map[string]bool)
	var err error
	root.ForEach(func(_, value gjson.Result) bool {
		i := len(tasks)
		var t model.Task
		if t, err = decodeRecord(value); err != nil {
			err = fmt.Errorf("record %d: %w", i, err)
			return false
		}
		if seen[t.ID] {
			err = fmt.Errorf("record %d: duplicate id %q", i, t.ID)
			return false
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
		return true
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// decodeRecord type-checks every known field of one stored record
func decodeRecord(v gjson.Result) (model.Task, error) {
	if !v.IsObject() {
		return model.Task{}, fmt.Errorf("expected an object, got %s", v.Type)
	}

	id, _, err := stringField(v, "id")
	if err != nil {
		return model.Task{}, err
	}
	if id == "" {
		return model.Task{}, fmt.Errorf("missing id")
	}

	text, _, err := stringField(v, "text")
	if err != nil {
		return model.Task{}, err
	}
	if text == "" {
		return model.Task{}, fmt.Errorf("missing text")
	}

	completed := v.Get("completed")
	switch completed.Type {
	case gjson.True, gjson.False, gjson.Null:
	default:
		return model.Task{}, fmt.Errorf("completed: expected a boolean, got %s", completed.Type)
	}

	rawPriority, _, err := stringField(v, "priority")
	if err != nil {
		return model.Task{}, err
	}
	priority := model.PriorityMedium
	if rawPriority != "" {
		priority = model.Priority(rawPriority)
		if !priority.Valid() {
			return model.Task{}, fmt.Errorf("unknown priority %q", rawPriority)
		}
	}

	rawCreated, ok, err := stringField(v, "createdAt")
	if err != nil {
		return model.Task{}, err
	}
	if !ok {
		return model.Task{}, fmt.Errorf("missing createdAt")
	}
	createdAt, err := parseTime(rawCreated)
	if err != nil {
		return model.Task{}, fmt.Errorf("createdAt: %w", err)
	}
	if createdAt.IsZero() {
		return model.Task{}, fmt.Errorf("missing createdAt")
	}

	t := model.Task{
		ID:        id,
		Text:      text,
		Completed: completed.Bool(),
		Priority:  priority,
		CreatedAt: createdAt,
	}

	rawDue, ok, err := stringField(v, "dueDate")
	if err != nil {
		return model.Task{}, err
	}
	if ok {
		due, err := parseTime(rawDue)
		if err != nil {
			return model.Task{}, fmt.Errorf("dueDate: %w", err)
		}
		t.DueDate = &due
	}

	category, ok, err := stringField(v, "category")
	if err != nil {
		return model.Task{}, err
	}
	if ok {
		t.Category = &category
	}

	return t, nil
}

// stringField reads an optional string member. Absent and null both report ok=false.
func stringField(v gjson.Result, name string) (string, bool, error) {
	f := v.Get(name)
	switch f.Type {
	case gjson.String:
		return f.Str, true, nil
	case gjson.Null:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("%s: expected a string, got %s", name, f.Type)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// parseTime accepts RFC 3339 with or without fractional seconds, and bare dates
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
