package persist

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dori/doable/internal/db"
	"github.com/dori/doable/internal/logging"
	"github.com/dori/doable/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTasks() []model.Task {
	created := time.Date(2024, 1, 15, 10, 30, 0, 123_000_000, time.UTC)
	due := time.Date(2024, 1, 20, 23, 59, 59, 0, time.FixedZone("MSK", 3*60*60))
	category := "home"

	return []model.Task{
		{
			ID:        "b",
			Text:      "Wash car",
			Priority:  model.PriorityLow,
			CreatedAt: created.Add(time.Minute),
			DueDate:   &due,
			Category:  &category,
		},
		{
			ID:        "a",
			Text:      "Buy milk",
			Completed: true,
			Priority:  model.PriorityHigh,
			CreatedAt: created,
		},
	}
}

func assertSameTasks(t *testing.T, want, got []model.Task) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Text, got[i].Text)
		assert.Equal(t, want[i].Completed, got[i].Completed)
		assert.Equal(t, want[i].Priority, got[i].Priority)
		assert.True(t, want[i].CreatedAt.Equal(got[i].CreatedAt), "createdAt %v != %v", want[i].CreatedAt, got[i].CreatedAt)
		if want[i].DueDate == nil {
			assert.Nil(t, got[i].DueDate)
		} else {
			require.NotNil(t, got[i].DueDate)
			assert.True(t, want[i].DueDate.Equal(*got[i].DueDate))
		}
		assert.Equal(t, want[i].Category, got[i].Category)
	}
}

func TestRoundTripMemory(t *testing.T) {
	kv := NewMemoryKV()
	a := New(kv, logging.Discard())

	require.NoError(t, a.Save(sampleTasks()))
	assertSameTasks(t, sampleTasks(), a.Load())
}

func TestRoundTripSQLite(t *testing.T) {
	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "doable.db"))
	require.NoError(t, err)
	defer database.Close()

	a := New(database, logging.Discard())
	require.NoError(t, a.Save(sampleTasks()))

	reopened := New(database, logging.Discard())
	assertSameTasks(t, sampleTasks(), reopened.Load())
}

func TestLoadMissingKey(t *testing.T) {
	a := New(NewMemoryKV(), logging.Discard())

	tasks := a.Load()
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestLoadMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":          `{{{`,
		"object":            `{"id":"a"}`,
		"null":              `null`,
		"wrong types":       `[{"id":1,"text":"x"}]`,
		"missing id":        `[{"text":"x","priority":"low","createdAt":"2024-01-01T00:00:00.000Z"}]`,
		"empty text":        `[{"id":"a","text":"","priority":"low","createdAt":"2024-01-01T00:00:00.000Z"}]`,
		"unknown priority":  `[{"id":"a","text":"x","priority":"urgent","createdAt":"2024-01-01T00:00:00.000Z"}]`,
		"bad createdAt":     `[{"id":"a","text":"x","priority":"low","createdAt":"yesterday"}]`,
		"missing createdAt": `[{"id":"a","text":"x","priority":"low"}]`,
		"bad dueDate":       `[{"id":"a","text":"x","priority":"low","createdAt":"2024-01-01T00:00:00.000Z","dueDate":"soon"}]`,
		"string completed":  `[{"id":"a","text":"x","completed":"yes","createdAt":"2024-01-01T00:00:00.000Z"}]`,
		"numeric createdAt": `[{"id":"a","text":"x","createdAt":1704067200000}]`,
		"numeric category":  `[{"id":"a","text":"x","createdAt":"2024-01-01T00:00:00.000Z","category":7}]`,
		"array element":     `[["a","x"]]`,
		"duplicate ids": `[{"id":"a","text":"x","createdAt":"2024-01-01T00:00:00.000Z"},
			{"id":"a","text":"y","createdAt":"2024-01-02T00:00:00.000Z"}]`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			kv := NewMemoryKV()
			require.NoError(t, kv.Set(Key, payload))

			tasks := New(kv, logging.Discard()).Load()
			assert.Empty(t, tasks)
		})
	}
}

func TestDecodeDefaultsAndBrowserDates(t *testing.T) {
	// Shape written by the browser version of the app
	raw := `[{"id":"x1","text":"Call mom","completed":false,"createdAt":"2024-05-01T08:00:00.000Z","dueDate":"2024-05-03"}]`

	tasks, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.Equal(t, model.PriorityMedium, tasks[0].Priority)
	assert.True(t, tasks[0].CreatedAt.Equal(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, 3, tasks[0].DueDate.Day())
	assert.Nil(t, tasks[0].Category)
}

func TestEncodeOmitsAbsentFields(t *testing.T) {
	payload, err := Encode([]model.Task{{
		ID:        "a",
		Text:      "x",
		Priority:  model.PriorityLow,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}})
	require.NoError(t, err)

	assert.JSONEq(t, `[{"id":"a","text":"x","completed":false,"priority":"low","createdAt":"2024-01-01T00:00:00.000Z"}]`, payload)
}

func TestSaveError(t *testing.T) {
	kv := NewMemoryKV()
	kv.Err = errors.New("disk full")

	err := New(kv, logging.Discard()).Save(sampleTasks())
	require.Error(t, err)
	assert.ErrorIs(t, err, kv.Err)
}

func TestDecodeRejectsBadFieldTypes(t *testing.T) {
	valid := `{"id":"a","text":"ok","createdAt":"2024-01-01T00:00:00.000Z"}`

	_, err := Decode(`[` + valid + `,{"id":"b","text":"x","completed":"yes","createdAt":"2024-01-01T00:00:00.000Z"}]`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1: completed")

	_, err = Decode(`[{"id":"a","text":"x","createdAt":123}]`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 0: createdAt")

	_, err = Decode(`null`)
	assert.Error(t, err)
}

func TestDecodeNullOptionalFields(t *testing.T) {
	tasks, err := Decode(`[{"id":"a","text":"x","completed":null,"priority":null,"createdAt":"2024-01-01T00:00:00.000Z","dueDate":null,"category":null}]`)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.False(t, tasks[0].Completed)
	assert.Equal(t, model.PriorityMedium, tasks[0].Priority)
	assert.Nil(t, tasks[0].DueDate)
	assert.Nil(t, tasks[0].Category)
}
