package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dori/doable/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

func recorder(calls *[]call, err error) Runner {
	return func(_ context.Context, name string, args ...string) error {
		*calls = append(*calls, call{name: name, args: args})
		return err
	}
}

var now = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func TestSendBuildsArguments(t *testing.T) {
	var calls []call
	n := NewNotifier(true).WithRunner(recorder(&calls, nil))

	err := n.Send(context.Background(), Notification{
		Title:   "Title",
		Body:    "Body",
		Urgency: UrgencyCritical,
		Timeout: 2 * time.Second,
		Icon:    "icon",
	})
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "notify-send", calls[0].name)
	assert.Equal(t, []string{"-u", "critical", "-t", "2000", "-i", "icon", "-a", "doable", "Title", "Body"}, calls[0].args)
}

func TestDisabledNotifierIsSilent(t *testing.T) {
	var calls []call
	n := NewNotifier(false).WithRunner(recorder(&calls, nil))

	require.NoError(t, n.Send(context.Background(), Notification{Title: "x"}))
	assert.Empty(t, calls)
	assert.False(t, n.IsEnabled())
}

func TestSendWrapsRunnerError(t *testing.T) {
	var calls []call
	boom := errors.New("not installed")
	n := NewNotifier(true).WithRunner(recorder(&calls, boom))

	err := n.Send(context.Background(), Notification{Title: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestSendDueReminder(t *testing.T) {
	var calls []call
	n := NewNotifier(true).WithRunner(recorder(&calls, nil))

	past := now.Add(-time.Hour)
	later := now.Add(time.Hour)
	home := "home"

	require.NoError(t, n.SendDueReminder(context.Background(), model.Task{Text: "Late", DueDate: &past}, now))
	require.NoError(t, n.SendDueReminder(context.Background(), model.Task{Text: "Soon", DueDate: &later, Category: &home}, now))

	require.Len(t, calls, 2)
	assert.Contains(t, calls[0].args, "critical")
	assert.Contains(t, calls[0].args, "Task is now overdue!")
	assert.Contains(t, calls[1].args, "normal")
	assert.Contains(t, calls[1].args, "Due today (home)")
}

func TestDueReminders(t *testing.T) {
	yesterday := now.AddDate(0, 0, -1)
	tonight := time.Date(2024, 5, 15, 23, 59, 59, 0, time.UTC)
	nextWeek := now.AddDate(0, 0, 7)

	tasks := []model.Task{
		{ID: "overdue", DueDate: &yesterday},
		{ID: "today", DueDate: &tonight},
		{ID: "later", DueDate: &nextWeek},
		{ID: "undated"},
		{ID: "done", DueDate: &yesterday, Completed: true},
	}

	var ids []string
	for _, task := range DueReminders(tasks, now) {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"overdue", "today"}, ids)
}
