package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/dori/doable/internal/model"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Runner executes a command. Tests replace it to capture arguments.
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Notifier handles sending desktop notifications
type Notifier struct {
	enabled bool
	run     Runner
}

// NewNotifier creates a new notifier backed by notify-send
func NewNotifier(enabled bool) *Notifier {
	return &Notifier{
		enabled: enabled,
		run:     execRunner,
	}
}

// WithRunner returns a copy of n that sends through run
func (n *Notifier) WithRunner(run Runner) *Notifier {
	c := *n
	c.run = run
	return &c
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Send sends a desktop notification using notify-send
func (n *Notifier) Send(ctx context.Context, notification Notification) error {
	if !n.enabled {
		return nil
	}

	args := []string{}

	switch notification.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// Timeout in milliseconds
	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(notification.Timeout.Milliseconds())))
	}

	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}

	args = append(args, "-a", "doable")

	args = append(args, notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}

	if err := n.run(ctx, "notify-send", args...); err != nil {
		return fmt.Errorf("notify-send failed: %w", err)
	}
	return nil
}

// SendDueReminder sends a reminder for a task that is due today or overdue
func (n *Notifier) SendDueReminder(ctx context.Context, task model.Task, now time.Time) error {
	body := "Due today"
	urgency := UrgencyNormal
	if task.IsOverdue(now) {
		body = "Task is now overdue!"
		urgency = UrgencyCritical
	}
	if cat := task.CategoryName(); cat != "" {
		body += " (" + cat + ")"
	}

	return n.Send(ctx, Notification{
		Title:   task.Text,
		Body:    body,
		Urgency: urgency,
		Timeout: 15 * time.Second,
		Icon:    "emblem-important-symbolic",
	})
}

// DueReminders picks the open tasks that are overdue or due on now's day
func DueReminders(tasks []model.Task, now time.Time) []model.Task {
	var due []model.Task
	for _, t := range tasks {
		if t.Completed || t.DueDate == nil {
			continue
		}
		if t.IsOverdue(now) || t.IsDueOn(now) {
			due = append(due, t)
		}
	}
	return due
}
