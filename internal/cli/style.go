// Package cli renders tasks and stats for the non-interactive subcommands.
package cli

import (
	"github.com/dori/doable/internal/model"
	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold      = color.New(color.Bold).SprintFunc()
	Dim       = color.New(color.Faint).SprintFunc()
	Cyan      = color.New(color.FgCyan).SprintFunc()
	Green     = color.New(color.FgGreen).SprintFunc()
	Red       = color.New(color.FgRed).SprintFunc()
	Yellow    = color.New(color.FgYellow).SprintFunc()
	BoldCyan  = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed   = color.New(color.Bold, color.FgRed).SprintFunc()
)

// Checkbox returns the colored completion marker
func Checkbox(completed bool) string {
	if completed {
		return Green("[x]")
	}
	return Dim("[ ]")
}

// PriorityLabel returns a fixed-width colored priority tag
func PriorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return BoldRed("high")
	case model.PriorityLow:
		return Dim("low ")
	default:
		return Yellow("med ")
	}
}
