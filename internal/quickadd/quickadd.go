// Package quickadd parses one-line task entries such as
// "Pay rent !high due:friday #home".
package quickadd

import (
	"strings"
	"time"

	"github.com/dori/doable/internal/model"
)

// Entry is the result of parsing a quick-add line
type Entry struct {
	Text     string
	Priority model.Priority // empty when no !priority token was given
	DueDate  *time.Time
	Category string
}

// Parse splits text into the task text and its inline markers:
//
//	!low !medium !high      priority
//	due:tomorrow due:fri    due date (see ParseDate)
//	#home @work             category, the last one wins
//
// Tokens that look like markers but do not parse stay in the text.
func Parse(text string, now time.Time) Entry {
	var entry Entry
	var textParts []string

	for _, word := range strings.Fields(text) {
		lower := strings.ToLower(word)
		switch {
		case (strings.HasPrefix(word, "#") || strings.HasPrefix(word, "@")) && len(word) > 1:
			entry.Category = word[1:]

		case strings.HasPrefix(word, "!") && len(word) > 1:
			p, err := model.ParsePriority(word[1:])
			if err != nil {
				textParts = append(textParts, word)
				continue
			}
			entry.Priority = p

		case strings.HasPrefix(lower, "due:"):
			if due := ParseDate(strings.TrimPrefix(lower, "due:"), now); due != nil {
				entry.DueDate = due
			} else {
				textParts = append(textParts, word)
			}

		default:
			textParts = append(textParts, word)
		}
	}

	entry.Text = strings.Join(textParts, " ")
	return entry
}

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

// Date layouts are single tokens, since Parse splits its input on spaces
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
}

// yearlessFormats take now's year
var yearlessFormats = []string{
	"01/02",
}

// ParseDate understands today, tomorrow, weekday names, nextweek and a few
// absolute formats. Dates resolve to the end of that day in now's location.
func ParseDate(s string, now time.Time) *time.Time {
	today := endOfDay(now)

	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "":
		return nil
	case "today":
		return &today
	case "tomorrow", "tom":
		t := today.AddDate(0, 0, 1)
		return &t
	case "nextweek":
		t := today.AddDate(0, 0, 7)
		return &t
	}

	if day, ok := weekdays[s]; ok {
		t := nextWeekday(today, day)
		return &t
	}

	for _, format := range dateFormats {
		t, err := time.ParseInLocation(format, s, now.Location())
		if err != nil {
			continue
		}
		t = endOfDay(t)
		return &t
	}

	for _, format := range yearlessFormats {
		md, err := time.ParseInLocation(format, s, now.Location())
		if err != nil {
			continue
		}
		t := time.Date(now.Year(), md.Month(), md.Day(), 0, 0, 0, 0, now.Location())
		// Feb 29 outside a leap year
		if t.Day() != md.Day() {
			return nil
		}
		t = endOfDay(t)
		return &t
	}

	return nil
}

// nextWeekday returns the next occurrence of day strictly after today
func nextWeekday(today time.Time, day time.Weekday) time.Time {
	daysUntil := int(day - today.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return today.AddDate(0, 0, daysUntil)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// FormatDue renders a due date relative to now
func FormatDue(t, now time.Time) string {
	t = t.In(now.Location())

	if sameDay(t, now) {
		return "today"
	}
	if sameDay(t, now.AddDate(0, 0, 1)) {
		return "tomorrow"
	}
	if sameDay(t, now.AddDate(0, 0, -1)) {
		return "yesterday"
	}
	if t.Year() == now.Year() {
		return t.Format("Mon, Jan 2")
	}
	return t.Format("Jan 2, 2006")
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
