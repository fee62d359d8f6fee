package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/doable/internal/model"
	"github.com/dori/doable/internal/quickadd"
	"github.com/dori/doable/internal/store"
	"github.com/dori/doable/internal/ui/theme"
)

// ListMode represents the current input mode of the list view
type ListMode int

const (
	ListModeNormal ListMode = iota
	ListModeAdd
	ListModeSearch
	ListModeConfirmDelete
	ListModeConfirmClear
)

// ListView shows the derived task list and drives the store
type ListView struct {
	store *store.Store
	now   func() time.Time

	width  int
	height int

	// Derived from the store after every change
	view store.View

	cursor       int
	scrollOffset int
	mode         ListMode
	input        textinput.Model

	// Priority for the task being added; tab cycles it
	addPriority     model.Priority
	defaultPriority model.Priority

	// Query active before search mode was entered, restored on esc
	prevQuery string

	deleteID string
}

// NewListView creates a new list view
func NewListView(s *store.Store, defaultPriority model.Priority, now func() time.Time) ListView {
	ti := textinput.New()
	ti.Placeholder = "New task... (!high due:friday #home)"
	ti.CharLimit = 256

	if now == nil {
		now = time.Now
	}
	if !defaultPriority.Valid() {
		defaultPriority = model.PriorityMedium
	}

	v := ListView{
		store:           s,
		now:             now,
		input:           ti,
		addPriority:     defaultPriority,
		defaultPriority: defaultPriority,
	}
	v.refresh()
	return v
}

// Init initializes the list view
func (v ListView) Init() tea.Cmd {
	return nil
}

// IsInputMode returns true when the view is capturing text input or waiting
// for a confirmation
func (v ListView) IsInputMode() bool {
	return v.mode != ListModeNormal
}

// Mode returns the current input mode
func (v ListView) Mode() ListMode {
	return v.mode
}

// Derived returns the current derived view
func (v ListView) Derived() store.View {
	return v.view
}

// Cursor returns the highlighted task, if any
func (v ListView) Cursor() (model.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.view.Tasks) {
		return model.Task{}, false
	}
	return v.view.Tasks[v.cursor], true
}

// AddPriority returns the priority a task added now would get
func (v ListView) AddPriority() model.Priority {
	return v.addPriority
}

// SetSize updates the view dimensions
func (v ListView) SetSize(width, height int) ListView {
	v.width = width
	v.height = height
	v.input.Width = width - 6
	v.ensureCursorVisible()
	return v
}

// refresh re-derives the visible list and keeps the cursor in range
func (v *ListView) refresh() {
	v.view = v.store.View()
	if v.cursor >= len(v.view.Tasks) {
		v.cursor = max(0, len(v.view.Tasks)-1)
	}
	v.ensureCursorVisible()
}

// focus moves the cursor to the task with id if it is visible
func (v *ListView) focus(id string) {
	for i, t := range v.view.Tasks {
		if t.ID == id {
			v.cursor = i
			v.ensureCursorVisible()
			return
		}
	}
}

// visibleTaskCount returns how many tasks can fit in the viewport
func (v ListView) visibleTaskCount() int {
	// Reserve lines for the input, status and scroll indicators
	available := v.height - 6
	if available < 1 {
		available = 1
	}
	return available
}

// ensureCursorVisible adjusts scrollOffset to keep cursor in view
func (v *ListView) ensureCursorVisible() {
	visible := v.visibleTaskCount()

	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	}
	if v.cursor >= v.scrollOffset+visible {
		v.scrollOffset = v.cursor - visible + 1
	}

	maxOffset := max(0, len(v.view.Tasks)-visible)
	v.scrollOffset = min(max(v.scrollOffset, 0), maxOffset)
}

// afterSave reports a failed write; the in-memory change stands either way
func (v ListView) afterSave() tea.Cmd {
	if err := v.store.LastSaveError(); err != nil {
		return errorCmd(fmt.Errorf("changes not saved: %w", err))
	}
	return nil
}

// Update handles messages for the list view
func (v ListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch v.mode {
		case ListModeAdd:
			return v.handleAddMode(msg)
		case ListModeSearch:
			return v.handleSearchMode(msg)
		case ListModeConfirmDelete:
			return v.handleDeleteConfirm(msg)
		case ListModeConfirmClear:
			return v.handleClearConfirm(msg)
		default:
			return v.handleNormalMode(msg)
		}
	}

	if v.mode == ListModeAdd || v.mode == ListModeSearch {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

// handleNormalMode handles keypresses in normal mode
func (v ListView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
		v.ensureCursorVisible()

	case "down", "j":
		if v.cursor < len(v.view.Tasks)-1 {
			v.cursor++
		}
		v.ensureCursorVisible()

	case "g", "home":
		v.cursor = 0
		v.ensureCursorVisible()

	case "G", "end":
		v.cursor = max(0, len(v.view.Tasks)-1)
		v.ensureCursorVisible()

	case "a":
		v.mode = ListModeAdd
		v.addPriority = v.defaultPriority
		v.input.Reset()
		v.input.Placeholder = "New task... (!high due:friday #home)"
		return v, v.input.Focus()

	case "tab", "x", "enter":
		task, ok := v.Cursor()
		if !ok {
			return v, nil
		}
		v.store.ToggleTask(task.ID)
		v.refresh()
		v.focus(task.ID)
		return v, v.afterSave()

	case "d", "delete":
		task, ok := v.Cursor()
		if !ok {
			return v, nil
		}
		v.deleteID = task.ID
		v.mode = ListModeConfirmDelete

	case "C":
		if v.view.Stats.Completed == 0 {
			return v, statusCmd("No completed tasks to clear")
		}
		v.mode = ListModeConfirmClear

	case "/":
		v.mode = ListModeSearch
		v.prevQuery = v.view.Settings.SearchQuery
		v.input.Placeholder = "Search..."
		v.input.SetValue(v.prevQuery)
		v.input.CursorEnd()
		return v, v.input.Focus()

	case "f":
		v.store.SetStatusFilter(v.view.Settings.StatusFilter.Next())
		v.refresh()

	case "s":
		v.store.SetSortMode(v.view.Settings.SortMode.Next())
		v.refresh()

	case "h":
		v.store.SetShowCompleted(!v.view.Settings.ShowCompleted)
		v.refresh()
		if v.view.Settings.ShowCompleted {
			return v, statusCmd("Showing completed tasks")
		}
		return v, statusCmd("Hiding completed tasks")

	case "esc":
		if v.view.Settings.SearchQuery != "" {
			v.store.SetSearchQuery("")
			v.refresh()
		}
	}

	return v, nil
}

// handleAddMode handles keypresses in add mode
func (v ListView) handleAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		entry := quickadd.Parse(v.input.Value(), v.now())
		priority := entry.Priority
		if priority == "" {
			priority = v.addPriority
		}

		var opts []store.TaskOption
		if entry.DueDate != nil {
			opts = append(opts, store.WithDueDate(*entry.DueDate))
		}
		if entry.Category != "" {
			opts = append(opts, store.WithCategory(entry.Category))
		}

		task, ok := v.store.AddTask(entry.Text, priority, opts...)
		if !ok {
			// Blank input leaves the prompt open
			return v, nil
		}

		v.mode = ListModeNormal
		v.input.Blur()
		v.input.Reset()
		v.refresh()
		v.focus(task.ID)
		return v, v.afterSave()

	case "tab":
		v.addPriority = v.addPriority.Next()
		return v, nil

	case "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		v.input.Reset()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleSearchMode handles keypresses in search mode
func (v ListView) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		v.mode = ListModeNormal
		v.input.Blur()
		return v, nil

	case "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		v.store.SetSearchQuery(v.prevQuery)
		v.refresh()
		return v, nil
	}

	// Apply the query as the user types
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	v.store.SetSearchQuery(v.input.Value())
	v.cursor = 0
	v.refresh()

	return v, cmd
}

func (v ListView) handleDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		v.mode = ListModeNormal
		v.store.DeleteTask(v.deleteID)
		v.deleteID = ""
		v.refresh()
		return v, v.afterSave()
	case "n", "N", "esc":
		v.mode = ListModeNormal
		v.deleteID = ""
	}
	return v, nil
}

func (v ListView) handleClearConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		v.mode = ListModeNormal
		removed := v.store.ClearCompleted()
		v.refresh()
		return v, tea.Batch(statusCmd(fmt.Sprintf("Cleared %d completed task(s)", removed)), v.afterSave())
	case "n", "N", "esc":
		v.mode = ListModeNormal
	}
	return v, nil
}

// View renders the list view
func (v ListView) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	var b strings.Builder

	switch v.mode {
	case ListModeAdd:
		priority := lipgloss.NewStyle().
			Foreground(t.PriorityColor(v.addPriority)).
			Bold(true).
			Render(string(v.addPriority))
		b.WriteString(styles.InputFocused.Render(v.input.View()))
		b.WriteString("\n")
		b.WriteString(styles.Label.Render(" priority: ") + priority + styles.Label.Render("  (tab to change)"))
		b.WriteString("\n\n")

	case ListModeSearch:
		searchStyle := lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true)
		b.WriteString(searchStyle.Render("/"))
		b.WriteString(v.input.View())
		b.WriteString("\n\n")

	case ListModeConfirmDelete, ListModeConfirmClear:
		confirmStyle := lipgloss.NewStyle().
			Foreground(t.Warning).
			Bold(true)
		prompt := fmt.Sprintf("Clear %d completed task(s)? (y/n)", v.view.Stats.Completed)
		if v.mode == ListModeConfirmDelete {
			task, _ := v.store.Get(v.deleteID)
			prompt = fmt.Sprintf("Delete %q? (y/n)", task.Text)
		}
		b.WriteString(confirmStyle.Render(prompt))
		b.WriteString("\n\n")

	default:
		if q := v.view.Settings.SearchQuery; q != "" {
			filterStyle := lipgloss.NewStyle().
				Foreground(t.Info).
				Italic(true)
			b.WriteString(filterStyle.Render(fmt.Sprintf("search: %q", q)))
			b.WriteString(styles.Label.Render(" (esc to clear)"))
			b.WriteString("\n\n")
		}
	}

	if len(v.view.Tasks) == 0 {
		title, hint := v.view.Settings.EmptyState()
		b.WriteString(styles.Empty.Render(title + "\n" + hint))
		return b.String()
	}

	visible := v.visibleTaskCount()
	endIdx := min(v.scrollOffset+visible, len(v.view.Tasks))

	if v.scrollOffset > 0 {
		b.WriteString(styles.Label.Render(fmt.Sprintf("  ↑ %d more above", v.scrollOffset)))
		b.WriteString("\n")
	}

	now := v.now()
	for i := v.scrollOffset; i < endIdx; i++ {
		b.WriteString(v.renderTask(v.view.Tasks[i], i == v.cursor, now))
		b.WriteString("\n")
	}

	if remaining := len(v.view.Tasks) - endIdx; remaining > 0 {
		b.WriteString(styles.Label.Render(fmt.Sprintf("  ↓ %d more below", remaining)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderTask renders a single task line
func (v ListView) renderTask(task model.Task, isCursor bool, now time.Time) string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	checkbox := "[ ]"
	if task.Completed {
		checkbox = "[x]"
	}

	var priorityChar string
	switch task.Priority {
	case model.PriorityHigh:
		priorityChar = "!"
	case model.PriorityLow:
		priorityChar = "."
	default:
		priorityChar = "-"
	}
	priority := lipgloss.NewStyle().Foreground(t.PriorityColor(task.Priority)).Render(priorityChar)

	overdue := task.IsOverdue(now)
	titleStyle := styles.TaskNormal
	if task.Completed {
		titleStyle = styles.TaskDone
	} else if overdue {
		titleStyle = styles.TaskOverdue
	}

	var metadata []string
	if cat := task.CategoryName(); cat != "" {
		metadata = append(metadata, styles.Category.Render("#"+cat))
	}
	if task.DueDate != nil {
		due := quickadd.FormatDue(*task.DueDate, now)
		dueStyle := styles.Label
		switch {
		case overdue:
			dueStyle = lipgloss.NewStyle().Foreground(t.Error).Bold(true)
			due += " overdue"
		case !task.Completed && task.IsDueOn(now):
			dueStyle = styles.DueDate
		}
		metadata = append(metadata, dueStyle.Render(due))
	}

	pointer := " "
	if isCursor {
		pointer = ">"
	}

	line := fmt.Sprintf("%s %s %s %s", pointer, checkbox, priority, titleStyle.Render(task.Text))
	if len(metadata) > 0 {
		line += " " + strings.Join(metadata, " ")
	}

	if isCursor {
		line = styles.TaskFocused.Render(line)
	}
	return line
}
