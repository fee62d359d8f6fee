package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/doable/internal/app"
	"github.com/dori/doable/internal/model"
	"github.com/dori/doable/internal/ui/theme"
	"github.com/dori/doable/internal/ui/views"
)

// RootModel is the main application model
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	listView    views.ListView
	helpVisible bool

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model. now may be nil.
func NewRootModel(application *app.App, now func() time.Time) RootModel {
	h := help.New()
	h.ShowAll = true

	if t, ok := theme.ByName(application.Config.Theme); ok {
		theme.SetTheme(t)
	}

	return RootModel{
		app:      application,
		keys:     DefaultKeyMap(),
		help:     h,
		listView: views.NewListView(application.Store, application.Config.Priority(), now),
	}
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	m.app.Log.Debug("tui started", "tasks", m.app.Store.Stats().Total)
	return m.listView.Init()
}

// List returns the list view, for tests
func (m RootModel) List() views.ListView {
	return m.listView
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Reserve space for header (2 lines) and footer (3 lines)
		m.listView = m.listView.SetSize(m.width, m.height-5)
		return m, nil

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""

		isInputMode := m.listView.IsInputMode()

		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeCycle):
			next := theme.Next(theme.Current.Theme.Name)
			theme.SetTheme(next)
			m.statusMsg = fmt.Sprintf("Theme: %s", next.Name)
			return m, nil
		}

		if !isInputMode && key.Matches(msg, m.keys.Help) {
			m.helpVisible = !m.helpVisible
			return m, nil
		}
		// The help overlay swallows keys until it is closed
		if m.helpVisible {
			if msg.String() == "esc" {
				m.helpVisible = false
			}
			return m, nil
		}

	case views.ErrorMsg:
		m.errorMsg = msg.Err.Error()
		m.app.Log.Error("tui error", "err", msg.Err)
		return m, nil

	case views.StatusMsg:
		m.statusMsg = msg.Message
		return m, nil
	}

	newListView, cmd := m.listView.Update(msg)
	m.listView = newListView.(views.ListView)
	return m, cmd
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader(), "")

	contentHeight := m.height - 5
	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		content = m.listView.View()
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader shows the title, the active filter and sort, and the theme
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme
	vs := m.listView.Derived().Settings

	title := styles.Header.Render("doable")

	indicator := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)

	completed := "shown"
	if !vs.ShowCompleted {
		completed = "hidden"
	}
	settings := styles.StatusKey.Render("filter ") + styles.StatusValue.Render(string(vs.StatusFilter)) +
		styles.Label.Render(" · ") +
		styles.StatusKey.Render("sort ") + styles.StatusValue.Render(string(vs.SortMode)) +
		styles.Label.Render(" · ") +
		styles.StatusKey.Render("completed ") + styles.StatusValue.Render(completed)

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, indicator.Render(settings))
	rightSide := indicator.Render(fmt.Sprintf("theme: %s", t.Name))

	gap := max(0, m.width-lipgloss.Width(leftSide)-lipgloss.Width(rightSide))
	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderFooter renders the stats line and key hints
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	key := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var lines []string

	if m.errorMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Error).Render(m.errorMsg))
	} else if m.statusMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg))
	}

	stats := m.listView.Derived().Stats
	lines = append(lines, renderStats(stats))

	if m.listView.IsInputMode() {
		switch m.listView.Mode() {
		case views.ListModeAdd:
			lines = append(lines, key("enter", "add")+sep+key("tab", "priority")+sep+key("esc", "cancel"))
		case views.ListModeSearch:
			lines = append(lines, key("enter", "keep")+sep+key("esc", "cancel"))
		default:
			lines = append(lines, key("y", "confirm")+sep+key("n/esc", "cancel"))
		}
		return strings.Join(lines, "\n")
	}

	hints := key("a", "add") + sep +
		key("tab", "done") + sep +
		key("d", "del") + sep +
		key("/", "search") + sep +
		key("f", "filter") + sep +
		key("s", "sort") + sep +
		key("h", "hide done")
	// Clearing is only offered when there is something to clear
	if stats.Completed > 0 {
		hints += sep + key("C", fmt.Sprintf("clear %d done", stats.Completed))
	}
	hints += sep + key("?", "help") + sep + key("q", "quit")
	lines = append(lines, hints)

	return strings.Join(lines, "\n")
}

func renderStats(s model.Stats) string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	stat := func(label string, value int, color lipgloss.Color) string {
		return lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprint(value)) +
			styles.Label.Render(" "+label)
	}

	parts := []string{
		stat("total", s.Total, t.Foreground),
		stat("active", s.Active, t.Primary),
		stat("completed", s.Completed, t.Success),
		stat("high priority", s.HighPriority, t.PriorityHigh),
		lipgloss.NewStyle().Foreground(t.Success).Bold(true).Render(fmt.Sprintf("%d%%", s.CompletionRate())) +
			styles.Label.Render(" done"),
	}
	return styles.Footer.Render(strings.Join(parts, styles.Label.Render("  ")))
}

// renderHelp renders the help overlay
func (m RootModel) renderHelp() string {
	styles := theme.Current.Styles

	var b strings.Builder
	b.WriteString(styles.Title.Render("doable help"))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(styles.Label.Render("Quick add: text !low|!medium|!high due:today|tomorrow|friday|2024-01-15 #category"))
	b.WriteString("\n\n")
	b.WriteString(styles.HelpDesc.Render("Press ? or esc to close"))
	return b.String()
}
