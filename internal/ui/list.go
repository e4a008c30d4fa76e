package ui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clubdesk/clubdesk/internal/api"
	"github.com/clubdesk/clubdesk/internal/cache"
)

// listState holds selection and search for the list screen.
type listState struct {
	selected  int
	searching bool
	search    textinput.Model
	filter    *regexp.Regexp
	pattern   string
}

func newListState() listState {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "regex, case-insensitive"
	ti.CharLimit = 128
	return listState{search: ti}
}

// visibleItems returns the cached items that match the active filter.
// The cache keeps them sorted by name.
func (m Model) visibleItems() []api.Resource {
	if m.list.filter == nil {
		return m.snapshot.Items
	}
	out := make([]api.Resource, 0, len(m.snapshot.Items))
	for _, item := range m.snapshot.Items {
		if m.list.filter.MatchString(item.Name) {
			out = append(out, item)
		}
	}
	return out
}

func (m Model) selectedItem() (api.Resource, bool) {
	items := m.visibleItems()
	if m.list.selected < 0 || m.list.selected >= len(items) {
		return api.Resource{}, false
	}
	return items[m.list.selected], true
}

// applySnapshot swaps in fresh data, keeping the selection on the same
// record when it is still listed.
func (m *Model) applySnapshot(snap cache.Snapshot) {
	selected, hadSelection := m.selectedItem()
	m.snapshot = snap
	if !snap.LastUpdated.IsZero() {
		m.lastUpdated = snap.LastUpdated
	}

	items := m.visibleItems()
	if hadSelection {
		for i, item := range items {
			if item.ID == selected.ID {
				m.list.selected = i
				return
			}
		}
	}
	m.clampSelection(len(items))
}

func (m *Model) clampSelection(count int) {
	if count == 0 || m.list.selected < 0 {
		m.list.selected = 0
		return
	}
	if m.list.selected >= count {
		m.list.selected = count - 1
	}
}

// handleListKey processes keyboard input for the list screen.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.searching {
		return m.handleSearchKey(msg)
	}

	count := len(m.visibleItems())
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.modal = newHelpModal(m.keys, m.resource.Label)
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
	case key.Matches(msg, m.keys.Down):
		if m.list.selected < count-1 {
			m.list.selected++
		}
	case key.Matches(msg, m.keys.Up):
		if m.list.selected > 0 {
			m.list.selected--
		}
	case key.Matches(msg, m.keys.Top):
		m.list.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.clampSelection(count)
		if count > 0 {
			m.list.selected = count - 1
		}
	case key.Matches(msg, m.keys.Search):
		m.list.searching = true
		m.list.search.SetValue(m.list.pattern)
		m.list.search.CursorEnd()
		return m, m.list.search.Focus()
	case key.Matches(msg, m.keys.New):
		return m, m.navigate(route{kind: routeNew}.path(m.resource.ListPath))
	case key.Matches(msg, m.keys.Edit):
		if item, ok := m.selectedItem(); ok {
			return m, m.navigate(route{kind: routeEdit, id: item.ID.String()}.path(m.resource.ListPath))
		}
	case key.Matches(msg, m.keys.Refresh):
		m.store.Invalidate(cache.ListKey(m.resource.Name))
	case key.Matches(msg, m.keys.Cancel):
		m.clearFilter()
	}
	return m, nil
}

// handleSearchKey routes input to the search field. Enter applies the
// pattern, Esc cancels and clears it.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.list.searching = false
		m.list.search.Blur()
		m.applyFilter(strings.TrimSpace(m.list.search.Value()))
		return m, nil
	case tea.KeyEsc:
		m.list.searching = false
		m.list.search.Blur()
		m.clearFilter()
		return m, nil
	}
	var cmd tea.Cmd
	m.list.search, cmd = m.list.search.Update(msg)
	return m, cmd
}

func (m *Model) applyFilter(pattern string) {
	if pattern == "" {
		m.clearFilter()
		return
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		m.logger.Debug("invalid search pattern", "pattern", pattern, "error", err)
		m.pushToast(toastMsg{kind: toastError, text: "Invalid pattern: " + pattern}, m.now())
		return
	}
	m.list.filter = re
	m.list.pattern = pattern
	m.list.selected = 0
}

func (m *Model) clearFilter() {
	m.list.filter = nil
	m.list.pattern = ""
	m.list.search.SetValue("")
	m.clampSelection(len(m.visibleItems()))
}

// renderList renders the resource list inside a titled box.
func (m Model) renderList(width, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	items := m.visibleItems()

	title := fmt.Sprintf("%s (%d)", pluralLabel(m.resource.Name), len(items))
	if m.list.pattern != "" {
		title += "  /" + truncate(m.list.pattern, 18)
	}

	innerWidth := max(width-2, 0)
	rows := max(height-2, 0)
	if m.list.searching {
		rows--
	}

	var lines []string
	switch {
	case !m.snapshot.HasList && m.snapshot.LastError == nil:
		lines = append(lines, styles.MutedText.Render("Loading..."))
	case !m.snapshot.HasList:
		lines = append(lines, styles.DangerText.Render("Could not load "+strings.ToLower(pluralLabel(m.resource.Name))))
	case len(m.snapshot.Items) == 0:
		lines = append(lines, styles.MutedText.Render(fmt.Sprintf("No %s yet. Press n to add one.", m.resource.Name)))
	case len(items) == 0:
		lines = append(lines, styles.MutedText.Render("No matches"))
	default:
		start := 0
		if rows > 0 && m.list.selected >= rows {
			start = m.list.selected - rows + 1
		}
		for i := start; i < len(items) && i-start < rows; i++ {
			lines = append(lines, m.formatRow(items[i], innerWidth, i == m.list.selected))
		}
	}

	if m.list.searching {
		for len(lines) < rows {
			lines = append(lines, "")
		}
		lines = append(lines, m.list.search.View())
	}

	return m.renderTitledBox(title, strings.Join(lines, "\n"), width, height, true)
}

// formatRow renders "Name · #id   updated".
func (m Model) formatRow(item api.Resource, width int, selected bool) string {
	bgColor := m.theme.FocusBg
	if selected {
		bgColor = m.theme.SelectionBg
	}
	bg := NewBgStyle(bgColor)

	var nameStyle, metaStyle lipgloss.Style
	if selected {
		nameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		metaStyle = nameStyle
	} else {
		styles := m.theme.Styles()
		nameStyle = styles.Text
		metaStyle = styles.MutedText
	}

	idStr := "#" + item.ID.String()
	updated := ""
	if ts := item.ParsedUpdatedAt(); !ts.IsZero() && width >= LayoutCompactWidth {
		updated = ts.Local().Format("2006-01-02 15:04")
	}
	nameWidth := max(width-len(idStr)-len(updated)-6, 8)

	line := bg.Render(padRight(truncate(item.Name, nameWidth), nameWidth), nameStyle) +
		bg.Space() + bg.Render(idStr, metaStyle)
	if updated != "" {
		line += bg.Spaces(2) + bg.Render(updated, metaStyle)
	}
	return bg.FillLine(line, width)
}
