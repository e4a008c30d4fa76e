package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clubdesk/clubdesk/internal/api"
	"github.com/clubdesk/clubdesk/internal/form"
)

// renderHeader renders the status bar: app name, user, API status and
// freshness.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	user := m.user
	if user == "" {
		user = "guest"
	}

	parts := []string{
		bg.Render("clubdesk", styles.Logo),
		bg.Render("user", styles.FaintText) + bg.Space() + bg.Render(user, styles.Text),
		m.apiStatus(styles, bg),
	}
	if ts := m.formatTimestamp(); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

func (m Model) apiStatus(styles Styles, bg BgStyle) string {
	snap := m.snapshot
	switch {
	case snap.LastError != nil:
		label := "API " + classifyConnectionError(snap.LastError)
		out := bg.Render("● "+label, styles.DangerText)
		if snap.IsOffline() {
			out += bg.Spaces(2) + bg.Render("Retrying...", styles.WarningText.Bold(true))
		}
		return out
	case !snap.HasList:
		return bg.Render("Connecting...", styles.WarningText.Bold(true))
	case snap.Stale:
		return bg.Render("● API", styles.SuccessText) + bg.Space() + bg.Render("refreshing", styles.MutedText)
	default:
		return bg.Render("● API", styles.SuccessText) + bg.Space() +
			bg.Render(fmt.Sprintf("%d %s", len(snap.Items), m.resource.Name), styles.MutedText)
	}
}

// formatTimestamp formats the last update time with relative indicator.
func (m Model) formatTimestamp() string {
	if m.lastUpdated.IsZero() {
		return ""
	}

	timeSince := m.now().Sub(m.lastUpdated)
	timeStr := m.lastUpdated.Format("15:04:05")

	switch {
	case timeSince < time.Minute:
		timeStr += " (now)"
	case timeSince < time.Hour:
		timeStr += fmt.Sprintf(" (%dm ago)", int(timeSince.Minutes()))
	case timeSince < 24*time.Hour:
		timeStr += fmt.Sprintf(" (%dh ago)", int(timeSince.Hours()))
	}
	return timeStr
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("HTTP %d", apiErr.Status)
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints for the current screen.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.route.kind == routeList && m.list.searching:
		commands = []cmd{{"enter", "Apply"}, {"esc", "Clear"}}
	case m.route.kind == routeList:
		commands = []cmd{
			{"n", "New"},
			{"e", "Edit"},
			{"/", "Search"},
			{"j/k", "Navigate"},
			{"r", "Refresh"},
			{"?", "Help"},
			{"q", "Quit"},
		}
	case m.form != nil && m.form.ctrl.Phase() != form.PhaseReady:
		commands = []cmd{{"esc", "Back"}}
	default:
		commands = []cmd{{"enter", "Save"}, {"esc", "Cancel"}}
	}

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.route.kind == routeList && m.list.pattern != "" {
		segments = append(segments, bg.Render("/"+truncate(m.list.pattern, 18), styles.AccentText))
	}
	if m.route.kind == routeList {
		segments = append(segments,
			bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(segments, "  "))
}

// renderSidebar lists the app sections and marks the active one.
func (m Model) renderSidebar(height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if height <= 0 {
		return ""
	}
	// The list is the only section with its own screen; help opens as an overlay.
	sections := []string{pluralLabel(m.resource.Name), "Help  ?"}
	active := 0

	lines := make([]string, 0, height)
	lines = append(lines, bg.FillLine("", SidebarWidth))
	for i, s := range sections {
		label := " " + truncate(s, SidebarWidth-3)
		if i == active {
			lines = append(lines, styles.Selected.Width(SidebarWidth).Render("▌"+label))
			continue
		}
		lines = append(lines, bg.FillLine(bg.Render(" "+label, styles.MutedText), SidebarWidth))
	}
	for len(lines) < height {
		lines = append(lines, bg.FillLine("", SidebarWidth))
	}
	return strings.Join(lines[:height], "\n")
}
