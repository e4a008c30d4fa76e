// Package ui provides the Bubble Tea terminal interface for ClubDesk.
//
// # Architecture Overview
//
// Model is the root tea.Model. It draws a header, a command bar, a sidebar
// with the app sections, the active screen and a toast line. Screens are
// addressed by path like a web router:
//
//   - /states: sortable, searchable list read from cache.Store
//   - /states/new: create form
//   - /states/{id}/edit: edit form, pre-filled after the record loads
//
// # Package Structure
//
//   - app.go: Model, Update/View, navigation and the Run function
//   - list.go: list screen, selection and regex search
//   - formview.go: form screen around a form.Controller
//   - router.go: route parsing and the Events bridge
//   - header.go: header, command bar and sidebar
//   - toast.go: transient notifications
//   - theme.go, style_helpers.go, box.go: lipgloss themes and drawing helpers
//   - keys.go, help.go, modal.go: key bindings and the help overlay
//
// # Event Flow
//
// Form controllers run network calls inside tea.Cmd goroutines and report
// back through Events, which implements form.Navigator and form.Notifier by
// sending messages into a channel the program listens on. Leaving a form
// disposes its controller, so results that arrive late change nothing.
//
// # Key Bindings
//
//   - j/k, g/G: Move selection
//   - /: Search (Enter applies, Esc clears)
//   - n: New record; e or Enter: Edit selected
//   - r: Refresh the list now
//   - Enter: Save form; Esc: Cancel form
//   - T: Cycle theme (saved to prefs)
//   - h or ?: Help
//   - q or Ctrl+C: Quit
package ui
