package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type routeKind int

const (
	routeList routeKind = iota
	routeNew
	routeEdit
)

// route is a parsed screen address: /states, /states/new, /states/{id}/edit.
type route struct {
	kind routeKind
	id   string
}

func parseRoute(listPath, path string) (route, bool) {
	base := "/" + strings.Trim(listPath, "/")
	path = "/" + strings.Trim(strings.TrimSpace(path), "/")

	if path == base {
		return route{kind: routeList}, true
	}
	rest, ok := strings.CutPrefix(path, base+"/")
	if !ok {
		return route{}, false
	}
	if rest == "new" {
		return route{kind: routeNew}, true
	}
	id, ok := strings.CutSuffix(rest, "/edit")
	if !ok || id == "" || strings.Contains(id, "/") {
		return route{}, false
	}
	return route{kind: routeEdit, id: id}, true
}

func (r route) path(listPath string) string {
	base := "/" + strings.Trim(listPath, "/")
	switch r.kind {
	case routeNew:
		return base + "/new"
	case routeEdit:
		return base + "/" + r.id + "/edit"
	default:
		return base
	}
}

// Events carries navigation and notifications from form controllers, which
// may call them from command goroutines, into the Bubble Tea loop. It
// implements form.Navigator and form.Notifier.
type Events struct {
	ch chan tea.Msg
}

// NewEvents returns an event channel with room for bursts of callbacks.
func NewEvents() *Events {
	return &Events{ch: make(chan tea.Msg, 32)}
}

func (e *Events) NavigateTo(path string) {
	e.send(navigateMsg{path: path})
}

func (e *Events) NotifySuccess(message string) {
	e.send(toastMsg{kind: toastSuccess, text: message})
}

func (e *Events) NotifyError(message string) {
	e.send(toastMsg{kind: toastError, text: message})
}

// send never blocks the caller, which may be the Bubble Tea loop itself.
// When the buffer is full the message is handed to a goroutine.
func (e *Events) send(msg tea.Msg) {
	select {
	case e.ch <- msg:
	default:
		go func() { e.ch <- msg }()
	}
}

// eventMsg wraps a message that came through the event channel.
type eventMsg struct {
	msg tea.Msg
}

func (e *Events) listen() tea.Cmd {
	return func() tea.Msg {
		return eventMsg{msg: <-e.ch}
	}
}

type navigateMsg struct {
	path string
}
