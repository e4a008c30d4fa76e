package ui

import (
	"strings"
	"time"
)

type toastKind int

const (
	toastSuccess toastKind = iota
	toastError
)

type toast struct {
	kind    toastKind
	text    string
	expires time.Time
}

type toastMsg struct {
	kind toastKind
	text string
}

func (m *Model) pushToast(msg toastMsg, now time.Time) {
	if strings.TrimSpace(msg.text) == "" {
		return
	}
	m.toasts = append(m.toasts, toast{kind: msg.kind, text: msg.text, expires: now.Add(ToastTTL)})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
}

func (m *Model) expireToasts(now time.Time) {
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Before(t.expires) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

// renderToasts draws the newest notifications on one line, newest first.
func (m Model) renderToasts() string {
	bg := NewBgStyle(m.theme.Background)
	if len(m.toasts) == 0 {
		return bg.FillLine("", m.width)
	}
	styles := m.theme.Styles()
	parts := make([]string, 0, len(m.toasts))
	for i := len(m.toasts) - 1; i >= 0; i-- {
		t := m.toasts[i]
		style := styles.ToastSuccess
		if t.kind == toastError {
			style = styles.ToastError
		}
		parts = append(parts, style.Render(truncate(t.text, 60)))
	}
	return bg.FillLine(bg.Join(parts, " "), m.width)
}
