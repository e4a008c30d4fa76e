package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clubdesk/clubdesk/internal/api"
	"github.com/clubdesk/clubdesk/internal/form"
)

// formView is the screen around one form.Controller. seq tags command
// results so answers for a closed form are ignored.
type formView struct {
	seq    int
	ctrl   *form.Controller
	input  textinput.Model
	saving bool
}

type loadDoneMsg struct {
	seq int
	err error
}

type submitDoneMsg struct {
	seq int
	err error
}

// openForm builds a controller for the route and returns its first command.
func (m *Model) openForm(r route) tea.Cmd {
	mode := form.Create()
	if r.kind == routeEdit {
		mode = form.Edit(r.id)
	}

	ctrl, err := form.New(mode, form.Options{
		Resource:  m.resource,
		Client:    m.client,
		Cache:     m.store,
		Notifier:  m.events,
		Navigator: m.events,
		Logger:    m.logger,
	})
	if err != nil {
		m.logger.Error("open form failed", "mode", mode.String(), "error", err)
		m.pushToast(toastMsg{kind: toastError, text: err.Error()}, m.now())
		m.route = route{kind: routeList}
		return nil
	}

	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = m.resource.Label + " name"
	ti.CharLimit = form.MaxNameLength + 1
	ti.Width = m.inputWidth()
	focus := ti.Focus()

	m.formSeq++
	m.form = &formView{seq: m.formSeq, ctrl: ctrl, input: ti}

	if mode.IsEdit() {
		return loadCmd(m.ctx, m.form.seq, ctrl)
	}
	return focus
}

func (m *Model) closeForm() {
	if m.form == nil {
		return
	}
	m.form.ctrl.Dispose()
	m.form = nil
}

func (m Model) inputWidth() int {
	w := m.width - SidebarWidth - 10
	if m.width < LayoutCompactWidth {
		w = m.width - 10
	}
	return max(w, 20)
}

func loadCmd(ctx context.Context, seq int, ctrl *form.Controller) tea.Cmd {
	return func() tea.Msg {
		return loadDoneMsg{seq: seq, err: ctrl.Load(ctx)}
	}
}

func submitCmd(ctx context.Context, seq int, ctrl *form.Controller, value string) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{seq: seq, err: ctrl.Submit(ctx, value)}
	}
}

func (m Model) handleLoadDone(msg loadDoneMsg) (tea.Model, tea.Cmd) {
	if m.form == nil || m.form.seq != msg.seq {
		return m, nil
	}
	if msg.err != nil {
		return m, nil
	}
	m.form.input.SetValue(m.form.ctrl.Value())
	m.form.input.CursorEnd()
	return m, nil
}

func (m Model) handleSubmitDone(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	if m.form == nil || m.form.seq != msg.seq {
		return m, nil
	}
	m.form.saving = false

	var serr *form.SubmissionError
	if errors.As(msg.err, &serr) {
		m.logger.Debug("submission rejected", "kind", serr.Kind.String(), "field", serr.Field)
	}
	return m, nil
}

// handleFormKey processes input on the create/edit screen. Only Esc works
// until the form is ready.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fv := m.form
	if fv == nil {
		return m, nil
	}

	if key.Matches(msg, m.keys.Cancel) {
		fv.ctrl.Cancel()
		return m, nil
	}
	if fv.ctrl.Phase() != form.PhaseReady {
		return m, nil
	}

	if key.Matches(msg, m.keys.Submit) {
		if fv.saving || !fv.ctrl.CanSubmit() {
			return m, nil
		}
		fv.saving = true
		return m, submitCmd(m.ctx, fv.seq, fv.ctrl, fv.input.Value())
	}

	var cmd tea.Cmd
	fv.input, cmd = fv.input.Update(msg)
	fv.ctrl.SetValue(fv.input.Value())
	return m, cmd
}

// renderForm renders the form screen inside a titled box.
func (m Model) renderForm(width, height int) string {
	fv := m.form
	if fv == nil {
		return m.renderTitledBox("", "", width, height, true)
	}
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	label := strings.ToLower(m.resource.Label)

	var lines []string
	switch fv.ctrl.Phase() {
	case form.PhaseLoading:
		lines = append(lines, styles.MutedText.Render("Loading..."))
		if item, ok := m.store.Item(fv.ctrl.Mode().ResourceID()); ok {
			lines = append(lines, styles.FaintText.Render("Last seen as "+truncate(item.Name, max(width-20, 10))))
		}
	case form.PhaseFetchFailed:
		lines = append(lines, styles.DangerText.Render("Could not load "+label))
		switch err := fv.ctrl.FetchErr(); {
		case api.IsNotFound(err):
			lines = append(lines, styles.MutedText.Render("This "+label+" no longer exists"))
		case err != nil:
			lines = append(lines, styles.MutedText.Render(truncate(err.Error(), max(width-6, 10))))
		}
		lines = append(lines, "", styles.FaintText.Render("esc  Back to list"))
	default:
		lines = append(lines,
			styles.AccentText.Render("Name"),
			fv.input.View(),
		)
		if msg := fv.ctrl.FieldErrors()[form.FieldName]; msg != "" {
			lines = append(lines, styles.DangerText.Render(msg))
		} else {
			lines = append(lines, "")
		}
		lines = append(lines, "")
		if fv.saving || fv.ctrl.SubmissionState() == form.Submitting {
			lines = append(lines, styles.WarningText.Render("Saving..."))
		} else {
			lines = append(lines, styles.FaintText.Render("enter  Save    esc  Cancel"))
		}
	}

	return m.renderTitledBox(fv.ctrl.Title(), " "+strings.Join(lines, "\n "), width, height, true)
}
