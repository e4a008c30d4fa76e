package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clubdesk/clubdesk/internal/cache"
	"github.com/clubdesk/clubdesk/internal/form"
	"github.com/clubdesk/clubdesk/internal/prefs"
)

// Options configures the UI.
type Options struct {
	Context  context.Context
	Client   form.ResourceClient
	Store    *cache.Store
	Resource form.Resource
	// StartPath opens a screen other than the list, e.g. "/states/new".
	StartPath string
	PollTick  time.Duration
	ThemeName string
	User      string
	PrefsPath string
	Logger    *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	client    form.ResourceClient
	store     *cache.Store
	resource  form.Resource
	prefsPath string
	user      string
	pollTick  time.Duration
	logger    *slog.Logger
	keys      keyMap
	events    *Events
	clock     func() time.Time

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool
	route  route
	modal  Modal
	toasts []toast

	// Data state
	snapshot    cache.Snapshot
	lastUpdated time.Time

	// Screens
	list    listState
	form    *formView
	formSeq int

	initCmd tea.Cmd
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	resource := opts.Resource
	if resource.Name == "" {
		resource.Name = "states"
	}
	if resource.Label == "" {
		resource.Label = pluralLabel(strings.TrimSuffix(resource.Name, "s"))
	}
	if resource.ListPath == "" {
		resource.ListPath = "/" + resource.Name
	}

	store := opts.Store
	if store == nil {
		store = cache.NewStore(resource.Name)
	}

	m := Model{
		ctx:       ctx,
		client:    opts.Client,
		store:     store,
		resource:  resource,
		prefsPath: prefsPath,
		user:      strings.TrimSpace(opts.User),
		pollTick:  pollTick,
		logger:    logger.With("component", "ui"),
		keys:      DefaultKeyMap(),
		events:    NewEvents(),
		clock:     time.Now,
		theme:     GetTheme(opts.ThemeName),
		route:     route{kind: routeList},
		list:      newListState(),
	}
	if opts.StartPath != "" {
		m.initCmd = m.navigate(opts.StartPath)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.events.listen(),
		tickCmd(m.pollTick),
		fetchSnapshotCmd(m.store),
		m.initCmd,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		if m.form != nil {
			m.form.input.Width = m.inputWidth()
		}
		return m, nil

	case tickMsg:
		m.expireToasts(time.Time(msg))
		return m, tea.Batch(fetchSnapshotCmd(m.store), tickCmd(m.pollTick))

	case snapshotMsg:
		m.applySnapshot(cache.Snapshot(msg))
		return m, nil

	case eventMsg:
		cmd := m.handleEvent(msg.msg)
		return m, tea.Batch(cmd, m.events.listen())

	case loadDoneMsg:
		return m.handleLoadDone(msg)

	case submitDoneMsg:
		return m.handleSubmitDone(msg)
	}

	return m, nil
}

func (m *Model) handleEvent(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case navigateMsg:
		return m.navigate(msg.path)
	case toastMsg:
		m.pushToast(msg, m.now())
	}
	return nil
}

// navigate switches screens. Leaving a form disposes its controller so late
// responses cannot act on the new screen.
func (m *Model) navigate(path string) tea.Cmd {
	r, ok := parseRoute(m.resource.ListPath, path)
	if !ok {
		m.logger.Warn("unknown route", "path", path)
		m.pushToast(toastMsg{kind: toastError, text: "Unknown page " + path}, m.now())
		return nil
	}

	m.closeForm()
	m.route = r
	m.logger.Debug("navigate", "path", r.path(m.resource.ListPath))
	if r.kind == routeList {
		return fetchSnapshotCmd(m.store)
	}
	return m.openForm(r)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	b.WriteString(m.renderToasts())
	return b.String()
}

func (m Model) renderBody() string {
	height := max(m.height-chromeHeight, 3)
	width := m.width
	sidebar := ""
	if m.width >= LayoutCompactWidth {
		sidebar = m.renderSidebar(height)
		width -= SidebarWidth
	}

	var content string
	if m.route.kind == routeList {
		content = m.renderList(width, height)
	} else {
		content = m.renderForm(width, height)
	}
	if sidebar == "" {
		return content
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)
}

// handleKey processes keyboard input. Ctrl+C always quits; everything else
// goes to the open modal or the active screen.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.closeForm()
		return m, tea.Quit
	}

	if m.modal != nil {
		modal, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.route.kind == routeList {
		return m.handleListKey(msg)
	}
	return m.handleFormKey(msg)
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, User: m.user}); err != nil {
		m.logger.Warn("save prefs failed", "error", err)
		m.pushToast(toastMsg{kind: toastError, text: "Could not save theme"}, m.now())
	}
}

func (m Model) now() time.Time {
	if m.clock == nil {
		return time.Now()
	}
	return m.clock()
}

// Messages

type tickMsg time.Time

type snapshotMsg cache.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *cache.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	opts.Context = ctx
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
