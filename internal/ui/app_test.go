package ui

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/clubdesk/clubdesk/internal/api"
	"github.com/clubdesk/clubdesk/internal/cache"
	"github.com/clubdesk/clubdesk/internal/form"
	"github.com/clubdesk/clubdesk/internal/prefs"
)

type stubClient struct {
	mu      sync.Mutex
	created []string
	updated map[string]string
	records map[string]api.Resource
	saveErr error
}

func (s *stubClient) Get(_ context.Context, id string) (api.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return api.Resource{}, &api.Error{Status: 404, Path: "/api/states/" + id, Message: "not found"}
	}
	return rec, nil
}

func (s *stubClient) Create(_ context.Context, in api.Input) (api.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return api.Resource{}, s.saveErr
	}
	s.created = append(s.created, in.Name)
	return api.Resource{ID: "99", Name: in.Name}, nil
}

func (s *stubClient) Update(_ context.Context, id string, in api.Input) (api.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return api.Resource{}, s.saveErr
	}
	if s.updated == nil {
		s.updated = map[string]string{}
	}
	s.updated[id] = in.Name
	return api.Resource{ID: api.ID(id), Name: in.Name}, nil
}

func newTestModel(t *testing.T, client *stubClient, startPath string) (Model, *cache.Store) {
	t.Helper()
	store := cache.NewStore("states")
	store.UpdateList([]api.Resource{
		{ID: "3", Name: "Texas"},
		{ID: "1", Name: "Alaska"},
		{ID: "2", Name: "Ohio"},
	}, nil)

	m := New(Options{
		Client:    client,
		Store:     store,
		Resource:  form.Resource{Name: "states", Label: "State", ListPath: "/states"},
		StartPath: startPath,
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m = update(t, m, snapshotMsg(store.Snapshot()))
	return m, store
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// drainEvents feeds queued controller callbacks back into the model.
func drainEvents(t *testing.T, m Model) Model {
	t.Helper()
	for len(m.events.ch) > 0 {
		m = update(t, m, eventMsg{msg: <-m.events.ch})
	}
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func toastTexts(m Model) []string {
	out := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		out = append(out, t.text)
	}
	return out
}

func TestList_SortedAndNavigable(t *testing.T) {
	m, _ := newTestModel(t, &stubClient{}, "")

	items := m.visibleItems()
	require.Len(t, items, 3)
	require.Equal(t, "Alaska", items[0].Name)

	m = update(t, m, keyRunes("j"))
	m = update(t, m, keyRunes("j"))
	m = update(t, m, keyRunes("j"))
	sel, ok := m.selectedItem()
	require.True(t, ok)
	require.Equal(t, "Texas", sel.Name)

	m = update(t, m, keyRunes("g"))
	sel, _ = m.selectedItem()
	require.Equal(t, "Alaska", sel.Name)

	m = update(t, m, keyRunes("G"))
	sel, _ = m.selectedItem()
	require.Equal(t, "Texas", sel.Name)

	require.Contains(t, m.View(), "Ohio")
}

func TestList_SelectionFollowsRecordAcrossRefresh(t *testing.T) {
	m, store := newTestModel(t, &stubClient{}, "")
	m = update(t, m, keyRunes("j")) // Ohio

	store.UpdateList([]api.Resource{
		{ID: "3", Name: "Texas"},
		{ID: "1", Name: "Alaska"},
		{ID: "2", Name: "Ohio"},
		{ID: "4", Name: "Idaho"},
	}, nil)
	m = update(t, m, snapshotMsg(store.Snapshot()))

	sel, ok := m.selectedItem()
	require.True(t, ok)
	require.Equal(t, "Ohio", sel.Name)
	require.Equal(t, 2, m.list.selected)
}

func TestList_SearchFiltersCaseInsensitive(t *testing.T) {
	m, _ := newTestModel(t, &stubClient{}, "")

	m = update(t, m, keyRunes("/"))
	require.True(t, m.list.searching)
	m = update(t, m, keyRunes("^t"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.False(t, m.list.searching)
	require.Equal(t, "^t", m.list.pattern)
	items := m.visibleItems()
	require.Len(t, items, 1)
	require.Equal(t, "Texas", items[0].Name)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Len(t, m.visibleItems(), 3)
}

func TestList_InvalidSearchKeepsListAndWarns(t *testing.T) {
	m, _ := newTestModel(t, &stubClient{}, "")

	m = update(t, m, keyRunes("/"))
	m = update(t, m, keyRunes("(["))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, m.visibleItems(), 3)
	require.Equal(t, []string{"Invalid pattern: (["}, toastTexts(m))
}

func TestCreateFlow_SubmitsToastsAndReturnsToList(t *testing.T) {
	client := &stubClient{}
	m, store := newTestModel(t, client, "")

	m = update(t, m, keyRunes("n"))
	require.Equal(t, routeNew, m.route.kind)
	require.NotNil(t, m.form)
	require.Contains(t, m.View(), "New State")

	m = update(t, m, keyRunes("Utah"))
	require.Equal(t, "Utah", m.form.input.Value())

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.True(t, m.form.saving)

	// A second Enter while saving issues nothing.
	_, again := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, again)

	m = update(t, m, cmd())
	m = drainEvents(t, m)

	require.Equal(t, []string{"Utah"}, client.created)
	require.Equal(t, routeList, m.route.kind)
	require.Nil(t, m.form)
	require.Equal(t, []string{"State created successfully"}, toastTexts(m))
	require.True(t, store.IsStale(cache.ListKey("states")))
}

func TestCreateFlow_EmptyNameShowsFieldError(t *testing.T) {
	client := &stubClient{}
	m, _ := newTestModel(t, client, "/states/new")

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	m = drainEvents(t, m)

	require.Empty(t, client.created)
	require.Equal(t, routeNew, m.route.kind)
	require.Equal(t, "Name is required", m.form.ctrl.FieldErrors()[form.FieldName])
	require.Contains(t, m.View(), "Name is required")
	require.Empty(t, m.toasts)
}

func TestCreateFlow_ServerFieldErrorStaysOnForm(t *testing.T) {
	client := &stubClient{saveErr: &api.Error{
		Status: 422,
		Fields: []api.FieldError{{Key: "states_stateKey", Message: "states_stateKey already exists"}},
	}}
	m, _ := newTestModel(t, client, "/states/new")

	m = update(t, m, keyRunes("Texas"))
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, cmd())
	m = drainEvents(t, m)

	require.Equal(t, routeNew, m.route.kind)
	require.False(t, m.form.saving)
	require.Equal(t, "State already exists", m.form.ctrl.FieldErrors()[form.FieldName])
	require.Equal(t, []string{"State already exists"}, toastTexts(m))
}

func TestEditFlow_PrefillsAndUpdates(t *testing.T) {
	client := &stubClient{records: map[string]api.Resource{"12": {ID: "12", Name: "Texas"}}}
	m, store := newTestModel(t, client, "/states/12/edit")
	require.Equal(t, routeEdit, m.route.kind)
	require.Contains(t, m.View(), "Loading...")

	m = update(t, m, m.initCmd())
	require.Equal(t, "Texas", m.form.input.Value())
	require.Contains(t, m.View(), "Edit State")

	m = update(t, m, keyRunes(" Republic"))
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, cmd())
	m = drainEvents(t, m)

	require.Equal(t, map[string]string{"12": "Texas Republic"}, client.updated)
	require.Equal(t, routeList, m.route.kind)
	require.Equal(t, []string{"State updated successfully"}, toastTexts(m))
	require.True(t, store.IsStale(cache.ItemKey("states", "12")))
}

func TestEditFlow_LoadingShowsLastSeenName(t *testing.T) {
	client := &stubClient{records: map[string]api.Resource{"12": {ID: "12", Name: "Lone Star"}}}
	m, store := newTestModel(t, client, "/states/12/edit")
	store.PutItem(api.Resource{ID: "12", Name: "Texas"})
	require.Contains(t, m.View(), "Last seen as Texas")

	m = update(t, m, m.initCmd())
	require.Equal(t, "Lone Star", m.form.input.Value())
	require.NotContains(t, m.View(), "Last seen as")
}

func TestEditFlow_FetchFailureOnlyAllowsEsc(t *testing.T) {
	client := &stubClient{}
	m, _ := newTestModel(t, client, "/states/404/edit")

	m = update(t, m, m.initCmd())
	require.Equal(t, form.PhaseFetchFailed, m.form.ctrl.Phase())
	require.Contains(t, m.View(), "Could not load state")
	require.Contains(t, m.View(), "This state no longer exists")

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	m = update(t, m, keyRunes("x"))
	require.Equal(t, "", m.form.input.Value())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = drainEvents(t, m)
	require.Equal(t, routeList, m.route.kind)
	require.Empty(t, client.updated)
}

func TestCancel_ReturnsToListWithoutSaving(t *testing.T) {
	client := &stubClient{}
	m, _ := newTestModel(t, client, "/states/new")

	m = update(t, m, keyRunes("Maine"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = drainEvents(t, m)

	require.Equal(t, routeList, m.route.kind)
	require.Empty(t, client.created)
	require.Empty(t, m.toasts)
}

func TestLateSubmitResultIsIgnoredAfterLeaving(t *testing.T) {
	client := &stubClient{}
	m, _ := newTestModel(t, client, "/states/new")

	m = update(t, m, keyRunes("Iowa"))
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// The user leaves before the request runs.
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = drainEvents(t, m)
	require.Equal(t, routeList, m.route.kind)

	msg := cmd()
	done, ok := msg.(submitDoneMsg)
	require.True(t, ok)
	require.ErrorIs(t, done.err, form.ErrDisposed)

	m = update(t, m, msg)
	m = drainEvents(t, m)
	require.Empty(t, client.created)
	require.Empty(t, m.toasts)
	require.Equal(t, routeList, m.route.kind)
}

func TestUnknownRouteToasts(t *testing.T) {
	m, _ := newTestModel(t, &stubClient{}, "")
	m.events.NavigateTo("/members")
	m = drainEvents(t, m)
	require.Equal(t, routeList, m.route.kind)
	require.Equal(t, []string{"Unknown page /members"}, toastTexts(m))
}

func TestCycleThemePersistsPrefs(t *testing.T) {
	m, _ := newTestModel(t, &stubClient{}, "")
	m.user = "Dana"

	m = update(t, m, keyRunes("T"))
	require.Equal(t, "Kanagawa", m.theme.Name)

	saved, err := prefs.Load(m.prefsPath)
	require.NoError(t, err)
	require.Equal(t, prefs.Prefs{Theme: "Kanagawa", User: "Dana"}, saved)
}

func TestHelpModalOpensAndCloses(t *testing.T) {
	m, _ := newTestModel(t, &stubClient{}, "")

	m = update(t, m, keyRunes("?"))
	require.NotNil(t, m.modal)
	require.Contains(t, m.View(), "Keyboard Shortcuts")

	m = update(t, m, keyRunes("x"))
	require.Nil(t, m.modal)
}

func TestHeaderReflectsAPIState(t *testing.T) {
	m, store := newTestModel(t, &stubClient{}, "")
	require.Contains(t, m.View(), "3 states")

	store.UpdateList(nil, errors.New("dial tcp: connection refused"))
	store.UpdateList(nil, errors.New("dial tcp: connection refused"))
	m = update(t, m, snapshotMsg(store.Snapshot()))

	view := m.View()
	require.Contains(t, view, "OFFLINE")
	require.Contains(t, view, "Retrying...")
	require.Equal(t, "HTTP 503", classifyConnectionError(&api.Error{Status: 503}))
}
