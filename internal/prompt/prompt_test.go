package prompt

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clubdesk/clubdesk/internal/api"
	"github.com/clubdesk/clubdesk/internal/cache"
	"github.com/clubdesk/clubdesk/internal/form"
)

type answer struct {
	value string
	err   error
}

type fakeDriver struct {
	answers  []answer
	confirms []bool
	inputs   []InputConfig
	infos    []string
}

func (d *fakeDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	d.inputs = append(d.inputs, cfg)
	if len(d.answers) == 0 {
		return "", ErrAborted
	}
	a := d.answers[0]
	d.answers = d.answers[1:]
	return a.value, a.err
}

func (d *fakeDriver) Confirm(context.Context, ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return false, nil
	}
	ok := d.confirms[0]
	d.confirms = d.confirms[1:]
	return ok, nil
}

func (d *fakeDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

type fakeClient struct {
	mu        sync.Mutex
	getResult api.Resource
	getErr    error
	writeErrs []error
	written   []string
}

func (f *fakeClient) Get(context.Context, string) (api.Resource, error) {
	return f.getResult, f.getErr
}

func (f *fakeClient) write(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, name)
	if len(f.writeErrs) == 0 {
		return nil
	}
	err := f.writeErrs[0]
	f.writeErrs = f.writeErrs[1:]
	return err
}

func (f *fakeClient) Create(_ context.Context, in api.Input) (api.Resource, error) {
	return api.Resource{ID: "1", Name: in.Name}, f.write(in.Name)
}

func (f *fakeClient) Update(_ context.Context, id string, in api.Input) (api.Resource, error) {
	return api.Resource{ID: api.ID(id), Name: in.Name}, f.write(in.Name)
}

func runPrompt(t *testing.T, mode form.Mode, client *fakeClient, driver *fakeDriver) (*cache.Store, error) {
	t.Helper()
	store := cache.NewStore("states")
	err := Run(context.Background(), Options{
		Mode:     mode,
		Resource: form.Resource{Name: "states"},
		Client:   client,
		Cache:    store,
		Driver:   driver,
	})
	return store, err
}

func TestRunCreate(t *testing.T) {
	client := &fakeClient{}
	driver := &fakeDriver{answers: []answer{{value: "Texas"}}}

	store, err := runPrompt(t, form.Create(), client, driver)
	require.NoError(t, err)
	require.Equal(t, []string{"Texas"}, client.written)
	require.Equal(t, []string{"New State", "✓ State created successfully"}, driver.infos)
	require.True(t, store.IsStale(cache.ListKey("states")))

	require.Len(t, driver.inputs, 1)
	require.Equal(t, "Name:", driver.inputs[0].Message)
	require.Empty(t, driver.inputs[0].Default)
}

func TestRunValidatorMatchesFormRule(t *testing.T) {
	driver := &fakeDriver{}
	_, _ = runPrompt(t, form.Create(), &fakeClient{}, driver)

	require.Len(t, driver.inputs, 1)
	validate := driver.inputs[0].Validator
	require.EqualError(t, validate(""), "Name is required")
	require.NoError(t, validate("Ohio"))
}

func TestRunEditPrefillsAndUpdates(t *testing.T) {
	client := &fakeClient{getResult: api.Resource{ID: "12", Name: "Texas"}}
	driver := &fakeDriver{answers: []answer{{value: "Lone Star"}}}

	_, err := runPrompt(t, form.Edit("12"), client, driver)
	require.NoError(t, err)
	require.Equal(t, "Texas", driver.inputs[0].Default)
	require.Equal(t, []string{"Lone Star"}, client.written)
	require.Contains(t, driver.infos, "✓ State updated successfully")
}

func TestRunEditFetchFailure(t *testing.T) {
	client := &fakeClient{getErr: &api.Error{Status: 404, Path: "/states/12"}}
	driver := &fakeDriver{}

	_, err := runPrompt(t, form.Edit("12"), client, driver)
	var ferr *form.FetchError
	require.ErrorAs(t, err, &ferr)
	require.Empty(t, driver.inputs)
	require.Empty(t, client.written)
}

func TestRunRejectedReprompts(t *testing.T) {
	client := &fakeClient{writeErrs: []error{
		&api.Error{Status: 422, Fields: []api.FieldError{{Key: "name", Message: "name already exists"}}},
	}}
	driver := &fakeDriver{answers: []answer{{value: "Texas"}, {value: "Texas II"}}}

	_, err := runPrompt(t, form.Create(), client, driver)
	require.NoError(t, err)
	require.Equal(t, []string{"Texas", "Texas II"}, client.written)
	require.Contains(t, driver.infos, "✗ Name already exists")
	require.Equal(t, "Texas", driver.inputs[1].Default)
}

func TestRunServerFaultAsksBeforeRetry(t *testing.T) {
	fault := &api.Error{Status: 503, Message: "maintenance"}

	t.Run("declined", func(t *testing.T) {
		client := &fakeClient{writeErrs: []error{fault}}
		driver := &fakeDriver{answers: []answer{{value: "Texas"}}, confirms: []bool{false}}

		_, err := runPrompt(t, form.Create(), client, driver)
		var serr *form.SubmissionError
		require.ErrorAs(t, err, &serr)
		require.Equal(t, form.KindServerFault, serr.Kind)
		require.Contains(t, driver.infos, "✗ maintenance")
	})

	t.Run("retried", func(t *testing.T) {
		client := &fakeClient{writeErrs: []error{fault}}
		driver := &fakeDriver{answers: []answer{{value: "Texas"}, {value: "Texas"}}, confirms: []bool{true}}

		_, err := runPrompt(t, form.Create(), client, driver)
		require.NoError(t, err)
		require.Equal(t, []string{"Texas", "Texas"}, client.written)
	})
}

func TestRunAbort(t *testing.T) {
	client := &fakeClient{}
	driver := &fakeDriver{answers: []answer{{err: ErrAborted}}}

	_, err := runPrompt(t, form.Create(), client, driver)
	require.ErrorIs(t, err, ErrAborted)
	require.Empty(t, client.written)
}

func TestRunInvalidValueNeverReachesAPI(t *testing.T) {
	client := &fakeClient{}
	driver := &fakeDriver{answers: []answer{{value: ""}, {value: "Ohio"}}}

	_, err := runPrompt(t, form.Create(), client, driver)
	require.NoError(t, err)
	require.Equal(t, []string{"Ohio"}, client.written)
	require.Contains(t, driver.infos, "Name is required")
}

func TestRunRequiresDriver(t *testing.T) {
	err := Run(context.Background(), Options{Mode: form.Create()})
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrAborted))
}

func TestTranslateSurveyErr(t *testing.T) {
	other := errors.New("boom")
	require.Equal(t, other, translateSurveyErr(other))
}
