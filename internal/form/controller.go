package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/clubdesk/clubdesk/internal/api"
	"github.com/clubdesk/clubdesk/internal/cache"
)

// Phase tracks whether the form can accept a submission.
type Phase int

const (
	// PhaseLoading waits for the Edit-mode fetch.
	PhaseLoading Phase = iota
	// PhaseReady accepts input and submissions.
	PhaseReady
	// PhaseFetchFailed is terminal: the record could not be loaded.
	PhaseFetchFailed
	// PhaseDisposed is reported once the form was cancelled, completed or
	// detached from its screen.
	PhaseDisposed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFetchFailed:
		return "fetch failed"
	default:
		return "disposed"
	}
}

// SubmissionState follows one submission attempt.
type SubmissionState int

const (
	Idle SubmissionState = iota
	Submitting
	Succeeded
	Failed
)

func (s SubmissionState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	default:
		return "failed"
	}
}

// ResourceClient is the slice of the API the form needs.
type ResourceClient interface {
	Get(ctx context.Context, id string) (api.Resource, error)
	Create(ctx context.Context, in api.Input) (api.Resource, error)
	Update(ctx context.Context, id string, in api.Input) (api.Resource, error)
}

// Invalidator marks cached queries stale.
type Invalidator interface {
	Invalidate(keys ...cache.Key)
}

// Notifier shows transient messages to the user. Implementations must not
// call back into the controller.
type Notifier interface {
	NotifySuccess(message string)
	NotifyError(message string)
}

// Navigator moves the user to another screen.
type Navigator interface {
	NavigateTo(path string)
}

// Resource names the entity a form edits.
type Resource struct {
	// Name is the API collection and cache prefix, e.g. "states".
	Name string
	// Label is the singular display name, e.g. "State".
	Label string
	// ListPath is where the form navigates when no completion callback is set.
	ListPath string
}

func (r Resource) withDefaults() Resource {
	if r.Label == "" {
		r.Label = capitalizeFirst(strings.TrimSuffix(r.Name, "s"))
	}
	if r.ListPath == "" {
		r.ListPath = "/" + r.Name
	}
	return r
}

// Options wires a controller to its collaborators. Only Client is required.
type Options struct {
	Resource   Resource
	Client     ResourceClient
	Cache      Invalidator
	Notifier   Notifier
	Navigator  Navigator
	OnComplete func()
	Logger     *slog.Logger
}

// Controller drives one create or edit form for a single-name resource.
// It is safe for concurrent use; network calls run without holding the lock.
type Controller struct {
	mode       Mode
	resource   Resource
	client     ResourceClient
	cache      Invalidator
	notifier   Notifier
	navigator  Navigator
	onComplete func()
	logger     *slog.Logger

	// emitMu is held while a failure is reported and while the controller is
	// disposed, so no error notification starts after Dispose returns.
	emitMu sync.Mutex
	// afterResult runs between recording a failed result and notifying it.
	afterResult func()

	mu          sync.Mutex
	phase       Phase
	value       string
	fieldErrors map[string]string
	submission  SubmissionState
	loadStarted bool
	fetchErr    error
	disposed    bool
}

// New builds a controller. Create-mode forms start Ready with an empty value;
// Edit-mode forms start Loading until Load completes.
func New(mode Mode, opts Options) (*Controller, error) {
	if mode.IsEdit() && strings.TrimSpace(mode.ResourceID()) == "" {
		return nil, &ConfigurationError{Reason: "edit mode requires a resource id"}
	}
	if opts.Client == nil {
		return nil, &ConfigurationError{Reason: "resource client is required"}
	}
	if opts.Resource.Name == "" {
		return nil, &ConfigurationError{Reason: "resource name is required"}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	resource := opts.Resource.withDefaults()

	c := &Controller{
		mode:        mode,
		resource:    resource,
		client:      opts.Client,
		cache:       opts.Cache,
		notifier:    opts.Notifier,
		navigator:   opts.Navigator,
		onComplete:  opts.OnComplete,
		logger:      logger.With("component", "form", "resource", resource.Name, "mode", mode.String()),
		fieldErrors: map[string]string{},
		phase:       PhaseReady,
	}
	if c.cache == nil {
		c.cache = noopInvalidator{}
	}
	if c.notifier == nil {
		c.notifier = noopNotifier{}
	}
	if mode.IsEdit() {
		c.phase = PhaseLoading
	}
	return c, nil
}

// Load fetches the edited record and pre-fills the form. It does nothing in
// Create mode. Only the first call issues a request; later calls report the
// outcome of that one.
func (c *Controller) Load(ctx context.Context) error {
	if !c.mode.IsEdit() {
		return nil
	}

	c.mu.Lock()
	switch {
	case c.disposed:
		c.mu.Unlock()
		return ErrDisposed
	case c.loadStarted && c.phase == PhaseLoading:
		c.mu.Unlock()
		return ErrLoadInFlight
	case c.loadStarted:
		err := c.fetchErr
		c.mu.Unlock()
		return err
	}
	c.loadStarted = true
	c.mu.Unlock()

	id := c.mode.ResourceID()
	c.logger.Debug("loading record", "id", id)
	rec, err := c.client.Get(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		c.logger.Debug("dropping load result for disposed form", "id", id)
		return ErrDisposed
	}
	if err != nil {
		fetchErr := &FetchError{ID: id, Err: err}
		c.fetchErr = fetchErr
		c.phase = PhaseFetchFailed
		c.logger.Warn("load failed", "id", id, "error", err)
		return fetchErr
	}
	c.value = rec.Name
	c.phase = PhaseReady
	return nil
}

// Submit validates value and, when valid, creates or updates the record.
// A validation failure records field errors and leaves the submission Idle.
func (c *Controller) Submit(ctx context.Context, value string) error {
	c.mu.Lock()
	switch {
	case c.disposed:
		c.mu.Unlock()
		return ErrDisposed
	case c.phase != PhaseReady:
		c.mu.Unlock()
		return ErrNotReady
	case c.submission == Submitting:
		c.mu.Unlock()
		return ErrSubmitInFlight
	}

	c.value = value
	if verr := ValidateName(value); verr != nil {
		c.fieldErrors = cloneFields(verr.Fields)
		c.mu.Unlock()
		return verr
	}
	c.fieldErrors = map[string]string{}
	c.submission = Submitting
	c.mu.Unlock()

	input := api.Input{Name: value}
	var err error
	if c.mode.IsEdit() {
		_, err = c.client.Update(ctx, c.mode.ResourceID(), input)
	} else {
		_, err = c.client.Create(ctx, input)
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		c.logger.Debug("dropping submission result for disposed form", "error", err)
		return ErrDisposed
	}

	if err != nil {
		serr := c.submissionError(err)
		c.submission = Failed
		c.fieldErrors = map[string]string{}
		if serr.Field != "" {
			c.fieldErrors[FieldName] = serr.FieldMessage
		}
		c.mu.Unlock()

		c.logger.Warn("submission failed", "kind", serr.Kind.String(), "error", err)
		if c.afterResult != nil {
			c.afterResult()
		}
		if !c.emitUnlessDisposed(func() { c.notifier.NotifyError(serr.Message) }) {
			c.logger.Debug("dropping failure notification for disposed form")
			return ErrDisposed
		}
		return serr
	}

	c.submission = Succeeded
	c.fieldErrors = map[string]string{}
	c.disposed = true
	c.mu.Unlock()

	keys := []cache.Key{cache.ListKey(c.resource.Name)}
	if c.mode.IsEdit() {
		keys = append(keys, cache.ItemKey(c.resource.Name, c.mode.ResourceID()))
	}
	c.cache.Invalidate(keys...)
	c.notifier.NotifySuccess(c.successMessage())
	c.logger.Info("submission succeeded")
	c.complete()
	return nil
}

// Cancel leaves the form without saving. Any outstanding response is
// discarded.
func (c *Controller) Cancel() {
	if c.markDisposed() {
		return
	}
	c.complete()
}

// Dispose detaches the controller from its screen. Responses that arrive
// later cause no state change, notification or navigation. A failure
// notification already being delivered finishes before Dispose returns.
func (c *Controller) Dispose() {
	c.markDisposed()
}

// markDisposed sets the disposed flag and reports whether it was already set.
func (c *Controller) markDisposed() bool {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	was := c.disposed
	c.disposed = true
	return was
}

// emitUnlessDisposed runs fn unless the controller has been disposed.
func (c *Controller) emitUnlessDisposed(fn func()) bool {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.mu.Lock()
	disposed := c.disposed
	c.mu.Unlock()
	if disposed {
		return false
	}
	fn()
	return true
}

// SetValue records an edit to the name field without submitting it.
func (c *Controller) SetValue(value string) {
	c.mu.Lock()
	c.value = value
	c.mu.Unlock()
}

func (c *Controller) Mode() Mode {
	return c.mode
}

func (c *Controller) Resource() Resource {
	return c.resource
}

func (c *Controller) Value() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// FieldErrors returns a copy of the current per-field messages.
func (c *Controller) FieldErrors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneFields(c.fieldErrors)
}

func (c *Controller) SubmissionState() SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submission
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return PhaseDisposed
	}
	return c.phase
}

// CanSubmit reports whether the submit action should be enabled.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.disposed && c.phase == PhaseReady && c.submission != Submitting
}

// FetchErr returns the terminal load error, if any.
func (c *Controller) FetchErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchErr
}

// Title is the heading for the form's screen.
func (c *Controller) Title() string {
	if c.mode.IsEdit() {
		return "Edit " + c.resource.Label
	}
	return "New " + c.resource.Label
}

func (c *Controller) complete() {
	if c.onComplete != nil {
		c.onComplete()
		return
	}
	if c.navigator != nil {
		c.navigator.NavigateTo(c.resource.ListPath)
	}
}

func (c *Controller) successMessage() string {
	if c.mode.IsEdit() {
		return c.resource.Label + " updated successfully"
	}
	return c.resource.Label + " created successfully"
}

func (c *Controller) fallbackMessage() string {
	label := strings.ToLower(c.resource.Label)
	if c.mode.IsEdit() {
		return "Failed to update " + label
	}
	return "Failed to create " + label
}

func (c *Controller) submissionError(err error) *SubmissionError {
	serr := &SubmissionError{
		Mode:    c.mode,
		Kind:    KindTransport,
		Message: c.fallbackMessage(),
		Err:     err,
	}

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return serr
	}
	if apiErr.Status >= 500 {
		serr.Kind = KindServerFault
	} else {
		serr.Kind = KindRejected
	}

	if field, ok := apiErr.FirstField(); ok {
		label := FieldLabel(field.Key)
		msg := RewriteMessage(field.Message, field.Key, label)
		if msg == "" {
			msg = fmt.Sprintf("%s is invalid", label)
		}
		serr.Field = field.Key
		serr.FieldMessage = msg
		serr.Message = msg
		return serr
	}
	if apiErr.Message != "" {
		serr.Message = apiErr.Message
	}
	return serr
}

func cloneFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(...cache.Key) {}

type noopNotifier struct{}

func (noopNotifier) NotifySuccess(string) {}
func (noopNotifier) NotifyError(string)   {}
