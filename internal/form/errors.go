package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotReady is returned by Submit before an Edit form has loaded, or
	// after its load failed.
	ErrNotReady = errors.New("form: not ready for submission")
	// ErrSubmitInFlight is returned by Submit while another submission is
	// outstanding. No request is made.
	ErrSubmitInFlight = errors.New("form: submission already in progress")
	// ErrLoadInFlight is returned by Load while the first load is outstanding.
	ErrLoadInFlight = errors.New("form: load already in progress")
	// ErrDisposed is returned once the controller was cancelled, completed or
	// disposed, including for responses that arrive afterwards.
	ErrDisposed = errors.New("form: controller disposed")
)

// ConfigurationError reports a controller that cannot be built.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "form configuration: " + e.Reason
}

// ValidationError carries local per-field messages. It never reaches the
// network.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FetchError reports a failed Edit-mode load. It is terminal for the
// controller that returned it.
type FetchError struct {
	ID  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.ID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SubmissionKind separates the causes that the UI collapses into one message.
type SubmissionKind int

const (
	// KindRejected is a 4xx answer: the server refused the input.
	KindRejected SubmissionKind = iota
	// KindServerFault is a 5xx answer.
	KindServerFault
	// KindTransport covers failures that never produced an HTTP status.
	KindTransport
)

func (k SubmissionKind) String() string {
	switch k {
	case KindRejected:
		return "rejected"
	case KindServerFault:
		return "server fault"
	default:
		return "transport"
	}
}

// SubmissionError reports a failed create or update. Message is what the user
// was shown; Field and FieldMessage are set when the server attributed the
// failure to an input.
type SubmissionError struct {
	Mode         Mode
	Kind         SubmissionKind
	Message      string
	Field        string
	FieldMessage string
	Err          error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit %s (%s): %s", e.Mode, e.Kind, e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
