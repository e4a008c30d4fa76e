package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/microcosm-cc/bluemonday"
)

// FieldError is one entry of the server's field-level error map.
type FieldError struct {
	Key     string
	Message string
}

// Error is returned for any non-2xx response. Message and Fields come from the
// {message, errors?} body when the server sent one.
type Error struct {
	Status  int
	Path    string
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// FirstField returns the first field error in document order.
func (e *Error) FirstField() (FieldError, bool) {
	if e == nil || len(e.Fields) == 0 {
		return FieldError{}, false
	}
	return e.Fields[0], true
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 404
}

type errorPayload struct {
	Message string         `json:"message"`
	Errors  fieldErrorList `json:"errors"`
}

// fieldErrorList decodes the errors object while keeping key order, so the
// "first" field error is the first one the server wrote.
type fieldErrorList []FieldError

func (l *fieldErrorList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*l = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("errors: want object, got %v", tok)
	}
	var out fieldErrorList
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		out = append(out, FieldError{Key: key, Message: fieldMessage(raw)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*l = out
	return nil
}

// fieldMessage accepts {message}, a bare string, or a list of strings.
func fieldMessage(raw json.RawMessage) string {
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

func decodeError(status int, path string, body io.Reader) *Error {
	apiErr := &Error{Status: status, Path: path}
	data, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return apiErr
	}
	var payload errorPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return apiErr
	}
	apiErr.Message = sanitize(payload.Message)
	for _, f := range payload.Errors {
		apiErr.Fields = append(apiErr.Fields, FieldError{
			Key:     strings.TrimSpace(f.Key),
			Message: sanitize(f.Message),
		})
	}
	return apiErr
}

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

// sanitize reduces a server message to plain printable text: markup,
// terminal escape sequences and control characters are removed and runs of
// whitespace collapse to one space.
func sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	messagePolicyOnce.Do(func() {
		messagePolicy = bluemonday.StrictPolicy()
	})
	text := html.UnescapeString(messagePolicy.Sanitize(ansi.Strip(trimmed)))
	text = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, text)
	return strings.Join(strings.Fields(text), " ")
}
