package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID is an opaque server-assigned identifier. The API sends it either as a
// JSON string or a JSON number; both decode to the same textual form.
type ID string

// UnmarshalJSON accepts string and numeric identifiers.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier text.
func (id ID) String() string {
	return string(id)
}

// Resource mirrors the single-field records served under /api/<resource>.
type Resource struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (r Resource) ParsedCreatedAt() time.Time {
	return parseTime(r.CreatedAt)
}

// ParsedUpdatedAt returns the parsed UpdatedAt timestamp.
func (r Resource) ParsedUpdatedAt() time.Time {
	return parseTime(r.UpdatedAt)
}

// Input is the request body for create and update calls.
type Input struct {
	Name string `json:"name"`
}

// ListResponse is the enveloped form of the list endpoint.
type ListResponse struct {
	Items []Resource `json:"items"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
