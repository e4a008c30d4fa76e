package form

import (
	"fmt"
	"unicode/utf8"
)

// FieldName is the key of the form's only input.
const FieldName = "name"

// MaxNameLength bounds the name field, counted in characters.
const MaxNameLength = 255

// ValidateName applies the name rule: non-empty and at most MaxNameLength
// characters. The value is checked as typed; whitespace is not trimmed.
func ValidateName(value string) *ValidationError {
	switch n := utf8.RuneCountInString(value); {
	case n == 0:
		return &ValidationError{Fields: map[string]string{FieldName: "Name is required"}}
	case n > MaxNameLength:
		return &ValidationError{Fields: map[string]string{
			FieldName: fmt.Sprintf("Name must be at most %d characters", MaxNameLength),
		}}
	}
	return nil
}
