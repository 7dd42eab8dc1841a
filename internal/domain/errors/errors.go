package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalid  = errors.New("invalid")
	ErrNotFound = errors.New("not found")
	ErrNoTopics = errors.New("no topics")
)

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every field problem found in one pass so the
// caller can report them together.
type ValidationError struct {
	Items []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Items) == 0 {
		return "validation failed"
	}

	var b strings.Builder
	b.WriteString("validation failed:\n")
	for _, item := range e.Items {
		b.WriteString(" - ")
		b.WriteString(item.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func (e *ValidationError) Add(field, msg string) {
	e.Items = append(e.Items, FieldError{
		Field:   field,
		Message: msg,
	})
}

func (e *ValidationError) Addf(field, format string, args ...any) {
	e.Add(field, fmt.Sprintf(format, args...))
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func (e ValidationError) HasAny() bool {
	return len(e.Items) > 0
}

func (e ValidationError) Err() error {
	if e.HasAny() {
		return e
	}
	return nil
}

// LoadError reports why a topic source could not be turned into a library.
// The server shows Message inline instead of failing.
type LoadError struct {
	Source  string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: %s", e.Source, e.Message)
	}
	return fmt.Sprintf("load %s: %s: %v", e.Source, e.Message, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
