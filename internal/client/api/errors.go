package api

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport means no response body was obtained.
	ErrTransport = errors.New("transport failure")
	// ErrDecode means the body was not a JSON object.
	ErrDecode = errors.New("decode failure")
	// ErrDomain means the response lacked an expected field.
	ErrDomain = errors.New("domain failure")
)

// Error describes a failed call to one endpoint. errors.Is matches both the
// kind sentinel and the underlying cause.
type Error struct {
	Endpoint string
	Kind     error
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Endpoint, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// MissingField is the cause attached to ErrDomain errors.
type MissingField struct {
	Field string
	// Message is the server's "error" field, if it sent one.
	Message string
}

func (m *MissingField) Error() string {
	if m.Message != "" {
		return fmt.Sprintf("missing %q (server said: %s)", m.Field, m.Message)
	}
	return fmt.Sprintf("missing %q", m.Field)
}
