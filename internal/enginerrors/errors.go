// Package enginerrors implements the run-level error taxonomy from spec §7:
// ConfigError, InputError, ProviderError, and RunCancelled. Unlike a
// CheckOutcome's Severity, these are Go errors returned by plumbing code
// that runs outside of an individual check.
package enginerrors

import (
	"errors"
	"fmt"
)

// Type classifies an EngineError per spec §7.
type Type string

const (
	// TypeConfig means the resolved config is inconsistent (unknown
	// profile, invalid parameter type). Fatal: the engine refuses to
	// proceed rather than returning a Run.
	TypeConfig Type = "config_error"

	// TypeInput means a ProjectDecl/MachineDecl is missing a required
	// field. Non-fatal: the caller turns this into a per-entity critical
	// outcome instead of aborting the run.
	TypeInput Type = "input_error"

	// TypeProvider wraps any CAL-classified failure. Non-fatal: attached
	// to the relevant CheckOutcome with its cause trace.
	TypeProvider Type = "provider_error"

	// TypeRunCancelled means the cancellation signal was honored.
	TypeRunCancelled Type = "run_cancelled"
)

// EngineError is the concrete error type carried through the engine.
type EngineError struct {
	Type       Type
	Message    string
	Resource   string
	CauseTrace string
	Wrapped    error
}

func (e *EngineError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Resource)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Wrapped
}

// Is lets errors.Is match on Type regardless of message/resource.
func (e *EngineError) Is(target error) bool {
	var other *EngineError
	if errors.As(target, &other) {
		return e.Type == other.Type
	}
	return false
}

// Builder constructs an EngineError fluently, mirroring the teacher's error
// builder idiom.
type Builder struct {
	err *EngineError
}

// New starts a builder for the given error type and message.
func New(t Type, message string) *Builder {
	return &Builder{err: &EngineError{Type: t, Message: message}}
}

func (b *Builder) WithResource(resource string) *Builder {
	b.err.Resource = resource
	return b
}

func (b *Builder) WithCauseTrace(trace string) *Builder {
	b.err.CauseTrace = trace
	return b
}

func (b *Builder) WithWrapped(err error) *Builder {
	b.err.Wrapped = err
	return b
}

func (b *Builder) Build() *EngineError {
	return b.err
}

// Common constructors.

func NewConfigError(message string) *EngineError {
	return New(TypeConfig, message).Build()
}

func NewInputError(resource, message string) *EngineError {
	return New(TypeInput, message).WithResource(resource).Build()
}

func NewProviderError(message, causeTrace string, wrapped error) *EngineError {
	return New(TypeProvider, message).WithCauseTrace(causeTrace).WithWrapped(wrapped).Build()
}

func NewRunCancelled() *EngineError {
	return New(TypeRunCancelled, "run cancelled").Build()
}

// IsType reports whether err is an EngineError of the given type.
func IsType(err error, t Type) bool {
	var ee *EngineError
	if !errors.As(err, &ee) {
		return false
	}
	return ee.Type == t
}
