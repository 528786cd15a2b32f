package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the bridge lifecycle the error occurred
type Phase string

const (
	PhaseFetch       Phase = "fetch"       // downloading code or payload
	PhaseLoad        Phase = "load"        // compiling module bytes
	PhaseInstantiate Phase = "instantiate" // starting the module
	PhaseRelay       Phase = "relay"       // forwarding messages
	PhaseRuntime     Phase = "runtime"     // anything after successful start
)

// Kind categorizes the error
type Kind string

const (
	// KindSourceUnavailable marks a single failed candidate; recoverable,
	// the next candidate may still succeed.
	KindSourceUnavailable Kind = "source_unavailable"
	// KindExhaustedSources marks total candidate failure; fatal.
	KindExhaustedSources Kind = "exhausted_sources"
	// KindModuleAbort marks an engine that died after starting; fatal.
	KindModuleAbort Kind = "module_abort"
	// KindRelayError marks a single failed forward; non-fatal.
	KindRelayError Kind = "relay_error"

	KindInvalidData    Kind = "invalid_data"
	KindNotInitialized Kind = "not_initialized"
)

// Error is the structured error type used throughout the bridge.
type Error struct {
	Phase  Phase
	Kind   Kind
	URL    string
	Detail string
	Cause  error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.URL != "" {
		b.WriteString(" at ")
		b.WriteString(e.URL)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Two Errors match when their
// Phase and Kind agree, so callers can test against a zero-detail sentinel.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for the bridge's taxonomy

// SourceUnavailable reports one failed candidate location.
func SourceUnavailable(phase Phase, url string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindSourceUnavailable,
		URL:   url,
		Cause: cause,
	}
}

// ExhaustedSources reports that every candidate failed.
func ExhaustedSources(phase Phase, attempts int, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindExhaustedSources,
		Detail: fmt.Sprintf("all %d candidate(s) failed", attempts),
		Cause:  cause,
	}
}

// ModuleAbort reports an engine that terminated after having started.
func ModuleAbort(cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindModuleAbort,
		Detail: "engine module aborted",
		Cause:  cause,
	}
}

// RelayError reports a single failed forward or receive.
func RelayError(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseRelay,
		Kind:   KindRelayError,
		Detail: detail,
		Cause:  cause,
	}
}

// NotInitialized reports use of the bridge before a successful Initialize.
func NotInitialized(what string) *Error {
	return &Error{
		Phase:  PhaseRelay,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", what),
	}
}

// InvalidData reports malformed input, e.g. module bytes that do not compile.
func InvalidData(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
