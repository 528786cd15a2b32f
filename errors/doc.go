// Package errors provides structured error types for the engine bridge.
//
// Errors are categorized by Phase (where in the lifecycle the error
// occurred) and Kind (error category). Kinds map onto the bridge's failure
// taxonomy: source_unavailable is recoverable, exhausted_sources and
// module_abort are fatal, relay_error is non-fatal noise.
//
// Use the convenience constructors:
//
//	err := errors.SourceUnavailable(errors.PhaseFetch, url, cause)
//	err := errors.ExhaustedSources(errors.PhaseFetch, len(candidates), last)
//
// All errors implement the standard error interface and support
// errors.Is/As; Is matches on Phase and Kind so callers can classify with a
// zero-detail sentinel:
//
//	stderrors.Is(err, &errors.Error{Phase: errors.PhaseFetch, Kind: errors.KindExhaustedSources})
package errors
