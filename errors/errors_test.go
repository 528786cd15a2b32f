package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Format(t *testing.T) {
	err := SourceUnavailable(PhaseFetch, "https://mirror.example/engine.wasm", fmt.Errorf("status 503"))

	got := err.Error()
	for _, want := range []string{"[fetch]", "source_unavailable", "https://mirror.example/engine.wasm", "status 503"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}
}

func TestError_Is_MatchesPhaseAndKind(t *testing.T) {
	err := ExhaustedSources(PhaseFetch, 2, fmt.Errorf("last failure"))

	if !stderrors.Is(err, &Error{Phase: PhaseFetch, Kind: KindExhaustedSources}) {
		t.Error("expected match on same phase and kind")
	}
	if stderrors.Is(err, &Error{Phase: PhaseLoad, Kind: KindExhaustedSources}) {
		t.Error("unexpected match on different phase")
	}
	if stderrors.Is(err, &Error{Phase: PhaseFetch, Kind: KindSourceUnavailable}) {
		t.Error("unexpected match on different kind")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ModuleAbort(cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected Is to reach the cause through Unwrap")
	}
	if stderrors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", stderrors.Unwrap(err), cause)
	}
}

func TestNotInitialized(t *testing.T) {
	err := NotInitialized("engine instance")
	if !strings.Contains(err.Error(), "engine instance not initialized") {
		t.Errorf("Error() = %q", err.Error())
	}
}
