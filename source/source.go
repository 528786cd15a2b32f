// Package source models the ordered candidate locations the bridge loads
// engine artifacts from, and the HTTP fetcher that tries them.
//
// A candidate list is immutable and tried strictly in order: the first
// success wins, a later candidate is never touched unless every earlier one
// failed, and nothing reorders the list at runtime. Each failed attempt is
// recorded so exhaustion can report the full history.
package source

import (
	"context"

	"github.com/fenwick-labs/enginebridge/errors"
)

// Candidate is one location an artifact may be served from.
type Candidate struct {
	URL string
}

// Attempt records one failed try against a candidate.
type Attempt struct {
	Candidate Candidate
	Err       error
}

// FetchFunc retrieves the bytes behind one candidate. Implementations
// return a source_unavailable error on any failure; they never panic.
type FetchFunc func(ctx context.Context, c Candidate) ([]byte, error)

// First walks candidates in priority order and returns the first successful
// fetch together with the winning candidate and the failures that preceded
// it. When every candidate fails it returns an exhausted_sources error
// wrapping the last failure; the attempt log then covers the whole list.
func First(ctx context.Context, fetch FetchFunc, candidates []Candidate) ([]byte, Candidate, []Attempt, error) {
	var attempts []Attempt

	for _, c := range candidates {
		data, err := fetch(ctx, c)
		if err == nil {
			return data, c, attempts, nil
		}
		attempts = append(attempts, Attempt{Candidate: c, Err: err})
	}

	var last error
	if len(attempts) > 0 {
		last = attempts[len(attempts)-1].Err
	}
	return nil, Candidate{}, attempts, errors.ExhaustedSources(errors.PhaseFetch, len(candidates), last)
}
