package source

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/fenwick-labs/enginebridge/errors"
)

// scriptedFetch fails for every URL present in fail and records call order.
func scriptedFetch(fail map[string]error, calls *[]string) FetchFunc {
	return func(_ context.Context, c Candidate) ([]byte, error) {
		*calls = append(*calls, c.URL)
		if err, ok := fail[c.URL]; ok {
			return nil, err
		}
		return []byte("payload:" + c.URL), nil
	}
}

func TestFirst_StopsAtFirstSuccess(t *testing.T) {
	var calls []string
	fetch := scriptedFetch(nil, &calls)

	data, winner, attempts, err := First(context.Background(), fetch, []Candidate{
		{URL: "a"}, {URL: "b"}, {URL: "c"},
	})
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if winner.URL != "a" {
		t.Errorf("winner = %q, want a", winner.URL)
	}
	if string(data) != "payload:a" {
		t.Errorf("data = %q", data)
	}
	if len(attempts) != 0 {
		t.Errorf("attempts = %v, want none", attempts)
	}
	// A later source must never be touched when an earlier one succeeds.
	if len(calls) != 1 || calls[0] != "a" {
		t.Errorf("calls = %v, want [a]", calls)
	}
}

func TestFirst_TriesCandidatesInOrder(t *testing.T) {
	var calls []string
	fetch := scriptedFetch(map[string]error{
		"a": fmt.Errorf("down"),
		"b": fmt.Errorf("down"),
	}, &calls)

	data, winner, attempts, err := First(context.Background(), fetch, []Candidate{
		{URL: "a"}, {URL: "b"}, {URL: "c"},
	})
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if winner.URL != "c" {
		t.Errorf("winner = %q, want c", winner.URL)
	}
	if string(data) != "payload:c" {
		t.Errorf("data = %q", data)
	}
	if want := []string{"a", "b", "c"}; len(calls) != 3 || calls[0] != want[0] || calls[1] != want[1] || calls[2] != want[2] {
		t.Errorf("calls = %v, want %v", calls, want)
	}
	if len(attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(attempts))
	}
	if attempts[0].Candidate.URL != "a" || attempts[1].Candidate.URL != "b" {
		t.Errorf("attempt order = %q, %q", attempts[0].Candidate.URL, attempts[1].Candidate.URL)
	}
}

func TestFirst_Exhaustion(t *testing.T) {
	var calls []string
	boom := fmt.Errorf("down")
	fetch := scriptedFetch(map[string]error{"a": boom, "b": boom}, &calls)

	data, _, attempts, err := First(context.Background(), fetch, []Candidate{
		{URL: "a"}, {URL: "b"},
	})
	if data != nil {
		t.Error("expected no data on exhaustion")
	}
	if len(attempts) != 2 {
		t.Errorf("attempts = %d, want 2", len(attempts))
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseFetch, Kind: errors.KindExhaustedSources}) {
		t.Errorf("err = %v, want exhausted_sources", err)
	}
	if !stderrors.Is(err, boom) {
		t.Errorf("err should wrap the last attempt failure, got %v", err)
	}
}

func TestFirst_EmptyList(t *testing.T) {
	_, _, attempts, err := First(context.Background(), func(context.Context, Candidate) ([]byte, error) {
		t.Fatal("fetch must not be called for an empty list")
		return nil, nil
	}, nil)
	if err == nil {
		t.Fatal("expected error for empty candidate list")
	}
	if len(attempts) != 0 {
		t.Errorf("attempts = %v", attempts)
	}
}
