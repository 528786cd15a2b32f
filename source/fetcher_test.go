package source

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fenwick-labs/enginebridge/errors"
)

func TestFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/engine.wasm":
			w.Write([]byte("\x00asm fake module"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(FetcherConfig{})

	data, err := f.Fetch(context.Background(), Candidate{URL: srv.URL + "/engine.wasm"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "\x00asm fake module" {
		t.Errorf("data = %q", data)
	}
}

func TestFetcher_Fetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := NewFetcher(FetcherConfig{})

	_, err := f.Fetch(context.Background(), Candidate{URL: srv.URL + "/missing.wasm"})
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseFetch, Kind: errors.KindSourceUnavailable}) {
		t.Errorf("err = %v, want source_unavailable", err)
	}
}

func TestFetcher_Fetch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing listening anymore

	f := NewFetcher(FetcherConfig{})

	_, err := f.Fetch(context.Background(), Candidate{URL: srv.URL + "/engine.wasm"})
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseFetch, Kind: errors.KindSourceUnavailable}) {
		t.Errorf("err = %v, want source_unavailable", err)
	}
}

func TestFetcher_FirstIntegration(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "mirror offline", http.StatusServiceUnavailable)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("module bytes"))
	}))
	defer good.Close()

	f := NewFetcher(FetcherConfig{})

	data, winner, attempts, err := First(context.Background(), f.Fetch, []Candidate{
		{URL: bad.URL}, {URL: good.URL},
	})
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if winner.URL != good.URL {
		t.Errorf("winner = %q, want %q", winner.URL, good.URL)
	}
	if string(data) != "module bytes" {
		t.Errorf("data = %q", data)
	}
	if len(attempts) != 1 || attempts[0].Candidate.URL != bad.URL {
		t.Errorf("attempts = %+v", attempts)
	}
}
