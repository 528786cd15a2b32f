package engine

import (
	"io"
	"testing"
)

func TestLineWriter_SplitsLines(t *testing.T) {
	var lines []string
	w := NewLineWriter(func(s string) { lines = append(lines, s) })

	io.WriteString(w, "id name Example\nuciok\n")

	if len(lines) != 2 || lines[0] != "id name Example" || lines[1] != "uciok" {
		t.Errorf("lines = %q", lines)
	}
}

func TestLineWriter_PartialWrites(t *testing.T) {
	var lines []string
	w := NewLineWriter(func(s string) { lines = append(lines, s) })

	io.WriteString(w, "bestmove ")
	if len(lines) != 0 {
		t.Fatalf("emitted before newline: %q", lines)
	}
	io.WriteString(w, "e2e4")
	io.WriteString(w, "\nponder")

	if len(lines) != 1 || lines[0] != "bestmove e2e4" {
		t.Errorf("lines = %q", lines)
	}

	w.Flush()
	if len(lines) != 2 || lines[1] != "ponder" {
		t.Errorf("after flush, lines = %q", lines)
	}
}

func TestLineWriter_StripsCR(t *testing.T) {
	var lines []string
	w := NewLineWriter(func(s string) { lines = append(lines, s) })

	io.WriteString(w, "readyok\r\n")

	if len(lines) != 1 || lines[0] != "readyok" {
		t.Errorf("lines = %q", lines)
	}
}

func TestLineWriter_EmptyLines(t *testing.T) {
	var lines []string
	w := NewLineWriter(func(s string) { lines = append(lines, s) })

	io.WriteString(w, "\n\ninfo depth 1\n")

	if len(lines) != 3 || lines[0] != "" || lines[1] != "" || lines[2] != "info depth 1" {
		t.Errorf("lines = %q", lines)
	}
}

func TestLineWriter_FlushEmptyIsNoop(t *testing.T) {
	calls := 0
	w := NewLineWriter(func(string) { calls++ })

	w.Flush()
	if calls != 0 {
		t.Errorf("flush on empty buffer emitted %d lines", calls)
	}
}
