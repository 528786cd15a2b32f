package engine

import (
	"bytes"
	"strings"
)

// LineWriter adapts a per-line callback into an io.Writer, for wiring guest
// stdout/stderr into the bridge's notification stream. Output is split on
// '\n' with a trailing '\r' stripped; a partial final line is held until
// completed or flushed.
//
// Writes arrive from the guest's goroutine only, so no locking.
type LineWriter struct {
	emit func(string)
	buf  []byte
}

// NewLineWriter creates a LineWriter emitting each completed line to emit.
func NewLineWriter(emit func(string)) *LineWriter {
	return &LineWriter{emit: emit}
}

// Write implements io.Writer.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSuffix(string(w.buf[:i]), "\r")
		w.buf = w.buf[i+1:]
		w.emit(line)
	}
	return len(p), nil
}

// Flush emits any buffered partial line. Call after the guest has exited.
func (w *LineWriter) Flush() {
	if len(w.buf) > 0 {
		line := strings.TrimSuffix(string(w.buf), "\r")
		w.buf = nil
		w.emit(line)
	}
}
