package logging

import (
	"io"
	"os"
	"sync"
)

// switchWriter forwards writes to a destination that can be replaced while
// loggers hold on to the switchWriter itself.
type switchWriter struct {
	mu sync.RWMutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

func (s *switchWriter) swap(w io.Writer) io.Writer {
	if w == nil {
		w = io.Discard
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.w
	s.w = w
	return prev
}

var stderrSink = &switchWriter{w: os.Stderr}

// SetGlobalOutput redirects the stderr sink of every logger and returns the
// previous destination. A nil writer discards output. The dashboard TUI
// silences the sink while it owns the terminal and restores it on exit.
func SetGlobalOutput(w io.Writer) (previous io.Writer) {
	return stderrSink.swap(w)
}

// GetGlobalOutput returns the shared stderr sink.
func GetGlobalOutput() io.Writer {
	return stderrSink
}
