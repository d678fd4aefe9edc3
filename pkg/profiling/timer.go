// Package profiling records nested timing spans and CPU/heap profiles for
// CLI runs.
package profiling

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Stopper ends a timed span.
type Stopper interface {
	Stop()
}

type span struct {
	name     string
	start    time.Time
	duration time.Duration
	children []*span
	profiler *Profiler
}

// Stop completes the timing for this span.
func (s *span) Stop() {
	s.profiler.endSpan(s, time.Since(s.start))
}

// Profiler collects a tree of spans. Spans nest in call order, so it is
// meant for the sequential part of a command, not for concurrent work.
type Profiler struct {
	mu      sync.Mutex
	enabled bool
	root    *span
	stack   []*span
}

var defaultProfiler = &Profiler{}

// Enable turns on the global profiler.
func Enable() {
	defaultProfiler.enable()
}

// Start begins a span named name on the global profiler. Call Stop on the
// result, typically via defer.
func Start(name string) Stopper {
	return defaultProfiler.Start(name)
}

// Summarize writes the global profiler's span tree to w.
func Summarize(w io.Writer) {
	defaultProfiler.Summarize(w)
}

func (p *Profiler) enable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		return
	}
	p.enabled = true
	p.root = &span{name: "root", start: time.Now(), profiler: p}
	p.stack = []*span{p.root}
}

// Start begins a span nested under the innermost open span.
func (p *Profiler) Start(name string) Stopper {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return noopStopper{}
	}

	parent := p.stack[len(p.stack)-1]
	s := &span{name: name, start: time.Now(), profiler: p}
	parent.children = append(parent.children, s)
	p.stack = append(p.stack, s)
	return s
}

func (p *Profiler) endSpan(s *span, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s.duration = d
	for i := len(p.stack) - 1; i > 0; i-- {
		if p.stack[i] == s {
			p.stack = p.stack[:i]
			return
		}
	}
}

// Summarize writes the span tree with each span's share of the total.
func (p *Profiler) Summarize(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled || p.root == nil {
		return
	}
	total := time.Since(p.root.start)

	fmt.Fprintln(w, "\n--- Timing Profile ---")
	for _, child := range p.root.children {
		printSpan(w, child, 0, total)
	}
	fmt.Fprintln(w, "--------------------")
}

func printSpan(w io.Writer, s *span, depth int, total time.Duration) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(s.duration) / float64(total) * 100
	}
	fmt.Fprintf(w, "%s- %s (%v, %.1f%%)\n", strings.Repeat("  ", depth), s.name, s.duration.Round(100*time.Microsecond), percentage)

	sort.Slice(s.children, func(i, j int) bool {
		return s.children[i].start.Before(s.children[j].start)
	})
	for _, child := range s.children {
		printSpan(w, child, depth+1, total)
	}
}

type noopStopper struct{}

func (noopStopper) Stop() {}
