package profiler

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"sort"
	"sync"
	"time"

	"odbcperf/internal/bench"
)

// Sort keys accepted by PrintResults and SaveResults.
const (
	SortTotal = "tottime"
	SortCalls = "calls"
	SortMax   = "max"
	SortName  = "name"
)

var SortKeys = []string{SortTotal, SortCalls, SortMax, SortName}

// CallStats accumulates the timings of one profiled callable.
type CallStats struct {
	Label  string
	Calls  int
	Errors int
	Total  time.Duration
	Min    time.Duration
	Max    time.Duration
}

// CallableProfiler times callables and keeps per-label statistics.
type CallableProfiler struct {
	mu    sync.Mutex
	stats map[string]*CallStats
	clock bench.Clock
}

func New() *CallableProfiler {
	return &CallableProfiler{
		stats: make(map[string]*CallStats),
		clock: time.Now,
	}
}

// ProfileSingle runs fn once under label.
func (p *CallableProfiler) ProfileSingle(label string, fn func() error) error {
	d, err := bench.NewStopwatch(p.clock).Time(fn)

	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.stats[label]
	if !ok {
		s = &CallStats{Label: label, Min: d}
		p.stats[label] = s
	}
	s.Calls++
	s.Total += d
	if d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
	if err != nil {
		s.Errors++
	}
	return err
}

// ProfileMultiple runs every fn in order and stops at the first error.
func (p *CallableProfiler) ProfileMultiple(label string, fns []func() error) error {
	for _, fn := range fns {
		if err := p.ProfileSingle(label, fn); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns a snapshot ordered by sortBy.
func (p *CallableProfiler) Stats(sortBy string) []CallStats {
	p.mu.Lock()
	out := make([]CallStats, 0, len(p.stats))
	for _, s := range p.stats {
		out = append(out, *s)
	}
	p.mu.Unlock()

	less := func(i, j int) bool { return out[i].Total > out[j].Total }
	switch sortBy {
	case SortCalls:
		less = func(i, j int) bool { return out[i].Calls > out[j].Calls }
	case SortMax:
		less = func(i, j int) bool { return out[i].Max > out[j].Max }
	case SortName:
		less = func(i, j int) bool { return out[i].Label < out[j].Label }
	}
	sort.SliceStable(out, func(i, j int) bool {
		if less(i, j) {
			return true
		}
		if less(j, i) {
			return false
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func (p *CallableProfiler) PrintResults(w io.Writer, sortBy string) {
	stats := p.Stats(sortBy)
	fmt.Fprintf(w, "%-32s %6s %6s %12s %12s %12s %12s\n", "label", "calls", "errors", "tottime", "percall", "min", "max")
	for _, s := range stats {
		per := time.Duration(0)
		if s.Calls > 0 {
			per = s.Total / time.Duration(s.Calls)
		}
		fmt.Fprintf(w, "%-32s %6d %6d %12s %12s %12s %12s\n",
			s.Label, s.Calls, s.Errors, bench.FmtDur(s.Total), bench.FmtDur(per), bench.FmtDur(s.Min), bench.FmtDur(s.Max))
	}
}

// SaveResults overwrites path with the printed statistics.
func (p *CallableProfiler) SaveResults(path, sortBy string) error {
	var buf bytes.Buffer
	p.PrintResults(&buf, sortBy)
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// StartCPUProfile writes a pprof CPU profile to path until the returned stop func runs.
func StartCPUProfile(path string) (func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, err
	}
	return func() error {
		pprof.StopCPUProfile()
		return f.Close()
	}, nil
}
