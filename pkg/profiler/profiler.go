// Package profiler records wall-clock timings of pipeline stages and prints
// a percentile report.
package profiler

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Pipeline stage names shared by the trainer, the predictor and the CLI.
const (
	StageLoad       = "load"
	StageSplit      = "split"
	StageNormalize  = "normalize"
	StageVectorize  = "vectorize"
	StageFit        = "fit"
	StageEvaluate   = "evaluate"
	StagePredict    = "predict"
	StageCacheRead  = "cache_read"
	StageCacheWrite = "cache_write"
	StageSave       = "save"
)

// Profiler tracks execution times per stage. A nil *Profiler is valid and
// records nothing, so callers never need to check before timing.
type Profiler struct {
	mu    sync.RWMutex
	times map[string][]time.Duration
}

// NewProfiler creates a new profiler
func NewProfiler() *Profiler {
	return &Profiler{
		times: make(map[string][]time.Duration),
	}
}

// Timer represents a timing operation
type Timer struct {
	profiler *Profiler
	name     string
	start    time.Time
}

// Start begins timing a stage
func (p *Profiler) Start(name string) *Timer {
	return &Timer{
		profiler: p,
		name:     name,
		start:    time.Now(),
	}
}

// Stop completes the timing and records the duration
func (t *Timer) Stop() time.Duration {
	duration := time.Since(t.start)
	t.profiler.Record(t.name, duration)
	return duration
}

// Record manually records a timing
func (p *Profiler) Record(name string, duration time.Duration) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.times[name] = append(p.times[name], duration)
	p.mu.Unlock()
}

// Measure runs fn and records how long it took
func (p *Profiler) Measure(name string, fn func() error) error {
	timer := p.Start(name)
	err := fn()
	timer.Stop()
	return err
}

// Stats contains timing statistics
type Stats struct {
	Name    string
	Count   int
	Total   time.Duration
	Average time.Duration
	Min     time.Duration
	Max     time.Duration
	Median  time.Duration
	P95     time.Duration
	P99     time.Duration
}

// GetStats returns timing statistics for a stage
func (p *Profiler) GetStats(name string) *Stats {
	if p == nil {
		return &Stats{Name: name}
	}

	p.mu.RLock()
	times := p.times[name]
	sorted := make([]float64, len(times))
	for i, d := range times {
		sorted[i] = float64(d)
	}
	p.mu.RUnlock()

	if len(sorted) == 0 {
		return &Stats{Name: name}
	}
	sort.Float64s(sorted)

	var total float64
	for _, v := range sorted {
		total += v
	}

	quantile := func(q float64) time.Duration {
		return time.Duration(stat.Quantile(q, stat.Empirical, sorted, nil))
	}

	return &Stats{
		Name:    name,
		Count:   len(sorted),
		Total:   time.Duration(total),
		Average: time.Duration(total / float64(len(sorted))),
		Min:     time.Duration(sorted[0]),
		Max:     time.Duration(sorted[len(sorted)-1]),
		Median:  quantile(0.5),
		P95:     quantile(0.95),
		P99:     quantile(0.99),
	}
}

// GetAllStats returns statistics for every recorded stage, sorted by name
func (p *Profiler) GetAllStats() []*Stats {
	if p == nil {
		return nil
	}

	p.mu.RLock()
	names := make([]string, 0, len(p.times))
	for name := range p.times {
		names = append(names, name)
	}
	p.mu.RUnlock()

	sort.Strings(names)

	stats := make([]*Stats, 0, len(names))
	for _, name := range names {
		stats = append(stats, p.GetStats(name))
	}
	return stats
}

// Reset clears all timing data
func (p *Profiler) Reset() {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.times = make(map[string][]time.Duration)
	p.mu.Unlock()
}

// PrintReport writes a formatted timing report
func (p *Profiler) PrintReport(w io.Writer) {
	stats := p.GetAllStats()

	if len(stats) == 0 {
		fmt.Fprintln(w, "No timing data available")
		return
	}

	fmt.Fprintf(w, "⏱️  Performance Profile Report\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "%-14s %8s %10s %8s %8s %8s %8s %8s\n",
		"Stage", "Count", "Total", "Avg", "Min", "Max", "P95", "P99")
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────────────\n")

	for _, s := range stats {
		if s.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "%-14s %8d %10s %8s %8s %8s %8s %8s\n",
			truncate(s.Name, 14),
			s.Count,
			FormatDuration(s.Total),
			FormatDuration(s.Average),
			FormatDuration(s.Min),
			FormatDuration(s.Max),
			FormatDuration(s.P95),
			FormatDuration(s.P99),
		)
	}

	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════════\n")
}

// FormatDuration formats a duration for display
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	default:
		return fmt.Sprintf("%.3fs", d.Seconds())
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
