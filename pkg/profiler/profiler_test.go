package profiler

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStats(t *testing.T) {
	p := NewProfiler()
	for i := 1; i <= 100; i++ {
		p.Record(StagePredict, time.Duration(i)*time.Millisecond)
	}

	s := p.GetStats(StagePredict)
	assert.Equal(t, 100, s.Count)
	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 100*time.Millisecond, s.Max)
	assert.Equal(t, 5050*time.Millisecond, s.Total)
	assert.Equal(t, 50500*time.Microsecond, s.Average)
	assert.Equal(t, 50*time.Millisecond, s.Median)
	assert.Equal(t, 95*time.Millisecond, s.P95)
	assert.Equal(t, 99*time.Millisecond, s.P99)
}

func TestGetStatsUnknown(t *testing.T) {
	s := NewProfiler().GetStats("missing")
	assert.Equal(t, 0, s.Count)
}

func TestMeasureReturnsError(t *testing.T) {
	p := NewProfiler()
	boom := errors.New("boom")

	err := p.Measure(StageFit, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, p.GetStats(StageFit).Count)
}

func TestNilProfiler(t *testing.T) {
	var p *Profiler
	require.NotPanics(t, func() {
		p.Start(StageLoad).Stop()
		p.Record(StageLoad, time.Second)
		_ = p.Measure(StageSave, func() error { return nil })
	})
	assert.Nil(t, p.GetAllStats())

	var buf bytes.Buffer
	p.PrintReport(&buf)
	assert.Contains(t, buf.String(), "No timing data")
}

func TestPrintReport(t *testing.T) {
	p := NewProfiler()
	p.Record(StageVectorize, 2*time.Millisecond)
	p.Record(StageNormalize, 500*time.Microsecond)

	var buf bytes.Buffer
	p.PrintReport(&buf)
	out := buf.String()

	assert.Contains(t, out, "Performance Profile Report")
	assert.Contains(t, out, StageVectorize)
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(StageNormalize)), bytes.Index(buf.Bytes(), []byte(StageVectorize)))

	p.Reset()
	assert.Empty(t, p.GetAllStats())
}

func TestNilProfilerReset(t *testing.T) {
	var p *Profiler
	assert.NotPanics(t, func() {
		p.Record(StagePredict, time.Millisecond)
		p.Reset()
	})
	assert.Empty(t, p.GetAllStats())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "500ns", FormatDuration(500*time.Nanosecond))
	assert.Equal(t, "1.5μs", FormatDuration(1500*time.Nanosecond))
	assert.Equal(t, "2.00ms", FormatDuration(2*time.Millisecond))
	assert.Equal(t, "1.500s", FormatDuration(1500*time.Millisecond))
}
