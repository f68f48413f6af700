// Package metrics aggregates request latencies for a batch run.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram bounds: 1 microsecond to 1 hour, 3 significant figures.
const (
	histogramMin     = 1
	histogramMax     = 3600000000
	histogramSigFigs = 3
)

// Recorder collects per-request latencies and outcome counters. It is safe
// for concurrent use: counters are atomic, the histogram is mutex-protected.
type Recorder struct {
	hist   *hdrhistogram.Histogram
	histMu sync.Mutex

	total     atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	bytes     atomic.Int64
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		hist: hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
	}
}

// Record adds one completed request: its latency, whether it succeeded, and
// how many body bytes it transferred.
func (r *Recorder) Record(latency time.Duration, success bool, bytes int64) {
	micros := latency.Microseconds()
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}

	r.histMu.Lock()
	r.hist.RecordValue(micros)
	r.histMu.Unlock()

	r.total.Add(1)
	if success {
		r.succeeded.Add(1)
	} else {
		r.failed.Add(1)
	}
	r.bytes.Add(bytes)
}

// Summary is a point-in-time aggregate of a run.
type Summary struct {
	Total     int64
	Succeeded int64
	Failed    int64
	Bytes     int64

	P50 time.Duration
	P95 time.Duration
	P99 time.Duration
	Max time.Duration
}

// Summary snapshots the recorder. Percentiles are zero when nothing has been
// recorded yet.
func (r *Recorder) Summary() Summary {
	s := Summary{
		Total:     r.total.Load(),
		Succeeded: r.succeeded.Load(),
		Failed:    r.failed.Load(),
		Bytes:     r.bytes.Load(),
	}
	if s.Total == 0 {
		return s
	}

	r.histMu.Lock()
	defer r.histMu.Unlock()
	s.P50 = time.Duration(r.hist.ValueAtQuantile(50)) * time.Microsecond
	s.P95 = time.Duration(r.hist.ValueAtQuantile(95)) * time.Microsecond
	s.P99 = time.Duration(r.hist.ValueAtQuantile(99)) * time.Microsecond
	s.Max = time.Duration(r.hist.Max()) * time.Microsecond
	return s
}
