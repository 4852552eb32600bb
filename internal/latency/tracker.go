package latency

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync/atomic"
)

// DefaultMaxSamples is the reservoir capacity used by the engine and harness.
const DefaultMaxSamples = 100_000

// Tracker pairs the histogram with a circular reservoir of raw samples so
// percentiles can be computed offline. Recording is lock-free; percentile
// queries copy and sort, so keep them off the hot path.
type Tracker struct {
	hist     *Histogram
	samples  []int64
	writeIdx atomic.Uint64
}

// NewTracker builds a tracker with the given reservoir capacity; values < 1
// fall back to DefaultMaxSamples.
func NewTracker(maxSamples int) *Tracker {
	if maxSamples < 1 {
		maxSamples = DefaultMaxSamples
	}
	return &Tracker{
		hist:    NewHistogram(),
		samples: make([]int64, maxSamples),
	}
}

// Record stores one latency sample. The reservoir wraps, overwriting the
// oldest entries once full.
func (t *Tracker) Record(latencyNs int64) {
	t.hist.Record(latencyNs)
	idx := t.writeIdx.Add(1) - 1
	t.samples[idx%uint64(len(t.samples))] = latencyNs
}

// Histogram exposes the underlying bucket counts.
func (t *Tracker) Histogram() *Histogram { return t.hist }

// Percentile computes p in [0,100] by sorting the retained samples and
// linearly interpolating at index p/100*(n-1). Returns 0 with no samples.
func (t *Tracker) Percentile(p float64) float64 {
	n := int(t.hist.Count())
	if n > len(t.samples) {
		n = len(t.samples)
	}
	if n == 0 {
		return 0
	}

	sorted := make([]int64, n)
	copy(sorted, t.samples[:n])
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := (p / 100.0) * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper > n-1 {
		upper = n - 1
	}
	frac := idx - float64(lower)
	return float64(sorted[lower])*(1.0-frac) + float64(sorted[upper])*frac
}

func (t *Tracker) P50() float64  { return t.Percentile(50.0) }
func (t *Tracker) P95() float64  { return t.Percentile(95.0) }
func (t *Tracker) P99() float64  { return t.Percentile(99.0) }
func (t *Tracker) P999() float64 { return t.Percentile(99.9) }

// Reset clears the histogram and rewinds the reservoir.
func (t *Tracker) Reset() {
	t.hist.Reset()
	t.writeIdx.Store(0)
}

// report mirrors the export schema; field order here is the field order in
// the file, which downstream diff tooling relies on.
type report struct {
	Count     int64            `json:"count"`
	MinNs     int64            `json:"min_ns"`
	MaxNs     int64            `json:"max_ns"`
	MeanNs    float64          `json:"mean_ns"`
	P50Ns     float64          `json:"p50_ns"`
	P95Ns     float64          `json:"p95_ns"`
	P99Ns     float64          `json:"p99_ns"`
	P999Ns    float64          `json:"p999_ns"`
	Histogram histogramReport  `json:"histogram"`
	Samples   []int64          `json:"samples"`
}

type histogramReport struct {
	Lt100ns int64 `json:"<100ns"`
	Lt500ns int64 `json:"<500ns"`
	Lt1us   int64 `json:"<1us"`
	Lt10us  int64 `json:"<10us"`
	Lt100us int64 `json:"<100us"`
	Lt1ms   int64 `json:"<1ms"`
	Ge1ms   int64 `json:">=1ms"`
}

// MarshalJSON renders the summary document.
func (t *Tracker) MarshalJSON() ([]byte, error) {
	n := int(t.hist.Count())
	if n > len(t.samples) {
		n = len(t.samples)
	}
	if n > 1000 {
		n = 1000 // keep the file small
	}
	samples := make([]int64, n)
	copy(samples, t.samples[:n])

	r := report{
		Count:  t.hist.Count(),
		MinNs:  t.hist.Min(),
		MaxNs:  t.hist.Max(),
		MeanNs: t.hist.Mean(),
		P50Ns:  t.P50(),
		P95Ns:  t.P95(),
		P99Ns:  t.P99(),
		P999Ns: t.P999(),
		Histogram: histogramReport{
			Lt100ns: t.hist.BucketCount(0),
			Lt500ns: t.hist.BucketCount(1),
			Lt1us:   t.hist.BucketCount(2),
			Lt10us:  t.hist.BucketCount(3),
			Lt100us: t.hist.BucketCount(4),
			Lt1ms:   t.hist.BucketCount(5),
			Ge1ms:   t.hist.BucketCount(6),
		},
		Samples: samples,
	}
	return json.MarshalIndent(r, "", "  ")
}

// ExportJSON writes the summary document to path.
func (t *Tracker) ExportJSON(path string) error {
	data, err := t.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal latency report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write latency report: %w", err)
	}
	return nil
}
