// Package latency records hot-path timing samples into a lock-free histogram
// and a capped reservoir, and exports percentile summaries as JSON.
package latency

import (
	"math"
	"sync/atomic"
)

// NumBuckets is the number of histogram bands.
const NumBuckets = 7

// bucketBounds are exclusive upper bounds in nanoseconds; the last band is
// open-ended.
var bucketBounds = [NumBuckets]int64{100, 500, 1_000, 10_000, 100_000, 1_000_000, math.MaxInt64}

// BucketNames label the bands in the JSON export, in band order.
var BucketNames = [NumBuckets]string{"<100ns", "<500ns", "<1us", "<10us", "<100us", "<1ms", ">=1ms"}

// Histogram counts latency samples into fixed buckets. All mutation is atomic
// so any thread may record and any thread may read.
type Histogram struct {
	buckets [NumBuckets]atomic.Int64
	count   atomic.Int64
	sum     atomic.Int64
	min     atomic.Int64
	max     atomic.Int64
}

// NewHistogram returns a zeroed histogram.
func NewHistogram() *Histogram {
	h := &Histogram{}
	h.min.Store(math.MaxInt64)
	return h
}

// Record counts one sample. Negative samples (a backwards clock pair) land in
// the first bucket.
func (h *Histogram) Record(latencyNs int64) {
	h.count.Add(1)
	h.sum.Add(latencyNs)

	for cur := h.min.Load(); latencyNs < cur; cur = h.min.Load() {
		if h.min.CompareAndSwap(cur, latencyNs) {
			break
		}
	}
	for cur := h.max.Load(); latencyNs > cur; cur = h.max.Load() {
		if h.max.CompareAndSwap(cur, latencyNs) {
			break
		}
	}

	for i := 0; i < NumBuckets; i++ {
		if latencyNs < bucketBounds[i] {
			h.buckets[i].Add(1)
			return
		}
	}
}

// Count returns the number of recorded samples.
func (h *Histogram) Count() int64 { return h.count.Load() }

// Sum returns the total of all samples in nanoseconds.
func (h *Histogram) Sum() int64 { return h.sum.Load() }

// Min returns the smallest sample, or 0 before any sample is recorded.
func (h *Histogram) Min() int64 {
	m := h.min.Load()
	if m == math.MaxInt64 {
		return 0
	}
	return m
}

// Max returns the largest sample.
func (h *Histogram) Max() int64 { return h.max.Load() }

// Mean returns the average sample, or 0 with no samples.
func (h *Histogram) Mean() float64 {
	c := h.Count()
	if c == 0 {
		return 0
	}
	return float64(h.Sum()) / float64(c)
}

// BucketCount returns the tally for band idx, 0 for out-of-range indices.
func (h *Histogram) BucketCount(idx int) int64 {
	if idx < 0 || idx >= NumBuckets {
		return 0
	}
	return h.buckets[idx].Load()
}

// Reset zeroes all counters.
func (h *Histogram) Reset() {
	for i := range h.buckets {
		h.buckets[i].Store(0)
	}
	h.count.Store(0)
	h.sum.Store(0)
	h.min.Store(math.MaxInt64)
	h.max.Store(0)
}
