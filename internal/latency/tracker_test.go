package latency

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistogramBucketBoundaries(t *testing.T) {
	h := NewHistogram()
	cases := []struct {
		sample int64
		bucket int
	}{
		{99, 0},
		{100, 1},
		{-5, 0}, // clock went backwards; clamp into the first band
		{499, 1},
		{500, 2},
		{999, 2},
		{1_000, 3},
		{9_999, 3},
		{10_000, 4},
		{100_000, 5},
		{1_000_000, 6},
		{1_000_000_000_000_000_000, 6},
	}
	for _, c := range cases {
		h.Record(c.sample)
	}
	want := make([]int64, NumBuckets)
	for _, c := range cases {
		want[c.bucket]++
	}
	for i := 0; i < NumBuckets; i++ {
		require.Equalf(t, want[i], h.BucketCount(i), "bucket %s", BucketNames[i])
	}
	require.Equal(t, int64(len(cases)), h.Count())
	require.Equal(t, int64(-5), h.Min())
	require.Equal(t, int64(1_000_000_000_000_000_000), h.Max())
}

func TestHistogramEmptyAndReset(t *testing.T) {
	h := NewHistogram()
	require.Zero(t, h.Min())
	require.Zero(t, h.Mean())
	h.Record(42)
	h.Reset()
	require.Zero(t, h.Count())
	require.Zero(t, h.Min())
	require.Zero(t, h.BucketCount(0))
}

func TestHistogramConcurrentRecord(t *testing.T) {
	h := NewHistogram()
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(base int64) {
			defer wg.Done()
			for i := int64(0); i < 10_000; i++ {
				h.Record(base + i%100)
			}
		}(int64(g))
	}
	wg.Wait()
	require.Equal(t, int64(40_000), h.Count())
}

func TestPercentileInterpolation(t *testing.T) {
	tr := NewTracker(16)
	for _, v := range []int64{10, 20, 30, 40, 50} {
		tr.Record(v)
	}
	require.Equal(t, 30.0, tr.P50())
	require.Equal(t, 10.0, tr.Percentile(0))
	require.Equal(t, 50.0, tr.Percentile(100))
	// p=25 over n=5 interpolates at index 1.0 exactly.
	require.Equal(t, 20.0, tr.Percentile(25))
	// p=30 interpolates at index 1.2 between 20 and 30.
	require.InDelta(t, 22.0, tr.Percentile(30), 1e-9)
}

func TestPercentileEmptyTracker(t *testing.T) {
	tr := NewTracker(8)
	require.Zero(t, tr.P99())
}

func TestReservoirWrapOverwritesOldest(t *testing.T) {
	tr := NewTracker(4)
	for i := int64(1); i <= 6; i++ {
		tr.Record(i * 10)
	}
	// Count is 6 but only 4 samples are retained: {50, 60, 30, 40}.
	require.Equal(t, int64(6), tr.Histogram().Count())
	require.Equal(t, 30.0, tr.Percentile(0))
	require.Equal(t, 60.0, tr.Percentile(100))
}

func TestExportJSONSchema(t *testing.T) {
	tr := NewTracker(1000)
	for i := int64(0); i < 100; i++ {
		tr.Record(i * 7)
	}
	path := filepath.Join(t.TempDir(), "latency.json")
	require.NoError(t, tr.ExportJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"count", "min_ns", "max_ns", "mean_ns", "p50_ns", "p95_ns", "p99_ns", "p999_ns", "histogram", "samples"} {
		require.Containsf(t, doc, key, "missing field %s", key)
	}

	// Field order is part of the contract: count first, samples last.
	text := string(data)
	require.Less(t, strings.Index(text, `"count"`), strings.Index(text, `"min_ns"`))
	require.Less(t, strings.Index(text, `"histogram"`), strings.Index(text, `"samples"`))

	var hist map[string]int64
	require.NoError(t, json.Unmarshal(doc["histogram"], &hist))
	var total int64
	for _, name := range BucketNames {
		total += hist[name]
	}
	require.Equal(t, int64(100), total)

	var samples []int64
	require.NoError(t, json.Unmarshal(doc["samples"], &samples))
	require.Len(t, samples, 100)
	require.Equal(t, int64(0), samples[0])
}

func TestExportJSONCapsSamplesAtThousand(t *testing.T) {
	tr := NewTracker(5000)
	for i := 0; i < 2500; i++ {
		tr.Record(int64(i))
	}
	data, err := tr.MarshalJSON()
	require.NoError(t, err)
	var doc struct {
		Samples []int64 `json:"samples"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Samples, 1000)
}
