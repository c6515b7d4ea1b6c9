package pipeline

import (
	"testing"
	"time"
)

func TestLatencyStats_Percentiles(t *testing.T) {
	stats := NewLatencyStats(time.Hour)
	for _, d := range []int{300, 100, 500, 200, 400} {
		stats.Record(time.Duration(d) * time.Millisecond)
	}

	snap := stats.Snapshot()
	want := LatencySnapshot{Count: 5, MinMs: 100, MaxMs: 500, AvgMs: 300, P50Ms: 300, P95Ms: 480, P99Ms: 496}
	if snap != want {
		t.Errorf("expected %+v, got %+v", want, snap)
	}
}

func TestLatencyStats_PrunesOldSamples(t *testing.T) {
	stats := NewLatencyStats(10 * time.Millisecond)
	stats.Record(100 * time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if snap := stats.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected empty window, got %d samples", snap.Count)
	}

	stats.Record(200 * time.Millisecond)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Errorf("expected one 200ms sample, got %+v", snap)
	}
}

func TestLatencyStats_ClampsNegative(t *testing.T) {
	stats := NewLatencyStats(0)
	stats.Record(-time.Second)
	if snap := stats.Snapshot(); snap.Count != 1 || snap.MaxMs != 0 {
		t.Errorf("expected a single zero sample, got %+v", snap)
	}
}
