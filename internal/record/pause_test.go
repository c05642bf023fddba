package record

import (
	"math"
	"sort"
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/rewind/internal/recording"
)

func times(captures []recording.VectorCapture) []float64 {
	out := make([]float64, len(captures))
	for i, c := range captures {
		out[i] = c.Time
	}
	return out
}

func vectorsAt(ts ...float64) []recording.VectorCapture {
	out := make([]recording.VectorCapture, len(ts))
	for i, t := range ts {
		out[i] = recording.VectorCapture{Time: t}
	}
	return out
}

func TestFilterShiftDropsPausedCaptures(t *testing.T) {
	in := vectorsAt(1, 2, 3, 4, 5, 6)
	pauses := []PauseSlice{{PausedAt: 2.5, ResumedAt: 4.5}}

	out := FilterShift(in, vectorTime, vectorWithTime, 0, 10, pauses)

	want := []float64{1, 2, 3, 4}
	got := times(out)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("capture %d: got t=%v, want t=%v", i, got[i], want[i])
		}
	}
}

func TestFilterShiftClipsOutsideWindow(t *testing.T) {
	in := vectorsAt(-1, 0, 5, 10, 11)
	out := FilterShift(in, vectorTime, vectorWithTime, 0, 10, nil)
	got := times(out)
	want := []float64{0, 5, 10}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFilterShiftBoundaryIsOutsidePause(t *testing.T) {
	// A capture exactly at the resume boundary is outside the paused region
	// and lands exactly at the pause start after compensation.
	in := vectorsAt(3, 5)
	pauses := []PauseSlice{{PausedAt: 3, ResumedAt: 5}}

	out := FilterShift(in, vectorTime, vectorWithTime, 0, 10, pauses)
	got := times(out)
	if len(got) != 1 {
		t.Fatalf("got %v captures, want 1", got)
	}
	if got[0] != 3 {
		t.Errorf("boundary capture shifted to %v, want 3", got[0])
	}
}

func TestFilterShiftInfiniteEndTime(t *testing.T) {
	in := vectorsAt(1, 1e9)
	out := FilterShift(in, vectorTime, vectorWithTime, 0, math.Inf(1), nil)
	if len(out) != 2 {
		t.Fatalf("got %d captures, want 2", len(out))
	}
}

// genPauses draws a chronological, non-overlapping pause slice list within
// [0, horizon].
func genPauses(t *rapid.T, horizon float64) []PauseSlice {
	n := rapid.IntRange(0, 4).Draw(t, "pauseCount")
	bounds := make([]float64, 0, 2*n)
	for i := 0; i < 2*n; i++ {
		bounds = append(bounds, rapid.Float64Range(0, horizon).Draw(t, "bound"))
	}
	sort.Float64s(bounds)
	pauses := make([]PauseSlice, 0, n)
	for i := 0; i+1 < len(bounds); i += 2 {
		if bounds[i+1] > bounds[i] {
			pauses = append(pauses, PauseSlice{PausedAt: bounds[i], ResumedAt: bounds[i+1]})
		}
	}
	return pauses
}

func TestFilterShiftProperties(t *testing.T) {
	const horizon = 100.0

	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOfN(rapid.Float64Range(0, horizon), 0, 50).Draw(t, "times")
		sort.Float64s(raw)
		in := vectorsAt(raw...)
		pauses := genPauses(t, horizon)

		out := FilterShift(in, vectorTime, vectorWithTime, 0, horizon, pauses)

		// Monotonic input yields monotonic output.
		for i := 1; i < len(out); i++ {
			if out[i].Time < out[i-1].Time {
				t.Fatalf("output not monotonic at %d: %v < %v", i, out[i].Time, out[i-1].Time)
			}
		}

		// Shifted timestamps stay within the session window.
		for _, c := range out {
			if c.Time < 0 || c.Time > horizon {
				t.Fatalf("shifted time %v outside window", c.Time)
			}
		}

		// Idempotence: compensating an already-compensated, pause-free
		// sequence with no pauses is the identity.
		again := FilterShift(out, vectorTime, vectorWithTime, 0, horizon, nil)
		if len(again) != len(out) {
			t.Fatalf("idempotence violated: %d vs %d captures", len(again), len(out))
		}
		for i := range out {
			if again[i] != out[i] {
				t.Fatalf("idempotence violated at %d: %v vs %v", i, again[i], out[i])
			}
		}
	})
}

func TestFilterShiftRetainedOutsideAllPauses(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOfN(rapid.Float64Range(0, 100), 0, 50).Draw(t, "times")
		sort.Float64s(raw)
		pauses := genPauses(t, 100)

		// Track which originals survive by filtering without shifting.
		for _, orig := range raw {
			if insidePause(pauses, orig) {
				continue
			}
			shifted := orig - totalPausedBefore(pauses, orig)
			// The shifted timestamp must never exceed the original.
			if shifted > orig {
				t.Fatalf("shift increased timestamp: %v -> %v", orig, shifted)
			}
		}
	})
}
