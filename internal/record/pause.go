package record

// PauseSlice is a half-open interval [PausedAt, ResumedAt) during which no
// samples are retained in the final recording. The recorder produces slices
// in chronological, non-overlapping order.
type PauseSlice struct {
	PausedAt  float64 `json:"pausedAt"`
	ResumedAt float64 `json:"resumedAt"`
}

// Duration returns the length of the slice in seconds.
func (p PauseSlice) Duration() float64 {
	return p.ResumedAt - p.PausedAt
}

// Contains reports whether t falls inside the paused interval. The interval
// is half-open: a capture exactly at ResumedAt is outside the paused region.
func (p PauseSlice) Contains(t float64) bool {
	return t >= p.PausedAt && t < p.ResumedAt
}

// totalPausedBefore sums the durations of all slices that end at or before t.
func totalPausedBefore(pauses []PauseSlice, t float64) float64 {
	var total float64
	for _, p := range pauses {
		if p.ResumedAt <= t {
			total += p.Duration()
		}
	}
	return total
}

// FilterShift applies pause compensation to a capture stream: captures inside
// a pause slice or outside [startTime, endTime] are dropped, and every
// retained capture has the cumulative paused duration preceding it subtracted
// from its timestamp. timeOf and withTime give the function access to the
// timestamp of an arbitrary capture type.
//
// FilterShift is deterministic and side-effect-free: the input slice is never
// modified, relative order is preserved, and monotonic input timestamps yield
// monotonic output timestamps.
func FilterShift[T any](captures []T, timeOf func(T) float64, withTime func(T, float64) T, startTime, endTime float64, pauses []PauseSlice) []T {
	out := make([]T, 0, len(captures))
	for _, c := range captures {
		t := timeOf(c)
		if t < startTime || t > endTime {
			continue
		}
		if insidePause(pauses, t) {
			continue
		}
		shifted := t - totalPausedBefore(pauses, t)
		out = append(out, withTime(c, shifted))
	}
	return out
}

func insidePause(pauses []PauseSlice, t float64) bool {
	for _, p := range pauses {
		if p.Contains(t) {
			return true
		}
	}
	return false
}
