package recording

import (
	"math"
	"sync"
)

// SubjectRecording is the complete, pause-compensated timeline of a single
// subject. It is built once by the recorder and never modified afterwards;
// it is owned exclusively by the Recording that contains it.
type SubjectRecording struct {
	SubjectID       int32                `json:"subjectId"`
	Name            string               `json:"name"`
	Metadata        map[string]string    `json:"metadata"`
	Positions       []VectorCapture      `json:"positions"`
	Rotations       []VectorCapture      `json:"rotations"`
	LifecycleEvents []LifecycleCapture   `json:"lifecycleEvents"`
	CustomEvents    []CustomEventCapture `json:"customEvents"`
}

// Recording is the immutable aggregate a capture session produces. Derived
// statistics are computed on first access and cached for the lifetime of the
// object; callers must never mutate a Recording after construction.
type Recording struct {
	Name         string
	Metadata     map[string]string
	Subjects     []*SubjectRecording
	GlobalEvents []CustomEventCapture

	statsOnce sync.Once
	duration  float64
	startTime float64
}

// New assembles a Recording. Nil collections are normalized to empty so
// callers never see a nil map or slice.
func New(name string, metadata map[string]string, subjects []*SubjectRecording, globalEvents []CustomEventCapture) *Recording {
	if metadata == nil {
		metadata = map[string]string{}
	}
	if subjects == nil {
		subjects = []*SubjectRecording{}
	}
	if globalEvents == nil {
		globalEvents = []CustomEventCapture{}
	}
	return &Recording{
		Name:         name,
		Metadata:     metadata,
		Subjects:     subjects,
		GlobalEvents: globalEvents,
	}
}

// Duration returns the span between the earliest and latest timestamp across
// all subject samples and all custom events. Zero for an empty recording.
func (r *Recording) Duration() float64 {
	r.statsOnce.Do(r.computeStats)
	return r.duration
}

// StartTime returns the earliest timestamp across all subject samples and
// all custom events. Zero for an empty recording.
func (r *Recording) StartTime() float64 {
	r.statsOnce.Do(r.computeStats)
	return r.startTime
}

func (r *Recording) computeStats() {
	min := math.Inf(1)
	max := math.Inf(-1)

	observe := func(t float64) {
		if t < min {
			min = t
		}
		if t > max {
			max = t
		}
	}

	for _, s := range r.Subjects {
		for _, c := range s.Positions {
			observe(c.Time)
		}
		for _, c := range s.Rotations {
			observe(c.Time)
		}
		for _, c := range s.LifecycleEvents {
			observe(c.Time)
		}
		for _, c := range s.CustomEvents {
			observe(c.Time)
		}
	}
	for _, c := range r.GlobalEvents {
		observe(c.Time)
	}

	if math.IsInf(min, 1) {
		// no samples at all
		r.startTime = 0
		r.duration = 0
		return
	}
	r.startTime = min
	r.duration = max - min
}

// Subject returns the subject with the given id, or nil.
func (r *Recording) Subject(id int32) *SubjectRecording {
	for _, s := range r.Subjects {
		if s.SubjectID == id {
			return s
		}
	}
	return nil
}

// SampleCount returns the total number of position and rotation samples
// across all subjects.
func (r *Recording) SampleCount() int {
	n := 0
	for _, s := range r.Subjects {
		n += len(s.Positions) + len(s.Rotations)
	}
	return n
}
