package record

import (
	"github.com/fakeyudi/rewind/internal/geom"
	"github.com/fakeyudi/rewind/internal/recording"
)

// SubjectRecorder accumulates raw captures for one subject during a session.
// It is owned by the subject's live representation and referenced, not
// owned, by the Recorder it is registered with. Captures are accepted only
// while the session is in the Recording state.
//
// Position and rotation captures apply delta-threshold filtering: a sample
// is retained only when the buffer is empty, a lifecycle event has just
// occurred, or it differs from the last retained sample by more than the
// configured threshold. The thresholds are configuration, defaulting to a
// small epsilon that retains effectively every detectable change.
type SubjectRecorder struct {
	id       int32
	name     string
	metadata map[string]string

	positionThreshold float64 // world units
	rotationThreshold float64 // degrees

	positions []recording.VectorCapture
	rotations []recording.VectorCapture
	lifecycle []recording.LifecycleCapture
	events    []recording.CustomEventCapture

	lastPosition *geom.Vec3
	lastRotation *geom.Vec3

	// recording reports whether the owning session is currently in the
	// Recording state. Set on Register, cleared on ClearSubjects.
	recording func() bool
}

// DefaultThreshold retains effectively every detectable change while still
// discarding bit-identical repeats of a stationary subject.
const DefaultThreshold = 1e-6

// NewSubjectRecorder creates a buffer for the given subject.
func NewSubjectRecorder(id int32, name string) *SubjectRecorder {
	return &SubjectRecorder{
		id:                id,
		name:              name,
		metadata:          map[string]string{},
		positionThreshold: DefaultThreshold,
		rotationThreshold: DefaultThreshold,
	}
}

// SetThresholds configures the delta filters. Position is in world units,
// rotation in degrees of angular distance.
func (s *SubjectRecorder) SetThresholds(position, rotation float64) {
	s.positionThreshold = position
	s.rotationThreshold = rotation
}

// SetMetadata attaches a key/value pair to the subject.
func (s *SubjectRecorder) SetMetadata(key, value string) {
	s.metadata[key] = value
}

// ID returns the subject id.
func (s *SubjectRecorder) ID() int32 { return s.id }

// Name returns the subject name.
func (s *SubjectRecorder) Name() string { return s.name }

// CapturePosition appends a position sample, subject to the delta filter.
// A no-op when the session is not recording.
func (s *SubjectRecorder) CapturePosition(time float64, value geom.Vec3) {
	if !s.active() {
		return
	}
	if s.lastPosition != nil && value.Distance(*s.lastPosition) <= s.positionThreshold {
		return
	}
	s.positions = append(s.positions, recording.VectorCapture{Time: time, Value: value})
	v := value
	s.lastPosition = &v
}

// CaptureRotation appends a rotation sample, subject to the delta filter.
// A no-op when the session is not recording.
func (s *SubjectRecorder) CaptureRotation(time float64, value geom.Vec3) {
	if !s.active() {
		return
	}
	if s.lastRotation != nil && geom.AngleDistance(value, *s.lastRotation) <= s.rotationThreshold {
		return
	}
	s.rotations = append(s.rotations, recording.VectorCapture{Time: time, Value: value})
	v := value
	s.lastRotation = &v
}

// CaptureLifecycle appends a lifecycle event and re-arms the delta filters
// so the next position and rotation sample is always retained.
// A no-op when the session is not recording.
func (s *SubjectRecorder) CaptureLifecycle(time float64, event recording.LifecycleEvent) {
	if !s.active() {
		return
	}
	s.lifecycle = append(s.lifecycle, recording.LifecycleCapture{Time: time, Event: event})
	s.lastPosition = nil
	s.lastRotation = nil
}

// CaptureCustomEvent appends a custom event. A nil contents map is
// normalized to empty. A no-op when the session is not recording.
func (s *SubjectRecorder) CaptureCustomEvent(time float64, name string, contents map[string]string) {
	if !s.active() {
		return
	}
	if contents == nil {
		contents = map[string]string{}
	}
	s.events = append(s.events, recording.CustomEventCapture{Time: time, Name: name, Contents: contents})
}

func (s *SubjectRecorder) active() bool {
	return s.recording != nil && s.recording()
}

// reset empties the buffer at session start.
func (s *SubjectRecorder) reset() {
	s.positions = nil
	s.rotations = nil
	s.lifecycle = nil
	s.events = nil
	s.lastPosition = nil
	s.lastRotation = nil
}

// save produces the immutable, pause-compensated subject timeline: every
// stream is clipped to [startTime, endTime] and shifted past the given
// pause slices. The buffer itself is not modified.
func (s *SubjectRecorder) save(startTime, endTime float64, pauses []PauseSlice) *recording.SubjectRecording {
	meta := make(map[string]string, len(s.metadata))
	for k, v := range s.metadata {
		meta[k] = v
	}
	return &recording.SubjectRecording{
		SubjectID:       s.id,
		Name:            s.name,
		Metadata:        meta,
		Positions:       FilterShift(s.positions, vectorTime, vectorWithTime, startTime, endTime, pauses),
		Rotations:       FilterShift(s.rotations, vectorTime, vectorWithTime, startTime, endTime, pauses),
		LifecycleEvents: FilterShift(s.lifecycle, lifecycleTime, lifecycleWithTime, startTime, endTime, pauses),
		CustomEvents:    FilterShift(s.events, eventTime, eventWithTime, startTime, endTime, pauses),
	}
}

// Timestamp accessors for FilterShift.

func vectorTime(c recording.VectorCapture) float64 { return c.Time }
func vectorWithTime(c recording.VectorCapture, t float64) recording.VectorCapture {
	c.Time = t
	return c
}

func lifecycleTime(c recording.LifecycleCapture) float64 { return c.Time }
func lifecycleWithTime(c recording.LifecycleCapture, t float64) recording.LifecycleCapture {
	c.Time = t
	return c
}

func eventTime(c recording.CustomEventCapture) float64 { return c.Time }
func eventWithTime(c recording.CustomEventCapture, t float64) recording.CustomEventCapture {
	c.Time = t
	return c
}
