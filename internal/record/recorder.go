// Package record implements the capture side of the pipeline: the session
// state machine, per-subject sample buffers with delta-threshold filtering,
// and the pause compensation that turns raw captures into a portable
// Recording.
//
// The package is single-threaded by design: all operations execute
// synchronously on the host's tick and callers must serialize access.
package record

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/fakeyudi/rewind/internal/recording"
)

// State is the recorder session state.
type State int

const (
	Stopped State = iota
	Recording
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Recording:
		return "Recording"
	case Paused:
		return "Paused"
	}
	return "Unknown"
}

// CompletionListener is notified synchronously with the finished Recording.
type CompletionListener interface {
	RecordingComplete(*recording.Recording)
}

// Recorder orchestrates a capture session across registered subject buffers
// and a global custom-event stream. A single Recorder can run any number of
// consecutive sessions; metadata set with SetMetadata persists across
// sessions until explicitly cleared.
type Recorder struct {
	clock Clock
	name  string

	state       State
	timeStarted float64
	timePaused  float64
	sessionID   string

	pauses       []PauseSlice
	subjects     []*SubjectRecorder
	globalEvents []recording.CustomEventCapture
	metadata     map[string]string
	listeners    []CompletionListener
	warnings     []string
}

// NewRecorder creates a stopped Recorder named name, reading time from clock.
func NewRecorder(clock Clock, name string) *Recorder {
	return &Recorder{
		clock:    clock,
		name:     name,
		metadata: map[string]string{},
	}
}

// State returns the current session state.
func (r *Recorder) State() State { return r.state }

// Warnings returns non-fatal issues raised during the current or most
// recently finished session.
func (r *Recorder) Warnings() []string { return r.warnings }

// Register adds a subject buffer to the session. Only valid while Stopped.
// Registering the same buffer twice is a no-op.
func (r *Recorder) Register(s *SubjectRecorder) error {
	if r.state != Stopped {
		return invalidTransition("Register", r.state)
	}
	for _, existing := range r.subjects {
		if existing == s {
			return nil
		}
	}
	s.recording = func() bool { return r.state == Recording }
	r.subjects = append(r.subjects, s)
	return nil
}

// ClearSubjects removes all registered subject buffers. Only valid while
// Stopped.
func (r *Recorder) ClearSubjects() error {
	if r.state != Stopped {
		return invalidTransition("ClearSubjects", r.state)
	}
	for _, s := range r.subjects {
		s.recording = nil
	}
	r.subjects = nil
	return nil
}

// SetMetadata stores a key/value pair applied to every recording this
// Recorder produces. Persists across sessions until ClearMetadata.
func (r *Recorder) SetMetadata(key, value string) {
	r.metadata[key] = value
}

// ClearMetadata removes all persistent metadata.
func (r *Recorder) ClearMetadata() {
	r.metadata = map[string]string{}
}

// AddCompletionListener subscribes l to Finish notifications. Listeners are
// invoked synchronously in registration order; registering the same listener
// twice is a no-op.
func (r *Recorder) AddCompletionListener(l CompletionListener) {
	for _, existing := range r.listeners {
		if existing == l {
			return
		}
	}
	r.listeners = append(r.listeners, l)
}

// Start begins a new session: pause slices, the global event stream and all
// subject buffers are reset and the session clock origin is taken from the
// time source. Fails unless the recorder is Stopped.
func (r *Recorder) Start() error {
	if r.state != Stopped {
		return invalidTransition("Start", r.state)
	}
	r.pauses = nil
	r.globalEvents = nil
	r.warnings = nil
	r.sessionID = uuid.NewString()
	for _, s := range r.subjects {
		s.reset()
	}
	r.timeStarted = r.clock.Now()
	r.state = Recording
	return nil
}

// Pause suspends capture. Fails unless the recorder is Recording.
func (r *Recorder) Pause() error {
	if r.state != Recording {
		return invalidTransition("Pause", r.state)
	}
	r.timePaused = r.clock.Now()
	r.state = Paused
	return nil
}

// Resume ends the current pause, appending its slice. Fails unless the
// recorder is Paused, or with ErrClockIntegrity if the clock has gone
// backwards since Pause — in that case the recorder remains Paused.
func (r *Recorder) Resume() error {
	if r.state != Paused {
		return invalidTransition("Resume", r.state)
	}
	now := r.clock.Now()
	if now-r.timePaused < 0 {
		return fmt.Errorf("resume at %v before pause at %v: %w", now, r.timePaused, ErrClockIntegrity)
	}
	r.pauses = append(r.pauses, PauseSlice{PausedAt: r.timePaused, ResumedAt: now})
	r.state = Recording
	return nil
}

// CaptureCustomEvent appends a global custom event at the current time.
// Silently ignored while Paused; fails while Stopped. A nil contents map is
// normalized to empty.
func (r *Recorder) CaptureCustomEvent(name string, contents map[string]string) error {
	switch r.state {
	case Stopped:
		return invalidTransition("CaptureCustomEvent", r.state)
	case Paused:
		return nil
	}
	if contents == nil {
		contents = map[string]string{}
	}
	r.globalEvents = append(r.globalEvents, recording.CustomEventCapture{
		Time:     r.clock.Now(),
		Name:     name,
		Contents: contents,
	})
	return nil
}

// Finish ends the session and assembles the immutable Recording. A Paused
// recorder is implicitly resumed first. If the clock reports an end time at
// or before the session start (a clock reset during shutdown), the end time
// is forced to +Inf and a warning is recorded rather than producing a
// zero-duration recording. Completion listeners are invoked synchronously
// with the result. Fails if the recorder is Stopped.
func (r *Recorder) Finish() (*recording.Recording, error) {
	if r.state == Stopped {
		return nil, invalidTransition("Finish", r.state)
	}
	if r.state == Paused {
		if err := r.Resume(); err != nil {
			return nil, err
		}
	}

	endTime := r.clock.Now()
	if r.timeStarted >= endTime {
		r.warnf("end time %v at or before start time %v, clamping recording end to +Inf", endTime, r.timeStarted)
		endTime = math.Inf(1)
	}

	rec := r.assemble(endTime, r.pauses)
	r.state = Stopped

	for _, l := range r.listeners {
		l.RecordingComplete(rec)
	}
	return rec, nil
}

// BuildRecording produces a snapshot of the session so far without changing
// state. While Paused, a synthetic pause slice ending now is applied for the
// computation only; the live slice list is untouched. Fails while Stopped.
func (r *Recorder) BuildRecording() (*recording.Recording, error) {
	if r.state == Stopped {
		return nil, invalidTransition("BuildRecording", r.state)
	}
	now := r.clock.Now()
	pauses := r.pauses
	if r.state == Paused {
		pauses = make([]PauseSlice, len(r.pauses), len(r.pauses)+1)
		copy(pauses, r.pauses)
		pauses = append(pauses, PauseSlice{PausedAt: r.timePaused, ResumedAt: now})
	}
	return r.assemble(now, pauses), nil
}

func (r *Recorder) assemble(endTime float64, pauses []PauseSlice) *recording.Recording {
	subjects := make([]*recording.SubjectRecording, 0, len(r.subjects))
	for _, s := range r.subjects {
		subjects = append(subjects, s.save(r.timeStarted, endTime, pauses))
	}

	meta := make(map[string]string, len(r.metadata)+1)
	for k, v := range r.metadata {
		meta[k] = v
	}
	meta["session.id"] = r.sessionID

	globals := FilterShift(r.globalEvents, eventTime, eventWithTime, r.timeStarted, endTime, pauses)
	return recording.New(r.name, meta, subjects, globals)
}

func (r *Recorder) warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}
