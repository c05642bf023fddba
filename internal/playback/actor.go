package playback

import (
	"github.com/fakeyudi/rewind/internal/geom"
	"github.com/fakeyudi/rewind/internal/recording"
)

// Actor is the live representation of a recorded subject during playback.
// The engine pushes interpolated poses and activation changes into it; the
// host decides what an actor actually is.
type Actor interface {
	SetTransform(position, rotation geom.Vec3)
	SetActive(active bool)
}

// ActorBuilder supplies an Actor for each subject at engine construction.
// Returning nil excludes the subject from playback.
type ActorBuilder interface {
	Build(subjectID int32, name string, metadata map[string]string) Actor
}

// EventHandler receives custom events re-dispatched during playback.
// subject is nil for events from the global stream.
type EventHandler interface {
	OnCustomEvent(subject *recording.SubjectRecording, event recording.CustomEventCapture)
}

// PoseActor is the default placeholder actor: it remembers the last pose
// and activation the engine pushed into it. Hosts without their own actor
// representation (the TUI viewer, tests) read poses back from it.
type PoseActor struct {
	Position geom.Vec3
	Rotation geom.Vec3
	Active   bool
}

func (a *PoseActor) SetTransform(position, rotation geom.Vec3) {
	a.Position = position
	a.Rotation = rotation
}

func (a *PoseActor) SetActive(active bool) {
	a.Active = active
}

// BuilderFunc adapts a function to the ActorBuilder interface.
type BuilderFunc func(subjectID int32, name string, metadata map[string]string) Actor

func (f BuilderFunc) Build(subjectID int32, name string, metadata map[string]string) Actor {
	return f(subjectID, name, metadata)
}

// HandlerFunc adapts a function to the EventHandler interface.
type HandlerFunc func(subject *recording.SubjectRecording, event recording.CustomEventCapture)

func (f HandlerFunc) OnCustomEvent(subject *recording.SubjectRecording, event recording.CustomEventCapture) {
	f(subject, event)
}
