// Package recording defines the immutable result of a capture session: the
// per-subject timelines, the global custom-event stream, and the metadata
// that travels with them. Nothing in this package mutates a Recording after
// construction, which is what makes it safe to hand the same Recording to
// the serializer and any number of playback engines at once.
package recording

import "github.com/fakeyudi/rewind/internal/geom"

// VectorCapture is one timestamped position or rotation sample. Within a
// subject's position list and rotation list, Time is non-decreasing.
type VectorCapture struct {
	Time  float64   `json:"time"`
	Value geom.Vec3 `json:"value"`
}

// LifecycleEvent marks a subject entering or leaving the recorded scene.
type LifecycleEvent int

const (
	Spawned LifecycleEvent = iota
	Destroyed
)

func (e LifecycleEvent) String() string {
	switch e {
	case Spawned:
		return "Spawned"
	case Destroyed:
		return "Destroyed"
	}
	return "Unknown"
}

// ParseLifecycleEvent converts the serialized event name back to its value.
// Unknown names report ok=false.
func ParseLifecycleEvent(s string) (LifecycleEvent, bool) {
	switch s {
	case "Spawned":
		return Spawned, true
	case "Destroyed":
		return Destroyed, true
	}
	return 0, false
}

// LifecycleCapture is one timestamped lifecycle event.
type LifecycleCapture struct {
	Time  float64        `json:"time"`
	Event LifecycleEvent `json:"event"`
}

// CustomEventCapture is an arbitrary tagged, timestamped key/value payload.
// Within an event list, captures with equal timestamps keep their insertion
// order.
type CustomEventCapture struct {
	Time     float64           `json:"time"`
	Name     string            `json:"name"`
	Contents map[string]string `json:"contents"`
}
