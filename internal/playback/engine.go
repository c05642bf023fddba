// Package playback drives live actors from an immutable Recording: it
// advances or rewinds a virtual clock, interpolates poses between adjacent
// keyframes, and re-dispatches custom events in temporal order for the
// current direction of travel.
package playback

import (
	"sort"

	"github.com/fakeyudi/rewind/internal/geom"
	"github.com/fakeyudi/rewind/internal/recording"
)

// SubjectActor pairs a recorded subject with its live actor.
type SubjectActor struct {
	Subject *recording.SubjectRecording
	Actor   Actor
}

// timelineEvent is one dispatchable custom event on the merged timeline.
// time is recording-absolute; seq preserves capture order for equal
// timestamps.
type timelineEvent struct {
	subject *recording.SubjectRecording // nil for global events
	event   recording.CustomEventCapture
	seq     int
}

// Engine replays a Recording. All methods are synchronous and must be
// called from a single goroutine; the Recording itself is never modified,
// so several engines can replay the same Recording concurrently.
type Engine struct {
	rec     *recording.Recording
	actors  []SubjectActor
	events  []timelineEvent // sorted by (time, seq)
	handler EventHandler

	time  float64 // virtual playback time in [0, Duration]
	speed float64 // signed real-time multiplier
}

// NewEngine builds actors for every subject of rec and positions them at
// playback time zero. A nil builder uses a PoseActor placeholder per
// subject; a builder returning nil excludes that subject from playback.
// handler may be nil if no event re-dispatch is wanted.
func NewEngine(rec *recording.Recording, builder ActorBuilder, handler EventHandler) *Engine {
	e := &Engine{rec: rec, handler: handler, speed: 1}

	for _, s := range rec.Subjects {
		var actor Actor
		if builder == nil {
			actor = &PoseActor{}
		} else {
			actor = builder.Build(s.SubjectID, s.Name, s.Metadata)
			if actor == nil {
				continue
			}
		}
		// Seed with the subject's starting pose.
		var pos, rot geom.Vec3
		if len(s.Positions) > 0 {
			pos = s.Positions[0].Value
		}
		if len(s.Rotations) > 0 {
			rot = s.Rotations[0].Value
		}
		actor.SetTransform(pos, rot)
		e.actors = append(e.actors, SubjectActor{Subject: s, Actor: actor})
	}

	seq := 0
	for _, sa := range e.actors {
		for _, ev := range sa.Subject.CustomEvents {
			e.events = append(e.events, timelineEvent{subject: sa.Subject, event: ev, seq: seq})
			seq++
		}
	}
	for _, ev := range rec.GlobalEvents {
		e.events = append(e.events, timelineEvent{event: ev, seq: seq})
		seq++
	}
	sort.SliceStable(e.events, func(i, j int) bool {
		return e.events[i].event.Time < e.events[j].event.Time
	})

	e.apply()
	return e
}

// Duration returns the playback duration in seconds.
func (e *Engine) Duration() float64 { return e.rec.Duration() }

// Time returns the current virtual playback time in [0, Duration].
func (e *Engine) Time() float64 { return e.time }

// Speed returns the signed playback speed multiplier.
func (e *Engine) Speed() float64 { return e.speed }

// SetSpeed sets the signed playback speed multiplier. Negative values run
// the clock backwards.
func (e *Engine) SetSpeed(speed float64) { e.speed = speed }

// Actors returns the live subject/actor pairs in subject order.
func (e *Engine) Actors() []SubjectActor { return e.actors }

// Recording returns the recording being replayed.
func (e *Engine) Recording() *recording.Recording { return e.rec }

// Advance moves the virtual clock by elapsed real seconds scaled by the
// current speed. Equivalent to SetTime(Time() + elapsed*Speed()).
func (e *Engine) Advance(elapsed float64) {
	e.SetTime(e.time + elapsed*e.speed)
}

// AtEnd reports whether the clock sits at the boundary it is travelling
// towards.
func (e *Engine) AtEnd() bool {
	if e.speed < 0 {
		return e.time <= 0
	}
	return e.time >= e.Duration()
}

// SetTime scrubs the virtual clock to t, clamped to [0, Duration]. Every
// custom event between the old and new time is dispatched in timestamp
// order for the direction of travel, ties in original capture order.
// Scrubbing backward across an event re-arms it: a later forward crossing
// dispatches it again.
func (e *Engine) SetTime(t float64) {
	if t < 0 {
		t = 0
	}
	if d := e.Duration(); t > d {
		t = d
	}
	old := e.time
	e.time = t

	switch {
	case t > old:
		e.dispatchForward(old, t)
	case t < old:
		e.dispatchBackward(t, old)
	}
	e.apply()
}

// dispatchForward fires events with time in (from, to], ascending.
func (e *Engine) dispatchForward(from, to float64) {
	if e.handler == nil {
		return
	}
	start := e.rec.StartTime()
	for _, ev := range e.events {
		rel := ev.event.Time - start
		if rel <= from {
			continue
		}
		if rel > to {
			break
		}
		e.handler.OnCustomEvent(ev.subject, ev.event)
	}
}

// dispatchBackward fires events with time in [from, to), descending by
// timestamp but keeping capture order within equal timestamps.
func (e *Engine) dispatchBackward(from, to float64) {
	if e.handler == nil {
		return
	}
	start := e.rec.StartTime()

	// Collect the crossed range, then emit equal-time groups from latest to
	// earliest, each group in capture order.
	lo := -1
	hi := -1
	for i, ev := range e.events {
		rel := ev.event.Time - start
		if rel < from {
			continue
		}
		if rel >= to {
			break
		}
		if lo == -1 {
			lo = i
		}
		hi = i
	}
	if lo == -1 {
		return
	}
	for groupEnd := hi; groupEnd >= lo; {
		groupStart := groupEnd
		for groupStart > lo && e.events[groupStart-1].event.Time == e.events[groupEnd].event.Time {
			groupStart--
		}
		for i := groupStart; i <= groupEnd; i++ {
			e.handler.OnCustomEvent(e.events[i].subject, e.events[i].event)
		}
		groupEnd = groupStart - 1
	}
}

// apply pushes the interpolated pose and activation of every actor for the
// current virtual time.
func (e *Engine) apply() {
	at := e.rec.StartTime() + e.time
	for _, sa := range e.actors {
		s := sa.Subject
		active := e.subjectActive(s, at)
		sa.Actor.SetActive(active)
		if !active {
			continue
		}
		pos := sampleAt(s.Positions, at, geom.Lerp)
		rot := sampleAt(s.Rotations, at, geom.LerpAngles)
		sa.Actor.SetTransform(pos, rot)
	}
}

// subjectActive reports whether the subject is visible at absolute time at:
// the clock must have reached its first keyframe and its most recent
// lifecycle event must not be a despawn.
func (e *Engine) subjectActive(s *recording.SubjectRecording, at float64) bool {
	if first, ok := firstKeyframe(s); ok && at < first {
		return false
	}
	if len(s.LifecycleEvents) == 0 {
		return true
	}
	state := false
	seen := false
	for _, lc := range s.LifecycleEvents {
		if lc.Time > at {
			break
		}
		seen = true
		state = lc.Event == recording.Spawned
	}
	if !seen {
		// lifecycle events exist but none has occurred yet
		return false
	}
	return state
}

func firstKeyframe(s *recording.SubjectRecording) (float64, bool) {
	switch {
	case len(s.Positions) > 0 && len(s.Rotations) > 0:
		p, r := s.Positions[0].Time, s.Rotations[0].Time
		if r < p {
			return r, true
		}
		return p, true
	case len(s.Positions) > 0:
		return s.Positions[0].Time, true
	case len(s.Rotations) > 0:
		return s.Rotations[0].Time, true
	}
	return 0, false
}

// sampleAt interpolates the keyframe sequence at absolute time at. Before
// the first keyframe the first value is returned; past the last keyframe the
// final value is held.
func sampleAt(keys []recording.VectorCapture, at float64, interp func(a, b geom.Vec3, t float64) geom.Vec3) geom.Vec3 {
	if len(keys) == 0 {
		return geom.Vec3{}
	}
	if at <= keys[0].Time {
		return keys[0].Value
	}
	last := len(keys) - 1
	if at >= keys[last].Time {
		return keys[last].Value
	}
	// First keyframe with time > at; its predecessor brackets from below.
	hi := sort.Search(len(keys), func(i int) bool { return keys[i].Time > at })
	lo := hi - 1
	span := keys[hi].Time - keys[lo].Time
	if span <= 0 {
		return keys[hi].Value
	}
	frac := (at - keys[lo].Time) / span
	return interp(keys[lo].Value, keys[hi].Value, frac)
}
