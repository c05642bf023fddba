package playback

import (
	"math"
	"testing"

	"github.com/fakeyudi/rewind/internal/geom"
	"github.com/fakeyudi/rewind/internal/recording"
)

func singleSubjectRecording(s *recording.SubjectRecording) *recording.Recording {
	return recording.New("r", nil, []*recording.SubjectRecording{s}, nil)
}

func moverSubject() *recording.SubjectRecording {
	return &recording.SubjectRecording{
		SubjectID: 1,
		Name:      "mover",
		Positions: []recording.VectorCapture{
			{Time: 0, Value: geom.Vec3{X: 0}},
			{Time: 10, Value: geom.Vec3{X: 10}},
		},
	}
}

func poseOf(e *Engine, idx int) *PoseActor {
	return e.Actors()[idx].Actor.(*PoseActor)
}

func TestScrubInterpolatesPosition(t *testing.T) {
	e := NewEngine(singleSubjectRecording(moverSubject()), nil, nil)

	e.SetTime(5)
	got := poseOf(e, 0).Position
	if math.Abs(got.X-5) > 1e-9 || got.Y != 0 || got.Z != 0 {
		t.Errorf("position at t=5 = %v, want (5,0,0)", got)
	}
}

func TestHoldsFinalValuePastLastKeyframe(t *testing.T) {
	s := moverSubject()
	s.CustomEvents = []recording.CustomEventCapture{{Time: 12, Name: "late"}}
	e := NewEngine(singleSubjectRecording(s), nil, nil)

	// duration is 12 because of the late event; positions end at t=10
	e.SetTime(11)
	p := poseOf(e, 0)
	if p.Position.X != 10 {
		t.Errorf("position past last keyframe = %v, want held 10", p.Position.X)
	}
	if !p.Active {
		t.Error("actor deactivated without a despawn event")
	}
}

func TestInactiveBeforeFirstKeyframe(t *testing.T) {
	s := &recording.SubjectRecording{
		SubjectID: 1,
		Positions: []recording.VectorCapture{
			{Time: 5, Value: geom.Vec3{X: 5}},
			{Time: 10, Value: geom.Vec3{X: 10}},
		},
	}
	e := NewEngine(singleSubjectRecording(s), nil, nil)

	e.SetTime(2)
	if poseOf(e, 0).Active {
		t.Error("actor active before its first keyframe")
	}
	e.SetTime(7)
	if !poseOf(e, 0).Active {
		t.Error("actor inactive after its first keyframe")
	}
}

func TestLifecycleGatesActivation(t *testing.T) {
	s := &recording.SubjectRecording{
		SubjectID: 1,
		Positions: []recording.VectorCapture{
			{Time: 0, Value: geom.Vec3{}},
			{Time: 10, Value: geom.Vec3{X: 10}},
		},
		LifecycleEvents: []recording.LifecycleCapture{
			{Time: 2, Event: recording.Spawned},
			{Time: 8, Event: recording.Destroyed},
		},
	}
	e := NewEngine(singleSubjectRecording(s), nil, nil)

	e.SetTime(1)
	if poseOf(e, 0).Active {
		t.Error("active before spawn")
	}
	e.SetTime(5)
	if !poseOf(e, 0).Active {
		t.Error("inactive between spawn and despawn")
	}
	e.SetTime(9)
	if poseOf(e, 0).Active {
		t.Error("active after despawn")
	}
	// Scrubbing back re-activates.
	e.SetTime(5)
	if !poseOf(e, 0).Active {
		t.Error("inactive after scrubbing back before despawn")
	}
}

func TestRotationInterpolatesShortestArc(t *testing.T) {
	s := &recording.SubjectRecording{
		SubjectID: 1,
		Rotations: []recording.VectorCapture{
			{Time: 0, Value: geom.Vec3{Y: 350}},
			{Time: 10, Value: geom.Vec3{Y: 10}},
		},
	}
	e := NewEngine(singleSubjectRecording(s), nil, nil)

	e.SetTime(5)
	got := poseOf(e, 0).Rotation.Y
	if math.Abs(got) > 1e-9 && math.Abs(got-360) > 1e-9 {
		t.Errorf("rotation midpoint = %v, want 0", got)
	}
}

type eventLog struct {
	names []string
}

func (l *eventLog) OnCustomEvent(_ *recording.SubjectRecording, ev recording.CustomEventCapture) {
	l.names = append(l.names, ev.Name)
}

func TestEventFiresOncePerCrossing(t *testing.T) {
	s := moverSubject()
	s.CustomEvents = []recording.CustomEventCapture{{Time: 5, Name: "boom"}}
	log := &eventLog{}
	e := NewEngine(singleSubjectRecording(s), nil, log)

	e.SetTime(6)
	if len(log.names) != 1 {
		t.Fatalf("forward crossing fired %d times, want 1", len(log.names))
	}

	// Advancing further without re-crossing fires nothing.
	e.SetTime(8)
	if len(log.names) != 1 {
		t.Fatalf("no crossing but %d events fired", len(log.names))
	}
}

func TestScrubBackReArmsEvents(t *testing.T) {
	s := moverSubject()
	s.CustomEvents = []recording.CustomEventCapture{{Time: 5, Name: "boom"}}
	log := &eventLog{}
	e := NewEngine(singleSubjectRecording(s), nil, log)

	e.SetTime(6) // forward crossing: fires
	e.SetTime(3) // backward crossing: fires for the reverse traversal
	e.SetTime(6) // forward again: re-armed, fires again

	want := []string{"boom", "boom", "boom"}
	if len(log.names) != len(want) {
		t.Fatalf("fired %v, want %v", log.names, want)
	}
}

func TestReversePlaybackDispatchesCrossedEvents(t *testing.T) {
	s := moverSubject()
	s.CustomEvents = []recording.CustomEventCapture{
		{Time: 2, Name: "a"},
		{Time: 4, Name: "b"},
		{Time: 4, Name: "c"}, // same timestamp, later capture order
		{Time: 7, Name: "d"},
	}
	log := &eventLog{}
	e := NewEngine(singleSubjectRecording(s), nil, log)

	e.SetTime(10)
	wantForward := []string{"a", "b", "c", "d"}
	if len(log.names) != 4 {
		t.Fatalf("forward fired %v, want %v", log.names, wantForward)
	}
	for i := range wantForward {
		if log.names[i] != wantForward[i] {
			t.Fatalf("forward fired %v, want %v", log.names, wantForward)
		}
	}

	log.names = nil
	e.SetSpeed(-1)
	e.Advance(10) // back to t=0

	// Descending by timestamp, capture order within the t=4 tie.
	wantBackward := []string{"d", "b", "c", "a"}
	if len(log.names) != len(wantBackward) {
		t.Fatalf("backward fired %v, want %v", log.names, wantBackward)
	}
	for i := range wantBackward {
		if log.names[i] != wantBackward[i] {
			t.Fatalf("backward fired %v, want %v", log.names, wantBackward)
		}
	}
}

func TestAdvanceAppliesSignedSpeed(t *testing.T) {
	e := NewEngine(singleSubjectRecording(moverSubject()), nil, nil)

	e.SetSpeed(2)
	e.Advance(1.5)
	if got := e.Time(); math.Abs(got-3) > 1e-9 {
		t.Errorf("Time = %v, want 3", got)
	}

	e.SetSpeed(-4)
	e.Advance(1)
	if got := e.Time(); got != 0 {
		t.Errorf("Time = %v, want clamped 0", got)
	}
	if !e.AtEnd() {
		t.Error("AtEnd false at reverse boundary")
	}
}

func TestClampToDuration(t *testing.T) {
	e := NewEngine(singleSubjectRecording(moverSubject()), nil, nil)
	e.SetTime(50)
	if got := e.Time(); got != 10 {
		t.Errorf("Time = %v, want clamped 10", got)
	}
	if !e.AtEnd() {
		t.Error("AtEnd false at forward boundary")
	}
}

func TestBuilderSkipsAndSeeds(t *testing.T) {
	rec := recording.New("r", nil, []*recording.SubjectRecording{
		moverSubject(),
		{SubjectID: 2, Name: "skipped"},
	}, nil)

	built := map[int32]*PoseActor{}
	builder := BuilderFunc(func(id int32, name string, _ map[string]string) Actor {
		if name == "skipped" {
			return nil
		}
		a := &PoseActor{}
		built[id] = a
		return a
	})

	e := NewEngine(rec, builder, nil)
	if len(e.Actors()) != 1 {
		t.Fatalf("got %d actors, want 1", len(e.Actors()))
	}
	// Seeded with the first sample before any tick.
	if built[1].Position.X != 0 {
		t.Errorf("seed position = %v", built[1].Position)
	}
}

func TestGlobalEventsDispatchWithNilSubject(t *testing.T) {
	rec := recording.New("r", nil,
		[]*recording.SubjectRecording{moverSubject()},
		[]recording.CustomEventCapture{{Time: 5, Name: "global"}},
	)

	var gotSubject *recording.SubjectRecording = &recording.SubjectRecording{}
	handler := HandlerFunc(func(s *recording.SubjectRecording, ev recording.CustomEventCapture) {
		gotSubject = s
	})

	e := NewEngine(rec, nil, handler)
	e.SetTime(6)
	if gotSubject != nil {
		t.Errorf("global event dispatched with subject %v, want nil", gotSubject)
	}
}

func TestNonZeroStartTimeOffsets(t *testing.T) {
	// Keyframes starting at t=100: playback time is still [0, duration].
	s := &recording.SubjectRecording{
		SubjectID: 1,
		Positions: []recording.VectorCapture{
			{Time: 100, Value: geom.Vec3{X: 0}},
			{Time: 110, Value: geom.Vec3{X: 10}},
		},
	}
	e := NewEngine(singleSubjectRecording(s), nil, nil)
	if got := e.Duration(); got != 10 {
		t.Fatalf("Duration = %v, want 10", got)
	}
	e.SetTime(5)
	if got := poseOf(e, 0).Position.X; math.Abs(got-5) > 1e-9 {
		t.Errorf("position = %v, want 5", got)
	}
}
