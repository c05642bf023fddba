package export

import (
	"errors"
	"strings"
	"testing"

	"github.com/fakeyudi/rewind/internal/geom"
	"github.com/fakeyudi/rewind/internal/recording"
)

func sampleRecording() *recording.Recording {
	return recording.New(
		"arena-match",
		map[string]string{"scene": "arena", "session.id": "abc"},
		[]*recording.SubjectRecording{
			{
				SubjectID: 1,
				Name:      "player",
				Metadata:  map[string]string{"kind": "humanoid"},
				Positions: []recording.VectorCapture{
					{Time: 0, Value: geom.Vec3{X: 0, Y: 1, Z: 0}},
					{Time: 2.5, Value: geom.Vec3{X: 5, Y: 1, Z: -2}},
				},
				Rotations: []recording.VectorCapture{
					{Time: 0, Value: geom.Vec3{Y: 90}},
				},
				LifecycleEvents: []recording.LifecycleCapture{
					{Time: 0, Event: recording.Spawned},
					{Time: 9, Event: recording.Destroyed},
				},
				CustomEvents: []recording.CustomEventCapture{
					{Time: 1, Name: "jump", Contents: map[string]string{"height": "2.3"}},
					{Time: 1, Name: "land", Contents: map[string]string{}},
				},
			},
			{
				SubjectID: 2,
				Name:      "crate, \"special\"", // exercises CSV quoting
				Metadata:  map[string]string{},
				Positions: []recording.VectorCapture{
					{Time: 0.5, Value: geom.Vec3{X: -1}},
				},
			},
		},
		[]recording.CustomEventCapture{
			{Time: 4, Name: "round\nend", Contents: map[string]string{"winner": "player", "score": "10"}},
		},
	)
}

func assertRoundTrip(t *testing.T, r Renderer, p Parser) {
	t.Helper()
	orig := sampleRecording()

	data, err := r.Render(orig)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got, err := p.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got.Name != orig.Name {
		t.Errorf("Name = %q, want %q", got.Name, orig.Name)
	}
	if got.Metadata["scene"] != "arena" {
		t.Errorf("Metadata = %v", got.Metadata)
	}
	if len(got.Subjects) != 2 {
		t.Fatalf("got %d subjects, want 2", len(got.Subjects))
	}

	s := got.Subject(1)
	if s == nil || s.Name != "player" {
		t.Fatalf("subject 1 = %+v", s)
	}
	if len(s.Positions) != 2 || s.Positions[1].Value != (geom.Vec3{X: 5, Y: 1, Z: -2}) {
		t.Errorf("positions = %+v", s.Positions)
	}
	if len(s.Rotations) != 1 || s.Rotations[0].Value.Y != 90 {
		t.Errorf("rotations = %+v", s.Rotations)
	}
	if len(s.LifecycleEvents) != 2 || s.LifecycleEvents[1].Event != recording.Destroyed {
		t.Errorf("lifecycle = %+v", s.LifecycleEvents)
	}
	if len(s.CustomEvents) != 2 {
		t.Fatalf("subject events = %+v", s.CustomEvents)
	}
	if s.CustomEvents[0].Name != "jump" || s.CustomEvents[0].Contents["height"] != "2.3" {
		t.Errorf("event 0 = %+v", s.CustomEvents[0])
	}
	if s.CustomEvents[1].Name != "land" || len(s.CustomEvents[1].Contents) != 0 {
		t.Errorf("event 1 = %+v", s.CustomEvents[1])
	}

	if got.Subject(2).Name != orig.Subject(2).Name {
		t.Errorf("subject 2 name = %q", got.Subject(2).Name)
	}

	if len(got.GlobalEvents) != 1 {
		t.Fatalf("global events = %+v", got.GlobalEvents)
	}
	ge := got.GlobalEvents[0]
	if ge.Name != "round\nend" || ge.Contents["winner"] != "player" || ge.Contents["score"] != "10" {
		t.Errorf("global event = %+v", ge)
	}

	if got.Duration() != orig.Duration() {
		t.Errorf("Duration = %v, want %v", got.Duration(), orig.Duration())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	assertRoundTrip(t, &JSONRenderer{}, &JSONParser{})
}

func TestCSVRoundTrip(t *testing.T) {
	assertRoundTrip(t, &CSVRenderer{}, &CSVParser{})
}

func TestJSONKeyValueMismatchIsConsistencyError(t *testing.T) {
	doc := `{
		"version": 1,
		"name": "r",
		"customEvents": [
			{"time": 1, "name": "bad", "keys": ["a", "b"], "values": ["only-one"]}
		],
		"subjects": []
	}`

	_, err := (&JSONParser{}).Parse([]byte(doc))
	var ce *ConsistencyError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want ConsistencyError", err)
	}
	if !strings.Contains(ce.Error(), "bad") {
		t.Errorf("error lacks event name: %v", ce)
	}
}

func TestJSONNormalizesMissingCollections(t *testing.T) {
	doc := `{"version": 1, "name": "sparse", "subjects": [{"id": 3, "name": "s"}]}`
	rec, err := (&JSONParser{}).Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Metadata == nil || rec.GlobalEvents == nil {
		t.Error("recording collections not normalized")
	}
	s := rec.Subject(3)
	if s.Metadata == nil {
		t.Error("subject metadata not normalized")
	}
	if len(s.Positions) != 0 || len(s.CustomEvents) != 0 {
		t.Errorf("unexpected data: %+v", s)
	}
}

func TestJSONRejectsUnknownVersion(t *testing.T) {
	if _, err := (&JSONParser{}).Parse([]byte(`{"version": 99, "name": "r"}`)); err == nil {
		t.Error("accepted unknown version")
	}
}

func TestCSVRejectsMissingSentinel(t *testing.T) {
	if _, err := (&CSVParser{}).Parse([]byte("ID,Name\n1,x\n")); err == nil {
		t.Error("accepted document without version sentinel")
	}
}

func TestCSVRejectsTruncatedSentinelRow(t *testing.T) {
	// Sentinel field present but with the version column missing.
	_, err := (&CSVParser{}).Parse([]byte("rewind-recording-version\nName,r\n"))
	if err == nil || !strings.Contains(err.Error(), "not a recording document") {
		t.Errorf("got %v, want not-a-recording-document error", err)
	}
}

func TestCSVRejectsUnknownLifecycleEvent(t *testing.T) {
	doc := strings.Join([]string{
		"rewind-recording-version,1",
		"Name,r",
		"[Subjects]",
		"ID,Name",
		"1,s",
		"[LifeCycleEvents]",
		"SubjectID,Time,Event",
		"1,0,Exploded",
	}, "\n") + "\n"

	_, err := (&CSVParser{}).Parse([]byte(doc))
	if err == nil || !strings.Contains(err.Error(), "Exploded") {
		t.Errorf("got %v, want unknown lifecycle event error", err)
	}
}

func TestCSVGlobalRowsHaveEmptySubjectID(t *testing.T) {
	data, err := (&CSVRenderer{}).Render(sampleRecording())
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, ",winner,player") {
		t.Errorf("global event row missing:\n%s", text)
	}
	// The global metadata row must start with an empty SubjectID column.
	if !strings.Contains(text, "\n,scene,arena") {
		t.Errorf("global metadata row missing:\n%s", text)
	}
}

func TestEmptyRecordingRoundTrips(t *testing.T) {
	empty := recording.New("empty", nil, nil, nil)
	for _, pair := range []struct {
		name string
		r    Renderer
		p    Parser
	}{
		{"json", &JSONRenderer{}, &JSONParser{}},
		{"csv", &CSVRenderer{}, &CSVParser{}},
	} {
		data, err := pair.r.Render(empty)
		if err != nil {
			t.Fatalf("%s render: %v", pair.name, err)
		}
		got, err := pair.p.Parse(data)
		if err != nil {
			t.Fatalf("%s parse: %v", pair.name, err)
		}
		if got.Name != "empty" || len(got.Subjects) != 0 {
			t.Errorf("%s: got %+v", pair.name, got)
		}
	}
}
