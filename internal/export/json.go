package export

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fakeyudi/rewind/internal/geom"
	"github.com/fakeyudi/rewind/internal/recording"
)

// The structured form. Custom-event contents are stored as parallel,
// key-sorted Keys/Values arrays so output is deterministic; a length
// mismatch on load is a ConsistencyError. Duration is included for readers
// that never load the full document; it is recomputed on load.
type jsonDocument struct {
	Version      int               `json:"version"`
	Name         string            `json:"name"`
	Duration     float64           `json:"duration"`
	Metadata     map[string]string `json:"metadata"`
	CustomEvents []jsonEvent       `json:"customEvents"`
	Subjects     []jsonSubject     `json:"subjects"`
}

type jsonSubject struct {
	ID              int32             `json:"id"`
	Name            string            `json:"name"`
	Metadata        map[string]string `json:"metadata"`
	Positions       []jsonSample      `json:"positions"`
	Rotations       []jsonSample      `json:"rotations"`
	LifecycleEvents []jsonLifecycle   `json:"lifecycleEvents"`
	CustomEvents    []jsonEvent       `json:"customEvents"`
}

type jsonSample struct {
	Time float64 `json:"time"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

type jsonLifecycle struct {
	Time  float64 `json:"time"`
	Event string  `json:"event"`
}

type jsonEvent struct {
	Time   float64  `json:"time"`
	Name   string   `json:"name"`
	Keys   []string `json:"keys"`
	Values []string `json:"values"`
}

// JSONRenderer renders a Recording as an indented JSON document.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(rec *recording.Recording) ([]byte, error) {
	doc := jsonDocument{
		Version:      FormatVersion,
		Name:         rec.Name,
		Duration:     rec.Duration(),
		Metadata:     rec.Metadata,
		CustomEvents: toJSONEvents(rec.GlobalEvents),
		Subjects:     make([]jsonSubject, 0, len(rec.Subjects)),
	}
	for _, s := range rec.Subjects {
		doc.Subjects = append(doc.Subjects, jsonSubject{
			ID:              s.SubjectID,
			Name:            s.Name,
			Metadata:        s.Metadata,
			Positions:       toJSONSamples(s.Positions),
			Rotations:       toJSONSamples(s.Rotations),
			LifecycleEvents: toJSONLifecycles(s.LifecycleEvents),
			CustomEvents:    toJSONEvents(s.CustomEvents),
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// JSONParser parses the structured form back into a Recording.
type JSONParser struct{}

func (p *JSONParser) Parse(data []byte) (*recording.Recording, error) {
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse recording JSON: %w", err)
	}
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported recording format version %d", doc.Version)
	}

	globals, err := fromJSONEvents(doc.CustomEvents, "customEvents")
	if err != nil {
		return nil, err
	}

	subjects := make([]*recording.SubjectRecording, 0, len(doc.Subjects))
	for _, js := range doc.Subjects {
		section := fmt.Sprintf("subjects[%d].customEvents", js.ID)
		events, err := fromJSONEvents(js.CustomEvents, section)
		if err != nil {
			return nil, err
		}
		lifecycle, err := fromJSONLifecycles(js.LifecycleEvents, js.ID)
		if err != nil {
			return nil, err
		}
		meta := js.Metadata
		if meta == nil {
			meta = map[string]string{}
		}
		subjects = append(subjects, &recording.SubjectRecording{
			SubjectID:       js.ID,
			Name:            js.Name,
			Metadata:        meta,
			Positions:       fromJSONSamples(js.Positions),
			Rotations:       fromJSONSamples(js.Rotations),
			LifecycleEvents: lifecycle,
			CustomEvents:    events,
		})
	}

	return recording.New(doc.Name, doc.Metadata, subjects, globals), nil
}

func toJSONSamples(captures []recording.VectorCapture) []jsonSample {
	out := make([]jsonSample, len(captures))
	for i, c := range captures {
		out[i] = jsonSample{Time: c.Time, X: c.Value.X, Y: c.Value.Y, Z: c.Value.Z}
	}
	return out
}

func fromJSONSamples(samples []jsonSample) []recording.VectorCapture {
	out := make([]recording.VectorCapture, len(samples))
	for i, s := range samples {
		out[i] = recording.VectorCapture{Time: s.Time, Value: geom.Vec3{X: s.X, Y: s.Y, Z: s.Z}}
	}
	return out
}

func toJSONLifecycles(captures []recording.LifecycleCapture) []jsonLifecycle {
	out := make([]jsonLifecycle, len(captures))
	for i, c := range captures {
		out[i] = jsonLifecycle{Time: c.Time, Event: c.Event.String()}
	}
	return out
}

func fromJSONLifecycles(events []jsonLifecycle, subjectID int32) ([]recording.LifecycleCapture, error) {
	out := make([]recording.LifecycleCapture, len(events))
	for i, e := range events {
		ev, ok := recording.ParseLifecycleEvent(e.Event)
		if !ok {
			return nil, fmt.Errorf("subject %d: unknown lifecycle event %q", subjectID, e.Event)
		}
		out[i] = recording.LifecycleCapture{Time: e.Time, Event: ev}
	}
	return out, nil
}

func toJSONEvents(events []recording.CustomEventCapture) []jsonEvent {
	out := make([]jsonEvent, len(events))
	for i, e := range events {
		keys := make([]string, 0, len(e.Contents))
		for k := range e.Contents {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make([]string, len(keys))
		for j, k := range keys {
			values[j] = e.Contents[k]
		}
		out[i] = jsonEvent{Time: e.Time, Name: e.Name, Keys: keys, Values: values}
	}
	return out
}

func fromJSONEvents(events []jsonEvent, section string) ([]recording.CustomEventCapture, error) {
	out := make([]recording.CustomEventCapture, len(events))
	for i, e := range events {
		if len(e.Keys) != len(e.Values) {
			return nil, &ConsistencyError{
				Section: section,
				Detail:  fmt.Sprintf("event %q at index %d has %d keys but %d values", e.Name, i, len(e.Keys), len(e.Values)),
			}
		}
		contents := make(map[string]string, len(e.Keys))
		for j, k := range e.Keys {
			contents[k] = e.Values[j]
		}
		out[i] = recording.CustomEventCapture{Time: e.Time, Name: e.Name, Contents: contents}
	}
	return out, nil
}
