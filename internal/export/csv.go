package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fakeyudi/rewind/internal/geom"
	"github.com/fakeyudi/rewind/internal/recording"
)

// Page names of the tabular form, in output order.
const (
	pageSubjects   = "Subjects"
	pageMetadata   = "MetaData"
	pageEvents     = "CustomEvents"
	pagePositions  = "PositionData"
	pageRotations  = "RotationData"
	pageLifecycles = "LifeCycleEvents"
)

const versionField = "rewind-recording-version"

// CSVRenderer renders a Recording as six named CSV pages in one document.
// Each page starts with a [PageName] marker row followed by its header row.
// The SubjectID column is empty for rows that belong to the recording as a
// whole rather than to one subject.
type CSVRenderer struct{}

func (r *CSVRenderer) Render(rec *recording.Recording) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	write := func(record ...string) {
		// csv.Writer defers errors to Flush; checked once at the end.
		_ = w.Write(record)
	}

	write(versionField, strconv.Itoa(FormatVersion))
	write("Name", rec.Name)

	write("[" + pageSubjects + "]")
	write("ID", "Name")
	for _, s := range rec.Subjects {
		write(formatID(s.SubjectID), s.Name)
	}

	write("[" + pageMetadata + "]")
	write("SubjectID", "Key", "Value")
	for _, k := range sortedKeys(rec.Metadata) {
		write("", k, rec.Metadata[k])
	}
	for _, s := range rec.Subjects {
		for _, k := range sortedKeys(s.Metadata) {
			write(formatID(s.SubjectID), k, s.Metadata[k])
		}
	}

	write("[" + pageEvents + "]")
	write("SubjectID", "Index", "Time", "Name", "Key", "Value")
	writeEvents(write, "", rec.GlobalEvents)
	for _, s := range rec.Subjects {
		writeEvents(write, formatID(s.SubjectID), s.CustomEvents)
	}

	write("[" + pagePositions + "]")
	write("SubjectID", "Time", "X", "Y", "Z")
	for _, s := range rec.Subjects {
		writeSamples(write, formatID(s.SubjectID), s.Positions)
	}

	write("[" + pageRotations + "]")
	write("SubjectID", "Time", "X", "Y", "Z")
	for _, s := range rec.Subjects {
		writeSamples(write, formatID(s.SubjectID), s.Rotations)
	}

	write("[" + pageLifecycles + "]")
	write("SubjectID", "Time", "Event")
	for _, s := range rec.Subjects {
		for _, lc := range s.LifecycleEvents {
			write(formatID(s.SubjectID), formatFloat(lc.Time), lc.Event.String())
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("render recording CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSamples(write func(...string), subjectID string, samples []recording.VectorCapture) {
	for _, c := range samples {
		write(subjectID, formatFloat(c.Time), formatFloat(c.Value.X), formatFloat(c.Value.Y), formatFloat(c.Value.Z))
	}
}

// writeEvents emits one row per key/value pair; an event with no contents
// still gets one row with empty Key and Value columns. Index groups rows of
// the same event back together on load.
func writeEvents(write func(...string), subjectID string, events []recording.CustomEventCapture) {
	for i, e := range events {
		idx := strconv.Itoa(i)
		keys := sortedKeys(e.Contents)
		if len(keys) == 0 {
			write(subjectID, idx, formatFloat(e.Time), e.Name, "", "")
			continue
		}
		for _, k := range keys {
			write(subjectID, idx, formatFloat(e.Time), e.Name, k, e.Contents[k])
		}
	}
}

// CSVParser parses the tabular form back into a Recording.
type CSVParser struct{}

type csvSubjectData struct {
	subject *recording.SubjectRecording
	events  map[int]*recording.CustomEventCapture
	order   []int
}

func (p *CSVParser) Parse(data []byte) (*recording.Recording, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse recording CSV: %w", err)
	}
	if len(records) < 2 || len(records[0]) < 2 || records[0][0] != versionField {
		return nil, fmt.Errorf("not a recording document: missing version sentinel")
	}
	version, err := strconv.Atoi(records[0][1])
	if err != nil || version != FormatVersion {
		return nil, fmt.Errorf("unsupported recording format version %q", records[0][1])
	}
	if len(records[1]) < 2 || records[1][0] != "Name" {
		return nil, fmt.Errorf("not a recording document: missing name row")
	}
	name := records[1][1]

	metadata := map[string]string{}
	var order []int32
	subjects := map[int32]*csvSubjectData{}
	globalEvents := map[int]*recording.CustomEventCapture{}
	var globalOrder []int

	lookup := func(id int32) *csvSubjectData {
		if d, ok := subjects[id]; ok {
			return d
		}
		d := &csvSubjectData{
			subject: &recording.SubjectRecording{SubjectID: id, Metadata: map[string]string{}},
			events:  map[int]*recording.CustomEventCapture{},
		}
		subjects[id] = d
		order = append(order, id)
		return d
	}

	page := ""
	expectHeader := false
	for line, rec := range records[2:] {
		if len(rec) == 1 && strings.HasPrefix(rec[0], "[") && strings.HasSuffix(rec[0], "]") {
			page = rec[0][1 : len(rec[0])-1]
			expectHeader = true
			continue
		}
		if expectHeader {
			// column header row
			expectHeader = false
			continue
		}

		rowErr := func(err error) error {
			return fmt.Errorf("page %s row %d: %w", page, line+3, err)
		}

		switch page {
		case pageSubjects:
			if len(rec) < 2 {
				return nil, rowErr(fmt.Errorf("want 2 columns, got %d", len(rec)))
			}
			id, err := parseID(rec[0])
			if err != nil {
				return nil, rowErr(err)
			}
			lookup(id).subject.Name = rec[1]

		case pageMetadata:
			if len(rec) < 3 {
				return nil, rowErr(fmt.Errorf("want 3 columns, got %d", len(rec)))
			}
			if rec[0] == "" {
				metadata[rec[1]] = rec[2]
				continue
			}
			id, err := parseID(rec[0])
			if err != nil {
				return nil, rowErr(err)
			}
			lookup(id).subject.Metadata[rec[1]] = rec[2]

		case pageEvents:
			if len(rec) < 6 {
				return nil, rowErr(fmt.Errorf("want 6 columns, got %d", len(rec)))
			}
			idx, err := strconv.Atoi(rec[1])
			if err != nil {
				return nil, rowErr(err)
			}
			t, err := strconv.ParseFloat(rec[2], 64)
			if err != nil {
				return nil, rowErr(err)
			}
			events, evOrder := globalEvents, &globalOrder
			if rec[0] != "" {
				id, err := parseID(rec[0])
				if err != nil {
					return nil, rowErr(err)
				}
				d := lookup(id)
				events, evOrder = d.events, &d.order
			}
			ev, ok := events[idx]
			if !ok {
				ev = &recording.CustomEventCapture{Time: t, Name: rec[3], Contents: map[string]string{}}
				events[idx] = ev
				*evOrder = append(*evOrder, idx)
			}
			if rec[4] != "" {
				ev.Contents[rec[4]] = rec[5]
			}

		case pagePositions, pageRotations:
			if len(rec) < 5 {
				return nil, rowErr(fmt.Errorf("want 5 columns, got %d", len(rec)))
			}
			id, err := parseID(rec[0])
			if err != nil {
				return nil, rowErr(err)
			}
			c, err := parseSample(rec)
			if err != nil {
				return nil, rowErr(err)
			}
			s := lookup(id).subject
			if page == pagePositions {
				s.Positions = append(s.Positions, c)
			} else {
				s.Rotations = append(s.Rotations, c)
			}

		case pageLifecycles:
			if len(rec) < 3 {
				return nil, rowErr(fmt.Errorf("want 3 columns, got %d", len(rec)))
			}
			id, err := parseID(rec[0])
			if err != nil {
				return nil, rowErr(err)
			}
			t, err := strconv.ParseFloat(rec[1], 64)
			if err != nil {
				return nil, rowErr(err)
			}
			ev, ok := recording.ParseLifecycleEvent(rec[2])
			if !ok {
				return nil, rowErr(fmt.Errorf("unknown lifecycle event %q", rec[2]))
			}
			s := lookup(id).subject
			s.LifecycleEvents = append(s.LifecycleEvents, recording.LifecycleCapture{Time: t, Event: ev})

		default:
			return nil, fmt.Errorf("row %d outside any known page", line+3)
		}
	}

	subjectList := make([]*recording.SubjectRecording, 0, len(order))
	for _, id := range order {
		d := subjects[id]
		sort.Ints(d.order)
		for _, idx := range d.order {
			d.subject.CustomEvents = append(d.subject.CustomEvents, *d.events[idx])
		}
		subjectList = append(subjectList, d.subject)
	}
	sort.Ints(globalOrder)
	globals := make([]recording.CustomEventCapture, 0, len(globalOrder))
	for _, idx := range globalOrder {
		globals = append(globals, *globalEvents[idx])
	}

	return recording.New(name, metadata, subjectList, globals), nil
}

func parseSample(rec []string) (recording.VectorCapture, error) {
	var vals [4]float64
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return recording.VectorCapture{}, err
		}
		vals[i] = v
	}
	return recording.VectorCapture{
		Time:  vals[0],
		Value: geom.Vec3{X: vals[1], Y: vals[2], Z: vals[3]},
	}, nil
}

func parseID(s string) (int32, error) {
	id, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad subject id %q: %w", s, err)
	}
	return int32(id), nil
}

func formatID(id int32) string {
	return strconv.FormatInt(int64(id), 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
