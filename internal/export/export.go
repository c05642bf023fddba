// Package export converts Recordings to and from their portable forms: a
// structured JSON document and a tabular CSV layout of six named pages.
// Both forms carry a version sentinel that is validated on load.
package export

import "github.com/fakeyudi/rewind/internal/recording"

// FormatVersion is the current on-disk format version for both forms.
const FormatVersion = 1

// Renderer serializes a Recording to bytes.
type Renderer interface {
	Render(rec *recording.Recording) ([]byte, error)
}

// Parser deserializes a Recording from bytes.
type Parser interface {
	Parse(data []byte) (*recording.Recording, error)
}

// ConsistencyError is returned when a document's internal structure
// disagrees with itself, e.g. a custom event whose key and value lists have
// different lengths. Loading aborts.
type ConsistencyError struct {
	Section string
	Detail  string
}

func (e *ConsistencyError) Error() string {
	return "inconsistent recording data in " + e.Section + ": " + e.Detail
}
