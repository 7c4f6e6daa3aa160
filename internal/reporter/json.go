package reporter

import (
	"encoding/json"
	"io"
)

// JSONReporter generates machine-readable JSON documents
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(writer io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		pretty: pretty,
	}
}

// Generate writes v as JSON followed by a newline
func (r *JSONReporter) Generate(v any) error {
	data, err := marshalJSON(v, r.pretty)
	if err != nil {
		return err
	}

	_, err = r.writer.Write(data)
	return err
}

// marshalJSON encodes v with a trailing newline, indented by two spaces
// when pretty is set.
func marshalJSON(v any, pretty bool) ([]byte, error) {
	var data []byte
	var err error

	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}
