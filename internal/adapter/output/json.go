package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes one JSON object per event.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes e as JSON followed by a newline.
func (f *JSONFormatter) Format(w io.Writer, e Event) error {
	encoder := json.NewEncoder(w)
	if f.opts.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(e)
}
