// Package output is the print backend: every popup record is written to a
// stream instead of being shown.
package output

import (
	"fmt"
	"io"
	"slices"

	"github.com/jmylchreest/popkit/internal/model"
)

// EventType is the kind of line the print backend writes.
type EventType string

const (
	EventPresent EventType = "present"
	EventOutcome EventType = "outcome"
	EventClose   EventType = "close"
	EventPreview EventType = "preview"
)

// Event is one record written by the print backend.
type Event struct {
	Event   EventType      `json:"event" yaml:"event"`
	Request *model.Request `json:"request,omitempty" yaml:"request,omitempty"`
	ID      string         `json:"id,omitempty" yaml:"id,omitempty"`
	Outcome *model.Outcome `json:"outcome,omitempty" yaml:"outcome,omitempty"`
}

// Formatter writes events.
type Formatter interface {
	Format(w io.Writer, e Event) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatPlain FormatType = "plain"
	FormatIDs   FormatType = "ids"
)

// ValidFormats returns the accepted format names.
func ValidFormats() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML, FormatIDs}
}

// ParseFormat validates a format name. Empty selects plain.
func ParseFormat(s string) (FormatType, error) {
	if s == "" {
		return FormatPlain, nil
	}
	f := FormatType(s)
	if !slices.Contains(ValidFormats(), f) {
		return "", fmt.Errorf("invalid format %q, must be one of: %v", s, ValidFormats())
	}
	return f, nil
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template string // text/template for plain output, executed per event
	Indent   bool   // indent JSON
}

// NewFormatter creates a formatter for the specified format type.
// Unknown formats fall back to plain.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatIDs:
		return NewIDsFormatter(), nil
	default:
		return NewPlainFormatter(opts)
	}
}
