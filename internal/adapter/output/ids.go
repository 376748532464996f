package output

import (
	"fmt"
	"io"
)

// IDsFormatter writes only the request ID of presented or previewed
// records, one per line. Useful for piping into other tools.
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes the request ID, ignoring other events.
func (f *IDsFormatter) Format(w io.Writer, e Event) error {
	if e.Request == nil {
		return nil
	}
	_, err := fmt.Fprintln(w, e.Request.ID)
	return err
}
