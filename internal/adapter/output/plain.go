package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/jmylchreest/popkit/internal/model"
)

// PlainFormatter writes human-readable lines.
type PlainFormatter struct {
	template *template.Template
}

// NewPlainFormatter creates a plain formatter. A custom template is
// executed with the Event as data.
func NewPlainFormatter(opts FormatterOptions) (*PlainFormatter, error) {
	f := &PlainFormatter{}
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err != nil {
			return nil, fmt.Errorf("invalid template: %w", err)
		}
		f.template = tmpl
	}
	return f, nil
}

// Format writes e as one or two lines of text.
func (f *PlainFormatter) Format(w io.Writer, e Event) error {
	if f.template != nil {
		var sb strings.Builder
		if err := f.template.Execute(&sb, e); err != nil {
			return err
		}
		line := sb.String()
		if !strings.HasSuffix(line, "\n") {
			line += "\n"
		}
		_, err := io.WriteString(w, line)
		return err
	}

	var sb strings.Builder
	switch e.Event {
	case EventPresent, EventPreview:
		writeRequest(&sb, e.Request)
	case EventOutcome:
		fmt.Fprintf(&sb, "result %s: %s\n", e.ID, describeOutcome(e.Outcome))
	case EventClose:
		sb.WriteString("closed\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeRequest(sb *strings.Builder, r *model.Request) {
	if r == nil {
		return
	}

	fmt.Fprintf(sb, "[%s] %s", r.Kind, r.Title)
	if r.Text != "" {
		fmt.Fprintf(sb, ": %s", strings.ReplaceAll(r.Text, "\n", " "))
	}

	var attrs []string
	attrs = append(attrs, string(r.Mode))
	if r.Timer > 0 {
		attrs = append(attrs, "closes after "+r.TimerDuration().Round(time.Millisecond).String())
	}
	if r.ShowLoading && r.Mode != model.ModeLoading {
		attrs = append(attrs, "loading")
	}
	fmt.Fprintf(sb, " (%s)", strings.Join(attrs, ", "))

	var buttons []string
	if r.ShowConfirmButton {
		buttons = append(buttons, r.ConfirmButtonText)
	}
	if r.ShowCancelButton {
		buttons = append(buttons, r.CancelButtonText)
	}
	if len(buttons) > 0 {
		fmt.Fprintf(sb, " [%s]", strings.Join(buttons, "/"))
	}
	sb.WriteString("\n")
}

func describeOutcome(o *model.Outcome) string {
	if o == nil {
		return "pending"
	}
	if o.Reason == "" || o.Choice == model.ChoiceCancelled {
		return string(o.Choice)
	}
	return fmt.Sprintf("%s (%s)", o.Choice, o.Reason)
}

// templateFuncs returns helper functions for custom templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"truncate": func(n int, s string) string {
			if n <= 3 || len(s) <= n {
				return s
			}
			return s[:n-3] + "..."
		},
		"outcome": describeOutcome,
	}
}
