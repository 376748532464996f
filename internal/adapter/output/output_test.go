package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/popkit/internal/alert"
	"github.com/jmylchreest/popkit/internal/model"
)

func newTestRenderer(t *testing.T, format FormatType, opts ...Option) (*Renderer, *bytes.Buffer) {
	t.Helper()
	f, err := NewFormatter(format, FormatterOptions{})
	require.NoError(t, err)
	var buf bytes.Buffer
	return NewRenderer(&buf, f, opts...), &buf
}

func TestParseFormat(t *testing.T) {
	for _, f := range ValidFormats() {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPlain, got)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestParseAnswer(t *testing.T) {
	for _, s := range []string{"", "yes", "no"} {
		_, err := ParseAnswer(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseAnswer("maybe")
	assert.Error(t, err)
}

func TestPlain_Toast(t *testing.T) {
	r, buf := newTestRenderer(t, FormatPlain)
	f := alert.New(r)

	require.NoError(t, f.ShowSuccess(context.Background(), "Operation completed"))
	assert.Equal(t, "[success] Success: Operation completed (toast, closes after 3s)\n", buf.String())
}

func TestPlain_Confirm(t *testing.T) {
	r, buf := newTestRenderer(t, FormatPlain)
	f := alert.New(r)

	d, err := f.ShowConfirm(context.Background(), "Delete item?", "This cannot be undone")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[confirmation] Delete item?: This cannot be undone (modal) [Yes/No]", lines[0])
	assert.Equal(t, "result "+d.ID()+": dismissed (close)", lines[1])

	out, ok := d.Outcome()
	require.True(t, ok)
	assert.Equal(t, model.Dismissed(model.DismissReasonClose), out)
}

func TestAssume(t *testing.T) {
	tests := []struct {
		name   string
		assume Answer
		expect model.Outcome
	}{
		{"none", AnswerNone, model.Dismissed(model.DismissReasonClose)},
		{"yes", AnswerYes, model.Confirmed()},
		{"no", AnswerNo, model.Cancelled()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRenderer(t, FormatPlain, WithAssume(tt.assume))
			d, err := alert.New(r).ShowConfirm(context.Background(), "t", "x")
			require.NoError(t, err)
			out, ok := d.Outcome()
			require.True(t, ok)
			assert.Equal(t, tt.expect, out)
		})
	}
}

func TestAssumeNo_CustomAlertHasNoCancel(t *testing.T) {
	r, _ := newTestRenderer(t, FormatPlain, WithAssume(AnswerNo))
	d, err := alert.New(r).ShowCustomAlert(context.Background(), "Heads up", "Read this", model.IconInfo)
	require.NoError(t, err)
	out, _ := d.Outcome()
	assert.Equal(t, model.Dismissed(model.DismissReasonClose), out)
}

func TestLoading_PendingUntilClosed(t *testing.T) {
	r, buf := newTestRenderer(t, FormatPlain)
	req := alert.DefaultPolicy().LoadingRequest("")

	d, err := r.Present(context.Background(), req)
	require.NoError(t, err)
	_, done := d.Outcome()
	assert.False(t, done)
	assert.Contains(t, buf.String(), "[loading] Loading... (loading)\n")

	require.NoError(t, r.Dismiss(context.Background()))
	out, done := d.Outcome()
	require.True(t, done)
	assert.Equal(t, model.Dismissed(model.DismissReasonClose), out)
	assert.True(t, strings.HasSuffix(buf.String(), "closed\n"))
}

func TestLoading_Replaced(t *testing.T) {
	r, _ := newTestRenderer(t, FormatPlain)
	p := alert.DefaultPolicy()

	d, err := r.Present(context.Background(), p.LoadingRequest("Saving"))
	require.NoError(t, err)
	_, err = r.Present(context.Background(), p.InfoRequest("Saved"))
	require.NoError(t, err)

	out, ok := d.Outcome()
	require.True(t, ok)
	assert.Equal(t, model.Dismissed(model.DismissReasonReplaced), out)
}

func TestJSON(t *testing.T) {
	r, buf := newTestRenderer(t, FormatJSON, WithAssume(AnswerYes))
	_, err := alert.New(r).ShowConfirm(context.Background(), "Proceed?", "")
	require.NoError(t, err)

	dec := json.NewDecoder(buf)
	var present, outcome map[string]any
	require.NoError(t, dec.Decode(&present))
	require.NoError(t, dec.Decode(&outcome))

	assert.Equal(t, "present", present["event"])
	req := present["request"].(map[string]any)
	assert.Equal(t, "40%", req["width"])
	assert.Equal(t, "#3085d6", req["confirmButtonColor"])
	assert.Equal(t, "#d33", req["cancelButtonColor"])
	assert.Equal(t, map[string]any{"popup": "swal2-large"}, req["customClass"])

	assert.Equal(t, "outcome", outcome["event"])
	assert.Equal(t, map[string]any{"choice": "confirmed"}, outcome["outcome"])
}

func TestYAML(t *testing.T) {
	r, buf := newTestRenderer(t, FormatYAML)
	require.NoError(t, alert.New(r).ShowError(context.Background(), "Disk full"))
	require.NoError(t, r.Dismiss(context.Background()))

	dec := yaml.NewDecoder(buf)
	var first, second Event
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))

	assert.Equal(t, EventPresent, first.Event)
	require.NotNil(t, first.Request)
	assert.Equal(t, model.KindError, first.Request.Kind)
	assert.Equal(t, "Disk full", first.Request.Text)
	assert.Equal(t, 3000, first.Request.Timer)
	assert.Equal(t, EventClose, second.Event)
}

func TestIDs(t *testing.T) {
	r, buf := newTestRenderer(t, FormatIDs)
	req := alert.DefaultPolicy().InfoRequest("hello")

	_, err := r.Present(context.Background(), req)
	require.NoError(t, err)
	require.NoError(t, r.Dismiss(context.Background()))

	assert.Equal(t, req.ID+"\n", buf.String())
}

func TestPlainTemplate(t *testing.T) {
	f, err := NewFormatter(FormatPlain, FormatterOptions{
		Template: `{{.Event}}{{with .Request}} {{upper .Title}} {{truncate 8 .Text}}{{end}}`,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Preview(&buf, f, alert.DefaultPolicy().WarningRequest("battery is low")))
	assert.Equal(t, "preview WARNING batte...\n", buf.String())
}

func TestPlainTemplate_Invalid(t *testing.T) {
	_, err := NewFormatter(FormatPlain, FormatterOptions{Template: "{{.Event"})
	assert.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, assert.AnError }

func TestWriteErrors(t *testing.T) {
	f, err := NewFormatter(FormatPlain, FormatterOptions{})
	require.NoError(t, err)
	r := NewRenderer(failingWriter{}, f)

	_, err = r.Present(context.Background(), alert.DefaultPolicy().InfoRequest("x"))
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorIs(t, r.Dismiss(context.Background()), assert.AnError)
}
