package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popkit/internal/alert"
	"github.com/jmylchreest/popkit/internal/model"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestModel_ConfirmKeys(t *testing.T) {
	p := alert.DefaultPolicy()

	tests := []struct {
		name   string
		keys   []tea.KeyMsg
		expect model.Outcome
	}{
		{"enter confirms", []tea.KeyMsg{{Type: tea.KeyEnter}}, model.Confirmed()},
		{"y confirms", []tea.KeyMsg{keyRunes("y")}, model.Confirmed()},
		{"n cancels", []tea.KeyMsg{keyRunes("n")}, model.Cancelled()},
		{"tab then enter cancels", []tea.KeyMsg{{Type: tea.KeyTab}, {Type: tea.KeyEnter}}, model.Cancelled()},
		{"tab twice then enter confirms", []tea.KeyMsg{{Type: tea.KeyTab}, {Type: tea.KeyTab}, {Type: tea.KeyEnter}}, model.Confirmed()},
		{"esc dismisses", []tea.KeyMsg{{Type: tea.KeyEsc}}, model.Dismissed(model.DismissReasonEsc)},
		{"ctrl+c closes", []tea.KeyMsg{{Type: tea.KeyCtrlC}}, model.Dismissed(model.DismissReasonClose)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(p.ConfirmRequest("Delete?", "This cannot be undone"))
			for _, k := range tt.keys {
				m, _ = update(t, m, k)
			}

			out, done := m.Outcome()
			require.True(t, done)
			assert.Equal(t, tt.expect, out)
		})
	}
}

func TestModel_CustomAlertIgnoresCancel(t *testing.T) {
	m := NewModel(alert.DefaultPolicy().CustomRequest("Heads up", "", ""))

	m, _ = update(t, m, keyRunes("n"))
	_, done := m.Outcome()
	assert.False(t, done, "no cancel button")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	out, done := m.Outcome()
	require.True(t, done)
	assert.Equal(t, model.Confirmed(), out)
}

func TestModel_LoadingIgnoresEsc(t *testing.T) {
	m := NewModel(alert.DefaultPolicy().LoadingRequest(""))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	_, done := m.Outcome()
	assert.False(t, done)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	out, done := m.Outcome()
	require.True(t, done)
	assert.Equal(t, model.Dismissed(model.DismissReasonClose), out)
}

func TestModel_ToastTimer(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := newModel(alert.DefaultPolicy().SuccessRequest("Saved"), clock.now)

	clock.advance(time.Second)
	m, cmd := update(t, m, tickMsg(clock.t))
	assert.NotNil(t, cmd, "keeps ticking")
	_, done := m.Outcome()
	assert.False(t, done)

	clock.advance(2 * time.Second)
	m, _ = update(t, m, tickMsg(clock.t))
	out, done := m.Outcome()
	require.True(t, done)
	assert.Equal(t, model.Dismissed(model.DismissReasonTimer), out)
}

func TestModel_CloseMsg(t *testing.T) {
	m := NewModel(alert.DefaultPolicy().ConfirmRequest("x", ""))

	m, cmd := update(t, m, closeMsg{outcome: model.Dismissed(model.DismissReasonReplaced)})
	require.NotNil(t, cmd)

	out, done := m.Outcome()
	require.True(t, done)
	assert.Equal(t, model.Dismissed(model.DismissReasonReplaced), out)

	// Messages after the end are ignored
	m, _ = update(t, m, keyRunes("y"))
	out, _ = m.Outcome()
	assert.Equal(t, model.ChoiceDismissed, out.Choice)
}

func TestModel_ViewToast(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := newModel(alert.DefaultPolicy().SuccessRequest("Saved"), clock.now)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	assert.Contains(t, view, "Success")
	assert.Contains(t, view, "Saved")
	assert.Contains(t, view, "✔")
	assert.Contains(t, view, "closes 3 seconds from now")
	assert.NotContains(t, view, "Yes")
}

func TestModel_ViewConfirm(t *testing.T) {
	m := NewModel(alert.DefaultPolicy().ConfirmRequest("Delete?", "This cannot be undone",
		alert.WithConfirmLabel("Delete"), alert.WithCancelLabel("Keep")))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})

	view := m.View()
	assert.Contains(t, view, "Delete?")
	assert.Contains(t, view, "This cannot be undone")
	assert.Contains(t, view, "Delete")
	assert.Contains(t, view, "Keep")
	assert.NotContains(t, view, "closes")
}

func TestModel_ViewLoading(t *testing.T) {
	m := NewModel(alert.DefaultPolicy().LoadingRequest(""))
	assert.Contains(t, m.View(), "Loading...")
	assert.NotNil(t, m.Init(), "spinner ticks")
}

func TestModel_BoxWidth(t *testing.T) {
	req := alert.DefaultPolicy().InfoRequest("x")
	m := NewModel(req)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 40})
	assert.Equal(t, 80, m.boxWidth())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 40})
	assert.Equal(t, minBoxWidth, m.boxWidth())

	req.Width = "60"
	m = NewModel(req)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 40})
	assert.Equal(t, 60, m.boxWidth())

	req.Width = "bogus"
	m = NewModel(req)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 40, m.boxWidth(), "falls back to 40%")
}

func TestIconGlyph(t *testing.T) {
	assert.Equal(t, "✔", iconGlyph(model.IconSuccess))
	assert.Equal(t, "✖", iconGlyph(model.IconError))
	assert.Equal(t, "?", iconGlyph(model.IconQuestion))
	assert.Equal(t, "•", iconGlyph("rocket"))
	assert.Empty(t, iconGlyph(""))
}
