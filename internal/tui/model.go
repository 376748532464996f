// Package tui renders alerts in the terminal with Bubble Tea.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/popkit/internal/config"
	"github.com/jmylchreest/popkit/internal/model"
)

const (
	tickInterval = 100 * time.Millisecond
	minBoxWidth  = 24
)

// Button focus positions.
const (
	focusConfirm = iota
	focusCancel
)

// tickMsg drives the toast countdown.
type tickMsg time.Time

// closeMsg ends the alert from outside the program.
type closeMsg struct {
	outcome model.Outcome
}

// Model is the Bubble Tea model for a single alert.
type Model struct {
	req  *model.Request
	keys KeyMap
	help help.Model

	progress progress.Model
	spinner  spinner.Model

	width int
	focus int

	now      func() time.Time
	deadline time.Time

	outcome model.Outcome
	done    bool
}

// NewModel creates the model for req.
func NewModel(req *model.Request) Model {
	return newModel(req, time.Now)
}

func newModel(req *model.Request, now func() time.Time) Model {
	m := Model{
		req:  req,
		keys: DefaultKeyMap().forRequest(req.ShowConfirmButton, req.ShowCancelButton, req.Dismissible()),
		help: help.New(),
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithoutPercentage(),
		),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		now:     now,
	}
	if req.Timer > 0 {
		m.deadline = now().Add(req.TimerDuration())
	}
	return m
}

// Init starts the countdown and spinner.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.req.Timer > 0 {
		cmds = append(cmds, tick())
	}
	if m.req.ShowLoading {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(m.boxWidth()-4, 1)
		return m, nil

	case tickMsg:
		if m.req.Timer <= 0 {
			return m, nil
		}
		if m.remaining() <= 0 {
			return m.finish(model.Dismissed(model.DismissReasonTimer))
		}
		return m, tick()

	case closeMsg:
		return m.finish(msg.outcome)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.finish(model.Dismissed(model.DismissReasonClose))

	case key.Matches(msg, m.keys.Dismiss):
		return m.finish(model.Dismissed(model.DismissReasonEsc))

	case key.Matches(msg, m.keys.Confirm):
		return m.finish(model.Confirmed())

	case key.Matches(msg, m.keys.Cancel):
		return m.finish(model.Cancelled())

	case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Prev):
		if m.focus == focusConfirm {
			m.focus = focusCancel
		} else {
			m.focus = focusConfirm
		}
		return m, nil

	case key.Matches(msg, m.keys.Activate):
		if m.focus == focusCancel && m.req.ShowCancelButton {
			return m.finish(model.Cancelled())
		}
		return m.finish(model.Confirmed())
	}

	return m, nil
}

func (m Model) finish(outcome model.Outcome) (tea.Model, tea.Cmd) {
	m.outcome = outcome
	m.done = true
	return m, tea.Quit
}

// Outcome returns how the alert ended, once it has.
func (m Model) Outcome() (model.Outcome, bool) {
	return m.outcome, m.done
}

func (m Model) remaining() time.Duration {
	return m.deadline.Sub(m.now())
}

// boxWidth resolves the request width against the terminal width.
func (m Model) boxWidth() int {
	w, err := config.ParseWidth(m.req.Width)
	if err != nil {
		w = config.Width{Value: 40, Percent: true}
	}
	if m.width == 0 {
		// Size unknown until the first WindowSizeMsg
		return max(int(w.Value), minBoxWidth)
	}
	return w.Resolve(m.width, minBoxWidth)
}

// View renders the alert.
func (m Model) View() string {
	if m.done {
		return ""
	}

	width := m.boxWidth()
	inner := max(width-4, 1)

	titleStyle := lipgloss.NewStyle().Bold(true)
	textStyle := lipgloss.NewStyle().Width(inner)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	var b strings.Builder

	header := titleStyle.Render(m.req.Title)
	if m.req.ShowLoading {
		header = m.spinner.View() + " " + header
	} else if glyph := iconGlyph(m.req.Icon); glyph != "" {
		header = iconStyle(m.req.Icon).Render(glyph) + " " + header
	}
	b.WriteString(header)

	if m.req.Text != "" {
		b.WriteString("\n\n")
		b.WriteString(textStyle.Render(m.req.Text))
	}

	if m.req.Timer > 0 {
		remaining := max(m.remaining(), 0)
		pct := float64(remaining) / float64(m.req.TimerDuration())
		b.WriteString("\n\n")
		if m.req.TimerProgressBar {
			b.WriteString(m.progress.ViewAs(pct))
			b.WriteString("\n")
		}
		b.WriteString(mutedStyle.Render("closes " + humanize.RelTime(m.deadline, m.now(), "ago", "from now")))
	}

	if buttons := m.viewButtons(); buttons != "" {
		b.WriteString("\n\n")
		b.WriteString(buttons)
	}

	if m.req.Interactive() {
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(iconColor(m.req.Icon)).
		Padding(0, 1).
		Width(width - 2).
		Render(b.String())

	if m.width > 0 {
		box = lipgloss.PlaceHorizontal(m.width, horizontalPosition(m.req.Position), box)
	}
	return box + "\n"
}

func (m Model) viewButtons() string {
	var buttons []string
	if m.req.ShowConfirmButton {
		buttons = append(buttons, renderButton(m.req.ConfirmButtonText, m.req.ConfirmButtonColor, m.focus == focusConfirm))
	}
	if m.req.ShowCancelButton {
		buttons = append(buttons, renderButton(m.req.CancelButtonText, m.req.CancelButtonColor, m.focus == focusCancel))
	}
	return strings.Join(buttons, "  ")
}

func renderButton(label, color string, focused bool) string {
	style := lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("15"))
	if color != "" {
		style = style.Background(lipgloss.Color(color))
	}
	if focused {
		style = style.Bold(true).Underline(true)
	}
	return style.Render(label)
}

func iconGlyph(icon model.Icon) string {
	switch icon {
	case model.IconSuccess:
		return "✔"
	case model.IconError:
		return "✖"
	case model.IconWarning:
		return "!"
	case model.IconInfo:
		return "i"
	case model.IconQuestion:
		return "?"
	case "":
		return ""
	default:
		return "•"
	}
}

func iconColor(icon model.Icon) lipgloss.Color {
	switch icon {
	case model.IconSuccess:
		return lipgloss.Color("#a5dc86")
	case model.IconError:
		return lipgloss.Color("#f27474")
	case model.IconWarning:
		return lipgloss.Color("#f8bb86")
	case model.IconQuestion:
		return lipgloss.Color("#87adbd")
	default:
		return lipgloss.Color("#3fc3ee")
	}
}

func iconStyle(icon model.Icon) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(iconColor(icon))
}

func horizontalPosition(p model.Position) lipgloss.Position {
	switch p {
	case model.PositionTopStart, model.PositionBottomStart:
		return lipgloss.Left
	case model.PositionTopEnd, model.PositionBottomEnd:
		return lipgloss.Right
	default:
		return lipgloss.Center
	}
}
