package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pfcm/cvsynth"
	"github.com/pfcm/cvsynth/config"
	"github.com/pfcm/cvsynth/internal/buffer"
	"github.com/pfcm/cvsynth/voice"
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
	heldStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fff"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	onStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0c0"))
)

// edit changes the running config from the tick loop, returning a note for
// the status panel.
type edit func(cfg *config.Config) string

// statusMsg is a snapshot of the controller, rendered on the tick loop.
type statusMsg struct {
	line string
	cfg  config.Config
	note string
}

type model struct {
	edits chan<- edit
	path  string

	status   statusMsg
	quitting bool
}

func newModel(edits chan<- edit, path string) model {
	return model{edits: edits, path: path}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		var e edit
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "m":
			e = func(cfg *config.Config) string {
				cfg.Mode = (cfg.Mode + 1) % (voice.ModePara + 1)
				return fmt.Sprintf("mode %v", cfg.Mode)
			}
		case "p":
			e = func(cfg *config.Config) string {
				cfg.Portamento = !cfg.Portamento
				return fmt.Sprintf("portamento %v", onOff(cfg.Portamento))
			}
		case "d":
			e = func(cfg *config.Config) string {
				cfg.Detune = !cfg.Detune
				return fmt.Sprintf("detune %v", onOff(cfg.Detune))
			}
		case "s":
			e = func(cfg *config.Config) string {
				cfg.Solo = !cfg.Solo
				return fmt.Sprintf("solo %v", onOff(cfg.Solo))
			}
		case "f":
			e = func(cfg *config.Config) string {
				cfg.Fill = (cfg.Fill + 1) % (voice.FillNone + 1)
				return fmt.Sprintf("fill %v", cfg.Fill)
			}
		case "b":
			e = func(cfg *config.Config) string {
				if cfg.BendMode == config.BendContinuous {
					cfg.BendMode = config.BendOnNoteOn
				} else {
					cfg.BendMode = config.BendContinuous
				}
				return fmt.Sprintf("bend %v", cfg.BendMode)
			}
		case "w":
			path := m.path
			e = func(cfg *config.Config) string {
				if err := cfg.Save(path); err != nil {
					return err.Error()
				}
				return "saved " + path
			}
		}
		if e != nil {
			// Never hold up the UI on a busy loop.
			select {
			case m.edits <- e:
			default:
			}
		}
	case statusMsg:
		if msg.note == "" {
			msg.note = m.status.note
		}
		m.status = msg
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	cfg := m.status.cfg
	var b strings.Builder
	b.WriteString(m.status.line)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s  %s %s  %s %s  %s %v  %s %v\n",
		statusStyle.Render("portamento"), onOff(cfg.Portamento),
		statusStyle.Render("detune"), onOff(cfg.Detune),
		statusStyle.Render("solo"), onOff(cfg.Solo),
		statusStyle.Render("fill"), cfg.Fill,
		statusStyle.Render("bend"), cfg.BendMode,
	)
	b.WriteString(dimStyle.Render("m mode  p portamento  d detune  s solo  f fill  b bend  w save  q quit"))
	b.WriteString("\n")
	if n := m.status.note; n != "" {
		b.WriteString(statusStyle.Render(n))
		b.WriteString("\n")
	}
	return b.String()
}

func onOff(b bool) string {
	if b {
		return onStyle.Render("on")
	}
	return dimStyle.Render("off")
}

// statusLine renders the voices and envelope of c.
func statusLine(c *cvsynth.Controller, ring *buffer.Ring, since time.Duration) string {
	a := c.Allocator()
	now := uint32(since.Microseconds())
	var vs []string
	for v := 0; v < a.Voices(); v++ {
		s := a.Voice(v)
		switch {
		case s.Held:
			vs = append(vs, heldStyle.Render(fmt.Sprintf("%3d", s.Note)))
		case s.Sounding:
			vs = append(vs, fmt.Sprintf("%3d", s.Note))
		default:
			vs = append(vs, dimStyle.Render("  -"))
		}
	}
	e := c.Envelope()
	return fmt.Sprintf("%s %-4v [%s] %s %-2v %4d %s",
		statusStyle.Render(fmt.Sprintf("%8.2f", since.Seconds())),
		c.Mode(),
		strings.Join(vs, " "),
		statusStyle.Render("env"),
		e.Phase(now),
		e.Sample(now),
		statusStyle.Render(fmt.Sprintf("dropped %d", ring.Dropped())),
	)
}
