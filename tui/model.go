// Package tui is the terminal host: it displays the loaded source text,
// takes colon commands and renders simulation frames in place.
package tui

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/thejezzi/conway/command"
	"github.com/thejezzi/conway/logging"
	"github.com/thejezzi/conway/model"
	"github.com/thejezzi/conway/seed"
	"github.com/thejezzi/conway/session"
	"github.com/thejezzi/conway/utils"
)

type mode int

const (
	// modeView browses the loaded source text.
	modeView mode = iota
	// modeCommand types a colon command over the previous mode.
	modeCommand
	// modeCanvas edits a blank grid cell by cell.
	modeCanvas
	// modeRun shows simulation frames.
	modeRun
)

type frameMsg session.Frame

type stateMsg session.State

// programSink forwards session output into the program's event channel.
// Sends never block; a frame the UI cannot keep up with is superseded by
// the next one anyway.
type programSink struct {
	events chan<- tea.Msg
}

func (s programSink) PublishFrame(f session.Frame) {
	select {
	case s.events <- frameMsg(f):
	default:
	}
}

func (s programSink) PublishState(st session.State) {
	select {
	case s.events <- stateMsg(st):
	default:
	}
}

func awaitEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

// Model is the Bubble Tea model for the terminal host.
type Model struct {
	cfg        utils.Config
	logger     *slog.Logger
	source     []string
	sourceName string

	mode     mode
	prevMode mode
	width    int
	height   int
	surfaceW int
	surfaceH int

	vp     viewport.Model
	input  textinput.Model
	keys   keyMap
	styles styles
	status string

	sess      *session.Session
	sessState session.State
	events    chan tea.Msg
	frame     session.Frame

	canvas *model.Grid
	curX   int
	curY   int

	rng *rand.Rand
}

// New builds the model around the given source text. The surface starts at
// the configured dimensions and follows the terminal after the first
// window size message.
func New(cfg utils.Config, source []string, sourceName string, logger *slog.Logger) Model {
	if logger == nil {
		logger = logging.Discard()
	}

	input := textinput.New()
	input.Prompt = ":"
	input.CharLimit = 64

	vp := viewport.New(cfg.Width, cfg.Height)
	vp.SetContent(strings.Join(source, "\n"))

	return Model{
		cfg:        cfg,
		logger:     logger,
		source:     source,
		sourceName: sourceName,
		mode:       modeView,
		surfaceW:   cfg.Width,
		surfaceH:   cfg.Height,
		vp:         vp,
		input:      input,
		keys:       defaultKeyMap(),
		styles:     defaultStyles(),
		events:     make(chan tea.Msg, 16),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m Model) Init() tea.Cmd {
	return awaitEvent(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.surfaceW = max(1, msg.Width)
		// The last terminal row belongs to the status bar.
		m.surfaceH = max(1, msg.Height-1)
		m.vp.Width = m.surfaceW
		m.vp.Height = m.surfaceH
		m.input.Width = max(16, msg.Width-4)
		return m, nil

	case frameMsg:
		m.frame = session.Frame(msg)
		return m, awaitEvent(m.events)

	case stateMsg:
		m.sessState = session.State(msg)
		return m, awaitEvent(m.events)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == modeView {
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeCommand {
		return m.handleCommandKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.sess != nil {
			_ = m.sess.Stop()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Command):
		m.prevMode = m.mode
		m.mode = modeCommand
		m.status = ""
		m.input.Reset()
		return m, m.input.Focus()
	}

	switch m.mode {
	case modeCanvas:
		return m.handleCanvasKey(msg)
	case modeRun:
		return m.handleRunKey(msg)
	default:
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
}

func (m Model) handleCommandKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		line := m.input.Value()
		m.input.Reset()
		m.input.Blur()
		m.mode = m.prevMode
		m.runCommand(line)
		return m, nil
	case "esc":
		m.input.Reset()
		m.input.Blur()
		m.mode = m.prevMode
		return m, nil
	case "ctrl+c":
		if m.sess != nil {
			_ = m.sess.Stop()
		}
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleCanvasKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.canvas == nil {
		m.mode = modeView
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.curY = max(0, m.curY-1)
	case key.Matches(msg, m.keys.Down):
		m.curY = min(m.canvas.GetHeight()-1, m.curY+1)
	case key.Matches(msg, m.keys.Left):
		m.curX = max(0, m.curX-1)
	case key.Matches(msg, m.keys.Right):
		m.curX = min(m.canvas.GetWidth()-1, m.curX+1)
	case key.Matches(msg, m.keys.Toggle):
		m.canvas.Set(m.curX, m.curY, !m.canvas.Get(m.curX, m.curY))
	case key.Matches(msg, m.keys.Glider):
		m.canvas.AddGlider(m.curX, m.curY)
	case key.Matches(msg, m.keys.Blinker):
		m.canvas.AddOscillator(m.curX, m.curY)
	case key.Matches(msg, m.keys.Start):
		if err := m.startSession(m.canvas); err != nil {
			m.status = err.Error()
		}
	case key.Matches(msg, m.keys.Back):
		m.canvas = nil
		m.mode = modeView
	}
	return m, nil
}

func (m Model) handleRunKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Pause):
		if m.sess == nil {
			return m, nil
		}
		var err error
		if m.sess.State() == session.StatePaused {
			err = m.sess.Resume()
		} else {
			err = m.sess.Pause()
		}
		if err != nil {
			m.status = err.Error()
		}
	}
	return m, nil
}

// runCommand parses and dispatches one colon command, surfacing any error
// on the status line.
func (m *Model) runCommand(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	kind, err := command.Parse(line)
	if err != nil {
		m.status = fmt.Sprintf("unknown command %q (try %s)", strings.TrimSpace(line), strings.Join(command.Names(), ", "))
		return
	}

	m.status = ""
	if err := m.handlers().Dispatch(kind); err != nil {
		m.status = err.Error()
		m.logger.Warn("command failed", "command", kind, "error", err)
	}
}

// handlers binds every command to this model. The bindings mutate the
// model in place, which is safe because Dispatch runs synchronously inside
// Update.
func (m *Model) handlers() command.Handlers {
	return command.Handlers{
		Random:      m.seedRandom,
		FromCurrent: m.seedFromAll,
		Anonymize:   m.seedFromVisible,
		NewGrid:     m.openCanvas,
		Pause: func() error {
			if m.sess == nil {
				return session.ErrNoActiveSession
			}
			return m.sess.Pause()
		},
		Resume: func() error {
			if m.sess == nil {
				return session.ErrNoActiveSession
			}
			return m.sess.Resume()
		},
		Destroy: m.destroySession,
	}
}

func (m *Model) seedRandom() error {
	g := model.NewGrid(m.surfaceW, m.surfaceH).Randomize(m.rng, m.cfg.SeedDensity)
	return m.startSession(g)
}

func (m *Model) seedFromAll() error {
	g := seed.FromLines(m.source, m.surfaceW, m.surfaceH, m.cfg.BlankRune())
	return m.startSession(g)
}

// seedFromVisible seeds only from the source lines currently shown in the
// viewport, so the simulation eats exactly what the user is looking at.
func (m *Model) seedFromVisible() error {
	first := m.vp.YOffset
	last := first + m.vp.Height - 1
	g := seed.FromLinesRange(m.source, m.surfaceW, m.surfaceH, m.cfg.BlankRune(), first, last)
	return m.startSession(g)
}

func (m *Model) openCanvas() error {
	m.canvas = model.NewGrid(m.surfaceW, m.surfaceH)
	m.curX = m.surfaceW / 2
	m.curY = m.surfaceH / 2
	m.mode = modeCanvas
	return nil
}

func (m *Model) startSession(g *model.Grid) error {
	if m.sess == nil || m.sess.State() == session.StateStopped {
		m.sess = session.New(m.cfg, session.TickerScheduler{}, programSink{events: m.events}, m.logger)
	}
	if err := m.sess.Start(g); err != nil {
		return err
	}
	m.canvas = nil
	m.mode = modeRun
	return nil
}

func (m *Model) destroySession() error {
	if m.sess == nil {
		return session.ErrNoActiveSession
	}
	err := m.sess.Stop()
	m.sess = nil
	m.frame = session.Frame{}
	m.mode = modeView
	return err
}

func (m Model) View() string {
	var body string
	switch m.mode {
	case modeCanvas:
		body = m.canvasView()
	case modeRun:
		body = strings.Join(m.frame.Lines, "\n")
	default:
		body = m.vp.View()
	}

	var bottom string
	if m.mode == modeCommand {
		bottom = m.input.View()
	} else {
		bottom = m.statusView()
	}
	return body + "\n" + bottom
}

func (m Model) canvasView() string {
	if m.canvas == nil {
		return ""
	}
	var b strings.Builder
	for y := 0; y < m.canvas.GetHeight(); y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < m.canvas.GetWidth(); x++ {
			glyph := m.cfg.DeadGlyph
			if m.canvas.Get(x, y) {
				glyph = m.cfg.AliveGlyph
			}
			if x == m.curX && y == m.curY {
				glyph = m.styles.cursor.Render(glyph)
			}
			b.WriteString(glyph)
		}
	}
	return b.String()
}

func (m Model) statusView() string {
	var left string
	switch m.mode {
	case modeRun:
		state := m.styles.statusKey.Render(m.sessState.String())
		left = fmt.Sprintf(" %s  gen %d  pop %d  %.1f gps",
			state, m.frame.Generation, m.frame.Population, m.frame.Stats.GenerationsPerSecond)
		if m.frame.Stagnant {
			left += "  " + m.styles.stagnant.Render("stagnant")
		}
	case modeCanvas:
		left = fmt.Sprintf(" canvas (%d,%d)  space toggle  g glider  b blinker  s start  esc back", m.curX, m.curY)
	default:
		left = fmt.Sprintf(" %s  %d lines", m.styles.statusKey.Render(m.sourceName), len(m.source))
	}

	if m.status != "" {
		left += "  " + m.styles.errText.Render(m.status)
	}

	hint := m.styles.dim.Render(": command  q quit ")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(hint)
	if gap < 1 {
		gap = 1
	}
	return m.styles.statusBar.Render(left + strings.Repeat(" ", gap) + hint)
}

// Run starts the terminal host over the given source text and blocks until
// the user quits. Any running session is stopped before the program exits.
func Run(cfg utils.Config, source []string, sourceName string, logger *slog.Logger) error {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	// When the source text was piped in, stdin is gone; read keys from the
	// terminal instead.
	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		opts = append(opts, tea.WithInputTTY())
	}

	p := tea.NewProgram(New(cfg, source, sourceName, logger), opts...)
	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "[Run] terminal host failed")
	}
	return nil
}
