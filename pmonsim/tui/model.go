// Package tui shows the simulated OLED in the terminal.
//
// The model runs the same control loop as the firmware on every tick:
// read a sample, feed the analysis, append a graph point and render the
// active page through a display.Screen into a display.Framebuffer.
package tui

import (
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harveysanders/pmon/pmon/analysis"
	"github.com/harveysanders/pmon/pmon/display"
	"github.com/harveysanders/pmon/pmon/timer"
	"github.com/harveysanders/pmon/pmonsim/config"
	"github.com/harveysanders/pmon/pmonsim/source"
)

// How long the simulated messages stay up, as on the device.
const (
	splashMillis      = 2500
	resetMillis       = 1500
	sensorErrorMillis = 1000
)

// TickMsg advances the simulated control loop.
type TickMsg time.Time

// shared holds state shared between the Bubble Tea model copies.
// Bubble Tea uses value receivers, so pointer fields keep all copies on
// the same display and analysis.
type shared struct {
	fb        *display.Framebuffer
	screen    *display.Screen
	analyzer  *analysis.Analyzer
	pageTimer *timer.Passive
	src       source.Source
	logger    *slog.Logger
}

// Model is the Bubble Tea model of the simulator.
type Model struct {
	tick         time.Duration
	graphEvery   int
	pageInterval time.Duration

	ticks   int
	summary bool
	snap    analysis.Snapshot
	lastErr error

	shared *shared
}

// New returns a model reading samples from src with the timing of a
// normalized profile. It shows the splash message right away.
func New(cfg config.SimConfig, src source.Source, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	fb := display.NewFramebuffer()
	screen := display.NewScreen(display.NewStripeBuffer(fb, 16), timer.New(), logger)
	screen.Setup()
	screen.ActivateMessage(display.MessageSplash, splashMillis)

	return Model{
		tick:         time.Duration(max(cfg.TickMs, 1)) * time.Millisecond,
		graphEvery:   max(cfg.GraphEvery, 1),
		pageInterval: time.Duration(cfg.PageMs) * time.Millisecond,
		shared: &shared{
			fb:        fb,
			screen:    screen,
			analyzer:  analysis.New(),
			pageTimer: timer.New(),
			src:       src,
			logger:    logger,
		},
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd(m.tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		m = m.step()
		return m, tickCmd(m.tick)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.shared
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		if err := s.src.Close(); err != nil {
			s.logger.Error("source:close-failed", slog.String("err", err.Error()))
		}
		return m, tea.Quit

	case "r", "R":
		s.logger.Info("analysis:reset")
		s.analyzer.Reset()
		s.screen.ClearGraphBuffer()
		s.screen.ActivateMessage(display.MessageAnalysisReset, resetMillis)
		m.snap = s.analyzer.Snapshot()

	case "p", "P":
		m.summary = !m.summary
		s.pageTimer.Restart()
		m.render()

	case "m", "M":
		s.screen.ActivateMessage(display.MessageSplash, splashMillis)
	}
	return m, nil
}

// step runs one iteration of the control loop.
func (m Model) step() Model {
	s := m.shared
	m.ticks++

	mA, err := s.src.Read()
	if err != nil {
		if m.lastErr == nil {
			s.logger.Error("source:read-failed", slog.String("err", err.Error()))
		}
		m.lastErr = err
		s.screen.ActivateMessage(display.MessageSensorError, sensorErrorMillis)
	} else {
		m.lastErr = nil
		s.analyzer.Add(mA)
	}

	if m.pageInterval > 0 && s.pageTimer.Elapsed() >= m.pageInterval {
		s.pageTimer.Restart()
		m.summary = !m.summary
	}

	if m.ticks%m.graphEvery == 0 {
		m.snap = s.analyzer.Snapshot()
		s.screen.AppendGraphPoint(m.snap.Current)
		m.render()
	}
	return m
}

func (m Model) render() {
	s := m.shared
	if m.summary {
		s.screen.RenderSummaryPage(m.snap.Current, m.snap.Average, m.snap.ChargeMAh, m.snap.Seconds)
		return
	}
	s.screen.RenderGraphPage(m.snap.Current, m.snap.Average)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(StyleScreen.Render(strings.Join(RenderFrame(m.shared.fb), "\n")))
	b.WriteByte('\n')
	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	b.WriteString(StyleHelp.Render("r reset analysis · p toggle page · m splash · q quit"))
	return b.String()
}

func (m Model) statusLine() string {
	field := func(label string, v uint64, unit string) string {
		return StyleStatusLabel.Render(label+" ") + StyleStatusValue.Render(strconv.FormatUint(v, 10)) + StyleStatusLabel.Render(" "+unit)
	}
	parts := []string{
		field("I", uint64(m.snap.Current), "mA"),
		field("avg", uint64(m.snap.Average), "mA"),
		field("Q", uint64(m.snap.ChargeMAh), "mAh"),
		field("T", uint64(m.snap.Seconds), "s"),
		field("frames", uint64(m.shared.fb.Frames()), ""),
	}
	line := strings.Join(parts, "  ")
	if m.lastErr != nil {
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, "  ", StyleError.Render(m.lastErr.Error()))
	}
	return line
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
