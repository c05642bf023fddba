// Package tui provides a Bubble Tea viewer that replays a recording
// interactively: play/pause, scrubbing, variable and reverse speed, live
// subject poses, and a log of re-dispatched custom events.
package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/fakeyudi/rewind/internal/playback"
	"github.com/fakeyudi/rewind/internal/recording"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	eventStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

	playedBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

const tickRate = time.Second / 30

// firedEvent is one row of the event log.
type firedEvent struct {
	at      float64 // playback time when dispatched
	subject string  // empty for global events
	name    string
	detail  string
}

// Model is the root Bubble Tea model for the playback viewer.
type Model struct {
	engine   *playback.Engine
	filename string
	fullPath string
	watch    bool
	reload   func(path string) (*recording.Recording, error)

	playing bool
	fired   []firedEvent
	notice  string // transient message, e.g. after a reload

	width    int
	height   int
	ready    bool
	eventsVP viewport.Model
}

type tickMsg time.Time

type reloadMsg struct {
	rec *recording.Recording
	err error
}

// New creates a viewer model for the given recording. reload re-parses the
// recording file and is used by --watch; it may be nil when watching is
// disabled.
func New(rec *recording.Recording, path string, watch bool, reload func(string) (*recording.Recording, error)) *Model {
	m := &Model{
		filename: filepath.Base(path),
		fullPath: path,
		watch:    watch,
		reload:   reload,
	}
	m.attach(rec, 0)
	return m
}

// attach builds a fresh engine for rec positioned at playback time t.
func (m *Model) attach(rec *recording.Recording, t float64) {
	handler := playback.HandlerFunc(func(s *recording.SubjectRecording, ev recording.CustomEventCapture) {
		m.onEvent(s, ev)
	})
	m.engine = playback.NewEngine(rec, nil, handler)
	m.engine.SetTime(t)
}

func (m *Model) onEvent(s *recording.SubjectRecording, ev recording.CustomEventCapture) {
	subject := ""
	if s != nil {
		subject = s.Name
	}
	keys := make([]string, 0, len(ev.Contents))
	for k := range ev.Contents {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + ev.Contents[k]
	}
	m.fired = append(m.fired, firedEvent{
		at:      m.engine.Time(),
		subject: subject,
		name:    ev.Name,
		detail:  strings.Join(pairs, " "),
	})
}

// ── Bubble Tea interface ───────────────

func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
		case "right", "l":
			m.engine.SetTime(m.engine.Time() + 1)
		case "left", "h":
			m.engine.SetTime(m.engine.Time() - 1)
		case ".":
			m.engine.SetTime(m.engine.Time() + 0.1)
		case ",":
			m.engine.SetTime(m.engine.Time() - 0.1)
		case "r":
			m.engine.SetSpeed(-m.engine.Speed())
		case "+", "=":
			m.engine.SetSpeed(m.engine.Speed() * 2)
		case "-":
			m.engine.SetSpeed(m.engine.Speed() / 2)
		case "0":
			m.engine.SetTime(0)
			m.fired = nil
		case "e":
			m.eventsVP.GotoBottom()
		case "up", "k", "down", "j", "pgup", "pgdown":
			var cmd tea.Cmd
			m.eventsVP, cmd = m.eventsVP.Update(msg)
			return m, cmd
		}
		m.syncEvents()
		return m, nil

	case tickMsg:
		if m.playing {
			m.engine.Advance(tickRate.Seconds())
			if m.engine.AtEnd() {
				m.playing = false
			}
			m.syncEvents()
		}
		return m, tick()

	case reloadMsg:
		if msg.err != nil {
			m.notice = "reload failed: " + msg.err.Error()
			return m, nil
		}
		t := m.engine.Time()
		m.fired = nil
		m.attach(msg.rec, t)
		m.notice = "recording reloaded"
		m.syncEvents()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.eventsVP = viewport.New(m.width, m.eventsHeight())
		m.syncEvents()
		return m, nil
	}
	return m, nil
}

// eventsHeight is the viewport height left after the fixed rows: title,
// transport, timeline, subjects header, one row per subject, events header,
// status bar.
func (m *Model) eventsHeight() int {
	fixed := 6 + len(m.engine.Actors())
	h := m.height - fixed
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) syncEvents() {
	if !m.ready {
		return
	}
	atBottom := m.eventsVP.AtBottom()
	m.eventsVP.Height = m.eventsHeight()
	m.eventsVP.SetContent(m.renderEvents())
	if atBottom {
		m.eventsVP.GotoBottom()
	}
}

func (m *Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  rewind  " + m.filename)

	rows := []string{
		title,
		m.renderTransport(),
		m.renderTimeline(),
		sectionHeader.Render("  Subjects"),
		m.renderSubjects(),
		sectionHeader.Render(fmt.Sprintf("  Events (%d fired)", len(m.fired))),
		m.eventsVP.View(),
		m.renderStatusBar(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderTransport() string {
	state := "⏸ paused"
	if m.playing {
		state = "▶ playing"
	}
	speed := fmt.Sprintf("%+.2gx", m.engine.Speed())
	return fmt.Sprintf("  %s   %s %s / %s   %s %s",
		state,
		labelStyle.Render("time"),
		timeStyle.Render(formatSeconds(m.engine.Time())),
		timeStyle.Render(formatSeconds(m.engine.Duration())),
		labelStyle.Render("speed"),
		speed,
	)
}

func (m *Model) renderTimeline() string {
	barWidth := m.width - 4
	if barWidth < 10 {
		barWidth = 10
	}
	frac := 0.0
	if d := m.engine.Duration(); d > 0 {
		frac = m.engine.Time() / d
	}
	cursor := int(frac * float64(barWidth-1))
	var sb strings.Builder
	sb.WriteString("  ")
	for i := 0; i < barWidth; i++ {
		switch {
		case i == cursor:
			sb.WriteString(cursorStyle.Render("┃"))
		case i < cursor:
			sb.WriteString(playedBarStyle.Render("━"))
		default:
			sb.WriteString(dimStyle.Render("─"))
		}
	}
	return sb.String()
}

func (m *Model) renderSubjects() string {
	actors := m.engine.Actors()
	if len(actors) == 0 {
		return dimStyle.Render("  (no subjects)")
	}
	lines := make([]string, len(actors))
	for i, sa := range actors {
		pose := sa.Actor.(*playback.PoseActor)
		status := inactiveStyle.Render("○")
		detail := dimStyle.Render("hidden")
		if pose.Active {
			status = activeStyle.Render("●")
			detail = fmt.Sprintf("pos %s  rot %s", pose.Position, pose.Rotation)
		}
		lines[i] = fmt.Sprintf("  %s %-14s %s", status, sa.Subject.Name, detail)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderEvents() string {
	if len(m.fired) == 0 {
		return dimStyle.Render("  (no events fired yet)")
	}
	var sb strings.Builder
	for _, ev := range m.fired {
		scope := "global"
		if ev.subject != "" {
			scope = ev.subject
		}
		sb.WriteString(fmt.Sprintf("  %s  %s %s",
			timeStyle.Render(formatSeconds(ev.at)),
			eventStyle.Render(ev.name),
			dimStyle.Render("("+scope+")"),
		))
		if ev.detail != "" {
			sb.WriteString("  " + ev.detail)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) renderStatusBar() string {
	hint := "  space play  ←/→ scrub  ,/. step  r reverse  +/- speed  0 rewind  q quit"
	right := m.notice
	if right == "" && m.watch {
		right = "watching " + m.filename
	}
	pad := m.width - lipgloss.Width(hint) - lipgloss.Width(right) - 2
	if pad < 1 {
		pad = 1
	}
	return statusBarStyle.Width(m.width).Render(hint + strings.Repeat(" ", pad) + right)
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%06.2fs", s)
}

// Run starts the viewer. When watch is true the recording file is reloaded
// through reload whenever it changes on disk.
func Run(rec *recording.Recording, path string, watch bool, reload func(string) (*recording.Recording, error)) error {
	m := New(rec, path, watch, reload)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if watch && reload != nil {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("starting file watcher: %w", err)
		}
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		target, _ := filepath.Abs(path)
		go func() {
			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return
					}
					if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
						continue
					}
					got, _ := filepath.Abs(event.Name)
					if got != target {
						continue
					}
					r, err := reload(path)
					p.Send(reloadMsg{rec: r, err: err})
				case _, ok := <-watcher.Errors:
					if !ok {
						return
					}
				}
			}
		}()
	}

	_, err := p.Run()
	return err
}
