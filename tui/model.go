// Package tui renders a running tutoring session in the terminal. It is
// coupled to the session core only through its event stream.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"

	session "github.com/ekokodan/orbion-experience/core"
	"github.com/ekokodan/orbion-experience/core/events"
)

const eventBacklog = 64

type avatarMood int

const (
	avatarIdle avatarMood = iota
	avatarSpeaking
	avatarCelebrating
)

type checkpointView struct {
	session.CheckpointDefinition
	status session.CheckpointStatus
}

// Model is the bubbletea model of the session screen.
type Model struct {
	events chan events.Event

	stopwatch stopwatch.Model
	styles    styles

	turns       []session.TranscriptTurn
	checkpoints []checkpointView
	volume      float64
	state       string
	fatalErr    error

	speaking bool
	// celebrationSeq invalidates pending celebration expiries when a newer
	// completion lands before the previous celebration ends.
	celebrationSeq int
	celebrating    bool

	width    int
	height   int
	quitting bool
}

// New creates the session screen for the given checkpoint progression.
func New(definitions []session.CheckpointDefinition) Model {
	checkpoints := make([]checkpointView, len(definitions))
	for i, definition := range definitions {
		status := session.CheckpointPending
		if i == 0 {
			status = session.CheckpointCurrent
		}
		checkpoints[i] = checkpointView{CheckpointDefinition: definition, status: status}
	}

	return Model{
		events:      make(chan events.Event, eventBacklog),
		stopwatch:   stopwatch.NewWithInterval(time.Second),
		styles:      newStyles(),
		checkpoints: checkpoints,
		state:       string(session.StateDisconnected),
	}
}

// Push delivers one session event to the screen. It never blocks; the
// session must not stall on a slow terminal, so backlogged events are
// dropped.
func (m Model) Push(event events.Event) {
	select {
	case m.events <- event:
	default:
	}
}

type eventMsg struct {
	event events.Event
}

type celebrationExpiredMsg struct {
	seq int
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.listenEvents(),
		m.stopwatch.Init(),
	)
}

func (m Model) listenEvents() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return nil
		}
		return eventMsg{event: event}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyRunes:
			if len(msg.Runes) == 1 && msg.Runes[0] == 'q' {
				m.quitting = true
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case eventMsg:
		var cmd tea.Cmd
		m, cmd = m.handleEvent(msg.event)
		cmds = append(cmds, m.listenEvents())
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case celebrationExpiredMsg:
		if msg.seq == m.celebrationSeq {
			m.celebrating = false
		}
	}

	var cmd tea.Cmd
	m.stopwatch, cmd = m.stopwatch.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) handleEvent(event events.Event) (Model, tea.Cmd) {
	switch typedEvent := event.(type) {
	case events.VolumeChanged:
		m.volume = typedEvent.Level

	case events.PlaybackActiveChanged:
		m.speaking = typedEvent.Active

	case events.TranscriptTurnUpdated:
		m.turns = upsertTurn(m.turns, typedEvent)

	case events.CheckpointCompleted:
		m.checkpoints = advanceCheckpoints(m.checkpoints, typedEvent)
		m.celebrating = true
		m.celebrationSeq++
		seq := m.celebrationSeq
		return m, tea.Tick(session.CelebrationDuration, func(time.Time) tea.Msg {
			return celebrationExpiredMsg{seq: seq}
		})

	case events.SessionStateChanged:
		m.state = typedEvent.State
		if typedEvent.State != string(session.StateConnected) {
			m.volume = 0
		}

	case events.FatalError:
		m.fatalErr = typedEvent.Err
	}

	return m, nil
}

func upsertTurn(turns []session.TranscriptTurn, event events.TranscriptTurnUpdated) []session.TranscriptTurn {
	turn := session.TranscriptTurn{Role: event.Role, Text: event.Text, Finalized: event.Finalized}
	if event.Index < len(turns) {
		turns[event.Index] = turn
		return turns
	}
	return append(turns, turn)
}

func advanceCheckpoints(checkpoints []checkpointView, event events.CheckpointCompleted) []checkpointView {
	for i := range checkpoints {
		switch {
		case checkpoints[i].ID == event.ID:
			checkpoints[i].status = session.CheckpointCompleted
		// A next pointer can rest on a checkpoint completed out of order;
		// completed never reverts.
		case event.NextID != nil && checkpoints[i].ID == *event.NextID &&
			checkpoints[i].status != session.CheckpointCompleted:
			checkpoints[i].status = session.CheckpointCurrent
		case checkpoints[i].status == session.CheckpointCurrent:
			checkpoints[i].status = session.CheckpointPending
		}
	}
	return checkpoints
}

func (m Model) mood() avatarMood {
	switch {
	case m.celebrating:
		return avatarCelebrating
	case m.speaking:
		return avatarSpeaking
	}
	return avatarIdle
}
