package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	session "github.com/ekokodan/orbion-experience/core"
	"github.com/ekokodan/orbion-experience/core/events"
)

const (
	volumeBarWidth = 20
	transcriptTail = 8
)

func (m Model) View() string {
	if m.quitting {
		return "Au revoir!\n"
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	innerWidth := width - 4

	sections := []string{
		m.headerView(innerWidth),
		m.avatarView(),
		m.journeyView(innerWidth),
		m.transcriptView(innerWidth),
	}
	if m.fatalErr != nil {
		sections = append(sections, m.styles.errText.Render("session error: "+m.fatalErr.Error()))
	}
	sections = append(sections, m.styles.help.Render("q/Ctrl+C quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Model) headerView(width int) string {
	left := m.styles.title.Render("ORBION") + "  " + m.styles.status.Render(m.state)
	right := m.styles.timer.Render(m.stopwatch.View())

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) avatarView() string {
	avatar := avatarGlyph(m.mood())
	return lipgloss.JoinHorizontal(lipgloss.Center,
		m.styles.panel.Render(avatar),
		"  ",
		renderVolumeBar(m.styles, m.volume, volumeBarWidth),
	)
}

func avatarGlyph(mood avatarMood) string {
	switch mood {
	case avatarSpeaking:
		return "( ^ o ^ )"
	case avatarCelebrating:
		return `\( ^ v ^ )/`
	}
	return "( - . - )"
}

// renderVolumeBar renders the live loudness estimate. Levels above 1 are
// clamped to a full bar.
func renderVolumeBar(s styles, level float64, width int) string {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}

	filled := int(level * float64(width))
	return s.volumeOn.Render(strings.Repeat("█", filled)) +
		s.volumeOff.Render(strings.Repeat("░", width-filled))
}

func (m Model) journeyView(width int) string {
	if len(m.checkpoints) == 0 {
		return ""
	}

	glyphs := make([]string, len(m.checkpoints))
	var currentLine string
	for i, checkpoint := range m.checkpoints {
		glyphs[i] = m.checkpointGlyph(checkpoint.status)
		if checkpoint.status == session.CheckpointCurrent {
			currentLine = m.styles.current.Render("▸ "+checkpoint.Title) + " " + m.styles.hint.Render(checkpoint.Hint)
		}
	}

	line := strings.Join(glyphs, m.styles.pending.Render("──"))
	if currentLine == "" {
		currentLine = m.styles.completed.Render("All checkpoints completed!")
	}
	return m.styles.panel.Width(width).Render(line + "\n" + currentLine)
}

func (m Model) checkpointGlyph(status session.CheckpointStatus) string {
	switch status {
	case session.CheckpointCompleted:
		return m.styles.completed.Render("●")
	case session.CheckpointCurrent:
		return m.styles.current.Render("◉")
	}
	return m.styles.pending.Render("○")
}

func (m Model) transcriptView(width int) string {
	turns := m.turns
	if len(turns) > transcriptTail {
		turns = turns[len(turns)-transcriptTail:]
	}

	textWidth := width - 4
	if textWidth < 10 {
		textWidth = 10
	}

	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		label := m.styles.botLabel.Render("Orbion")
		if turn.Role == events.RoleUser {
			label = m.styles.userLabel.Render("You")
		}

		text := turn.Text
		if !turn.Finalized {
			text += "…"
		}
		lines = append(lines, fmt.Sprintf("%s %s", label, m.styles.turnText.Render(wordwrap.String(text, textWidth))))
	}

	if len(lines) == 0 {
		lines = append(lines, m.styles.hint.Render("Say hello to begin."))
	}
	return m.styles.panel.Width(width).Render(strings.Join(lines, "\n"))
}
