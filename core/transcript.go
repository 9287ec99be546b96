package session

import (
	"sync"

	"github.com/jinzhu/copier"

	"github.com/ekokodan/orbion-experience/core/events"
)

// TranscriptTurn is a contiguous run of transcript text attributed to one
// speaker.
type TranscriptTurn struct {
	Role      events.Role
	Text      string
	Finalized bool
}

// transcriptAggregator merges streaming partial/final transcription
// fragments into per-speaker turns.
type transcriptAggregator struct {
	mu    sync.Mutex
	turns []TranscriptTurn

	emitEvent eventEmitter
}

func newTranscriptAggregator() *transcriptAggregator {
	return &transcriptAggregator{emitEvent: noopEventEmitter}
}

// Append folds one transcription fragment into the turn list. A fragment
// extends the last turn when the speaker is unchanged and that turn is still
// open; otherwise it starts a new turn. The touched turn is emitted after
// every update.
func (a *transcriptAggregator) Append(role events.Role, fragment string, isFinal bool) {
	a.mu.Lock()

	last := len(a.turns) - 1
	if last >= 0 && a.turns[last].Role == role && !a.turns[last].Finalized {
		a.turns[last].Text += fragment
		a.turns[last].Finalized = isFinal
	} else {
		a.turns = append(a.turns, TranscriptTurn{Role: role, Text: fragment, Finalized: isFinal})
		last++
	}
	turn := a.turns[last]
	a.mu.Unlock()

	a.emitEvent(events.NewTranscriptTurnUpdated(last, turn.Role, turn.Text, turn.Finalized))
}

// Turns returns a point-in-time copy of the turn list.
func (a *transcriptAggregator) Turns() []TranscriptTurn {
	a.mu.Lock()
	defer a.mu.Unlock()

	turns := make([]TranscriptTurn, 0, len(a.turns))
	if err := copier.Copy(&turns, a.turns); err != nil {
		logger.Warn("failed to copy transcript snapshot", "error", err)
		return nil
	}
	return turns
}

// Reset clears all turns. Turns survive everything short of a session reset.
func (a *transcriptAggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.turns = nil
}
