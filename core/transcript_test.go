package session

import (
	"testing"

	"github.com/ekokodan/orbion-experience/core/events"
)

func newTestAggregator() (*transcriptAggregator, *[]events.TranscriptTurnUpdated) {
	aggregator := newTranscriptAggregator()
	emitted := &[]events.TranscriptTurnUpdated{}
	aggregator.emitEvent = func(event events.Event) {
		if typedEvent, ok := event.(events.TranscriptTurnUpdated); ok {
			*emitted = append(*emitted, typedEvent)
		}
	}
	return aggregator, emitted
}

func TestTranscriptAggregatorMergesStreamedFragments(t *testing.T) {
	aggregator, emitted := newTestAggregator()

	aggregator.Append(events.RoleUser, "Bon", false)
	aggregator.Append(events.RoleUser, "jour", true)

	turns := aggregator.Turns()
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if turns[0].Text != "Bonjour" {
		t.Fatalf("expected merged text %q, got %q", "Bonjour", turns[0].Text)
	}
	if !turns[0].Finalized {
		t.Fatalf("expected turn to be finalized")
	}

	if len(*emitted) != 2 {
		t.Fatalf("expected 2 turn updates, got %d", len(*emitted))
	}
	for _, event := range *emitted {
		if event.Index != 0 {
			t.Fatalf("expected both updates to touch turn 0, got index %d", event.Index)
		}
	}
}

func TestTranscriptAggregatorStartsNewTurnOnRoleChange(t *testing.T) {
	aggregator, _ := newTestAggregator()

	aggregator.Append(events.RoleUser, "Hello", false)
	aggregator.Append(events.RoleAssistant, "Bonjour !", false)

	turns := aggregator.Turns()
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != events.RoleUser || turns[1].Role != events.RoleAssistant {
		t.Fatalf("expected user then assistant turns, got %+v", turns)
	}
	if turns[0].Finalized {
		t.Fatalf("expected interrupted user turn to stay open")
	}
}

func TestTranscriptAggregatorStartsNewTurnAfterFinalizedSameRole(t *testing.T) {
	aggregator, emitted := newTestAggregator()

	aggregator.Append(events.RoleUser, "First thought.", true)
	aggregator.Append(events.RoleUser, "Second thought.", false)

	turns := aggregator.Turns()
	if len(turns) != 2 {
		t.Fatalf("expected a finalized turn to close, got %d turns", len(turns))
	}
	if turns[0].Text != "First thought." || turns[1].Text != "Second thought." {
		t.Fatalf("unexpected turn texts: %+v", turns)
	}

	last := (*emitted)[len(*emitted)-1]
	if last.Index != 1 {
		t.Fatalf("expected second update to touch turn 1, got %d", last.Index)
	}
}

func TestTranscriptAggregatorTurnsReturnsCopy(t *testing.T) {
	aggregator, _ := newTestAggregator()

	aggregator.Append(events.RoleUser, "Hello", false)

	turns := aggregator.Turns()
	turns[0].Text = "mutated"

	if got := aggregator.Turns()[0].Text; got != "Hello" {
		t.Fatalf("expected snapshot mutation to not affect aggregator, got %q", got)
	}
}

func TestTranscriptAggregatorReset(t *testing.T) {
	aggregator, _ := newTestAggregator()

	aggregator.Append(events.RoleUser, "Hello", true)
	aggregator.Reset()

	if turns := aggregator.Turns(); len(turns) != 0 {
		t.Fatalf("expected no turns after reset, got %d", len(turns))
	}
}
