package session

import (
	"testing"

	"github.com/ekokodan/orbion-experience/core/events"
)

func newTestTracker(definitions ...CheckpointDefinition) (*checkpointTracker, *[]events.Event) {
	tracker := newCheckpointTracker()
	emitted := &[]events.Event{}
	tracker.emitEvent = func(event events.Event) {
		*emitted = append(*emitted, event)
	}
	tracker.setDefinitions(definitions)
	return tracker, emitted
}

func testDefinitions() []CheckpointDefinition {
	return []CheckpointDefinition{
		{ID: "greet", Title: "Say hello"},
		{ID: "order", Title: "Order a drink"},
		{ID: "pay", Title: "Pay and say goodbye"},
	}
}

func statuses(checkpoints []Checkpoint) []CheckpointStatus {
	out := make([]CheckpointStatus, len(checkpoints))
	for i, checkpoint := range checkpoints {
		out[i] = checkpoint.Status
	}
	return out
}

func TestCheckpointTrackerInitialState(t *testing.T) {
	tracker, _ := newTestTracker(testDefinitions()...)

	got := statuses(tracker.Snapshot())
	want := []CheckpointStatus{CheckpointCurrent, CheckpointPending, CheckpointPending}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected initial statuses %v, got %v", want, got)
		}
	}

	if tracker.AllCompleted() {
		t.Fatalf("expected fresh progression to not be complete")
	}
}

func TestCheckpointTrackerOrderedProgression(t *testing.T) {
	tracker, emitted := newTestTracker(testDefinitions()...)

	tracker.Complete("greet")

	got := statuses(tracker.Snapshot())
	want := []CheckpointStatus{CheckpointCompleted, CheckpointCurrent, CheckpointPending}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected statuses %v after first completion, got %v", want, got)
		}
	}

	if len(*emitted) != 1 {
		t.Fatalf("expected 1 completion event, got %d", len(*emitted))
	}
	event, ok := (*emitted)[0].(events.CheckpointCompleted)
	if !ok {
		t.Fatalf("expected CheckpointCompleted event, got %T", (*emitted)[0])
	}
	if event.ID != "greet" {
		t.Fatalf("expected completion of greet, got %q", event.ID)
	}
	if event.NextID == nil || *event.NextID != "order" {
		t.Fatalf("expected order to become current, got %v", event.NextID)
	}

	tracker.Complete("order")
	tracker.Complete("pay")

	if !tracker.AllCompleted() {
		t.Fatalf("expected progression to be complete")
	}

	last, ok := (*emitted)[len(*emitted)-1].(events.CheckpointCompleted)
	if !ok {
		t.Fatalf("expected CheckpointCompleted event, got %T", (*emitted)[len(*emitted)-1])
	}
	if last.NextID != nil {
		t.Fatalf("expected no next checkpoint after the last completion, got %q", *last.NextID)
	}
}

func TestCheckpointTrackerIgnoresUnknownID(t *testing.T) {
	tracker, emitted := newTestTracker(testDefinitions()...)
	before := tracker.Snapshot()

	tracker.Complete("does-not-exist")

	after := tracker.Snapshot()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("expected progression to be unchanged, got %+v -> %+v", before[i], after[i])
		}
	}
	if len(*emitted) != 0 {
		t.Fatalf("expected no events for an unknown id, got %d", len(*emitted))
	}
}

func TestCheckpointTrackerOutOfOrderCompletionOrphansSkipped(t *testing.T) {
	tracker, _ := newTestTracker(testDefinitions()...)

	tracker.Complete("order")

	got := statuses(tracker.Snapshot())
	want := []CheckpointStatus{CheckpointPending, CheckpointCompleted, CheckpointCurrent}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected statuses %v after skipping ahead, got %v", want, got)
		}
	}

	tracker.Complete("pay")
	if tracker.AllCompleted() {
		t.Fatalf("expected orphaned first checkpoint to keep progression incomplete")
	}

	tracker.Complete("greet")
	if !tracker.AllCompleted() {
		t.Fatalf("expected progression to be complete once the orphan is completed")
	}
}

func TestCheckpointTrackerCompletedWinsOverPointer(t *testing.T) {
	tracker, _ := newTestTracker(testDefinitions()...)

	tracker.Complete("pay")
	tracker.Complete("order")

	// The pointer now rests on pay, which already completed; it must still
	// read completed.
	got := statuses(tracker.Snapshot())
	want := []CheckpointStatus{CheckpointPending, CheckpointCompleted, CheckpointCompleted}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected statuses %v, got %v", want, got)
		}
	}
}

func TestCheckpointTrackerEmptyProgressionNeverCompletes(t *testing.T) {
	tracker, _ := newTestTracker()

	if tracker.AllCompleted() {
		t.Fatalf("expected empty progression to not report complete")
	}
	if len(tracker.Snapshot()) != 0 {
		t.Fatalf("expected empty snapshot")
	}
}
