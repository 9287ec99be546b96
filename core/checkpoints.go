package session

import (
	"sync"
	"time"

	"github.com/ekokodan/orbion-experience/core/events"
)

// CelebrationDuration is the timing contract for the transient celebration
// visual after a completion: presentation layers revert to idle once it
// elapses.
const CelebrationDuration = 2500 * time.Millisecond

// CheckpointStatus is the derived progression state of one checkpoint.
type CheckpointStatus string

const (
	CheckpointPending   CheckpointStatus = "pending"
	CheckpointCurrent   CheckpointStatus = "current"
	CheckpointCompleted CheckpointStatus = "completed"
)

// CheckpointDefinition is one ordered objective in the scripted progression.
type CheckpointDefinition struct {
	ID    string
	Title string
	Hint  string
}

// Checkpoint is a point-in-time view of one checkpoint.
type Checkpoint struct {
	CheckpointDefinition
	Ordinal int
	Status  CheckpointStatus
}

// checkpointTracker is the sole mutator of checkpoint progression state.
//
// Status is derived from a completed set plus a single current pointer, so
// at most one checkpoint can ever read as current. Completing an id always
// moves the pointer to the ordinal right after it; out-of-order completions
// therefore leave skipped checkpoints pending rather than cascading them.
type checkpointTracker struct {
	mu sync.Mutex

	definitions []CheckpointDefinition
	completed   []bool
	// currentIndex points at the current checkpoint, -1 when none remains.
	currentIndex int

	emitEvent eventEmitter
}

func newCheckpointTracker() *checkpointTracker {
	return &checkpointTracker{currentIndex: -1, emitEvent: noopEventEmitter}
}

func (t *checkpointTracker) setDefinitions(definitions []CheckpointDefinition) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.definitions = make([]CheckpointDefinition, len(definitions))
	copy(t.definitions, definitions)
	t.completed = make([]bool, len(definitions))
	t.currentIndex = -1
	if len(definitions) > 0 {
		t.currentIndex = 0
	}
}

// Complete marks the checkpoint with the given id as completed and advances
// the current pointer past it. Unknown ids are ignored without error; the
// remote model may reference stale ids and that must not disturb the session.
func (t *checkpointTracker) Complete(id string) {
	t.mu.Lock()

	index := -1
	for i := range t.definitions {
		if t.definitions[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		t.mu.Unlock()
		logger.Debug("ignoring completion of unknown checkpoint", "checkpoint_id", id)
		return
	}

	t.completed[index] = true

	var nextID *string
	if index+1 < len(t.definitions) {
		t.currentIndex = index + 1
		next := t.definitions[index+1].ID
		nextID = &next
	} else {
		t.currentIndex = -1
	}
	t.mu.Unlock()

	t.emitEvent(events.NewCheckpointCompleted(id, nextID))
}

// Snapshot returns a point-in-time copy of the progression. A completed
// checkpoint always reads completed, even when the current pointer rests on
// it after an out-of-order completion.
func (t *checkpointTracker) Snapshot() []Checkpoint {
	t.mu.Lock()
	defer t.mu.Unlock()

	checkpoints := make([]Checkpoint, len(t.definitions))
	for i, definition := range t.definitions {
		status := CheckpointPending
		switch {
		case t.completed[i]:
			status = CheckpointCompleted
		case i == t.currentIndex:
			status = CheckpointCurrent
		}

		checkpoints[i] = Checkpoint{CheckpointDefinition: definition, Ordinal: i, Status: status}
	}
	return checkpoints
}

// AllCompleted reports the terminal state: every checkpoint completed. The
// current pointer is not consulted; after out-of-order completions it can
// rest on a checkpoint that already reads completed.
func (t *checkpointTracker) AllCompleted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.definitions) == 0 {
		return false
	}
	for _, completed := range t.completed {
		if !completed {
			return false
		}
	}
	return true
}
