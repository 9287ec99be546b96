package events

const (
	// KindCheckpointCompleted identifies a checkpoint completion.
	KindCheckpointCompleted Kind = "checkpoint.completed"
)

// CheckpointCompleted marks a checkpoint as completed. NextID is the id of
// the checkpoint that became current, nil when none remains.
type CheckpointCompleted struct {
	Base
	ID     string
	NextID *string
}

// NewCheckpointCompleted creates a checkpoint completed event.
func NewCheckpointCompleted(id string, nextID *string) CheckpointCompleted {
	return CheckpointCompleted{Base: NewBase(KindCheckpointCompleted), ID: id, NextID: nextID}
}
