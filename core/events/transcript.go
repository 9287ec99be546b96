package events

// Role attributes a transcript turn to one speaker.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	// KindTranscriptTurnUpdated identifies a created or extended turn.
	KindTranscriptTurnUpdated Kind = "transcript.turn_updated"
)

// TranscriptTurnUpdated carries the state of the turn touched by the latest
// transcription fragment.
type TranscriptTurnUpdated struct {
	Base
	Index     int
	Role      Role
	Text      string
	Finalized bool
}

// NewTranscriptTurnUpdated creates a transcript turn updated event.
func NewTranscriptTurnUpdated(index int, role Role, text string, finalized bool) TranscriptTurnUpdated {
	return TranscriptTurnUpdated{
		Base:      NewBase(KindTranscriptTurnUpdated),
		Index:     index,
		Role:      role,
		Text:      text,
		Finalized: finalized,
	}
}
