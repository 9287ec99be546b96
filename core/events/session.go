package events

const (
	// KindSessionStateChanged identifies a connection lifecycle transition.
	KindSessionStateChanged Kind = "session.state_changed"
	// KindFatalError identifies an unrecoverable session failure.
	KindFatalError Kind = "session.fatal_error"
	// KindTurnCompleted identifies the end of a remote conversational turn.
	KindTurnCompleted Kind = "turn_state.completed"
)

// SessionStateChanged marks a connection lifecycle transition.
type SessionStateChanged struct {
	Base
	State string
}

// NewSessionStateChanged creates a session state changed event.
func NewSessionStateChanged(state string) SessionStateChanged {
	return SessionStateChanged{Base: NewBase(KindSessionStateChanged), State: state}
}

// FatalError marks an unrecoverable transport or device failure.
type FatalError struct {
	Base
	Err error
}

// NewFatalError creates a fatal error event.
func NewFatalError(err error) FatalError {
	return FatalError{Base: NewBase(KindFatalError), Err: err}
}

// TurnCompleted marks the end of the remote model's conversational turn.
//
// No session state depends on it; it is surfaced so presentation can settle
// any streaming affordances.
type TurnCompleted struct {
	Base
}

// NewTurnCompleted creates a turn completed event.
func NewTurnCompleted() TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted)}
}
