// Package events defines the typed session event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - capture.*
//   - playback.*
//   - transcript.*
//   - checkpoint.*
//   - tool_call.*
//   - turn_state.*
//   - session.*
//
// Semantics used across the package:
//
//   - Changed: a live signal whose latest value supersedes earlier ones.
//   - Updated: mutable point-in-time snapshot that can change over time.
//   - Completed: terminal state for the referenced entity.
//
// capture events
//
//   - VolumeChanged (capture.volume_changed): loudness estimate for the most
//     recent microphone block. Values may exceed 1 and should be clamped by
//     consumers rendering them.
//
// playback events
//
//   - PlaybackActiveChanged (playback.active_changed): the set of scheduled
//     output buffers transitioned between empty and non-empty.
//
// transcript events
//
//   - TranscriptTurnUpdated (transcript.turn_updated): the turn at Index was
//     created or extended by a streamed transcription fragment.
//
// checkpoint events
//
//   - CheckpointCompleted (checkpoint.completed): a checkpoint was marked
//     complete; NextID carries the newly current checkpoint, nil when the
//     progression reached its terminal all-complete state.
//
// tool_call events
//
//   - ToolCallReceived (tool_call.received): the remote model invoked a local
//     tool function.
//   - ToolCallAnswered (tool_call.answered): the invocation was acknowledged
//     back to the remote model.
//
// turn_state events
//
//   - TurnCompleted (turn_state.completed): the remote model finished its
//     conversational turn.
//
// session events
//
//   - SessionStateChanged (session.state_changed): connection lifecycle
//     transition.
//   - FatalError (session.fatal_error): unrecoverable transport or device
//     failure; the session moves to its disconnected state.
package events
