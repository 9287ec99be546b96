package session

import "github.com/ekokodan/orbion-experience/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(callbacks clientCallbacks) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.VolumeChanged:
			if callbacks.onVolumeUpdate != nil {
				callbacks.onVolumeUpdate(typedEvent.Level)
			}
		case events.PlaybackActiveChanged:
			if callbacks.onPlaybackActiveChanged != nil {
				callbacks.onPlaybackActiveChanged(typedEvent.Active)
			}
		case events.CheckpointCompleted:
			if callbacks.onCheckpointCompleted != nil {
				callbacks.onCheckpointCompleted(typedEvent.ID)
			}
		case events.TranscriptTurnUpdated:
			if callbacks.onTranscriptTurnUpdated != nil {
				callbacks.onTranscriptTurnUpdated(TranscriptTurn{
					Role:      typedEvent.Role,
					Text:      typedEvent.Text,
					Finalized: typedEvent.Finalized,
				})
			}
		case events.FatalError:
			if callbacks.onFatalError != nil {
				callbacks.onFatalError(typedEvent.Err)
			}
		}
	}
}
