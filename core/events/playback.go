package events

const (
	// KindPlaybackActiveChanged identifies an idle/active playback transition.
	KindPlaybackActiveChanged Kind = "playback.active_changed"
)

// PlaybackActiveChanged marks the scheduled-buffer set crossing between
// empty and non-empty.
type PlaybackActiveChanged struct {
	Base
	Active bool
}

// NewPlaybackActiveChanged creates a playback active changed event.
func NewPlaybackActiveChanged(active bool) PlaybackActiveChanged {
	return PlaybackActiveChanged{Base: NewBase(KindPlaybackActiveChanged), Active: active}
}
