package events

const (
	// KindVolumeChanged identifies a fresh loudness estimate.
	KindVolumeChanged Kind = "capture.volume_changed"
)

// VolumeChanged carries the loudness estimate of the latest capture block.
type VolumeChanged struct {
	Base
	Level float64
}

// NewVolumeChanged creates a volume changed event.
func NewVolumeChanged(level float64) VolumeChanged {
	return VolumeChanged{Base: NewBase(KindVolumeChanged), Level: level}
}
