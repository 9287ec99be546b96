package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ekokodan/orbion-experience/core/audio"
	"github.com/ekokodan/orbion-experience/core/events"
)

// playbackScheduler keeps a monotonically non-decreasing next-start cursor
// on the output timeline so decoded buffers play back-to-back, never
// overlapping and never starting in the past.
//
// In-flight buffers live in a counted registry of handles; the idle/active
// signal derives purely from the count crossing zero, independent of audio
// content.
type playbackScheduler struct {
	mu sync.Mutex

	sink     AudioSink
	encoding audio.EncodingInfo
	// clock reads the output timeline; replaced in tests.
	clock func() time.Time

	nextStartTime time.Time
	active        map[string]playbackHandle

	emitEvent eventEmitter
}

type playbackHandle struct {
	startAt  time.Time
	duration time.Duration
}

func newPlaybackScheduler() *playbackScheduler {
	return &playbackScheduler{
		clock:     time.Now,
		active:    map[string]playbackHandle{},
		emitEvent: noopEventEmitter,
	}
}

func (p *playbackScheduler) setSink(sink AudioSink) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sink = sink
	p.encoding = audio.GetPlaybackEncodingInfo()
	if sink != nil && !sink.EncodingInfo().IsZero() {
		p.encoding = sink.EncodingInfo()
	}
}

func (p *playbackScheduler) isConfigured() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sink != nil
}

// Enqueue schedules one decoded buffer at max(nextStartTime, now) and
// advances the cursor by the buffer's duration.
func (p *playbackScheduler) Enqueue(pcm []byte) error {
	p.mu.Lock()
	sink := p.sink
	if sink == nil {
		p.mu.Unlock()
		return fmt.Errorf("audio sink not configured")
	}

	duration := p.encoding.Duration(len(pcm))

	startAt := p.nextStartTime
	if now := p.clock(); now.After(startAt) {
		startAt = now
	}
	p.nextStartTime = startAt.Add(duration)

	id := uuid.NewString()
	p.active[id] = playbackHandle{startAt: startAt, duration: duration}
	becameActive := len(p.active) == 1
	p.mu.Unlock()

	if becameActive {
		p.emitEvent(events.NewPlaybackActiveChanged(true))
	}

	if err := sink.SchedulePlayback(pcm, startAt, func() { p.complete(id) }); err != nil {
		p.complete(id)
		return fmt.Errorf("failed to schedule playback: %w", err)
	}

	return nil
}

// complete drops one handle from the registry. Handles already removed by a
// Reset are ignored, so late completion callbacks from a released sink
// cannot touch a newer timeline.
func (p *playbackScheduler) complete(id string) {
	p.mu.Lock()
	if _, ok := p.active[id]; !ok {
		p.mu.Unlock()
		return
	}
	delete(p.active, id)
	becameIdle := len(p.active) == 0
	p.mu.Unlock()

	if becameIdle {
		p.emitEvent(events.NewPlaybackActiveChanged(false))
	}
}

// Reset clears the registry and rewinds the cursor. Pending completion
// callbacks become no-ops.
func (p *playbackScheduler) Reset() {
	p.mu.Lock()
	wasActive := len(p.active) > 0
	p.active = map[string]playbackHandle{}
	p.nextStartTime = time.Time{}
	p.mu.Unlock()

	if wasActive {
		p.emitEvent(events.NewPlaybackActiveChanged(false))
	}
}

func (p *playbackScheduler) closeSink() error {
	p.mu.Lock()
	sink := p.sink
	p.mu.Unlock()

	if sink == nil {
		return nil
	}
	return sink.Close()
}

func (p *playbackScheduler) activeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}
