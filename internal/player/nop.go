package player

import (
	"context"
	"sync"
	"time"
)

// Nop is a player that plays nothing. It keeps enough state for headless
// runs (bridge mode without a display) to behave like a real player.
type Nop struct {
	mu       sync.Mutex
	onEvent  Handler
	url      string
	paused   bool
	pos, dur time.Duration
	loaded   bool
}

// NewNop creates a Nop player.
func NewNop(onEvent Handler) *Nop {
	return &Nop{onEvent: onEvent}
}

// NopFactory builds Nop players.
func NopFactory(onEvent Handler) Player {
	return NewNop(onEvent)
}

func (n *Nop) Load(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	n.url, n.loaded, n.paused, n.pos = url, true, false, 0
	n.mu.Unlock()
	n.emit(Event{Type: EventPlaying})
	return nil
}

// URL returns the last loaded url.
func (n *Nop) URL() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.url
}

// SetDuration pretends the loaded media is d long.
func (n *Nop) SetDuration(d time.Duration) {
	n.mu.Lock()
	n.dur = d
	n.mu.Unlock()
}

func (n *Nop) Play() error  { return n.setPaused(false) }
func (n *Nop) Pause() error { return n.setPaused(true) }

func (n *Nop) TogglePause() error {
	n.mu.Lock()
	paused := !n.paused
	n.mu.Unlock()
	return n.setPaused(paused)
}

func (n *Nop) setPaused(paused bool) error {
	n.mu.Lock()
	changed := n.loaded && n.paused != paused
	n.paused = paused
	n.mu.Unlock()
	if changed {
		if paused {
			n.emit(Event{Type: EventPaused})
		} else {
			n.emit(Event{Type: EventPlaying})
		}
	}
	return nil
}

func (n *Nop) Seek(offset time.Duration) error {
	n.mu.Lock()
	n.pos = clampSeek(n.pos, n.dur, offset)
	pos, dur := n.pos, n.dur
	n.mu.Unlock()
	n.emit(Event{Type: EventProgress, Position: pos, Duration: dur})
	return nil
}

func (n *Nop) Position() (time.Duration, time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pos, n.dur
}

func (n *Nop) Paused() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.paused
}

func (n *Nop) Destroy() error {
	n.mu.Lock()
	n.loaded, n.url, n.pos = false, "", 0
	n.mu.Unlock()
	return nil
}

func (n *Nop) emit(e Event) {
	if n.onEvent != nil {
		n.onEvent(e)
	}
}
