package player

import (
	"context"
	"fmt"
	"time"
)

// EventType identifies what a player reported.
type EventType int

const (
	EventProgress EventType = iota
	EventPlaying
	EventPaused
	EventCompleted
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventProgress:
		return "progress"
	case EventPlaying:
		return "playing"
	case EventPaused:
		return "paused"
	case EventCompleted:
		return "completed"
	case EventError:
		return "error"
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// Event is a notification from a running player.
type Event struct {
	Type     EventType
	Position time.Duration
	Duration time.Duration
	Err      error
	// Fatal errors leave the player unusable; the owner destroys it.
	Fatal bool
}

// Handler receives player events. Implementations call it from their own
// goroutine, so hosts with a UI loop must hand the event over themselves.
type Handler func(Event)

// Player is the contract the controller drives. Decoding, buffering and
// adaptive bitrate selection all happen behind it.
type Player interface {
	// Load starts playing url, replacing whatever was loaded before.
	Load(ctx context.Context, url string) error
	Play() error
	Pause() error
	TogglePause() error
	// Seek moves by offset relative to the current position.
	Seek(offset time.Duration) error
	// Position returns the current position and the total duration, zero
	// when unknown (live streams).
	Position() (pos, dur time.Duration)
	Paused() bool
	// Destroy stops playback and releases the player. It is safe to call
	// more than once.
	Destroy() error
}

// Factory creates a player wired to onEvent.
type Factory func(onEvent Handler) Player

// FormatPosition renders d as mm:ss, or hh:mm:ss once it reaches an hour.
func FormatPosition(d time.Duration) string {
	if d <= 0 {
		return "00:00"
	}
	total := int(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Progress returns pos/dur clamped to 0..1, or 0 when dur is unknown.
func Progress(pos, dur time.Duration) float64 {
	if dur <= 0 || pos <= 0 {
		return 0
	}
	if pos >= dur {
		return 1
	}
	return float64(pos) / float64(dur)
}

// clampSeek applies offset to pos, staying within 0..dur when dur is known.
func clampSeek(pos, dur, offset time.Duration) time.Duration {
	next := pos + offset
	if next < 0 {
		next = 0
	}
	if dur > 0 && next > dur {
		next = dur
	}
	return next
}
