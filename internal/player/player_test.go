package player

import (
	"context"
	"testing"
	"time"
)

func TestFormatPosition(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{-5 * time.Second, "00:00"},
		{9 * time.Second, "00:09"},
		{75 * time.Second, "01:15"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{time.Hour, "01:00:00"},
		{2*time.Hour + 3*time.Minute + 4*time.Second + 900*time.Millisecond, "02:03:04"},
	}
	for _, tt := range tests {
		if got := FormatPosition(tt.in); got != tt.want {
			t.Errorf("FormatPosition(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProgress(t *testing.T) {
	if p := Progress(30*time.Second, 0); p != 0 {
		t.Errorf("Progress with unknown duration = %v", p)
	}
	if p := Progress(30*time.Second, 60*time.Second); p != 0.5 {
		t.Errorf("Progress(30s, 60s) = %v", p)
	}
	if p := Progress(90*time.Second, 60*time.Second); p != 1 {
		t.Errorf("Progress past the end = %v", p)
	}
}

func TestClampSeek(t *testing.T) {
	if got := clampSeek(5*time.Second, time.Minute, -10*time.Second); got != 0 {
		t.Errorf("seek before start = %v, want 0", got)
	}
	if got := clampSeek(55*time.Second, time.Minute, 10*time.Second); got != time.Minute {
		t.Errorf("seek past end = %v, want 1m", got)
	}
	if got := clampSeek(55*time.Second, 0, 10*time.Second); got != 65*time.Second {
		t.Errorf("seek with unknown duration = %v, want 65s", got)
	}
}

func TestNop(t *testing.T) {
	var events []EventType
	n := NewNop(func(e Event) { events = append(events, e.Type) })

	if err := n.Load(context.Background(), "http://panel/movie/u/p/1.mp4"); err != nil {
		t.Fatal(err)
	}
	n.SetDuration(time.Minute)
	_ = n.TogglePause()
	if !n.Paused() {
		t.Error("TogglePause should pause")
	}
	_ = n.Play()
	_ = n.Seek(10 * time.Second)
	_ = n.Seek(-time.Hour)

	pos, dur := n.Position()
	if pos != 0 || dur != time.Minute {
		t.Errorf("Position() = %v, %v", pos, dur)
	}
	want := []EventType{EventPlaying, EventPaused, EventPlaying, EventProgress, EventProgress}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %v, want %v", i, events[i], want[i])
		}
	}

	_ = n.Destroy()
	_ = n.Destroy()
	if n.URL() != "" {
		t.Error("Destroy should forget the url")
	}
}

func TestNopLoadHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewNop(nil).Load(ctx, "x"); err == nil {
		t.Error("Load with cancelled context should fail")
	}
}
