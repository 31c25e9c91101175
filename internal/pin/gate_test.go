package pin

import "testing"

func TestIsAdult(t *testing.T) {
	g := NewGate(nil)
	tests := map[string]bool{
		"PL | XXX":           true,
		"Adult Swim":         true,
		"Kino 18+":           true,
		"Dla Dorosłych":      true,
		"EROTYKA HD":         true,
		"Sport":              false,
		"":                   false,
		"Polsat News":        false,
		"Sexy Hits (music)":  true,
		"Documentary Essex":  true,
		"Kids & Family 12+":  false,
		"VOD XXX Collection": true,
	}
	for name, want := range tests {
		if got := g.IsAdult(name); got != want {
			t.Errorf("IsAdult(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestLocked(t *testing.T) {
	g := NewGate(nil)

	if g.Locked("7", "XXX", false) {
		t.Error("locked without a configured pin")
	}
	if !g.Locked("7", "XXX", true) {
		t.Error("adult category not locked")
	}
	if g.Locked("8", "Sport", true) {
		t.Error("non-adult category locked")
	}

	g.Unlock("7")
	if g.Locked("7", "XXX", true) || !g.Unlocked("7") {
		t.Error("category still locked after unlock")
	}

	g.Reset()
	if !g.Locked("7", "XXX", true) {
		t.Error("unlock survived Reset")
	}
}

func TestChannelLocked(t *testing.T) {
	g := NewGate(nil)

	if !g.ChannelLocked("1", "Movies", "Hustler XXX", true) {
		t.Error("adult channel name in a normal category not locked")
	}
	if !g.ChannelLocked("2", "Adult", "Channel 5", true) {
		t.Error("channel in adult category not locked")
	}
	if g.ChannelLocked("1", "Movies", "Cinema 1", true) {
		t.Error("normal channel locked")
	}
	g.Unlock("2")
	if g.ChannelLocked("2", "Adult", "Channel 5", true) {
		t.Error("channel locked after its category was unlocked")
	}
}

func TestCustomKeywords(t *testing.T) {
	g := NewGate([]string{"Horror"})
	if !g.IsAdult("late night horror") || g.IsAdult("xxx") {
		t.Error("custom keyword list not applied")
	}
}
