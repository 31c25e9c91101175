package pin

import "strings"

// AdultKeywords mark a category or channel name as adult content.
var AdultKeywords = []string{
	"xxx",
	"adult",
	"18+",
	"erotic",
	"porn",
	"sex",
	"dla dorosłych",
	"erotyka",
	"vod xxx",
}

// Gate decides which categories need a PIN and remembers the ones unlocked
// in this run. Unlocks are never persisted.
type Gate struct {
	keywords []string
	unlocked map[string]bool
}

// NewGate creates a gate using keywords, or AdultKeywords when nil.
func NewGate(keywords []string) *Gate {
	if keywords == nil {
		keywords = AdultKeywords
	}
	lower := make([]string, len(keywords))
	for i, kw := range keywords {
		lower[i] = strings.ToLower(kw)
	}
	return &Gate{keywords: lower, unlocked: make(map[string]bool)}
}

// IsAdult reports whether name contains one of the keywords, ignoring case.
func (g *Gate) IsAdult(name string) bool {
	if name == "" {
		return false
	}
	name = strings.ToLower(name)
	for _, kw := range g.keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// Locked reports whether opening the category needs a PIN. Nothing is
// locked while no PIN is configured.
func (g *Gate) Locked(categoryID, categoryName string, pinConfigured bool) bool {
	if !pinConfigured || !g.IsAdult(categoryName) {
		return false
	}
	return !g.unlocked[categoryID]
}

// ChannelLocked applies Locked to a channel, which is adult when either its
// category or its own name is.
func (g *Gate) ChannelLocked(categoryID, categoryName, channelName string, pinConfigured bool) bool {
	if !pinConfigured {
		return false
	}
	if !g.IsAdult(categoryName) && !g.IsAdult(channelName) {
		return false
	}
	return !g.unlocked[categoryID]
}

// Unlock keeps categoryID open until Reset.
func (g *Gate) Unlock(categoryID string) {
	g.unlocked[categoryID] = true
}

// Unlocked reports whether categoryID was unlocked.
func (g *Gate) Unlocked(categoryID string) bool {
	return g.unlocked[categoryID]
}

// Reset forgets every unlock, used when the PIN is disabled.
func (g *Gate) Reset() {
	g.unlocked = make(map[string]bool)
}
