package app

import (
	"context"

	"github.com/muurk/polfunbox/internal/epg"
	"github.com/muurk/polfunbox/internal/logging"
	"github.com/muurk/polfunbox/internal/player"
	"github.com/muurk/polfunbox/internal/schedule"
	"github.com/muurk/polfunbox/internal/xtream"
	"go.uber.org/zap"
)

// enterLiveTV loads the category list (and every channel, unless the home
// screen already did), selects a category and starts the EPG refresh.
func (c *Controller) enterLiveTV() {
	c.st.liveCat = ""
	c.st.channels = nil
	c.sched.Every(schedule.TaskEPGRefresh, EPGRefreshInterval, c.refreshEPG)

	if len(c.st.liveCats) > 0 && len(c.st.allLive) > 0 {
		c.autoSelectLiveCategory()
		return
	}

	c.st.loading = true
	client := c.client
	needStreams := len(c.st.allLive) == 0
	c.async(purposeScreen, func(ctx context.Context) func() {
		cats, err := client.LiveCategories(ctx)
		if err != nil {
			return c.loadFailed("live categories", err)
		}
		var streams []xtream.LiveStream
		if needStreams {
			if streams, err = client.LiveStreams(ctx, ""); err != nil {
				return c.loadFailed("live streams", err)
			}
		}
		return func() {
			c.st.loading = false
			c.st.liveCats = cats
			if needStreams {
				c.st.allLive = streams
			}
			c.autoSelectLiveCategory()
		}
	})
}

// loadFailed is the apply step of a failed list request: an alert, and the
// screen stays where it is.
func (c *Controller) loadFailed(what string, err error) func() {
	logging.Warn("Load failed", zap.String("what", what), zap.Error(err))
	return func() {
		c.st.loading = false
		c.showAlert(AlertError, xtream.UserMessage(err))
		c.relayout()
	}
}

// autoSelectLiveCategory picks favorites when the user has any, otherwise
// the first category that is not PIN-locked.
func (c *Controller) autoSelectLiveCategory() {
	if len(c.profile.Favorites()) > 0 {
		c.applyLiveCategory(FavoritesCategory)
		c.setFocus(prefixCategory + FavoritesCategory)
		return
	}
	for _, cat := range c.st.liveCats {
		id := cat.ID.String()
		if c.gate.Locked(id, cat.Name, c.st.settings.PinConfigured()) {
			continue
		}
		c.applyLiveCategory(id)
		c.setFocus(prefixCategory + id)
		return
	}
	c.relayout()
}

func (c *Controller) selectLiveCategory(id string) {
	if id == FavoritesCategory {
		c.applyLiveCategory(id)
		return
	}
	c.gated(id, c.liveCategoryName(id), func() { c.applyLiveCategory(id) })
}

func (c *Controller) applyLiveCategory(id string) {
	c.st.liveCat = id
	c.st.channels = c.channelsIn(id)
	c.resetScroll(GroupChannels)
	logging.Debug("Live category selected", zap.String("category", id), zap.Int("channels", len(c.st.channels)))
	c.relayout()
}

func (c *Controller) channelsIn(categoryID string) []xtream.LiveStream {
	if categoryID == FavoritesCategory {
		byID := make(map[string]xtream.LiveStream, len(c.st.allLive))
		for _, ch := range c.st.allLive {
			byID[ch.StreamID.String()] = ch
		}
		var out []xtream.LiveStream
		for _, id := range c.profile.Favorites() {
			if ch, ok := byID[id]; ok {
				out = append(out, ch)
			}
		}
		return out
	}

	var out []xtream.LiveStream
	for _, ch := range c.st.allLive {
		if ch.CategoryID.String() == categoryID {
			out = append(out, ch)
		}
	}
	return out
}

func (c *Controller) liveCategoryName(id string) string {
	for _, cat := range c.st.liveCats {
		if cat.ID.String() == id {
			return cat.Name
		}
	}
	return ""
}

func (c *Controller) findChannel(id string) (xtream.LiveStream, bool) {
	for _, ch := range c.st.channels {
		if ch.StreamID.String() == id {
			return ch, true
		}
	}
	for _, ch := range c.st.allLive {
		if ch.StreamID.String() == id {
			return ch, true
		}
	}
	return xtream.LiveStream{}, false
}

func (c *Controller) favoriteSet() map[string]bool {
	favs := c.profile.Favorites()
	set := make(map[string]bool, len(favs))
	for _, id := range favs {
		set[id] = true
	}
	return set
}

// selectChannel is ENTER on a channel. Selecting the same channel twice
// inside DoubleSelectWindow enters fullscreen instead.
func (c *Controller) selectChannel(id string) {
	ch, ok := c.findChannel(id)
	if !ok {
		return
	}

	now := c.now()
	if c.st.lastSelect == id && now.Sub(c.st.lastAt) < DoubleSelectWindow {
		c.enterFullscreen()
		return
	}
	c.st.lastSelect, c.st.lastAt = id, now

	c.playChannelGated(ch)
}

func (c *Controller) playChannelGated(ch xtream.LiveStream) {
	catID := ch.CategoryID.String()
	if c.gate.ChannelLocked(catID, c.liveCategoryName(catID), ch.Name, c.st.settings.PinConfigured()) {
		c.openVerify(func() {
			c.gate.Unlock(catID)
			c.startChannel(ch)
		})
		return
	}
	c.startChannel(ch)
}

// startChannel plays ch on the live player and fetches its EPG.
func (c *Controller) startChannel(ch xtream.LiveStream) {
	if c.client == nil {
		return
	}
	id := ch.StreamID.String()
	format := c.profile.Settings().StreamFormat
	if format == "" {
		format = c.opts.Platform.LiveStreamFormat()
	}

	if c.live == nil {
		c.liveGen++
		c.live = c.opts.LivePlayer(c.playerHandler(liveKind, c.liveGen))
	}
	c.st.channel = id
	c.st.livePaused = false
	c.st.liveLoaded = false
	c.st.programs = nil
	c.st.epg = epg.Display{Current: epg.Loading}
	logging.Info("Playing channel", zap.String("channel", ch.Name), zap.String("stream_id", id))

	c.relayout()
	c.loadInto(liveKind, c.live, c.liveGen, c.client.LiveURL(id, format))
	c.fetchEPG(id)
}

func (c *Controller) fetchEPG(streamID string) {
	client := c.client
	loc := c.opts.Location
	c.async(purposeEPG, func(ctx context.Context) func() {
		listings, err := client.ShortEPG(ctx, streamID)
		return func() {
			if c.st.channel != streamID {
				return
			}
			if err != nil {
				logging.Warn("EPG fetch failed", zap.String("stream_id", streamID), zap.Error(err))
				c.st.programs = nil
				c.st.epg = epg.Display{Current: epg.Failed}
				return
			}
			c.st.programs = epg.FromListings(listings, loc)
			c.st.epg = epg.Describe(c.st.programs, c.now())
		}
	})
}

// refreshEPG re-renders the guide of the current channel. Once the cached
// listings no longer cover the present they are fetched again.
func (c *Controller) refreshEPG() {
	if c.st.screen != LiveTV || c.st.channel == "" {
		return
	}
	d := epg.Describe(c.st.programs, c.now())
	if len(c.st.programs) > 0 && d.Current == epg.NoProgram {
		c.fetchEPG(c.st.channel)
		return
	}
	if c.st.epg.Current == epg.Loading || c.st.epg.Current == epg.Failed {
		return
	}
	c.st.epg = d
}

// switchChannel moves step positions through the current list, wrapping
// at both ends.
func (c *Controller) switchChannel(step int) {
	n := len(c.st.channels)
	if c.st.channel == "" || n == 0 {
		return
	}
	idx := -1
	for i, ch := range c.st.channels {
		if ch.StreamID.String() == c.st.channel {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	next := c.st.channels[((idx+step)%n+n)%n]
	id := next.StreamID.String()
	c.st.lastSelect, c.st.lastAt = id, c.now()
	c.playChannelGated(next)

	if c.st.fullscreen {
		c.showFullscreenEPG()
	} else if _, ok := c.reg.Lookup(prefixChannel + id); ok {
		c.setFocus(prefixChannel + id)
	}
}

func (c *Controller) enterFullscreen() {
	if c.st.fullscreen || c.st.channel == "" {
		return
	}
	c.st.lastFocus = c.st.focus
	c.st.fullscreen = true
	logging.Debug("Fullscreen on", zap.String("saved_focus", c.st.lastFocus))
	c.notifyHost(HostNavigation)
}

// exitFullscreen leaves fullscreen and puts focus back where it was, or on
// the first element if that one is gone.
func (c *Controller) exitFullscreen() {
	c.st.fullscreen = false
	c.hideFullscreenEPG()
	if _, ok := c.reg.Lookup(c.st.lastFocus); ok {
		c.setFocus(c.st.lastFocus)
	} else {
		c.focusFirst()
	}
	c.st.lastFocus = ""
	logging.Debug("Fullscreen off", zap.String("focus", c.st.focus))
}

func (c *Controller) toggleFullscreenEPG() {
	if c.st.fsEPG {
		c.hideFullscreenEPG()
		return
	}
	c.showFullscreenEPG()
}

func (c *Controller) showFullscreenEPG() {
	c.st.fsEPG = true
	c.sched.After(schedule.TaskFSEPG, FullscreenEPGDuration, c.hideFullscreenEPG)
}

func (c *Controller) hideFullscreenEPG() {
	c.st.fsEPG = false
	c.sched.Cancel(schedule.TaskFSEPG)
}

// toggleFavorite is the long-press action on a channel.
func (c *Controller) toggleFavorite(id string) {
	added, err := c.profile.ToggleFavorite(id)
	if err != nil {
		logging.Error("Failed to save favorites", zap.Error(err))
		c.showAlert(AlertError, "Błąd zapisu ulubionych")
		return
	}
	if added {
		c.showAlert(AlertSuccess, "Dodano do ulubionych!")
	} else {
		c.showAlert(AlertInfo, "Usunięto z ulubionych")
	}
	c.relayout()

	if c.st.liveCat == FavoritesCategory {
		c.sched.After(schedule.TaskFavoritesRefresh, FavoritesRefreshDelay, func() {
			if c.st.screen == LiveTV && c.st.liveCat == FavoritesCategory {
				c.applyLiveCategory(FavoritesCategory)
			}
		})
	}
}

// stopLive destroys the live player and forgets the channel.
func (c *Controller) stopLive() {
	if c.live != nil {
		c.destroyPlayer(c.live)
		c.live = nil
		c.liveGen++
	}
	c.st.channel = ""
	c.st.livePaused = false
	c.st.liveLoaded = false
	c.st.fullscreen = false
	c.hideFullscreenEPG()
	c.st.programs = nil
	c.st.epg = epg.Display{}
}

// leaveLiveTV tears down everything the live screen started.
func (c *Controller) leaveLiveTV() {
	c.stopLive()
	c.cancelScreenTasks()
	c.st.press = longPress{}
	c.st.lastSelect = ""
	c.st.lastFocus = ""
}

func (c *Controller) onLiveEvent(ev player.Event) {
	switch ev.Type {
	case player.EventPlaying:
		c.st.livePaused = false
		c.st.liveLoaded = true
	case player.EventPaused:
		c.st.livePaused = true
	case player.EventError:
		if !ev.Fatal {
			logging.Warn("Live player error", zap.Error(ev.Err))
			return
		}
		logging.Error("Live playback failed", zap.Error(ev.Err))
		c.destroyPlayer(c.live)
		c.live = nil
		c.liveGen++
		c.st.liveLoaded = false
		c.showAlert(AlertError, "Błąd odtwarzania kanału")
	}
}
