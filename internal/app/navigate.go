package app

import (
	"strings"

	"github.com/muurk/polfunbox/internal/logging"
	"github.com/muurk/polfunbox/internal/schedule"
	"go.uber.org/zap"
)

// Navigate switches to screen s as if the user had picked it. Screens that
// need a selection (details, episodes) fall back to their parent list.
func (c *Controller) Navigate(s Screen) {
	switch s {
	case MovieDetails:
		if c.st.movie == nil {
			s = Movies
		}
	case SeriesDetails, Episodes:
		if c.st.series == nil {
			s = Series
		}
	}
	if s != Login && c.client == nil {
		s = Login
	}
	c.showScreen(s, "navigate", "")
}

// showScreen makes to the active screen. Everything bound to the previous
// screen is torn down first; results still in flight for it become stale.
// preferFocus is focused if the new layout contains it.
func (c *Controller) showScreen(to Screen, reason, preferFocus string) {
	from := c.st.screen

	c.hideFullscreenEPG()
	c.closeOverlay()
	c.closeSearchState()
	c.st.editing = ""
	if from == LiveTV && to != LiveTV {
		c.leaveLiveTV()
	}
	c.guard.invalidate(purposeScreen, purposeItems, purposeEPG, purposeDetails, purposeSearch)

	c.st.screen = to
	c.st.focus = ""
	c.st.loading = false
	c.resetScroll()
	logging.LogTransition(from.String(), to.String(), reason)

	c.relayout()
	if preferFocus != "" {
		if _, ok := c.reg.Lookup(preferFocus); ok {
			c.setFocus(preferFocus)
		}
	}
	c.notifyHost(HostNavigation)

	switch to {
	case Home:
		c.enterHome()
	case LiveTV:
		c.enterLiveTV()
	case Movies:
		c.enterMovies()
	case Series:
		c.enterSeries()
	case Account:
		c.enterAccount()
	case Settings:
		c.st.settings = c.profile.Settings()
		c.st.draft = c.st.settings
		c.relayout()
	case Login:
		c.prefillLogin()
		c.relayout()
	}
}

// back applies the BACK transition table. The first matching row wins.
func (c *Controller) back() {
	switch {
	case c.st.pin != nil:
		c.closePIN()
	case c.st.search != nil:
		c.closeSearch()
	case c.st.fullscreen:
		c.exitFullscreen()
	case c.st.overlay != nil:
		c.closeOverlay()
		c.focusFirst()
	case c.st.editing != "":
		c.st.editing = ""
	default:
		c.backScreen()
		return
	}
	c.notifyHost(HostNavigation)
}

func (c *Controller) backScreen() {
	switch c.st.screen {
	case SeriesDetails:
		c.showScreen(Series, "back", prefixSeries+c.st.series.id)
	case Episodes:
		c.showScreen(SeriesDetails, "back", prefixSeason+c.st.series.season)
	case MovieDetails:
		c.showScreen(Movies, "back", prefixMovie+c.st.movie.id)
	case Account, Settings, LiveTV, Movies, Series:
		c.showScreen(Home, "back", prefixCard+c.st.screen.String())
	case Home, Login:
		logging.Info("Exit requested", zap.String("screen", c.st.screen.String()))
		c.notifyHost(HostExit)
	}
}

// Back is the host's hardware BACK (BACK_PRESSED). It behaves like any
// BACK key code.
func (c *Controller) Back() {
	c.back()
}

// activate runs the focused element's action.
func (c *Controller) activate(id string) {
	if id == "" {
		return
	}
	if v, ok := c.views[id]; ok && v.Disabled {
		return
	}

	switch {
	case id == idBack:
		c.back()
	case id == idNavHome:
		c.showScreen(Home, "menu", "")
	case id == idNavSearch:
		c.openSearch()
	case id == idSearchInput:
		c.st.editing = editSearch
	case id == idPlayerVideo || id == idPlayerFullscreen:
		if c.st.channel != "" {
			c.enterFullscreen()
		}
	case id == idPlay:
		c.playMovie()
	case id == idLogout:
		c.logout()
	case strings.HasPrefix(id, prefixCard):
		c.activateCard(strings.TrimPrefix(id, prefixCard))
	case strings.HasPrefix(id, prefixCategory):
		c.selectCategory(strings.TrimPrefix(id, prefixCategory))
	case strings.HasPrefix(id, prefixChannel):
		c.selectChannel(strings.TrimPrefix(id, prefixChannel))
	case strings.HasPrefix(id, prefixMovie):
		c.openMovie(strings.TrimPrefix(id, prefixMovie))
	case strings.HasPrefix(id, prefixSeries):
		c.openSeries(strings.TrimPrefix(id, prefixSeries))
	case strings.HasPrefix(id, prefixSeason):
		c.openSeason(strings.TrimPrefix(id, prefixSeason))
	case strings.HasPrefix(id, prefixEpisode):
		c.playEpisode(strings.TrimPrefix(id, prefixEpisode))
	case strings.HasPrefix(id, prefixSetting):
		c.activateSetting(strings.TrimPrefix(id, prefixSetting))
	case strings.HasPrefix(id, prefixLogin):
		c.activateLogin(strings.TrimPrefix(id, prefixLogin))
	case strings.HasPrefix(id, prefixResult):
		c.activateResult(strings.TrimPrefix(id, prefixResult))
	default:
		logging.Debug("Nothing to activate", zap.String("element", id))
	}
}

// Activate runs the action of element id, as ENTER on it would.
func (c *Controller) Activate(id string) {
	if _, ok := c.reg.Lookup(id); !ok {
		return
	}
	c.setFocus(id)
	c.activate(id)
}

func (c *Controller) activateCard(card string) {
	switch card {
	case "refresh":
		c.refreshHome()
	case "logout":
		c.logout()
	default:
		s, err := ParseScreen(card)
		if err != nil {
			logging.Warn("Unknown home card", zap.String("card", card))
			return
		}
		c.showScreen(s, "menu", "")
	}
}

// selectCategory dispatches a category pick to the list of the active
// screen.
func (c *Controller) selectCategory(id string) {
	switch c.st.screen {
	case LiveTV:
		c.selectLiveCategory(id)
	case Movies:
		c.selectVodCategory(id)
	case Series:
		c.selectSeriesCategory(id)
	}
}

// gated runs apply directly, or after a PIN verify when the category is
// adult content and a PIN is configured.
func (c *Controller) gated(categoryID, categoryName string, apply func()) {
	if !c.gate.Locked(categoryID, categoryName, c.st.settings.PinConfigured()) {
		apply()
		return
	}
	logging.Info("Category locked, asking for PIN", zap.String("category", categoryID))
	c.openVerify(func() {
		c.gate.Unlock(categoryID)
		apply()
	})
}

func (c *Controller) cancelScreenTasks() {
	for _, t := range []string{schedule.TaskEPGRefresh, schedule.TaskFSEPG, schedule.TaskLongPress, schedule.TaskFavoritesRefresh} {
		c.sched.Cancel(t)
	}
}
