package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/muurk/polfunbox/internal/config"
	"github.com/muurk/polfunbox/internal/keymap"
	"github.com/muurk/polfunbox/internal/logging"
	"github.com/muurk/polfunbox/internal/player"
	"github.com/muurk/polfunbox/internal/schedule"
	"github.com/muurk/polfunbox/internal/xtream"
	"go.uber.org/zap"
)

// overlayState is the VOD player overlay.
type overlayState struct {
	title    string
	info     string
	controls bool
	paused   bool
	loaded   bool
	pos      time.Duration
	dur      time.Duration
}

type movieState struct {
	id        string
	name      string
	cover     string
	rating    string
	year      string
	duration  string
	genre     string
	plot      string
	director  string
	cast      string
	trailer   string
	category  string
	loadedAll bool
}

type seriesState struct {
	id     string
	name   string
	cover  string
	info   *xtream.SeriesInfo
	season string
}

// ---- overlay ----

// openOverlay starts VOD playback of url in a fresh player.
func (c *Controller) openOverlay(url, title, info string) {
	c.closeOverlay()
	c.hideFullscreenEPG()

	c.vodGen++
	c.vod = c.opts.VodPlayer(c.playerHandler(vodKind, c.vodGen))
	if title == "" {
		title = "Odtwarzanie"
	}
	c.st.overlay = &overlayState{title: title, info: info}
	logging.Info("Opening video overlay", zap.String("title", title), zap.String("episode", info))

	c.showControls()
	c.notifyHost(HostNavigation)
	c.loadInto(vodKind, c.vod, c.vodGen, url)
}

// closeOverlay stops VOD playback. It is a no-op without an overlay.
func (c *Controller) closeOverlay() {
	if c.st.overlay == nil {
		return
	}
	c.sched.Cancel(schedule.TaskVODControls)
	c.destroyPlayer(c.vod)
	c.vod = nil
	c.vodGen++
	c.st.overlay = nil
	logging.Debug("Video overlay closed")
}

func (c *Controller) showControls() {
	if c.st.overlay == nil {
		return
	}
	c.st.overlay.controls = true
	c.sched.After(schedule.TaskVODControls, ControlsHideDelay, c.hideControls)
}

func (c *Controller) hideControls() {
	if c.st.overlay != nil {
		c.st.overlay.controls = false
	}
	c.sched.Cancel(schedule.TaskVODControls)
}

func (c *Controller) overlayKey(action keymap.Action) Result {
	switch action {
	case keymap.Back, keymap.Stop:
		c.back()
	case keymap.Play, keymap.Pause, keymap.PlayPause:
		c.control(c.vod, "toggle-pause", func(p player.Player) error { return p.TogglePause() })
		c.showControls()
	case keymap.Left, keymap.Rewind:
		c.seek(-SeekStep)
	case keymap.Right, keymap.FastForward:
		c.seek(SeekStep)
	case keymap.Up, keymap.Down, keymap.Enter:
		if c.st.overlay.controls {
			c.hideControls()
		} else {
			c.showControls()
		}
	default:
		c.showControls()
	}
	return Result{Handled: true}
}

func (c *Controller) seek(offset time.Duration) {
	c.control(c.vod, "seek", func(p player.Player) error { return p.Seek(offset) })
	c.showControls()
}

func (c *Controller) onVodEvent(ev player.Event) {
	o := c.st.overlay
	if o == nil {
		return
	}
	switch ev.Type {
	case player.EventProgress:
		o.pos, o.dur = ev.Position, ev.Duration
	case player.EventPlaying:
		o.paused = false
		o.loaded = true
		c.hideControls()
	case player.EventPaused:
		o.paused = true
		c.showControls()
	case player.EventCompleted:
		logging.Info("Playback finished", zap.String("title", o.title))
		c.closeOverlay()
		c.focusFirst()
		c.notifyHost(HostNavigation)
	case player.EventError:
		if !ev.Fatal {
			logging.Warn("VOD player error", zap.Error(ev.Err))
			return
		}
		logging.Error("VOD playback failed", zap.String("title", o.title), zap.Error(ev.Err))
		c.closeOverlay()
		c.focusFirst()
		c.showAlert(AlertError, "Błąd odtwarzania")
		c.notifyHost(HostNavigation)
	}
}

// ---- movies ----

func (c *Controller) enterMovies() {
	if len(c.st.vodCats) > 0 && len(c.st.allMovies) > 0 {
		c.restoreVodCategory()
		return
	}

	c.st.loading = true
	client := c.client
	needStreams := len(c.st.allMovies) == 0
	c.async(purposeScreen, func(ctx context.Context) func() {
		cats, err := client.VodCategories(ctx)
		if err != nil {
			return c.loadFailed("vod categories", err)
		}
		var movies []xtream.VodStream
		if needStreams {
			if movies, err = client.VodStreams(ctx, ""); err != nil {
				return c.loadFailed("vod streams", err)
			}
		}
		return func() {
			c.st.loading = false
			c.st.vodCats = cats
			if needStreams {
				c.st.allMovies = movies
			}
			c.restoreVodCategory()
		}
	})
}

// restoreVodCategory keeps the category chosen before a details screen, or
// selects the first one.
func (c *Controller) restoreVodCategory() {
	focused := c.st.focus
	if c.st.vodCat != "" {
		c.applyVodCategory(c.st.vodCat)
		if _, ok := c.reg.Lookup(focused); ok {
			c.setFocus(focused)
		}
		return
	}
	if len(c.st.vodCats) > 0 {
		id := c.st.vodCats[0].ID.String()
		c.applyVodCategory(id)
		c.setFocus(prefixCategory + id)
		return
	}
	c.relayout()
}

func (c *Controller) selectVodCategory(id string) {
	if id == HistoryCategory {
		c.applyVodCategory(id)
		return
	}
	c.gated(id, categoryName(c.st.vodCats, id), func() { c.applyVodCategory(id) })
}

func (c *Controller) applyVodCategory(id string) {
	c.st.vodCat = id
	c.resetScroll(GroupItems)
	if id == HistoryCategory {
		c.st.movies = c.movieHistory()
	} else {
		c.st.movies = nil
		for _, m := range c.st.allMovies {
			if m.CategoryID.String() == id {
				c.st.movies = append(c.st.movies, m)
			}
		}
	}
	c.relayout()
}

// movieHistory maps watch history onto the movie list. Entries no longer
// listed by the panel are kept with the data stored in the history.
func (c *Controller) movieHistory() []xtream.VodStream {
	byID := make(map[string]xtream.VodStream, len(c.st.allMovies))
	for _, m := range c.st.allMovies {
		byID[m.StreamID.String()] = m
	}
	var out []xtream.VodStream
	for _, h := range c.profile.History(config.HistoryMovies) {
		if m, ok := byID[h.ID]; ok {
			out = append(out, m)
			continue
		}
		out = append(out, xtream.VodStream{Name: h.Name, StreamID: xtream.FlexString(h.ID), StreamIcon: h.Cover})
	}
	return out
}

func categoryName(cats []xtream.Category, id string) string {
	for _, cat := range cats {
		if cat.ID.String() == id {
			return cat.Name
		}
	}
	return ""
}

func (c *Controller) findMovie(id string) (xtream.VodStream, bool) {
	for _, list := range [][]xtream.VodStream{c.st.movies, c.st.allMovies} {
		for _, m := range list {
			if m.StreamID.String() == id {
				return m, true
			}
		}
	}
	return xtream.VodStream{}, false
}

// openMovie fetches get_vod_info and shows the details screen. Without the
// extra info the list data is shown.
func (c *Controller) openMovie(id string) {
	m, ok := c.findMovie(id)
	if !ok {
		logging.Warn("Movie not found", zap.String("stream_id", id))
		return
	}
	base := &movieState{
		id:       id,
		name:     m.Name,
		cover:    m.StreamIcon,
		rating:   ratingText(m.Rating5, m.Rating),
		category: categoryName(c.st.vodCats, m.CategoryID.String()),
	}

	c.st.loading = true
	client := c.client
	c.async(purposeDetails, func(ctx context.Context) func() {
		info, err := client.VodInfo(ctx, id)
		return func() {
			c.st.loading = false
			if err != nil {
				logging.Warn("Movie info unavailable", zap.String("stream_id", id), zap.Error(err))
			} else {
				base.merge(info)
			}
			c.st.movie = base
			c.showScreen(MovieDetails, "open movie", idPlay)
		}
	})
}

func (m *movieState) merge(info *xtream.VodInfo) {
	in := info.Info
	if in.Name != "" {
		m.name = in.Name
	}
	if in.CoverBig != "" && m.cover == "" {
		m.cover = in.CoverBig
	}
	m.year = in.Year.String()
	if m.year == "" {
		m.year = in.ReleaseDate
	}
	m.duration = formatDuration(in.Duration.String())
	if m.rating == "" {
		if r := in.Rating.Float(); r > 0 {
			m.rating = fmt.Sprintf("★ %.1f", r)
		}
	}
	m.genre = in.Genre
	m.plot = in.Plot
	if m.plot == "" {
		m.plot = in.Description
	}
	m.director = in.Director
	m.cast = in.Cast
	m.trailer = in.Trailer
	m.loadedAll = true
}

// formatDuration keeps "hh:mm:ss" values and renders a minute count as
// "1h 45min" or "45 min".
func formatDuration(d string) string {
	d = strings.TrimSpace(d)
	if d == "" || strings.Contains(d, ":") {
		return d
	}
	var mins int
	if _, err := fmt.Sscanf(d, "%d", &mins); err != nil || mins <= 0 {
		return ""
	}
	if mins >= 60 {
		return fmt.Sprintf("%dh %dmin", mins/60, mins%60)
	}
	return fmt.Sprintf("%d min", mins)
}

func (c *Controller) playMovie() {
	m := c.st.movie
	if m == nil || c.client == nil {
		return
	}
	c.addHistory(config.HistoryItem{ID: m.id, Name: m.name, Cover: m.cover, Type: config.HistoryMovies})

	format := c.profile.Settings().VodFormat
	logging.Info("Playing movie", zap.String("movie", m.name), zap.String("stream_id", m.id))
	c.openOverlay(c.client.MovieURL(m.id, format), m.name, "")
}

func (c *Controller) addHistory(item config.HistoryItem) {
	if err := c.profile.AddHistory(item); err != nil {
		logging.Warn("Failed to record watch history", zap.Error(err))
	}
}

// ---- series ----

func (c *Controller) enterSeries() {
	if len(c.st.seriesCats) > 0 && len(c.st.allSeries) > 0 {
		c.restoreSeriesCategory()
		return
	}

	c.st.loading = true
	client := c.client
	needStreams := len(c.st.allSeries) == 0
	c.async(purposeScreen, func(ctx context.Context) func() {
		cats, err := client.SeriesCategories(ctx)
		if err != nil {
			return c.loadFailed("series categories", err)
		}
		var list []xtream.Series
		if needStreams {
			if list, err = client.Series(ctx, ""); err != nil {
				return c.loadFailed("series", err)
			}
		}
		return func() {
			c.st.loading = false
			c.st.seriesCats = cats
			if needStreams {
				c.st.allSeries = list
			}
			c.restoreSeriesCategory()
		}
	})
}

func (c *Controller) restoreSeriesCategory() {
	focused := c.st.focus
	if c.st.seriesCat != "" {
		c.applySeriesCategory(c.st.seriesCat)
		if _, ok := c.reg.Lookup(focused); ok {
			c.setFocus(focused)
		}
		return
	}
	if len(c.st.seriesCats) > 0 {
		id := c.st.seriesCats[0].ID.String()
		c.applySeriesCategory(id)
		c.setFocus(prefixCategory + id)
		return
	}
	c.relayout()
}

func (c *Controller) selectSeriesCategory(id string) {
	if id == HistoryCategory {
		c.applySeriesCategory(id)
		return
	}
	c.gated(id, categoryName(c.st.seriesCats, id), func() { c.applySeriesCategory(id) })
}

func (c *Controller) applySeriesCategory(id string) {
	c.st.seriesCat = id
	c.resetScroll(GroupItems)
	if id == HistoryCategory {
		c.st.seriesList = c.seriesHistory()
	} else {
		c.st.seriesList = nil
		for _, s := range c.st.allSeries {
			if s.CategoryID.String() == id {
				c.st.seriesList = append(c.st.seriesList, s)
			}
		}
	}
	c.relayout()
}

func (c *Controller) seriesHistory() []xtream.Series {
	byID := make(map[string]xtream.Series, len(c.st.allSeries))
	for _, s := range c.st.allSeries {
		byID[s.SeriesID.String()] = s
	}
	var out []xtream.Series
	for _, h := range c.profile.History(config.HistorySeries) {
		if s, ok := byID[h.ID]; ok {
			out = append(out, s)
			continue
		}
		out = append(out, xtream.Series{Name: h.Name, SeriesID: xtream.FlexString(h.ID), Cover: h.Cover})
	}
	return out
}

func (c *Controller) findSeries(id string) (xtream.Series, bool) {
	for _, list := range [][]xtream.Series{c.st.seriesList, c.st.allSeries} {
		for _, s := range list {
			if s.SeriesID.String() == id {
				return s, true
			}
		}
	}
	return xtream.Series{SeriesID: xtream.FlexString(id)}, false
}

// openSeries fetches get_series_info and shows the seasons. Failures leave
// the list screen in place.
func (c *Controller) openSeries(id string) {
	s, _ := c.findSeries(id)
	c.st.loading = true
	client := c.client
	c.async(purposeDetails, func(ctx context.Context) func() {
		info, err := client.SeriesInfo(ctx, id)
		return func() {
			c.st.loading = false
			if err != nil {
				logging.Error("Series info failed", zap.String("series_id", id), zap.Error(err))
				c.showAlert(AlertError, "Błąd ładowania")
				return
			}
			if info == nil || (info.Info.Name == "" && len(info.Episodes) == 0) {
				c.showAlert(AlertError, "Nie można załadować serialu")
				return
			}
			st := &seriesState{id: id, name: info.Info.Name, cover: info.Info.Cover, info: info}
			if st.name == "" {
				st.name = s.Name
			}
			if st.cover == "" {
				st.cover = s.Cover
			}
			if seasons := info.Episodes.Numbers(); len(seasons) > 0 {
				st.season = seasons[0]
			}
			c.st.series = st
			c.showScreen(SeriesDetails, "open series", prefixSeason+st.season)
		}
	})
}

func (c *Controller) openSeason(n string) {
	s := c.st.series
	if s == nil || s.info == nil {
		return
	}
	if _, ok := s.info.Episodes[n]; !ok {
		return
	}
	s.season = n
	c.showScreen(Episodes, "season", "")
}

func (c *Controller) seasonEpisodes() []xtream.Episode {
	s := c.st.series
	if s == nil || s.info == nil {
		return nil
	}
	return s.info.Episodes[s.season]
}

func episodeLabel(ep xtream.Episode) string {
	title := ep.Title
	if title == "" {
		title = "Odcinek " + ep.EpisodeNum.String()
	}
	return fmt.Sprintf("%s. %s", ep.EpisodeNum, title)
}

func (c *Controller) playEpisode(id string) {
	s := c.st.series
	if s == nil || c.client == nil {
		return
	}
	var ep xtream.Episode
	found := false
	for _, e := range c.seasonEpisodes() {
		if e.ID.String() == id {
			ep, found = e, true
			break
		}
	}
	if !found {
		return
	}

	season := ep.Season.String()
	if season == "" {
		season = s.season
	}
	info := fmt.Sprintf("S%sE%s", season, ep.EpisodeNum)
	if ep.Title != "" {
		info += " - " + ep.Title
	}
	ext := ep.ContainerExtension
	if ext == "" {
		ext = xtream.DefaultVodFormat
	}

	c.addHistory(config.HistoryItem{
		ID:         s.id,
		Name:       s.name,
		Cover:      s.cover,
		Type:       config.HistorySeries,
		EpisodeID:  id,
		SeasonNum:  season,
		EpisodeNum: ep.EpisodeNum.String(),
	})
	logging.Info("Playing episode", zap.String("series", s.name), zap.String("episode", info))
	c.openOverlay(c.client.SeriesURL(id, ext), s.name, info)
}
