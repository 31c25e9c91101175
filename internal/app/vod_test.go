package app

import (
	"testing"

	"github.com/muurk/polfunbox/internal/config"
	"github.com/muurk/polfunbox/internal/keymap"
	"github.com/muurk/polfunbox/internal/player"
)

func movieDetails(t *testing.T, id string) (*harness, *Controller) {
	t.Helper()
	h := newHarness(t)
	c := h.loggedIn()
	c.Navigate(Movies)
	c.Activate(prefixMovie + id)
	if c.Screen() != MovieDetails {
		t.Fatalf("Screen() = %v, want movieDetails", c.Screen())
	}
	return h, c
}

func TestMovieDetails(t *testing.T) {
	_, c := movieDetails(t, "501")

	s := c.Snapshot()
	if s.Focus != idPlay {
		t.Errorf("Focus = %q, want %s", s.Focus, idPlay)
	}
	m := s.Movie
	if m == nil {
		t.Fatal("Movie view missing")
	}
	if m.Name != "Miś" || m.Year != "1981" || m.Genre != "Komedia" || m.Category != "Komedie" {
		t.Errorf("Movie = %+v", m)
	}
	if m.Duration != "01:51:00" {
		t.Errorf("Duration = %q", m.Duration)
	}
}

func TestMovieDetailsWithoutInfo(t *testing.T) {
	h := newHarness(t)
	h.panel.failWith("get_vod_info", 500)
	c := h.loggedIn()
	c.Navigate(Movies)

	c.Activate("vod:502")

	if c.Screen() != MovieDetails {
		t.Fatalf("Screen() = %v, want movieDetails", c.Screen())
	}
	if m := c.Snapshot().Movie; m == nil || m.Name != "Seksmisja" {
		t.Errorf("Movie = %+v", m)
	}
}

func TestPlayMovie(t *testing.T) {
	h, c := movieDetails(t, "501")

	c.Activate(idPlay)

	if got, want := h.lastPlayer().URL(), h.panel.URL()+"/movie/jan/tajne/501.mp4"; got != want {
		t.Errorf("player URL = %q, want %q", got, want)
	}
	o := c.Snapshot().Overlay
	if o == nil {
		t.Fatal("overlay not open")
	}
	if o.Title != "Miś" || o.Loading {
		t.Errorf("Overlay = %+v", o)
	}
	hist := h.profile.History(config.HistoryMovies)
	if len(hist) != 1 || hist[0].ID != "501" {
		t.Errorf("movie history = %+v", hist)
	}
}

func TestOverlayControls(t *testing.T) {
	h, c := movieDetails(t, "501")
	c.Activate(idPlay)

	if c.Snapshot().Overlay.Controls {
		t.Fatal("controls shown once playback started")
	}

	h.press(keymap.Enter)
	if !c.Snapshot().Overlay.Controls {
		t.Fatal("ENTER did not show the controls")
	}
	h.clock.Advance(ControlsHideDelay)
	if c.Snapshot().Overlay.Controls {
		t.Error("controls not hidden after the delay")
	}

	h.press(keymap.PlayPause)
	o := c.Snapshot().Overlay
	if !o.Paused || !o.Controls {
		t.Errorf("after PLAY/PAUSE Overlay = %+v, want paused with controls", o)
	}
	if !h.lastPlayer().Paused() {
		t.Error("player not paused")
	}
}

func TestOverlaySeek(t *testing.T) {
	h, c := movieDetails(t, "501")
	c.Activate(idPlay)
	p := h.lastPlayer()
	p.SetDuration(60 * SeekStep)

	h.press(keymap.Right)
	h.press(keymap.FastForward)
	h.press(keymap.Left)

	if got := c.Snapshot().Overlay.Position; got != SeekStep {
		t.Errorf("Position = %v, want %v", got, SeekStep)
	}
}

func TestOverlayBackClosesPlayer(t *testing.T) {
	h, c := movieDetails(t, "501")
	c.Activate(idPlay)
	p := h.lastPlayer()

	h.press(keymap.Back)

	if c.Snapshot().Overlay != nil {
		t.Fatal("overlay still open")
	}
	if p.URL() != "" {
		t.Error("VOD player not destroyed")
	}
	if c.Screen() != MovieDetails {
		t.Errorf("Screen() = %v, want movieDetails", c.Screen())
	}
}

func TestOverlayFatalErrorAlerts(t *testing.T) {
	h, c := movieDetails(t, "501")
	c.Activate(idPlay)

	c.onPlayerEvent(vodKind, c.vodGen, player.Event{Type: player.EventError, Fatal: true})

	if c.Snapshot().Overlay != nil {
		t.Fatal("overlay open after a fatal error")
	}
	if a := c.Snapshot().Alert; a == nil || a.Message != "Błąd odtwarzania" {
		t.Errorf("Alert = %+v", a)
	}
	if ev := h.lastHost(); ev.Type != HostNavigation {
		t.Errorf("host event = %v", ev.Type)
	}
}

func TestStalePlayerEventIgnored(t *testing.T) {
	_, c := movieDetails(t, "501")
	c.Activate(idPlay)
	old := c.vodGen

	c.PressAction(keymap.Back)
	c.Activate(idPlay)
	c.onPlayerEvent(vodKind, old, player.Event{Type: player.EventCompleted})

	if c.Snapshot().Overlay == nil {
		t.Error("event from a destroyed player closed the new overlay")
	}
}

func TestPlayEpisode(t *testing.T) {
	h := newHarness(t)
	c := h.loggedIn()
	c.Navigate(Series)
	c.Activate("series:701")

	if s := c.Snapshot(); s.Series == nil || s.Series.Season != "1" {
		t.Fatalf("Series = %+v, want first season selected", s.Series)
	}
	c.Activate("season:1")
	if c.Screen() != Episodes {
		t.Fatalf("Screen() = %v, want episodes", c.Screen())
	}
	want := []string{"ep:1001", "ep:1002"}
	got := elementIDs(c.Snapshot(), prefixEpisode)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("episodes = %v, want %v", got, want)
	}
	if el, _ := h.element("ep:1002"); el.Label != "2. Odcinek 2" {
		t.Errorf("untitled episode label = %q", el.Label)
	}

	c.Activate("ep:1001")

	if got, want := h.lastPlayer().URL(), h.panel.URL()+"/series/jan/tajne/1001.mp4"; got != want {
		t.Errorf("player URL = %q, want %q", got, want)
	}
	o := c.Snapshot().Overlay
	if o == nil || o.Title != "Ranczo" || o.Info != "S1E1 - Spadek" {
		t.Errorf("Overlay = %+v", o)
	}
	hist := h.profile.History(config.HistorySeries)
	if len(hist) != 1 || hist[0].EpisodeID != "1001" || hist[0].SeasonNum != "1" {
		t.Errorf("series history = %+v", hist)
	}
}

func TestBackChainToExit(t *testing.T) {
	h := newHarness(t)
	c := h.loggedIn()
	c.Navigate(Series)
	c.Activate("series:701")
	c.Activate("season:1")
	c.Activate("ep:1001")

	var got []Screen
	for range 4 {
		h.press(keymap.Back)
		got = append(got, c.Screen())
	}
	want := []Screen{Episodes, SeriesDetails, Series, Home}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("BACK chain = %v, want %v", got, want)
		}
	}

	h.press(keymap.Back)
	if ev := h.lastHost(); ev.Type != HostExit {
		t.Errorf("last host event = %v, want %v", ev.Type, HostExit)
	}
}

func TestSeriesLoadFailureAlerts(t *testing.T) {
	h := newHarness(t)
	c := h.loggedIn()
	c.Navigate(Series)
	h.panel.failWith("get_series_info", 500)

	c.Activate("series:702")

	if c.Screen() != Series {
		t.Errorf("Screen() = %v, want series", c.Screen())
	}
	if a := c.Snapshot().Alert; a == nil || a.Type != AlertError {
		t.Errorf("Alert = %+v", a)
	}
}
