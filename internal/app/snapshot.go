package app

import (
	"maps"
	"time"

	"github.com/muurk/polfunbox/internal/epg"
	"github.com/muurk/polfunbox/internal/focus"
	"github.com/muurk/polfunbox/internal/pin"
)

// Snapshot is a copy of everything a front end needs to draw the current
// state. It shares nothing with the controller.
type Snapshot struct {
	Screen   Screen
	Title    string
	Focus    string
	Elements []ElementView
	Loading  bool
	Editing  string

	// Viewports holds the scroll state of scrolled groups. A group
	// missing here is at the top.
	Viewports map[string]focus.Viewport

	Alert *Alert

	Live      *LiveView
	Overlay   *OverlayView
	Movie     *MovieView
	Series    *SeriesView
	Account   *AccountView
	PIN       *PINView
	Search    *SearchView
	CanGoBack bool

	DeviceCode string
	Platform   string

	// Debug holds the recent key log while the debug overlay is on.
	Debug []string
}

// LiveView is the live TV player pane.
type LiveView struct {
	ChannelID     string
	ChannelName   string
	Playing       bool
	Paused        bool
	Fullscreen    bool
	FullscreenEPG bool
	EPG           epg.Display
}

// OverlayView is the VOD player overlay.
type OverlayView struct {
	Title    string
	Info     string
	Controls bool
	Paused   bool
	Loading  bool
	Position time.Duration
	Duration time.Duration
}

// MovieView is the movie details screen.
type MovieView struct {
	Name     string
	Cover    string
	Rating   string
	Year     string
	Duration string
	Genre    string
	Category string
	Plot     string
	Director string
	Cast     string
}

// SeriesView is the series details and episodes screens.
type SeriesView struct {
	Name     string
	Cover    string
	Plot     string
	Genre    string
	Year     string
	Cast     string
	Director string
	Rating   string
	Season   string
}

// AccountView is the account screen.
type AccountView struct {
	Username       string
	Server         string
	Status         string
	Expires        time.Time
	Created        time.Time
	Connections    string
	MaxConnections string
}

// PINView is the PIN modal.
type PINView struct {
	Title   string
	Entered int
	Length  int
	Error   string
}

// SearchView is the search modal. Results are in Elements.
type SearchView struct {
	Query string
	Hint  string
}

// Snapshot returns the current state for rendering.
func (c *Controller) Snapshot() Snapshot {
	st := &c.st
	s := Snapshot{
		Screen:     st.screen,
		Title:      st.screen.Title(),
		Focus:      st.focus,
		Viewports:  maps.Clone(st.viewports),
		Loading:    st.loading || st.login.busy,
		Editing:    st.editing,
		CanGoBack:  c.CanGoBack(),
		DeviceCode: c.deviceKey,
		Platform:   c.opts.Platform.Name,
	}

	for _, el := range c.reg.Elements() {
		s.Elements = append(s.Elements, c.views[el.ID])
	}
	if st.alert != nil {
		a := *st.alert
		s.Alert = &a
	}
	if st.debug {
		s.Debug = append([]string(nil), st.debugLog...)
	}

	if st.screen == LiveTV {
		lv := &LiveView{
			ChannelID:     st.channel,
			Playing:       st.liveLoaded && !st.livePaused,
			Paused:        st.livePaused,
			Fullscreen:    st.fullscreen,
			FullscreenEPG: st.fsEPG,
			EPG:           st.epg,
		}
		if ch, ok := c.findChannel(st.channel); ok && st.channel != "" {
			lv.ChannelName = ch.Name
		} else {
			lv.ChannelName = "Wybierz kanał"
		}
		s.Live = lv
	}

	if o := st.overlay; o != nil {
		s.Overlay = &OverlayView{
			Title:    o.title,
			Info:     o.info,
			Controls: o.controls,
			Paused:   o.paused,
			Loading:  !o.loaded,
			Position: o.pos,
			Duration: o.dur,
		}
	}

	if m := st.movie; m != nil && st.screen == MovieDetails {
		s.Movie = &MovieView{
			Name:     m.name,
			Cover:    m.cover,
			Rating:   m.rating,
			Year:     m.year,
			Duration: m.duration,
			Genre:    m.genre,
			Category: m.category,
			Plot:     m.plot,
			Director: m.director,
			Cast:     m.cast,
		}
	}

	if sr := st.series; sr != nil && (st.screen == SeriesDetails || st.screen == Episodes) {
		v := &SeriesView{Name: sr.name, Cover: sr.cover, Season: sr.season}
		if sr.info != nil {
			in := sr.info.Info
			v.Plot, v.Genre, v.Cast, v.Director = in.Plot, in.Genre, in.Cast, in.Director
			v.Year = in.Year.String()
			if v.Year == "" {
				v.Year = in.ReleaseDate
			}
			v.Rating = ratingText("", in.Rating)
		}
		s.Series = v
	}

	if st.screen == Account && c.client != nil {
		creds := c.client.Credentials()
		a := &AccountView{Username: creds.Username, Server: creds.ServerURL}
		if st.account != nil && st.account.UserInfo != nil {
			ui := st.account.UserInfo
			a.Status = accountStatus(ui.Status)
			if exp := ui.ExpDate.Int(); exp > 0 {
				a.Expires = time.Unix(exp, 0)
			}
			if created := ui.CreatedAt.Int(); created > 0 {
				a.Created = time.Unix(created, 0)
			}
			a.Connections = orDefault(ui.ActiveConnections.String(), "0")
			a.MaxConnections = orDefault(ui.MaxConnections.String(), "1")
		}
		s.Account = a
	}

	if p := st.pin; p != nil {
		s.PIN = &PINView{Title: p.Title(), Entered: p.Entered(), Length: pin.Length, Error: p.Error()}
	}
	if sr := st.search; sr != nil {
		s.Search = &SearchView{Query: sr.query, Hint: sr.hint}
	}
	return s
}

func accountStatus(status string) string {
	switch status {
	case "Active":
		return "Aktywne"
	case "":
		return "--"
	}
	return status
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// FirstVisible returns the index, among the elements of group, of the first
// element not scrolled out above the group's viewport.
func (s Snapshot) FirstVisible(group string) int {
	vp, ok := s.Viewports[group]
	if !ok {
		return 0
	}
	n := 0
	for _, el := range s.Elements {
		if el.Group != group {
			continue
		}
		if el.Bounds.Y-vp.Offset >= vp.Top {
			break
		}
		n++
	}
	return n
}
