package app

import (
	"fmt"

	"github.com/muurk/polfunbox/internal/focus"
	"github.com/muurk/polfunbox/internal/xtream"
)

// Layout geometry in virtual pixels of a 1280x720 screen. Front ends do
// not have to draw at these positions; focus movement is computed from them.
const (
	contentTop    = 60.0
	contentHeight = 660.0

	navW = 140.0
	navH = 40.0

	rowH      = 44.0
	categoryW = 300.0
	itemX     = 320.0
	channelW  = 400.0

	playerX = 740.0
	playerW = 540.0
	playerH = 304.0

	gridCols  = 5
	posterW   = 180.0
	posterH   = 270.0
	posterGap = 10.0

	formX = 100.0
	formW = 500.0
	formH = 50.0
)

// Focus groups. ElementView.Group holds one of these.
const (
	GroupNav        = "nav"
	GroupCategories = "categories"
	GroupChannels   = "channels"
	GroupPlayer     = "player"
	GroupItems      = "items"
	GroupActions    = "actions"
	GroupSeasons    = "seasons"
	GroupEpisodes   = "episodes"
	GroupCards      = "cards"
	GroupSettings   = "settings"
	GroupLogin      = "login"
	GroupSearch     = "search"
)

// Element id prefixes and fixed ids.
const (
	prefixNav      = "nav:"
	prefixCard     = "card:"
	prefixCategory = "cat:"
	prefixChannel  = "ch:"
	prefixMovie    = "vod:"
	prefixSeries   = "series:"
	prefixSeason   = "season:"
	prefixEpisode  = "ep:"
	prefixSetting  = "set:"
	prefixLogin    = "login:"
	prefixResult   = "sr:"

	idNavHome          = "nav:home"
	idNavSearch        = "nav:search"
	idPlayerVideo      = "player:video"
	idPlayerFullscreen = "player:fullscreen"
	idPlay             = "btn:play"
	idBack             = "btn:back"
	idLogout           = "btn:logout"
	idSearchInput      = "search:input"
)

// Pseudo-categories.
const (
	FavoritesCategory = "favorites"
	HistoryCategory   = "history"

	favoritesLabel = "★ Ulubione"
	historyLabel   = "📜 Historia"
)

// ElementView is a focusable element as the presentation layer sees it.
type ElementView struct {
	ID     string
	Label  string
	Detail string
	Group  string
	Bounds focus.Rect

	Selected bool
	Favorite bool
	Locked   bool
	Disabled bool

	// Editable elements take text input; ENTER starts editing.
	Editable bool
	// Secret input is never echoed.
	Secret bool
}

func newViewport() focus.Viewport {
	return focus.Viewport{Top: contentTop, Height: contentHeight}
}

func scrollable(group string) bool {
	switch group {
	case GroupCategories, GroupChannels, GroupItems, GroupEpisodes, GroupSearch:
		return true
	}
	return false
}

func (c *Controller) add(v ElementView) {
	c.reg.Register(focus.Element{ID: v.ID, Bounds: v.Bounds, Disabled: v.Disabled, Group: v.Group})
	c.views[v.ID] = v
}

// relayout rebuilds the focusable elements of the active screen. Focus is
// kept when its element survived and moves to the first element otherwise.
func (c *Controller) relayout() {
	c.reg.Reset()
	c.views = make(map[string]ElementView)

	if c.st.search != nil {
		c.layoutSearch()
	} else {
		switch c.st.screen {
		case Login:
			c.layoutLogin()
		case Home:
			c.layoutHome()
		case LiveTV:
			c.layoutLiveTV()
		case Movies:
			c.layoutMovies()
		case Series:
			c.layoutSeries()
		case MovieDetails:
			c.layoutMovieDetails()
		case SeriesDetails:
			c.layoutSeriesDetails()
		case Episodes:
			c.layoutEpisodes()
		case Account:
			c.layoutAccount()
		case Settings:
			c.layoutSettings()
		}
	}

	if _, ok := c.reg.Lookup(c.st.focus); !ok {
		c.focusFirst()
	}
}

func (c *Controller) layoutNav(withSearch bool) {
	c.add(ElementView{ID: idNavHome, Label: "Menu", Group: GroupNav, Bounds: focus.Rect{X: 0, Y: 0, W: navW, H: navH}})
	if withSearch {
		c.add(ElementView{ID: idNavSearch, Label: "Szukaj", Group: GroupNav, Bounds: focus.Rect{X: navW + 10, Y: 0, W: navW, H: navH}})
	}
}

func (c *Controller) layoutCategories(cats []categoryView) {
	for i, cat := range cats {
		c.add(ElementView{
			ID:       prefixCategory + cat.id,
			Label:    cat.name,
			Group:    GroupCategories,
			Bounds:   focus.Rect{X: 0, Y: contentTop + float64(i)*rowH, W: categoryW, H: rowH},
			Selected: cat.selected,
			Locked:   cat.locked,
		})
	}
}

type categoryView struct {
	id       string
	name     string
	selected bool
	locked   bool
}

func (c *Controller) categoryViews(pseudoID, pseudoName string, cats []xtream.Category, current string) []categoryView {
	out := make([]categoryView, 0, len(cats)+1)
	out = append(out, categoryView{id: pseudoID, name: pseudoName, selected: current == pseudoID})
	for _, cat := range cats {
		id := cat.ID.String()
		out = append(out, categoryView{
			id:       id,
			name:     cat.Name,
			selected: current == id,
			locked:   c.gate.Locked(id, cat.Name, c.st.settings.PinConfigured()),
		})
	}
	return out
}

func (c *Controller) layoutLogin() {
	f := c.st.login
	rows := []ElementView{
		{ID: prefixLogin + fieldServer, Label: "Adres serwera", Detail: f.server, Editable: true},
		{ID: prefixLogin + fieldUser, Label: "Użytkownik", Detail: f.user, Editable: true},
		{ID: prefixLogin + fieldPass, Label: "Hasło", Detail: mask(f.pass), Editable: true, Secret: true},
		{ID: prefixLogin + "submit", Label: "Zaloguj", Disabled: f.busy},
		{ID: prefixLogin + "device", Label: "Sprawdź kod urządzenia", Detail: c.deviceKey, Disabled: f.busy},
		{ID: prefixLogin + "register", Label: "Wyślij rejestrację", Disabled: f.busy},
		{ID: prefixLogin + "restart", Label: "Restart aplikacji"},
	}
	for i, row := range rows {
		row.Group = GroupLogin
		row.Bounds = focus.Rect{X: formX, Y: 100 + float64(i)*60, W: formW, H: formH}
		c.add(row)
	}
}

func mask(s string) string {
	out := make([]rune, 0, len(s))
	for range s {
		out = append(out, '•')
	}
	return string(out)
}

// Home cards in display order.
var homeCards = []struct {
	id, label string
}{
	{"liveTv", "Telewizja"},
	{"movies", "Filmy"},
	{"series", "Seriale"},
	{"refresh", "Odśwież"},
	{"account", "Konto"},
	{"settings", "Ustawienia"},
	{"logout", "Wyloguj"},
}

func (c *Controller) layoutHome() {
	counts := map[string]int{
		"liveTv": len(c.st.allLive),
		"movies": len(c.st.allMovies),
		"series": len(c.st.allSeries),
	}
	for i, card := range homeCards {
		v := ElementView{ID: prefixCard + card.id, Label: card.label, Group: GroupCards}
		if i < 3 {
			v.Bounds = focus.Rect{X: 100 + float64(i)*370, Y: 200, W: 340, H: 200}
			if c.st.homeLoading {
				v.Detail = "..."
			} else {
				v.Detail = fmt.Sprintf("%d", counts[card.id])
			}
		} else {
			v.Bounds = focus.Rect{X: 100 + float64(i-3)*280, Y: 480, W: 250, H: 100}
		}
		c.add(v)
	}
}

func (c *Controller) layoutLiveTV() {
	c.layoutCategories(c.categoryViews(FavoritesCategory, favoritesLabel, c.st.liveCats, c.st.liveCat))

	favs := c.favoriteSet()
	for i, ch := range c.st.channels {
		id := ch.StreamID.String()
		c.add(ElementView{
			ID:       prefixChannel + id,
			Label:    ch.Name,
			Detail:   ch.Num.String(),
			Group:    GroupChannels,
			Bounds:   focus.Rect{X: itemX, Y: contentTop + float64(i)*rowH, W: channelW, H: rowH},
			Selected: id == c.st.channel,
			Favorite: favs[id],
		})
	}

	c.add(ElementView{ID: idPlayerVideo, Label: "Odtwarzacz", Group: GroupPlayer, Bounds: focus.Rect{X: playerX, Y: contentTop, W: playerW, H: playerH}})
	c.add(ElementView{ID: idPlayerFullscreen, Label: "Pełny ekran", Group: GroupPlayer, Bounds: focus.Rect{X: playerX, Y: contentTop + playerH + 16, W: 200, H: rowH}})
	c.layoutNav(true)
}

func gridRect(i int) focus.Rect {
	col, row := i%gridCols, i/gridCols
	return focus.Rect{
		X: itemX + float64(col)*(posterW+posterGap),
		Y: contentTop + float64(row)*(posterH+posterGap),
		W: posterW,
		H: posterH,
	}
}

func (c *Controller) layoutMovies() {
	c.layoutCategories(c.categoryViews(HistoryCategory, historyLabel, c.st.vodCats, c.st.vodCat))
	for i, m := range c.st.movies {
		c.add(ElementView{
			ID:     prefixMovie + m.StreamID.String(),
			Label:  m.Name,
			Detail: ratingText(m.Rating5, m.Rating),
			Group:  GroupItems,
			Bounds: gridRect(i),
		})
	}
	c.layoutNav(true)
}

func (c *Controller) layoutSeries() {
	c.layoutCategories(c.categoryViews(HistoryCategory, historyLabel, c.st.seriesCats, c.st.seriesCat))
	for i, s := range c.st.seriesList {
		c.add(ElementView{
			ID:     prefixSeries + s.SeriesID.String(),
			Label:  s.Name,
			Detail: ratingText(s.Rating5, s.Rating),
			Group:  GroupItems,
			Bounds: gridRect(i),
		})
	}
	c.layoutNav(true)
}

func (c *Controller) layoutMovieDetails() {
	c.add(ElementView{ID: idPlay, Label: "▶ Odtwórz", Group: GroupActions, Bounds: focus.Rect{X: itemX, Y: 420, W: 200, H: formH}})
	c.add(ElementView{ID: idBack, Label: "Wróć", Group: GroupActions, Bounds: focus.Rect{X: itemX + 220, Y: 420, W: 200, H: formH}})
}

func (c *Controller) layoutSeriesDetails() {
	if s := c.st.series; s != nil && s.info != nil {
		for i, n := range s.info.Episodes.Numbers() {
			c.add(ElementView{
				ID:       prefixSeason + n,
				Label:    "Sezon " + n,
				Detail:   fmt.Sprintf("%d", len(s.info.Episodes[n])),
				Group:    GroupSeasons,
				Bounds:   focus.Rect{X: itemX + float64(i)*110, Y: 420, W: 100, H: rowH},
				Selected: n == s.season,
			})
		}
	}
	c.add(ElementView{ID: idBack, Label: "Wróć", Group: GroupActions, Bounds: focus.Rect{X: itemX, Y: 480, W: 200, H: formH}})
}

func (c *Controller) layoutEpisodes() {
	for i, ep := range c.seasonEpisodes() {
		c.add(ElementView{
			ID:     prefixEpisode + ep.ID.String(),
			Label:  episodeLabel(ep),
			Detail: ep.Info.Duration,
			Group:  GroupEpisodes,
			Bounds: focus.Rect{X: itemX, Y: contentTop + float64(i)*50, W: 800, H: rowH},
		})
	}
	c.add(ElementView{ID: idBack, Label: "Wróć", Group: GroupActions, Bounds: focus.Rect{X: 0, Y: contentTop, W: 200, H: formH}})
}

func (c *Controller) layoutAccount() {
	c.add(ElementView{ID: idBack, Label: "Wróć", Group: GroupActions, Bounds: focus.Rect{X: formX, Y: 500, W: 200, H: formH}})
	c.add(ElementView{ID: idLogout, Label: "Wyloguj", Group: GroupActions, Bounds: focus.Rect{X: formX + 220, Y: 500, W: 200, H: formH}})
}

func (c *Controller) layoutSettings() {
	d := c.st.draft
	rows := []ElementView{
		{ID: prefixSetting + "stream", Label: "Format transmisji na żywo", Detail: d.StreamFormat},
		{ID: prefixSetting + "vod", Label: "Format filmów", Detail: d.VodFormat},
	}
	if c.st.settings.PinConfigured() {
		rows = append(rows,
			ElementView{ID: prefixSetting + "pin", Label: "Zmień PIN", Detail: "włączony"},
			ElementView{ID: prefixSetting + "pin-off", Label: "Wyłącz PIN"})
	} else {
		rows = append(rows, ElementView{ID: prefixSetting + "pin", Label: "Ustaw PIN", Detail: "wyłączony"})
	}
	rows = append(rows,
		ElementView{ID: prefixSetting + "save", Label: "Zapisz"},
		ElementView{ID: idBack, Label: "Wróć"})

	for i, row := range rows {
		row.Group = GroupSettings
		row.Bounds = focus.Rect{X: formX, Y: 100 + float64(i)*60, W: formW, H: formH}
		c.add(row)
	}
}

func (c *Controller) layoutSearch() {
	s := c.st.search
	c.add(ElementView{ID: idSearchInput, Label: "Szukaj", Detail: s.query, Group: GroupSearch, Editable: true,
		Bounds: focus.Rect{X: itemX + 20, Y: contentTop, W: 600, H: formH}})
	for i, r := range s.results {
		c.add(ElementView{
			ID:     prefixResult + r.kind + ":" + r.id,
			Label:  r.name,
			Detail: r.detail,
			Group:  GroupSearch,
			Bounds: focus.Rect{X: itemX + 20, Y: contentTop + 60 + float64(i)*rowH, W: 600, H: 40},
		})
	}
}

// ratingText renders a 0-10 rating, preferring the five-star value.
func ratingText(rating5, rating xtream.FlexString) string {
	if r := rating5.Float(); r > 0 {
		return fmt.Sprintf("★ %.1f", r*2)
	}
	if r := rating.Float(); r > 0 {
		return fmt.Sprintf("★ %.1f", r)
	}
	return ""
}
