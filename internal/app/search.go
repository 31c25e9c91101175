package app

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/muurk/polfunbox/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	minSearchLen   = 2
	maxSearchItems = 20

	editSearch = "search"

	searchHint = "Wpisz co najmniej 2 znaki aby wyszukać"
)

// Search result kinds.
const (
	resultChannel = "channel"
	resultMovie   = "movie"
	resultSeries  = "series"
)

type searchState struct {
	query       string
	results     []searchResult
	hint        string
	returnFocus string
}

type searchResult struct {
	kind   string
	id     string
	name   string
	detail string
}

// foldName lower-cases s and strips diacritics, so "Łódź" matches "lodz".
// ł has no decomposition and is mapped explicitly.
func foldName(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			switch r {
			case 'ł':
				return 'l'
			case 'Ł':
				return 'L'
			}
			return r
		}),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// searchable reports whether the active screen has a search.
func (c *Controller) searchable() bool {
	switch c.st.screen {
	case LiveTV, Movies, Series:
		return true
	}
	return false
}

func (c *Controller) openSearch() {
	if !c.searchable() || c.st.search != nil {
		return
	}
	c.st.search = &searchState{hint: searchHint, returnFocus: c.st.focus}
	c.st.editing = editSearch
	c.resetScroll(GroupSearch)
	c.relayout()
	c.setFocus(idSearchInput)
	logging.Debug("Search opened", zap.String("screen", c.st.screen.String()))
	c.notifyHost(HostNavigation)
}

// closeSearch closes the modal and restores the focus it was opened from.
func (c *Controller) closeSearch() {
	s := c.st.search
	if s == nil {
		return
	}
	c.closeSearchState()
	c.relayout()
	if _, ok := c.reg.Lookup(s.returnFocus); ok {
		c.setFocus(s.returnFocus)
	}
}

func (c *Controller) closeSearchState() {
	if c.st.search == nil {
		return
	}
	c.st.search = nil
	if c.st.editing == editSearch {
		c.st.editing = ""
	}
}

// SetSearchQuery runs the search of the active screen over its cached
// lists. It is a no-op while the search modal is closed.
func (c *Controller) SetSearchQuery(query string) {
	s := c.st.search
	if s == nil {
		return
	}
	s.query = query
	s.results = nil
	c.resetScroll(GroupSearch)
	s.hint = ""

	q := foldName(strings.TrimSpace(query))
	if len([]rune(q)) < minSearchLen {
		s.hint = searchHint
		c.relayout()
		c.setFocus(idSearchInput)
		return
	}

	match := func(name string) bool { return strings.Contains(foldName(name), q) }
	switch c.st.screen {
	case LiveTV:
		for _, ch := range c.st.allLive {
			if match(ch.Name) {
				s.results = append(s.results, searchResult{kind: resultChannel, id: ch.StreamID.String(), name: ch.Name})
			}
			if len(s.results) == maxSearchItems {
				break
			}
		}
	case Movies:
		for _, m := range c.st.allMovies {
			if match(m.Name) {
				s.results = append(s.results, searchResult{kind: resultMovie, id: m.StreamID.String(), name: m.Name, detail: ratingText(m.Rating5, m.Rating)})
			}
			if len(s.results) == maxSearchItems {
				break
			}
		}
	case Series:
		for _, sr := range c.st.allSeries {
			if match(sr.Name) {
				s.results = append(s.results, searchResult{kind: resultSeries, id: sr.SeriesID.String(), name: sr.Name, detail: sr.ReleaseDate})
			}
			if len(s.results) == maxSearchItems {
				break
			}
		}
	}
	if len(s.results) == 0 {
		s.hint = fmt.Sprintf("Brak wyników dla %q", query)
	}
	logging.Debug("Search", zap.String("query", query), zap.Int("results", len(s.results)))

	c.relayout()
	c.setFocus(idSearchInput)
}

// activateResult opens a search hit ("kind:id") on the active screen.
func (c *Controller) activateResult(ref string) {
	kind, id, ok := strings.Cut(ref, ":")
	if !ok {
		return
	}
	c.closeSearch()

	switch kind {
	case resultChannel:
		ch, found := c.findChannel(id)
		if !found {
			return
		}
		c.st.lastSelect, c.st.lastAt = id, c.now()
		c.playChannelGated(ch)
	case resultMovie:
		c.openMovie(id)
	case resultSeries:
		c.openSeries(id)
	}
}
