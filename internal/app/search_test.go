package app

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/muurk/polfunbox/internal/keymap"
	"github.com/muurk/polfunbox/internal/xtream"
)

func TestFoldName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Łódź", "lodz"},
		{"Świat według Kiepskich", "swiat wedlug kiepskich"},
		{"ZAŻÓŁĆ GĘŚLĄ JAŹŃ", "zazolc gesla jazn"},
		{"TVN24", "tvn24"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := foldName(tt.in); got != tt.want {
			t.Errorf("foldName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSearchOnlyOnListScreens(t *testing.T) {
	h := newHarness(t)
	c := h.loggedIn()

	c.openSearch()
	if c.Snapshot().Search != nil {
		t.Error("search opened on home")
	}
}

func TestSearchSeriesWithoutDiacritics(t *testing.T) {
	h := newHarness(t)
	c := h.loggedIn()
	c.Navigate(Series)

	c.Activate(idNavSearch)
	if c.Editing() != editSearch || c.Focused() != idSearchInput {
		t.Fatalf("Editing() = %q, Focused() = %q", c.Editing(), c.Focused())
	}
	c.SubmitText("swiat")

	s := c.Snapshot()
	if diff := cmp.Diff([]string{"sr:series:702"}, elementIDs(s, prefixResult)); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
	if s.Search.Hint != "" {
		t.Errorf("Hint = %q", s.Search.Hint)
	}

	c.Activate("sr:series:702")
	if c.Snapshot().Search != nil {
		t.Error("search still open after picking a result")
	}
	if c.Screen() != SeriesDetails {
		t.Errorf("Screen() = %v, want seriesDetails", c.Screen())
	}
}

func TestSearchHints(t *testing.T) {
	h := newHarness(t)
	c := h.loggedIn()
	c.Navigate(Movies)
	c.Activate(idNavSearch)

	c.SetSearchQuery("m")
	if got := c.Snapshot().Search.Hint; got != searchHint {
		t.Errorf("short query hint = %q", got)
	}

	c.SetSearchQuery("xyz")
	s := c.Snapshot()
	if got, want := s.Search.Hint, `Brak wyników dla "xyz"`; got != want {
		t.Errorf("Hint = %q, want %q", got, want)
	}
	if ids := elementIDs(s, prefixResult); len(ids) != 0 {
		t.Errorf("results = %v", ids)
	}
}

func TestSearchResultLimit(t *testing.T) {
	h := newHarness(t)
	c := h.loggedIn()
	c.Navigate(Movies)

	c.st.allMovies = nil
	for i := range 25 {
		c.st.allMovies = append(c.st.allMovies, xtream.VodStream{
			Name:     fmt.Sprintf("Film %d", i),
			StreamID: xtream.FlexString(fmt.Sprint(600 + i)),
		})
	}
	c.Activate(idNavSearch)
	c.SetSearchQuery("film")

	if got := len(elementIDs(c.Snapshot(), prefixResult)); got != maxSearchItems {
		t.Errorf("got %d results, want %d", got, maxSearchItems)
	}
}

func TestSearchBackRestoresFocus(t *testing.T) {
	h := newHarness(t)
	c := h.loggedIn()
	c.Navigate(LiveTV)
	c.setFocus("ch:102")

	c.openSearch()
	c.SetSearchQuery("tvn")
	h.press(keymap.Back)

	if c.Snapshot().Search != nil {
		t.Fatal("BACK did not close search")
	}
	if c.Focused() != "ch:102" {
		t.Errorf("Focused() = %q, want ch:102", c.Focused())
	}
	if c.Screen() != LiveTV {
		t.Errorf("Screen() = %v", c.Screen())
	}
}
