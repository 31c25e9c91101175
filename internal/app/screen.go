package app

import (
	"fmt"
	"strings"
)

// Screen is one of the client's screens. Exactly one is active.
type Screen int

const (
	Login Screen = iota
	Home
	LiveTV
	Movies
	Series
	MovieDetails
	SeriesDetails
	Episodes
	Account
	Settings
)

var screenNames = []string{
	Login:         "login",
	Home:          "home",
	LiveTV:        "liveTv",
	Movies:        "movies",
	Series:        "series",
	MovieDetails:  "movieDetails",
	SeriesDetails: "seriesDetails",
	Episodes:      "episodes",
	Account:       "account",
	Settings:      "settings",
}

func (s Screen) String() string {
	if s >= 0 && int(s) < len(screenNames) {
		return screenNames[s]
	}
	return fmt.Sprintf("Screen(%d)", int(s))
}

// ParseScreen accepts the names String returns, ignoring case.
func ParseScreen(name string) (Screen, error) {
	for i, n := range screenNames {
		if strings.EqualFold(n, name) {
			return Screen(i), nil
		}
	}
	return Login, fmt.Errorf("unknown screen %q", name)
}

// Title is the heading shown for the screen.
func (s Screen) Title() string {
	switch s {
	case Login:
		return "Logowanie"
	case Home:
		return "Polfun TV"
	case LiveTV:
		return "Telewizja"
	case Movies:
		return "Filmy"
	case Series:
		return "Seriale"
	case MovieDetails:
		return "Film"
	case SeriesDetails:
		return "Serial"
	case Episodes:
		return "Odcinki"
	case Account:
		return "Konto"
	case Settings:
		return "Ustawienia"
	}
	return s.String()
}

// HostEventType tells the host shell what happened.
type HostEventType int

const (
	// HostNavigation is sent after every screen or modal change.
	HostNavigation HostEventType = iota
	// HostExit asks the host to close the application. The controller never
	// exits on its own.
	HostExit
)

func (t HostEventType) String() string {
	switch t {
	case HostNavigation:
		return "NAVIGATION_STATE"
	case HostExit:
		return "EXIT_APP"
	}
	return fmt.Sprintf("HostEventType(%d)", int(t))
}

// HostEvent is delivered to Options.OnHost on the event loop.
type HostEvent struct {
	Type      HostEventType
	Screen    Screen
	CanGoBack bool
}
