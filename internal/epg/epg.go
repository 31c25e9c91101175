// Package epg turns panel EPG listings into what the player pane shows:
// the current programme with its progress and the one after it.
package epg

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/muurk/polfunbox/internal/xtream"
)

// Texts shown in place of a programme.
const (
	Loading   = "Ładowanie EPG..."
	NoData    = "Brak danych EPG"
	NoProgram = "Brak programu"
	Failed    = "Błąd EPG"
)

// listingTimeLayout is the local-time format of start/end strings.
const listingTimeLayout = "2006-01-02 15:04:05"

var base64Title = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)

// Program is one schedule entry.
type Program struct {
	Title string
	Start time.Time
	Stop  time.Time
}

// Progress is the elapsed share of p at now, clamped to [0, 1].
func (p Program) Progress(now time.Time) float64 {
	total := p.Stop.Sub(p.Start)
	if total <= 0 {
		return 0
	}
	f := float64(now.Sub(p.Start)) / float64(total)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// Airing reports whether now falls inside p, both ends included.
func (p Program) Airing(now time.Time) bool {
	return !now.Before(p.Start) && !now.After(p.Stop)
}

// FromListings converts listings in panel order. String times are read in
// loc; unix timestamps win when present. Titles that look like base64 are
// decoded.
func FromListings(listings []xtream.EPGListing, loc *time.Location) []Program {
	if loc == nil {
		loc = time.Local
	}
	out := make([]Program, 0, len(listings))
	for _, l := range listings {
		stop := l.End
		if stop == "" {
			stop = l.Stop
		}
		out = append(out, Program{
			Title: DecodeTitle(l.Title),
			Start: parseTime(l.StartTimestamp.String(), l.Start, loc),
			Stop:  parseTime(l.StopTimestamp.String(), stop, loc),
		})
	}
	return out
}

func parseTime(unix, text string, loc *time.Location) time.Time {
	if n, err := strconv.ParseInt(strings.TrimSpace(unix), 10, 64); err == nil && n > 0 {
		return time.Unix(n, 0).In(loc)
	}
	if t, err := time.ParseInLocation(listingTimeLayout, strings.TrimSpace(text), loc); err == nil {
		return t
	}
	return time.Time{}
}

// DecodeTitle returns the decoded title when s is base64 of valid UTF-8
// text longer than ten characters, and s unchanged otherwise.
func DecodeTitle(s string) string {
	if len(s) <= 10 || !base64Title.MatchString(s) {
		return s
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return s
		}
	}
	if !utf8.Valid(b) {
		return s
	}
	return string(b)
}

// NowNext finds the programme airing at now and the entry listed right
// after it. Both are nil when nothing airs.
func NowNext(programs []Program, now time.Time) (current, next *Program) {
	for i := range programs {
		if programs[i].Airing(now) {
			current = &programs[i]
			if i+1 < len(programs) {
				next = &programs[i+1]
			}
			return current, next
		}
	}
	return nil, nil
}

// Display is the rendered EPG for one channel.
type Display struct {
	Current  string
	Next     string
	Progress float64
}

// Describe renders programs at now. An empty schedule reads NoData; a
// schedule with nothing airing reads NoProgram.
func Describe(programs []Program, now time.Time) Display {
	if len(programs) == 0 {
		return Display{Current: NoData}
	}
	cur, next := NowNext(programs, now)
	if cur == nil {
		return Display{Current: NoProgram}
	}
	d := Display{
		Current:  fmt.Sprintf("%s - %s %s", clock(cur.Start), clock(cur.Stop), cur.Title),
		Progress: cur.Progress(now),
	}
	if next != nil {
		d.Next = fmt.Sprintf("Następny: %s %s", clock(next.Start), next.Title)
	}
	return d
}

func clock(t time.Time) string {
	if t.IsZero() {
		return "--:--"
	}
	return t.Format("15:04")
}
