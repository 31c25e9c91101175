package keymap

import (
	"fmt"
	"strings"
)

// Action is a logical remote button, independent of the code a particular
// remote or browser stack emits for it.
type Action int

const (
	None Action = iota
	Up
	Down
	Left
	Right
	Enter
	Back
	Play
	Pause
	PlayPause
	Stop
	FastForward
	Rewind
	ChannelUp
	ChannelDown
	Red
	Green
	Yellow
	Blue
	Menu
	Backspace
	Delete
	Digit
)

var actionNames = map[Action]string{
	None:        "none",
	Up:          "up",
	Down:        "down",
	Left:        "left",
	Right:       "right",
	Enter:       "enter",
	Back:        "back",
	Play:        "play",
	Pause:       "pause",
	PlayPause:   "play_pause",
	Stop:        "stop",
	FastForward: "fast_forward",
	Rewind:      "rewind",
	ChannelUp:   "channel_up",
	ChannelDown: "channel_down",
	Red:         "red",
	Green:       "green",
	Yellow:      "yellow",
	Blue:        "blue",
	Menu:        "menu",
	Backspace:   "backspace",
	Delete:      "delete",
	Digit:       "digit",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction converts a name such as "channel_up" (or "channel-up") back to
// an Action.
func ParseAction(s string) (Action, error) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return None, fmt.Errorf("unknown action %q", s)
}

// IsArrow reports whether a is one of the four D-PAD directions.
func (a Action) IsArrow() bool {
	return a == Up || a == Down || a == Left || a == Right
}

// IsColor reports whether a is one of the coloured buttons.
func (a Action) IsColor() bool {
	return a == Red || a == Green || a == Yellow || a == Blue
}
