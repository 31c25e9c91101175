package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/muurk/polfunbox/internal/app"
)

// Message types.
const (
	TypeKey             = "KEY"
	TypeTVEvent         = "TV_EVENT"
	TypeBackPressed     = "BACK_PRESSED"
	TypeGetDeviceInfo   = "GET_DEVICE_INFO"
	TypeLog             = "LOG"
	TypeDeviceInfo      = "DEVICE_INFO"
	TypeNavigationState = "NAVIGATION_STATE"
	TypeExitApp         = "EXIT_APP"
)

// KEY actions.
const (
	KeyDown  = "down"
	KeyUp    = "up"
	KeyPress = "press"
)

// TV_EVENT key actions, as reported by the TV event handler of the host.
const (
	tvKeyDown = 0
	tvKeyUp   = 1
)

// tvEventCodes maps D-pad event names to the key codes a browser on the
// same device would see.
var tvEventCodes = map[string]int{
	"up":          38,
	"down":        40,
	"left":        37,
	"right":       39,
	"select":      13,
	"playPause":   10252,
	"play":        415,
	"pause":       19,
	"stop":        413,
	"rewind":      412,
	"fastForward": 417,
}

// TVEventCode returns the key code for a TV_EVENT name.
func TVEventCode(eventType string) (int, bool) {
	code, ok := tvEventCodes[eventType]
	return code, ok
}

// inbound is any message a remote sends.
type inbound struct {
	Type string `json:"type"`

	KeyCode int    `json:"keyCode"`
	Action  string `json:"action"`
	Repeat  bool   `json:"repeat"`

	EventType      string `json:"eventType"`
	EventKeyAction *int   `json:"eventKeyAction"`

	Message string `json:"message"`
}

// DeviceInfo answers GET_DEVICE_INFO.
type DeviceInfo struct {
	Type       string `json:"type"`
	DeviceCode string `json:"deviceCode"`
	Platform   string `json:"platform"`
	Brand      string `json:"brand"`
}

type navigationState struct {
	Type      string `json:"type"`
	Screen    string `json:"screen"`
	CanGoBack bool   `json:"canGoBack"`
}

type exitApp struct {
	Type string `json:"type"`
}

// keyEvents turns a KEY or TV_EVENT message into key transitions. A message
// that names no direction becomes a full press.
func keyEvents(msg inbound) ([]app.KeyEvent, error) {
	var code int
	var pressed, released bool

	switch msg.Type {
	case TypeKey:
		if msg.KeyCode <= 0 {
			return nil, fmt.Errorf("invalid key code %d", msg.KeyCode)
		}
		code = msg.KeyCode
		switch msg.Action {
		case KeyDown:
			pressed = true
		case KeyUp:
			released = true
		case KeyPress, "":
			pressed, released = true, true
		default:
			return nil, fmt.Errorf("unknown key action %q", msg.Action)
		}

	case TypeTVEvent:
		c, ok := TVEventCode(msg.EventType)
		if !ok {
			return nil, fmt.Errorf("unknown TV event %q", msg.EventType)
		}
		code = c
		switch {
		case msg.EventKeyAction == nil:
			pressed, released = true, true
		case *msg.EventKeyAction == tvKeyDown:
			pressed = true
		case *msg.EventKeyAction == tvKeyUp:
			released = true
		default:
			return nil, fmt.Errorf("unknown TV event key action %d", *msg.EventKeyAction)
		}

	default:
		return nil, fmt.Errorf("%s is not a key message", msg.Type)
	}

	var events []app.KeyEvent
	if pressed {
		events = append(events, app.KeyEvent{Code: code, Pressed: true, Repeat: msg.Repeat})
	}
	if released {
		events = append(events, app.KeyEvent{Code: code})
	}
	return events, nil
}

// encodeHostEvent renders a controller notification for the remote.
func encodeHostEvent(ev app.HostEvent) ([]byte, error) {
	switch ev.Type {
	case app.HostNavigation:
		return json.Marshal(navigationState{Type: TypeNavigationState, Screen: ev.Screen.String(), CanGoBack: ev.CanGoBack})
	case app.HostExit:
		return json.Marshal(exitApp{Type: TypeExitApp})
	}
	return nil, fmt.Errorf("unknown host event %v", ev.Type)
}
