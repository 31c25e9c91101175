package app

import (
	"fmt"
	"strings"

	"github.com/muurk/polfunbox/internal/focus"
	"github.com/muurk/polfunbox/internal/keymap"
	"github.com/muurk/polfunbox/internal/logging"
	"github.com/muurk/polfunbox/internal/player"
	"github.com/muurk/polfunbox/internal/schedule"
	"go.uber.org/zap"
)

// debugSequence toggles the debug overlay.
var debugSequence = []keymap.Action{keymap.Blue, keymap.Red, keymap.Blue}

const debugLogSize = 20

// KeyEvent is one raw remote key transition.
type KeyEvent struct {
	Code int

	// Pressed is true on key-down and false on release.
	Pressed bool

	// Repeat marks auto-repeated key-downs of a held key.
	Repeat bool
}

// Result reports what a key did.
type Result struct {
	Action keymap.Action

	// Handled means the controller consumed the key; hosts must not apply
	// their own default (scrolling, history back).
	Handled bool
}

// HandleKey routes one key event. The PIN prompt sees keys first, then the
// VOD overlay, then normal navigation.
func (c *Controller) HandleKey(ev KeyEvent) Result {
	action, digit := c.keys.Resolve(ev.Code)
	logging.LogKeyEvent(ev.Code, ev.Pressed, action.String())

	if !ev.Pressed {
		return c.keyUp(action)
	}

	if !ev.Repeat {
		c.trackSequence(ev.Code, action)
	}

	var res Result
	switch {
	case c.st.pin != nil:
		res = c.pinKey(ev.Code, action, digit)
	case c.st.overlay != nil:
		res = c.overlayKey(action)
	default:
		res = c.normalKey(action)
	}
	res.Action = action
	return res
}

// Press sends a key-down followed by its release.
func (c *Controller) Press(code int) Result {
	res := c.HandleKey(KeyEvent{Code: code, Pressed: true})
	c.HandleKey(KeyEvent{Code: code})
	return res
}

// PressAction presses the canonical code of a.
func (c *Controller) PressAction(a keymap.Action) Result {
	codes := c.keys.Codes(a)
	if len(codes) == 0 {
		return Result{Action: a}
	}
	return c.Press(codes[0])
}

func (c *Controller) trackSequence(code int, action keymap.Action) {
	line := fmt.Sprintf("%s key=%d action=%s", c.now().Format("15:04:05.000"), code, action)
	c.st.debugLog = append(c.st.debugLog, line)
	if len(c.st.debugLog) > debugLogSize {
		c.st.debugLog = c.st.debugLog[len(c.st.debugLog)-debugLogSize:]
	}

	c.st.keyTrail = append(c.st.keyTrail, action)
	if len(c.st.keyTrail) > len(debugSequence) {
		c.st.keyTrail = c.st.keyTrail[len(c.st.keyTrail)-len(debugSequence):]
	}
	if len(c.st.keyTrail) < len(debugSequence) {
		return
	}
	for i, a := range debugSequence {
		if c.st.keyTrail[i] != a {
			return
		}
	}
	c.st.keyTrail = nil
	c.st.debug = !c.st.debug
	logging.Info("Debug overlay toggled", zap.Bool("visible", c.st.debug))
}

func (c *Controller) keyUp(action keymap.Action) Result {
	if action != keymap.Right || !c.st.press.armed {
		return Result{Action: action}
	}

	p := c.st.press
	c.st.press = longPress{}
	c.sched.Cancel(schedule.TaskLongPress)
	if p.fired {
		return Result{Action: action, Handled: true}
	}

	// Short press: jump to the player pane.
	if el, ok := c.reg.FirstInGroup(GroupPlayer); ok {
		c.setFocus(el.ID)
	}
	return Result{Action: action, Handled: true}
}

func (c *Controller) normalKey(action keymap.Action) Result {
	switch {
	case action == keymap.Back:
		c.back()
		return Result{Handled: true}

	case action.IsArrow():
		if c.st.fullscreen {
			return Result{Handled: true}
		}
		if action == keymap.Right && c.longPressTarget() {
			c.armLongPress()
			return Result{Handled: true}
		}
		c.moveFocus(direction(action))
		return Result{Handled: true}

	case action == keymap.Enter:
		if c.st.screen == LiveTV && c.st.fullscreen {
			c.toggleFullscreenEPG()
			return Result{Handled: true}
		}
		c.activate(c.st.focus)
		return Result{Handled: true}

	case action == keymap.PlayPause:
		c.control(c.live, "toggle-pause", func(p player.Player) error { return p.TogglePause() })
		return Result{Handled: c.live != nil}

	case action == keymap.Play:
		c.control(c.live, "play", func(p player.Player) error { return p.Play() })
		return Result{Handled: c.live != nil}

	case action == keymap.Pause:
		c.control(c.live, "pause", func(p player.Player) error { return p.Pause() })
		return Result{Handled: c.live != nil}

	case action == keymap.Stop:
		if c.st.screen == LiveTV && c.live != nil {
			c.stopLive()
			c.relayout()
			return Result{Handled: true}
		}

	case action == keymap.ChannelUp || action == keymap.ChannelDown:
		if c.st.screen != LiveTV {
			return Result{}
		}
		step := 1
		if action == keymap.ChannelUp {
			step = -1
		}
		c.switchChannel(step)
		return Result{Handled: true}

	case action.IsColor():
		logging.Debug("Colour button", zap.String("action", action.String()))
		return Result{Handled: true}
	}
	return Result{}
}

func direction(a keymap.Action) focus.Direction {
	switch a {
	case keymap.Up:
		return focus.Up
	case keymap.Down:
		return focus.Down
	case keymap.Left:
		return focus.Left
	}
	return focus.Right
}

// moveFocus asks the resolver for the next element and scrolls it into
// view.
func (c *Controller) moveFocus(d focus.Direction) {
	next, changed := c.reg.Move(c.st.focus, d)
	if !changed {
		return
	}
	c.setFocus(next)
}

func (c *Controller) setFocus(id string) {
	c.st.focus = id
	if el, ok := c.reg.Lookup(id); ok && scrollable(el.Group) {
		c.scrollIntoView(el)
	}
}

// scrollIntoView scrolls the viewport of el's group, and only that one, so
// that el is visible.
func (c *Controller) scrollIntoView(el focus.Element) {
	if c.st.viewports == nil {
		c.st.viewports = make(map[string]focus.Viewport)
	}
	vp, ok := c.st.viewports[el.Group]
	if !ok {
		vp = newViewport()
	}
	c.st.viewports[el.Group] = vp.ScrollIntoView(el.Bounds)
}

// resetScroll scrolls groups back to the top. Without arguments every group
// is reset.
func (c *Controller) resetScroll(groups ...string) {
	if len(groups) == 0 {
		c.st.viewports = nil
		return
	}
	for _, g := range groups {
		delete(c.st.viewports, g)
	}
}

func (c *Controller) focusFirst() {
	if el, ok := c.reg.First(); ok {
		c.setFocus(el.ID)
		return
	}
	c.st.focus = ""
}

// longPressTarget reports whether RIGHT on the focused element starts a
// long-press instead of moving.
func (c *Controller) longPressTarget() bool {
	return c.st.screen == LiveTV && c.st.search == nil && strings.HasPrefix(c.st.focus, prefixChannel)
}

func (c *Controller) armLongPress() {
	if c.st.press.armed {
		// Held key: repeats neither move focus nor re-arm the timer.
		return
	}
	id := strings.TrimPrefix(c.st.focus, prefixChannel)
	c.st.press = longPress{target: id, armed: true}
	c.sched.After(schedule.TaskLongPress, LongPressDelay, func() {
		if !c.st.press.armed || c.st.press.target != id {
			return
		}
		c.st.press.fired = true
		c.toggleFavorite(id)
	})
}
