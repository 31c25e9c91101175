// Package app is the remote-navigation and playback controller.
//
// A Controller owns the whole client state: the active screen, the focused
// element, the live and VOD players, the PIN prompt and the search modal.
// Front ends feed it raw remote key codes through HandleKey and render what
// Snapshot returns; they never touch the state directly.
//
// # Event loop
//
// Every Controller method must run on one goroutine, the owner's event
// loop. Network requests and player commands run elsewhere (Options.Go) and
// hand their results back through Options.Dispatch, which must queue the
// function onto the event loop. The terminal front end dispatches with
// tea.Program.Send; headless runs use Loop.
//
// Results that arrive after the user navigated away are discarded: each
// kind of request carries a generation number that screen changes and newer
// requests of the same kind invalidate.
//
// # Keys
//
// HandleKey resolves a code through the platform's keymap table and routes
// it by context, in priority order: the PIN prompt, the VOD overlay, then
// normal navigation. BACK follows one transition table from every context.
package app
