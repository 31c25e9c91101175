// Package tui is the terminal front end of the controller.
//
// The bubbletea event loop doubles as the controller's event loop: every
// controller call happens inside Model.Update, and work finishing on other
// goroutines is queued back with Program.Dispatch, which forwards it to the
// program as a message. After each message the model takes a fresh
// app.Snapshot and View draws only from it.
//
// # Keys
//
// Terminal keys are translated into the raw remote codes of the active key
// table, so the controller cannot tell a terminal from a TV remote:
//
//	arrows        D-PAD
//	enter         OK
//	esc           BACK
//	backspace     BACK (deletes a digit in the PIN prompt)
//	space         PLAY/PAUSE
//	s             STOP
//	pgup / pgdn   CH+ / CH-
//	[ / ]         rewind / fast-forward
//	F1 - F4       red, green, yellow, blue
//	0 - 9         digits
//	delete        clear the PIN
//
// Terminals report key presses but never releases. A held key arrives as a
// stream of repeats; the release is synthesised ReleaseDelay after the last
// one on the controller's "key-release" timer, which is what makes long
// presses (RIGHT on a channel) work from a keyboard.
//
// While the controller reports an element being edited, printable keys go
// to a text input instead.
package tui
