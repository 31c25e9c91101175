// Package player defines the playback contract the controller uses and an
// implementation that drives an external mpv process over its JSON IPC
// socket.
//
// The controller never decodes media. It loads a URL, toggles pause, seeks
// by relative offsets and reacts to Progress, Completed and Error events.
// Nop stands in when no display is available.
package player
