// Package config persists the client's state between runs.
//
// Everything lives in one flat string key-value store, serialised as YAML in
// the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/polfun/store.yaml or $HOME/.config/polfun/store.yaml
//   - macOS: $HOME/.config/polfun/store.yaml
//   - Windows: %LOCALAPPDATA%\polfun\store.yaml
//
// Writes go through renameio, so a crash never leaves a truncated file.
// Structured values (settings, favorite channels, watch history) are JSON
// strings inside the store; Profile hides that behind typed accessors.
//
// # Usage Example
//
//	store, err := config.OpenDefault()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	profile := config.NewProfile(store)
//
//	if creds, ok := profile.Session(); ok {
//	    client, _ := xtream.NewClient(creds)
//	    _ = client
//	}
//
//	added, _ := profile.ToggleFavorite("1234")
//
// # Watching
//
// Watch and WatchStore follow the file with fsnotify so a running TUI picks
// up a session saved by "polfun pair" in another terminal.
package config
