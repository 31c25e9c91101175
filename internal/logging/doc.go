// Package logging provides structured logging for polfunbox.
//
// This package wraps a zap logger with convenience functions for the common
// logging patterns of the client: key events, screen transitions, panel API
// calls and remote-bridge traffic.
//
// # Log Levels
//
//   - Debug: key codes, bridge payload dumps, API URLs (redacted)
//   - Info: screen transitions, playback start/stop, pairing
//   - Warn: recoverable failures (EPG fetch, non-fatal player errors)
//   - Error: failures surfaced to the user as alerts
//
// # Silent by Default
//
// Nothing is logged unless a level is given, either through Initialize or
// the POLFUN_LOG_LEVEL environment variable. The terminal UI always logs to
// a file so output never overwrites the rendered screen:
//
//	if err := logging.InitializeWithOptions(logging.Options{
//	    Level: "debug",
//	    File:  "/home/me/.config/polfun/polfun.log",
//	}); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// # Credentials
//
// Xtream panel URLs carry the username and password both in query strings
// and in stream paths. Anything URL-shaped must go through RedactURL before
// it reaches a log field; LogAPICall does this automatically.
package logging
