// Package platform describes the capabilities of the device the client runs
// on. A Descriptor is resolved once at startup and injected; nothing else in
// the tree compares platform names.
package platform

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/muurk/polfunbox/internal/keymap"
)

// EnvVar selects the platform when no flag is given.
const EnvVar = "POLFUN_PLATFORM"

// Default is used when neither flag nor environment name a platform.
const Default = "vega"

// Descriptor lists what the host platform can do.
type Descriptor struct {
	Name  string
	Brand string

	// NativePlayer is true when the platform plays MPEG-TS live streams
	// directly. Without it live streams must be requested as HLS.
	NativePlayer bool

	// KeyTable names the built-in keymap table for the platform's remote.
	KeyTable string
}

var descriptors = map[string]Descriptor{
	"vega": {
		Name:         "vega",
		Brand:        "Amazon Fire TV",
		NativePlayer: false,
		KeyTable:     "firetv",
	},
	"tizen": {
		Name:         "tizen",
		Brand:        "Samsung",
		NativePlayer: true,
		KeyTable:     "tizen",
	},
	"browser": {
		Name:         "browser",
		Brand:        "Web",
		NativePlayer: false,
		KeyTable:     "browser",
	},
}

// Resolve returns the descriptor for name. An empty name falls back to
// $POLFUN_PLATFORM and then to Default.
func Resolve(name string) (Descriptor, error) {
	if name == "" {
		name = os.Getenv(EnvVar)
	}
	if name == "" {
		name = Default
	}
	d, ok := descriptors[strings.ToLower(name)]
	if !ok {
		return Descriptor{}, fmt.Errorf("unknown platform %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return d, nil
}

// Names lists the known platforms.
func Names() []string {
	names := make([]string, 0, len(descriptors))
	for n := range descriptors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LiveStreamFormat is the container requested for live channels when the
// user has not chosen one.
func (d Descriptor) LiveStreamFormat() string {
	if d.NativePlayer {
		return "ts"
	}
	return "m3u8"
}

// Keys loads the key table for the platform, or the YAML override at
// overridePath when one is given.
func (d Descriptor) Keys(overridePath string) (*keymap.Table, error) {
	if overridePath != "" {
		return keymap.LoadFile(overridePath)
	}
	return keymap.Builtin(d.KeyTable)
}
