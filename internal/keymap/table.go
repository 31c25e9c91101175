package keymap

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Digit key ranges: top-row 0-9 and numpad 0-9.
const (
	digitTopRow = 48
	digitNumpad = 96
)

// resolveOrder decides which action wins when one code is bound to several.
// Back comes before Backspace so code 8 navigates back everywhere except in
// contexts (the PIN pad) that ask for Backspace explicitly with Is.
var resolveOrder = []Action{
	Back,
	Up, Down, Left, Right,
	Enter,
	PlayPause, Play, Pause, Stop,
	FastForward, Rewind,
	ChannelUp, ChannelDown,
	Red, Green, Yellow, Blue,
	Menu,
	Delete, Backspace,
}

// Table maps logical actions to the raw key codes a device family emits.
type Table struct {
	Name  string
	codes map[Action][]int
}

// NewTable creates a table from an action to codes mapping.
func NewTable(name string, codes map[Action][]int) *Table {
	t := &Table{Name: name, codes: make(map[Action][]int, len(codes))}
	for a, cs := range codes {
		t.codes[a] = append([]int(nil), cs...)
	}
	return t
}

// Clone returns a deep copy of t under a new name.
func (t *Table) Clone(name string) *Table {
	return NewTable(name, t.codes)
}

// Codes returns the codes bound to an action. The first one is the
// canonical code used when something has to synthesise a key press.
func (t *Table) Codes(a Action) []int {
	return t.codes[a]
}

// Is reports whether code is bound to action a.
func (t *Table) Is(a Action, code int) bool {
	for _, c := range t.codes[a] {
		if c == code {
			return true
		}
	}
	return false
}

// DigitValue returns the digit a code stands for, accepting both the top-row
// and the numpad ranges.
func DigitValue(code int) (int, bool) {
	switch {
	case code >= digitTopRow && code <= digitTopRow+9:
		return code - digitTopRow, true
	case code >= digitNumpad && code <= digitNumpad+9:
		return code - digitNumpad, true
	}
	return 0, false
}

// DigitCode returns the top-row code for digit d.
func DigitCode(d int) int {
	return digitTopRow + d
}

// Resolve maps a raw code to its action. Digits resolve to Digit with their
// value; unknown codes resolve to None.
func (t *Table) Resolve(code int) (Action, int) {
	for _, a := range resolveOrder {
		if t.Is(a, code) {
			return a, 0
		}
	}
	if d, ok := DigitValue(code); ok {
		return Digit, d
	}
	return None, 0
}

// Bindings returns every action with its codes, sorted by action, for
// display.
func (t *Table) Bindings() []Binding {
	out := make([]Binding, 0, len(t.codes))
	for a, cs := range t.codes {
		out = append(out, Binding{Action: a, Codes: append([]int(nil), cs...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out
}

// Binding is one row of a table.
type Binding struct {
	Action Action
	Codes  []int
}

// overrideFile is the on-disk format for custom tables:
//
//	name: living-room
//	base: firetv
//	actions:
//	  back: [27, 4]
//	  channel_up: [33, 427]
type overrideFile struct {
	Name    string           `yaml:"name"`
	Base    string           `yaml:"base"`
	Actions map[string][]int `yaml:"actions"`
}

// LoadFile reads a YAML override. Actions listed in the file replace the
// base table's codes; everything else is inherited.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key table: %w", err)
	}
	return Parse(data)
}

// Parse is LoadFile for in-memory YAML.
func Parse(data []byte) (*Table, error) {
	var f overrideFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse key table: %w", err)
	}

	baseName := f.Base
	if baseName == "" {
		baseName = DefaultTable
	}
	base, err := Builtin(baseName)
	if err != nil {
		return nil, err
	}

	name := f.Name
	if name == "" {
		name = baseName + "-custom"
	}
	t := base.Clone(name)

	for key, codes := range f.Actions {
		a, err := ParseAction(key)
		if err != nil {
			return nil, fmt.Errorf("key table %s: %w", name, err)
		}
		if a == Digit || a == None {
			return nil, fmt.Errorf("key table %s: action %q cannot be remapped", name, key)
		}
		if len(codes) == 0 {
			return nil, fmt.Errorf("key table %s: action %q has no codes", name, key)
		}
		t.codes[a] = append([]int(nil), codes...)
	}

	return t, nil
}
