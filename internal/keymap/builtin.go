package keymap

import (
	"fmt"
	"sort"
)

// DefaultTable is the table used when nothing else is configured.
const DefaultTable = "firetv"

// backCodes covers ESC (Fire TV / browsers), LG webOS, Tizen and the
// Backspace some remotes send for BACK.
var backCodes = []int{27, 461, 10009, 8}

var builtins = map[string]map[Action][]int{
	"firetv": {
		Enter:       {13},
		Up:          {38},
		Down:        {40},
		Left:        {37},
		Right:       {39},
		Back:        backCodes,
		Play:        {415},
		Pause:       {19},
		PlayPause:   {179, 10252},
		Stop:        {413},
		FastForward: {228, 417},
		Rewind:      {227, 412},
		ChannelUp:   {33},
		ChannelDown: {34},
		Red:         {403},
		Green:       {404},
		Yellow:      {405},
		Blue:        {406},
		Menu:        {18},
		Backspace:   {8},
		Delete:      {46},
	},
	"tizen": {
		Enter:       {13},
		Up:          {38},
		Down:        {40},
		Left:        {37},
		Right:       {39},
		Back:        backCodes,
		Play:        {415},
		Pause:       {19},
		PlayPause:   {10252, 179},
		Stop:        {413},
		FastForward: {417, 228},
		Rewind:      {412, 227},
		ChannelUp:   {427, 33},
		ChannelDown: {428, 34},
		Red:         {403},
		Green:       {404},
		Yellow:      {405},
		Blue:        {406},
		Menu:        {10133},
		Backspace:   {8},
		Delete:      {46},
	},
	"browser": {
		Enter:       {13},
		Up:          {38},
		Down:        {40},
		Left:        {37},
		Right:       {39},
		Back:        backCodes,
		Play:        {415},
		Pause:       {19},
		PlayPause:   {179, 10252},
		Stop:        {178, 413},
		FastForward: {228, 176, 417},
		Rewind:      {227, 177, 412},
		ChannelUp:   {33},
		ChannelDown: {34},
		Red:         {403, 112},
		Green:       {404, 113},
		Yellow:      {405, 114},
		Blue:        {406, 115},
		Menu:        {18},
		Backspace:   {8},
		Delete:      {46},
	},
}

// Builtin returns a fresh copy of a built-in table.
func Builtin(name string) (*Table, error) {
	codes, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown key table %q (available: %v)", name, BuiltinNames())
	}
	return NewTable(name, codes), nil
}

// MustBuiltin is Builtin for names known at compile time.
func MustBuiltin(name string) *Table {
	t, err := Builtin(name)
	if err != nil {
		panic(err)
	}
	return t
}

// BuiltinNames lists the built-in tables.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
