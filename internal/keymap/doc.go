// Package keymap maps raw remote-control key codes to logical actions.
//
// Different remote and browser stacks emit different codes for the same
// physical button: BACK arrives as 27 on Fire TV and browsers, 461 on webOS,
// 10009 on Tizen and 8 on some remotes. A Table lists every code accepted
// for each Action so call sites never compare against literal codes:
//
//	table := keymap.MustBuiltin("firetv")
//	action, digit := table.Resolve(code)
//
// Tables can be customised with a small YAML file that names a built-in base
// and replaces the codes of selected actions. See LoadFile.
package keymap
