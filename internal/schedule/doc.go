// Package schedule provides named, cancellable timers.
//
// Every timer in the client has a purpose (EPG refresh, long-press
// detection, auto-hide of controls...) and there must never be two live
// timers for the same purpose. A Scheduler keys timers by name and arming a
// name replaces the previous timer atomically:
//
//	s := schedule.New(schedule.RealClock{}, program.Send)
//	s.Every(schedule.TaskEPGRefresh, 30*time.Second, refresh)
//	...
//	s.Cancel(schedule.TaskEPGRefresh)
//
// Fired callbacks are passed to a dispatch function so they execute on the
// owner's event loop. A callback whose task was cancelled between the timer
// firing and the dispatch running is dropped.
//
// Tests use ManualClock, which fires due callbacks synchronously from
// Advance.
package schedule
