// Package scheduler implements the one-shot alarm scheduler.
//
// A Scheduler is armed with a wall-clock time, polls a Clock on a background
// goroutine and, on the first tick that falls within the armed minute, hands
// exactly one trigger to a Dispatcher (normally the application main loop).
// Cancel and Reset are safe to call at any time from any goroutine: once they
// return, no trigger for the canceled arming will start.
package scheduler
