// Package alarm contains core domain types for the alarm clock.
//
// It defines Time (a wall-clock HH:MM value), the scheduler lifecycle State,
// Handle (one arming of the alarm), Status snapshots, the Media presented when
// the alarm fires, and the sentinel errors shared by every layer.
package alarm
