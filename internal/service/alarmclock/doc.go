// Package alarmclock runs the alarm-clock daemon.
//
// It wires configuration, logging, the main loop, the scheduler, the
// presenter and the optional gRPC control API together, and implements the
// business operations (arm, cancel, status, dismiss) the transport exposes.
package alarmclock
