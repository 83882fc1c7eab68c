// Package control implements alarm-ctl: one-shot commands sent to a running
// alarm clock over its gRPC control API.
package control
