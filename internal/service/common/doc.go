// Package common holds helpers shared by several services.
//
// It provides a lightweight gRPC client for the alarm clock control API with
// call timeouts, detection of the current system actor (hostname/username),
// and a scan for other running instances of a binary.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
