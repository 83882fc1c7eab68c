// Package version exposes build metadata of the alarm clock binaries.
//
// Version, Commit and BuildTime are injected at build time via Go ldflags;
// the Go toolchain version is read from the embedded build info.
package version
