// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder on stdout,
//   - an optional rotating log file (lumberjack) teed next to the console,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and key-value convenience functions (InfoKV, WarnKV, ...).
//
// Every service takes a context and pulls its logger from it, so log lines
// carry the component name and the fields attached along the call path.
package logger
