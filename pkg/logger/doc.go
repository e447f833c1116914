// Package logger provides structured logging with optional Sentry error
// reporting.
//
// [New] returns a JSON stdout logger. [NewWithSentry] additionally forwards
// warnings and errors to Sentry when SENTRY_DSN is set, degrading
// gracefully to stdout-only when it is not. [NewNope] discards everything
// and serves as the unconfigured default.
package logger
