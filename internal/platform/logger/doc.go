// Package logger configures the process-wide slog JSON logger and carries
// request-scoped loggers through context.Context. Handlers attach trace and
// learner ids to the context logger; services read it back with
// FromContextOrDefault.
package logger
