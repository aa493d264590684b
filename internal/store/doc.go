// Package store defines the persistence contracts for words, learner stats
// and stories, along with the errors implementations report.
//
// Implementations translate driver errors into the sentinels declared here.
// In particular a missing table is reported as ErrSchemaMissing so callers
// can tell "database not set up yet" apart from other failures and degrade
// gracefully instead of failing the request.
package store
