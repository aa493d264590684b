// Package task runs background work with durable status tracking.
//
// Word records updated by a quiz are persisted here rather than on the
// request path: the learning service emits a words.updated event, the
// PersistenceEventHandler wraps it in a PersistWordsTask and the
// TaskRunner executes it on a worker. Task status lives in a TaskStore, so
// failed or interrupted tasks can be rebuilt through a Registry and
// retried after a restart.
package task
