// Package events lets services announce what happened without knowing who
// reacts to it.
//
// The learning service emits events after mutating a learner's data; the
// task package turns words.updated events into persistence tasks and the
// activity handler records imports and story completions in the log.
package events
