// Package jobs runs periodic maintenance for the background task runner:
// failed persistence tasks are retried and tasks stuck in processing are
// reset, both on gocron schedules.
package jobs
