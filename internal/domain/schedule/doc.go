// Package schedule decides what a learner sees on a given day.
//
// PlanSession mixes weak, due and new words into a session under the
// learner's daily quota. TodayFocusWords is a separate, deterministic
// pagination of never-attempted words into a stable daily batch. Both are
// pure functions of their inputs; input order is the only tie-break.
package schedule
