// Package learning coordinates a learner's day: it loads words, stats and
// stories, applies the daily rollover, plans review sessions, allocates the
// day's focus words and records answers.
//
// The pure scheduling rules live in the domain packages (srs, schedule,
// streak, story, progress). This package adds the I/O around them: the
// stores, the in-memory session state machine, the asynchronous word
// persistence queue (reached through a words.updated event) and the
// single merged stats save per user action.
package learning
