// Package domain contains the core vocabulary-learning entities: word
// records with their spaced repetition state, the per-learner stats record
// with its settings and bookkeeping, stories, and the derived session
// breakdown. It is independent of any storage or delivery mechanism.
package domain
