// Package gemini implements generation.Generator on Google's Gemini API.
//
// Prompts are embedded text templates. Every request asks for a JSON
// response constrained by a response schema, and the decoded result is
// validated before it reaches the domain. Transient API failures are retried
// with exponential backoff and jitter; blocked or malformed responses are
// returned at once.
package gemini
