// Package generation defines the AI-backed content services the learning
// service depends on: extracting vocabulary from free text and turning a
// text into a quiz-ready story. Implementations live in
// internal/platform/gemini.
package generation
