// Package mocks provides shared test doubles for the interfaces that
// cross package boundaries: the text generator and the token service.
//
// Each mock has function fields for per-test behavior and plain fields for
// canned responses:
//
//	gen := mocks.NewMockGeneratorWithWords(generation.ExtractedWord{Word: "lucid"})
//	svc := learning.NewService(words, stats, stories, emitter, srs, logger,
//	    learning.WithGenerator(gen))
//
// Store fakes live next to the tests that use them.
package mocks
