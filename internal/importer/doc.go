// Package importer reads vocabulary lists from spreadsheets (xlsx) and CSV
// files into generation.ExtractedWord values ready for ImportWords.
package importer
