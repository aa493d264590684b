// Package api translates HTTP requests into calls on the learning service.
// It owns request decoding and validation, maps service errors to status
// codes and safe messages, and writes JSON responses. Authentication and
// trace ids are handled by the middleware subpackage.
package api
