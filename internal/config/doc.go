// Package config handles configuration loading, parsing, and validation
// from defaults, an optional config file and VOCAB_-prefixed environment
// variables. It provides typed access to the settings each component needs
// while keeping configuration details out of business logic.
package config
