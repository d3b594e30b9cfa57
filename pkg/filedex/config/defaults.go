// Package config provides configuration management for filedex.
package config

// Default configuration values for filedex.
const (
	// DefaultOutput is the archive written by create when no output is given.
	DefaultOutput = "index.fdx.gz"

	// DefaultCompression is the archive codec.
	DefaultCompression = "gzip"

	// DefaultCompressionLevel selects the codec's own default level.
	DefaultCompressionLevel = 0

	// DefaultFormat is the search output formatter.
	DefaultFormat = "plain"

	// DefaultColor enables highlighting of matches.
	DefaultColor = true

	// DefaultLogLevel is the console log level.
	DefaultLogLevel = "warn"

	// EnvPrefix prefixes environment overrides, e.g. FILEDEX_COMPRESSION.
	EnvPrefix = "FILEDEX"

	appName = "filedex"
)
