package config

import (
	"io"
	"time"
)

// TimeConfig defines helpers for retrieving duration values stored as integers.
type TimeConfig interface {
	// GetMillisecond reads the integer value at key as milliseconds.
	GetMillisecond(key string) time.Duration
	// GetSecond reads the integer value at key as seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads the integer value at key as minutes.
	GetMinute(key string) time.Duration
}

// NumberConfig defines helpers for retrieving numeric configuration values.
//
// Missing keys or values that cannot be converted resolve to the zero value.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetFloat64(key string) float64
}

// Config defines a set of methods for retrieving configuration values of various types.
// Implementations handle retrieval and type conversion and may reload values at runtime,
// so callers that need a stable snapshot should copy values once at construction time.
type Config interface {
	io.Closer
	TimeConfig
	NumberConfig

	// GetBool retrieves the value at key as a bool.
	GetBool(key string) bool

	// GetString retrieves the value at key as a string.
	GetString(key string) string

	// GetArray retrieves the value at key as a slice of trimmed, non-empty strings.
	// The value is stored with format <element1>,<element2>,...
	GetArray(key string) []string
}
