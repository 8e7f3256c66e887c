package consts

import "time"

// LLM default configurations
const (
	// DefaultTemperature is the default sampling temperature for generation requests
	DefaultTemperature = 0.7
	// DefaultTopP is the default nucleus sampling parameter
	DefaultTopP = 0.9
	// DefaultMaxTokens is the default maximum tokens for LLM responses
	DefaultMaxTokens = 4096
)

// Cache defaults
const (
	// DefaultCacheTTL is the default lifetime of a cached response
	DefaultCacheTTL = time.Hour
	// DefaultCacheEntries is the default maximum number of cached responses
	DefaultCacheEntries = 100
)

// Timeouts for various operations
const (
	// Timeout5Seconds is a 5 second timeout
	Timeout5Seconds = 5 * time.Second
	// Timeout60Seconds is a 60 second timeout (1 minute)
	Timeout60Seconds = 60 * time.Second
	// Timeout5Minutes is a 5 minute timeout
	Timeout5Minutes = 5 * time.Minute
)

// Command execution limits
const (
	// CommandTimeout is the hard wall-clock limit for shell commands spawned by tools
	CommandTimeout = 30 * time.Second
	// MaxHistoryEntries bounds how many execution records a query returns by default
	MaxHistoryEntries = 100
)

// Buffer sizes for various operations
const (
	// BufferSize64KB is 64 kilobytes
	BufferSize64KB = 64 * 1024
	// BufferSize1MB is 1 megabyte
	BufferSize1MB = 1024 * 1024
)
