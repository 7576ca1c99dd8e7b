package cache

import (
	"errors"
	"fmt"
)

// Common errors for cache operations
var (
	// ErrCacheMiss is returned when an item is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheCorrupted is returned when cache data is corrupted
	ErrCacheCorrupted = errors.New("cache data corrupted")
)

// CacheLevel represents the cache tier
type CacheLevel int

const (
	// CacheLevelHot represents the in-memory table (fastest)
	CacheLevelHot CacheLevel = iota

	// CacheLevelCold represents the compressed disk store (persistent)
	CacheLevelCold
)

// String returns the string representation of the cache level
func (l CacheLevel) String() string {
	switch l {
	case CacheLevelHot:
		return "hot"
	case CacheLevelCold:
		return "cold"
	default:
		return "unknown"
	}
}

// CacheIOError describes a failed disk operation on the cold store.
// It never leaves the package boundary as a returned error from the
// CacheManager; it is logged and the operation degrades to a miss.
type CacheIOError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *CacheIOError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *CacheIOError) Unwrap() error {
	return e.Err
}

// Stats holds the cache footprint and hit counters.
type Stats struct {
	// Current state
	HotCount       int   // Entries in the hot table
	ColdCount      int   // Files in the cold store
	TotalColdBytes int64 // Compressed bytes on disk

	// Performance metrics
	HotHits       int64
	ColdHits      int64
	Misses        int64
	Evictions     int64
	Corrupted     int64 // Cold files removed after failed decompression
	WriteFailures int64 // Cold writes that failed; hot entry kept
}

// CacheConfig holds configuration for a CacheManager.
type CacheConfig struct {
	// Dir is the flat directory holding one <key>.mp3.gz file per entry.
	Dir string

	// MemoryItems is the hot table capacity in entries.
	MemoryItems int

	// CompressionLevel is the gzip level used for cold files (1-9).
	CompressionLevel int

	// Watch enables the fsnotify watcher that drops hot entries whose cold
	// file was removed by another process.
	Watch bool
}

// Defaults mirrored by the configuration layer.
const (
	DefaultDir              = "tts_cache"
	DefaultMemoryItems      = 100
	DefaultCompressionLevel = 6
)

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Dir:              DefaultDir,
		MemoryItems:      DefaultMemoryItems,
		CompressionLevel: DefaultCompressionLevel,
	}
}
