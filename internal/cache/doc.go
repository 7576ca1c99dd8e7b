// Package cache provides the two-tier phrase cache for synthesized speech.
// It keeps a bounded in-memory hot table (FIFO eviction) in front of a
// gzip-compressed on-disk cold store keyed by a digest of the normalized text.
package cache
