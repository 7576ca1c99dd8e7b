package cache

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// CacheManager coordinates the hot and cold tiers. It is the only type
// callers outside this package use, and it never returns disk errors from
// Get or Set: they are logged and the operation degrades to a miss.
type CacheManager struct {
	hot  *MemoryCache
	cold *DiskCache

	config *CacheConfig
	logger *log.Logger

	// Cold store watcher, see watch.go
	watcher   *fsnotify.Watcher
	watchStop chan struct{}
	watchWg   sync.WaitGroup
	closeOnce sync.Once

	// Metrics
	stats struct {
		HotHits       atomic.Int64
		ColdHits      atomic.Int64
		Misses        atomic.Int64
		Corrupted     atomic.Int64
		WriteFailures atomic.Int64
	}
}

// NewCacheManager creates a cache manager with the specified configuration.
// The cache directory is created if it does not exist yet.
func NewCacheManager(config *CacheConfig, logger *log.Logger) (*CacheManager, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}
	if config.Dir == "" {
		config.Dir = DefaultDir
	}
	if logger == nil {
		logger = log.Default()
	}

	cold, err := NewDiskCache(config.Dir, config.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create disk cache: %w", err)
	}

	cm := &CacheManager{
		hot:    NewMemoryCache(config.MemoryItems),
		cold:   cold,
		config: config,
		logger: logger.WithPrefix("cache"),
	}

	if config.Watch {
		if err := cm.startWatcher(); err != nil {
			cm.logger.Warn("Cold store watcher disabled", "dir", config.Dir, "err", err)
		}
	}

	return cm, nil
}

// Get returns the audio cached for text. The hot table is checked first;
// a cold hit is promoted into the hot table, which may evict its oldest
// entry.
func (cm *CacheManager) Get(text string) ([]byte, bool) {
	key := KeyFor(text)

	if data, ok := cm.hot.Get(key); ok {
		cm.stats.HotHits.Add(1)
		cm.logger.Debug("Cache hit", "level", CacheLevelHot, "text", text)
		return data, true
	}

	data, err := cm.cold.Get(key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			if errors.Is(err, ErrCacheCorrupted) {
				cm.stats.Corrupted.Add(1)
			}
			cm.logger.Error("Error reading cached file", "key", key, "err", err)
		}
		cm.stats.Misses.Add(1)
		cm.logger.Debug("Cache miss", "text", text)
		return nil, false
	}

	cm.stats.ColdHits.Add(1)
	cm.promote(key, data)
	cm.logger.Debug("Cache hit", "level", CacheLevelCold, "text", text)
	return data, true
}

// Set stores audio for text: compressed on disk first, then uncompressed in
// the hot table. A failed disk write is logged and the hot entry is still
// inserted so the audio stays usable for the life of the process.
func (cm *CacheManager) Set(text string, audio []byte) {
	key := KeyFor(text)

	written, err := cm.cold.Put(key, audio)
	if err != nil {
		cm.stats.WriteFailures.Add(1)
		cm.logger.Error("Error saving to cache", "key", key, "err", err)
	} else if len(audio) > 0 {
		ratio := (1 - float64(written)/float64(len(audio))) * 100
		cm.logger.Debug("Cached", "text", text, "compression", fmt.Sprintf("%.1f%%", ratio))
	}

	cm.promote(key, audio)
}

// Contains reports whether text is cached in either tier without reading
// or promoting the cold file.
func (cm *CacheManager) Contains(text string) bool {
	key := KeyFor(text)
	if cm.hot.Contains(key) {
		return true
	}
	_, err := os.Stat(cm.cold.Path(key))
	return err == nil
}

// Stats enumerates the cold store and returns the current footprint along
// with hit counters. Enumeration failures are logged and reported as zero.
func (cm *CacheManager) Stats() Stats {
	count, size, err := cm.cold.Stats()
	if err != nil {
		cm.logger.Error("Error calculating cache size", "err", err)
	}
	_, _, evictions := cm.hot.Counters()

	return Stats{
		HotCount:       cm.hot.Len(),
		ColdCount:      count,
		TotalColdBytes: size,
		HotHits:        cm.stats.HotHits.Load(),
		ColdHits:       cm.stats.ColdHits.Load(),
		Misses:         cm.stats.Misses.Load(),
		Evictions:      evictions,
		Corrupted:      cm.stats.Corrupted.Load(),
		WriteFailures:  cm.stats.WriteFailures.Load(),
	}
}

// Clear empties the hot table and deletes every cold file. It is a
// maintenance operation, not part of steady-state use.
func (cm *CacheManager) Clear() error {
	cm.hot.Clear()

	removed, err := cm.cold.Clear()
	if err != nil {
		cm.logger.Error("Error clearing cache", "err", err)
		return fmt.Errorf("clear cache: %w", err)
	}

	cm.logger.Info("Cache cleared", "files", removed)
	return nil
}

// Dir returns the cold store directory.
func (cm *CacheManager) Dir() string {
	return cm.cold.Dir()
}

// Close stops the cold store watcher if one is running.
func (cm *CacheManager) Close() error {
	var err error
	cm.closeOnce.Do(func() {
		err = cm.stopWatcher()
	})
	return err
}

func (cm *CacheManager) promote(key Key, data []byte) {
	if evicted, ok := cm.hot.Put(key, data); ok {
		cm.logger.Debug("Evicted from hot table", "key", evicted)
	}
}
