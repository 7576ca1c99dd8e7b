package voice

import (
	"os"
	"runtime"
)

// Provider states reported by Health
const (
	ProviderOperational = "operational"
	ProviderUnused      = "not yet used"
)

// Health is a point in time status of the speech pipeline. It never calls
// the provider.
type Health struct {
	Engine   string
	Provider string

	CacheDir   string
	CacheReady bool
	PreWarmed  bool

	HitRate       string
	TotalRequests int64

	HeapUsedBytes  uint64
	HeapTotalBytes uint64
}

// Healthy reports whether every check passed.
func (h Health) Healthy() bool {
	return h.CacheReady
}

// Health reports the provider and cache status.
func (d *Dispatcher) Health() Health {
	stats := d.CostStats()

	provider := ProviderUnused
	if stats.TotalRequests > 0 {
		provider = ProviderOperational
	}

	dir := d.cache.Dir()
	info, err := os.Stat(dir)
	ready := err == nil && info.IsDir()
	if !ready {
		d.logger.Warn("Cache directory unavailable", "dir", dir, "err", err)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Health{
		Engine:         d.engine.Name(),
		Provider:       provider,
		CacheDir:       dir,
		CacheReady:     ready,
		PreWarmed:      d.PreWarmed(),
		HitRate:        stats.HitRate(),
		TotalRequests:  stats.TotalRequests,
		HeapUsedBytes:  mem.HeapAlloc,
		HeapTotalBytes: mem.HeapSys,
	}
}
