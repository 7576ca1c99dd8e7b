package voice

import (
	"fmt"
	"math"

	"github.com/trainertoe/voice/internal/tts"
)

// UsageCounters are the process lifetime counters of a Dispatcher.
// CacheHits + RemoteCalls == TotalRequests holds at all times.
type UsageCounters struct {
	TotalRequests  int64
	CacheHits      int64
	RemoteCalls    int64
	CharactersSent int64

	// HitRatePercent is maintained incrementally, see nextHitRate
	HitRatePercent float64
}

// CostStats are the operator facing numbers derived from UsageCounters.
// EstimatedCostSaved assumes every hit saved an average phrase at a flat
// per-character price. It is an estimate, not a billing figure.
type CostStats struct {
	APICalls            int64
	CacheHits           int64
	TotalRequests       int64
	CharactersGenerated int64
	HitRatePercent      float64
	EstimatedCostSaved  float64
}

// HitRate formats the hit rate as "66.7%".
func (s CostStats) HitRate() string {
	return fmt.Sprintf("%.1f%%", s.HitRatePercent)
}

// CostSaved formats the savings estimate as "$0.0006".
func (s CostStats) CostSaved() string {
	return fmt.Sprintf("$%.4f", s.EstimatedCostSaved)
}

// record counts one request and returns the number of remote calls so far.
func (d *Dispatcher) record(hit bool, text string) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	c := &d.counters
	c.TotalRequests++
	if hit {
		c.CacheHits++
	} else {
		c.RemoteCalls++
		c.CharactersSent += int64(tts.CharCount(text))
	}
	c.HitRatePercent = nextHitRate(c.HitRatePercent, c.TotalRequests, hit)
	return c.RemoteCalls
}

// nextHitRate recomputes the hit rate from its previous value instead of
// from exact counts. Prior hits are recovered by rounding, so over a long
// run the rate can drift by about one hit from CacheHits/TotalRequests.
func nextHitRate(rate float64, total int64, hit bool) float64 {
	if total == 1 {
		if hit {
			return 100
		}
		return 0
	}
	hits := math.Round(rate / 100 * float64(total-1))
	if hit {
		hits++
	}
	return hits / float64(total) * 100
}

// Counters returns a snapshot of the usage counters.
func (d *Dispatcher) Counters() UsageCounters {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counters
}

// CostStats derives the cost report from the usage counters.
func (d *Dispatcher) CostStats() CostStats {
	c := d.Counters()
	hits := c.TotalRequests - c.RemoteCalls
	saved := float64(hits*int64(d.opts.AvgPhraseChars)) * d.opts.CostPerChar

	return CostStats{
		APICalls:            c.RemoteCalls,
		CacheHits:           hits,
		TotalRequests:       c.TotalRequests,
		CharactersGenerated: c.CharactersSent,
		HitRatePercent:      c.HitRatePercent,
		EstimatedCostSaved:  saved,
	}
}

// LogCostSavings writes the cost and cache report to the log.
func (d *Dispatcher) LogCostSavings() {
	stats := d.CostStats()
	cacheStats := d.cache.Stats()

	d.logger.Info("Cost optimization stats",
		"hit_rate", stats.HitRate(),
		"hits", fmt.Sprintf("%d / %d requests", stats.CacheHits, stats.TotalRequests),
		"api_calls", stats.APICalls,
		"characters", stats.CharactersGenerated,
		"saved", stats.CostSaved(),
		"memory_items", cacheStats.HotCount,
		"disk_items", cacheStats.ColdCount,
		"size", fmt.Sprintf("%.2f MB", float64(cacheStats.TotalColdBytes)/1024/1024))
}
