package voice

import (
	"context"
	"time"
)

// PreWarmReport summarizes a pre-warm run.
type PreWarmReport struct {
	// Phrases is the number of catalog phrases considered
	Phrases   int
	Generated int
	Cached    int
	Failed    int

	// Skipped is set when the cache was already pre-warmed
	Skipped bool

	Elapsed time.Duration
	Err     error
}

// PreWarmed reports whether PreWarm completed since start or the last
// ClearCache.
func (d *Dispatcher) PreWarmed() bool {
	return d.prewarmed.Load()
}

// PreWarm synthesizes every catalog phrase missing from the cache. A
// corrupt cold file counts as missing. Usage counters are not touched. A
// phrase that fails is logged and skipped. PreWarm pauses PrewarmDelay after
// each generated phrase and only runs once; later or concurrent calls return
// a report with Skipped set. If ctx ends the run stops between phrases,
// returns ctx.Err() and may run again later.
func (d *Dispatcher) PreWarm(ctx context.Context) (PreWarmReport, error) {
	gen, ok := d.beginPreWarm()
	if !ok {
		d.logger.Debug("Cache already pre-warmed")
		return PreWarmReport{Skipped: true}, nil
	}

	phrases := d.catalog.All()
	report := PreWarmReport{Phrases: len(phrases)}
	start := time.Now()
	d.logger.Info("Pre-warming cache to save API costs", "phrases", len(phrases))

	for _, phrase := range phrases {
		if err := ctx.Err(); err != nil {
			return d.abortPreWarm(report, start, err)
		}

		if _, ok := d.cache.Get(phrase); ok {
			report.Cached++
			continue
		}

		d.logger.Debug("Pre-generating", "text", phrase)
		audio, err := d.engine.Synthesize(ctx, phrase)
		if err != nil {
			report.Failed++
			d.logger.Error("Error pre-generating", "text", phrase, "err", err)
			continue
		}
		d.cache.Set(phrase, audio)
		report.Generated++

		if err := d.sleep(ctx, d.opts.PrewarmDelay); err != nil {
			return d.abortPreWarm(report, start, err)
		}
	}

	d.endPreWarm(gen, true)
	report.Elapsed = time.Since(start)
	d.logger.Info("Pre-warming complete",
		"generated", report.Generated,
		"cached", report.Cached,
		"failed", report.Failed,
		"elapsed", report.Elapsed.Round(time.Millisecond))
	d.LogCostSavings()

	return report, nil
}

// StartPreWarm runs PreWarm in the background. The channel receives the
// report and is then closed.
func (d *Dispatcher) StartPreWarm(ctx context.Context) <-chan PreWarmReport {
	out := make(chan PreWarmReport, 1)
	go func() {
		defer close(out)
		report, err := d.PreWarm(ctx)
		report.Err = err
		out <- report
	}()
	return out
}

func (d *Dispatcher) beginPreWarm() (uint64, bool) {
	d.prewarmMu.Lock()
	defer d.prewarmMu.Unlock()

	if d.prewarmed.Load() || d.prewarmRunning {
		return 0, false
	}
	d.prewarmRunning = true
	return d.prewarmGen, true
}

// endPreWarm marks the cache pre-warmed unless ClearCache ran meanwhile.
func (d *Dispatcher) endPreWarm(gen uint64, done bool) {
	d.prewarmMu.Lock()
	defer d.prewarmMu.Unlock()

	d.prewarmRunning = false
	if done && gen == d.prewarmGen {
		d.prewarmed.Store(true)
	}
}

func (d *Dispatcher) abortPreWarm(report PreWarmReport, start time.Time, err error) (PreWarmReport, error) {
	d.endPreWarm(0, false)
	report.Elapsed = time.Since(start)
	d.logger.Warn("Pre-warming interrupted",
		"generated", report.Generated,
		"cached", report.Cached,
		"failed", report.Failed,
		"err", err)
	return report, err
}
