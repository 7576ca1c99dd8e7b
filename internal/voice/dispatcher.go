// Package voice is the single entry point for speech. The Dispatcher looks
// every phrase up in the phrase cache, calls the remote engine only on a
// miss, stores what it gets back, and keeps the usage counters that show
// how much the cache is saving.
package voice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/trainertoe/voice/internal/cache"
	"github.com/trainertoe/voice/internal/catalog"
	"github.com/trainertoe/voice/internal/tts"
)

// Defaults for Options
const (
	DefaultPrewarmDelay   = 200 * time.Millisecond
	DefaultCostPerChar    = 0.000015
	DefaultAvgPhraseChars = 20
)

// Fallback phrases for categories missing from a custom catalog.
const (
	fallbackMilestone  = "Keep it up!"
	fallbackCompletion = "Great job!"
	fallbackForm       = "Keep your form!"
)

// ErrUnknownPersonality indicates a personality without a catalog category.
var ErrUnknownPersonality = errors.New("unknown coach personality")

// PhraseCache is the storage the Dispatcher needs. *cache.CacheManager
// implements it.
type PhraseCache interface {
	Get(text string) ([]byte, bool)
	Set(text string, audio []byte)
	Stats() cache.Stats
	Clear() error
	Dir() string
}

// Options tunes a Dispatcher.
type Options struct {
	// PrewarmDelay is the pause after each phrase generated by PreWarm
	PrewarmDelay time.Duration

	// CostPerChar and AvgPhraseChars feed the savings estimate
	CostPerChar    float64
	AvgPhraseChars int

	Logger *log.Logger
}

// DefaultOptions returns the default tuning.
func DefaultOptions() Options {
	return Options{
		PrewarmDelay:   DefaultPrewarmDelay,
		CostPerChar:    DefaultCostPerChar,
		AvgPhraseChars: DefaultAvgPhraseChars,
	}
}

// Dispatcher routes synthesis requests through the phrase cache. One
// Dispatcher is created at startup and shared by every caller.
type Dispatcher struct {
	engine  tts.Synthesizer
	cache   PhraseCache
	catalog *catalog.Catalog
	opts    Options
	logger  *log.Logger

	// Usage counters, see record
	mu       sync.Mutex
	counters UsageCounters

	// Pre-warm runs at most once until ClearCache. prewarmMu only guards
	// the flags, never a whole run.
	prewarmMu      sync.Mutex
	prewarmRunning bool
	prewarmGen     uint64
	prewarmed      atomic.Bool

	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Dispatcher. A nil catalog means the built-in one.
func New(engine tts.Synthesizer, phraseCache PhraseCache, phrases *catalog.Catalog, opts Options) *Dispatcher {
	if phrases == nil {
		phrases = catalog.Default()
	}
	if opts.CostPerChar < 0 {
		opts.CostPerChar = 0
	}
	if opts.AvgPhraseChars < 0 {
		opts.AvgPhraseChars = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Dispatcher{
		engine:  engine,
		cache:   phraseCache,
		catalog: phrases,
		opts:    opts,
		logger:  logger.WithPrefix("voice"),
		sleep:   sleepContext,
	}
}

// Catalog returns the phrase catalog in use.
func (d *Dispatcher) Catalog() *catalog.Catalog {
	return d.catalog
}

// Engine returns the name of the synthesis engine.
func (d *Dispatcher) Engine() string {
	return d.engine.Name()
}

// SynthesizeSpeech returns audio for text, from the cache when possible.
// Synthesis errors are returned unchanged.
//
// The remote call is detached from ctx: a caller that gives up gets
// ctx.Err() right away while the call finishes in the background and still
// populates the cache.
func (d *Dispatcher) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	if audio, ok := d.cache.Get(text); ok {
		d.record(true, text)
		d.logger.Debug("Cache hit", "text", text)
		return audio, nil
	}

	call := d.record(false, text)
	d.logger.Debug("API call", "n", call, "text", text)

	type result struct {
		audio []byte
		err   error
	}
	done := make(chan result, 1)
	go func() {
		audio, err := d.engine.Synthesize(context.WithoutCancel(ctx), text)
		if err != nil {
			d.logger.Error("API call failed", "text", tts.Preview(text, 50), "err", err)
		} else {
			d.cache.Set(text, audio)
		}
		done <- result{audio, err}
	}()

	select {
	case r := <-done:
		return r.audio, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SynthesizeRepCount speaks a rep count. Counts covered by the catalog use
// its canonical phrase; anything else is spoken as the plain number.
func (d *Dispatcher) SynthesizeRepCount(ctx context.Context, n int) ([]byte, error) {
	phrase, ok := d.catalog.NumberPhrase(n)
	if !ok {
		phrase = strconv.Itoa(n)
	}
	return d.SynthesizeSpeech(ctx, phrase)
}

// SynthesizeMilestone speaks a random milestone phrase.
func (d *Dispatcher) SynthesizeMilestone(ctx context.Context) ([]byte, error) {
	return d.SynthesizeSpeech(ctx, d.randomOr(catalog.CategoryMilestones, fallbackMilestone))
}

// SynthesizeCompletion speaks a random completion phrase.
func (d *Dispatcher) SynthesizeCompletion(ctx context.Context) ([]byte, error) {
	return d.SynthesizeSpeech(ctx, d.randomOr(catalog.CategoryCompletions, fallbackCompletion))
}

// SynthesizeFormReminder speaks a random form cue.
func (d *Dispatcher) SynthesizeFormReminder(ctx context.Context) ([]byte, error) {
	return d.SynthesizeSpeech(ctx, d.randomOr(catalog.CategoryFormReminders, fallbackForm))
}

// SynthesizeExerciseAnnouncement speaks "Time for <exercise>!", using the
// catalog spelling when the announcement is a common phrase.
func (d *Dispatcher) SynthesizeExerciseAnnouncement(ctx context.Context, exercise string) ([]byte, error) {
	text := fmt.Sprintf("Time for %s!", strings.TrimSpace(exercise))
	return d.SynthesizeSpeech(ctx, d.canonical(catalog.CategoryExercises, text))
}

// SynthesizeTimeRemaining announces the seconds left. Announcements in the
// catalog are used as is, counts up to ten fall back to the number phrase,
// anything else is spoken as "<n> seconds!".
func (d *Dispatcher) SynthesizeTimeRemaining(ctx context.Context, seconds int) ([]byte, error) {
	text := fmt.Sprintf("%d seconds remaining!", seconds)
	if d.catalog.IsCommon(text) {
		return d.SynthesizeSpeech(ctx, d.canonical(catalog.CategoryTimeAnnouncements, text))
	}
	if seconds >= 1 && seconds <= 10 {
		if phrase, ok := d.catalog.NumberPhrase(seconds); ok {
			return d.SynthesizeSpeech(ctx, phrase)
		}
	}
	return d.SynthesizeSpeech(ctx, fmt.Sprintf("%d seconds!", seconds))
}

// SynthesizePersonalityLine speaks a random line of a coach personality.
func (d *Dispatcher) SynthesizePersonalityLine(ctx context.Context, personality string) ([]byte, error) {
	phrase, ok := d.catalog.Random(personality)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPersonality, personality)
	}
	return d.SynthesizeSpeech(ctx, phrase)
}

// CacheStats returns the phrase cache statistics.
func (d *Dispatcher) CacheStats() cache.Stats {
	return d.cache.Stats()
}

// ClearCache empties both cache tiers and allows PreWarm to run again. It
// does not wait for a running pre-warm; that run finishes without marking
// the cache pre-warmed.
func (d *Dispatcher) ClearCache() error {
	d.prewarmMu.Lock()
	d.prewarmed.Store(false)
	d.prewarmGen++
	d.prewarmMu.Unlock()

	return d.cache.Clear()
}

func (d *Dispatcher) randomOr(category, fallback string) string {
	if phrase, ok := d.catalog.Random(category); ok {
		return phrase
	}
	return fallback
}

// canonical returns the catalog spelling of text within category, or text.
func (d *Dispatcher) canonical(category, text string) string {
	phrases, _ := d.catalog.Category(category)
	want := cache.Normalize(text)
	for _, p := range phrases {
		if cache.Normalize(p) == want {
			return p
		}
	}
	return text
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
