package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/trainertoe/voice/internal/cache"
	"github.com/trainertoe/voice/internal/catalog"
	"github.com/trainertoe/voice/internal/tts"
	"github.com/trainertoe/voice/internal/tts/engines"
	"github.com/trainertoe/voice/internal/voice"
)

// pipeline owns the pieces behind a Dispatcher for one command run.
type pipeline struct {
	cache      *cache.CacheManager
	dispatcher *voice.Dispatcher
}

// newPipeline builds the Dispatcher. Commands that never synthesize pass
// needEngine false and get a placeholder when the engine can't be built.
func newPipeline(needEngine bool) (*pipeline, error) {
	engine, err := newEngine()
	if err != nil {
		if needEngine {
			return nil, err
		}
		log.Debug("Engine unavailable", "engine", engineType, "err", err)
		engine = unavailableEngine{name: string(engineType), err: err}
	}

	phrases, err := loadCatalog()
	if err != nil {
		return nil, err
	}

	cm, err := cache.NewCacheManager(cfg.CacheManagerConfig(), log.Default())
	if err != nil {
		return nil, fmt.Errorf("unable to open phrase cache: %w", err)
	}

	opts := cfg.VoiceOptions()
	opts.Logger = log.Default()
	return &pipeline{
		cache:      cm,
		dispatcher: voice.New(engine, cm, phrases, opts),
	}, nil
}

func (p *pipeline) Close() error {
	return p.cache.Close()
}

func newEngine() (tts.Synthesizer, error) {
	switch engineType {
	case tts.EngineMock:
		return engines.NewMockEngine(), nil
	case tts.EngineElevenLabs:
		if err := cfg.ValidateRemote(); err != nil {
			return nil, err
		}
		ec := cfg.EngineConfig()
		ec.Logger = log.Default()
		engine, err := engines.NewElevenLabsEngine(ec)
		if err != nil {
			return nil, err
		}
		return engine, nil
	default:
		return nil, fmt.Errorf("%w: %q", tts.ErrInvalidEngine, engineType)
	}
}

func loadCatalog() (*catalog.Catalog, error) {
	if cfg.Voice.CatalogPath == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.Load(cfg.Voice.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("unable to load phrase catalog: %w", err)
	}
	log.Debug("Using phrase catalog", "path", cfg.Voice.CatalogPath, "phrases", c.Len())
	return c, nil
}

// unavailableEngine stands in for an engine that could not be built.
type unavailableEngine struct {
	name string
	err  error
}

func (e unavailableEngine) Name() string {
	return e.name + " (unavailable)"
}

func (e unavailableEngine) Synthesize(context.Context, string) ([]byte, error) {
	return nil, e.err
}
