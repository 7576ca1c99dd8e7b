package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// LoadDotEnv loads variables from the given .env files, defaulting to
// ".env". Missing files are skipped and variables already set in the
// environment are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load builds the configuration from the environment, then applies every
// key set in v (config file or bound flags), expands paths and validates
// the result. A nil v means the global viper instance.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}

	applyViper(v, &cfg)

	if err := cfg.expandPaths(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyViper(v *viper.Viper, cfg *Config) {
	if v.IsSet("engine") {
		cfg.Engine = v.GetString("engine")
	}

	// ElevenLabs
	e := &cfg.ElevenLabs
	if v.IsSet("elevenlabs.api_key") {
		e.APIKey = v.GetString("elevenlabs.api_key")
	}
	if v.IsSet("elevenlabs.voice_id") {
		e.VoiceID = v.GetString("elevenlabs.voice_id")
	}
	if v.IsSet("elevenlabs.base_url") {
		e.BaseURL = v.GetString("elevenlabs.base_url")
	}
	if v.IsSet("elevenlabs.model_id") {
		e.ModelID = v.GetString("elevenlabs.model_id")
	}
	if v.IsSet("elevenlabs.stability") {
		e.Stability = v.GetFloat64("elevenlabs.stability")
	}
	if v.IsSet("elevenlabs.similarity_boost") {
		e.SimilarityBoost = v.GetFloat64("elevenlabs.similarity_boost")
	}
	if v.IsSet("elevenlabs.style") {
		e.Style = v.GetFloat64("elevenlabs.style")
	}
	if v.IsSet("elevenlabs.use_speaker_boost") {
		e.UseSpeakerBoost = v.GetBool("elevenlabs.use_speaker_boost")
	}
	if v.IsSet("elevenlabs.timeout") {
		e.Timeout = v.GetDuration("elevenlabs.timeout")
	}
	if v.IsSet("elevenlabs.requests_per_minute") {
		e.RequestsPerMinute = v.GetInt("elevenlabs.requests_per_minute")
	}
	if v.IsSet("elevenlabs.max_retries") {
		e.MaxRetries = v.GetInt("elevenlabs.max_retries")
	}
	if v.IsSet("elevenlabs.base_delay") {
		e.BaseDelay = v.GetDuration("elevenlabs.base_delay")
	}
	if v.IsSet("elevenlabs.max_jitter") {
		e.MaxJitter = v.GetDuration("elevenlabs.max_jitter")
	}

	// Cache
	if v.IsSet("cache.dir") {
		cfg.Cache.Dir = v.GetString("cache.dir")
	}
	if v.IsSet("cache.memory_items") {
		cfg.Cache.MemoryItems = v.GetInt("cache.memory_items")
	}
	if v.IsSet("cache.compression_level") {
		cfg.Cache.CompressionLevel = v.GetInt("cache.compression_level")
	}
	if v.IsSet("cache.watch") {
		cfg.Cache.Watch = v.GetBool("cache.watch")
	}

	// Voice
	if v.IsSet("voice.prewarm_delay") {
		cfg.Voice.PrewarmDelay = v.GetDuration("voice.prewarm_delay")
	}
	if v.IsSet("voice.cost_per_char") {
		cfg.Voice.CostPerChar = v.GetFloat64("voice.cost_per_char")
	}
	if v.IsSet("voice.avg_phrase_chars") {
		cfg.Voice.AvgPhraseChars = v.GetInt("voice.avg_phrase_chars")
	}
	if v.IsSet("voice.catalog_path") {
		cfg.Voice.CatalogPath = v.GetString("voice.catalog_path")
	}

	// Log
	if v.IsSet("log.level") {
		cfg.Log.Level = v.GetString("log.level")
	}
	if v.IsSet("log.file") {
		cfg.Log.File = v.GetString("log.file")
	}
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Cache.Dir, &c.Voice.CatalogPath, &c.Log.File} {
		if strings.TrimSpace(*p) == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expanding %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}
