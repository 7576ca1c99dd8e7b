// Package config holds the toevoice configuration model and its loaders.
package config

import (
	"time"

	"github.com/trainertoe/voice/internal/cache"
	"github.com/trainertoe/voice/internal/tts/engines"
	"github.com/trainertoe/voice/internal/voice"
)

// Config contains all toevoice configuration options.
type Config struct {
	// Engine selects the synthesizer, see tts.ValidateEngineSelection
	Engine string `yaml:"engine" env:"TOEVOICE_ENGINE"`

	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Cache      CacheConfig      `yaml:"cache"`
	Voice      VoiceConfig      `yaml:"voice"`
	Log        LogConfig        `yaml:"log"`
}

// ElevenLabsConfig contains the remote provider settings.
type ElevenLabsConfig struct {
	APIKey  string `yaml:"api_key" env:"ELEVENLABS_API_KEY"`
	VoiceID string `yaml:"voice_id" env:"ELEVENLABS_VOICE_ID"`
	BaseURL string `yaml:"base_url" env:"ELEVENLABS_BASE_URL" envDefault:"https://api.elevenlabs.io/v1"`
	ModelID string `yaml:"model_id" env:"ELEVENLABS_MODEL_ID" envDefault:"eleven_monolingual_v1"`

	Stability       float64 `yaml:"stability" env:"ELEVENLABS_STABILITY" envDefault:"0.75"`
	SimilarityBoost float64 `yaml:"similarity_boost" env:"ELEVENLABS_SIMILARITY_BOOST" envDefault:"0.8"`
	Style           float64 `yaml:"style" env:"ELEVENLABS_STYLE" envDefault:"0.8"`
	UseSpeakerBoost bool    `yaml:"use_speaker_boost" env:"ELEVENLABS_USE_SPEAKER_BOOST" envDefault:"true"`

	Timeout           time.Duration `yaml:"timeout" env:"ELEVENLABS_TIMEOUT" envDefault:"30s"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"ELEVENLABS_REQUESTS_PER_MINUTE" envDefault:"120"`
	MaxRetries        int           `yaml:"max_retries" env:"ELEVENLABS_MAX_RETRIES" envDefault:"3"`
	BaseDelay         time.Duration `yaml:"base_delay" env:"ELEVENLABS_BASE_DELAY" envDefault:"1s"`
	MaxJitter         time.Duration `yaml:"max_jitter" env:"ELEVENLABS_MAX_JITTER" envDefault:"1s"`
}

// CacheConfig contains the phrase cache settings.
type CacheConfig struct {
	Dir              string `yaml:"dir" env:"TOEVOICE_CACHE_DIR" envDefault:"./tts_cache"`
	MemoryItems      int    `yaml:"memory_items" env:"TOEVOICE_CACHE_MEMORY_ITEMS" envDefault:"100"`
	CompressionLevel int    `yaml:"compression_level" env:"TOEVOICE_CACHE_COMPRESSION_LEVEL" envDefault:"6"`
	Watch            bool   `yaml:"watch" env:"TOEVOICE_CACHE_WATCH" envDefault:"false"`
}

// VoiceConfig contains the dispatcher settings.
type VoiceConfig struct {
	PrewarmDelay   time.Duration `yaml:"prewarm_delay" env:"TOEVOICE_PREWARM_DELAY" envDefault:"200ms"`
	CostPerChar    float64       `yaml:"cost_per_char" env:"TOEVOICE_COST_PER_CHAR" envDefault:"0.000015"`
	AvgPhraseChars int           `yaml:"avg_phrase_chars" env:"TOEVOICE_AVG_PHRASE_CHARS" envDefault:"20"`

	// CatalogPath replaces the built-in phrase catalog when set
	CatalogPath string `yaml:"catalog_path" env:"TOEVOICE_CATALOG_PATH"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level" env:"TOEVOICE_LOG_LEVEL" envDefault:"info"`
	File  string `yaml:"file" env:"TOEVOICE_LOG_FILE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ElevenLabs: DefaultElevenLabsConfig(),
		Cache:      DefaultCacheConfig(),
		Voice:      DefaultVoiceConfig(),
		Log:        LogConfig{Level: "info"},
	}
}

// DefaultElevenLabsConfig returns the provider defaults. Credentials are
// left empty.
func DefaultElevenLabsConfig() ElevenLabsConfig {
	d := engines.DefaultElevenLabsConfig()
	return ElevenLabsConfig{
		BaseURL:           d.BaseURL,
		ModelID:           d.ModelID,
		Stability:         d.VoiceSettings.Stability,
		SimilarityBoost:   d.VoiceSettings.SimilarityBoost,
		Style:             d.VoiceSettings.Style,
		UseSpeakerBoost:   d.VoiceSettings.UseSpeakerBoost,
		Timeout:           d.Timeout,
		RequestsPerMinute: d.RequestsPerMinute,
		MaxRetries:        d.MaxRetries,
		BaseDelay:         d.BaseDelay,
		MaxJitter:         d.MaxJitter,
	}
}

// DefaultCacheConfig returns the cache defaults.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Dir:              "./tts_cache",
		MemoryItems:      cache.DefaultMemoryItems,
		CompressionLevel: cache.DefaultCompressionLevel,
	}
}

// DefaultVoiceConfig returns the dispatcher defaults.
func DefaultVoiceConfig() VoiceConfig {
	return VoiceConfig{
		PrewarmDelay:   voice.DefaultPrewarmDelay,
		CostPerChar:    voice.DefaultCostPerChar,
		AvgPhraseChars: voice.DefaultAvgPhraseChars,
	}
}

// EngineConfig converts the provider section for engines.NewElevenLabsEngine.
func (c Config) EngineConfig() engines.ElevenLabsConfig {
	e := c.ElevenLabs
	return engines.ElevenLabsConfig{
		APIKey:  e.APIKey,
		VoiceID: e.VoiceID,
		BaseURL: e.BaseURL,
		ModelID: e.ModelID,
		VoiceSettings: engines.VoiceSettings{
			Stability:       e.Stability,
			SimilarityBoost: e.SimilarityBoost,
			Style:           e.Style,
			UseSpeakerBoost: e.UseSpeakerBoost,
		},
		Timeout:           e.Timeout,
		RequestsPerMinute: e.RequestsPerMinute,
		MaxRetries:        e.MaxRetries,
		BaseDelay:         e.BaseDelay,
		MaxJitter:         e.MaxJitter,
	}
}

// CacheManagerConfig converts the cache section for cache.NewCacheManager.
func (c Config) CacheManagerConfig() *cache.CacheConfig {
	return &cache.CacheConfig{
		Dir:              c.Cache.Dir,
		MemoryItems:      c.Cache.MemoryItems,
		CompressionLevel: c.Cache.CompressionLevel,
		Watch:            c.Cache.Watch,
	}
}

// VoiceOptions converts the voice section for voice.New.
func (c Config) VoiceOptions() voice.Options {
	return voice.Options{
		PrewarmDelay:   c.Voice.PrewarmDelay,
		CostPerChar:    c.Voice.CostPerChar,
		AvgPhraseChars: c.Voice.AvgPhraseChars,
	}
}
