package config

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/trainertoe/voice/internal/tts"
)

var logLevels = []interface{}{"debug", "info", "warn", "error", "fatal"}

// Validate checks every section. Credentials are not required here, see
// ValidateRemote.
func (c Config) Validate() error {
	if _, err := tts.ValidateEngineSelection(c.Engine, tts.EngineNone); err != nil {
		return err
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.ElevenLabs),
		validation.Field(&c.Cache),
		validation.Field(&c.Voice),
		validation.Field(&c.Log),
	)
}

// Validate checks the provider tuning.
func (e ElevenLabsConfig) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.BaseURL, validation.Required, is.URL),
		validation.Field(&e.Stability, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&e.SimilarityBoost, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&e.Style, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&e.Timeout, validation.Min(0)),
		validation.Field(&e.MaxRetries, validation.Min(0)),
		validation.Field(&e.BaseDelay, validation.Min(0)),
		validation.Field(&e.MaxJitter, validation.Min(0)),
	)
}

// ValidateRemote checks that the provider can actually be called.
func (c Config) ValidateRemote() error {
	e := c.ElevenLabs
	err := validation.ValidateStruct(&e,
		validation.Field(&e.APIKey, validation.Required),
		validation.Field(&e.VoiceID, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", tts.ErrMissingCredentials, err)
	}
	return nil
}

// Validate checks the cache settings.
func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.MemoryItems, validation.Required, validation.Min(1)),
		validation.Field(&c.CompressionLevel, validation.Required, validation.Min(1), validation.Max(9)),
	)
}

// Validate checks the dispatcher settings.
func (v VoiceConfig) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.PrewarmDelay, validation.Min(0)),
		validation.Field(&v.CostPerChar, validation.Min(0.0)),
		validation.Field(&v.AvgPhraseChars, validation.Min(0)),
	)
}

// Validate checks the log settings.
func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.By(func(value interface{}) error {
			s, _ := value.(string)
			return validation.In(logLevels...).Validate(strings.ToLower(s))
		})),
	)
}
