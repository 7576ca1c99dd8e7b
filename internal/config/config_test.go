package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainertoe/voice/internal/tts"
)

var envKeys = []string{
	"TOEVOICE_ENGINE",
	"ELEVENLABS_API_KEY",
	"ELEVENLABS_VOICE_ID",
	"ELEVENLABS_BASE_URL",
	"ELEVENLABS_MODEL_ID",
	"ELEVENLABS_TIMEOUT",
	"ELEVENLABS_MAX_RETRIES",
	"TOEVOICE_CACHE_DIR",
	"TOEVOICE_CACHE_MEMORY_ITEMS",
	"TOEVOICE_CACHE_COMPRESSION_LEVEL",
	"TOEVOICE_PREWARM_DELAY",
	"TOEVOICE_COST_PER_CHAR",
	"TOEVOICE_CATALOG_PATH",
	"TOEVOICE_LOG_LEVEL",
	"TOEVOICE_LOG_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func yamlViper(t *testing.T, doc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	return v
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	assert.Equal(t, "https://api.elevenlabs.io/v1", cfg.ElevenLabs.BaseURL)
	assert.Equal(t, 100, cfg.Cache.MemoryItems)
	assert.Equal(t, 6, cfg.Cache.CompressionLevel)
	assert.Equal(t, 200*time.Millisecond, cfg.Voice.PrewarmDelay)
	assert.InDelta(t, 0.000015, cfg.Voice.CostPerChar, 1e-12)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ELEVENLABS_API_KEY", "secret")
	t.Setenv("ELEVENLABS_VOICE_ID", "coach")
	t.Setenv("ELEVENLABS_TIMEOUT", "5s")
	t.Setenv("TOEVOICE_CACHE_DIR", "/var/cache/toevoice")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.ElevenLabs.APIKey)
	assert.Equal(t, "coach", cfg.ElevenLabs.VoiceID)
	assert.Equal(t, 5*time.Second, cfg.ElevenLabs.Timeout)
	assert.Equal(t, "/var/cache/toevoice", cfg.Cache.Dir)
	assert.NoError(t, cfg.ValidateRemote())
}

func TestLoadConfigFileOverridesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ELEVENLABS_VOICE_ID", "from-env")
	t.Setenv("TOEVOICE_CACHE_MEMORY_ITEMS", "50")

	v := yamlViper(t, `
engine: mock
elevenlabs:
  voice_id: from-file
  stability: 0.5
  use_speaker_boost: false
  requests_per_minute: 0
  base_delay: 250ms
cache:
  memory_items: 10
  compression_level: 9
  watch: true
voice:
  prewarm_delay: 1s
  avg_phrase_chars: 12
log:
  level: debug
`)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "mock", cfg.Engine)
	assert.Equal(t, "from-file", cfg.ElevenLabs.VoiceID)
	assert.InDelta(t, 0.5, cfg.ElevenLabs.Stability, 1e-9)
	assert.False(t, cfg.ElevenLabs.UseSpeakerBoost)
	assert.Equal(t, 0, cfg.ElevenLabs.RequestsPerMinute)
	assert.Equal(t, 250*time.Millisecond, cfg.ElevenLabs.BaseDelay)
	assert.Equal(t, 10, cfg.Cache.MemoryItems)
	assert.Equal(t, 9, cfg.Cache.CompressionLevel)
	assert.True(t, cfg.Cache.Watch)
	assert.Equal(t, time.Second, cfg.Voice.PrewarmDelay)
	assert.Equal(t, 12, cfg.Voice.AvgPhraseChars)
	assert.Equal(t, "debug", cfg.Log.Level)

	// untouched keys keep their defaults
	assert.Equal(t, DefaultElevenLabsConfig().ModelID, cfg.ElevenLabs.ModelID)
}

func TestLoadExpandsHomeDirectory(t *testing.T) {
	clearEnv(t)
	home, err := homedir.Dir()
	require.NoError(t, err)

	v := yamlViper(t, `
cache:
  dir: ~/voices
log:
  file: ~/toevoice.log
`)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "voices"), cfg.Cache.Dir)
	assert.Equal(t, filepath.Join(home, "toevoice.log"), cfg.Log.File)
	assert.Empty(t, cfg.Voice.CatalogPath)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"zero memory items", "cache:\n  memory_items: 0\n"},
		{"compression level out of range", "cache:\n  compression_level: 12\n"},
		{"empty cache dir", "cache:\n  dir: \"\"\n"},
		{"negative prewarm delay", "voice:\n  prewarm_delay: -1s\n"},
		{"negative cost", "voice:\n  cost_per_char: -0.1\n"},
		{"stability above one", "elevenlabs:\n  stability: 1.5\n"},
		{"bad base url", "elevenlabs:\n  base_url: \"not a url\"\n"},
		{"negative retries", "elevenlabs:\n  max_retries: -1\n"},
		{"unknown log level", "log:\n  level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(yamlViper(t, tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	clearEnv(t)
	_, err := Load(yamlViper(t, "engine: espeak\n"))
	assert.ErrorIs(t, err, tts.ErrInvalidEngine)
}

func TestValidateRemote(t *testing.T) {
	cfg := DefaultConfig()
	assert.ErrorIs(t, cfg.ValidateRemote(), tts.ErrMissingCredentials)

	cfg.ElevenLabs.APIKey = "secret"
	assert.ErrorIs(t, cfg.ValidateRemote(), tts.ErrMissingCredentials)

	cfg.ElevenLabs.VoiceID = "coach"
	assert.NoError(t, cfg.ValidateRemote())
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ElevenLabs.APIKey = "secret"
	cfg.ElevenLabs.VoiceID = "coach"
	cfg.ElevenLabs.Style = 0.3
	cfg.Cache.Dir = "/tmp/voices"
	cfg.Cache.Watch = true
	cfg.Voice.AvgPhraseChars = 7

	ec := cfg.EngineConfig()
	assert.Equal(t, "secret", ec.APIKey)
	assert.Equal(t, "coach", ec.VoiceID)
	assert.InDelta(t, 0.3, ec.VoiceSettings.Style, 1e-9)
	assert.InDelta(t, 0.75, ec.VoiceSettings.Stability, 1e-9)
	assert.True(t, ec.VoiceSettings.UseSpeakerBoost)
	assert.Equal(t, 120, ec.RequestsPerMinute)
	assert.Equal(t, 3, ec.MaxRetries)

	cc := cfg.CacheManagerConfig()
	assert.Equal(t, "/tmp/voices", cc.Dir)
	assert.Equal(t, 100, cc.MemoryItems)
	assert.Equal(t, 6, cc.CompressionLevel)
	assert.True(t, cc.Watch)

	vo := cfg.VoiceOptions()
	assert.Equal(t, 7, vo.AvgPhraseChars)
	assert.Equal(t, 200*time.Millisecond, vo.PrewarmDelay)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "TOEVOICE_DOTENV_TEST"
	t.Cleanup(func() { os.Unsetenv(key) })

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=loaded\n"), 0o600))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "loaded", os.Getenv(key))
}
