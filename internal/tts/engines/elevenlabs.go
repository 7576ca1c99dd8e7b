package engines

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"resty.dev/v3"

	"github.com/trainertoe/voice/internal/tts"
)

// ElevenLabs defaults
const (
	DefaultElevenLabsBaseURL = "https://api.elevenlabs.io/v1"
	DefaultElevenLabsModel   = "eleven_monolingual_v1"
	DefaultRequestTimeout    = 30 * time.Second

	// maxErrorBody caps how much of an error response ends up in messages.
	maxErrorBody = 512
)

// VoiceSettings tunes the provider's rendering of the configured voice.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// DefaultVoiceSettings returns the tuned settings for workout callouts.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.75,
		SimilarityBoost: 0.8,
		Style:           0.8,
		UseSpeakerBoost: true,
	}
}

// ElevenLabsConfig holds configuration for the ElevenLabs engine.
type ElevenLabsConfig struct {
	// APIKey is sent in the xi-api-key header (required)
	APIKey string

	// VoiceID selects the voice (required)
	VoiceID string

	// BaseURL of the API, defaults to DefaultElevenLabsBaseURL
	BaseURL string

	// ModelID defaults to DefaultElevenLabsModel
	ModelID string

	VoiceSettings VoiceSettings

	// Timeout per HTTP request, defaults to DefaultRequestTimeout
	Timeout time.Duration

	// RequestsPerMinute caps outgoing calls; zero or less disables the limit
	RequestsPerMinute int

	// Retry policy, used as given
	MaxRetries int
	BaseDelay  time.Duration
	MaxJitter  time.Duration

	Logger *log.Logger
}

// DefaultElevenLabsConfig returns a configuration with every default set
// except the credentials.
func DefaultElevenLabsConfig() ElevenLabsConfig {
	return ElevenLabsConfig{
		BaseURL:           DefaultElevenLabsBaseURL,
		ModelID:           DefaultElevenLabsModel,
		VoiceSettings:     DefaultVoiceSettings(),
		Timeout:           DefaultRequestTimeout,
		RequestsPerMinute: 120,
		MaxRetries:        tts.DefaultMaxRetries,
		BaseDelay:         tts.DefaultBaseDelay,
		MaxJitter:         tts.DefaultMaxJitter,
	}
}

// ElevenLabsEngine implements tts.Synthesizer against the ElevenLabs
// text-to-speech endpoint. It holds no state beyond its configuration and
// a request counter.
type ElevenLabsEngine struct {
	config   ElevenLabsConfig
	endpoint string

	client      *resty.Client
	rateLimiter *rate.Limiter
	retrier     *tts.Retrier
	logger      *log.Logger

	// Requests actually sent, including retries
	requests atomic.Int64
}

// synthesisRequest is the JSON body of a text-to-speech call.
type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// NewElevenLabsEngine creates a new ElevenLabs engine.
func NewElevenLabsEngine(config ElevenLabsConfig) (*ElevenLabsEngine, error) {
	if strings.TrimSpace(config.APIKey) == "" || strings.TrimSpace(config.VoiceID) == "" {
		return nil, fmt.Errorf("%w: ElevenLabs needs an API key and a voice id", tts.ErrMissingCredentials)
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultElevenLabsBaseURL
	}
	if config.ModelID == "" {
		config.ModelID = DefaultElevenLabsModel
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultRequestTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("elevenlabs")

	var limiter *rate.Limiter
	if config.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1)
	}

	retrier := tts.NewRetrier(logger)
	retrier.MaxRetries = config.MaxRetries
	retrier.BaseDelay = config.BaseDelay
	retrier.MaxJitter = config.MaxJitter

	client := resty.New().SetTimeout(config.Timeout)

	return &ElevenLabsEngine{
		config:      config,
		endpoint:    strings.TrimRight(config.BaseURL, "/") + "/text-to-speech/" + url.PathEscape(config.VoiceID),
		client:      client,
		rateLimiter: limiter,
		retrier:     retrier,
		logger:      logger,
	}, nil
}

// Name implements tts.Synthesizer.
func (e *ElevenLabsEngine) Name() string {
	return string(tts.EngineElevenLabs)
}

// Requests returns the number of HTTP requests sent so far, retries included.
func (e *ElevenLabsEngine) Requests() int64 {
	return e.requests.Load()
}

// Synthesize sanitizes text and requests audio for it, retrying transient
// provider failures with exponential backoff.
func (e *ElevenLabsEngine) Synthesize(ctx context.Context, text string) ([]byte, error) {
	clean, err := tts.Sanitize(text)
	if err != nil {
		return nil, err
	}

	op := fmt.Sprintf("generateSpeech(%q)", tts.Preview(clean, 50))

	var audio []byte
	err = e.retrier.Do(ctx, op, func(ctx context.Context) error {
		data, err := e.request(ctx, clean)
		if err != nil {
			return err
		}
		audio = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return audio, nil
}

// request performs a single call. Every failure is a *tts.SynthesisError.
func (e *ElevenLabsEngine) request(ctx context.Context, text string) ([]byte, error) {
	if e.rateLimiter != nil {
		if err := e.rateLimiter.Wait(ctx); err != nil {
			return nil, &tts.SynthesisError{Err: fmt.Errorf("rate limit wait cancelled: %w", err)}
		}
	}

	requestID := uuid.NewString()
	start := time.Now()
	e.requests.Add(1)

	resp, err := e.client.R().
		SetContext(ctx).
		SetHeader("Accept", "audio/mpeg").
		SetHeader("Content-Type", "application/json").
		SetHeader("xi-api-key", e.config.APIKey).
		SetBody(synthesisRequest{
			Text:          text,
			ModelID:       e.config.ModelID,
			VoiceSettings: e.config.VoiceSettings,
		}).
		SetDoNotParseResponse(true).
		Post(e.endpoint)
	if err != nil {
		e.logger.Debug("Request failed", "request_id", requestID, "err", err)
		return nil, &tts.SynthesisError{Err: err}
	}

	body := resp.RawResponse.Body
	defer body.Close()
	status := resp.RawResponse.StatusCode

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &tts.SynthesisError{StatusCode: status, Err: fmt.Errorf("read response: %w", err)}
	}

	if status < 200 || status >= 300 {
		e.logger.Debug("Provider error",
			"request_id", requestID,
			"status", status,
			"elapsed", time.Since(start).Round(time.Millisecond))
		return nil, tts.NewStatusError(status, tts.Preview(string(data), maxErrorBody))
	}

	if len(data) == 0 {
		return nil, &tts.SynthesisError{StatusCode: status, Retriable: true, Err: tts.ErrEmptyAudio}
	}

	e.logger.Debug("Synthesized",
		"request_id", requestID,
		"chars", tts.CharCount(text),
		"bytes", len(data),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return data, nil
}
