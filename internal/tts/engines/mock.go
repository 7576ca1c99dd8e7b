package engines

import (
	"context"
	"sync"
	"time"

	"github.com/trainertoe/voice/internal/tts"
)

// mockAudioPrefix marks buffers produced by MockEngine.
const mockAudioPrefix = "MOCKMP3:"

// MockEngine is an offline tts.Synthesizer. It returns a deterministic
// buffer derived from the sanitized text and records every call.
type MockEngine struct {
	// Latency is added to every call
	Latency time.Duration

	// FailWith, when set, decides the error for a given text. Returning nil
	// lets the call succeed.
	FailWith func(text string) error

	mu    sync.Mutex
	texts []string
}

// NewMockEngine creates a mock engine that always succeeds.
func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

// Name implements tts.Synthesizer.
func (m *MockEngine) Name() string {
	return string(tts.EngineMock)
}

// Synthesize implements tts.Synthesizer.
func (m *MockEngine) Synthesize(ctx context.Context, text string) ([]byte, error) {
	clean, err := tts.Sanitize(text)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.texts = append(m.texts, clean)
	m.mu.Unlock()

	if m.Latency > 0 {
		timer := time.NewTimer(m.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, &tts.SynthesisError{Err: ctx.Err()}
		case <-timer.C:
		}
	}

	if m.FailWith != nil {
		if err := m.FailWith(clean); err != nil {
			return nil, err
		}
	}

	return MockAudio(clean), nil
}

// Calls returns how many times Synthesize passed sanitization.
func (m *MockEngine) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}

// Texts returns the sanitized texts seen so far, in call order.
func (m *MockEngine) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// MockAudio returns the buffer MockEngine produces for already sanitized text.
func MockAudio(text string) []byte {
	return []byte(mockAudioPrefix + text)
}
