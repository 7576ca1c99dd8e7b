// Package tts holds what every speech engine shares: the Synthesizer
// contract, input sanitization, the retry policy for remote providers and
// the error types callers classify failures with.
package tts

import "context"

// Synthesizer turns text into a complete audio buffer.
// Implementations sanitize their own input and retry transient failures
// internally; the returned bytes are exactly what the provider produced.
type Synthesizer interface {
	// Synthesize returns the audio for text. Errors are *InvalidInputError
	// or *SynthesisError.
	Synthesize(ctx context.Context, text string) ([]byte, error)

	// Name identifies the engine in logs and reports.
	Name() string
}
