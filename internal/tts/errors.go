package tts

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Common TTS errors
var (
	// ErrEmptyAudio indicates the provider answered successfully with no audio.
	// It is treated as a transient glitch and retried.
	ErrEmptyAudio = errors.New("provider returned empty audio buffer")

	// ErrMissingCredentials indicates the remote engine has no API key or voice.
	ErrMissingCredentials = errors.New("remote TTS credentials not configured")

	// ErrInvalidEngine indicates an unknown engine was specified
	ErrInvalidEngine = errors.New("invalid TTS engine specified")
)

// InvalidInputError is returned when text has nothing left to speak after
// sanitization. It is never retried.
type InvalidInputError struct {
	Input  string
	Reason string
}

// Error implements the error interface
func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid TTS input %q: %s", Preview(e.Input, 50), e.Reason)
}

// SynthesisError is a remote provider failure. Retriable marks failures the
// retry loop may try again; everything else fails on the first attempt.
type SynthesisError struct {
	// Op names the operation, filled in once retries are exhausted
	Op string

	// StatusCode is the HTTP status, zero when no response was received
	StatusCode int

	// Retriable is true for 5xx, 429, 408 and empty audio responses
	Retriable bool

	// Attempts is the number of calls made, filled in by the retry loop
	Attempts int

	// Body holds the provider's error body, if any
	Body string

	// Err is the underlying cause, if any
	Err error
}

// Error implements the error interface
func (e *SynthesisError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}

	switch {
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	case e.StatusCode != 0:
		fmt.Fprintf(&b, "provider returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
		if e.Body != "" {
			b.WriteString(" - ")
			b.WriteString(e.Body)
		}
	default:
		b.WriteString("synthesis failed")
	}

	if e.Attempts > 1 {
		fmt.Fprintf(&b, " (after %d attempts)", e.Attempts)
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// NewStatusError builds the SynthesisError for a non-2xx provider response.
func NewStatusError(status int, body string) *SynthesisError {
	return &SynthesisError{
		StatusCode: status,
		Retriable:  IsRetriableStatus(status),
		Body:       strings.TrimSpace(body),
	}
}

// IsRetriableStatus reports whether an HTTP status is worth another attempt.
func IsRetriableStatus(status int) bool {
	return status >= 500 ||
		status == http.StatusTooManyRequests ||
		status == http.StatusRequestTimeout
}

// IsRetriable reports whether err is a SynthesisError marked retriable.
func IsRetriable(err error) bool {
	var synthErr *SynthesisError
	if errors.As(err, &synthErr) {
		return synthErr.Retriable
	}
	return false
}

// Preview shortens text to at most max bytes for log lines and error
// messages, cutting on a rune boundary.
func Preview(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
