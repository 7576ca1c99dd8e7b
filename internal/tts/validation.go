package tts

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// sanitizer strips markup and template delimiters along with NUL bytes.
var sanitizer = strings.NewReplacer(
	"<", "",
	">", "",
	"{", "",
	"}", "",
	"\x00", "",
)

// Sanitize prepares text for the provider: surrounding whitespace is
// trimmed, angle brackets, braces and NUL bytes are removed, and the result
// is cut to MaxInputLength UTF-16 code units. Text with nothing speakable
// left fails with an InvalidInputError.
func Sanitize(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", &InvalidInputError{Input: text, Reason: "empty text"}
	}

	cleaned := truncateUTF16(sanitizer.Replace(trimmed), MaxInputLength)
	if strings.TrimSpace(cleaned) == "" {
		return "", &InvalidInputError{Input: text, Reason: "no valid characters left after sanitization"}
	}

	return cleaned, nil
}

// truncateUTF16 cuts s to at most max UTF-16 code units without splitting a
// surrogate pair.
func truncateUTF16(s string, max int) string {
	units := 0
	for i, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > max {
			return s[:i]
		}
		units += n
	}
	return s
}

// CharCount returns the length of text in UTF-16 code units, the unit the
// provider bills by.
func CharCount(text string) int {
	units := 0
	for _, r := range text {
		if n := utf16.RuneLen(r); n > 0 {
			units += n
		} else {
			units++
		}
	}
	return units
}

// ValidateEngineSelection resolves the engine to use. The CLI argument takes
// precedence over the configured value; with neither set the remote engine
// is used.
func ValidateEngineSelection(cliArg string, configured EngineType) (EngineType, error) {
	engineType := strings.ToLower(strings.TrimSpace(cliArg))
	if engineType == "" {
		engineType = strings.ToLower(string(configured))
	}

	switch engineType {
	case "", "elevenlabs", "eleven", "11labs":
		return EngineElevenLabs, nil
	case "mock", "offline":
		return EngineMock, nil
	default:
		return EngineNone, fmt.Errorf("%w: %s\n\nSupported engines:\n  - elevenlabs (remote, billed per character)\n  - mock (offline, for testing)", ErrInvalidEngine, engineType)
	}
}
