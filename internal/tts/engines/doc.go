// Package engines contains implementations of the tts.Synthesizer contract.
// ElevenLabs is the billed remote provider; Mock is a deterministic offline
// engine for tests and dry runs.
package engines
