package tts

// EngineType represents the TTS engine selection
type EngineType string

const (
	// EngineElevenLabs represents the ElevenLabs remote API
	EngineElevenLabs EngineType = "elevenlabs"

	// EngineMock represents the offline deterministic engine
	EngineMock EngineType = "mock"

	// EngineNone represents no engine selected
	EngineNone EngineType = ""
)

// IsRemote reports whether the engine bills per request.
func (e EngineType) IsRemote() bool {
	return e == EngineElevenLabs
}

// MaxInputLength is the longest text, in UTF-16 code units, sent to the
// provider. Longer input is truncated.
const MaxInputLength = 500
