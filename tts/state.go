package tts

// SpeechState is whether an utterance is being spoken.
type SpeechState int

const (
	// Silent means no audio is playing.
	Silent SpeechState = iota
	// Speaking means an utterance has started and not yet ended.
	Speaking
)

// String returns the string representation of the state.
func (s SpeechState) String() string {
	switch s {
	case Silent:
		return "silent"
	case Speaking:
		return "speaking"
	default:
		return "unknown"
	}
}
