package cli

import (
	"strings"

	"github.com/fmueller/voxbridge/internal/engine"
)

const blankAudioToken = "[BLANK_AUDIO]"

func isBlankTranscript(transcript string) bool {
	trimmed := strings.TrimSpace(transcript)
	if trimmed == "" {
		return true
	}

	return strings.EqualFold(trimmed, blankAudioToken)
}

func noSpeechHint() string {
	return "No speech detected. Check the recording level and that the audio is 16 kHz mono, then try again."
}

func sanitizeLanguage(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	if trimmed == "" {
		return "auto"
	}
	return trimmed
}

// languageHint maps the user-facing "auto" to the engine's unset language.
func languageHint(language string) string {
	if language == "auto" {
		return engine.LanguageAuto
	}
	return language
}
