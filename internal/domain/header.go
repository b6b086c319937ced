package domain

import "fmt"

const headerFormat = "/* Tone: %s | Language: %s | Genre: %s */\n/* Pattern: \"%s\" */\n\n"

// AssembleHeader renders the annotation block consumed by prompt assembly.
// Field order and delimiters are parsed downstream and must not change.
func AssembleHeader(prefs Preferences, pattern string) string {
	return fmt.Sprintf(headerFormat, prefs.Tone, prefs.Language, prefs.Genre, pattern)
}

type PromptHeaderResult struct {
	Header      string       `json:"header"`
	Tone        Tone         `json:"tone"`
	Language    Language     `json:"language"`
	Genre       string       `json:"genre"`
	PatternUsed string       `json:"pattern_used"`
	Fallback    FallbackTier `json:"fallback"`
}
