package domain

import "strings"

type Tone string
type Language string

const (
	ToneFriendly     Tone = "friendly"
	ToneFormal       Tone = "formal"
	ToneCasual       Tone = "casual"
	ToneProfessional Tone = "professional"
	TonePlayful      Tone = "playful"
	ToneDramatic     Tone = "dramatic"

	DefaultTone Tone = ToneFriendly
)

const (
	LanguageEnglish    Language = "en"
	LanguageSpanish    Language = "es"
	LanguageFrench     Language = "fr"
	LanguageGerman     Language = "de"
	LanguageItalian    Language = "it"
	LanguagePortuguese Language = "pt"
	LanguageJapanese   Language = "ja"

	DefaultLanguage Language = LanguageEnglish
)

// DefaultGenre is substituted when a caller supplies no genre.
const DefaultGenre = "General"

func Tones() []Tone {
	return []Tone{ToneFriendly, ToneFormal, ToneCasual, ToneProfessional, TonePlayful, ToneDramatic}
}

func Languages() []Language {
	return []Language{
		LanguageEnglish,
		LanguageSpanish,
		LanguageFrench,
		LanguageGerman,
		LanguageItalian,
		LanguagePortuguese,
		LanguageJapanese,
	}
}

func (t Tone) Valid() bool {
	for _, known := range Tones() {
		if t == known {
			return true
		}
	}
	return false
}

func (l Language) Valid() bool {
	for _, known := range Languages() {
		if l == known {
			return true
		}
	}
	return false
}

// Preferences is the caller's (tone, language, genre) tuple. Values are raw
// until passed through Sanitize.
type Preferences struct {
	Tone     Tone     `json:"tone"`
	Language Language `json:"language"`
	Genre    string   `json:"genre"`
}

func normalizeToken(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
