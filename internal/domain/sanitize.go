package domain

import (
	"strings"
	"unicode"

	"github.com/spf13/cast"
)

const maxLabelRunes = 80

// Sanitize coerces raw caller input into a canonical tuple. It never fails:
// unknown enum values fall back to their defaults and free-form text is
// stripped of anything that could break the header block.
func Sanitize(prefs Preferences, ctx DocumentContext) (Preferences, DocumentContext) {
	return SanitizePreferences(prefs), SanitizeContext(ctx)
}

func SanitizePreferences(prefs Preferences) Preferences {
	tone := Tone(normalizeToken(string(prefs.Tone)))
	if !tone.Valid() {
		tone = DefaultTone
	}

	language := Language(normalizeToken(string(prefs.Language)))
	if !language.Valid() {
		language = DefaultLanguage
	}

	genre := sanitizeLabel(prefs.Genre)
	if genre == "" {
		genre = DefaultGenre
	}

	return Preferences{Tone: tone, Language: language, Genre: genre}
}

func SanitizeContext(ctx DocumentContext) DocumentContext {
	arc := Arc(normalizeToken(string(ctx.Arc)))
	if !arc.Valid() {
		arc = ArcSetup
	}

	return DocumentContext{
		Scene:         sanitizeText(ctx.Scene),
		Arc:           arc,
		CharacterName: sanitizeLabel(ctx.CharacterName),
	}
}

// LooseRequest coerces an untyped request (decoded JSON, form values) into
// the typed tuple. Values that cannot be read as text become empty and are
// defaulted by Sanitize later.
func LooseRequest(raw map[string]any) (Preferences, DocumentContext) {
	prefs := Preferences{
		Tone:     Tone(looseString(raw, "tone")),
		Language: Language(looseString(raw, "language")),
		Genre:    looseString(raw, "genre"),
	}
	ctx := DocumentContext{
		Scene:         looseString(raw, "scene"),
		Arc:           Arc(looseString(raw, "arc")),
		CharacterName: looseString(raw, "character_name", "characterName", "character"),
	}
	return prefs, ctx
}

func looseString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok || value == nil {
			continue
		}
		text, err := cast.ToStringE(value)
		if err != nil {
			return ""
		}
		return text
	}
	return ""
}

func sanitizeText(value string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			if unicode.IsSpace(r) {
				return ' '
			}
			return -1
		}
		return r
	}, value)

	return strings.TrimSpace(cleaned)
}

// sanitizeLabel is sanitizeText plus the rules for values echoed inside the
// header comment: no comment terminator and a bounded length.
func sanitizeLabel(value string) string {
	cleaned := sanitizeText(value)
	cleaned = strings.ReplaceAll(cleaned, "*/", "* /")

	runes := []rune(cleaned)
	if len(runes) > maxLabelRunes {
		cleaned = strings.TrimSpace(string(runes[:maxLabelRunes]))
	}

	return cleaned
}
