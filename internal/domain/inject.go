package domain

import "strings"

const (
	MarkerCharacter      = "{{character}}"
	MarkerProtagonist    = "{{protagonist}}"
	MarkerOtherCharacter = "{{other_character}}"

	defaultCharacterPhrase = "the protagonist"
	otherCharacterPhrase   = "another character"
)

// Markers lists every placeholder with a substitution rule.
func Markers() []string {
	return []string{MarkerCharacter, MarkerProtagonist, MarkerOtherCharacter}
}

// Inject replaces placeholder markers in pattern. Name markers take
// characterName, or a neutral phrase when it is empty; the secondary marker
// always becomes "another character". Replacement is literal, so the name is
// inserted verbatim whatever it contains.
func Inject(pattern string, characterName string) string {
	if !strings.Contains(pattern, "{{") {
		return pattern
	}

	name := characterName
	if name == "" {
		name = defaultCharacterPhrase
	}

	replacer := strings.NewReplacer(
		MarkerCharacter, name,
		MarkerProtagonist, name,
		MarkerOtherCharacter, otherCharacterPhrase,
	)
	return replacer.Replace(pattern)
}

// HasMarkers reports whether any substitutable marker remains in text.
func HasMarkers(text string) bool {
	for _, marker := range Markers() {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
