// Package memory holds the in-memory (genre, arc) table every library
// backend loads into.
package memory

import (
	"fmt"
	"strings"

	"github.com/bnema/arcprompt/internal/domain"
	"github.com/bnema/arcprompt/internal/ports"
)

type Library struct {
	source   string
	patterns map[string]map[string]string
}

var (
	_ ports.PatternLibrary    = (*Library)(nil)
	_ ports.PatternEnumerator = (*Library)(nil)
)

// NewLibrary validates and copies patterns. Genres are trimmed, arcs are
// lower-cased and must be one of the four stages. Empty patterns are dropped.
func NewLibrary(source string, patterns map[string]map[string]string) (*Library, error) {
	table := make(map[string]map[string]string, len(patterns))

	for rawGenre, arcs := range patterns {
		genre := strings.TrimSpace(rawGenre)
		if genre == "" {
			return nil, fmt.Errorf("%s: %w: empty genre", source, domain.ErrInvalidPatternKey)
		}

		for rawArc, pattern := range arcs {
			arc := domain.Arc(strings.ToLower(strings.TrimSpace(rawArc)))
			if !arc.Valid() {
				return nil, fmt.Errorf("%s: %w: genre %q has unknown arc %q", source, domain.ErrInvalidPatternKey, genre, rawArc)
			}
			if strings.TrimSpace(pattern) == "" {
				continue
			}

			if table[genre] == nil {
				table[genre] = map[string]string{}
			}
			table[genre][string(arc)] = pattern
		}
	}

	return &Library{source: source, patterns: table}, nil
}

func (l *Library) Lookup(genre, arc string) (string, bool) {
	pattern, ok := l.patterns[genre][arc]
	return pattern, ok
}

func (l *Library) Patterns() map[string]map[string]string {
	out := make(map[string]map[string]string, len(l.patterns))
	for genre, arcs := range l.patterns {
		copied := make(map[string]string, len(arcs))
		for arc, pattern := range arcs {
			copied[arc] = pattern
		}
		out[genre] = copied
	}
	return out
}

func (l *Library) Source() string {
	return l.source
}

// Len counts (genre, arc) entries.
func (l *Library) Len() int {
	count := 0
	for _, arcs := range l.patterns {
		count += len(arcs)
	}
	return count
}
