package chain

import (
	"errors"
	"fmt"

	"github.com/bnema/arcprompt/internal/domain"
	"github.com/bnema/arcprompt/internal/ports"
)

// Library overlays pattern libraries. The first layer that has a key wins.
type Library struct {
	layers []ports.PatternLibrary
}

var (
	_ ports.PatternLibrary    = (*Library)(nil)
	_ ports.PatternEnumerator = (*Library)(nil)
)

var errNoLayers = errors.New("pattern library chain has no layers")

func NewLibrary(layers ...ports.PatternLibrary) *Library {
	library, err := NewLibraryChecked(layers...)
	if err != nil {
		panic(err)
	}

	return library
}

func NewLibraryChecked(layers ...ports.PatternLibrary) (*Library, error) {
	if len(layers) == 0 {
		return nil, errNoLayers
	}
	for i, layer := range layers {
		if layer == nil {
			return nil, fmt.Errorf("layer %d: %w", i, domain.ErrNilLibrary)
		}
	}

	copied := make([]ports.PatternLibrary, len(layers))
	copy(copied, layers)
	return &Library{layers: copied}, nil
}

func (l *Library) Lookup(genre, arc string) (string, bool) {
	for _, layer := range l.layers {
		if pattern, ok := layer.Lookup(genre, arc); ok && pattern != "" {
			return pattern, true
		}
	}

	return "", false
}

// Patterns merges every enumerable layer, earlier layers taking precedence.
// Layers that cannot enumerate are skipped.
func (l *Library) Patterns() map[string]map[string]string {
	merged := map[string]map[string]string{}

	for i := len(l.layers) - 1; i >= 0; i-- {
		enumerator, ok := l.layers[i].(ports.PatternEnumerator)
		if !ok {
			continue
		}

		for genre, arcs := range enumerator.Patterns() {
			if merged[genre] == nil {
				merged[genre] = map[string]string{}
			}
			for arc, pattern := range arcs {
				merged[genre][arc] = pattern
			}
		}
	}

	return merged
}

func (l *Library) Len() int {
	return len(l.layers)
}
