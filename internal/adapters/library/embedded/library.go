// Package embedded exposes the pattern library compiled into the binary.
package embedded

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/bnema/arcprompt/internal/adapters/library/memory"
	"github.com/bnema/arcprompt/internal/adapters/library/yamlfile"
)

const Source = "embedded"

//go:embed patterns.yaml
var patternsYAML []byte

var (
	loadOnce sync.Once
	loaded   *memory.Library
	loadErr  error
)

func Library() (*memory.Library, error) {
	loadOnce.Do(func() {
		loaded, loadErr = yamlfile.Parse(Source, patternsYAML)
		if loadErr != nil {
			loadErr = fmt.Errorf("parse embedded patterns: %w", loadErr)
		}
	})

	return loaded, loadErr
}

// MustLibrary panics if the compiled-in patterns are malformed.
func MustLibrary() *memory.Library {
	library, err := Library()
	if err != nil {
		panic(err)
	}

	return library
}
