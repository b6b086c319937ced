package yamlfile

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bnema/arcprompt/internal/adapters/library/memory"
	"gopkg.in/yaml.v3"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int                          `yaml:"version"`
	Patterns map[string]map[string]string `yaml:"patterns"`
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported pattern schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

// Parse decodes a YAML pattern document of the form
//
//	version: 1
//	patterns:
//	  Romance:
//	    setup: "..."
func Parse(source string, data []byte) (*memory.Library, error) {
	var file fileSchema
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode pattern file %s: %w", source, err)
	}
	if err := file.validateVersion(); err != nil {
		return nil, err
	}

	return memory.NewLibrary(source, file.Patterns)
}

func Load(ctx context.Context, path string) (*memory.Library, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("pattern file %s not found: %w", path, err)
		}
		return nil, fmt.Errorf("read pattern file: %w", err)
	}

	return Parse(path, data)
}

func Encode(patterns map[string]map[string]string) ([]byte, error) {
	data, err := yaml.Marshal(fileSchema{Version: currentSchemaVersion, Patterns: patterns})
	if err != nil {
		return nil, fmt.Errorf("encode pattern file: %w", err)
	}

	return data, nil
}
