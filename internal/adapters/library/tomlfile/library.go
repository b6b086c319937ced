package tomlfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/arcprompt/internal/adapters/library/memory"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	patternsFileMode = 0o600
	patternsDirMode  = 0o700
	tempFilePattern  = ".patterns-*.toml.tmp"
)

// Load reads a TOML pattern file:
//
//	version = 1
//	[patterns.Romance]
//	setup = "..."
func Load(ctx context.Context, path string) (*memory.Library, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := readSchema(path)
	if err != nil {
		return nil, err
	}

	return memory.NewLibrary(path, file.Patterns)
}

// Save validates patterns and atomically replaces the file at path.
func Save(ctx context.Context, path string, patterns map[string]map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	library, err := memory.NewLibrary(path, patterns)
	if err != nil {
		return err
	}

	return writeSchema(path, fileSchema{Version: currentSchemaVersion, Patterns: library.Patterns()})
}

func readSchema(path string) (fileSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, fmt.Errorf("pattern file %s not found: %w", path, err)
		}
		return fileSchema{}, fmt.Errorf("read pattern file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode pattern file %s: %w", path, err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func writeSchema(path string, file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(path), patternsDirMode); err != nil {
		return fmt.Errorf("create patterns directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode pattern file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp pattern file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp pattern file: %w", err)
	}

	if err := tempFile.Chmod(patternsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp pattern file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp pattern file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace pattern file: %w", err)
	}

	cleanup = false
	return nil
}
