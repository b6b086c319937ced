// Package dir loads pattern libraries laid out as <root>/<genre>/<arc>.txt.
package dir

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/arcprompt/internal/adapters/library/memory"
	"github.com/bnema/arcprompt/internal/domain"
)

const (
	patternDirMode  = 0o700
	patternFileMode = 0o600
	patternExt      = ".txt"
)

func Load(ctx context.Context, root string) (*memory.Library, error) {
	root = filepath.Clean(root)

	genres, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("pattern directory %s not found: %w", root, err)
		}
		return nil, fmt.Errorf("read pattern directory: %w", err)
	}

	patterns := map[string]map[string]string{}
	for _, genreEntry := range genres {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !genreEntry.IsDir() || strings.HasPrefix(genreEntry.Name(), ".") {
			continue
		}

		genre := genreEntry.Name()
		arcs, err := os.ReadDir(filepath.Join(root, genre))
		if err != nil {
			return nil, fmt.Errorf("read genre directory %q: %w", genre, err)
		}

		for _, arcEntry := range arcs {
			if arcEntry.IsDir() || filepath.Ext(arcEntry.Name()) != patternExt {
				continue
			}

			arc := strings.TrimSuffix(arcEntry.Name(), patternExt)
			data, err := os.ReadFile(filepath.Join(root, genre, arcEntry.Name()))
			if err != nil {
				return nil, fmt.Errorf("read pattern %s/%s: %w", genre, arc, err)
			}

			if patterns[genre] == nil {
				patterns[genre] = map[string]string{}
			}
			patterns[genre][arc] = strings.TrimRight(string(data), "\r\n")
		}
	}

	return memory.NewLibrary(root, patterns)
}

// Save writes one file per (genre, arc). Existing files for other keys are
// left in place.
func Save(ctx context.Context, root string, patterns map[string]map[string]string) error {
	root = filepath.Clean(root)

	for genre, arcs := range patterns {
		for arc, pattern := range arcs {
			if err := ctx.Err(); err != nil {
				return err
			}

			path, err := pathForKey(root, genre, arc)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(path), patternDirMode); err != nil {
				return fmt.Errorf("create genre directory %q: %w", genre, err)
			}
			if err := os.WriteFile(path, []byte(pattern+"\n"), patternFileMode); err != nil {
				return fmt.Errorf("write pattern %s/%s: %w", genre, arc, err)
			}
		}
	}

	return nil
}

func pathForKey(root, genre, arc string) (string, error) {
	trimmed := strings.TrimSpace(genre)
	if trimmed == "" {
		return "", fmt.Errorf("%w: genre is empty", domain.ErrInvalidPatternKey)
	}

	cleaned := filepath.Clean(trimmed)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") || cleaned == "." ||
		strings.ContainsRune(cleaned, filepath.Separator) || strings.HasPrefix(cleaned, ".") {
		return "", fmt.Errorf("%w: genre %q is not a safe directory name", domain.ErrInvalidPatternKey, genre)
	}

	stage := domain.Arc(strings.ToLower(strings.TrimSpace(arc)))
	if !stage.Valid() {
		return "", fmt.Errorf("%w: unknown arc %q", domain.ErrInvalidPatternKey, arc)
	}

	return filepath.Join(root, cleaned, string(stage)+patternExt), nil
}
