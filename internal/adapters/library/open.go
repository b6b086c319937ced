// Package library opens pattern libraries from files, directories and
// SQLite databases.
package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/arcprompt/internal/adapters/library/chain"
	"github.com/bnema/arcprompt/internal/adapters/library/dir"
	"github.com/bnema/arcprompt/internal/adapters/library/embedded"
	"github.com/bnema/arcprompt/internal/adapters/library/memory"
	"github.com/bnema/arcprompt/internal/adapters/library/tomlfile"
	"github.com/bnema/arcprompt/internal/adapters/library/yamlfile"
	"github.com/bnema/arcprompt/internal/adapters/store/sqlite"
	"github.com/bnema/arcprompt/internal/domain"
	"github.com/bnema/arcprompt/internal/ports"
	"go.uber.org/zap"
)

type Format string

const (
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
	FormatSQLite Format = "sqlite"
	FormatDir    Format = "dir"
)

// DetectFormat picks a backend by extension, or FormatDir for directories.
func DetectFormat(path string) (Format, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return FormatDir, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedLibraryFormat, path)
	}
}

func Open(ctx context.Context, path string) (*memory.Library, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatYAML:
		return yamlfile.Load(ctx, path)
	case FormatTOML:
		return tomlfile.Load(ctx, path)
	case FormatDir:
		return dir.Load(ctx, path)
	case FormatSQLite:
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("pattern database %s: %w", path, err)
		}
		store, err := sqlite.NewStore(path, nil)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedLibraryFormat, path)
	}
}

// Save writes patterns to path in the format its extension implies. SQLite
// targets are upserted, file targets are replaced.
func Save(ctx context.Context, path string, patterns map[string]map[string]string) (int, error) {
	format, err := DetectFormat(path)
	if err != nil {
		if !errors.Is(err, domain.ErrUnsupportedLibraryFormat) || filepath.Ext(path) != "" {
			return 0, err
		}
		format = FormatDir
	}

	validated, err := memory.NewLibrary(path, patterns)
	if err != nil {
		return 0, err
	}
	count := validated.Len()
	patterns = validated.Patterns()

	switch format {
	case FormatSQLite:
		store, err := sqlite.NewStore(path, nil)
		if err != nil {
			return 0, err
		}
		defer store.Close()
		return store.Import(ctx, patterns)
	case FormatTOML:
		return count, tomlfile.Save(ctx, path, patterns)
	case FormatDir:
		return count, dir.Save(ctx, path, patterns)
	case FormatYAML:
		data, err := yamlfile.Encode(patterns)
		if err != nil {
			return 0, err
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return 0, fmt.Errorf("write pattern file: %w", err)
		}
		return count, nil
	default:
		return 0, fmt.Errorf("%w: %s", domain.ErrUnsupportedLibraryFormat, path)
	}
}

// OpenChain layers the libraries at paths, in order, over the embedded
// defaults. Every path is attempted and the failures are joined.
func OpenChain(ctx context.Context, paths []string, logger *zap.Logger) (*chain.Library, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	layers := make([]ports.PatternLibrary, 0, len(paths)+1)
	var errs []error
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}

		layer, err := Open(ctx, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("open pattern library %s: %w", path, err))
			continue
		}
		logger.Info("loaded pattern library", zap.String("source", layer.Source()), zap.Int("patterns", layer.Len()))
		layers = append(layers, layer)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	defaults, err := embedded.Library()
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded pattern library", zap.String("source", defaults.Source()), zap.Int("patterns", defaults.Len()))
	layers = append(layers, defaults)

	return chain.NewLibraryChecked(layers...)
}
