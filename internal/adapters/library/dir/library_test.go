package dir

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/arcprompt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePattern(t *testing.T, root, genre, name, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(root, genre), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(root, genre, name), []byte(content), 0o600))
}

func TestLoadReadsGenreDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writePattern(t, root, "Romance", "setup.txt", "{{character}} meets a stranger.\n")
	writePattern(t, root, "Romance", "notes.md", "ignored")
	writePattern(t, root, "Sci-Fi", "climax.txt", "The airlock opens.\r\n")
	writePattern(t, root, ".git", "setup.txt", "ignored")

	library, err := Load(context.Background(), root)
	require.NoError(t, err)

	got, ok := library.Lookup("Romance", "setup")
	require.True(t, ok)
	assert.Equal(t, "{{character}} meets a stranger.", got)

	got, ok = library.Lookup("Sci-Fi", "climax")
	require.True(t, ok)
	assert.Equal(t, "The airlock opens.", got)

	assert.Equal(t, 2, library.Len())
}

func TestLoadRejectsUnknownArcFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writePattern(t, root, "Noir", "epilogue.txt", "x")

	_, err := Load(context.Background(), root)
	require.ErrorIs(t, err, domain.ErrInvalidPatternKey)
}

func TestLoadMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	patterns := map[string]map[string]string{
		"Horror": {"setup": "The house is quiet.", "rising": "Something scratches."},
	}

	require.NoError(t, Save(context.Background(), root, patterns))

	library, err := Load(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, patterns, library.Patterns())
}

func TestPathForKeyRejectsUnsafeKeys(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testCases := []struct {
		name    string
		genre   string
		arc     string
		wantErr string
	}{
		{name: "empty genre", genre: "   ", arc: "setup", wantErr: "genre is empty"},
		{name: "parent traversal", genre: "../outside", arc: "setup", wantErr: `genre "../outside" is not a safe directory name`},
		{name: "absolute path", genre: "/tmp/genre", arc: "setup", wantErr: `genre "/tmp/genre" is not a safe directory name`},
		{name: "nested path", genre: "a/b", arc: "setup", wantErr: `genre "a/b" is not a safe directory name`},
		{name: "dot", genre: ".", arc: "setup", wantErr: `genre "." is not a safe directory name`},
		{name: "hidden", genre: ".hidden", arc: "setup", wantErr: `genre ".hidden" is not a safe directory name`},
		{name: "unknown arc", genre: "Noir", arc: "coda", wantErr: `unknown arc "coda"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pathForKey(root, tc.genre, tc.arc)
			require.ErrorIs(t, err, domain.ErrInvalidPatternKey)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}

	path, err := pathForKey(root, " Noir ", "CLIMAX")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Noir", "climax.txt"), path)
}
