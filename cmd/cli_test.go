package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnema/arcprompt/internal/adapters/store/sqlite"
	"github.com/bnema/arcprompt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderExampleScenario(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "",
		"header",
		"--tone", "friendly",
		"--language", "en",
		"--genre", "Romance",
		"--scene", "A coffee shop",
		"--arc", "setup",
		"--character", "Emma",
	)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "/* Tone: friendly | Language: en | Genre: Romance */\n"))
	assert.Contains(t, stdout, "Emma crosses paths with another character")
	assert.False(t, domain.HasMarkers(stdout))
	assert.True(t, strings.HasSuffix(stdout, "*/\n\n"))
}

func TestHeaderJSONReportsFallbackTier(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "", "header", "--genre", "UnknownGenre", "--arc", "climax", "--json")
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, "UnknownGenre", result["genre"])
	assert.Equal(t, "default genre, same arc", result["fallback"])
	assert.Equal(t, "Bring the protagonist to the decisive moment where everything is at stake.", result["pattern_used"])
}

func TestHeaderSanitizesInvalidFlags(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "", "header", "--tone", "sarcastic", "--language", "xx", "--genre", "  ", "--arc", "epilogue")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "/* Tone: friendly | Language: en | Genre: General */\n"))
}

func TestHeaderDebugLogsFallbackWarning(t *testing.T) {
	home := t.TempDir()

	_, stderr, err := executeCLI(t, home, "", "header", "--genre", "Western", "--arc", "rising", "--debug", "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"pattern fallback"`)
	assert.Contains(t, stderr, `"genre":"Western"`)
}

func TestHeaderWithoutDebugStaysQuiet(t *testing.T) {
	home := t.TempDir()

	_, stderr, err := executeCLI(t, home, "", "header", "--genre", "Western", "--arc", "rising")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "pattern fallback")
}

func TestHeaderUsesLibraryOverlay(t *testing.T) {
	home := t.TempDir()
	overlay := filepath.Join(home, "western.yaml")
	require.NoError(t, os.WriteFile(overlay, []byte(`version: 1
patterns:
  Western:
    climax: "{{character}} faces the outlaw at high noon."
`), 0o600))

	stdout, _, err := executeCLI(t, home, "", "--library", overlay, "header", "--genre", "Western", "--arc", "climax", "--character", "Wyatt")
	require.NoError(t, err)
	assert.Contains(t, stdout, `/* Pattern: "Wyatt faces the outlaw at high noon." */`)
}

func TestConfigFileSuppliesLibraryPaths(t *testing.T) {
	home := t.TempDir()
	overlay := filepath.Join(home, "noir")
	require.NoError(t, os.MkdirAll(filepath.Join(overlay, "Noir"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(overlay, "Noir", "setup.txt"), []byte("Rain on neon for {{character}}.\n"), 0o600))
	writeConfigFixture(t, home, "[library]\npaths = [\""+filepath.ToSlash(overlay)+"\"]\n")

	stdout, _, err := executeCLI(t, home, "", "header", "--genre", "Noir", "--character", "Sam")
	require.NoError(t, err)
	assert.Contains(t, stdout, `/* Pattern: "Rain on neon for Sam." */`)
}

func TestInvalidLogLevelFromConfigFails(t *testing.T) {
	home := t.TempDir()
	writeConfigFixture(t, home, "[logging]\nlevel = \"chatty\"\n")

	_, _, err := executeCLI(t, home, "", "header")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown logging.level: chatty")
}

func TestUnsupportedLibraryFails(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "", "--library", "patterns.json", "header")
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrUnsupportedLibraryFormat)
}

func TestBatchPrintsResultsInInputOrder(t *testing.T) {
	home := t.TempDir()
	input := strings.Join([]string{
		`{"genre":"Romance","arc":"setup","character_name":"Emma"}`,
		``,
		`{"genre":"Mystery","arc":"climax","characterName":"Hercule","tone":"formal"}`,
		`{"genre":"Western","arc":"climax"}`,
		`{"genre":"Western","arc":"climax"}`,
	}, "\n")

	stdout, _, err := executeCLI(t, home, input, "batch", "--json", "--concurrency", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)

	var results []batchResult
	for _, line := range lines {
		var result batchResult
		require.NoError(t, json.Unmarshal([]byte(line), &result))
		results = append(results, result)
	}

	assert.Equal(t, []int{1, 3, 4, 5}, []int{results[0].Line, results[1].Line, results[2].Line, results[3].Line})
	assert.Equal(t, "Romance", results[0].Genre)
	assert.Contains(t, results[0].PatternUsed, "Emma")
	assert.Equal(t, domain.ToneFormal, results[1].Tone)
	assert.Contains(t, results[1].PatternUsed, "Hercule")
	assert.Equal(t, results[2], batchResult{Line: 4, PromptHeaderResult: results[3].PromptHeaderResult})
}

func TestBatchRejectsMalformedLine(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "{\"genre\":\"Romance\"}\n[1,2]\n", "batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode batch line 2")
}

func TestBatchReportAndExport(t *testing.T) {
	home := t.TempDir()
	inputPath := filepath.Join(home, "requests.jsonl")
	require.NoError(t, os.WriteFile(inputPath, []byte(
		"{\"genre\":\"Western\",\"arc\":\"climax\"}\n{\"genre\":\"Noir\",\"arc\":\"rising\"}\n{\"genre\":\"Western\",\"arc\":\"climax\",\"scene\":\"saloon\"}\n",
	), 0o600))
	dbPath := filepath.Join(home, "diagnostics.db")

	stdout, stderr, err := executeCLI(t, home, "", "batch", "--file", inputPath, "--report", "--export-db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(stdout, "/* Tone: "))
	assert.Contains(t, stderr, "Pattern Fallback Diagnostics")
	assert.Contains(t, stderr, "Western/climax")
	assert.Contains(t, stderr, "exported diagnostics snapshot")

	store, err := sqlite.NewStore(dbPath, nil)
	require.NoError(t, err)
	defer store.Close()

	snapshots, err := store.ListSnapshots(t.Context())
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, 2, snapshots[0].Records)
	assert.Equal(t, 3, snapshots[0].Occurrences)

	listed, _, err := executeCLI(t, home, "", "snapshots", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, listed, snapshots[0].ID)
	assert.Contains(t, listed, "records=2")
}

func TestBatchRejectsZeroConcurrency(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "", "batch", "--concurrency", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--concurrency must be at least 1")
}

func TestPatternsListFiltersGenre(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "", "patterns", "list", "--genre", "Romance")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Romance/setup: "))
	assert.True(t, strings.HasPrefix(lines[3], "Romance/resolution: "))

	_, _, err = executeCLI(t, home, "", "patterns", "list", "--genre", "Opera")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `genre "Opera" has no patterns`)
}

func TestPatternsImportIntoSQLiteAndUseIt(t *testing.T) {
	home := t.TempDir()
	source := filepath.Join(home, "src.toml")
	require.NoError(t, os.WriteFile(source, []byte("version = 1\n\n[patterns.Pirate]\nsetup = \"{{character}} signs onto a leaky ship.\"\n"), 0o600))
	target := filepath.Join(home, "patterns.db")

	stdout, _, err := executeCLI(t, home, "", "patterns", "import", "--from", source, "--to", target)
	require.NoError(t, err)
	assert.Contains(t, stdout, "imported 1 patterns")

	stdout, _, err = executeCLI(t, home, "", "--library", target, "header", "--genre", "Pirate", "--character", "Anne")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Anne signs onto a leaky ship.")
}

func TestPatternsImportRequiresFlags(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "", "patterns", "import", "--from", "x.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "to" not set`)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "", "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func executeCLI(t *testing.T, home string, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfigFixture(t *testing.T, home, content string) {
	t.Helper()

	configDir := filepath.Join(home, ".arcprompt")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o600))
}
