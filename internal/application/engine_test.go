package application

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/bnema/arcprompt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	return NewEngine(newTableLibrary(t, testLibrary()), cfg, newStepClock(), nil)
}

func TestEngineBuildHeaderExampleScenario(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())

	result := engine.BuildHeader(
		domain.Preferences{Tone: "friendly", Language: "en", Genre: "Romance"},
		domain.DocumentContext{Scene: "A coffee shop", Arc: "setup", CharacterName: "Emma"},
	)

	assert.True(t, strings.HasPrefix(result.Header, "/* Tone: friendly | Language: en | Genre: Romance */\n"))
	assert.Contains(t, result.PatternUsed, "Emma")
	assert.False(t, domain.HasMarkers(result.PatternUsed))
	assert.Equal(t,
		"/* Tone: friendly | Language: en | Genre: Romance */\n"+
			"/* Pattern: \"Emma crosses paths with another character and feels an unexpected spark.\" */\n\n",
		result.Header,
	)
	assert.Equal(t, domain.TierExact, result.Fallback)
	assert.Empty(t, engine.Diagnostics())
}

func TestEngineBuildHeaderFallbackScenario(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())

	result := engine.BuildHeader(
		domain.Preferences{Tone: "friendly", Language: "en", Genre: "UnknownGenre"},
		domain.DocumentContext{Arc: "climax"},
	)

	assert.NotEmpty(t, result.PatternUsed)
	assert.Equal(t, domain.TierDefaultSameArc, result.Fallback)
	assert.Equal(t, "Bring the protagonist to the decisive moment.", result.PatternUsed)

	records := engine.Diagnostics()
	require.Len(t, records, 1)
	assert.Equal(t, "UnknownGenre", records[0].Genre)
	assert.Equal(t, domain.ArcClimax, records[0].Arc)
	assert.Equal(t, "default genre, same arc", records[0].UsedFallback)
}

func TestEngineBuildHeaderIsDeterministic(t *testing.T) {
	for _, memoize := range []bool{true, false} {
		t.Run(fmt.Sprintf("memoize=%t", memoize), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Memoize = memoize
			engine := newTestEngine(t, cfg)

			prefs := domain.Preferences{Tone: "FORMAL", Language: "fr", Genre: "Mystery"}
			ctx := domain.DocumentContext{Scene: "A train", Arc: "rising", CharacterName: "Hercule"}

			first := engine.BuildHeader(prefs, ctx)
			for i := 0; i < 5; i++ {
				assert.Equal(t, first, engine.BuildHeader(prefs, ctx))
			}
			assert.Len(t, engine.Diagnostics(), 1)
		})
	}
}

func TestEngineCachesRawTuple(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())
	prefs := domain.Preferences{Tone: "friendly", Language: "en", Genre: "Romance"}
	ctx := domain.DocumentContext{Arc: "setup", CharacterName: "Emma"}

	engine.BuildHeader(prefs, ctx)
	engine.BuildHeader(prefs, ctx)

	stats := engine.CacheStats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
	assert.True(t, stats.HasLastUsed)
}

func TestEngineNeverFailsOnMalformedInput(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())

	inputs := []map[string]any{
		{},
		{"tone": nil, "language": 12.5, "genre": []int{1, 2}},
		{"tone": "LOUD", "arc": "prologue", "character_name": "   "},
		{"genre": "*/ injected", "character": "Zoë */"},
	}

	for i, raw := range inputs {
		result := engine.BuildHeaderLoose(raw)
		assert.True(t, result.Tone.Valid(), "input %d", i)
		assert.True(t, result.Language.Valid(), "input %d", i)
		assert.NotEmpty(t, result.Genre, "input %d", i)
		assert.NotEmpty(t, result.PatternUsed, "input %d", i)
		assert.Equal(t, 2, strings.Count(result.Header, "*/"), "input %d", i)
	}
}

func TestEngineDebugToggleDoesNotReopenDedup(t *testing.T) {
	logger, logs := newObservedLogger()
	engine := NewEngine(newTableLibrary(t, testLibrary()), DefaultConfig(), newStepClock(), logger)
	prefs := domain.Preferences{Genre: "Western"}

	engine.BuildHeader(prefs, domain.DocumentContext{Arc: "climax"})
	engine.SetDebug(true)
	engine.BuildHeader(prefs, domain.DocumentContext{Arc: "climax", Scene: "different scene"})
	assert.Equal(t, 0, logs.FilterMessage("pattern fallback").Len())

	engine.BuildHeader(prefs, domain.DocumentContext{Arc: "rising"})
	assert.Equal(t, 1, logs.FilterMessage("pattern fallback").Len())
	assert.True(t, engine.Debug())
}

func TestEngineHooksFailuresDoNotAffectResult(t *testing.T) {
	logger, logs := newObservedLogger()
	engine := NewEngine(newTableLibrary(t, testLibrary()), DefaultConfig(), newStepClock(), logger)

	var seen atomic.Int32
	engine.AddHook(func(domain.PromptHeaderResult) error {
		panic("consumer bug")
	})
	engine.AddHook(func(domain.PromptHeaderResult) error {
		return errors.New("notification failed")
	})
	engine.AddHook(func(result domain.PromptHeaderResult) error {
		seen.Add(1)
		assert.Equal(t, "Romance", result.Genre)
		return nil
	})

	prefs := domain.Preferences{Genre: "Romance"}
	ctx := domain.DocumentContext{Arc: "climax", CharacterName: "Emma"}
	result := engine.BuildHeader(prefs, ctx)
	engine.BuildHeader(prefs, ctx)

	assert.Equal(t, "Emma must choose between pride and love.", result.PatternUsed)
	assert.Equal(t, int32(1), seen.Load(), "hooks only run on fresh resolution")
	assert.Equal(t, 2, logs.FilterMessage("header hook failed").Len())
}

func TestEngineReset(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())
	engine.BuildHeader(domain.Preferences{Genre: "Western"}, domain.DocumentContext{Arc: "climax"})

	engine.Reset()

	assert.Empty(t, engine.Diagnostics())
	assert.Equal(t, CacheStats{}, engine.CacheStats())
	assert.Equal(t, 0, engine.DiagnosticsStats().Occurrences)
}

func TestEngineNilLibraryUsesBuiltinPattern(t *testing.T) {
	engine := NewEngine(nil, Config{}, nil, nil)

	result := engine.BuildHeader(domain.Preferences{}, domain.DocumentContext{})

	assert.Equal(t, domain.GenericPattern, result.PatternUsed)
	assert.Equal(t, domain.TierBuiltin, result.Fallback)
	assert.Equal(t, "/* Tone: friendly | Language: en | Genre: General */\n/* Pattern: \""+domain.GenericPattern+"\" */\n\n", result.Header)
}

func TestEngineConcurrentCallers(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := DefaultConfig()
	cfg.MaxCacheEntries = 8
	engine := NewEngine(testLibrary(), cfg, newStepClock(), nil)

	var group errgroup.Group
	group.SetLimit(16)
	for i := 0; i < 400; i++ {
		group.Go(func() error {
			engine.BuildHeader(
				domain.Preferences{Genre: fmt.Sprintf("Genre%d", i%20)},
				domain.DocumentContext{Arc: domain.Arcs()[i%4]},
			)
			return nil
		})
	}
	require.NoError(t, group.Wait())

	stats := engine.CacheStats()
	assert.LessOrEqual(t, stats.Size, 8)
	assert.Equal(t, 400, stats.Hits+stats.Misses)
	assert.Len(t, engine.Diagnostics(), 20)
	assert.Equal(t, stats.Misses, engine.DiagnosticsStats().Occurrences)
}
