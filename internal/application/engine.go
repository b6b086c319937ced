package application

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bnema/arcprompt/internal/domain"
	"github.com/bnema/arcprompt/internal/ports"
	"go.uber.org/zap"
)

// Hook observes each freshly resolved header. Errors and panics from hooks
// are logged and never change the result handed back to the caller.
type Hook func(domain.PromptHeaderResult) error

type Engine struct {
	resolver *PatternResolver
	cache    *MemoCache
	log      *FallbackLog
	logger   *zap.Logger
	debug    atomic.Bool

	hooksMu sync.RWMutex
	hooks   []Hook
}

func NewEngine(library ports.PatternLibrary, cfg Config, clock ports.Clock, logger *zap.Logger) *Engine {
	cfg = cfg.withDefaults()
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := &Engine{
		resolver: NewPatternResolver(library, logger),
		cache:    NewMemoCache(cfg.Memoize, cfg.MaxCacheEntries, clock),
		log:      NewFallbackLog(cfg.MaxDiagnosticsEntries, clock, logger),
		logger:   logger,
	}
	engine.debug.Store(cfg.Debug)

	return engine
}

func (e *Engine) AddHook(hook Hook) {
	if hook == nil {
		return
	}

	e.hooksMu.Lock()
	defer e.hooksMu.Unlock()
	e.hooks = append(e.hooks, hook)
}

func (e *Engine) SetDebug(enabled bool) {
	e.debug.Store(enabled)
}

func (e *Engine) Debug() bool {
	return e.debug.Load()
}

// BuildHeader resolves the annotated header for a request. It accepts any
// input and always returns a usable result.
func (e *Engine) BuildHeader(prefs domain.Preferences, ctx domain.DocumentContext) (result domain.PromptHeaderResult) {
	if cached, ok := e.cache.Lookup(prefs, ctx); ok {
		return cached
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			e.logger.Error("header resolution panicked", zap.Any("panic", recovered))
			result = builtinResult(prefs)
		}
	}()

	safePrefs, safeCtx := domain.Sanitize(prefs, ctx)

	resolution := e.resolver.Resolve(safePrefs.Genre, safeCtx.Arc)
	debug := e.debug.Load()
	for _, event := range resolution.Events {
		e.log.Record(event.Genre, event.Arc, event.Fallback, debug)
	}

	pattern := domain.Inject(resolution.Pattern, safeCtx.CharacterName)
	result = domain.PromptHeaderResult{
		Header:      domain.AssembleHeader(safePrefs, pattern),
		Tone:        safePrefs.Tone,
		Language:    safePrefs.Language,
		Genre:       safePrefs.Genre,
		PatternUsed: pattern,
		Fallback:    resolution.Tier,
	}

	e.cache.Store(prefs, ctx, result)
	e.runHooks(result)

	return result
}

// BuildHeaderLoose coerces an untyped request before resolving it.
func (e *Engine) BuildHeaderLoose(raw map[string]any) domain.PromptHeaderResult {
	prefs, ctx := domain.LooseRequest(raw)
	return e.BuildHeader(prefs, ctx)
}

func (e *Engine) runHooks(result domain.PromptHeaderResult) {
	e.hooksMu.RLock()
	hooks := make([]Hook, len(e.hooks))
	copy(hooks, e.hooks)
	e.hooksMu.RUnlock()

	for i, hook := range hooks {
		if err := callHook(hook, result); err != nil {
			e.logger.Warn("header hook failed", zap.Int("hook", i), zap.Error(err))
		}
	}
}

func callHook(hook Hook, result domain.PromptHeaderResult) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("hook panicked: %v", recovered)
		}
	}()

	return hook(result)
}

func builtinResult(prefs domain.Preferences) domain.PromptHeaderResult {
	safePrefs := domain.SanitizePreferences(prefs)
	return domain.PromptHeaderResult{
		Header:      domain.AssembleHeader(safePrefs, domain.GenericPattern),
		Tone:        safePrefs.Tone,
		Language:    safePrefs.Language,
		Genre:       safePrefs.Genre,
		PatternUsed: domain.GenericPattern,
		Fallback:    domain.TierBuiltin,
	}
}

func (e *Engine) Diagnostics() []domain.FallbackRecord {
	return e.log.All()
}

func (e *Engine) DiagnosticsStats() domain.FallbackStats {
	return e.log.Stats()
}

func (e *Engine) CacheStats() CacheStats {
	return e.cache.Stats()
}

// Reset drops every memoized result and fallback record.
func (e *Engine) Reset() {
	e.cache.Clear()
	e.log.Reset()
}
