package application

import (
	"github.com/bnema/arcprompt/internal/domain"
	"github.com/bnema/arcprompt/internal/ports"
	"go.uber.org/zap"
)

// PatternResolver walks the fallback tiers against a library. It reports the
// tier it used as events and leaves recording them to the caller.
type PatternResolver struct {
	library ports.PatternLibrary
	logger  *zap.Logger
}

func NewPatternResolver(library ports.PatternLibrary, logger *zap.Logger) *PatternResolver {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PatternResolver{library: library, logger: logger}
}

// Resolve tries, in order: (genre, arc); (genre, setup); (DEFAULT, arc);
// (DEFAULT, setup); and finally the built-in sentence. Genre-specific setup
// wins over every DEFAULT tier.
func (r *PatternResolver) Resolve(genre string, arc domain.Arc) domain.Resolution {
	if pattern, ok := r.lookup(genre, arc); ok {
		return domain.Resolution{Pattern: pattern, Tier: domain.TierExact}
	}

	if arc != domain.ArcSetup {
		if pattern, ok := r.lookup(genre, domain.ArcSetup); ok {
			return fallbackResolution(genre, arc, pattern, domain.TierGenreSetup)
		}
	}

	if pattern, ok := r.lookup(domain.DefaultGenreKey, arc); ok {
		return fallbackResolution(genre, arc, pattern, domain.TierDefaultSameArc)
	}

	if arc != domain.ArcSetup {
		if pattern, ok := r.lookup(domain.DefaultGenreKey, domain.ArcSetup); ok {
			return fallbackResolution(genre, arc, pattern, domain.TierDefaultSetup)
		}
	}

	return fallbackResolution(genre, arc, domain.GenericPattern, domain.TierBuiltin)
}

func fallbackResolution(genre string, arc domain.Arc, pattern string, tier domain.FallbackTier) domain.Resolution {
	return domain.Resolution{
		Pattern: pattern,
		Tier:    tier,
		Events: []domain.FallbackEvent{{
			Genre:    genre,
			Arc:      arc,
			Tier:     tier,
			Fallback: tier.Description(),
		}},
	}
}

// lookup treats a missing library, an empty pattern, or a panicking backend
// as "absent".
func (r *PatternResolver) lookup(genre string, arc domain.Arc) (pattern string, ok bool) {
	if r.library == nil {
		return "", false
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			r.logger.Error("pattern library lookup panicked",
				zap.String("genre", genre),
				zap.String("arc", string(arc)),
				zap.Any("panic", recovered),
			)
			pattern, ok = "", false
		}
	}()

	pattern, ok = r.library.Lookup(genre, string(arc))
	if !ok || pattern == "" {
		return "", false
	}

	return pattern, true
}
