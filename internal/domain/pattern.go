package domain

import (
	"fmt"
	"time"
)

// DefaultGenreKey is the reserved library namespace used for generic patterns.
const DefaultGenreKey = "DEFAULT"

// GenericPattern is used when the library has nothing usable at all.
const GenericPattern = "Continue the story naturally, keeping the established voice and pacing."

type FallbackTier int

const (
	TierExact FallbackTier = iota
	TierGenreSetup
	TierDefaultSameArc
	TierDefaultSetup
	TierBuiltin
)

// Description is the human-readable label stored in fallback records.
func (t FallbackTier) Description() string {
	switch t {
	case TierExact:
		return ""
	case TierGenreSetup:
		return "same genre, setup arc"
	case TierDefaultSameArc:
		return "default genre, same arc"
	case TierDefaultSetup:
		return "default genre, setup arc"
	case TierBuiltin:
		return "built-in generic pattern"
	default:
		return "unknown tier"
	}
}

func (t FallbackTier) IsFallback() bool {
	return t != TierExact
}

func (t FallbackTier) MarshalText() ([]byte, error) {
	if t == TierExact {
		return []byte("exact"), nil
	}
	return []byte(t.Description()), nil
}

func (t *FallbackTier) UnmarshalText(text []byte) error {
	label := string(text)
	if label == "exact" || label == "" {
		*t = TierExact
		return nil
	}

	for _, tier := range []FallbackTier{TierGenreSetup, TierDefaultSameArc, TierDefaultSetup, TierBuiltin} {
		if tier.Description() == label {
			*t = tier
			return nil
		}
	}

	return fmt.Errorf("unknown fallback tier %q", label)
}

// FallbackEvent is emitted by resolution whenever a non-exact tier is used.
type FallbackEvent struct {
	Genre    string
	Arc      Arc
	Tier     FallbackTier
	Fallback string
}

// Resolution is the pure outcome of a tiered pattern lookup.
type Resolution struct {
	Pattern string
	Tier    FallbackTier
	Events  []FallbackEvent
}

type FallbackRecord struct {
	Genre        string    `json:"genre"`
	Arc          Arc       `json:"arc"`
	UsedFallback string    `json:"used_fallback"`
	Timestamp    time.Time `json:"timestamp"`
}

// Key is the identity used for deduplication.
func (r FallbackRecord) Key() FallbackKey {
	return FallbackKey{Genre: r.Genre, Arc: r.Arc, UsedFallback: r.UsedFallback}
}

type FallbackKey struct {
	Genre        string
	Arc          Arc
	UsedFallback string
}

type GenreArc struct {
	Genre string `json:"genre"`
	Arc   Arc    `json:"arc"`
	Count int    `json:"count"`
}

type FallbackStats struct {
	Total       int        `json:"total"`
	Unique      int        `json:"unique"`
	Occurrences int        `json:"occurrences"`
	Last24h     int        `json:"last_24h"`
	TopPairs    []GenreArc `json:"top_pairs"`
}
