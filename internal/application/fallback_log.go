package application

import (
	"sort"
	"sync"
	"time"

	"github.com/bnema/arcprompt/internal/domain"
	"github.com/bnema/arcprompt/internal/ports"
	"go.uber.org/zap"
)

const (
	topPairsLimit = 10
	recentWindow  = 24 * time.Hour
)

type genreArcKey struct {
	genre string
	arc   domain.Arc
}

// FallbackLog is the deduplicated, bounded record of pattern fallbacks.
//
// A (genre, arc, fallback) key is recorded once for the lifetime of the log,
// whether or not debug was on when it was first seen. The key set survives
// trimming and is only cleared by Reset.
type FallbackLog struct {
	mu          sync.Mutex
	capacity    int
	records     []domain.FallbackRecord
	seen        map[domain.FallbackKey]struct{}
	occurrences map[genreArcKey]int
	total       int
	clock       ports.Clock
	logger      *zap.Logger
}

func NewFallbackLog(capacity int, clock ports.Clock, logger *zap.Logger) *FallbackLog {
	if capacity <= 0 {
		capacity = DefaultMaxDiagnosticsEntries
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FallbackLog{
		capacity:    capacity,
		seen:        map[domain.FallbackKey]struct{}{},
		occurrences: map[genreArcKey]int{},
		clock:       clock,
		logger:      logger,
	}
}

// Record notes a fallback occurrence and reports whether it was the first
// time the key was seen. The warning is only logged when debug is set.
func (l *FallbackLog) Record(genre string, arc domain.Arc, fallback string, debug bool) bool {
	record := domain.FallbackRecord{Genre: genre, Arc: arc, UsedFallback: fallback}
	key := record.Key()

	l.mu.Lock()
	l.total++
	if _, ok := l.seen[key]; ok {
		if _, retained := l.occurrences[genreArcKey{genre: genre, arc: arc}]; retained {
			l.occurrences[genreArcKey{genre: genre, arc: arc}]++
		}
		l.mu.Unlock()
		return false
	}

	record.Timestamp = l.clock.Now()
	l.seen[key] = struct{}{}
	l.records = append(l.records, record)
	l.occurrences[genreArcKey{genre: genre, arc: arc}]++
	l.trimLocked()
	l.mu.Unlock()

	if debug {
		l.logger.Warn("pattern fallback",
			zap.String("genre", genre),
			zap.String("arc", string(arc)),
			zap.String("fallback", fallback),
		)
	}

	return true
}

func (l *FallbackLog) trimLocked() {
	overflow := len(l.records) - l.capacity
	if overflow <= 0 {
		return
	}

	dropped := l.records[:overflow]
	kept := make([]domain.FallbackRecord, len(l.records)-overflow, l.capacity)
	copy(kept, l.records[overflow:])
	l.records = kept

	retained := make(map[genreArcKey]struct{}, len(kept))
	for _, record := range kept {
		retained[genreArcKey{genre: record.Genre, arc: record.Arc}] = struct{}{}
	}
	for _, record := range dropped {
		pair := genreArcKey{genre: record.Genre, arc: record.Arc}
		if _, ok := retained[pair]; !ok {
			delete(l.occurrences, pair)
		}
	}
}

// All returns the retained records, oldest first.
func (l *FallbackLog) All() []domain.FallbackRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.FallbackRecord, len(l.records))
	copy(out, l.records)
	return out
}

func (l *FallbackLog) Stats() domain.FallbackStats {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	pairs := make(map[genreArcKey]struct{}, len(l.records))
	recent := 0
	for _, record := range l.records {
		pairs[genreArcKey{genre: record.Genre, arc: record.Arc}] = struct{}{}
		if now.Sub(record.Timestamp) <= recentWindow {
			recent++
		}
	}

	top := make([]domain.GenreArc, 0, len(l.occurrences))
	for pair, count := range l.occurrences {
		top = append(top, domain.GenreArc{Genre: pair.genre, Arc: pair.arc, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		if top[i].Genre != top[j].Genre {
			return top[i].Genre < top[j].Genre
		}
		return top[i].Arc.Index() < top[j].Arc.Index()
	})
	if len(top) > topPairsLimit {
		top = top[:topPairsLimit]
	}

	return domain.FallbackStats{
		Total:       len(l.records),
		Unique:      len(pairs),
		Occurrences: l.total,
		Last24h:     recent,
		TopPairs:    top,
	}
}

func (l *FallbackLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = nil
	l.seen = map[domain.FallbackKey]struct{}{}
	l.occurrences = map[genreArcKey]int{}
	l.total = 0
}
