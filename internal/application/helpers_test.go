package application

import (
	"sync"
	"testing"
	"time"

	"github.com/bnema/arcprompt/internal/ports/mocks"
	"github.com/stretchr/testify/mock"
)

type patternTable map[string]map[string]string

func (p patternTable) Lookup(genre, arc string) (string, bool) {
	pattern, ok := p[genre][arc]
	return pattern, ok
}

func newTableLibrary(t *testing.T, table patternTable) *mocks.MockPatternLibrary {
	t.Helper()

	library := mocks.NewMockPatternLibrary(t)
	library.EXPECT().Lookup(mock.Anything, mock.Anything).RunAndReturn(table.Lookup).Maybe()
	return library
}

// stepClock advances by one second on every call so timestamps are strictly
// increasing.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func testLibrary() patternTable {
	return patternTable{
		"Romance": {
			"setup":  "{{character}} crosses paths with {{other_character}} and feels an unexpected spark.",
			"climax": "{{character}} must choose between pride and love.",
		},
		"Mystery": {
			"setup": "{{character}} finds a clue that does not fit.",
		},
		"DEFAULT": {
			"setup":  "Introduce {{character}} and the world they live in.",
			"rising": "Raise the stakes for {{character}}.",
			"climax": "Bring {{character}} to the decisive moment.",
		},
	}
}
