package ports

// PatternLibrary is the read-only (genre, arc) -> template table. Lookups are
// in-memory; backends do their I/O when they are loaded.
type PatternLibrary interface {
	Lookup(genre, arc string) (string, bool)
}

// PatternEnumerator is implemented by libraries that can list their contents.
type PatternEnumerator interface {
	Patterns() map[string]map[string]string
}
