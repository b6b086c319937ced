package domain

type Arc string

const (
	ArcSetup      Arc = "setup"
	ArcRising     Arc = "rising"
	ArcClimax     Arc = "climax"
	ArcResolution Arc = "resolution"
)

// Arcs returns the narrative stages in story order.
func Arcs() []Arc {
	return []Arc{ArcSetup, ArcRising, ArcClimax, ArcResolution}
}

func (a Arc) Valid() bool {
	switch a {
	case ArcSetup, ArcRising, ArcClimax, ArcResolution:
		return true
	default:
		return false
	}
}

// Index reports the stage position in story order, or -1 for unknown arcs.
func (a Arc) Index() int {
	for i, known := range Arcs() {
		if a == known {
			return i
		}
	}
	return -1
}

type DocumentContext struct {
	Scene         string `json:"scene"`
	Arc           Arc    `json:"arc"`
	CharacterName string `json:"character_name,omitempty"`
}

// HasCharacter reports whether a name should be injected into the pattern.
func (c DocumentContext) HasCharacter() bool {
	return c.CharacterName != ""
}
