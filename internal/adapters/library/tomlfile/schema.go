package tomlfile

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int                          `toml:"version"`
	Patterns map[string]map[string]string `toml:"patterns"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
	if s.Patterns == nil {
		s.Patterns = map[string]map[string]string{}
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported pattern schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}
