package sections

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of the sections file
type Loader struct {
	filePath string
}

// NewLoader creates a new sections loader. An empty path means the
// built-in rows are used.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the sections file
func (l *Loader) Load() (SectionsConfig, error) {
	if l.filePath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return SectionsConfig{}, fmt.Errorf("failed to read sections file: %w", err)
	}

	// ${VAR} references are expanded from the environment
	data = []byte(os.ExpandEnv(string(data)))

	var config SectionsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return SectionsConfig{}, fmt.Errorf("failed to parse sections yaml: %w", err)
	}

	return config, nil
}

// DefaultConfig is used when no sections file is configured
func DefaultConfig() SectionsConfig {
	return SectionsConfig{
		Sections: []SectionProps{
			{ID: "trending-movies", Title: "Trending Movies", MediaType: "movie", TimeWindow: "week", Page: 1},
			{ID: "trending-tv", Title: "Trending TV Shows", MediaType: "tv", TimeWindow: "week", Page: 1},
		},
	}
}
