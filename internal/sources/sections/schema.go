package sections

// SectionsConfig is the top-level structure of the sections file
type SectionsConfig struct {
	Sections []SectionProps `yaml:"sections"`
}

// SectionProps describes one browse row as written in YAML
type SectionProps struct {
	ID         string `yaml:"id"`
	Title      string `yaml:"title"`
	MediaType  string `yaml:"media_type"`
	TimeWindow string `yaml:"time_window,omitempty"`
	Page       int    `yaml:"page,omitempty"`
}
