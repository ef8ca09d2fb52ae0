package sections

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/reel/internal/domain"
)

// Section is a validated browse row
type Section struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	MediaType  domain.MediaType  `json:"media_type"`
	TimeWindow domain.TimeWindow `json:"time_window"`
	Page       int               `json:"page"`
}

// Mapper converts the YAML rows into sections
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapSections validates every row. Time window defaults to week and
// page to 1; the ID defaults to "<media_type>-<time_window>".
// Any invalid row fails the whole file.
func (m *Mapper) MapSections(config SectionsConfig) ([]Section, error) {
	sections := make([]Section, 0, len(config.Sections))
	seen := make(map[string]bool, len(config.Sections))

	for i, props := range config.Sections {
		mediaType, err := domain.ParseMediaType(props.MediaType)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}

		window := domain.WindowWeek
		if props.TimeWindow != "" {
			window, err = domain.ParseTimeWindow(props.TimeWindow)
			if err != nil {
				return nil, fmt.Errorf("section %d: %w", i, err)
			}
		}

		page := props.Page
		if page == 0 {
			page = 1
		}
		if page < 0 {
			return nil, fmt.Errorf("section %d: page must be >= 1, got %d", i, page)
		}

		id := strings.TrimSpace(props.ID)
		if id == "" {
			id = fmt.Sprintf("%s-%s", mediaType, window)
		}
		if seen[id] {
			return nil, fmt.Errorf("section %d: duplicate id %q", i, id)
		}
		seen[id] = true

		title := strings.TrimSpace(props.Title)
		if title == "" {
			title = id
		}

		sections = append(sections, Section{
			ID:         id,
			Title:      title,
			MediaType:  mediaType,
			TimeWindow: window,
			Page:       page,
		})
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("no sections found in config")
	}

	return sections, nil
}
