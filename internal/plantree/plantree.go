package plantree

import "time"

// Section is a heading-delimited region of a plan, parsed into a tree.
// IDs are stable across re-parses of unmodified text (see parser.SectionID),
// which is what lets review state in the review store survive reloads.
type Section struct {
	ID        string     `json:"id"`
	Heading   string     `json:"heading"`   // Heading text without the leading #s
	Level     int        `json:"level"`     // 1..6
	Content   string     `json:"content"`   // Body text, excluding children, trimmed
	StartLine int        `json:"startLine"` // Line of the heading itself (0-based)
	EndLine   int        `json:"endLine"`   // Last line before the next sibling-or-higher heading
	Children  []*Section `json:"children"`
	HTML      string     `json:"html,omitempty"` // Rendered body, only set when requested
}

// PlanMetadata holds derived stats about the raw plan text.
type PlanMetadata struct {
	CreatedAt    time.Time `json:"createdAt"`
	ModifiedAt   time.Time `json:"modifiedAt"`
	WordCount    int       `json:"wordCount"`
	SectionCount int       `json:"sectionCount"`
	FileSize     int       `json:"fileSize"`
}

// ParsedPlan is the full parse result for one plan document.
type ParsedPlan struct {
	ID         string       `json:"id"`
	Path       string       `json:"path"`
	Title      string       `json:"title"`
	RawContent string       `json:"rawContent"`
	Sections   []*Section   `json:"sections"`
	Metadata   PlanMetadata `json:"metadata"`
}

// Count returns the total number of sections in the forest, recursively.
func Count(sections []*Section) int {
	n := len(sections)
	for _, s := range sections {
		n += Count(s.Children)
	}
	return n
}

// CollectIDs returns all section IDs in document order.
func CollectIDs(sections []*Section) []string {
	var ids []string
	for _, s := range sections {
		ids = append(ids, s.ID)
		ids = append(ids, CollectIDs(s.Children)...)
	}
	return ids
}

// Flatten returns all sections in document order.
func Flatten(sections []*Section) []*Section {
	var out []*Section
	for _, s := range sections {
		out = append(out, s)
		out = append(out, Flatten(s.Children)...)
	}
	return out
}

// FindByID returns the section with the given ID, or nil. With duplicate
// sibling headings IDs can collide; the first match in document order wins.
func FindByID(sections []*Section, id string) *Section {
	for _, s := range sections {
		if s.ID == id {
			return s
		}
		if found := FindByID(s.Children, id); found != nil {
			return found
		}
	}
	return nil
}
