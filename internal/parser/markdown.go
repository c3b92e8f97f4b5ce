package parser

import (
	"regexp"
	"strings"

	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/plantree"
)

// headingRe matches ATX headings: 1-6 #s, whitespace, then text.
var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

type headingMatch struct {
	level int
	text  string
	line  int
}

// Parse turns raw plan text into a ParsedPlan. It is total: any input,
// including text with no headings at all, produces a valid tree rather
// than an error.
//
// Metadata timestamps are left zero; callers that know the file fill them
// in from stat.
func Parse(content, planID, planPath string) *plantree.ParsedPlan {
	lines := strings.Split(content, "\n")

	var headings []headingMatch
	for i, line := range lines {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			headings = append(headings, headingMatch{
				level: len(m[1]),
				text:  strings.TrimSpace(m[2]),
				line:  i,
			})
		}
	}

	sections := buildSectionTree(lines, headings)

	title := strings.ReplaceAll(planID, "-", " ")
	if len(sections) > 0 && sections[0].Level == 1 {
		title = sections[0].Heading
	}

	return &plantree.ParsedPlan{
		ID:         planID,
		Path:       planPath,
		Title:      title,
		RawContent: content,
		Sections:   sections,
		Metadata: plantree.PlanMetadata{
			WordCount:    len(strings.Fields(content)),
			SectionCount: plantree.Count(sections),
			FileSize:     len(content),
		},
	}
}

// buildSectionTree sweeps headings in document order, maintaining a stack of
// open sections. A heading closes every open section of equal or deeper
// level; whatever remains on top becomes its parent. Skipped levels are not
// synthesized: an h3 directly under an h1 becomes the h1's child, matching
// how renderers treat such documents. Ancestor slug chains depend on this,
// so the rule must hold exactly for IDs to be stable across re-parses.
func buildSectionTree(lines []string, headings []headingMatch) []*plantree.Section {
	if len(headings) == 0 {
		return []*plantree.Section{{
			ID:        "1_content",
			Heading:   "Content",
			Level:     1,
			Content:   strings.TrimSpace(strings.Join(lines, "\n")),
			StartLine: 0,
			EndLine:   len(lines) - 1,
			Children:  []*plantree.Section{},
		}}
	}

	type stackEntry struct {
		section   *plantree.Section
		ancestors []string
	}

	var roots []*plantree.Section
	var stack []stackEntry

	for i, h := range headings {
		// Body runs to the next heading of any level; children own their
		// own lines.
		contentEnd := len(lines) - 1
		if i+1 < len(headings) {
			contentEnd = headings[i+1].line - 1
		}
		content := strings.TrimSpace(strings.Join(lines[h.line+1:contentEnd+1], "\n"))

		// The section itself stays open until a sibling-or-higher heading,
		// so child line ranges nest inside the parent's.
		endLine := len(lines) - 1
		for j := i + 1; j < len(headings); j++ {
			if headings[j].level <= h.level {
				endLine = headings[j].line - 1
				break
			}
		}

		// Ancestors come from the nearest open section above this level.
		var ancestors []string
		for j := len(stack) - 1; j >= 0; j-- {
			if stack[j].section.Level < h.level {
				ancestors = append(ancestors, stack[j].ancestors...)
				ancestors = append(ancestors, AncestorSlug(stack[j].section.Heading))
				break
			}
		}

		section := &plantree.Section{
			ID:        SectionID(h.text, h.level, ancestors),
			Heading:   h.text,
			Level:     h.level,
			Content:   content,
			StartLine: h.line,
			EndLine:   endLine,
			Children:  []*plantree.Section{},
		}

		for len(stack) > 0 && stack[len(stack)-1].section.Level >= h.level {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			roots = append(roots, section)
		} else {
			parent := stack[len(stack)-1].section
			parent.Children = append(parent.Children, section)
		}

		stack = append(stack, stackEntry{section: section, ancestors: ancestors})
	}

	return roots
}
