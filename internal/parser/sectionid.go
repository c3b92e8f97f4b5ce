package parser

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	slugMaxLen     = 50
	ancestorMaxLen = 20
)

// Slugify normalizes heading text for use in section IDs: lowercase, strip
// everything outside [a-z0-9 -], collapse whitespace runs to a single "-",
// truncate to 50 characters.
func Slugify(heading string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range strings.ToLower(heading) {
		switch {
		case unicode.IsSpace(r):
			inSpace = true
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-':
			if inSpace {
				b.WriteByte('-')
				inSpace = false
			}
			b.WriteRune(r)
		}
	}
	// A trailing whitespace run still maps to a hyphen.
	if inSpace {
		b.WriteByte('-')
	}
	slug := b.String()
	if len(slug) > slugMaxLen {
		slug = slug[:slugMaxLen]
	}
	return slug
}

// AncestorSlug is the shortened slug form used in ancestor chains.
func AncestorSlug(heading string) string {
	slug := Slugify(heading)
	if len(slug) > ancestorMaxLen {
		slug = slug[:ancestorMaxLen]
	}
	return slug
}

// SectionID builds the stable ID for a section from its heading text, level
// and ancestor slug chain: "<a1>_<a2>_<level>_<slug>", or "<level>_<slug>"
// for top-level sections.
//
// The ID embeds hierarchy and heading text so re-parsing unmodified text
// reproduces byte-identical IDs, and embeds the level so a promoted or
// demoted heading reads as a different section. Sibling headings that
// normalize to the same slug get the same ID; review files stored against
// these IDs would all break if the scheme disambiguated duplicates, so it
// deliberately does not.
func SectionID(heading string, level int, ancestors []string) string {
	var b strings.Builder
	for _, a := range ancestors {
		if len(a) > ancestorMaxLen {
			a = a[:ancestorMaxLen]
		}
		b.WriteString(a)
		b.WriteByte('_')
	}
	b.WriteString(strconv.Itoa(level))
	b.WriteByte('_')
	b.WriteString(Slugify(heading))
	return b.String()
}
