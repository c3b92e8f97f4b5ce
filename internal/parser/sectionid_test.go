package parser

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Setup", "setup"},
		{"Hello, World!", "hello-world"},
		{"Already-hyphenated name", "already-hyphenated-name"},
		{"Multiple   spaces\there", "multiple-spaces-here"},
		{"UPPER Case 123", "upper-case-123"},
		{"", ""},
		{"§¶†", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlugifyTruncation(t *testing.T) {
	long := strings.Repeat("abcde ", 20)
	slug := Slugify(long)
	if len(slug) != 50 {
		t.Errorf("expected slug truncated to 50 chars, got %d (%q)", len(slug), slug)
	}
}

func TestSectionID_TopLevel(t *testing.T) {
	id := SectionID("Setup", 2, nil)
	if id != "2_setup" {
		t.Errorf("expected %q, got %q", "2_setup", id)
	}
}

func TestSectionID_WithAncestors(t *testing.T) {
	id := SectionID("Details", 3, []string{"overview", "architecture"})
	want := "overview_architecture_3_details"
	if id != want {
		t.Errorf("expected %q, got %q", want, id)
	}
}

func TestSectionID_AncestorTruncation(t *testing.T) {
	long := strings.Repeat("x", 40)
	id := SectionID("Leaf", 2, []string{long})
	want := strings.Repeat("x", 20) + "_2_leaf"
	if id != want {
		t.Errorf("expected %q, got %q", want, id)
	}
}

func TestSectionID_LevelDistinguishes(t *testing.T) {
	// The same heading at a different level is a different section.
	if SectionID("Notes", 2, nil) == SectionID("Notes", 3, nil) {
		t.Error("expected different IDs for different levels")
	}
}

func TestSectionID_Deterministic(t *testing.T) {
	a := SectionID("Some Heading", 2, []string{"parent"})
	b := SectionID("Some Heading", 2, []string{"parent"})
	if a != b {
		t.Errorf("expected identical IDs, got %q and %q", a, b)
	}
}
