package parser

import (
	"strings"
	"testing"

	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/plantree"
)

func TestRenderHTML(t *testing.T) {
	html := RenderHTML("Some **bold** text.")
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("expected bold markup, got %q", html)
	}
}

func TestAttachHTML(t *testing.T) {
	sections := []*plantree.Section{
		{
			Content: "Parent *body*.",
			Children: []*plantree.Section{
				{Content: "- item one\n- item two"},
			},
		},
	}
	AttachHTML(sections)

	if !strings.Contains(sections[0].HTML, "<em>body</em>") {
		t.Errorf("expected rendered parent body, got %q", sections[0].HTML)
	}
	if !strings.Contains(sections[0].Children[0].HTML, "<li>") {
		t.Errorf("expected rendered list in child, got %q", sections[0].Children[0].HTML)
	}
}
