package parser

import (
	"bytes"

	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/plantree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// RenderHTML converts a markdown fragment to HTML. Render failures return
// the empty string; rendering is a display concern and must never take a
// plan fetch down with it.
func RenderHTML(source string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return ""
	}
	return buf.String()
}

// AttachHTML fills in the HTML field for every section body in the tree.
func AttachHTML(sections []*plantree.Section) {
	for _, s := range sections {
		s.HTML = RenderHTML(s.Content)
		AttachHTML(s.Children)
	}
}
