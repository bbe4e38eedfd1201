// Package sanitize turns user supplied note text into plain text before it is
// validated or stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy strips every tag. It is built once and only read afterwards, which is
// what makes it safe to share between goroutines.
var policy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// Clean strips markup, decodes entities and collapses runs of blanks inside each
// line. Line breaks survive so multi-line content keeps its shape.
//
//	"<p>Hello <b>world</b></p>" -> "Hello world"
func Clean(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(strings.TrimSpace(policy.Sanitize(s)))
	text = strings.ReplaceAll(text, "\u00a0", " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

// Line is Clean for single-line values such as tags: line breaks become spaces.
func Line(s string) string {
	return strings.Join(strings.Fields(Clean(s)), " ")
}
