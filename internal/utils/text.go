package utils

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// WordsPerMinute is the reading speed used for read time estimates
const WordsPerMinute = 200

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

	// ugcPolicy keeps formatting tags and drops scripts and event handlers
	ugcPolicy = bluemonday.UGCPolicy()
	// strictPolicy removes every tag
	strictPolicy = bluemonday.StrictPolicy()
)

// ReadTime estimates minutes needed to read content, never less than one
func ReadTime(content string) int {
	words := len(strings.Fields(StripHTML(content)))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// RenderMarkdown converts markdown to sanitized HTML
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return ugcPolicy.Sanitize(buf.String()), nil
}

// StripHTML removes all markup and returns plain text
func StripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
