package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple title", input: "Hello World", expected: "hello-world"},
		{name: "with special characters", input: "Hello, World!", expected: "hello-world"},
		{name: "with numbers", input: "Project 2024", expected: "project-2024"},
		{name: "with accents", input: "Café résumé", expected: "cafe-resume"},
		{name: "with multiple spaces", input: "Hello   World", expected: "hello-world"},
		{name: "with hyphens", input: "Hello - World", expected: "hello-world"},
		{name: "leading and trailing junk", input: "  --My App!--  ", expected: "my-app"},
		{name: "underscores", input: "snake_case_title", expected: "snake-case-title"},
		{name: "only symbols", input: "!!!", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"hello-world", true},
		{"page-123", true},
		{"a", true},
		{"", false},
		{"Hello-World", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--hyphen", false},
		{"with space", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidSlug(tt.input))
		})
	}
}
