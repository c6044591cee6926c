// Package utils holds text helpers shared by the content services.
package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// slugInvalid matches runs of characters that are not allowed in a slug
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify converts a title to a URL-friendly slug.
// Accents are removed, everything else that is not a letter or digit collapses into single hyphens.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}

	result = strings.ToLower(result)
	result = slugInvalid.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// IsValidSlug checks that s is lowercase words of letters and digits joined by single hyphens
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
