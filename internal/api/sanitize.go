package api

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Stored free text is rendered by the client, so markup is stripped on the
// way in. bluemonday policies are safe for concurrent use.
var textPolicy = bluemonday.StrictPolicy()

// SanitizeText strips all HTML from s and trims surrounding whitespace.
func SanitizeText(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}
