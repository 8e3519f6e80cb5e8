package utils

import "github.com/microcosm-cc/bluemonday"

// All user-entered fields here are plain text (food types, quantities,
// pickup addresses, descriptions), so the strip-everything policy applies.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips HTML from user input to prevent stored XSS.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
