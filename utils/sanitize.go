package utils

import "github.com/microcosm-cc/bluemonday"

var (
	ugcPolicy   = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content to prevent XSS; used for descriptions which
// may carry formatting.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// SanitizeText strips all markup; used for names and titles.
func SanitizeText(input string) string {
	return plainPolicy.Sanitize(input)
}
