// Package sanitize strips markup and surrounding whitespace from
// free-text fields before they reach the domain.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Clean removes every HTML element from s and trims whitespace.
func Clean(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
