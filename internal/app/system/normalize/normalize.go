// Package normalize canonicalizes user-supplied strings before they are
// stored or compared.
package normalize

import (
	"strconv"
	"strings"
)

// Email trims and lower-cases an address. Accounts are looked up by the
// normalized form only.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role trims and lower-cases a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Slug lower-cases s and collapses runs of whitespace into single hyphens.
func Slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

// Paging parses page and limit query values. Missing or invalid values
// fall back to page 1 and defLimit; limit is capped at maxLimit.
func Paging(pageStr, limitStr string, defLimit, maxLimit int) (page, limit int) {
	page, err := strconv.Atoi(strings.TrimSpace(pageStr))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(strings.TrimSpace(limitStr))
	if err != nil || limit < 1 {
		limit = defLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
