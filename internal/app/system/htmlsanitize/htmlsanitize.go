// Package htmlsanitize cleans user-supplied text with bluemonday before it
// is stored.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict     *bluemonday.Policy
	rich       *bluemonday.Policy
	policyOnce sync.Once
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		strict = bluemonday.StrictPolicy()

		rich = bluemonday.UGCPolicy()
		rich.AllowElements("u", "s", "mark")
	})
	return strict, rich
}

// PlainText removes every tag from s and returns trimmed text. Entities
// produced by the policy are decoded so "R&D" round-trips unchanged.
// Used for SEO titles, descriptions, keywords and CRM notes.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	p, _ := policies()
	return strings.TrimSpace(html.UnescapeString(p.Sanitize(s)))
}

// RichText keeps safe formatting (paragraphs, emphasis, lists, links) and
// drops scripts, handlers and unsafe URLs. Used for event descriptions.
func RichText(s string) string {
	if s == "" {
		return ""
	}
	_, p := policies()
	return p.Sanitize(s)
}
