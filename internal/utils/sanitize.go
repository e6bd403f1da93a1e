package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// StripTags removes all markup from user supplied free text and trims it.
// Entities produced by the sanitizer are decoded back so plain text such as
// "Tom & Jerry" round-trips unchanged.
func StripTags(s string) string {
	cleaned := strictPolicy.Sanitize(s)
	return strings.TrimSpace(entityReplacer.Replace(cleaned))
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&#34;", `"`,
	"&#39;", "'",
	"&quot;", `"`,
)
