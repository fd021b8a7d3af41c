package translate

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Label normalizes a user-supplied target-language value into a label
// suitable for prompts and response parsing. A BCP-47 tag ("zh-TW", "ja")
// is resolved to its English display name; anything else (a free-form
// label such as "繁體中文") is passed through untouched.
func Label(s string) string {
	if s == "" {
		return s
	}
	// Free-form labels ("traditional chinese") are kept as written; only
	// short tag-shaped values are resolved.
	if len(s) > 11 {
		return s
	}
	tag, err := language.Parse(s)
	if err != nil {
		return s
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return s
}
