package pipeline

import (
	"encoding/json"
	"strings"
)

// ParseResponse parses raw model output into per-record translation maps
// using the configured output convention. Results are returned strictly in
// encountered order; no re-sorting by embedded numbering is attempted.
// Missing language fields come back as empty strings and are resolved at
// reconciliation.
func ParseResponse(raw string, langs []string, conv Convention) []map[string]string {
	switch conv {
	case StructuredJSON:
		return parseStructured(raw, langs)
	default:
		return parseLabeled(raw, langs)
	}
}

// parseLabeled handles the "Language: translation" stanza convention.
// Lines without a recognized language prefix are conversational filler and
// are dropped. A repeated language label closes the current stanza, which
// keeps stanzas with a missing language line from swallowing the next one.
func parseLabeled(raw string, langs []string) []map[string]string {
	var out []map[string]string
	cur := map[string]string{}

	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
			cur = map[string]string{}
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}

		for _, lang := range langs {
			prefix := lang + ":"
			if len(line) >= len(prefix) && strings.EqualFold(line[:len(prefix)], prefix) {
				if _, dup := cur[lang]; dup {
					flush()
				}
				cur[lang] = strings.TrimSpace(line[len(prefix):])
				break
			}
		}
	}
	flush()

	return out
}

type structuredItem struct {
	Index        int               `json:"index"`
	Translations map[string]string `json:"translations"`
}

// parseStructured handles the JSON-array convention. Models sometimes wrap
// the array in prose or emit ASS-style \N line breaks, so the array is
// extracted and cleaned before decoding.
func parseStructured(raw string, langs []string) []map[string]string {
	content := strings.ReplaceAll(raw, `\N`, `\n`)

	var items []structuredItem
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		start := strings.Index(content, "[")
		end := strings.LastIndex(content, "]")
		if start < 0 || end <= start {
			return nil
		}
		if err := json.Unmarshal([]byte(content[start:end+1]), &items); err != nil {
			return nil
		}
	}

	out := make([]map[string]string, 0, len(items))
	for _, item := range items {
		m := map[string]string{}
		for _, lang := range langs {
			m[lang] = strings.TrimSpace(item.Translations[lang])
		}
		out = append(out, m)
	}
	return out
}
