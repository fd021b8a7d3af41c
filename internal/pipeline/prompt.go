package pipeline

import (
	"fmt"
	"strings"
)

// SystemPrompt builds the translation system instruction for the requested
// target languages, style directives and output convention.
func SystemPrompt(langs []string, styles map[string]string, conv Convention) string {
	var sb strings.Builder
	sb.WriteString("You are a highly skilled subtitle translator with expertise in many languages. ")
	sb.WriteString(fmt.Sprintf("Translate each subtitle into %s.\n", strings.Join(langs, " and ")))
	sb.WriteString("Rules:\n")
	sb.WriteString("1. Provide direct translations without explanations or notes.\n")
	sb.WriteString("2. Keep proper nouns and place names as they are.\n")
	sb.WriteString("3. Preserve the one-to-one correspondence between input subtitles and translations.\n")
	sb.WriteString("4. Translate each instance of repeated words consistently.\n")
	sb.WriteString("5. Maintain the style and tone of the original text, including informal or colloquial expressions.\n")
	sb.WriteString("6. Do not include any introductory or explanatory text in your response.\n")

	rule := 7
	for _, lang := range langs {
		if style := styles[lang]; style != "" {
			sb.WriteString(fmt.Sprintf("%d. For %s: %s\n", rule, lang, style))
			rule++
		}
	}

	switch conv {
	case StructuredJSON:
		sb.WriteString("\nReturn ONLY a JSON array, one object per input subtitle, in input order. ")
		sb.WriteString(`Each object has the form {"index": <input number>, "translations": {`)
		parts := make([]string, len(langs))
		for i, lang := range langs {
			parts[i] = fmt.Sprintf("%q: \"...\"", lang)
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("}}.")
	default:
		sb.WriteString("\nFor every input subtitle, in order, output one stanza of the form:\n")
		for _, lang := range langs {
			sb.WriteString(fmt.Sprintf("%s: [translation]\n", lang))
		}
		sb.WriteString("Separate stanzas with a blank line. Output nothing else.")
	}

	return sb.String()
}

// BatchPrompt renders one batch as the user turn. Subtitles are separated
// by blank lines (labeled convention) or numbered (structured convention)
// so the model can keep cue boundaries.
func BatchPrompt(b Batch, conv Convention) string {
	var sb strings.Builder
	switch conv {
	case StructuredJSON:
		sb.WriteString("Input subtitles:\n")
		for i, r := range b.Records {
			sb.WriteString(fmt.Sprintf("[%d] %s\n", i+1, r.JoinedText()))
		}
		sb.WriteString(fmt.Sprintf("\nReturn exactly %d objects.", len(b.Records)))
	default:
		for i, r := range b.Records {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(r.JoinedText())
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
