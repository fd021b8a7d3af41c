package pipeline

import (
	"fmt"
	"strings"

	"github.com/subtitle-forge/backend/internal/srt"
)

// Mode selects which lines each output block carries. The pipeline keeps
// the source text and every requested translation, so any view can be
// produced after the run without re-translating.
type Mode string

const (
	ModeSourceParallel Mode = "bilingual" // source text + one target language
	ModeDualTarget     Mode = "dual"      // both target languages
	ModeSourceOnly     Mode = "source"
	ModeTargetOnly     Mode = "target" // one target language alone
)

// Format serializes records with their translations into an SRT document.
// Cues are renumbered from 1 and each block ends with a single blank
// separator. langs[0] is the target for the single-target modes; dual mode
// emits every language in the given order.
func Format(records []srt.Record, results []TranslationResult, mode Mode, langs []string) string {
	var sb strings.Builder

	for i, rec := range records {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n", rec.Start, rec.End))

		var res TranslationResult
		if i < len(results) {
			res = results[i]
		}

		switch mode {
		case ModeSourceOnly:
			sb.WriteString(rec.JoinedText())
			sb.WriteString("\n")
		case ModeTargetOnly:
			sb.WriteString(translationLine(res, langs[0]))
			sb.WriteString("\n")
		case ModeDualTarget:
			for _, lang := range langs {
				sb.WriteString(translationLine(res, lang))
				sb.WriteString("\n")
			}
		default: // ModeSourceParallel
			sb.WriteString(rec.JoinedText())
			sb.WriteString("\n")
			sb.WriteString(translationLine(res, langs[0]))
			sb.WriteString("\n")
		}

		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// translationLine never returns an empty string: a missing or errored
// translation becomes a visible placeholder so the block structure
// survives validation.
func translationLine(res TranslationResult, lang string) string {
	if res.Translations == nil {
		return PlaceholderMissing
	}
	if v := res.Translations[lang]; v != "" {
		return v
	}
	return PlaceholderMissing
}
