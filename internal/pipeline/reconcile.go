package pipeline

import (
	"log"

	"github.com/subtitle-forge/backend/internal/srt"
)

// Reconcile aligns parsed model output back to the fixed-length batch. The
// result always has exactly len(batch) entries in batch order: missing
// trailing entries are padded with placeholders, surplus entries are model
// noise and get truncated with a warning. A single empty language field
// degrades that field alone; the rest of the record stays intact.
func Reconcile(parsed []map[string]string, batch []srt.Record, langs []string) []TranslationResult {
	if len(parsed) > len(batch) {
		log.Printf("[pipeline] count mismatch: expected %d stanzas, got %d, truncating extras",
			len(batch), len(parsed))
		parsed = parsed[:len(batch)]
	}

	results := make([]TranslationResult, len(batch))
	for i, rec := range batch {
		res := TranslationResult{
			SourceText:   rec.JoinedText(),
			Translations: make(map[string]string, len(langs)),
			Status:       StatusOK,
		}

		if i >= len(parsed) {
			for _, lang := range langs {
				res.Translations[lang] = PlaceholderMissing
			}
			res.Status = StatusMissing
			results[i] = res
			continue
		}

		missing := 0
		for _, lang := range langs {
			if v := parsed[i][lang]; v != "" {
				res.Translations[lang] = v
			} else {
				res.Translations[lang] = PlaceholderMissing
				missing++
			}
		}
		if missing == len(langs) {
			res.Status = StatusMissing
		}
		results[i] = res
	}

	return results
}

// errorResults marks a whole batch as failed after the retry budget is
// exhausted, preserving the 1:1 record mapping.
func errorResults(batch []srt.Record, langs []string, status Status, placeholder string) []TranslationResult {
	results := make([]TranslationResult, len(batch))
	for i, rec := range batch {
		res := TranslationResult{
			SourceText:   rec.JoinedText(),
			Translations: make(map[string]string, len(langs)),
			Status:       status,
		}
		for _, lang := range langs {
			res.Translations[lang] = placeholder
		}
		results[i] = res
	}
	return results
}
