package srt

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate checks a serialized document against the cue grammar without
// mutating it. It returns whether the document is well formed plus a
// human-readable report: the cue count on success, or the first structural
// violation (1-based line number and cause) on failure.
func Validate(doc string) (bool, string) {
	content := strings.TrimPrefix(doc, "\uFEFF")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")

	cueCount := 0
	i := 0
	for i < len(lines) {
		// Tolerate extra blank lines between cues
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
		if i >= len(lines) {
			break
		}
		cueCount++

		if _, err := strconv.Atoi(strings.TrimSpace(lines[i])); err != nil {
			return false, fmt.Sprintf("line %d: expected cue number for cue %d, got %q", i+1, cueCount, lines[i])
		}
		i++

		if i >= len(lines) || !timestampLineRe.MatchString(strings.TrimSpace(lines[i])) {
			return false, fmt.Sprintf("line %d: bad or missing timestamp line for cue %d", i+1, cueCount)
		}
		i++

		if i >= len(lines) || strings.TrimSpace(lines[i]) == "" {
			return false, fmt.Sprintf("line %d: missing text line for cue %d", i+1, cueCount)
		}
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			// A cue number followed by a timestamp line means the previous cue
			// ran into this one without a separator blank line.
			if i+1 < len(lines) && isCueNumber(lines[i]) && timestampLineRe.MatchString(strings.TrimSpace(lines[i+1])) {
				return false, fmt.Sprintf("line %d: missing separator blank line after cue %d", i+1, cueCount)
			}
			i++
		}
	}

	if cueCount == 0 {
		return false, "document contains no cues"
	}
	return true, fmt.Sprintf("valid SRT document with %d cues", cueCount)
}

func isCueNumber(line string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(line))
	return err == nil
}
