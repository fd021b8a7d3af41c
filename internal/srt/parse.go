package srt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var timestampLineRe = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2}[.,]\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2}[.,]\d{3})$`)

// ParseError indicates the input is not a parseable subtitle document
type ParseError struct {
	Block  int // 1-based block index of the first rejected block
	Line   int // 1-based line number where parsing failed
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("srt parse: block %d (line %d): %s", e.Block, e.Line, e.Reason)
}

// Parse parses raw SRT bytes into an ordered record sequence.
//
// Line endings are normalized and a UTF-8 BOM on the first cue number is
// stripped. Blocks that do not match the cue grammar are skipped; if no
// block matches at all, a *ParseError describing the first rejection is
// returned.
func Parse(data []byte) ([]Record, error) {
	content := string(data)
	content = strings.TrimPrefix(content, "\uFEFF")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")

	var records []Record
	var firstErr *ParseError
	blockIdx := 0

	i := 0
	for i < len(lines) {
		// Skip blank separator lines
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
		if i >= len(lines) {
			break
		}

		blockIdx++
		start := i

		// Collect the block (run of non-blank lines)
		var block []string
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			block = append(block, strings.TrimSpace(lines[i]))
			i++
		}

		rec, reason := parseBlock(block)
		if reason != "" {
			if firstErr == nil {
				firstErr = &ParseError{Block: blockIdx, Line: start + 1, Reason: reason}
			}
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, &ParseError{Block: 1, Line: 1, Reason: "no subtitle blocks found"}
	}

	return records, nil
}

func parseBlock(block []string) (Record, string) {
	if len(block) < 3 {
		return Record{}, "incomplete block: expected number, timestamp and text"
	}

	num, err := strconv.Atoi(block[0])
	if err != nil || num <= 0 {
		return Record{}, fmt.Sprintf("expected cue number, got %q", block[0])
	}

	matches := timestampLineRe.FindStringSubmatch(block[1])
	if matches == nil {
		return Record{}, fmt.Sprintf("bad timestamp line: %q", block[1])
	}
	start, err := ParseTimestamp(matches[1])
	if err != nil {
		return Record{}, err.Error()
	}
	end, err := ParseTimestamp(matches[2])
	if err != nil {
		return Record{}, err.Error()
	}

	return Record{
		Index: num,
		Start: start,
		End:   end,
		Text:  append([]string(nil), block[2:]...),
	}, ""
}
