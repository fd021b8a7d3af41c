package srt

import (
	"fmt"
	"strings"
)

// Record represents a single subtitle cue with timing
type Record struct {
	Index int       `json:"index"`
	Start Timestamp `json:"start"`
	End   Timestamp `json:"end"`
	Text  []string  `json:"text"` // one or more non-empty lines
}

// Timestamp is a subtitle time with millisecond precision
type Timestamp struct {
	Millis int `json:"millis"`
}

// ParseTimestamp parses "HH:MM:SS,mmm" or "HH:MM:SS.mmm"
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	norm := strings.Replace(s, ".", ",", 1)
	var h, m, sec, ms int
	if n, err := fmt.Sscanf(norm, "%d:%d:%d,%d", &h, &m, &sec, &ms); n != 4 || err != nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp: %q", s)
	}
	return Timestamp{Millis: h*3600000 + m*60000 + sec*1000 + ms}, nil
}

// String formats the timestamp in canonical SRT form (comma separator)
func (t Timestamp) String() string {
	ms := t.Millis
	h := ms / 3600000
	ms %= 3600000
	m := ms / 60000
	ms %= 60000
	s := ms / 1000
	ms %= 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// Before reports whether t is strictly earlier than other
func (t Timestamp) Before(other Timestamp) bool {
	return t.Millis < other.Millis
}

// Block renders the record as one SRT block with the given cue number,
// ending with a single blank separator line.
func (r Record) Block(index int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d\n", index))
	sb.WriteString(fmt.Sprintf("%s --> %s\n", r.Start, r.End))
	for _, line := range r.Text {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

// JoinedText returns the cue's text lines joined with newlines
func (r Record) JoinedText() string {
	return strings.Join(r.Text, "\n")
}

// Serialize renders records as a complete SRT document, renumbered from 1
func Serialize(records []Record) string {
	var sb strings.Builder
	for i, r := range records {
		sb.WriteString(r.Block(i + 1))
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}
