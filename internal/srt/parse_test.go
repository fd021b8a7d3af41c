package srt

import (
	"errors"
	"strings"
	"testing"
)

const sampleDoc = `1
00:00:01,000 --> 00:00:03,500
Hello there

2
00:00:04,000 --> 00:00:06,000
Line one
Line two
`

func TestParse_Basic(t *testing.T) {
	records, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Index != 1 || records[0].JoinedText() != "Hello there" {
		t.Errorf("record 0 = %+v", records[0])
	}
	if records[0].Start.Millis != 1000 || records[0].End.Millis != 3500 {
		t.Errorf("record 0 timing = %d..%d, want 1000..3500", records[0].Start.Millis, records[0].End.Millis)
	}
	if got := records[1].JoinedText(); got != "Line one\nLine two" {
		t.Errorf("record 1 text = %q", got)
	}
}

func TestParse_BOMAndCRLF(t *testing.T) {
	doc := "\uFEFF1\r\n00:00:01,000 --> 00:00:02,000\r\nHi\r\n\r\n"
	records, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Index != 1 {
		t.Errorf("cue number not parsed after BOM strip: %d", records[0].Index)
	}
}

func TestParse_DotMillisSeparator(t *testing.T) {
	doc := "1\n00:00:01.250 --> 00:00:02.750\nHi\n"
	records, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if records[0].Start.Millis != 1250 {
		t.Errorf("start = %d, want 1250", records[0].Start.Millis)
	}
	// Output is always canonical comma form.
	if got := records[0].Start.String(); got != "00:00:01,250" {
		t.Errorf("canonical form = %q", got)
	}
}

func TestParse_SkipsMalformedBlock(t *testing.T) {
	doc := "garbage without structure\n\n" + sampleDoc
	records, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected malformed block skipped, got %d records", len(records))
	}
}

func TestParse_AllMalformed(t *testing.T) {
	_, err := Parse([]byte("this is not\na subtitle file\n"))
	if err == nil {
		t.Fatal("expected error for unparseable input")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if perr.Block != 1 {
		t.Errorf("ParseError.Block = %d, want 1", perr.Block)
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, s := range []string{"", "hello", "00:00:01"} {
		if _, err := ParseTimestamp(s); err == nil {
			t.Errorf("ParseTimestamp(%q) succeeded, want error", s)
		}
	}
}

func TestTimestampString_RoundTrip(t *testing.T) {
	ts, err := ParseTimestamp("01:02:03,456")
	if err != nil {
		t.Fatal(err)
	}
	if got := ts.String(); got != "01:02:03,456" {
		t.Errorf("round trip = %q", got)
	}
}

func TestSerialize_Renumbers(t *testing.T) {
	records, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	// Force stale indices; Serialize must renumber from 1.
	records[0].Index = 42
	records[1].Index = 7

	out := Serialize(records)
	if !strings.HasPrefix(out, "1\n00:00:01,000 --> 00:00:03,500\n") {
		t.Errorf("serialized output does not start with renumbered cue:\n%s", out)
	}
	if !strings.Contains(out, "\n2\n00:00:04,000 --> 00:00:06,000\n") {
		t.Errorf("second cue missing or misnumbered:\n%s", out)
	}
	if !strings.HasSuffix(out, "Line two\n") {
		t.Errorf("output should end with single trailing newline:\n%q", out)
	}

	// Serialized output parses back to the same cues.
	again, err := Parse([]byte(out))
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if len(again) != 2 || again[1].JoinedText() != "Line one\nLine two" {
		t.Errorf("reparse mismatch: %+v", again)
	}
}

func TestBlock_Format(t *testing.T) {
	r := Record{
		Start: Timestamp{Millis: 1000},
		End:   Timestamp{Millis: 2000},
		Text:  []string{"Hi"},
	}
	want := "3\n00:00:01,000 --> 00:00:02,000\nHi\n\n"
	if got := r.Block(3); got != want {
		t.Errorf("Block = %q, want %q", got, want)
	}
}
