package timesync

import (
	"math"
	"strings"
	"testing"

	"github.com/subtitle-forge/backend/internal/srt"
)

const timelineXML = `<?xml version="1.0"?>
<xmeml version="4">
  <sequence>
    <rate>
      <timebase>25</timebase>
      <ntsc>FALSE</ntsc>
    </rate>
    <media>
      <video>
        <track>
          <clipitem id="c1">
            <start>0</start>
            <end>250</end>
          </clipitem>
          <clipitem id="c2">
            <start>250</start>
            <end>500</end>
          </clipitem>
          <clipitem id="c3">
            <start>500</start>
            <end>-1</end>
          </clipitem>
        </track>
      </video>
    </media>
  </sequence>
</xmeml>`

func TestParseTimeline(t *testing.T) {
	tl, err := ParseTimeline(strings.NewReader(timelineXML))
	if err != nil {
		t.Fatalf("ParseTimeline returned error: %v", err)
	}
	if tl.FrameRate != 25 {
		t.Errorf("frame rate = %v, want 25", tl.FrameRate)
	}
	// start "0" and end "-1" are sentinel values, not cuts.
	want := []int{250, 250, 500, 500}
	if len(tl.CutPoints) != len(want) {
		t.Fatalf("cut points = %v, want %v", tl.CutPoints, want)
	}
	for i, v := range want {
		if tl.CutPoints[i] != v {
			t.Errorf("cut point %d = %d, want %d", i, tl.CutPoints[i], v)
		}
	}
}

func TestParseTimeline_NTSC(t *testing.T) {
	doc := `<xmeml><sequence>
  <rate><timebase>30</timebase><ntsc>TRUE</ntsc></rate>
  <media><video><track><clipitem><start>10</start><end>20</end></clipitem></track></video></media>
</sequence></xmeml>`

	tl, err := ParseTimeline(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(tl.FrameRate-29.97) > 0.01 {
		t.Errorf("frame rate = %v, want ~29.97", tl.FrameRate)
	}
}

func TestParseTimeline_NoCuts(t *testing.T) {
	doc := `<xmeml><sequence><rate><timebase>25</timebase></rate></sequence></xmeml>`
	if _, err := ParseTimeline(strings.NewReader(doc)); err == nil {
		t.Fatal("expected error for timeline without cut points")
	}
}

func TestParseTimeline_BadXML(t *testing.T) {
	if _, err := ParseTimeline(strings.NewReader("<xmeml><unclosed>")); err == nil {
		t.Fatal("expected error for malformed xml")
	}
}

func TestAdjust_SnapsWithinThreshold(t *testing.T) {
	tl := &Timeline{FrameRate: 25, CutPoints: []int{250}} // cut at 10000ms
	records := []srt.Record{
		{Index: 1, Start: srt.Timestamp{Millis: 9800}, End: srt.Timestamp{Millis: 12000}, Text: []string{"hi"}},
	}

	out := Adjust(records, tl, 0.5)
	if out[0].Start.Millis != 10000 {
		t.Errorf("start = %d, want snapped to 10000", out[0].Start.Millis)
	}
	// End is 2s away from the only cut; outside the threshold, untouched.
	if out[0].End.Millis != 12000 {
		t.Errorf("end = %d, want unchanged", out[0].End.Millis)
	}
	if out[0].JoinedText() != "hi" {
		t.Errorf("text modified: %q", out[0].JoinedText())
	}
	// Input slice untouched.
	if records[0].Start.Millis != 9800 {
		t.Errorf("input mutated: %d", records[0].Start.Millis)
	}
}

func TestAdjust_PicksNearestCut(t *testing.T) {
	tl := &Timeline{FrameRate: 25, CutPoints: []int{100, 125}} // 4000ms and 5000ms
	records := []srt.Record{
		{Index: 1, Start: srt.Timestamp{Millis: 4400}, End: srt.Timestamp{Millis: 4800}, Text: []string{"x"}},
	}

	out := Adjust(records, tl, 0.5)
	if out[0].Start.Millis != 4000 {
		t.Errorf("start = %d, want 4000", out[0].Start.Millis)
	}
	if out[0].End.Millis != 5000 {
		t.Errorf("end = %d, want 5000", out[0].End.Millis)
	}
}

func TestAdjust_DefaultThreshold(t *testing.T) {
	tl := &Timeline{FrameRate: 25, CutPoints: []int{250}}
	records := []srt.Record{
		{Index: 1, Start: srt.Timestamp{Millis: 9600}, End: srt.Timestamp{Millis: 11000}, Text: []string{"x"}},
	}

	out := Adjust(records, tl, 0) // falls back to 0.5s
	if out[0].Start.Millis != 10000 {
		t.Errorf("start = %d, want snapped with default threshold", out[0].Start.Millis)
	}
}
