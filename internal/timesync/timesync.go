// Package timesync re-times subtitle cues against the cut points of an
// edited video, read from an editor timeline XML export, so cues land
// exactly on scene boundaries instead of slightly before or after them.
package timesync

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/subtitle-forge/backend/internal/srt"
)

const (
	DefaultMaxDifference = 0.5 // seconds
	DefaultFrameRate     = 29.97
)

// Timeline holds what the adjuster needs from an editor XML export
type Timeline struct {
	FrameRate float64
	CutPoints []int // frame numbers of clip starts and ends
}

// ParseTimeline extracts the frame rate and cut points from a timeline XML
// document (Final Cut / Premiere interchange format). NTSC timebases are
// adjusted by the 1000/1001 factor.
func ParseTimeline(r io.Reader) (*Timeline, error) {
	dec := xml.NewDecoder(r)

	tl := &Timeline{FrameRate: DefaultFrameRate}
	frameRateFound := false

	// Element-path tracking; the format nests <rate> and <clipitem>
	// at varying depths
	var path []string
	var inRate, ntsc bool
	var timebase float64
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse timeline xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			path = append(path, t.Name.Local)
			if t.Name.Local == "rate" {
				inRate = true
				ntsc = false
				timebase = 0
			}
			text.Reset()
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			content := strings.TrimSpace(text.String())
			switch t.Name.Local {
			case "timebase":
				if inRate && content != "" {
					if v, err := strconv.ParseFloat(content, 64); err == nil {
						timebase = v
					}
				}
			case "ntsc":
				if inRate {
					ntsc = strings.EqualFold(content, "true")
				}
			case "rate":
				inRate = false
				if !frameRateFound && timebase > 0 {
					if ntsc {
						timebase = timebase * 1000 / 1001
					}
					tl.FrameRate = timebase
					frameRateFound = true
				}
			case "start":
				if within(path, "clipitem") && content != "" && content != "0" {
					if v, err := strconv.Atoi(content); err == nil {
						tl.CutPoints = append(tl.CutPoints, v)
					}
				}
			case "end":
				if within(path, "clipitem") && content != "" && content != "-1" {
					if v, err := strconv.Atoi(content); err == nil {
						tl.CutPoints = append(tl.CutPoints, v)
					}
				}
			}
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
			text.Reset()
		}
	}

	if len(tl.CutPoints) == 0 {
		return nil, fmt.Errorf("timeline xml contains no cut points")
	}

	log.Printf("[timesync] timeline: frame rate %.2f, %d cut points", tl.FrameRate, len(tl.CutPoints))
	return tl, nil
}

func within(path []string, name string) bool {
	for _, p := range path {
		if p == name {
			return true
		}
	}
	return false
}

// Adjust snaps each cue boundary to the nearest cut point within
// maxDifference seconds; boundaries with no cut nearby keep their original
// time. Text content is never modified.
func Adjust(records []srt.Record, tl *Timeline, maxDifference float64) []srt.Record {
	if maxDifference <= 0 {
		maxDifference = DefaultMaxDifference
	}

	cuts := make([]int, len(tl.CutPoints)) // cut times in milliseconds
	for i, frame := range tl.CutPoints {
		cuts[i] = int(float64(frame) / tl.FrameRate * 1000)
	}
	maxDiffMillis := int(maxDifference * 1000)

	out := make([]srt.Record, len(records))
	for i, rec := range records {
		out[i] = rec
		out[i].Start = snap(rec.Start, cuts, maxDiffMillis)
		out[i].End = snap(rec.End, cuts, maxDiffMillis)
	}
	return out
}

func snap(t srt.Timestamp, cuts []int, maxDiff int) srt.Timestamp {
	best := math.MaxInt
	bestCut := 0
	for _, cut := range cuts {
		diff := cut - t.Millis
		if diff < 0 {
			diff = -diff
		}
		if diff < best {
			best = diff
			bestCut = cut
		}
	}
	if best <= maxDiff {
		return srt.Timestamp{Millis: bestCut}
	}
	return t
}
