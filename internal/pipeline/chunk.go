package pipeline

import "github.com/subtitle-forge/backend/internal/srt"

// Batch is a contiguous slice of the record sequence. Concatenating all
// batches reproduces the original sequence exactly.
type Batch struct {
	Start   int // offset of the first record in the source sequence
	Records []srt.Record
	Size    int // serialized size in bytes
}

// Chunk splits records into size-bounded batches with a greedy linear
// scan. Records are atomic: a record whose own serialized size exceeds the
// limit becomes its own batch rather than being split, since the model
// must see whole cues. Batch order equals source order; translation
// benefits from sequential continuity, so no repacking is done.
const defaultBatchLimit = 1024

func Chunk(records []srt.Record, limit int) []Batch {
	if limit <= 0 {
		limit = defaultBatchLimit
	}

	var batches []Batch
	var cur Batch

	for i, r := range records {
		size := len(r.Block(i + 1))
		if len(cur.Records) > 0 && cur.Size+size > limit {
			batches = append(batches, cur)
			cur = Batch{Start: i}
		}
		if len(cur.Records) == 0 {
			cur.Start = i
		}
		cur.Records = append(cur.Records, r)
		cur.Size += size
	}
	if len(cur.Records) > 0 {
		batches = append(batches, cur)
	}

	return batches
}
