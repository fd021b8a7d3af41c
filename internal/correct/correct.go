// Package correct runs per-cue proofreading through a translation engine:
// fixing misspelled place, person and ethnic-group names against a list of
// correction terms without touching tone or sentence structure.
package correct

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/subtitle-forge/backend/internal/srt"
	"github.com/subtitle-forge/backend/internal/translate"
)

const defaultWorkers = 5

// Change records one cue whose text was modified
type Change struct {
	Index  int    `json:"index"` // 1-based cue position in the output
	Before string `json:"before"`
	After  string `json:"after"`
}

// Options configure a correction run
type Options struct {
	Terms    []string // correction term list, mostly proper nouns
	Workers  int      // concurrent workers, defaults to 5
	Progress func(float64)
}

// Run corrects every cue concurrently with a fixed-size worker pool.
// Each cue is an independent unit, so completion order is arbitrary;
// results are re-sorted by original start time before renumbering, so
// concurrency never leaks into output ordering. A cue whose correction
// call fails keeps its original text.
func Run(ctx context.Context, records []srt.Record, client *translate.Client, opts Options) ([]srt.Record, []Change, error) {
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("correct: no cues to process")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	system := systemPrompt(opts.Terms)
	log.Printf("[correct] correcting %d cues with %d workers", len(records), workers)

	type item struct {
		pos int
		rec srt.Record
	}

	corrected := make([]srt.Record, len(records))
	var done atomic.Int32
	var failed atomic.Int32
	var mu sync.Mutex // guards the progress callback
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, rec := range records {
		wg.Add(1)
		sem <- struct{}{}

		go func(it item) {
			defer wg.Done()
			defer func() { <-sem }()

			out := it.rec
			text, err := client.Complete(ctx, system, "以下是一段需要校正的字幕文本：\n\n"+it.rec.JoinedText())
			if err != nil {
				failed.Add(1)
				log.Printf("[correct] cue %d failed, keeping original: %v", it.rec.Index, err)
			} else if t := strings.TrimSpace(text); t != "" {
				out.Text = strings.Split(t, "\n")
			}
			corrected[it.pos] = out

			n := done.Add(1)
			if opts.Progress != nil {
				mu.Lock()
				opts.Progress(float64(n) / float64(len(records)))
				mu.Unlock()
			}
		}(item{pos: i, rec: rec})
	}

	wg.Wait()

	if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}

	// Workers complete out of order; restore timeline order deterministically
	sort.SliceStable(corrected, func(a, b int) bool {
		return corrected[a].Start.Before(corrected[b].Start)
	})

	var changes []Change
	byStart := make([]srt.Record, len(records))
	copy(byStart, records)
	sort.SliceStable(byStart, func(a, b int) bool {
		return byStart[a].Start.Before(byStart[b].Start)
	})
	for i := range corrected {
		corrected[i].Index = i + 1
		if corrected[i].JoinedText() != byStart[i].JoinedText() {
			changes = append(changes, Change{
				Index:  i + 1,
				Before: byStart[i].JoinedText(),
				After:  corrected[i].JoinedText(),
			})
		}
	}

	if n := failed.Load(); n > 0 {
		log.Printf("[correct] complete: %d cues, %d changed, %d kept original after errors",
			len(corrected), len(changes), n)
	} else {
		log.Printf("[correct] complete: %d cues, %d changed", len(corrected), len(changes))
	}

	return corrected, changes, nil
}

func systemPrompt(terms []string) string {
	return fmt.Sprintf(`你是一個精確的字幕校對系統。你的唯一任務是根據以下規則校正給定的字幕文本：

1. 僅更正以下類型的錯誤：
   - 地名、人名和民族名的錯誤拼寫
   - 使用提供的修正術語列表中的英文詞彙進行更正
   - 明顯的錯別字

2. 關於使用修正術語列表的重要說明：
   - 修正術語列表中的詞彙主要是英文
   - 即使這些英文詞彙有對應的中文版本，也必須使用英文版本進行更正

3. 嚴格遵守以下規則：
   - 中文要轉換成為繁體
   - 不改變原文的語氣、語調或風格
   - 不添加、刪除或重組句子結構
   - 不更改標點符號

4. 輸出要求：
   - 如果沒有需要更正的內容，原樣返回輸入的文本
   - 只返回更正後的文本，不包含任何解釋、評論或其他額外內容

修正術語列表：%s`, strings.Join(terms, ", "))
}
