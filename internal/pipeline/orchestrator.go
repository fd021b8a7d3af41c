package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/subtitle-forge/backend/internal/srt"
	"github.com/subtitle-forge/backend/internal/translate"
)

// Translate runs the full pipeline over a raw subtitle document:
// parse, chunk, per-batch translate/parse/reconcile, format, validate.
//
// Only an unparseable source aborts the run. A batch whose retry budget is
// exhausted degrades its records to error status and the run continues;
// the caller always gets a best-effort document plus an account of what
// did not succeed. Cancelling ctx stops submitting further batches and
// marks the remaining records cancelled.
func Translate(ctx context.Context, raw []byte, engine translate.Engine, cfg Config) (*Result, error) {
	if len(cfg.TargetLangs) == 0 || len(cfg.TargetLangs) > 2 {
		return nil, fmt.Errorf("pipeline: need one or two target languages, got %d", len(cfg.TargetLangs))
	}

	started := time.Now()

	records, err := srt.Parse(raw)
	if err != nil {
		return nil, err
	}

	limit := cfg.BatchLimit
	if limit <= 0 {
		limit = defaultBatchLimit
	}
	batches := Chunk(records, limit)
	log.Printf("[pipeline] translating %d cues in %d batches (limit %d chars, engine %s)",
		len(records), len(batches), limit, engine.Name())

	client := translate.NewClient(engine, cfg.RetryBudget)
	system := SystemPrompt(cfg.TargetLangs, cfg.StylePrompts, cfg.Convention)

	results := make([]TranslationResult, 0, len(records))
	memo := map[string]string{} // batch text -> raw model output, within this run only
	cancelled := false

	for i, batch := range batches {
		if ctx.Err() != nil {
			cancelled = true
		}
		if cancelled {
			results = append(results, errorResults(batch.Records, cfg.TargetLangs, StatusCancelled, PlaceholderError)...)
			continue
		}

		user := BatchPrompt(batch, cfg.Convention)

		output, ok := memo[user]
		if !ok {
			var callErr error
			output, callErr = client.Complete(ctx, system, user)
			if callErr != nil {
				if ctx.Err() != nil {
					cancelled = true
					results = append(results, errorResults(batch.Records, cfg.TargetLangs, StatusCancelled, PlaceholderError)...)
					continue
				}
				log.Printf("[pipeline] batch %d/%d failed: %v", i+1, len(batches), callErr)
				results = append(results, errorResults(batch.Records, cfg.TargetLangs, StatusError, PlaceholderError)...)
				reportProgress(cfg, len(results), len(records))
				continue
			}
			memo[user] = output
		}

		parsed := ParseResponse(output, cfg.TargetLangs, cfg.Convention)
		results = append(results, Reconcile(parsed, batch.Records, cfg.TargetLangs)...)
		reportProgress(cfg, len(results), len(records))

		// Pace calls to stay under upstream rate limits
		if cfg.PacingDelay > 0 && i < len(batches)-1 {
			select {
			case <-ctx.Done():
				cancelled = true
			case <-time.After(cfg.PacingDelay):
			}
		}
	}

	doc := Format(records, results, defaultMode(cfg.TargetLangs), cfg.TargetLangs)
	isValid, report := srt.Validate(doc)

	degraded := 0
	for _, r := range results {
		if r.Degraded() {
			degraded++
		}
	}
	if degraded > 0 {
		report = fmt.Sprintf("%s; %d of %d cues degraded", report, degraded, len(records))
	}

	log.Printf("[pipeline] done: %d cues, %d degraded, valid=%v in %s",
		len(records), degraded, isValid, time.Since(started).Round(time.Millisecond))

	return &Result{
		Records:          records,
		Results:          results,
		TargetLangs:      append([]string(nil), cfg.TargetLangs...),
		IsValid:          isValid,
		ValidationReport: report,
		DegradedCount:    degraded,
		ElapsedSeconds:   time.Since(started).Seconds(),
	}, nil
}

// defaultMode picks the richest view for validation: bilingual for one
// target, dual-target for two.
func defaultMode(langs []string) Mode {
	if len(langs) == 2 {
		return ModeDualTarget
	}
	return ModeSourceParallel
}

func reportProgress(cfg Config, done, total int) {
	if cfg.Progress == nil || total == 0 {
		return
	}
	cfg.Progress(float64(done) / float64(total))
}
