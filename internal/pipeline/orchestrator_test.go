package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/subtitle-forge/backend/internal/srt"
)

const twoCueDoc = `1
00:00:01,000 --> 00:00:02,000
Hello

2
00:00:03,000 --> 00:00:04,000
World
`

// scriptedEngine answers each Complete call from a fixed script, or with a
// function when responses depend on the prompt.
type scriptedEngine struct {
	mu       sync.Mutex
	respond  func(user string) (string, error)
	script   []string
	err      error
	calls    int
	prompts  []string
}

func (e *scriptedEngine) Name() string { return "scripted" }

func (e *scriptedEngine) Complete(ctx context.Context, system, user string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prompts = append(e.prompts, user)
	call := e.calls
	e.calls++

	if e.respond != nil {
		return e.respond(user)
	}
	if e.err != nil {
		return "", e.err
	}
	if call >= len(e.script) {
		call = len(e.script) - 1
	}
	return e.script[call], nil
}

func TestTranslate_Success(t *testing.T) {
	engine := &scriptedEngine{script: []string{"French: Bonjour\n\nFrench: Monde"}}

	res, err := Translate(context.Background(), []byte(twoCueDoc), engine, Config{
		TargetLangs: []string{"French"},
		RetryBudget: 1,
	})
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if len(res.Records) != 2 || len(res.Results) != 2 {
		t.Fatalf("records=%d results=%d, want 2/2", len(res.Records), len(res.Results))
	}
	if res.Results[0].Translations["French"] != "Bonjour" {
		t.Errorf("result 0 = %v", res.Results[0].Translations)
	}
	if res.Results[1].Translations["French"] != "Monde" {
		t.Errorf("result 1 = %v", res.Results[1].Translations)
	}
	if res.DegradedCount != 0 {
		t.Errorf("degraded = %d, want 0", res.DegradedCount)
	}
	if !res.IsValid {
		t.Errorf("output should validate: %s", res.ValidationReport)
	}
	if len(res.TargetLangs) != 1 || res.TargetLangs[0] != "French" {
		t.Errorf("TargetLangs = %v", res.TargetLangs)
	}
	if len(engine.prompts) != 1 || !strings.Contains(engine.prompts[0], "Hello") {
		t.Errorf("batch prompt = %q", engine.prompts)
	}
}

func TestTranslate_ModelOmitsOneRecord(t *testing.T) {
	engine := &scriptedEngine{script: []string{"French: Bonjour"}}

	res, err := Translate(context.Background(), []byte(twoCueDoc), engine, Config{
		TargetLangs: []string{"French"},
		RetryBudget: 1,
	})
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if res.Results[0].Status != StatusOK {
		t.Errorf("result 0 status = %s", res.Results[0].Status)
	}
	if res.Results[1].Status != StatusMissing {
		t.Errorf("result 1 status = %s, want missing", res.Results[1].Status)
	}
	if res.Results[1].Translations["French"] != PlaceholderMissing {
		t.Errorf("result 1 = %v", res.Results[1].Translations)
	}
	if res.DegradedCount != 1 {
		t.Errorf("degraded = %d, want 1", res.DegradedCount)
	}
	if !strings.Contains(res.ValidationReport, "1 of 2 cues degraded") {
		t.Errorf("report = %q", res.ValidationReport)
	}
}

func TestTranslate_EngineAlwaysFails(t *testing.T) {
	engine := &scriptedEngine{err: fmt.Errorf("engine exploded")}

	res, err := Translate(context.Background(), []byte(twoCueDoc), engine, Config{
		TargetLangs: []string{"French"},
		RetryBudget: 1,
	})
	if err != nil {
		t.Fatalf("a failed batch must degrade, not abort: %v", err)
	}
	for i, r := range res.Results {
		if r.Status != StatusError {
			t.Errorf("result %d status = %s, want error", i, r.Status)
		}
		if r.Translations["French"] != PlaceholderError {
			t.Errorf("result %d = %v", i, r.Translations)
		}
	}
	if res.DegradedCount != 2 {
		t.Errorf("degraded = %d, want 2", res.DegradedCount)
	}
	// Placeholders keep every block populated, so the document still parses.
	if !res.IsValid {
		t.Errorf("degraded output should still validate: %s", res.ValidationReport)
	}
}

func TestTranslate_UnparseableSource(t *testing.T) {
	engine := &scriptedEngine{script: []string{"French: Bonjour"}}

	_, err := Translate(context.Background(), []byte("nonsense\nwithout cues\n"), engine, Config{
		TargetLangs: []string{"French"},
	})
	var perr *srt.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *srt.ParseError, got %v", err)
	}
	if engine.calls != 0 {
		t.Errorf("engine called %d times for unparseable input", engine.calls)
	}
}

func TestTranslate_LanguageCountValidation(t *testing.T) {
	engine := &scriptedEngine{script: []string{""}}
	for _, langs := range [][]string{nil, {"a", "b", "c"}} {
		if _, err := Translate(context.Background(), []byte(twoCueDoc), engine, Config{TargetLangs: langs}); err == nil {
			t.Errorf("expected error for %d target languages", len(langs))
		}
	}
}

func TestTranslate_CancellationMarksRemainder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	engine := &scriptedEngine{}
	engine.respond = func(user string) (string, error) {
		// Cancel after answering the first batch; later batches must not
		// reach the engine.
		cancel()
		return "French: Bonjour", nil
	}

	res, err := Translate(ctx, []byte(twoCueDoc), engine, Config{
		TargetLangs: []string{"French"},
		BatchLimit:  10, // one cue per batch
		RetryBudget: 1,
	})
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if engine.calls != 1 {
		t.Fatalf("engine called %d times, want 1", engine.calls)
	}
	if res.Results[0].Status != StatusOK {
		t.Errorf("result 0 status = %s", res.Results[0].Status)
	}
	if res.Results[1].Status != StatusCancelled {
		t.Errorf("result 1 status = %s, want cancelled", res.Results[1].Status)
	}
	if len(res.Results) != len(res.Records) {
		t.Errorf("results=%d records=%d, mapping broken", len(res.Results), len(res.Records))
	}
}

func TestTranslate_MemoizesIdenticalBatches(t *testing.T) {
	doc := `1
00:00:01,000 --> 00:00:02,000
Hello

2
00:00:03,000 --> 00:00:04,000
Hello
`
	engine := &scriptedEngine{script: []string{"French: Bonjour"}}

	res, err := Translate(context.Background(), []byte(doc), engine, Config{
		TargetLangs: []string{"French"},
		BatchLimit:  10, // identical cues land in separate batches
		RetryBudget: 1,
	})
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if engine.calls != 1 {
		t.Errorf("engine called %d times, want 1 (memoized)", engine.calls)
	}
	for i, r := range res.Results {
		if r.Translations["French"] != "Bonjour" {
			t.Errorf("result %d = %v", i, r.Translations)
		}
	}
}

func TestTranslate_ProgressMonotonic(t *testing.T) {
	engine := &scriptedEngine{respond: func(user string) (string, error) {
		return "French: Bonjour", nil
	}}

	var seen []float64
	_, err := Translate(context.Background(), []byte(twoCueDoc), engine, Config{
		TargetLangs: []string{"French"},
		BatchLimit:  10,
		RetryBudget: 1,
		Progress:    func(f float64) { seen = append(seen, f) },
	})
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if len(seen) == 0 {
		t.Fatal("progress callback never fired")
	}
	prev := 0.0
	for i, f := range seen {
		if f < prev {
			t.Errorf("progress regressed at %d: %v", i, seen)
		}
		prev = f
	}
	if seen[len(seen)-1] != 1.0 {
		t.Errorf("final progress = %v, want 1.0", seen[len(seen)-1])
	}
}

func TestTranslate_LogsEffectiveBatchLimit(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	engine := &scriptedEngine{script: []string{"French: Bonjour\n\nFrench: Monde"}}
	// BatchLimit left zero; the run uses and reports the default
	_, err := Translate(context.Background(), []byte(twoCueDoc), engine, Config{
		TargetLangs: []string{"French"},
		RetryBudget: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "limit 1024 chars") {
		t.Errorf("startup log should carry the effective limit, got:\n%s", buf.String())
	}
}

func TestTranslate_TwoTargetLanguages(t *testing.T) {
	engine := &scriptedEngine{script: []string{
		"French: Bonjour\nGerman: Hallo\n\nFrench: Monde\nGerman: Welt",
	}}

	res, err := Translate(context.Background(), []byte(twoCueDoc), engine, Config{
		TargetLangs: []string{"French", "German"},
		RetryBudget: 1,
	})
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if res.Results[1].Translations["German"] != "Welt" {
		t.Errorf("result 1 = %v", res.Results[1].Translations)
	}
	// Two targets validate through the dual-target view.
	if !res.IsValid {
		t.Errorf("dual output should validate: %s", res.ValidationReport)
	}
}
