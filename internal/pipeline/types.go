package pipeline

import (
	"time"

	"github.com/subtitle-forge/backend/internal/srt"
)

// Status describes the outcome of translating one record
type Status string

const (
	StatusOK        Status = "ok"
	StatusMissing   Status = "missing"   // model omitted the record from its response
	StatusError     Status = "error"     // retry budget exhausted
	StatusCancelled Status = "cancelled" // run cancelled before the record was submitted
)

// Visible placeholders emitted instead of dropping a line, so the block
// structure of the output stays intact.
const (
	PlaceholderError   = "[translation error]"
	PlaceholderMissing = "[missing translation]"
)

// TranslationResult holds the per-language output for one record. After
// reconciliation there is exactly one result per input record, in input
// order.
type TranslationResult struct {
	SourceText   string            `json:"source_text"`
	Translations map[string]string `json:"translations"`
	Status       Status            `json:"status"`
}

// Degraded reports whether any language field carries a placeholder
// instead of a real translation.
func (r TranslationResult) Degraded() bool {
	if r.Status != StatusOK {
		return true
	}
	for _, v := range r.Translations {
		if v == PlaceholderError || v == PlaceholderMissing {
			return true
		}
	}
	return false
}

// Convention selects the model output contract the response parser expects
type Convention string

const (
	// LabeledLines expects stanzas of "Language: translation" lines,
	// one line per requested language per record.
	LabeledLines Convention = "labeled"
	// StructuredJSON expects a single JSON array enumerating per-record
	// translations.
	StructuredJSON Convention = "json"
)

// Config is the immutable per-run configuration supplied by the caller
type Config struct {
	TargetLangs  []string          `json:"target_langs"`  // one or two labels
	StylePrompts map[string]string `json:"style_prompts"` // per-language style instructions
	BatchLimit   int               `json:"batch_limit"`   // serialized chars per batch
	RetryBudget  int               `json:"retry_budget"`
	Convention   Convention        `json:"convention"`
	PacingDelay  time.Duration     `json:"-"` // inter-batch delay to respect rate limits
	Progress     func(float64)     `json:"-"` // monotonically non-decreasing fraction in [0,1]
}

// Result is the outcome of one pipeline run. Records and Results have the
// same length and order; an invalid document is still delivered, tagged by
// IsValid and the report.
type Result struct {
	Records          []srt.Record        `json:"records"`
	Results          []TranslationResult `json:"results"`
	TargetLangs      []string            `json:"target_langs"`
	IsValid          bool                `json:"is_valid"`
	ValidationReport string              `json:"validation_report"`
	DegradedCount    int                 `json:"degraded_count"`
	ElapsedSeconds   float64             `json:"elapsed_seconds"`
}
