package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/subtitle-forge/backend/internal/pipeline"
)

// JobType represents the kind of job
type JobType string

const (
	JobTranslate JobType = "translate"
	JobCorrect   JobType = "correct"
	JobTimeSync  JobType = "timesync"
)

// JobStatus represents the current state of a job
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Job represents a queued subtitle task
type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Status      JobStatus       `json:"status"`
	FilePath    string          `json:"file_path"`
	Params      json.RawMessage `json:"params"`
	Progress    float64         `json:"progress"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// TranslateParams are parameters for a translation job
type TranslateParams struct {
	Engine       string              `json:"engine"`       // "openai", "anthropic"
	TargetLangs  []string            `json:"target_langs"` // one or two language labels
	StylePrompts map[string]string   `json:"style_prompts,omitempty"`
	Convention   pipeline.Convention `json:"convention,omitempty"`
	BatchLimit   int                 `json:"batch_limit,omitempty"`
	RetryBudget  int                 `json:"retry_budget,omitempty"`
}

// CorrectParams are parameters for a proofreading job
type CorrectParams struct {
	Engine string   `json:"engine"`
	Terms  []string `json:"terms"`
}

// TimeSyncParams are parameters for a cut-point re-timing job
type TimeSyncParams struct {
	TimelinePath  string  `json:"timeline_path"` // uploaded editor XML
	MaxDifference float64 `json:"max_difference"`
}

// TranslateResult is the output of a successful translation job
type TranslateResult struct {
	ResultPath       string  `json:"result_path"` // JSON snapshot: records + per-language translations
	IsValid          bool    `json:"is_valid"`
	ValidationReport string  `json:"validation_report"`
	DegradedCount    int     `json:"degraded_count"`
	ElapsedSeconds   float64 `json:"elapsed_seconds"`
}

// CorrectResult is the output of a successful proofreading job
type CorrectResult struct {
	OutputPath string `json:"output_path"` // corrected SRT
	Changes    int    `json:"changes"`
}

// TimeSyncResult is the output of a successful re-timing job
type TimeSyncResult struct {
	OutputPath string  `json:"output_path"` // re-timed SRT
	FrameRate  float64 `json:"frame_rate"`
}

// JobHandler processes a job. Implementations are provided by the service layer.
type JobHandler func(ctx context.Context, job *Job, updateProgress func(float64)) error
