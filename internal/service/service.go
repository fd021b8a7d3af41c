// Package service wires queued jobs to the subtitle pipeline: it resolves
// the requested engine, runs the work and stores the produced artifacts
// under the data directory.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/subtitle-forge/backend/internal/config"
	"github.com/subtitle-forge/backend/internal/correct"
	"github.com/subtitle-forge/backend/internal/job"
	"github.com/subtitle-forge/backend/internal/pipeline"
	"github.com/subtitle-forge/backend/internal/srt"
	"github.com/subtitle-forge/backend/internal/timesync"
	"github.com/subtitle-forge/backend/internal/translate"
)

// Service processes subtitle jobs with the configured translation engines
type Service struct {
	cfg     *config.Config
	engines map[string]translate.Engine
}

func New(cfg *config.Config) *Service {
	s := &Service{
		cfg:     cfg,
		engines: make(map[string]translate.Engine),
	}

	if cfg.OpenAIKey != "" {
		s.engines["openai"] = translate.NewOpenAIEngine(cfg.OpenAIKey, cfg.OpenAIModel)
		log.Printf("[service] registered OpenAI engine (model %s)", cfg.OpenAIModel)
	}
	if cfg.AnthropicKey != "" {
		s.engines["anthropic"] = translate.NewAnthropicEngine(cfg.AnthropicKey, cfg.AnthropicModel)
		log.Printf("[service] registered Anthropic engine (model %s)", cfg.AnthropicModel)
	}

	return s
}

// Engines lists the registered engine names
func (s *Service) Engines() []string {
	names := make([]string, 0, len(s.engines))
	for name := range s.engines {
		names = append(names, name)
	}
	return names
}

func (s *Service) engine(name string) (translate.Engine, error) {
	engine, ok := s.engines[name]
	if !ok {
		return nil, fmt.Errorf("unknown translation engine: %s", name)
	}
	return engine, nil
}

// HandleTranslate processes a translation job
func (s *Service) HandleTranslate(ctx context.Context, j *job.Job, updateProgress func(float64)) error {
	var params job.TranslateParams
	if err := json.Unmarshal(j.Params, &params); err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}

	engine, err := s.engine(params.Engine)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(j.FilePath)
	if err != nil {
		return fmt.Errorf("read subtitle: %w", err)
	}

	langs := make([]string, len(params.TargetLangs))
	for i, l := range params.TargetLangs {
		langs[i] = translate.Label(l)
	}

	cfg := pipeline.Config{
		TargetLangs:  langs,
		StylePrompts: params.StylePrompts,
		BatchLimit:   params.BatchLimit,
		RetryBudget:  params.RetryBudget,
		Convention:   params.Convention,
		PacingDelay:  s.cfg.PacingDelay,
		Progress:     updateProgress,
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = s.cfg.BatchLimit
	}
	if cfg.RetryBudget <= 0 {
		cfg.RetryBudget = s.cfg.RetryBudget
	}
	if cfg.Convention == "" {
		cfg.Convention = pipeline.LabeledLines
	}

	log.Printf("[service] translating %s: engine=%s langs=%v", j.FilePath, params.Engine, langs)

	res, err := pipeline.Translate(ctx, raw, engine, cfg)
	if err != nil {
		// Only an unparseable source reaches here; everything else is
		// captured per record in the result
		return fmt.Errorf("translate: %w", err)
	}

	resultPath, err := s.writeResult(j.ID, res)
	if err != nil {
		return err
	}

	resultJSON, _ := json.Marshal(job.TranslateResult{
		ResultPath:       resultPath,
		IsValid:          res.IsValid,
		ValidationReport: res.ValidationReport,
		DegradedCount:    res.DegradedCount,
		ElapsedSeconds:   res.ElapsedSeconds,
	})
	j.Result = resultJSON

	updateProgress(1.0)
	return nil
}

// HandleCorrect processes a proofreading job
func (s *Service) HandleCorrect(ctx context.Context, j *job.Job, updateProgress func(float64)) error {
	var params job.CorrectParams
	if err := json.Unmarshal(j.Params, &params); err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}

	engine, err := s.engine(params.Engine)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(j.FilePath)
	if err != nil {
		return fmt.Errorf("read subtitle: %w", err)
	}
	records, err := srt.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse subtitle: %w", err)
	}

	client := translate.NewClient(engine, s.cfg.RetryBudget)
	corrected, changes, err := correct.Run(ctx, records, client, correct.Options{
		Terms:    params.Terms,
		Workers:  s.cfg.CorrectWorkers,
		Progress: updateProgress,
	})
	if err != nil {
		return fmt.Errorf("correct: %w", err)
	}

	outPath := filepath.Join(s.resultDir(), j.ID+"_corrected.srt")
	if err := os.WriteFile(outPath, []byte(srt.Serialize(corrected)), 0644); err != nil {
		return fmt.Errorf("save corrected subtitle: %w", err)
	}

	resultJSON, _ := json.Marshal(job.CorrectResult{
		OutputPath: outPath,
		Changes:    len(changes),
	})
	j.Result = resultJSON

	updateProgress(1.0)
	return nil
}

// HandleTimeSync processes a cut-point re-timing job
func (s *Service) HandleTimeSync(ctx context.Context, j *job.Job, updateProgress func(float64)) error {
	var params job.TimeSyncParams
	if err := json.Unmarshal(j.Params, &params); err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}

	raw, err := os.ReadFile(j.FilePath)
	if err != nil {
		return fmt.Errorf("read subtitle: %w", err)
	}
	records, err := srt.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse subtitle: %w", err)
	}

	xmlFile, err := os.Open(params.TimelinePath)
	if err != nil {
		return fmt.Errorf("open timeline: %w", err)
	}
	defer xmlFile.Close()

	tl, err := timesync.ParseTimeline(xmlFile)
	if err != nil {
		return err
	}

	adjusted := timesync.Adjust(records, tl, params.MaxDifference)

	outPath := filepath.Join(s.resultDir(), j.ID+"_synced.srt")
	if err := os.WriteFile(outPath, []byte(srt.Serialize(adjusted)), 0644); err != nil {
		return fmt.Errorf("save synced subtitle: %w", err)
	}

	resultJSON, _ := json.Marshal(job.TimeSyncResult{
		OutputPath: outPath,
		FrameRate:  tl.FrameRate,
	})
	j.Result = resultJSON

	updateProgress(1.0)
	return nil
}

// LoadResult reads a stored translation snapshot back for formatting
func (s *Service) LoadResult(path string) (*pipeline.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}
	var res pipeline.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &res, nil
}

func (s *Service) resultDir() string {
	dir := filepath.Join(s.cfg.DataPath, "results")
	os.MkdirAll(dir, 0755)
	return dir
}

// writeResult stores the full pipeline result so any output view can be
// produced later without re-translating
func (s *Service) writeResult(jobID string, res *pipeline.Result) (string, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	path := filepath.Join(s.resultDir(), jobID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("save result: %w", err)
	}
	return path, nil
}
