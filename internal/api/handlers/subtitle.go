package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/subtitle-forge/backend/internal/job"
	"github.com/subtitle-forge/backend/internal/pipeline"
	"github.com/subtitle-forge/backend/internal/service"
)

const maxUploadSize = 10 * 1024 * 1024 // subtitle and timeline files are small

type SubtitleHandler struct {
	uploadPath string
	queue      *job.JobQueue
	svc        *service.Service
}

func NewSubtitleHandler(uploadPath string, queue *job.JobQueue, svc *service.Service) *SubtitleHandler {
	return &SubtitleHandler{uploadPath: uploadPath, queue: queue, svc: svc}
}

// Engines lists the translation engines available on this server
func (h *SubtitleHandler) Engines(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]interface{}{"engines": h.svc.Engines()}, http.StatusOK)
}

// Translate accepts an SRT upload plus translation parameters and
// enqueues a translation job.
func (h *SubtitleHandler) Translate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	filePath, err := h.saveUpload(r, "subtitle", ".srt")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	langs := splitList(r.FormValue("target_langs"))
	if len(langs) == 0 || len(langs) > 2 {
		jsonError(w, "target_langs must name one or two languages", http.StatusBadRequest)
		return
	}

	styles := map[string]string{}
	if v := r.FormValue("style_prompts"); v != "" {
		if err := json.Unmarshal([]byte(v), &styles); err != nil {
			jsonError(w, "style_prompts must be a JSON object of language to prompt", http.StatusBadRequest)
			return
		}
	}

	params := job.TranslateParams{
		Engine:       r.FormValue("engine"),
		TargetLangs:  langs,
		StylePrompts: styles,
		Convention:   pipeline.Convention(r.FormValue("convention")),
		BatchLimit:   atoiOrZero(r.FormValue("batch_limit")),
		RetryBudget:  atoiOrZero(r.FormValue("retry_budget")),
	}

	j, err := h.queue.Enqueue(job.JobTranslate, filePath, params)
	if err != nil {
		jsonError(w, "failed to enqueue job: "+err.Error(), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, j, http.StatusAccepted)
}

// Correct accepts an SRT upload plus a correction term list and enqueues
// a proofreading job.
func (h *SubtitleHandler) Correct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	filePath, err := h.saveUpload(r, "subtitle", ".srt")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := job.CorrectParams{
		Engine: r.FormValue("engine"),
		Terms:  splitLines(r.FormValue("terms")),
	}

	j, err := h.queue.Enqueue(job.JobCorrect, filePath, params)
	if err != nil {
		jsonError(w, "failed to enqueue job: "+err.Error(), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, j, http.StatusAccepted)
}

// TimeSync accepts an SRT upload plus an editor timeline XML and enqueues
// a re-timing job.
func (h *SubtitleHandler) TimeSync(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	filePath, err := h.saveUpload(r, "subtitle", ".srt")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	timelinePath, err := h.saveUpload(r, "timeline", ".xml")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	maxDiff, _ := strconv.ParseFloat(r.FormValue("max_difference"), 64)
	params := job.TimeSyncParams{
		TimelinePath:  timelinePath,
		MaxDifference: maxDiff,
	}

	j, err := h.queue.Enqueue(job.JobTimeSync, filePath, params)
	if err != nil {
		jsonError(w, "failed to enqueue job: "+err.Error(), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, j, http.StatusAccepted)
}

// Download serves the output of a completed job. Translation results
// support a view mode query: mode=bilingual|dual|source|target and
// lang=<label> to pick the target language, producible at any time from
// the stored snapshot without re-translating.
func (h *SubtitleHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	j, err := h.queue.GetJob(id)
	if err != nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	if j.Status != job.StatusCompleted {
		jsonError(w, fmt.Sprintf("job is %s, not completed", j.Status), http.StatusConflict)
		return
	}

	switch j.Type {
	case job.JobTranslate:
		h.downloadTranslation(w, r, j)
	case job.JobCorrect:
		var res job.CorrectResult
		if err := json.Unmarshal(j.Result, &res); err != nil {
			jsonError(w, "corrupt job result", http.StatusInternalServerError)
			return
		}
		serveFile(w, res.OutputPath, "corrected.srt")
	case job.JobTimeSync:
		var res job.TimeSyncResult
		if err := json.Unmarshal(j.Result, &res); err != nil {
			jsonError(w, "corrupt job result", http.StatusInternalServerError)
			return
		}
		serveFile(w, res.OutputPath, "synced.srt")
	default:
		jsonError(w, "unknown job type", http.StatusBadRequest)
	}
}

func (h *SubtitleHandler) downloadTranslation(w http.ResponseWriter, r *http.Request, j *job.Job) {
	var jobRes job.TranslateResult
	if err := json.Unmarshal(j.Result, &jobRes); err != nil {
		jsonError(w, "corrupt job result", http.StatusInternalServerError)
		return
	}

	res, err := h.svc.LoadResult(jobRes.ResultPath)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	mode := pipeline.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = pipeline.ModeSourceParallel
	}

	// lang picks the target for the single-target views; defaults to the
	// first requested language
	langs := resultLangs(res)
	if want := r.URL.Query().Get("lang"); want != "" {
		found := false
		for i, l := range langs {
			if l == want {
				langs[0], langs[i] = langs[i], langs[0]
				found = true
				break
			}
		}
		if !found {
			jsonError(w, fmt.Sprintf("language %q not part of this translation", want), http.StatusBadRequest)
			return
		}
	}

	doc := pipeline.Format(res.Records, res.Results, mode, langs)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="translated.srt"`)
	io.WriteString(w, doc)
}

func resultLangs(res *pipeline.Result) []string {
	return append([]string(nil), res.TargetLangs...)
}

func (h *SubtitleHandler) saveUpload(r *http.Request, field, ext string) (string, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("missing %s file", field)
	}
	defer file.Close()

	if err := os.MkdirAll(h.uploadPath, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(h.uploadPath, uuid.New().String()+ext)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return path, nil
}

func serveFile(w http.ResponseWriter, path, name string) {
	data, err := os.ReadFile(path)
	if err != nil {
		jsonError(w, "result file missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
