package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/af-corp/prism-enhance/internal/backend"
	"github.com/af-corp/prism-enhance/internal/config"
	"github.com/af-corp/prism-enhance/internal/enhance"
	"github.com/af-corp/prism-enhance/internal/httputil"
	"github.com/af-corp/prism-enhance/internal/normalize"
	"github.com/af-corp/prism-enhance/internal/session"
	"github.com/af-corp/prism-enhance/internal/task"
	"github.com/af-corp/prism-enhance/internal/telemetry"
)

// Enhancer runs the synchronous enhancement pipeline.
type Enhancer interface {
	Enhance(ctx context.Context, callerID, message string, style normalize.Style, tone normalize.Tone) (*enhance.Result, error)
}

// TaskRunner accepts background enhancement work and reports task state.
type TaskRunner interface {
	Submit(ctx context.Context, callerID, message string, style normalize.Style, tone normalize.Tone, callbackURL string) (*task.Task, error)
	Get(ctx context.Context, taskID string) (*task.Task, error)
}

// ReadyCheck reports whether the shared store answers.
type ReadyCheck func(ctx context.Context) bool

// Handler holds dependencies for the enhancement HTTP handlers.
type Handler struct {
	enhancer Enhancer
	tasks    TaskRunner
	registry *backend.Registry
	prober   *backend.Prober
	tracker  *backend.HealthTracker
	cfg      func() *config.Config
	metrics  *telemetry.Metrics
	version  string
	ready    ReadyCheck
}

func NewHandler(enhancer Enhancer, tasks TaskRunner, registry *backend.Registry, prober *backend.Prober, tracker *backend.HealthTracker, cfg func() *config.Config, metrics *telemetry.Metrics, version string, ready ReadyCheck) *Handler {
	return &Handler{
		enhancer: enhancer,
		tasks:    tasks,
		registry: registry,
		prober:   prober,
		tracker:  tracker,
		cfg:      cfg,
		metrics:  metrics,
		version:  version,
		ready:    ready,
	}
}

// Enhance handles POST /ai/enhance
func (h *Handler) Enhance(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	receivedAt := time.Now()

	caller, ok := session.CallerFromContext(r.Context())
	if !ok {
		httputil.WriteAuthError(w, reqID, "Not authenticated")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteBadRequestError(w, reqID, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	var req EnhanceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return
	}

	message, ferr := validateMessage(req.Message, h.cfg().Enhancement)
	if ferr != nil {
		httputil.WriteValidationError(w, reqID, ferr.param, ferr.message)
		return
	}
	style, tone, ferr := resolveStyleTone(req.Style, req.Tone)
	if ferr != nil {
		httputil.WriteValidationError(w, reqID, ferr.param, ferr.message)
		return
	}

	res, err := h.enhancer.Enhance(r.Context(), caller.RateID(), message, style, tone)
	if err != nil {
		slog.Error("enhancement failed",
			"request_id", reqID,
			"caller", caller.RateID(),
			"error", err,
		)
		h.recordRequest(style, tone, "error", "500", receivedAt)
		httputil.WriteInternalError(w, reqID, "Message enhancement failed")
		return
	}

	slog.Info("request completed",
		"request_id", reqID,
		"caller", caller.RateID(),
		"tier", string(caller.Tier()),
		"style", string(style),
		"tone", string(tone),
		"method", res.Metadata.Method,
		"cached", res.Cached,
		"input_chars", len(message),
		"output_chars", len(res.Enhanced),
		"duration_ms", time.Since(receivedAt).Milliseconds(),
		"status_code", http.StatusOK,
	)
	h.recordRequest(style, tone, res.Metadata.Method, "200", receivedAt)

	httputil.WriteJSON(w, reqID, http.StatusOK, EnhanceResponse{
		Original:     message,
		Enhanced:     res.Enhanced,
		Style:        string(style),
		Tone:         string(tone),
		Improvements: res.Improvements,
		Metadata:     res.Metadata,
		Cached:       res.Cached,
	})
}

// EnhanceBatch handles POST /ai/enhance/batch
func (h *Handler) EnhanceBatch(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	receivedAt := time.Now()

	caller, ok := session.CallerFromContext(r.Context())
	if !ok {
		httputil.WriteAuthError(w, reqID, "Not authenticated")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteBadRequestError(w, reqID, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	var req BatchEnhanceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return
	}

	cfg := h.cfg().Enhancement
	if len(req.Messages) == 0 {
		httputil.WriteValidationError(w, reqID, "messages", "at least one message is required")
		return
	}
	if len(req.Messages) > cfg.BatchLimit {
		httputil.WriteValidationError(w, reqID, "messages", fmt.Sprintf("at most %d messages per batch", cfg.BatchLimit))
		return
	}
	style, tone, ferr := resolveStyleTone(req.Style, req.Tone)
	if ferr != nil {
		httputil.WriteValidationError(w, reqID, ferr.param, ferr.message)
		return
	}

	results := make([]BatchItem, 0, len(req.Messages))
	successful := 0
	for _, raw := range req.Messages {
		message := strings.TrimSpace(raw)
		if message == "" {
			continue
		}
		if len(message) < cfg.MinMessageChars {
			results = append(results, BatchItem{Original: raw, Enhanced: raw, Error: "Message too short"})
			continue
		}
		if len(message) > cfg.MaxMessageChars {
			results = append(results, BatchItem{Original: raw, Enhanced: raw, Error: "Message too long"})
			continue
		}

		itemStart := time.Now()
		res, err := h.enhancer.Enhance(r.Context(), caller.RateID(), message, style, tone)
		if err != nil {
			slog.Error("batch item enhancement failed",
				"request_id", reqID,
				"caller", caller.RateID(),
				"error", err,
			)
			h.recordRequest(style, tone, "error", "500", itemStart)
			results = append(results, BatchItem{Original: raw, Enhanced: raw, Error: "Message enhancement failed"})
			continue
		}
		h.recordRequest(style, tone, res.Metadata.Method, "200", itemStart)
		successful++
		results = append(results, BatchItem{
			Original:     message,
			Enhanced:     res.Enhanced,
			Improvements: res.Improvements,
			Metadata:     &res.Metadata,
			Cached:       res.Cached,
		})
	}

	slog.Info("batch completed",
		"request_id", reqID,
		"caller", caller.RateID(),
		"total", len(results),
		"successful", successful,
		"failed", len(results)-successful,
		"duration_ms", time.Since(receivedAt).Milliseconds(),
	)

	httputil.WriteJSON(w, reqID, http.StatusOK, BatchEnhanceResponse{
		Results:               results,
		Total:                 len(results),
		Successful:            successful,
		Failed:                len(results) - successful,
		Style:                 string(style),
		Tone:                  string(tone),
		TotalProcessingTimeMs: float64(time.Since(receivedAt).Microseconds()) / 1000,
	})
}

// EnhanceAsync handles POST /ai/enhance/async
func (h *Handler) EnhanceAsync(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	caller, ok := session.CallerFromContext(r.Context())
	if !ok {
		httputil.WriteAuthError(w, reqID, "Not authenticated")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteBadRequestError(w, reqID, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	var req AsyncEnhanceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return
	}

	message, ferr := validateMessage(req.Message, h.cfg().Enhancement)
	if ferr != nil {
		httputil.WriteValidationError(w, reqID, ferr.param, ferr.message)
		return
	}
	style, tone, ferr := resolveStyleTone(req.Style, req.Tone)
	if ferr != nil {
		httputil.WriteValidationError(w, reqID, ferr.param, ferr.message)
		return
	}

	t, err := h.tasks.Submit(r.Context(), caller.RateID(), message, style, tone, req.CallbackURL)
	if err != nil {
		if errors.Is(err, task.ErrQueueFull) {
			slog.Warn("task queue full", "request_id", reqID, "caller", caller.RateID())
			httputil.WriteServiceUnavailableError(w, reqID, "Task queue is full, try again later")
			return
		}
		slog.Error("task submission failed", "request_id", reqID, "error", err)
		httputil.WriteInternalError(w, reqID, "Failed to submit enhancement task")
		return
	}

	slog.Info("task submitted",
		"request_id", reqID,
		"task_id", t.TaskID,
		"caller", caller.RateID(),
		"style", string(style),
		"tone", string(tone),
		"callback", req.CallbackURL != "",
	)

	httputil.WriteJSON(w, reqID, http.StatusAccepted, AsyncEnhanceResponse{
		TaskID:               t.TaskID,
		Status:               string(t.Status),
		Message:              "Task submitted successfully",
		EstimatedTimeSeconds: h.cfg().Tasks.EstimatedSeconds,
	})
}

// TaskStatus handles GET /ai/enhance/status/{taskID}
func (h *Handler) TaskStatus(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	taskID := chi.URLParam(r, "taskID")
	t, err := h.tasks.Get(r.Context(), taskID)
	switch {
	case errors.Is(err, task.ErrNotFound):
		httputil.WriteNotFoundError(w, reqID, "Task not found")
	case err != nil:
		slog.Error("task lookup failed", "request_id", reqID, "task_id", taskID, "error", err)
		httputil.WriteInternalError(w, reqID, "Failed to load task")
	default:
		httputil.WriteJSON(w, reqID, http.StatusOK, t)
	}
}

// BackendHealth handles GET /ai/health
func (h *Handler) BackendHealth(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	gen, ok := h.registry.Default()
	if !ok {
		httputil.WriteJSON(w, reqID, http.StatusServiceUnavailable, BackendHealthResponse{Status: "unconfigured"})
		return
	}

	resp := BackendHealthResponse{
		Status:  "healthy",
		Backend: gen.Name(),
		Model:   gen.Model(),
		BaseURL: gen.BaseURL(),
	}
	code := http.StatusOK
	if !h.prober.Check(r.Context(), gen) {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
		if h.tracker != nil {
			if snap, ok := h.tracker.Snapshot(gen.Name()); ok {
				resp.LastError = snap.LastError
			}
		}
	}
	httputil.WriteJSON(w, reqID, code, resp)
}

// ModelInfo handles GET /ai/model-info
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	gen, ok := h.registry.Default()
	if !ok {
		httputil.WriteServiceUnavailableError(w, reqID, "No generative backend configured")
		return
	}

	if !h.prober.Check(r.Context(), gen) {
		httputil.WriteJSON(w, reqID, http.StatusServiceUnavailable, ModelInfoResponse{
			Status:          "unavailable",
			Model:           gen.Model(),
			BaseURL:         gen.BaseURL(),
			AvailableModels: []string{},
			Health:          false,
		})
		return
	}

	models, err := h.prober.Models(r.Context(), gen)
	if err != nil {
		slog.Warn("model listing failed", "request_id", reqID, "backend", gen.Name(), "error", err)
		models = nil
	}
	if models == nil {
		models = []string{}
	}
	httputil.WriteJSON(w, reqID, http.StatusOK, ModelInfoResponse{
		Status:          "available",
		Model:           gen.Model(),
		BaseURL:         gen.BaseURL(),
		AvailableModels: models,
		Health:          true,
	})
}

// Styles handles GET /ai/styles
func (h *Handler) Styles(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	resp := StylesResponse{
		DefaultStyle: string(normalize.DefaultStyle),
		DefaultTone:  string(normalize.DefaultTone),
	}
	for _, s := range normalize.Styles() {
		resp.Styles = append(resp.Styles, CatalogEntry{Name: string(s), Description: s.Description()})
	}
	for _, t := range normalize.Tones() {
		resp.Tones = append(resp.Tones, CatalogEntry{Name: string(t), Description: t.Description()})
	}
	httputil.WriteJSON(w, reqID, http.StatusOK, resp)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	httputil.WriteJSON(w, reqID, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Environment: string(h.cfg().Environment),
		Version:     h.version,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready. The process serves traffic without the shared
// store, so a store outage degrades readiness rather than liveness.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	redisStatus := "unhealthy"
	if h.ready != nil && h.ready(r.Context()) {
		redisStatus = "healthy"
	}

	code := http.StatusOK
	status := "healthy"
	if redisStatus != "healthy" {
		code = http.StatusServiceUnavailable
		status = "unhealthy"
	}
	httputil.WriteJSON(w, reqID, code, ReadyResponse{
		Status:      status,
		Environment: string(h.cfg().Environment),
		Version:     h.version,
		App:         "healthy",
		Redis:       redisStatus,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) recordRequest(style normalize.Style, tone normalize.Tone, method, status string, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordRequest(telemetry.RequestLabels{
		Style:      string(style),
		Tone:       string(tone),
		Method:     method,
		Status:     status,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// fieldError is a validation failure tied to one request field.
type fieldError struct {
	param   string
	message string
}

func validateMessage(raw string, cfg config.EnhancementConfig) (string, *fieldError) {
	message := strings.TrimSpace(raw)
	if len(message) < cfg.MinMessageChars {
		return "", &fieldError{"message", fmt.Sprintf("message must be at least %d characters", cfg.MinMessageChars)}
	}
	if len(message) > cfg.MaxMessageChars {
		return "", &fieldError{"message", fmt.Sprintf("message must be at most %d characters", cfg.MaxMessageChars)}
	}
	return message, nil
}

func resolveStyleTone(styleRaw, toneRaw string) (normalize.Style, normalize.Tone, *fieldError) {
	style := normalize.DefaultStyle
	if styleRaw != "" {
		parsed, ok := normalize.ParseStyle(styleRaw)
		if !ok {
			return "", "", &fieldError{"style", fmt.Sprintf("unknown style %q", styleRaw)}
		}
		style = parsed
	}
	tone := normalize.DefaultTone
	if toneRaw != "" {
		parsed, ok := normalize.ParseTone(toneRaw)
		if !ok {
			return "", "", &fieldError{"tone", fmt.Sprintf("unknown tone %q", toneRaw)}
		}
		tone = parsed
	}
	return style, tone, nil
}
