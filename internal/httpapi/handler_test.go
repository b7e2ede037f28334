package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/af-corp/prism-enhance/internal/backend"
	"github.com/af-corp/prism-enhance/internal/config"
	"github.com/af-corp/prism-enhance/internal/enhance"
	"github.com/af-corp/prism-enhance/internal/httputil"
	"github.com/af-corp/prism-enhance/internal/normalize"
	"github.com/af-corp/prism-enhance/internal/session"
	"github.com/af-corp/prism-enhance/internal/task"
)

type enhanceCall struct {
	callerID string
	message  string
	style    normalize.Style
	tone     normalize.Tone
}

// fakeEnhancer returns a canned result, or fails for one specific message.
type fakeEnhancer struct {
	res    *enhance.Result
	err    error
	errFor string
	calls  []enhanceCall
}

func (f *fakeEnhancer) Enhance(ctx context.Context, callerID, message string, style normalize.Style, tone normalize.Tone) (*enhance.Result, error) {
	f.calls = append(f.calls, enhanceCall{callerID, message, style, tone})
	if f.err != nil {
		return nil, f.err
	}
	if f.errFor != "" && message == f.errFor {
		return nil, errors.New("backend exploded")
	}
	if f.res != nil {
		out := *f.res
		return &out, nil
	}
	return &enhance.Result{
		Enhanced:     "Enhanced: " + message,
		Improvements: []string{"Added proper punctuation"},
		Metadata:     enhance.Metadata{Method: enhance.MethodFallback, ProcessingTimeMs: 1.5},
	}, nil
}

type submittedTask struct {
	callerID    string
	message     string
	style       normalize.Style
	tone        normalize.Tone
	callbackURL string
}

// fakeTasks records submissions and serves lookups from a fixed map.
type fakeTasks struct {
	submitted []submittedTask
	submitErr error
	tasks     map[string]*task.Task
}

func (f *fakeTasks) Submit(ctx context.Context, callerID, message string, style normalize.Style, tone normalize.Tone, callbackURL string) (*task.Task, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, submittedTask{callerID, message, style, tone, callbackURL})
	return &task.Task{
		TaskID:    "task-123",
		Status:    task.StatusPending,
		CreatedAt: time.Now().UTC(),
		Original:  message,
		Style:     string(style),
		Tone:      string(tone),
	}, nil
}

func (f *fakeTasks) Get(ctx context.Context, taskID string) (*task.Task, error) {
	t, ok := f.tasks[taskID]
	if !ok {
		return nil, task.ErrNotFound
	}
	return t, nil
}

// stubGenerator is a controllable backend for health and model-info tests.
type stubGenerator struct {
	name    string
	model   string
	baseURL string
	healthy bool
	models  []string
	listErr error
}

func (g *stubGenerator) Name() string    { return g.name }
func (g *stubGenerator) Model() string   { return g.model }
func (g *stubGenerator) BaseURL() string { return g.baseURL }
func (g *stubGenerator) Generate(ctx context.Context, req backend.GenerationRequest) (*backend.Generation, error) {
	return nil, errors.New("not implemented")
}
func (g *stubGenerator) Healthy(ctx context.Context) bool { return g.healthy }
func (g *stubGenerator) ListModels(ctx context.Context) ([]string, error) {
	return g.models, g.listErr
}

func stubRegistry(g backend.Generator) *backend.Registry {
	reg := backend.NewRegistry()
	if g != nil {
		reg.Register("primary", g)
		reg.SetDefault("primary")
	}
	return reg
}

func newTestHandler(enh Enhancer, tasks TaskRunner, reg *backend.Registry, tracker *backend.HealthTracker, ready ReadyCheck) *Handler {
	if reg == nil {
		reg = backend.NewRegistry()
	}
	cfg := config.DefaultConfig()
	return NewHandler(enh, tasks, reg, backend.NewProber(), tracker, func() *config.Config { return cfg }, nil, "test", ready)
}

func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	caller := &session.Caller{
		SessionID: "sess-1",
		Record:    &session.Record{ID: "user-1", Username: "pat", CreatedAt: time.Now().UTC()},
		IP:        "203.0.113.7",
	}
	return r.WithContext(session.ContextWithCaller(r.Context(), caller))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httputil.APIErrorBody {
	t.Helper()
	var envelope httputil.APIError
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	return envelope.Error
}

func TestEnhance_Success(t *testing.T) {
	enh := &fakeEnhancer{}
	h := newTestHandler(enh, nil, nil, nil, nil)

	req := authedRequest("POST", "/ai/enhance", `{"message":"  can u check this  ","style":"casual","tone":"polite"}`)
	w := httptest.NewRecorder()
	h.Enhance(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp EnhanceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Original != "can u check this" {
		t.Errorf("expected trimmed original, got %q", resp.Original)
	}
	if resp.Enhanced != "Enhanced: can u check this" {
		t.Errorf("unexpected enhanced text %q", resp.Enhanced)
	}
	if resp.Style != "casual" || resp.Tone != "polite" {
		t.Errorf("expected casual/polite, got %s/%s", resp.Style, resp.Tone)
	}
	if resp.Metadata.Method != enhance.MethodFallback {
		t.Errorf("expected fallback method, got %q", resp.Metadata.Method)
	}
	if resp.Cached {
		t.Error("expected cached=false")
	}

	if len(enh.calls) != 1 {
		t.Fatalf("expected 1 enhancer call, got %d", len(enh.calls))
	}
	call := enh.calls[0]
	if call.callerID != "user-1" {
		t.Errorf("expected caller user-1, got %q", call.callerID)
	}
	if call.message != "can u check this" {
		t.Errorf("expected trimmed message, got %q", call.message)
	}
	if call.style != normalize.StyleCasual || call.tone != normalize.TonePolite {
		t.Errorf("unexpected style/tone %s/%s", call.style, call.tone)
	}
}

func TestEnhance_DefaultsApplied(t *testing.T) {
	enh := &fakeEnhancer{}
	h := newTestHandler(enh, nil, nil, nil, nil)

	req := authedRequest("POST", "/ai/enhance", `{"message":"please review the doc"}`)
	w := httptest.NewRecorder()
	h.Enhance(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(enh.calls) != 1 {
		t.Fatalf("expected 1 enhancer call, got %d", len(enh.calls))
	}
	if enh.calls[0].style != normalize.DefaultStyle {
		t.Errorf("expected default style, got %s", enh.calls[0].style)
	}
	if enh.calls[0].tone != normalize.DefaultTone {
		t.Errorf("expected default tone, got %s", enh.calls[0].tone)
	}
}

func TestEnhance_NotAuthenticated(t *testing.T) {
	h := newTestHandler(&fakeEnhancer{}, nil, nil, nil, nil)

	req := httptest.NewRequest("POST", "/ai/enhance", strings.NewReader(`{"message":"hello there"}`))
	w := httptest.NewRecorder()
	h.Enhance(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestEnhance_InvalidJSON(t *testing.T) {
	h := newTestHandler(&fakeEnhancer{}, nil, nil, nil, nil)

	req := authedRequest("POST", "/ai/enhance", `{"message":`)
	w := httptest.NewRecorder()
	h.Enhance(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestEnhance_MessageTooShort(t *testing.T) {
	enh := &fakeEnhancer{}
	h := newTestHandler(enh, nil, nil, nil, nil)

	req := authedRequest("POST", "/ai/enhance", `{"message":"  hi  "}`)
	w := httptest.NewRecorder()
	h.Enhance(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Param != "message" {
		t.Errorf("expected param message, got %q", body.Param)
	}
	if len(enh.calls) != 0 {
		t.Error("enhancer should not run for invalid input")
	}
}

func TestEnhance_MessageTooLong(t *testing.T) {
	h := newTestHandler(&fakeEnhancer{}, nil, nil, nil, nil)

	long := strings.Repeat("a", 2001)
	req := authedRequest("POST", "/ai/enhance", `{"message":"`+long+`"}`)
	w := httptest.NewRecorder()
	h.Enhance(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Param != "message" {
		t.Errorf("expected param message, got %q", body.Param)
	}
}

func TestEnhance_UnknownStyle(t *testing.T) {
	h := newTestHandler(&fakeEnhancer{}, nil, nil, nil, nil)

	req := authedRequest("POST", "/ai/enhance", `{"message":"please review this","style":"sarcastic"}`)
	w := httptest.NewRecorder()
	h.Enhance(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Param != "style" {
		t.Errorf("expected param style, got %q", body.Param)
	}
}

func TestEnhance_UnknownTone(t *testing.T) {
	h := newTestHandler(&fakeEnhancer{}, nil, nil, nil, nil)

	req := authedRequest("POST", "/ai/enhance", `{"message":"please review this","tone":"angry"}`)
	w := httptest.NewRecorder()
	h.Enhance(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Param != "tone" {
		t.Errorf("expected param tone, got %q", body.Param)
	}
}

func TestEnhance_PipelineFailure(t *testing.T) {
	enh := &fakeEnhancer{err: errors.New("backend ollama-main: connection refused")}
	h := newTestHandler(enh, nil, nil, nil, nil)

	req := authedRequest("POST", "/ai/enhance", `{"message":"please review the deployment plan"}`)
	w := httptest.NewRecorder()
	h.Enhance(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := decodeError(t, w)
	if body.Message != "Message enhancement failed" {
		t.Errorf("unexpected error message %q", body.Message)
	}
	if strings.Contains(body.Message, "connection refused") {
		t.Error("internal error details should not leak to clients")
	}
}

func TestEnhanceBatch_MixedResults(t *testing.T) {
	enh := &fakeEnhancer{}
	h := newTestHandler(enh, nil, nil, nil, nil)

	long := strings.Repeat("x", 2001)
	body := `{"messages":["please review the doc","hi","` + long + `","thanks for the update"],"style":"professional","tone":"neutral"}`
	req := authedRequest("POST", "/ai/enhance/batch", body)
	w := httptest.NewRecorder()
	h.EnhanceBatch(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp BatchEnhanceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Total != 4 || resp.Successful != 2 || resp.Failed != 2 {
		t.Errorf("expected total=4 successful=2 failed=2, got %d/%d/%d", resp.Total, resp.Successful, resp.Failed)
	}
	if resp.Style != "professional" || resp.Tone != "neutral" {
		t.Errorf("unexpected style/tone %s/%s", resp.Style, resp.Tone)
	}

	if resp.Results[1].Error != "Message too short" {
		t.Errorf("expected short-message error, got %q", resp.Results[1].Error)
	}
	if resp.Results[1].Enhanced != resp.Results[1].Original {
		t.Error("failed items should echo the input unchanged")
	}
	if resp.Results[2].Error != "Message too long" {
		t.Errorf("expected long-message error, got %q", resp.Results[2].Error)
	}
	if resp.Results[0].Error != "" || resp.Results[3].Error != "" {
		t.Error("valid items should not carry an error")
	}
	if resp.Results[0].Enhanced != "Enhanced: please review the doc" {
		t.Errorf("unexpected enhanced text %q", resp.Results[0].Enhanced)
	}
	if len(enh.calls) != 2 {
		t.Errorf("expected 2 enhancer calls, got %d", len(enh.calls))
	}
}

func TestEnhanceBatch_EmptyMessages(t *testing.T) {
	h := newTestHandler(&fakeEnhancer{}, nil, nil, nil, nil)

	req := authedRequest("POST", "/ai/enhance/batch", `{"messages":[]}`)
	w := httptest.NewRecorder()
	h.EnhanceBatch(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Param != "messages" {
		t.Errorf("expected param messages, got %q", body.Param)
	}
}

func TestEnhanceBatch_TooManyMessages(t *testing.T) {
	h := newTestHandler(&fakeEnhancer{}, nil, nil, nil, nil)

	messages := make([]string, 6)
	for i := range messages {
		messages[i] = "please review the doc"
	}
	body, _ := json.Marshal(BatchEnhanceRequest{Messages: messages})
	req := authedRequest("POST", "/ai/enhance/batch", string(body))
	w := httptest.NewRecorder()
	h.EnhanceBatch(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body := decodeError(t, w); !strings.Contains(body.Message, "at most 5") {
		t.Errorf("expected batch limit in message, got %q", body.Message)
	}
}

func TestEnhanceBatch_BlankEntriesDropped(t *testing.T) {
	enh := &fakeEnhancer{}
	h := newTestHandler(enh, nil, nil, nil, nil)

	req := authedRequest("POST", "/ai/enhance/batch", `{"messages":["   ","please review the doc"]}`)
	w := httptest.NewRecorder()
	h.EnhanceBatch(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp BatchEnhanceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Total != 1 || resp.Successful != 1 {
		t.Errorf("expected blank entry dropped, got total=%d successful=%d", resp.Total, resp.Successful)
	}
}

func TestEnhanceBatch_ItemFailureContinues(t *testing.T) {
	enh := &fakeEnhancer{errFor: "this one breaks"}
	h := newTestHandler(enh, nil, nil, nil, nil)

	req := authedRequest("POST", "/ai/enhance/batch", `{"messages":["this one breaks","this one works"]}`)
	w := httptest.NewRecorder()
	h.EnhanceBatch(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp BatchEnhanceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Successful != 1 || resp.Failed != 1 {
		t.Errorf("expected 1 success and 1 failure, got %d/%d", resp.Successful, resp.Failed)
	}
	if resp.Results[0].Error != "Message enhancement failed" {
		t.Errorf("unexpected item error %q", resp.Results[0].Error)
	}
	if resp.Results[1].Error != "" {
		t.Error("second item should have succeeded")
	}
}

func TestEnhanceAsync_Accepted(t *testing.T) {
	tasks := &fakeTasks{}
	h := newTestHandler(&fakeEnhancer{}, tasks, nil, nil, nil)

	req := authedRequest("POST", "/ai/enhance/async", `{"message":"please review the doc","callback_url":"http://example.com/hook"}`)
	w := httptest.NewRecorder()
	h.EnhanceAsync(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	var resp AsyncEnhanceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.TaskID != "task-123" {
		t.Errorf("unexpected task id %q", resp.TaskID)
	}
	if resp.Status != "pending" {
		t.Errorf("expected pending, got %q", resp.Status)
	}
	if resp.Message != "Task submitted successfully" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.EstimatedTimeSeconds != 2 {
		t.Errorf("expected estimate 2s, got %d", resp.EstimatedTimeSeconds)
	}

	if len(tasks.submitted) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(tasks.submitted))
	}
	if tasks.submitted[0].callbackURL != "http://example.com/hook" {
		t.Errorf("callback url not forwarded, got %q", tasks.submitted[0].callbackURL)
	}
}

func TestEnhanceAsync_QueueFull(t *testing.T) {
	tasks := &fakeTasks{submitErr: task.ErrQueueFull}
	h := newTestHandler(&fakeEnhancer{}, tasks, nil, nil, nil)

	req := authedRequest("POST", "/ai/enhance/async", `{"message":"please review the doc"}`)
	w := httptest.NewRecorder()
	h.EnhanceAsync(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestEnhanceAsync_SubmitFailure(t *testing.T) {
	tasks := &fakeTasks{submitErr: errors.New("task store not connected")}
	h := newTestHandler(&fakeEnhancer{}, tasks, nil, nil, nil)

	req := authedRequest("POST", "/ai/enhance/async", `{"message":"please review the doc"}`)
	w := httptest.NewRecorder()
	h.EnhanceAsync(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestEnhanceAsync_ValidatesBeforeSubmit(t *testing.T) {
	tasks := &fakeTasks{}
	h := newTestHandler(&fakeEnhancer{}, tasks, nil, nil, nil)

	req := authedRequest("POST", "/ai/enhance/async", `{"message":"hi"}`)
	w := httptest.NewRecorder()
	h.EnhanceAsync(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(tasks.submitted) != 0 {
		t.Error("invalid requests should not reach the task queue")
	}
}

func taskStatusRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/ai/enhance/status/{taskID}", h.TaskStatus)
	return r
}

func TestTaskStatus_Found(t *testing.T) {
	done := time.Now().UTC()
	tasks := &fakeTasks{tasks: map[string]*task.Task{
		"task-42": {
			TaskID:      "task-42",
			Status:      task.StatusCompleted,
			CreatedAt:   done.Add(-time.Second),
			CompletedAt: &done,
			Original:    "please review the doc",
			Style:       "professional",
			Tone:        "neutral",
			Enhanced:    "Please review the doc.",
			Metadata:    &enhance.Metadata{Method: enhance.MethodFallback},
		},
	}}
	h := newTestHandler(&fakeEnhancer{}, tasks, nil, nil, nil)

	req := httptest.NewRequest("GET", "/ai/enhance/status/task-42", nil)
	w := httptest.NewRecorder()
	taskStatusRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var got task.Task
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.TaskID != "task-42" || got.Status != task.StatusCompleted {
		t.Errorf("unexpected task %q in status %q", got.TaskID, got.Status)
	}
	if got.Enhanced != "Please review the doc." {
		t.Errorf("unexpected enhanced text %q", got.Enhanced)
	}
}

func TestTaskStatus_NotFound(t *testing.T) {
	tasks := &fakeTasks{tasks: map[string]*task.Task{}}
	h := newTestHandler(&fakeEnhancer{}, tasks, nil, nil, nil)

	req := httptest.NewRequest("GET", "/ai/enhance/status/nope", nil)
	w := httptest.NewRecorder()
	taskStatusRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestBackendHealth_Healthy(t *testing.T) {
	gen := &stubGenerator{name: "primary", model: "qwen2.5:3b", baseURL: "http://localhost:11434", healthy: true}
	h := newTestHandler(&fakeEnhancer{}, nil, stubRegistry(gen), backend.NewHealthTracker(), nil)

	req := httptest.NewRequest("GET", "/ai/health", nil)
	w := httptest.NewRecorder()
	h.BackendHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp BackendHealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected healthy, got %q", resp.Status)
	}
	if resp.Model != "qwen2.5:3b" || resp.BaseURL != "http://localhost:11434" {
		t.Errorf("unexpected model info %q %q", resp.Model, resp.BaseURL)
	}
}

func TestBackendHealth_Unhealthy(t *testing.T) {
	gen := &stubGenerator{name: "primary", model: "qwen2.5:3b", healthy: false}
	tracker := backend.NewHealthTracker()
	tracker.RecordFailure("primary", errors.New("connection refused"))
	h := newTestHandler(&fakeEnhancer{}, nil, stubRegistry(gen), tracker, nil)

	req := httptest.NewRequest("GET", "/ai/health", nil)
	w := httptest.NewRecorder()
	h.BackendHealth(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var resp BackendHealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("expected unhealthy, got %q", resp.Status)
	}
	if resp.LastError != "connection refused" {
		t.Errorf("expected tracked error, got %q", resp.LastError)
	}
}

func TestBackendHealth_Unconfigured(t *testing.T) {
	h := newTestHandler(&fakeEnhancer{}, nil, nil, nil, nil)

	req := httptest.NewRequest("GET", "/ai/health", nil)
	w := httptest.NewRecorder()
	h.BackendHealth(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var resp BackendHealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "unconfigured" {
		t.Errorf("expected unconfigured, got %q", resp.Status)
	}
}

func TestModelInfo_Available(t *testing.T) {
	gen := &stubGenerator{
		name:    "primary",
		model:   "qwen2.5:3b",
		baseURL: "http://localhost:11434",
		healthy: true,
		models:  []string{"qwen2.5:3b", "llama3.2:1b"},
	}
	h := newTestHandler(&fakeEnhancer{}, nil, stubRegistry(gen), nil, nil)

	req := httptest.NewRequest("GET", "/ai/model-info", nil)
	w := httptest.NewRecorder()
	h.ModelInfo(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ModelInfoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "available" || !resp.Health {
		t.Errorf("expected available/healthy, got %q/%v", resp.Status, resp.Health)
	}
	if len(resp.AvailableModels) != 2 {
		t.Errorf("expected 2 models, got %v", resp.AvailableModels)
	}
}

func TestModelInfo_Unreachable(t *testing.T) {
	gen := &stubGenerator{name: "primary", model: "qwen2.5:3b", healthy: false}
	h := newTestHandler(&fakeEnhancer{}, nil, stubRegistry(gen), nil, nil)

	req := httptest.NewRequest("GET", "/ai/model-info", nil)
	w := httptest.NewRecorder()
	h.ModelInfo(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var resp ModelInfoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "unavailable" || resp.Health {
		t.Errorf("expected unavailable, got %q/%v", resp.Status, resp.Health)
	}
}

func TestModelInfo_Unconfigured(t *testing.T) {
	h := newTestHandler(&fakeEnhancer{}, nil, nil, nil, nil)

	req := httptest.NewRequest("GET", "/ai/model-info", nil)
	w := httptest.NewRecorder()
	h.ModelInfo(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestStyles_Catalog(t *testing.T) {
	h := newTestHandler(&fakeEnhancer{}, nil, nil, nil, nil)

	req := httptest.NewRequest("GET", "/ai/styles", nil)
	w := httptest.NewRecorder()
	h.Styles(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp StylesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Styles) != 5 {
		t.Errorf("expected 5 styles, got %d", len(resp.Styles))
	}
	if len(resp.Tones) != 4 {
		t.Errorf("expected 4 tones, got %d", len(resp.Tones))
	}
	if resp.DefaultStyle != "professional" || resp.DefaultTone != "neutral" {
		t.Errorf("unexpected defaults %s/%s", resp.DefaultStyle, resp.DefaultTone)
	}
	for _, entry := range resp.Styles {
		if entry.Description == "" {
			t.Errorf("style %s has no description", entry.Name)
		}
	}
}

func TestHealth_Alive(t *testing.T) {
	h := newTestHandler(&fakeEnhancer{}, nil, nil, nil, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected healthy, got %q", resp.Status)
	}
	if resp.Environment != "local" || resp.Version != "test" {
		t.Errorf("unexpected environment/version %s/%s", resp.Environment, resp.Version)
	}
	if resp.Timestamp == "" {
		t.Error("expected a timestamp")
	}
}

func TestReady_StoreUp(t *testing.T) {
	ready := func(ctx context.Context) bool { return true }
	h := newTestHandler(&fakeEnhancer{}, nil, nil, nil, ready)

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()
	h.Ready(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ReadyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "healthy" || resp.App != "healthy" || resp.Redis != "healthy" {
		t.Errorf("unexpected readiness %s/%s/%s", resp.Status, resp.App, resp.Redis)
	}
}

func TestReady_StoreDown(t *testing.T) {
	ready := func(ctx context.Context) bool { return false }
	h := newTestHandler(&fakeEnhancer{}, nil, nil, nil, ready)

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()
	h.Ready(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var resp ReadyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "unhealthy" || resp.Redis != "unhealthy" {
		t.Errorf("expected degraded readiness, got %s/%s", resp.Status, resp.Redis)
	}
	if resp.App != "healthy" {
		t.Errorf("app itself should stay healthy, got %q", resp.App)
	}
}

func TestDocs_ListsRoutes(t *testing.T) {
	h := newTestHandler(&fakeEnhancer{}, nil, nil, nil, nil)

	req := httptest.NewRequest("GET", "/docs", nil)
	w := httptest.NewRecorder()
	h.Docs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp docsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Service != "prism-enhance" {
		t.Errorf("unexpected service %q", resp.Service)
	}
	found := false
	for _, ep := range resp.Endpoints {
		if ep.Method == "POST" && ep.Path == "/ai/enhance" {
			found = ep.Auth
		}
	}
	if !found {
		t.Error("expected POST /ai/enhance to be listed as authenticated")
	}
}
