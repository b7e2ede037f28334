package httpapi

import "github.com/af-corp/prism-enhance/internal/enhance"

// EnhanceRequest is the body of POST /ai/enhance.
type EnhanceRequest struct {
	Message string `json:"message"`
	Style   string `json:"style,omitempty"`
	Tone    string `json:"tone,omitempty"`
}

// EnhanceResponse is the body of a successful POST /ai/enhance.
type EnhanceResponse struct {
	Original     string           `json:"original"`
	Enhanced     string           `json:"enhanced"`
	Style        string           `json:"style"`
	Tone         string           `json:"tone"`
	Improvements []string         `json:"improvements"`
	Metadata     enhance.Metadata `json:"metadata"`
	Cached       bool             `json:"cached"`
}

// BatchEnhanceRequest is the body of POST /ai/enhance/batch.
type BatchEnhanceRequest struct {
	Messages []string `json:"messages"`
	Style    string   `json:"style,omitempty"`
	Tone     string   `json:"tone,omitempty"`
}

// BatchItem is one message's outcome inside a batch response. Items that
// fail validation or enhancement carry Error and echo the input unchanged.
type BatchItem struct {
	Original     string            `json:"original"`
	Enhanced     string            `json:"enhanced"`
	Improvements []string          `json:"improvements,omitempty"`
	Metadata     *enhance.Metadata `json:"metadata,omitempty"`
	Cached       bool              `json:"cached"`
	Error        string            `json:"error,omitempty"`
}

// BatchEnhanceResponse is the body of a successful POST /ai/enhance/batch.
type BatchEnhanceResponse struct {
	Results               []BatchItem `json:"results"`
	Total                 int         `json:"total"`
	Successful            int         `json:"successful"`
	Failed                int         `json:"failed"`
	Style                 string      `json:"style"`
	Tone                  string      `json:"tone"`
	TotalProcessingTimeMs float64     `json:"total_processing_time_ms"`
}

// AsyncEnhanceRequest is the body of POST /ai/enhance/async.
type AsyncEnhanceRequest struct {
	Message     string `json:"message"`
	Style       string `json:"style,omitempty"`
	Tone        string `json:"tone,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// AsyncEnhanceResponse acknowledges an accepted background task.
type AsyncEnhanceResponse struct {
	TaskID               string `json:"task_id"`
	Status               string `json:"status"`
	Message              string `json:"message"`
	EstimatedTimeSeconds int    `json:"estimated_time_seconds"`
}

// BackendHealthResponse is the body of GET /ai/health.
type BackendHealthResponse struct {
	Status    string `json:"status"`
	Backend   string `json:"backend,omitempty"`
	Model     string `json:"model,omitempty"`
	BaseURL   string `json:"base_url,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

// ModelInfoResponse is the body of GET /ai/model-info.
type ModelInfoResponse struct {
	Status          string   `json:"status"`
	Model           string   `json:"model"`
	BaseURL         string   `json:"base_url"`
	AvailableModels []string `json:"available_models"`
	Health          bool     `json:"health"`
}

// CatalogEntry names one selectable style or tone.
type CatalogEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// StylesResponse is the body of GET /ai/styles.
type StylesResponse struct {
	Styles       []CatalogEntry `json:"styles"`
	Tones        []CatalogEntry `json:"tones"`
	DefaultStyle string         `json:"default_style"`
	DefaultTone  string         `json:"default_tone"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	Timestamp   string `json:"timestamp"`
}

// ReadyResponse is the body of GET /ready. App and Redis report the state
// of the process and its shared store.
type ReadyResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	App         string `json:"app"`
	Redis       string `json:"redis"`
	Timestamp   string `json:"timestamp"`
}
