package httpapi

import (
	"net/http"

	"github.com/af-corp/prism-enhance/internal/httputil"
)

type endpointDoc struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Auth        bool   `json:"auth"`
	Description string `json:"description"`
}

type docsResponse struct {
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	Endpoints []endpointDoc `json:"endpoints"`
}

// Docs handles GET /docs. The route catalog is only mounted outside
// production.
func (h *Handler) Docs(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	httputil.WriteJSON(w, reqID, http.StatusOK, docsResponse{
		Service: "prism-enhance",
		Version: h.version,
		Endpoints: []endpointDoc{
			{Method: http.MethodGet, Path: "/health", Description: "Liveness probe"},
			{Method: http.MethodGet, Path: "/ready", Description: "Readiness probe, includes the shared store"},
			{Method: http.MethodGet, Path: "/metrics", Description: "Prometheus metrics"},
			{Method: http.MethodGet, Path: "/ai/styles", Description: "Available styles and tones with defaults"},
			{Method: http.MethodGet, Path: "/ai/health", Description: "Generative backend health"},
			{Method: http.MethodGet, Path: "/ai/model-info", Description: "Generative backend model details"},
			{Method: http.MethodPost, Path: "/ai/enhance", Auth: true, Description: "Enhance a single message"},
			{Method: http.MethodPost, Path: "/ai/enhance/batch", Auth: true, Description: "Enhance several messages in one call"},
			{Method: http.MethodPost, Path: "/ai/enhance/async", Auth: true, Description: "Queue an enhancement and return a task id"},
			{Method: http.MethodGet, Path: "/ai/enhance/status/{task_id}", Description: "Poll a queued enhancement task"},
		},
	})
}
