package task

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Notifier announces a task's terminal state to its callback URL.
type Notifier interface {
	Notify(ctx context.Context, callbackURL string, t *Task)
}

// WebhookNotifier delivers one POST per terminal transition, at most once:
// failures are logged, never retried, and never affect the stored task.
type WebhookNotifier struct {
	client *http.Client
	logger *slog.Logger
}

func NewWebhookNotifier(timeout time.Duration, logger *slog.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookNotifier{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type webhookPayload struct {
	TaskID string `json:"task_id"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, callbackURL string, t *Task) {
	payload, err := json.Marshal(webhookPayload{
		TaskID: t.TaskID,
		Status: t.Status,
		Error:  t.Error,
	})
	if err != nil {
		n.logger.Warn("webhook payload encoding failed", "task_id", t.TaskID, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callbackURL, bytes.NewReader(payload))
	if err != nil {
		n.logger.Warn("webhook request build failed", "task_id", t.TaskID, "url", callbackURL, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed", "task_id", t.TaskID, "url", callbackURL, "error", err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		n.logger.Warn("webhook rejected",
			"task_id", t.TaskID,
			"url", callbackURL,
			"status", resp.StatusCode,
		)
	}
}
