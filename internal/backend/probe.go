package backend

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// Prober answers health and model-listing questions about backends. A burst
// of concurrent probes for the same backend collapses into one upstream
// request via singleflight; nobody gets rejected while a probe is in flight,
// they just share its answer.
type Prober struct {
	group singleflight.Group
}

func NewProber() *Prober {
	return &Prober{}
}

// Check reports whether the backend answers its health endpoint.
func (p *Prober) Check(ctx context.Context, g Generator) bool {
	v, _, _ := p.group.Do("health:"+g.Name(), func() (interface{}, error) {
		return g.Healthy(ctx), nil
	})
	return v.(bool)
}

// Models lists the models the backend advertises.
func (p *Prober) Models(ctx context.Context, g Generator) ([]string, error) {
	v, err, _ := p.group.Do("models:"+g.Name(), func() (interface{}, error) {
		return g.ListModels(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Warmup issues one tiny generation so the first user request does not pay
// the model's cold-start cost. Meant to run on its own goroutine at boot;
// a failure is recorded and logged, never fatal.
func Warmup(ctx context.Context, g Generator, tracker *HealthTracker, logger *slog.Logger) {
	start := time.Now()
	_, err := g.Generate(ctx, GenerationRequest{
		System:    "Reply with a single word.",
		Prompt:    "Hello",
		MaxTokens: 8,
	})
	if err != nil {
		tracker.RecordFailure(g.Name(), err)
		logger.Warn("backend warmup failed",
			"backend", g.Name(),
			"model", g.Model(),
			"error", err)
		return
	}
	tracker.RecordSuccess(g.Name())
	logger.Info("backend warmed up",
		"backend", g.Name(),
		"model", g.Model(),
		"duration_ms", time.Since(start).Milliseconds())
}
