// Package enhance runs the two-stage enhancement pipeline: a deterministic
// rule-based floor that always succeeds, and an optional generative pass
// whose output must earn its place. Results are cached per caller.
package enhance

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/af-corp/prism-enhance/internal/backend"
	"github.com/af-corp/prism-enhance/internal/config"
	"github.com/af-corp/prism-enhance/internal/normalize"
	"github.com/af-corp/prism-enhance/internal/telemetry"
)

// Methods recorded in result metadata.
const (
	MethodGenerative = "generative"
	MethodFallback   = "fallback"
)

// Metadata describes how a result was produced. Error carries the swallowed
// generation failure when the rule-based floor was served instead.
type Metadata struct {
	Method           string  `json:"method"`
	Model            string  `json:"model,omitempty"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
	TokensGenerated  int     `json:"tokens_generated,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// Result is one enhancement outcome, fresh or from cache.
type Result struct {
	Enhanced     string
	Improvements []string
	Metadata     Metadata
	Cached       bool
}

// GeneratorSource yields the backend for the next generation, or false when
// none is configured. Registries hand out the current default so hot
// reloads take effect between requests.
type GeneratorSource func() (backend.Generator, bool)

// Service coordinates cache lookup, floor normalization, the generative
// pass, acceptance validation and result caching.
type Service struct {
	cache     Cache
	generator GeneratorSource
	tracker   *backend.HealthTracker
	settings  func() config.EnhancementConfig
	metrics   *telemetry.Metrics
	logger    *slog.Logger
}

func NewService(cache Cache, generator GeneratorSource, tracker *backend.HealthTracker, settings func() config.EnhancementConfig, metrics *telemetry.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cache:     cache,
		generator: generator,
		tracker:   tracker,
		settings:  settings,
		metrics:   metrics,
		logger:    logger,
	}
}

// Enhance rewrites message for the caller in the requested style and tone.
// The floor always succeeds; the generative pass runs only when the message
// is long enough to benefit and a backend is configured. Generation
// failures fall back to the floor with the reason recorded in metadata,
// unless fallback is disabled in which case the error surfaces.
func (s *Service) Enhance(ctx context.Context, callerID, message string, style normalize.Style, tone normalize.Tone) (*Result, error) {
	start := time.Now()
	cfg := s.settings()
	fingerprint := Fingerprint(message, style, tone)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, callerID, fingerprint)
		switch {
		case err != nil:
			s.recordCacheOp("error")
			s.logger.Warn("enhancement cache lookup failed", "error", err)
		case cached != nil:
			s.recordCacheOp("hit")
			return &Result{
				Enhanced:     cached.Enhanced,
				Improvements: cached.Improvements,
				Metadata:     cached.Metadata,
				Cached:       true,
			}, nil
		default:
			s.recordCacheOp("miss")
		}
	}

	floor := normalize.Apply(message, style, tone)
	res := &Result{
		Enhanced: floor,
		Metadata: Metadata{Method: MethodFallback},
	}

	if gen, ok := s.generator(); ok && normalize.WordCount(message) >= cfg.MinWordsForGeneration {
		enhanced, meta, err := s.generate(ctx, gen, message, floor, style, tone, cfg)
		switch {
		case err == nil:
			res.Enhanced = enhanced
			res.Metadata = meta
		case !cfg.EnableFallback:
			return nil, err
		default:
			s.logger.Warn("generation failed, serving rule-based floor",
				"backend", gen.Name(),
				"model", gen.Model(),
				"error", err,
			)
			res.Metadata.Model = gen.Model()
			res.Metadata.Error = err.Error()
		}
	}

	res.Improvements = Improvements(message, res.Enhanced, style, tone)
	res.Metadata.ProcessingTimeMs = float64(time.Since(start).Microseconds()) / 1000

	if s.cache != nil {
		entry := &CachedResult{
			Enhanced:     res.Enhanced,
			Improvements: res.Improvements,
			Metadata:     res.Metadata,
		}
		if err := s.cache.Set(ctx, callerID, fingerprint, entry, cfg.CacheTTL); err != nil {
			s.logger.Warn("enhancement cache write failed", "error", err)
		}
	}
	return res, nil
}

// generate runs one backend call and validates what came back. The floor is
// the prompt base; the raw message length bounds the token budget and the
// acceptable output size.
func (s *Service) generate(ctx context.Context, gen backend.Generator, message, floor string, style normalize.Style, tone normalize.Tone, cfg config.EnhancementConfig) (string, Metadata, error) {
	req := backend.GenerationRequest{
		System:    SystemPrompt(style, tone),
		Prompt:    UserPrompt(floor),
		MaxTokens: cfg.TokenBudget(len(message)),
	}

	start := time.Now()
	g, err := gen.Generate(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		if s.tracker != nil {
			s.tracker.RecordFailure(gen.Name(), err)
		}
		s.recordBackendCall(gen.Name(), "error", elapsed)
		return "", Metadata{}, fmt.Errorf("backend %s: %w", gen.Name(), err)
	}
	// The round trip succeeded; a content rejection below is not a health
	// event.
	if s.tracker != nil {
		s.tracker.RecordSuccess(gen.Name())
	}

	out := CleanOutput(g.Text)
	if err := acceptOutput(out, message, floor, cfg); err != nil {
		s.recordBackendCall(gen.Name(), "rejected", elapsed)
		return "", Metadata{}, err
	}
	s.recordBackendCall(gen.Name(), "ok", elapsed)

	// Generative backends reintroduce informal artifacts often enough that
	// one more pass through the floor rules is worth it.
	out = normalize.Apply(out, style, tone)

	meta := Metadata{
		Method:          MethodGenerative,
		Model:           g.Model,
		TokensGenerated: g.TokensGenerated,
	}
	if meta.Model == "" {
		meta.Model = gen.Model()
	}
	return out, meta, nil
}

// acceptOutput decides whether generated text replaces the floor. Length
// bounds are relative to the raw message; output that only echoes the floor
// adds nothing and is rejected.
func acceptOutput(out, message, floor string, cfg config.EnhancementConfig) error {
	if len(out) < cfg.MinMessageChars {
		return fmt.Errorf("output too short (%d chars)", len(out))
	}
	if float64(len(out)) > cfg.MaxOutputRatio*float64(len(message)) {
		return fmt.Errorf("output too long (%d chars for a %d char input)", len(out), len(message))
	}
	if !materiallyDifferent(out, floor) {
		return fmt.Errorf("output does not differ from rule-based result")
	}
	return nil
}

var anyWhitespace = regexp.MustCompile(`\s+`)

// materiallyDifferent ignores whitespace-only deltas when comparing the
// backend's output against the floor.
func materiallyDifferent(a, b string) bool {
	na := anyWhitespace.ReplaceAllString(strings.TrimSpace(a), " ")
	nb := anyWhitespace.ReplaceAllString(strings.TrimSpace(b), " ")
	return na != nb
}

func (s *Service) recordCacheOp(result string) {
	if s.metrics != nil {
		s.metrics.RecordCacheOp(result)
	}
}

func (s *Service) recordBackendCall(name, outcome string, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordBackendCall(name, outcome, float64(elapsed.Microseconds())/1000)
	}
}
