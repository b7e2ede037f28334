package backend

import (
	"net/http"
	"sync"
	"time"

	"github.com/af-corp/prism-enhance/internal/config"
)

const defaultTimeout = 60 * time.Second

// Registry holds the configured generators and which one serves requests.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Generator
	def      string
}

func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Generator),
	}
}

func (r *Registry) Register(name string, g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[name] = g
}

func (r *Registry) Get(name string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.backends[name]
	return g, ok
}

// Default returns the generator enhancement requests go to. ok is false when
// no default backend is configured, which runs the pipeline floor-only.
func (r *Registry) Default() (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.def == "" {
		return nil, false
	}
	g, ok := r.backends[r.def]
	return g, ok
}

// SetDefault names the generator Default returns. The name does not have to
// be registered yet; Default reports false until it is.
func (r *Registry) SetDefault(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.def = name
}

// BuildFromConfig builds generators from the backends config. Each backend
// gets its own HTTP client so one slow server cannot starve another's
// connection pool.
func BuildFromConfig(cfg *config.BackendsConfig) *Registry {
	registry := NewRegistry()
	for name, bc := range cfg.Backends {
		timeout := bc.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client := &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        8,
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		}

		var g Generator
		switch bc.Type {
		case "openai":
			g = NewOpenAI(name, bc, client)
		default:
			g = NewOllama(name, bc, client)
		}
		registry.Register(name, g)
	}
	if name, _, ok := cfg.DefaultBackend(); ok {
		registry.SetDefault(name)
	}
	return registry
}
