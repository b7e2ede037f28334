package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Redis       RedisConfig       `yaml:"redis"`
	Limits      LimitsConfig      `yaml:"limits"`
	Enhancement EnhancementConfig `yaml:"enhancement"`
	Tasks       TasksConfig       `yaml:"tasks"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	CORS        CORSConfig        `yaml:"cors"`
	Environment Environment       `yaml:"environment"`
}

type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

type RedisConfig struct {
	Addresses []string `yaml:"addresses"`
	Password  string   `yaml:"password"`
	DB        int      `yaml:"db"`
	PoolSize  int      `yaml:"pool_size"`
}

// LimitsConfig holds the sliding-window request limits per caller tier.
// Guest and Anonymous fall back to half and a quarter of Default when zero.
type LimitsConfig struct {
	Default   int           `yaml:"default"`
	Guest     int           `yaml:"guest"`
	Anonymous int           `yaml:"anonymous"`
	Period    time.Duration `yaml:"period"`
}

func (l LimitsConfig) GuestLimit() int {
	if l.Guest > 0 {
		return l.Guest
	}
	return l.Default / 2
}

func (l LimitsConfig) AnonymousLimit() int {
	if l.Anonymous > 0 {
		return l.Anonymous
	}
	return l.Default / 4
}

// EnhancementConfig carries the pipeline thresholds. They are tunable
// acceptance heuristics, not fixed protocol constants.
type EnhancementConfig struct {
	CacheTTL              time.Duration `yaml:"cache_ttl"`
	MinMessageChars       int           `yaml:"min_message_chars"`
	MaxMessageChars       int           `yaml:"max_message_chars"`
	MinWordsForGeneration int           `yaml:"min_words_for_generation"`
	MaxOutputRatio        float64       `yaml:"max_output_ratio"`
	TokenBudgetMultiplier int           `yaml:"token_budget_multiplier"`
	MaxTokenBudget        int           `yaml:"max_token_budget"`
	BatchLimit            int           `yaml:"batch_limit"`
	EnableFallback        bool          `yaml:"enable_fallback"`
}

// TokenBudget caps generation length relative to the input size.
func (e EnhancementConfig) TokenBudget(inputLen int) int {
	budget := e.TokenBudgetMultiplier * inputLen
	if budget > e.MaxTokenBudget {
		return e.MaxTokenBudget
	}
	return budget
}

type TasksConfig struct {
	Workers          int           `yaml:"workers"`
	QueueSize        int           `yaml:"queue_size"`
	Retention        time.Duration `yaml:"retention"`
	WebhookTimeout   time.Duration `yaml:"webhook_timeout"`
	EstimatedSeconds int           `yaml:"estimated_seconds"`
}

type TelemetryConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type CORSConfig struct {
	Origins []string `yaml:"origins"`
	Methods []string `yaml:"methods"`
	Headers []string `yaml:"headers"`
}

// Environment selects the deployment tier. Production hides the docs route.
type Environment string

const (
	EnvLocal      Environment = "local"
	EnvStaging    Environment = "staging"
	EnvProduction Environment = "production"
)

func (e Environment) IsProduction() bool { return e == EnvProduction }

func ParseEnvironment(s string) (Environment, bool) {
	switch Environment(s) {
	case EnvLocal, EnvStaging, EnvProduction:
		return Environment(s), true
	default:
		return "", false
	}
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8088,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     120 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 30 * time.Second,
		},
		Redis: RedisConfig{
			Addresses: []string{"localhost:6379"},
			DB:        0,
			PoolSize:  50,
		},
		Limits: LimitsConfig{
			Default: 10,
			Period:  time.Hour,
		},
		Enhancement: EnhancementConfig{
			CacheTTL:              time.Hour,
			MinMessageChars:       3,
			MaxMessageChars:       2000,
			MinWordsForGeneration: 5,
			MaxOutputRatio:        4.0,
			TokenBudgetMultiplier: 3,
			MaxTokenBudget:        500,
			BatchLimit:            5,
			EnableFallback:        true,
		},
		Tasks: TasksConfig{
			Workers:          4,
			QueueSize:        64,
			Retention:        time.Hour,
			WebhookTimeout:   5 * time.Second,
			EstimatedSeconds: 2,
		},
		Telemetry: TelemetryConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
			Methods: []string{"GET", "POST", "OPTIONS"},
			Headers: []string{"*"},
		},
		Environment: EnvLocal,
	}
}

// Validate rejects configurations that would misbehave silently at runtime.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Limits.Default <= 0 {
		return fmt.Errorf("limits.default must be positive, got %d", c.Limits.Default)
	}
	if c.Limits.Period <= 0 {
		return fmt.Errorf("limits.period must be positive, got %s", c.Limits.Period)
	}
	if c.Enhancement.MinMessageChars <= 0 {
		return fmt.Errorf("enhancement.min_message_chars must be positive, got %d", c.Enhancement.MinMessageChars)
	}
	if c.Enhancement.MaxMessageChars <= c.Enhancement.MinMessageChars {
		return fmt.Errorf("enhancement.max_message_chars must exceed min_message_chars, got %d", c.Enhancement.MaxMessageChars)
	}
	if c.Enhancement.MaxOutputRatio <= 1 {
		return fmt.Errorf("enhancement.max_output_ratio must exceed 1, got %v", c.Enhancement.MaxOutputRatio)
	}
	if c.Enhancement.BatchLimit <= 0 {
		return fmt.Errorf("enhancement.batch_limit must be positive, got %d", c.Enhancement.BatchLimit)
	}
	if c.Tasks.Workers <= 0 {
		return fmt.Errorf("tasks.workers must be positive, got %d", c.Tasks.Workers)
	}
	if c.Tasks.QueueSize <= 0 {
		return fmt.Errorf("tasks.queue_size must be positive, got %d", c.Tasks.QueueSize)
	}
	if c.Tasks.Retention <= 0 {
		return fmt.Errorf("tasks.retention must be positive, got %s", c.Tasks.Retention)
	}
	if _, ok := ParseEnvironment(string(c.Environment)); !ok {
		return fmt.Errorf("environment must be local, staging or production, got %q", c.Environment)
	}
	return nil
}
