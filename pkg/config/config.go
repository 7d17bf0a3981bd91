// Package config builds the Config struct every other component is wired
// from: executor concurrency bounds, resilience defaults, analyzer
// thresholds, progress-sink sizing, and the seed API registry (spec §6.5).
// Config is built once, optionally from YAML with built-in defaults merged
// in, and validated fail-fast — mirroring the teacher's
// pkg/config/config.go umbrella-object shape.
package config

import (
	"time"

	"github.com/cidadaoai/sentinela/pkg/anomaly"
	"github.com/cidadaoai/sentinela/pkg/federation"
	"github.com/cidadaoai/sentinela/pkg/models"
	"github.com/cidadaoai/sentinela/pkg/progress"
	"github.com/cidadaoai/sentinela/pkg/resilience"
)

// Config is the umbrella object every engine component is constructed
// from (spec §6.5).
type Config struct {
	MaxInFlightStages      int           `yaml:"max_in_flight_stages" validate:"required,min=1"`
	MaxInFlightPerEndpoint int           `yaml:"max_in_flight_per_endpoint" validate:"required,min=1"`
	DefaultStageTimeout    time.Duration `yaml:"default_stage_timeout" validate:"required"`

	Circuit CircuitConfig `yaml:"circuit"`
	Retry   RetryConfig   `yaml:"retry"`

	Analyzer anomaly.Config `yaml:"analyzer_thresholds"`

	Progress ProgressConfig `yaml:"progress"`

	// Endpoints seeds the APIRegistry. A caller that wants only the
	// built-in catalog can leave this nil and call BuiltinEndpoints()
	// directly; Load merges user-declared endpoints in by id.
	Endpoints []models.APIEndpoint `yaml:"endpoints"`
}

// CircuitConfig mirrors resilience.BreakerConfig's fields under the
// spec's §6.5 naming (`circuit.failureThreshold`, `circuit.cooldown`).
type CircuitConfig struct {
	FailureThreshold  uint32        `yaml:"failure_threshold" validate:"required,min=1"`
	Cooldown          time.Duration `yaml:"cooldown" validate:"required"`
	HalfOpenMaxProbes uint32        `yaml:"half_open_max_probes" validate:"required,min=1"`
}

// RetryConfig mirrors resilience.RetryConfig under the spec's §6.5 naming
// (`retry.maxAttempts`, `retry.baseBackoff`, `retry.maxBackoff`).
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts" validate:"required,min=1"`
	BaseBackoff    time.Duration `yaml:"base_backoff" validate:"required"`
	MaxBackoff     time.Duration `yaml:"max_backoff" validate:"required"`
	JitterFraction float64       `yaml:"jitter_fraction" validate:"gte=0,lt=1"`
}

// ProgressConfig sizes the BoundedSink (spec §6.5: `progress.bufferSize`,
// `progress.sendWait`).
type ProgressConfig struct {
	BufferSize int           `yaml:"buffer_size" validate:"required,min=1"`
	SendWait   time.Duration `yaml:"send_wait" validate:"required"`
}

// BreakerConfig projects CircuitConfig into resilience.BreakerConfig.
func (c CircuitConfig) BreakerConfig() resilience.BreakerConfig {
	return resilience.BreakerConfig{
		FailureThreshold:  c.FailureThreshold,
		CooldownPeriod:    c.Cooldown,
		HalfOpenMaxProbes: c.HalfOpenMaxProbes,
	}
}

// ResilienceConfig projects RetryConfig into resilience.RetryConfig.
func (c RetryConfig) ResilienceConfig() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    c.MaxAttempts,
		BaseBackoff:    c.BaseBackoff,
		MaxBackoff:     c.MaxBackoff,
		JitterFraction: c.JitterFraction,
	}
}

// NewBoundedSink builds a progress.Sink sized per ProgressConfig.
func (c ProgressConfig) NewBoundedSink() *progress.BoundedSink {
	return progress.NewBoundedSink(c.BufferSize, c.SendWait)
}

// FederationConfig projects Config into federation.Config.
func (c Config) FederationConfig() federation.Config {
	return federation.Config{
		MaxInFlightStages:      c.MaxInFlightStages,
		MaxInFlightPerEndpoint: c.MaxInFlightPerEndpoint,
		DefaultStageTimeout:    c.DefaultStageTimeout,
		Retry:                  c.Retry.ResilienceConfig(),
	}
}

// Default returns the spec §6.5 default configuration, seeded with the
// built-in endpoint catalog.
func Default() Config {
	return Config{
		MaxInFlightStages:      8,
		MaxInFlightPerEndpoint: 4,
		DefaultStageTimeout:    30 * time.Second,
		Circuit: CircuitConfig{
			FailureThreshold:  3,
			Cooldown:          60 * time.Second,
			HalfOpenMaxProbes: 1,
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			BaseBackoff:    time.Second,
			MaxBackoff:     10 * time.Second,
			JitterFraction: 0.2,
		},
		Analyzer: anomaly.DefaultConfig(),
		Progress: ProgressConfig{
			BufferSize: 256,
			SendWait:   50 * time.Millisecond,
		},
		Endpoints: BuiltinEndpoints(),
	}
}
