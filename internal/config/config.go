// Package config defines service configuration and its loading hooks.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory telemetry queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of telemetry fold workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the (gameID, ply) idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the profile store.
	ShardCount int `koanf:"shard_count"`

	// ThinkDelayMinMS and ThinkDelayMaxMS bound the opponent's simulated
	// thinking pause.
	ThinkDelayMinMS int `koanf:"think_delay_min_ms"`
	ThinkDelayMaxMS int `koanf:"think_delay_max_ms"`

	// NudgeProbability overrides the nudge fire probability; a negative
	// value keeps the built-in default.
	NudgeProbability float64 `koanf:"nudge_probability"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		QueueSize:        10_000,
		WorkerCount:      runtime.NumCPU() * 2,
		DedupeSize:       50_000,
		ShardCount:       8,
		ThinkDelayMinMS:  300,
		ThinkDelayMaxMS:  900,
		NudgeProbability: -1,
	}
}
