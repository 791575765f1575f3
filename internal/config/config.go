// Package config loads engine configuration from layered YAML files with
// environment variable overrides. config/config.yml holds the shared
// settings, config/config.local.yml the per-machine overrides, and
// environment variables win over both.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quiverhq/quiver/pkg/model"
)

// Defaults applied before any file or environment value.
const (
	DefaultAPIPort     = 8080
	DefaultLogLevel    = "info"
	DefaultNATSStream  = "EVENTS"
	DefaultNATSSubject = "events.>"
)

// Config holds all configuration for the trigger engine.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Log      LogConfig      `yaml:"log"`
	Engine   EngineConfig   `yaml:"engine"`
	NATS     NATSConfig     `yaml:"nats"`
	Redis    RedisConfig    `yaml:"redis"`
	Triggers TriggersConfig `yaml:"triggers"`
}

type APIConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type EngineConfig struct {
	// RateWindow is the fixed window for per-trigger fire counters.
	RateWindow model.Duration `yaml:"rate_window"`
	// BackoffBase is the base delay for exponential action retry backoff.
	BackoffBase model.Duration `yaml:"backoff_base"`
}

type NATSConfig struct {
	// URL of the NATS server. Empty disables the queue transport and the
	// event consumer.
	URL string `yaml:"url"`
	// Stream and Subject name the JetStream event source.
	Stream  string `yaml:"stream"`
	Subject string `yaml:"subject"`
	// Consume starts the JetStream event consumer alongside HTTP ingress.
	Consume bool `yaml:"consume"`
}

type RedisConfig struct {
	// Addr of the Redis server. Empty disables the pubsub transport.
	Addr string `yaml:"addr"`
}

type TriggersConfig struct {
	// File optionally seeds the registry from a JSON or YAML trigger file
	// at startup.
	File string `yaml:"file"`
}

// LoadConfig builds the effective configuration: defaults, then
// config/config.yml, then config/config.local.yml, then environment.
func LoadConfig() *Config {
	cfg := &Config{
		API: APIConfig{Port: DefaultAPIPort},
		Log: LogConfig{Level: DefaultLogLevel},
		Engine: EngineConfig{
			RateWindow:  model.Duration(model.DefaultRateWindow),
			BackoffBase: model.Duration(model.DefaultBackoffBase),
		},
		NATS: NATSConfig{
			Stream:  DefaultNATSStream,
			Subject: DefaultNATSSubject,
		},
	}

	loadFile("config/config.yml", cfg)
	loadFile("config/config.local.yml", cfg)
	applyEnv(cfg)

	return cfg
}

func loadFile(path string, cfg *Config) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	// Best effort: a malformed file leaves the current values in place.
	_ = yaml.Unmarshal(data, cfg)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("RATE_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Engine.RateWindow = model.Duration(d)
		}
	}
	if v := os.Getenv("BACKOFF_BASE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Engine.BackoffBase = model.Duration(d)
		}
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_STREAM"); v != "" {
		cfg.NATS.Stream = v
	}
	if v := os.Getenv("NATS_SUBJECT"); v != "" {
		cfg.NATS.Subject = v
	}
	if v := os.Getenv("NATS_CONSUME"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.NATS.Consume = b
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("TRIGGERS_FILE"); v != "" {
		cfg.Triggers.File = v
	}
}
