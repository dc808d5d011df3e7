// Package config provides the configuration structure for the neo-tts service.
package config

import (
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Defaults applied when the TOML omits a value.
const (
	DefaultHTTPPort          = 5000
	DefaultKokoroServiceURL  = "http://localhost:8880"
	DefaultKokoroTimeoutSecs = 300
	DefaultOutputDir         = "static/output"
	DefaultLogsDir           = "logs"
	DefaultUploadDir         = "uploads"
	DefaultJobModel          = "kokoro"
)

// HTTPConfig holds the listen address for the web API.
type HTTPConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// PathsConfig holds the storage directories created at process start.
type PathsConfig struct {
	OutputDir string `toml:"output_dir"`
	LogsDir   string `toml:"logs_dir"`
	UploadDir string `toml:"upload_dir"`
}

// KokoroConfig holds the connection settings for the Kokoro synthesis service.
type KokoroConfig struct {
	ServiceURL     string `toml:"service_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// NATSConfig holds the configuration for the optional NATS job worker. An
// empty URL disables the worker.
type NATSConfig struct {
	URL                      string `toml:"url"`
	TextProcessedSubject     string `toml:"text_processed_subject"`
	AudioObjectStoreBucket   string `toml:"audio_object_store_bucket"`
	JobModel                 string `toml:"job_model"`
	AudioChunkCreatedSubject string `toml:"audio_chunk_created_subject"`
}

// Config is the root configuration structure.
type Config struct {
	HTTP   HTTPConfig   `toml:"http"`
	Paths  PathsConfig  `toml:"paths"`
	Kokoro KokoroConfig `toml:"kokoro"`
	NATS   NATSConfig   `toml:"nats"`
}

// Load loads the configuration for the service and applies defaults for
// omitted values.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults fills in zero-valued fields with the built-in defaults.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = DefaultHTTPPort
	}

	if c.Kokoro.ServiceURL == "" {
		c.Kokoro.ServiceURL = DefaultKokoroServiceURL
	}

	if c.Kokoro.TimeoutSeconds == 0 {
		c.Kokoro.TimeoutSeconds = DefaultKokoroTimeoutSecs
	}

	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = DefaultOutputDir
	}

	if c.Paths.LogsDir == "" {
		c.Paths.LogsDir = DefaultLogsDir
	}

	if c.Paths.UploadDir == "" {
		c.Paths.UploadDir = DefaultUploadDir
	}

	if c.NATS.JobModel == "" {
		c.NATS.JobModel = DefaultJobModel
	}
}

// ListenAddr renders the HTTP listen address.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}
