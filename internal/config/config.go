package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Upload   UploadConfig   `yaml:"upload"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// UpstreamConfig points at the deployment that hosts the
// prediction and chatbot endpoints.
type UpstreamConfig struct {
	BaseURL        string `yaml:"baseUrl"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

type UploadConfig struct {
	MaxSize    int64  `yaml:"maxSize"`
	PreviewDir string `yaml:"previewDir"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Upstream: UpstreamConfig{BaseURL: "http://localhost:8000", TimeoutSeconds: 60},
		Upload:   UploadConfig{MaxSize: 10 * 1024 * 1024, PreviewDir: "./previews"},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads the yaml config at path, filling unset fields with defaults.
// A missing file is not an error: defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = def.Upstream.BaseURL
	}
	if cfg.Upstream.TimeoutSeconds == 0 {
		cfg.Upstream.TimeoutSeconds = def.Upstream.TimeoutSeconds
	}
	if cfg.Upload.MaxSize == 0 {
		cfg.Upload.MaxSize = def.Upload.MaxSize
	}
	if cfg.Upload.PreviewDir == "" {
		cfg.Upload.PreviewDir = def.Upload.PreviewDir
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}
