package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jara-app/jara/internal/platform"
)

// Default values
const (
	DefaultAddr        = ":3001"
	DefaultYtdlpPath   = "yt-dlp"
	DefaultFFmpegPath  = "ffmpeg"
	DefaultFFprobePath = "ffprobe"
	DefaultLogLevel    = "info"
	DefaultMaxParallel = 2

	FallbackDownloadDir = "/tmp/downloads"
)

// Bounds for parallel downloads
const (
	MinParallelDownloads = 1
	MaxParallelDownloads = 10
)

// Config holds server configuration, loaded from a YAML file with defaults
// applied for every omitted field
type Config struct {
	Addr        string `yaml:"addr"`
	DownloadDir string `yaml:"download_dir"`
	YtdlpPath   string `yaml:"ytdlp_path"`
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	LogLevel    string `yaml:"log_level"`
	MaxParallel int    `yaml:"max_parallel_downloads"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file. An empty path yields defaults;
// a missing or malformed file is an error.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills every empty field
func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.DownloadDir == "" {
		dir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			dir = FallbackDownloadDir
		}
		c.DownloadDir = dir
	}
	if c.YtdlpPath == "" {
		c.YtdlpPath = DefaultYtdlpPath
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = DefaultFFmpegPath
	}
	if c.FFprobePath == "" {
		c.FFprobePath = DefaultFFprobePath
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.MaxParallel == 0 {
		c.MaxParallel = DefaultMaxParallel
	}
	if c.MaxParallel < MinParallelDownloads {
		c.MaxParallel = MinParallelDownloads
	}
	if c.MaxParallel > MaxParallelDownloads {
		c.MaxParallel = MaxParallelDownloads
	}
}
