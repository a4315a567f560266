package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jara-app/jara/internal/api"
	"github.com/jara-app/jara/internal/config"
	"github.com/jara-app/jara/internal/convert"
	"github.com/jara-app/jara/internal/download"
	"github.com/jara-app/jara/internal/platform"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

var (
	flagConfig    string
	flagAddr      string
	flagDownloads string
	flagLogLevel  string
)

var rootCmd = &cobra.Command{
	Use:     "jara-server",
	Short:   "Media download and conversion server wrapping yt-dlp and ffmpeg",
	Version: version,
	RunE:    run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to YAML config file")
	rootCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides config)")
	rootCmd.Flags().StringVar(&flagDownloads, "downloads", "", "download directory (overrides config)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}
	if flagDownloads != "" {
		cfg.DownloadDir = flagDownloads
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	if err := platform.CreateDirectoryIfNotExists(cfg.DownloadDir); err != nil {
		return fmt.Errorf("failed to ensure download dir: %w", err)
	}

	launcher := platform.NewLauncher(cfg.YtdlpPath)
	downloadSvc := download.NewService(launcher, cfg.DownloadDir, cfg.MaxParallel, log)
	convertSvc := convert.NewService(cfg.FFmpegPath, cfg.FFprobePath, log)
	prober := platform.NewProber(cfg.YtdlpPath)
	playlists := platform.NewPlaylistService()

	server := api.NewServer(downloadSvc, prober, playlists, convertSvc, cfg.DownloadDir, log)

	log.Info().Str("addr", cfg.Addr).Str("downloads", cfg.DownloadDir).Msgf("jara-server v%s listening", version)
	return server.Router().Run(cfg.Addr)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
