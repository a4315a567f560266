package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/jara-app/jara/internal/model"
)

// Probe timeout default
const (
	DefaultProbeTimeout = 60 * time.Second
)

// Prober fetches media metadata by asking the extraction tool for a JSON dump
type Prober struct {
	binPath string
	timeout time.Duration
}

// NewProber creates a prober for the given yt-dlp binary path
func NewProber(binPath string) *Prober {
	if binPath == "" {
		binPath = DefaultYtdlpCommand
	}
	return &Prober{
		binPath: binPath,
		timeout: DefaultProbeTimeout,
	}
}

// SetTimeout sets the timeout for probe operations
func (p *Prober) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// VideoInfo probes a single URL and returns its metadata and format list
func (p *Prober) VideoInfo(ctx context.Context, url string) (*model.VideoInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binPath,
		"--dump-json",
		"--no-playlist",
		"--no-warnings",
		url,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("probe failed: %s", msg)
		}
		return nil, fmt.Errorf("probe failed: %w", err)
	}

	var info model.VideoInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("failed to parse video info: %w", err)
	}
	return &info, nil
}
