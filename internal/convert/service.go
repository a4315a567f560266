package convert

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jara-app/jara/internal/model"
)

// Executable and I/O constants
const (
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:2"
	ProgressTimePrefix  = "out_time_us="
	TaskIDPrefix        = "conv-"
)

// Encoding settings per target container
const (
	VideoCodecMP4  = "libx264"
	VideoPresetMP4 = "medium"
	VideoCRFMP4    = "23"
	AudioCodecMP4  = "aac"

	VideoCodecWebM = "libvpx-vp9"
	AudioCodecWebM = "libopus"

	AudioCodecMP3 = "libmp3lame"
	AudioBitrate  = "192k"
	AudioCodecM4A = "aac"

	ConvertedSuffix = "-converted"
	FastStartFlag   = "+faststart"
	MicrosPerSecond = 1000000.0
	FullPercent     = 100.0
)

// Service errors
var (
	ErrTaskNotFound      = errors.New("conversion task not found")
	ErrUnsupportedType   = errors.New("unsupported target format")
	ErrAlreadyConverting = errors.New("conversion already in progress for file")
)

// taskEntry pairs task state with the cancel handle of its running process
type taskEntry struct {
	task   model.ConversionTask
	cancel context.CancelFunc
}

// Service handles ffmpeg conversion tasks
type Service struct {
	mu          sync.RWMutex
	tasks       map[string]*taskEntry
	ffmpegPath  string
	ffprobePath string
	log         zerolog.Logger
	onUpdate    func(model.ConversionTask) // callback for push-style updates
}

// NewService creates a conversion service using the given binary paths
func NewService(ffmpegPath, ffprobePath string, log zerolog.Logger) *Service {
	if ffmpegPath == "" {
		ffmpegPath = FFmpegCommand
	}
	if ffprobePath == "" {
		ffprobePath = FFprobeCommand
	}
	return &Service{
		tasks:       make(map[string]*taskEntry),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		log:         log,
	}
}

// SetUpdateCallback sets the callback invoked after each task mutation
func (s *Service) SetUpdateCallback(callback func(model.ConversionTask)) {
	s.onUpdate = callback
}

// Start begins converting inputPath into the target container and returns the
// tracked task immediately
func (s *Service) Start(inputPath, target string) (model.ConversionTask, error) {
	args, outputPath, err := buildArgs(inputPath, target)
	if err != nil {
		return model.ConversionTask{}, err
	}

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return model.ConversionTask{}, fmt.Errorf("input file does not exist: %s", inputPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.tasks {
		if e.task.InputPath == inputPath && !e.task.Status.IsTerminal() {
			return model.ConversionTask{}, ErrAlreadyConverting
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	task := model.ConversionTask{
		ID:         TaskIDPrefix + uuid.NewString(),
		InputPath:  inputPath,
		OutputPath: outputPath,
		Status:     model.StatusDownloading,
		StartedAt:  time.Now(),
	}
	s.tasks[task.ID] = &taskEntry{task: task, cancel: cancel}

	go s.run(ctx, task.ID, args, outputPath)

	return task, nil
}

// Get returns a point-in-time copy of a task
func (s *Service) Get(id string) (model.ConversionTask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.tasks[id]
	if !exists {
		return model.ConversionTask{}, false
	}
	return e.task, true
}

// Cancel stops a running task; cancelling a terminal task is a no-op
func (s *Service) Cancel(id string) error {
	s.mu.RLock()
	e, exists := s.tasks[id]
	s.mu.RUnlock()

	if !exists {
		return ErrTaskNotFound
	}
	if e.task.Status.IsTerminal() {
		return nil
	}
	e.cancel()
	return nil
}

// Remove deletes a task record; removing an absent id is a no-op
func (s *Service) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
}

// run performs the actual conversion
func (s *Service) run(ctx context.Context, id string, args []string, outputPath string) {
	duration, err := s.probeDuration(s.inputPathOf(id))
	if err != nil {
		s.log.Warn().Str("task_id", id).Err(err).Msg("ffprobe failed")
		s.finish(id, model.StatusError, err.Error())
		return
	}

	cmd := exec.CommandContext(ctx, s.ffmpegPath, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.finish(id, model.StatusError, fmt.Sprintf("failed to create stderr pipe: %v", err))
		return
	}

	if err := cmd.Start(); err != nil {
		s.finish(id, model.StatusError, fmt.Sprintf("failed to start ffmpeg: %v", err))
		return
	}

	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		s.trackProgress(stderr, id, duration)
	}()

	<-progressDone
	err = cmd.Wait()

	switch {
	case ctx.Err() == context.Canceled:
		os.Remove(outputPath)
		s.finish(id, model.StatusCancelled, "")
		s.log.Info().Str("task_id", id).Msg("conversion cancelled")
	case err != nil:
		os.Remove(outputPath)
		s.finish(id, model.StatusError, err.Error())
		s.log.Warn().Str("task_id", id).Err(err).Msg("conversion failed")
	default:
		s.finish(id, model.StatusCompleted, "")
		s.log.Info().Str("task_id", id).Str("output", outputPath).Msg("conversion completed")
	}
}

// trackProgress parses ffmpeg -progress output into a task percentage
func (s *Service) trackProgress(stderr io.ReadCloser, id string, totalDuration float64) {
	defer stderr.Close()
	scanner := bufio.NewScanner(stderr)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, ProgressTimePrefix) {
			continue
		}

		micros, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
		if err != nil || totalDuration <= 0 {
			continue
		}

		percent := float64(micros) / MicrosPerSecond / totalDuration * FullPercent
		if percent > FullPercent {
			percent = FullPercent
		}
		s.setProgress(id, percent)
	}
}

// probeDuration gets the duration of a media file in seconds using ffprobe
func (s *Service) probeDuration(filePath string) (float64, error) {
	cmd := exec.Command(s.ffprobePath, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}

// inputPathOf returns the input path of a task, or empty when absent
func (s *Service) inputPathOf(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, exists := s.tasks[id]; exists {
		return e.task.InputPath
	}
	return ""
}

// setProgress updates the task percentage
func (s *Service) setProgress(id string, percent float64) {
	s.mu.Lock()
	e, exists := s.tasks[id]
	if exists && !e.task.Status.IsTerminal() {
		e.task.Progress = percent
	}
	var snapshot model.ConversionTask
	if exists {
		snapshot = e.task
	}
	s.mu.Unlock()

	if exists {
		s.notify(snapshot)
	}
}

// finish transitions a task to a terminal status; already-terminal tasks are
// left untouched
func (s *Service) finish(id string, status model.SessionStatus, errMsg string) {
	s.mu.Lock()
	e, exists := s.tasks[id]
	if !exists || e.task.Status.IsTerminal() {
		s.mu.Unlock()
		return
	}
	e.task.Status = status
	e.task.FinishedAt = time.Now()
	if status == model.StatusCompleted {
		e.task.Progress = FullPercent
	}
	if status == model.StatusError {
		e.task.LastError = errMsg
	}
	snapshot := e.task
	s.mu.Unlock()

	s.notify(snapshot)
}

// notify calls the update callback if set
func (s *Service) notify(task model.ConversionTask) {
	if s.onUpdate != nil {
		s.onUpdate(task)
	}
}

// buildArgs builds the ffmpeg argument list for the target container and
// returns the output path
func buildArgs(inputPath, target string) ([]string, string, error) {
	outputPath := outputPathFor(inputPath, target)

	args := []string{"-y", "-i", inputPath}
	switch target {
	case "mp4":
		args = append(args,
			"-c:v", VideoCodecMP4,
			"-preset", VideoPresetMP4,
			"-crf", VideoCRFMP4,
			"-c:a", AudioCodecMP4,
			"-movflags", FastStartFlag,
		)
	case "webm":
		args = append(args,
			"-c:v", VideoCodecWebM,
			"-c:a", AudioCodecWebM,
		)
	case "mp3":
		args = append(args, "-vn", "-c:a", AudioCodecMP3, "-b:a", AudioBitrate)
	case "m4a":
		args = append(args, "-vn", "-c:a", AudioCodecM4A, "-b:a", AudioBitrate)
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedType, target)
	}

	args = append(args, "-progress", ProgressPipeTarget, "-nostats", outputPath)
	return args, outputPath, nil
}

// outputPathFor derives the output path, avoiding a collision when the input
// already carries the target extension
func outputPathFor(inputPath, target string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(inputPath, ext)
	if strings.EqualFold(strings.TrimPrefix(ext, "."), target) {
		return base + ConvertedSuffix + "." + target
	}
	return base + "." + target
}
