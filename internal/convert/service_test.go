package convert

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jara-app/jara/internal/model"
)

func newTestService() *Service {
	return NewService("", "", zerolog.Nop())
}

func TestOutputPathFor(t *testing.T) {
	tests := []struct {
		input    string
		target   string
		expected string
	}{
		{"/path/to/video.webm", "mp4", "/path/to/video.mp4"},
		{"/path/to/video.mp4", "mp4", "/path/to/video-converted.mp4"},
		{"/path/to/audio.m4a", "mp3", "/path/to/audio.mp3"},
		{"noext", "mp4", "noext.mp4"},
	}

	for _, test := range tests {
		result := outputPathFor(test.input, test.target)
		if result != test.expected {
			t.Errorf("outputPathFor(%s, %s) = %s, expected %s", test.input, test.target, result, test.expected)
		}
	}
}

func TestBuildArgs_MP4(t *testing.T) {
	args, output, err := buildArgs("/in/video.webm", "mp4")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if output != "/in/video.mp4" {
		t.Errorf("Expected output /in/video.mp4, got %s", output)
	}

	joined := strings.Join(args, " ")
	for _, want := range []string{"-c:v " + VideoCodecMP4, "-crf " + VideoCRFMP4, "-movflags " + FastStartFlag, "-progress pipe:2"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected args to contain %q, got: %v", want, args)
		}
	}
	if args[len(args)-1] != output {
		t.Errorf("Expected output path last, got: %v", args)
	}
}

func TestBuildArgs_AudioTargetsDropVideo(t *testing.T) {
	for _, target := range []string{"mp3", "m4a"} {
		args, _, err := buildArgs("/in/video.mp4", target)
		if err != nil {
			t.Fatalf("Expected no error for %s, got %v", target, err)
		}
		joined := strings.Join(args, " ")
		if !strings.Contains(joined, "-vn") {
			t.Errorf("Expected -vn for audio target %s, got: %v", target, args)
		}
	}
}

func TestBuildArgs_Unsupported(t *testing.T) {
	_, _, err := buildArgs("/in/video.mp4", "avi")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Expected ErrUnsupportedType, got %v", err)
	}
}

func TestStart_NonExistentFile(t *testing.T) {
	service := newTestService()

	_, err := service.Start("/path/to/nonexistent/file.mp4", "mp4")
	if err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected 'does not exist' error, got: %v", err)
	}
}

func TestStart_WithExistingFile(t *testing.T) {
	service := newTestService()

	inputPath := filepath.Join(t.TempDir(), "test_video.webm")
	if err := os.WriteFile(inputPath, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	task, err := service.Start(inputPath, "mp4")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if task.InputPath != inputPath {
		t.Errorf("Expected InputPath %s, got %s", inputPath, task.InputPath)
	}
	if task.OutputPath != outputPathFor(inputPath, "mp4") {
		t.Errorf("Unexpected OutputPath %s", task.OutputPath)
	}
	if !strings.HasPrefix(task.ID, TaskIDPrefix) {
		t.Errorf("Expected ID prefix %q, got: %s", TaskIDPrefix, task.ID)
	}

	retrieved, exists := service.Get(task.ID)
	if !exists {
		t.Fatal("Task should exist in service")
	}
	if retrieved.ID != task.ID {
		t.Errorf("Retrieved task ID should be %s, got %s", task.ID, retrieved.ID)
	}
}

func TestStart_DuplicateInput(t *testing.T) {
	service := newTestService()

	inputPath := filepath.Join(t.TempDir(), "test_video.webm")
	if err := os.WriteFile(inputPath, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	service.tasks["id-1"] = &taskEntry{
		task:   model.ConversionTask{ID: "id-1", InputPath: inputPath, Status: model.StatusDownloading},
		cancel: func() {},
	}

	_, err := service.Start(inputPath, "mp4")
	if !errors.Is(err, ErrAlreadyConverting) {
		t.Errorf("Expected ErrAlreadyConverting, got %v", err)
	}
}

func TestCancel_UnknownTask(t *testing.T) {
	service := newTestService()

	if err := service.Cancel("missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}

func TestFinish_TerminalIsImmutable(t *testing.T) {
	service := newTestService()
	service.tasks["id-1"] = &taskEntry{
		task:   model.ConversionTask{ID: "id-1", Status: model.StatusDownloading},
		cancel: func() {},
	}

	service.finish("id-1", model.StatusCancelled, "")
	service.finish("id-1", model.StatusCompleted, "")

	task, _ := service.Get("id-1")
	if task.Status != model.StatusCancelled {
		t.Errorf("Expected status to stay cancelled, got %s", task.Status)
	}
}

func TestCancel_TerminalTaskIsNoOp(t *testing.T) {
	service := newTestService()
	service.tasks["id-1"] = &taskEntry{
		task:   model.ConversionTask{ID: "id-1", Status: model.StatusCompleted},
		cancel: func() { t.Error("cancel must not be invoked for a terminal task") },
	}

	if err := service.Cancel("id-1"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestUpdateCallback(t *testing.T) {
	service := newTestService()

	var updated model.ConversionTask
	service.SetUpdateCallback(func(task model.ConversionTask) {
		updated = task
	})

	service.tasks["id-1"] = &taskEntry{
		task:   model.ConversionTask{ID: "id-1", Status: model.StatusDownloading},
		cancel: func() {},
	}
	service.setProgress("id-1", 50)

	if updated.ID != "id-1" {
		t.Error("Expected update callback to receive the task")
	}
	if updated.Progress != 50 {
		t.Errorf("Expected progress 50, got %v", updated.Progress)
	}
}
