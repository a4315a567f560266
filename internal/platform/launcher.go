package platform

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"sync"
)

// Default yt-dlp invocation constants
const (
	DefaultYtdlpCommand = "yt-dlp"

	// OutputTemplate names downloads after the media title
	OutputTemplate = "%(title)s.%(ext)s"

	// Audio extraction settings used when only audio is requested
	AudioFormat  = "mp3"
	AudioQuality = "0"

	// Exit code reported when the process could not be waited on
	ExitCodeUnknown = -1
)

// Scanner buffer sizes; progress lines are short but JSON-ish noise can be long
const (
	scanInitialBuffer = 64 * 1024
	scanMaxBuffer     = 1024 * 1024
)

// DownloadSpec describes one requested download
type DownloadSpec struct {
	URL       string
	FormatID  string // specific stream selector, empty means tool default
	AudioOnly bool
	OutputDir string
}

// Process is a handle on a running extraction subprocess. Stdout and Stderr
// deliver output one line at a time and are closed on EOF; Exit delivers the
// exit code exactly once after both streams are drained.
type Process struct {
	Stdout <-chan string
	Stderr <-chan string
	Exit   <-chan int

	cmd *exec.Cmd
}

// Kill terminates the subprocess. The Exit channel still delivers afterward.
func (p *Process) Kill() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// Launcher starts extraction subprocesses for a configured binary path
type Launcher struct {
	binPath string
}

// NewLauncher creates a launcher for the given yt-dlp binary path
func NewLauncher(binPath string) *Launcher {
	if binPath == "" {
		binPath = DefaultYtdlpCommand
	}
	return &Launcher{binPath: binPath}
}

// BuildArgs builds the yt-dlp argument list for a download spec
func (l *Launcher) BuildArgs(spec DownloadSpec) []string {
	args := []string{
		"--newline",
		"--progress",
		"-o", filepath.Join(spec.OutputDir, OutputTemplate),
	}

	if spec.AudioOnly {
		args = append(args, "-x", "--audio-format", AudioFormat, "--audio-quality", AudioQuality)
	} else if spec.FormatID != "" {
		args = append(args, "-f", spec.FormatID)
	}

	return append(args, spec.URL)
}

// Start spawns the subprocess and returns a handle streaming its output. A
// returned error means the process never started (missing binary, permission
// denied); a started process that later fails reports through Exit instead.
func (l *Launcher) Start(spec DownloadSpec) (*Process, error) {
	cmd := exec.Command(l.binPath, l.BuildArgs(spec)...)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to spawn %s: %w", l.binPath, err)
	}

	stdout := make(chan string)
	stderr := make(chan string)
	exit := make(chan int, 1)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer close(stdout)
		scanLines(stdoutPipe, stdout)
	}()
	go func() {
		defer wg.Done()
		defer close(stderr)
		scanLines(stderrPipe, stderr)
	}()

	go func() {
		// Streams must drain before Wait closes the pipes
		wg.Wait()
		if err := cmd.Wait(); err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				exit <- exitErr.ExitCode()
			} else {
				exit <- ExitCodeUnknown
			}
			return
		}
		exit <- 0
	}()

	return &Process{Stdout: stdout, Stderr: stderr, Exit: exit, cmd: cmd}, nil
}

// scanLines pumps reader lines into out until EOF
func scanLines(r io.Reader, out chan<- string) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scanInitialBuffer), scanMaxBuffer)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}
