package download

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jara-app/jara/internal/model"
	"github.com/jara-app/jara/internal/platform"
)

// Session id prefix and limits
const (
	SessionIDPrefix = "dl-"

	// MinParallel is the floor applied to a nonsensical parallel limit
	MinParallel = 1
)

// Service errors
var (
	// ErrFileNotFound means the session completed but the output file could
	// not be located on disk
	ErrFileNotFound = errors.New("file not found on disk")

	// ErrTooManyDownloads means the parallel download limit is reached
	ErrTooManyDownloads = errors.New("too many active downloads")
)

// Service is the session lifecycle controller. It owns the registry: no other
// component mutates session state directly.
type Service struct {
	registry    *Registry
	launcher    Launcher
	downloadDir string
	maxParallel int
	log         zerolog.Logger
	onUpdate    func(model.Session) // callback for push-style status updates
}

// NewService creates a download service writing into downloadDir, running at
// most maxParallel downloads at once
func NewService(launcher Launcher, downloadDir string, maxParallel int, log zerolog.Logger) *Service {
	if maxParallel < MinParallel {
		maxParallel = MinParallel
	}
	return &Service{
		registry:    NewRegistry(log),
		launcher:    launcher,
		downloadDir: downloadDir,
		maxParallel: maxParallel,
		log:         log,
	}
}

// SetUpdateCallback sets the callback invoked after each session mutation
func (s *Service) SetUpdateCallback(callback func(model.Session)) {
	s.onUpdate = callback
}

// Start spawns a download and begins tracking it, returning the session id
// immediately. A spawn failure is returned to the caller and no session is
// retained. ErrTooManyDownloads is returned when maxParallel sessions are
// already running.
func (s *Service) Start(url, formatID string, audioOnly bool) (string, error) {
	if s.registry.ActiveCount() >= s.maxParallel {
		return "", ErrTooManyDownloads
	}

	id := generateSessionID()

	proc, err := s.launcher.Start(platform.DownloadSpec{
		URL:       url,
		FormatID:  formatID,
		AudioOnly: audioOnly,
		OutputDir: s.downloadDir,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start download: %w", err)
	}

	if err := s.registry.Create(id, url, proc); err != nil {
		// Generated ids do not collide; treat as fatal for this request
		proc.Kill()
		return "", err
	}

	s.log.Info().Str("session_id", id).Str("url", url).Msg("download started")
	go s.run(id, proc)

	return id, nil
}

// Get returns a point-in-time snapshot of a session
func (s *Service) Get(id string) (model.Session, bool) {
	return s.registry.Get(id)
}

// Cancel terminates a downloading session. Cancelling a terminal session is a
// no-op; only an unknown id is an error.
func (s *Service) Cancel(id string) error {
	proc, changed := s.registry.SetStatus(id, model.StatusCancelled, "")
	if !changed {
		if _, exists := s.registry.Get(id); !exists {
			return ErrUnknownSession
		}
		return nil
	}

	if proc != nil {
		if err := proc.Kill(); err != nil {
			s.log.Warn().Str("session_id", id).Err(err).Msg("failed to kill process")
		}
	}

	s.log.Info().Str("session_id", id).Msg("download cancelled")
	s.notify(id)
	return nil
}

// Remove deletes a session from the registry. Sessions are never evicted
// automatically, so callers must remove what they started.
func (s *Service) Remove(id string) {
	s.registry.Remove(id)
}

// FilePath returns the on-disk path of a completed session's output file.
// A completed session whose file cannot be located reports ErrFileNotFound;
// completion reflects the subprocess verdict, not file discoverability.
func (s *Service) FilePath(id string) (string, error) {
	sess, exists := s.registry.Get(id)
	if !exists {
		return "", ErrUnknownSession
	}
	if sess.Status != model.StatusCompleted || sess.Filename == "" {
		return "", ErrFileNotFound
	}

	path := filepath.Join(s.downloadDir, sess.Filename)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	// Reconciliation can miss a file that appears late; retry the
	// format-code strip once at retrieval time
	if stripped := platform.StripFormatCode(sess.Filename); stripped != sess.Filename {
		path = filepath.Join(s.downloadDir, stripped)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", ErrFileNotFound
}

// run pumps subprocess output into the registry until exit, then finalizes
// the session status
func (s *Service) run(id string, proc *platform.Process) {
	stderrDone := make(chan string, 1)
	go func() {
		stderrDone <- s.collectStderr(id, proc.Stderr)
	}()

	for line := range proc.Stdout {
		s.log.Debug().Str("session_id", id).Str("line", line).Msg("yt-dlp")
		if ev := platform.ParseLine(line); ev != nil {
			s.registry.ApplyEvent(id, ev)
			s.notify(id)
		}
	}

	errMsg := <-stderrDone
	code := <-proc.Exit

	if code == 0 {
		s.reconcile(id)
		if _, changed := s.registry.SetStatus(id, model.StatusCompleted, ""); changed {
			s.log.Info().Str("session_id", id).Msg("download completed")
		}
	} else {
		if errMsg == "" {
			errMsg = fmt.Sprintf("yt-dlp exited with code %d", code)
		}
		if _, changed := s.registry.SetStatus(id, model.StatusError, errMsg); changed {
			s.log.Warn().Str("session_id", id).Int("code", code).Str("error", errMsg).Msg("download failed")
		}
	}
	s.notify(id)
}

// reconcile replaces the parsed filename guess with what actually exists on
// disk, when a better candidate is found
func (s *Service) reconcile(id string) {
	sess, exists := s.registry.Get(id)
	if !exists || sess.Status != model.StatusDownloading || sess.Filename == "" {
		return
	}

	resolved, found := platform.ResolveDownloadedFile(s.downloadDir, sess.Filename)
	if found && resolved != sess.Filename {
		s.log.Debug().Str("session_id", id).Str("guess", sess.Filename).Str("resolved", resolved).Msg("filename reconciled")
		s.registry.SetFilename(id, resolved)
	}
}

// collectStderr drains the stderr stream, keeping ERROR lines for the final
// error message and falling back to the last non-empty line
func (s *Service) collectStderr(id string, lines <-chan string) string {
	var errLines []string
	var last string

	for line := range lines {
		s.log.Debug().Str("session_id", id).Str("line", line).Msg("yt-dlp stderr")
		if strings.Contains(line, "ERROR") {
			errLines = append(errLines, strings.TrimSpace(line))
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			last = trimmed
		}
	}

	if len(errLines) > 0 {
		return strings.Join(errLines, "\n")
	}
	return last
}

// notify calls the update callback with a fresh snapshot if set
func (s *Service) notify(id string) {
	if s.onUpdate == nil {
		return
	}
	if sess, exists := s.registry.Get(id); exists {
		s.onUpdate(sess)
	}
}

// generateSessionID generates a unique session id
func generateSessionID() string {
	return SessionIDPrefix + uuid.NewString()
}
