package download

import (
	"github.com/jara-app/jara/internal/model"
	"github.com/jara-app/jara/internal/platform"
)

// Launcher spawns extraction subprocesses. Satisfied by platform.Launcher;
// tests substitute a fake emitting synthetic output.
type Launcher interface {
	Start(spec platform.DownloadSpec) (*platform.Process, error)
}

// Manager defines the session operations the API layer consumes.
type Manager interface {
	Start(url, formatID string, audioOnly bool) (string, error)
	Get(id string) (model.Session, bool)
	Cancel(id string) error
	Remove(id string)
	FilePath(id string) (string, error)
}
