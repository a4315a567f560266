package model

// SessionStatus represents the status of a download session or conversion task
type SessionStatus string

const (
	// StatusDownloading means the external process is running. Conversion
	// tasks reuse this value for their running state.
	StatusDownloading SessionStatus = "downloading"

	// StatusCompleted means the process exited with code zero
	StatusCompleted SessionStatus = "completed"

	// StatusError means the process exited non-zero or failed mid-run
	StatusError SessionStatus = "error"

	// StatusCancelled means the session was terminated on request
	StatusCancelled SessionStatus = "cancelled"
)

// String returns the string representation of SessionStatus
func (s SessionStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition can occur from this status
func (s SessionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusCancelled
}
