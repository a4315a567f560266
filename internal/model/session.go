package model

import "time"

// Session represents one tracked invocation of the extraction tool, from the
// start request to a terminal status.
type Session struct {
	ID           string        `json:"download_id"`
	URL          string        `json:"url"`
	Status       SessionStatus `json:"status"`
	Progress     float64       `json:"progress"` // 0 to 100
	Filename     string        `json:"filename"` // best-known output name, basename only
	ErrorMessage string        `json:"error,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at,omitzero"`
}

// ConversionTask represents a single ffmpeg conversion task
type ConversionTask struct {
	ID         string        `json:"task_id"`
	InputPath  string        `json:"input_path"`
	OutputPath string        `json:"output_path"`
	Status     SessionStatus `json:"status"`
	Progress   float64       `json:"progress"` // 0 to 100
	LastError  string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at,omitzero"`
}
