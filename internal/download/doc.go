package download

// Package download implements the download-session core: an explicit session
// registry and a lifecycle controller that spawns the extraction subprocess,
// folds its parsed output into session state, reconciles the output filename
// on exit, and handles cancellation.
