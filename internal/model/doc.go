package model

// Package model defines domain data structures shared across the server:
// download sessions, conversion tasks, probed media metadata, and status
// enums. Structures carry JSON tags for direct use in API responses.
