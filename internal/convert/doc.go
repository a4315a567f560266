package convert

// Package convert runs ffmpeg re-encodes of downloaded files as tracked
// tasks: ffprobe supplies the duration, ffmpeg progress output is folded into
// a percentage, and tasks can be cancelled mid-run.
