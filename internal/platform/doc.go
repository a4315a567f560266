package platform

// Package platform contains external tooling glue: spawning and streaming the
// yt-dlp process, parsing its textual progress output, probing media metadata,
// and filesystem helpers for locating downloaded files.
