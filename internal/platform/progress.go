package platform

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// yt-dlp --newline output examples:
//   [download]  45.2% of ~  85.49MiB at    2.48MiB/s ETA 00:27
//   [download] Destination: Video Title [id].webm
//   [ExtractAudio] Destination: Video Title [id].mp3
//   [download] Video Title [id].mp4 has already been downloaded
//   [Merger] Merging formats into "Video Title [id].mkv"
//   [FixupM4a] Destination: Video Title [id].m4a
var (
	reProgress    = regexp.MustCompile(`\[download\]\s+(\d+\.?\d*)%`)
	reDestination = regexp.MustCompile(`\[download\] Destination: (.+)`)
	reExtractDest = regexp.MustCompile(`\[ExtractAudio\] Destination: (.+)`)
	reAlreadyDone = regexp.MustCompile(`\[download\] (.+) has already been downloaded`)
	reMergeOutput = regexp.MustCompile(`\[Merger\] Merging formats into "(.+)"`)

	// Catch-all for post-processor destinations with a known media extension
	reMediaDest = regexp.MustCompile(`(?i)Destination: (.+\.(?:mp4|mkv|webm|mp3|m4a))`)
)

// Event is a structured fact extracted from a single line of subprocess
// output. Implementations are ProgressEvent and FilenameEvent.
type Event interface {
	isEvent()
}

// ProgressEvent reports a download percentage in [0, 100]
type ProgressEvent struct {
	Percent float64
}

// FilenameEvent reports a destination file name (basename only). Later events
// supersede earlier ones; ordering is the caller's concern.
type FilenameEvent struct {
	Name string
}

func (ProgressEvent) isEvent() {}
func (FilenameEvent) isEvent() {}

// ParseLine extracts a structured event from one line of yt-dlp output.
// Unrecognized lines return nil; the function never fails. Matching is
// line-local, no state is kept between calls.
func ParseLine(line string) Event {
	if m := reProgress.FindStringSubmatch(line); m != nil {
		percent, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return ProgressEvent{Percent: percent}
		}
	}

	if m := reDestination.FindStringSubmatch(line); m != nil {
		return filenameEvent(m[1])
	}
	if m := reExtractDest.FindStringSubmatch(line); m != nil {
		return filenameEvent(m[1])
	}
	if m := reAlreadyDone.FindStringSubmatch(line); m != nil {
		return filenameEvent(m[1])
	}
	if m := reMergeOutput.FindStringSubmatch(line); m != nil {
		return filenameEvent(m[1])
	}
	if m := reMediaDest.FindStringSubmatch(line); m != nil {
		return filenameEvent(m[1])
	}

	return nil
}

// filenameEvent reduces a captured path to its basename
func filenameEvent(path string) FilenameEvent {
	return FilenameEvent{Name: filepath.Base(strings.TrimSpace(path))}
}
