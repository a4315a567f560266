package platform

import "testing"

func TestParseLine_Progress(t *testing.T) {
	tests := []struct {
		line     string
		expected float64
	}{
		{"[download]   3.4% of   64.00MiB at    1.23MiB/s ETA 00:50", 3.4},
		{"[download]  45.2% of ~  85.49MiB at    2.48MiB/s ETA 00:27 (frag 4/17)", 45.2},
		{"[download] 100% of   64.00MiB in 00:01", 100},
		{"[download] 0.0% of 10.00MiB at Unknown speed ETA Unknown", 0},
	}

	for _, test := range tests {
		ev := ParseLine(test.line)
		progress, ok := ev.(ProgressEvent)
		if !ok {
			t.Fatalf("ParseLine(%q) = %#v, expected ProgressEvent", test.line, ev)
		}
		if progress.Percent != test.expected {
			t.Errorf("ParseLine(%q).Percent = %v, expected %v", test.line, progress.Percent, test.expected)
		}
	}
}

func TestParseLine_Filenames(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected string
	}{
		{"plain destination", "[download] Destination: Video Title [abc123].webm", "Video Title [abc123].webm"},
		{"destination with path", "[download] Destination: downloads/clip.webm", "clip.webm"},
		{"audio extraction", "[ExtractAudio] Destination: clip.mp3", "clip.mp3"},
		{"already downloaded", "[download] clip.mp4 has already been downloaded", "clip.mp4"},
		{"merge output", `[Merger] Merging formats into "Video Title [abc123].mkv"`, "Video Title [abc123].mkv"},
		{"postprocessor destination", "[FixupM4a] Destination: clip.m4a", "clip.m4a"},
		{"case insensitive generic", "destination: clip.MP4", "clip.MP4"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ev := ParseLine(test.line)
			filename, ok := ev.(FilenameEvent)
			if !ok {
				t.Fatalf("ParseLine(%q) = %#v, expected FilenameEvent", test.line, ev)
			}
			if filename.Name != test.expected {
				t.Errorf("ParseLine(%q).Name = %q, expected %q", test.line, filename.Name, test.expected)
			}
		})
	}
}

func TestParseLine_NoiseReturnsNil(t *testing.T) {
	lines := []string{
		"",
		"[youtube] Extracting URL: https://www.youtube.com/watch?v=abc123",
		"[info] abc123: Downloading 1 format(s): 248+251",
		"WARNING: unable to obtain file audio codec with ffprobe",
		"random text with no markers",
		"Destination: notes.txt", // unknown extension
		"[download] resuming",
	}

	for _, line := range lines {
		if ev := ParseLine(line); ev != nil {
			t.Errorf("ParseLine(%q) = %#v, expected nil", line, ev)
		}
	}
}
