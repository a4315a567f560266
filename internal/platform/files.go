package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jara-app/jara/internal/model"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// formatCodeInfix matches the format-code infix yt-dlp inserts into
// per-stream files, e.g. "video.f251.webm"
var formatCodeInfix = regexp.MustCompile(`\.f\d+\.`)

// ResolveDownloadedFile locates the actual output file for a name captured
// from subprocess output. It tries, in order: the name as-is, the name with
// its first format-code infix stripped, and any directory entry sharing the
// name's prefix up to the first dot. On a miss the original name is returned
// with found=false; the caller decides what a miss means.
//
// The prefix scan takes the first matching entry in directory-listing order,
// which is filesystem dependent. With multiple matches the pick is not
// deterministic.
func ResolveDownloadedFile(dir, name string) (resolved string, found bool) {
	if name == "" {
		return name, false
	}

	if fileExists(filepath.Join(dir, name)) {
		return name, true
	}

	if stripped := StripFormatCode(name); stripped != name && fileExists(filepath.Join(dir, stripped)) {
		return stripped, true
	}

	prefix := name
	if idx := strings.IndexByte(name, '.'); idx > 0 {
		prefix = name[:idx]
	}
	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
				return entry.Name(), true
			}
		}
	}

	return name, false
}

// StripFormatCode removes the first format-code infix from a file name,
// turning "video.f251.webm" into "video.webm". Names without an infix are
// returned unchanged.
func StripFormatCode(name string) string {
	loc := formatCodeInfix.FindStringIndex(name)
	if loc == nil {
		return name
	}
	return name[:loc[0]] + "." + name[loc[1]:]
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, "Downloads"), nil
}

// ListFiles enumerates regular files in the download directory
func ListFiles(dir string) ([]model.FileEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	files := make([]model.FileEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, model.FileEntry{
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// fileExists reports whether path exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
