package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/jara-app/jara/internal/model"
)

// URL parameters and separators
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// URL templates
const (
	WatchURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Default values
const (
	DefaultPlaylistTitle = "Playlist"
	DefaultEntryTitle    = "Untitled"
)

// PlaylistService enumerates playlists using the ytdlp library
type PlaylistService struct {
	timeout time.Duration
}

// NewPlaylistService creates a new playlist service
func NewPlaylistService() *PlaylistService {
	return &PlaylistService{
		timeout: DefaultProbeTimeout,
	}
}

// SetTimeout sets the timeout for enumeration
func (p *PlaylistService) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// PlaylistInfo enumerates a playlist URL into entries with watch URLs
func (p *PlaylistService) PlaylistInfo(ctx context.Context, url string) (*model.PlaylistInfo, error) {
	playlistID := extractPlaylistID(url)
	if playlistID == "" {
		return nil, fmt.Errorf("invalid playlist URL: %s", url)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	entries := make([]model.PlaylistEntry, 0, len(items))
	for _, it := range items {
		title := it.Title
		if title == "" {
			title = DefaultEntryTitle
		}
		entries = append(entries, model.PlaylistEntry{
			ID:    it.VideoID,
			Title: title,
			URL:   fmt.Sprintf(WatchURLTemplate, it.VideoID),
		})
	}

	return &model.PlaylistInfo{
		ID:         playlistID,
		Title:      playlistTitle(entries),
		Entries:    entries,
		EntryCount: len(entries),
	}, nil
}

// extractPlaylistID extracts the playlist ID from various URL formats
func extractPlaylistID(url string) string {
	if !strings.Contains(url, PlaylistParam) {
		return ""
	}
	parts := strings.SplitN(url, PlaylistParam, 2)
	id := parts[1]
	if sep := strings.Index(id, ParamSeparator); sep >= 0 {
		id = id[:sep]
	}
	return id
}

// playlistTitle derives a display title from the first entry
func playlistTitle(entries []model.PlaylistEntry) string {
	if len(entries) == 0 {
		return DefaultPlaylistTitle
	}
	return entries[0].Title + " " + DefaultPlaylistTitle
}
