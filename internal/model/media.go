package model

// VideoInfo is the probed metadata for a single media URL. Field names follow
// the extraction tool's JSON dump so the document decodes directly.
type VideoInfo struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Thumbnail      string        `json:"thumbnail,omitempty"`
	Duration       float64       `json:"duration,omitempty"`
	DurationString string        `json:"duration_string,omitempty"`
	Uploader       string        `json:"uploader,omitempty"`
	ViewCount      int64         `json:"view_count,omitempty"`
	Formats        []VideoFormat `json:"formats"`
}

// VideoFormat describes one downloadable stream of a video
type VideoFormat struct {
	FormatID       string  `json:"format_id"`
	FormatNote     string  `json:"format_note,omitempty"`
	Ext            string  `json:"ext"`
	Resolution     string  `json:"resolution,omitempty"`
	Filesize       int64   `json:"filesize,omitempty"`
	FilesizeApprox int64   `json:"filesize_approx,omitempty"`
	VCodec         string  `json:"vcodec,omitempty"`
	ACodec         string  `json:"acodec,omitempty"`
	Quality        float64 `json:"quality,omitempty"`
	FPS            float64 `json:"fps,omitempty"`
	TBR            float64 `json:"tbr,omitempty"`
}

// PlaylistInfo describes an enumerated playlist
type PlaylistInfo struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Uploader   string          `json:"uploader,omitempty"`
	Entries    []PlaylistEntry `json:"entries"`
	EntryCount int             `json:"entry_count"`
}

// PlaylistEntry is a single video within a playlist
type PlaylistEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// FileEntry describes one file in the download directory
type FileEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}
