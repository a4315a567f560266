package api

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jara-app/jara/internal/convert"
	"github.com/jara-app/jara/internal/download"
	"github.com/jara-app/jara/internal/platform"
)

// Server wires the services into HTTP routes
type Server struct {
	downloads   download.Manager
	prober      *platform.Prober
	playlists   *platform.PlaylistService
	converter   *convert.Service
	downloadDir string
	log         zerolog.Logger
}

// NewServer creates the API server
func NewServer(downloads download.Manager, prober *platform.Prober, playlists *platform.PlaylistService, converter *convert.Service, downloadDir string, log zerolog.Logger) *Server {
	return &Server{
		downloads:   downloads,
		prober:      prober,
		playlists:   playlists,
		converter:   converter,
		downloadDir: downloadDir,
		log:         log,
	}
}

// Router builds the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/download", s.startDownload)
		apiGroup.GET("/download/:id/progress", s.downloadProgress)
		apiGroup.DELETE("/download/:id", s.cancelDownload)
		apiGroup.POST("/download/:id/remove", s.removeDownload)
		apiGroup.GET("/download/:id/file", s.downloadFile)

		apiGroup.POST("/video-info", s.videoInfo)
		apiGroup.POST("/playlist-info", s.playlistInfo)
		apiGroup.GET("/files", s.listFiles)

		apiGroup.POST("/convert", s.startConversion)
		apiGroup.GET("/convert/:id/progress", s.conversionProgress)
		apiGroup.DELETE("/convert/:id", s.cancelConversion)
	}

	return r
}

type downloadRequest struct {
	URL       string `json:"url"`
	FormatID  string `json:"format_id"`
	AudioOnly bool   `json:"audio_only"`
}

type urlRequest struct {
	URL string `json:"url"`
}

type convertRequest struct {
	Filename string `json:"filename"`
	Target   string `json:"target"`
}

// startDownload begins a download session and returns its id
func (s *Server) startDownload(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	id, err := s.downloads.Start(req.URL, req.FormatID, req.AudioOnly)
	if err != nil {
		if errors.Is(err, download.ErrTooManyDownloads) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
			return
		}
		s.log.Error().Err(err).Str("url", req.URL).Msg("failed to start download")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"download_id": id})
}

// downloadProgress returns a snapshot of the session state
func (s *Server) downloadProgress(c *gin.Context) {
	sess, exists := s.downloads.Get(c.Param("id"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Download not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   sess.Status,
		"progress": sess.Progress,
		"filename": sess.Filename,
		"error":    sess.ErrorMessage,
	})
}

// cancelDownload requests termination; cancelling a finished session succeeds
func (s *Server) cancelDownload(c *gin.Context) {
	if err := s.downloads.Cancel(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Download not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// removeDownload drops the session record; sessions are never evicted on
// their own
func (s *Server) removeDownload(c *gin.Context) {
	s.downloads.Remove(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// downloadFile streams the completed session's output file
func (s *Server) downloadFile(c *gin.Context) {
	path, err := s.downloads.FilePath(c.Param("id"))
	if err != nil {
		if errors.Is(err, download.ErrUnknownSession) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Download not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found on disk"})
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}

// videoInfo probes a URL for metadata and available formats
func (s *Server) videoInfo(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	info, err := s.prober.VideoInfo(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// playlistInfo enumerates a playlist URL
func (s *Server) playlistInfo(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	info, err := s.playlists.PlaylistInfo(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// listFiles enumerates the download directory
func (s *Server) listFiles(c *gin.Context) {
	files, err := platform.ListFiles(s.downloadDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, files)
}

// startConversion begins converting a downloaded file
func (s *Server) startConversion(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Filename == "" || req.Target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename and target are required"})
		return
	}

	// The input must live in the download directory
	inputPath := filepath.Join(s.downloadDir, filepath.Base(req.Filename))
	task, err := s.converter.Start(inputPath, req.Target)
	if err != nil {
		if errors.Is(err, convert.ErrUnsupportedType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"task_id": task.ID})
}

// conversionProgress returns a snapshot of a conversion task
func (s *Server) conversionProgress(c *gin.Context) {
	task, exists := s.converter.Get(c.Param("id"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversion not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   task.Status,
		"progress": task.Progress,
		"output":   filepath.Base(task.OutputPath),
		"error":    task.LastError,
	})
}

// cancelConversion requests termination of a conversion task
func (s *Server) cancelConversion(c *gin.Context) {
	if err := s.converter.Cancel(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversion not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
