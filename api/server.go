// Package api exposes presets, setlists and playback control over HTTP.
package api

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/metronome/logger"
	"github.com/robmorgan/metronome/rhythm"
	"github.com/robmorgan/metronome/setlist"
	"github.com/robmorgan/metronome/utils"
	"github.com/sirupsen/logrus"
)

// Metronome is the playback control the API drives.
type Metronome interface {
	Start() error
	Stop() error
	Toggle() (bool, error)
	SetTempo(bpm float64) error
	Snapshot() rhythm.Snapshot
}

type Server struct {
	metronome Metronome
	library   *setlist.Library
	cursor    *setlist.Cursor
}

func NewServer(m Metronome, library *setlist.Library, cursor *setlist.Cursor) *Server {
	return &Server{metronome: m, library: library, cursor: cursor}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), corsMiddleware())

	r.GET("/health", healthCheck)

	api := r.Group("/api")
	{
		api.GET("/presets", s.listPresets)
		api.POST("/presets", s.savePreset)
		api.DELETE("/presets/:id", s.deletePreset)

		api.GET("/setlists", s.listSetlists)
		api.POST("/setlists", s.saveSetlist)
		api.DELETE("/setlists/:id", s.deleteSetlist)
		api.POST("/setlists/:id/play/:index", s.playPreset)
		api.POST("/setlists/:id/activate/:index", s.activatePreset)

		api.GET("/cursor", s.currentCursor)
		api.POST("/cursor/next", s.nextPreset)
		api.POST("/cursor/prev", s.prevPreset)

		api.GET("/metronome", s.status)
		api.POST("/metronome/tempo", s.setTempo)
		api.POST("/metronome/start", s.start)
		api.POST("/metronome/stop", s.stop)
		api.POST("/metronome/toggle", s.toggle)
	}

	return r
}

// Run serves the API until ctx is cancelled.
func (s *Server) Run(ctx context.Context, port int) error {
	logger := logger.GetProjectLogger()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", port).Info("API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.WithStackTrace(err)
	case <-ctx.Done():
		logger.Info("API shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.GetProjectLogger().WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("Handled request")
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "metronome",
	})
}

// writeError maps domain errors onto status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsError(err, setlist.ErrNotFound):
		status = http.StatusNotFound
	case errors.IsError(err, setlist.ErrInvalidPreset), errors.IsError(err, rhythm.ErrInvalidTempo):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// writeStartError reports a playback start failure. Anything that is not a
// lookup problem means the audio device could not be acquired.
func writeStartError(c *gin.Context, err error) {
	if errors.IsError(err, setlist.ErrNotFound) {
		writeError(c, err)
		return
	}
	logger.GetProjectLogger().WithError(err).Error("Could not start playback")
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
}

func (s *Server) listPresets(c *gin.Context) {
	c.JSON(http.StatusOK, s.library.Presets())
}

func (s *Server) savePreset(c *gin.Context) {
	var p setlist.Preset
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := s.library.SavePreset(p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (s *Server) deletePreset(c *gin.Context) {
	if err := s.library.DeletePreset(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listSetlists(c *gin.Context) {
	c.JSON(http.StatusOK, s.library.Setlists())
}

func (s *Server) saveSetlist(c *gin.Context) {
	var sl setlist.Setlist
	if err := c.ShouldBindJSON(&sl); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := s.library.SaveSetlist(sl)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (s *Server) deleteSetlist(c *gin.Context) {
	if err := s.library.DeleteSetlist(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) playPreset(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}
	pos, err := s.cursor.PlayPreset(c.Param("id"), index)
	if err != nil {
		writeStartError(c, err)
		return
	}
	c.JSON(http.StatusOK, pos)
}

// activatePreset selects a setlist entry and applies its tempo without
// touching playback.
func (s *Server) activatePreset(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}
	pos, err := s.cursor.Activate(c.Param("id"), index)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pos)
}

func (s *Server) currentCursor(c *gin.Context) {
	pos, err := s.cursor.Current()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pos)
}

func (s *Server) nextPreset(c *gin.Context) {
	pos, err := s.cursor.Next()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pos)
}

func (s *Server) prevPreset(c *gin.Context) {
	pos, err := s.cursor.Prev()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pos)
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.metronome.Snapshot())
}

type tempoRequest struct {
	BPM *float64 `json:"bpm"`
}

func (s *Server) setTempo(c *gin.Context) {
	var req tempoRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BPM == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bpm is required"})
		return
	}
	bpm := *req.BPM
	if bpm <= 0 || math.IsInf(bpm, 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("bpm %v must be positive", bpm)})
		return
	}
	if err := s.metronome.SetTempo(utils.ClampTempo(bpm)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.metronome.Snapshot())
}

func (s *Server) start(c *gin.Context) {
	if err := s.metronome.Start(); err != nil {
		writeStartError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.metronome.Snapshot())
}

func (s *Server) stop(c *gin.Context) {
	if err := s.metronome.Stop(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.metronome.Snapshot())
}

func (s *Server) toggle(c *gin.Context) {
	if _, err := s.metronome.Toggle(); err != nil {
		writeStartError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.metronome.Snapshot())
}
