package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/lorehaven/loregraph/internal/model"
	"github.com/lorehaven/loregraph/internal/pipeline"
	"github.com/lorehaven/loregraph/internal/store"
)

// Server exposes the processing pipeline over HTTP. Runs execute
// asynchronously; callers poll the job record for progress.
type Server struct {
	Pipeline *pipeline.Pipeline
	Store    *store.Store
	Logger   *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc // universe id -> in-flight run
}

func New(p *pipeline.Pipeline, st *store.Store, logger *slog.Logger) *Server {
	return &Server{
		Pipeline: p,
		Store:    st,
		Logger:   logger,
		cancels:  make(map[string]context.CancelFunc),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/universes/:id/process", s.StartProcessing)
	r.POST("/universes/:id/cancel", s.CancelProcessing)
	r.GET("/universes/:id/job", s.GetJob)
	r.GET("/universes/:id/entities", s.ListEntities)
	r.GET("/universes/:id/relationships", s.ListRelationships)

	return r
}

type processRequest struct {
	Description string `json:"description"`
	Text        string `json:"text" binding:"required"`
}

// StartProcessing creates a job and launches the pipeline run in the
// background. One run per universe at a time.
func (s *Server) StartProcessing(c *gin.Context) {
	universeID := c.Param("id")

	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	s.mu.Lock()
	if _, running := s.cancels[universeID]; running {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "a processing run is already in flight for this universe"})
		return
	}
	runCtx, cancel := context.WithCancel(context.Background())
	s.cancels[universeID] = cancel
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		delete(s.cancels, universeID)
		s.mu.Unlock()
		cancel()
	}

	j, err := s.Store.CreateJob(c.Request.Context(), universeID)
	if err != nil {
		release()
		s.Logger.Error("failed to create job", "universe_id", universeID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create processing job"})
		return
	}

	go func() {
		defer release()
		result := s.Pipeline.Run(runCtx, pipeline.Input{
			UniverseID:          universeID,
			UniverseDescription: req.Description,
			JobID:               j.ID,
			Text:                req.Text,
		})
		if result.Success {
			s.Logger.Info("processing run finished",
				"universe_id", universeID, "job_id", j.ID,
				"duration", result.Duration.String(),
				"relationships", result.Stats.RelationshipsCreated)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"job_id": j.ID, "status": string(model.JobPending)})
}

// CancelProcessing aborts the in-flight run for a universe, if any. The
// aborted run marks its own job as failed on the way out.
func (s *Server) CancelProcessing(c *gin.Context) {
	universeID := c.Param("id")

	s.mu.Lock()
	cancel, running := s.cancels[universeID]
	s.mu.Unlock()
	if !running {
		c.JSON(http.StatusNotFound, gin.H{"error": "no processing run in flight for this universe"})
		return
	}
	cancel()
	c.JSON(http.StatusOK, gin.H{"status": "canceling"})
}

// GetJob returns the most recent job record for a universe.
func (s *Server) GetJob(c *gin.Context) {
	j, err := s.Store.LatestJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.Logger.Error("failed to load job", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}
	if j == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no job found for this universe"})
		return
	}
	c.JSON(http.StatusOK, j)
}

// ListEntities returns one kind's entities for a universe.
func (s *Server) ListEntities(c *gin.Context) {
	kind := model.EntityKind(strings.ToLower(c.DefaultQuery("kind", string(model.KindCharacter))))
	switch kind {
	case model.KindCharacter, model.KindLocation, model.KindEvent, model.KindObject:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown entity kind"})
		return
	}

	entities, err := s.Store.ListEntities(c.Request.Context(), c.Param("id"), kind)
	if err != nil {
		s.Logger.Error("failed to list entities", "kind", string(kind), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list entities"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": string(kind), "entities": entities})
}

// ListRelationships returns all relationships for a universe.
func (s *Server) ListRelationships(c *gin.Context) {
	rels, err := s.Store.ListRelationships(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.Logger.Error("failed to list relationships", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list relationships"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"relationships": rels})
}
