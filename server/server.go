// Package server exposes the orchestrator and watch runner over HTTP.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hadrienbr/techwatch/backend"
	"github.com/hadrienbr/techwatch/logging"
	"github.com/hadrienbr/techwatch/orchestrator"
	"github.com/hadrienbr/techwatch/security"
	"github.com/hadrienbr/techwatch/storage"
	"github.com/hadrienbr/techwatch/watch"
)

// Options configures a Server.
type Options struct {
	Logger logging.Logger
}

// Server wires HTTP routes to the orchestrator, the watch runner and the
// report store.
type Server struct {
	orch    *orchestrator.Orchestrator
	runner  *watch.Runner
	store   *storage.Store
	backend backend.Backend
	logger  logging.Logger
}

// New creates a Server from its collaborators.
func New(o *orchestrator.Orchestrator, r *watch.Runner, st *storage.Store, b backend.Backend, optFns ...func(o *Options)) *Server {
	opts := Options{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Server{
		orch:    o,
		runner:  r,
		store:   st,
		backend: b,
		logger:  opts.Logger,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.health)

	api := r.Group("/api")
	{
		api.POST("/run", s.run)
		api.POST("/search", s.search)
		api.GET("/reports/latest", s.latestReport)
	}

	return r
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.Router().Run(addr)
}

// GET /healthz
func (s *Server) health(c *gin.Context) {
	status := gin.H{"status": "ok"}
	code := http.StatusOK

	if s.backend != nil && !s.backend.Available(c.Request.Context()) {
		status = gin.H{"status": "degraded", "backend": "unavailable"}
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, status)
}

// POST /api/run
func (s *Server) run(c *gin.Context) {
	var req struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	query := security.SanitizeQuery(req.Query)
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is empty after sanitization"})
		return
	}

	result, err := s.orch.Run(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, orchestrator.ErrPlanningFailed) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"context": result})
}

// POST /api/search
func (s *Server) search(c *gin.Context) {
	var req struct {
		Query      string `json:"query" binding:"required"`
		MaxResults int    `json:"max_results"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	docs, err := s.runner.TargetedSearch(c.Request.Context(), req.Query, req.MaxResults)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(docs), "documents": docs})
}

// GET /api/reports/latest
func (s *Server) latestReport(c *gin.Context) {
	report, err := s.store.LoadLatestReport()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report available"})
		return
	}

	c.JSON(http.StatusOK, report)
}
