// Package httpapi exposes question answering and indexing as a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
	"github.com/custodia-labs/paperpilot/internal/logger"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = "127.0.0.1:8080"

// Upload limits.
const (
	// MaxUploadBytes caps the size of one POST /v1/index request body.
	MaxUploadBytes = 64 << 20

	// maxMultipartMemory is held in memory before spilling to temp files.
	maxMultipartMemory = 32 << 20
)

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	// QA answers questions and searches passages.
	QA driving.QAService

	// QAForK builds a QA service for a per-request retrieval depth. Optional.
	QAForK func(k int) driving.QAService

	// Indexing rebuilds the index from uploads. Optional.
	Indexing driving.IndexingService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.QA == nil {
		return ErrMissingQAService
	}
	return nil
}

// Server is the HTTP API.
type Server struct {
	ports  *Ports
	router *gin.Engine
}

// NewServer builds the router over ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.MaxMultipartMemory = maxMultipartMemory

	s := &Server{ports: ports, router: router}

	v1 := router.Group("/v1")
	{
		v1.GET("/index", s.getIndex)
		v1.POST("/index", s.postIndex)
		v1.POST("/ask", s.postAsk)
		v1.POST("/search", s.postSearch)
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			time.Since(start).Round(time.Millisecond))
	}
}
