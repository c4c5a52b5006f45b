// Package server exposes the repair loop over HTTP.
//
// One endpoint, POST /v1/repairs, accepts a project locator plus a
// dependency name/value, ensures the project is present in the
// workspace, updates gradle.properties, and runs a repair session.
// Requests addressing the same project directory are coalesced through
// a single-flight group so concurrent callers never race on the same
// configuration files or Gradle invocation.
package server

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/gradlemend/gradlemend/internal/fetch"
	"github.com/gradlemend/gradlemend/internal/gradle"
	"github.com/gradlemend/gradlemend/internal/log"
	"github.com/gradlemend/gradlemend/internal/repair"
)

// MaxTransportOutput bounds final_build_output in responses. The tail
// is kept because Gradle prints failure summaries last.
const MaxTransportOutput = 64 * 1024

// RepairRequest is the POST /v1/repairs body.
type RepairRequest struct {
	ProjectURL      string `json:"project_url" binding:"required"`
	DependencyName  string `json:"dependency_name" binding:"required"`
	DependencyValue string `json:"dependency_value" binding:"required"`
}

// RepairResponse is the POST /v1/repairs reply.
type RepairResponse struct {
	Status           string `json:"status"` // "success" or "failed"
	SessionID        string `json:"session_id"`
	Attempts         int    `json:"attempts"`
	TerminalState    string `json:"terminal_state"`
	Reason           string `json:"reason,omitempty"`
	FinalBuildOutput string `json:"final_build_output"`
	LastAppliedFix   string `json:"last_applied_fix,omitempty"`
}

// Server wires the fetcher and orchestrator behind gin handlers.
type Server struct {
	fetcher      *fetch.Fetcher
	orchestrator *repair.Orchestrator
	logger       log.Logger

	// group serializes and coalesces sessions per project directory.
	group singleflight.Group
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets a logger for server messages.
func WithLogger(logger log.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server.
func New(fetcher *fetch.Fetcher, orchestrator *repair.Orchestrator, opts ...ServerOption) *Server {
	s := &Server{
		fetcher:      fetcher,
		orchestrator: orchestrator,
		logger:       log.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.handleHealth)

	v1 := router.Group("/v1")
	{
		v1.POST("/repairs", s.handleRepair)
	}

	return router
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// repairOutcome is the single-flight result for one coalesced session.
type repairOutcome struct {
	result *repair.Result
	err    error
}

func (s *Server) handleRepair(c *gin.Context) {
	var req RepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	projectDir := s.fetcher.ProjectDir(req.ProjectURL)

	// Coalesce concurrent requests for the same directory: the first
	// caller runs the session, the rest share its outcome. Distinct
	// directories repair in parallel.
	v, _, _ := s.group.Do(projectDir, func() (any, error) {
		result, err := s.repairProject(c.Request.Context(), req, projectDir)
		return &repairOutcome{result: result, err: err}, nil
	})
	outcome := v.(*repairOutcome)

	if outcome.err != nil && outcome.result == nil {
		s.logger.Error("repair request failed", "project", req.ProjectURL, "error", outcome.err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": outcome.err.Error()})
		return
	}

	c.JSON(http.StatusOK, buildResponse(outcome))
}

// repairProject fetches the project, applies the requested property
// update, and runs one repair session.
func (s *Server) repairProject(ctx context.Context, req RepairRequest, projectDir string) (*repair.Result, error) {
	if _, err := s.fetcher.EnsurePresent(ctx, req.ProjectURL); err != nil {
		return nil, err
	}

	propsPath := filepath.Join(projectDir, gradle.PropertiesFile)
	if err := gradle.SetProperty(propsPath, req.DependencyName, req.DependencyValue); err != nil {
		return nil, err
	}

	return s.orchestrator.Repair(ctx, projectDir)
}

func buildResponse(outcome *repairOutcome) RepairResponse {
	result := outcome.result
	session := result.Session

	resp := RepairResponse{
		Status:         "failed",
		SessionID:      session.ID,
		Attempts:       len(session.Attempts),
		TerminalState:  result.State.String(),
		Reason:         string(result.Reason),
		LastAppliedFix: session.LastAppliedFix(),
	}
	if result.Succeeded() {
		resp.Status = "success"
	}
	if outcome.err != nil && resp.Reason == "" {
		resp.Reason = outcome.err.Error()
	}
	if session.LastBuild != nil {
		resp.FinalBuildOutput = truncateTail(session.LastBuild.RawOutput, MaxTransportOutput)
	}
	return resp
}

// truncateTail keeps the last max bytes of s.
func truncateTail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
