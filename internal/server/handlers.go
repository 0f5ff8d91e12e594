package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MikeO7/HarborSim/internal/catalog"
	"github.com/MikeO7/HarborSim/internal/engineapi"
	"github.com/MikeO7/HarborSim/internal/session"
	"github.com/MikeO7/HarborSim/internal/sim"
	"github.com/MikeO7/HarborSim/pkg/log"
)

type commandRequest struct {
	Command string `json:"command" binding:"required"`
}

type commandResponse struct {
	Command string `json:"command"`
	Output  string `json:"output"`
	Success bool   `json:"success"`
	Outcome string `json:"outcome"`
	Clear   bool   `json:"clear,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newCommandResponse(command string, r sim.Result) commandResponse {
	resp := commandResponse{
		Command: command,
		Output:  r.Output,
		Success: r.Success(),
		Outcome: r.Outcome.String(),
		Clear:   r.Clear,
	}
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	return resp
}

// health handles GET /api/health
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now(),
	})
}

// execute handles POST /api/commands
func (s *Server) execute(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "command is required"})
		return
	}

	r, err := s.deps.Session.Submit(c.Request.Context(), req.Command)
	switch {
	case errors.Is(err, session.ErrEmptyCommand):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, session.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		log.ErrorErr("Failed to execute command", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, newCommandResponse(req.Command, r))
}

// inject handles POST /api/commands/inject. The command runs after the
// session's settle delay; the response does not wait for it.
func (s *Server) inject(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "command is required"})
		return
	}

	s.deps.Session.Inject(s.background, req.Command)
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "scheduled",
		"command": req.Command,
	})
}

// state handles GET /api/state
func (s *Server) state(c *gin.Context) {
	snap := s.deps.Session.Engine().Snapshot()
	running := snap.CountRunning()
	c.JSON(http.StatusOK, gin.H{
		"containers": snap.Containers,
		"images":     snap.Images,
		"counts": gin.H{
			"running": running,
			"stopped": len(snap.Containers) - running,
			"images":  len(snap.Images),
		},
	})
}

// history handles GET /api/history
func (s *Server) history(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"entries": s.deps.Session.History(),
		"recall":  s.deps.Session.Recall(),
	})
}

// catalog handles GET /api/catalog, optionally filtered by ?category=
func (s *Server) catalog(c *gin.Context) {
	cat := s.catalogOrDefault()
	if name := c.Query("category"); name != "" {
		sigs := cat.Category(name)
		if len(sigs) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown category"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"category": name, "commands": sigs})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": cat.Categories(),
		"commands":   cat.Signatures(),
	})
}

// explain handles GET /api/explain?command=
func (s *Server) explain(c *gin.Context) {
	command := c.Query("command")
	if command == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "command is required"})
		return
	}
	exp, ok := s.catalogOrDefault().Explain(command)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no explanation available"})
		return
	}
	c.JSON(http.StatusOK, exp)
}

func (s *Server) catalogOrDefault() *catalog.Catalog {
	if s.deps.Catalog != nil {
		return s.deps.Catalog
	}
	return s.deps.Session.Engine().Catalog()
}

// progress handles GET /api/progress
func (s *Server) progress(c *gin.Context) {
	if s.deps.Progress == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "progress tracking disabled"})
		return
	}
	done, total := s.deps.Progress.Counts()
	c.JSON(http.StatusOK, gin.H{
		"completed":  done,
		"total":      total,
		"challenges": s.deps.Progress.Statuses(),
	})
}

// containersJSON handles GET /v1/containers/json?all=1
func (s *Server) containersJSON(c *gin.Context) {
	all, _ := strconv.ParseBool(c.DefaultQuery("all", "false"))
	snap := s.deps.Session.Engine().Snapshot()
	c.JSON(http.StatusOK, engineapi.Containers(snap, all, time.Now()))
}

// imagesJSON handles GET /v1/images/json
func (s *Server) imagesJSON(c *gin.Context) {
	snap := s.deps.Session.Engine().Snapshot()
	c.JSON(http.StatusOK, engineapi.Images(snap, time.Now()))
}
