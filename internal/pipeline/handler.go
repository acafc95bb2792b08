package pipeline

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobsearch-backend/internal/shared/server/respond"
)

// Handler exposes pipeline trigger and status endpoints.
type Handler struct {
	Runner *Runner
}

// NewHandler constructs a Handler.
func NewHandler(runner *Runner) *Handler {
	return &Handler{Runner: runner}
}

// RegisterRoutes attaches pipeline routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/pipeline/run", h.trigger)
	rg.GET("/pipeline/status", h.status)
}

func (h *Handler) trigger(c *gin.Context) {
	if err := h.Runner.Trigger(c.Request.Context()); err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			respond.Error(c, http.StatusConflict, "already_running", "a pipeline run is already in progress", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start pipeline", nil)
		return
	}
	respond.JSON(c, http.StatusAccepted, gin.H{"status": "started"})
}

func (h *Handler) status(c *gin.Context) {
	respond.OK(c, h.Runner.Status())
}
