package handler

import (
	"net/http"
	"strconv"

	"carmantra_backend/internal/sync/repository"
	"carmantra_backend/internal/sync/service"
	"carmantra_backend/internal/sync/transport"
	"carmantra_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/runs", h.StartRun)
	rg.GET("/runs", h.ListRuns)
	rg.GET("/runs/:id", h.GetRun)
}

// StartRun creates a sync run and hands it to the background worker. The
// run executes asynchronously; poll GET /runs/:id for progress.
func (h *Handler) StartRun(c *gin.Context) {
	run, err := h.svc.StartRun(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusAccepted, toResponse(run))
}

func (h *Handler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	run, err := h.svc.GetRun(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, toResponse(run))
}

func (h *Handler) ListRuns(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.svc.ListRuns(c.Request.Context(), limit)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	responses := make([]transport.RunResponse, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, toResponse(run))
	}
	httpkit.JSON(c, http.StatusOK, responses)
}

func toResponse(run repository.Run) transport.RunResponse {
	return transport.RunResponse{
		ID:         run.ID,
		Status:     run.Status,
		Source:     run.Source,
		Cursor:     run.Cursor,
		Synced:     run.Synced,
		Skipped:    run.Skipped,
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
}
