package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unisched/schedule-builder-api/internal/dto"
	"github.com/unisched/schedule-builder-api/internal/engine"
	"github.com/unisched/schedule-builder-api/internal/models"
	"github.com/unisched/schedule-builder-api/internal/service"
	appErrors "github.com/unisched/schedule-builder-api/pkg/errors"
	"github.com/unisched/schedule-builder-api/pkg/response"
)

type schedulerAPI interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
	GetSchedule(ctx context.Context, sessionID string) ([]models.Assignment, error)
	ListSessions(ctx context.Context, query dto.SessionQuery) ([]models.ScheduleSession, *models.Pagination, error)
	DeleteSession(ctx context.Context, sessionID string) error
	AuditConflicts(ctx context.Context, sessionID string) (*dto.ConflictReportResponse, error)
	Score(ctx context.Context, sessionID string) (*engine.ScoreBreakdown, error)
	Optimize(ctx context.Context, sessionID string, req dto.OptimizeScheduleRequest) (*dto.OptimizeScheduleResponse, error)
	OptimizeAsync(ctx context.Context, sessionID string, req dto.OptimizeScheduleRequest) (*dto.OptimizeJobResponse, error)
}

// SchedulerHandler exposes schedule generation, auditing and optimization.
type SchedulerHandler struct {
	service schedulerAPI
}

// NewSchedulerHandler constructs the handler.
func NewSchedulerHandler(svc *service.SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{service: svc}
}

// Generate godoc
// @Summary Generate a schedule for a lecture batch
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Lecture batch"
// @Success 201 {object} response.Envelope
// @Router /schedules [post]
func (h *SchedulerHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListSessions godoc
// @Summary List schedule sessions
// @Tags Scheduler
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Param status query string false "Session status filter"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *SchedulerHandler) ListSessions(c *gin.Context) {
	query := dto.SessionQuery{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
		Status:   c.Query("status"),
	}
	sessions, pagination, err := h.service.ListSessions(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination)
}

// GetSchedule godoc
// @Summary Get the stored assignments of a session
// @Tags Scheduler
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *SchedulerHandler) GetSchedule(c *gin.Context) {
	assignments, err := h.service.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// DeleteSession godoc
// @Summary Delete a session with its lectures and assignments
// @Tags Scheduler
// @Param id path string true "Session ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *SchedulerHandler) DeleteSession(c *gin.Context) {
	if err := h.service.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Conflicts godoc
// @Summary Audit a stored schedule for conflicts
// @Tags Scheduler
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/conflicts [get]
func (h *SchedulerHandler) Conflicts(c *gin.Context) {
	report, err := h.service.AuditConflicts(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Score godoc
// @Summary Compute the quality breakdown of a stored schedule
// @Tags Scheduler
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/score [get]
func (h *SchedulerHandler) Score(c *gin.Context) {
	breakdown, err := h.service.Score(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, breakdown, nil)
}

// Optimize godoc
// @Summary Optimize a stored schedule
// @Description Runs bounded hill climbing over the stored assignments. With async=true the run is queued and a job id returned.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.OptimizeScheduleRequest false "Optimization options"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /schedules/{id}/optimize [post]
func (h *SchedulerHandler) Optimize(c *gin.Context) {
	var req dto.OptimizeScheduleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid optimize payload"))
			return
		}
	}

	sessionID := c.Param("id")
	if req.Async {
		job, err := h.service.OptimizeAsync(c.Request.Context(), sessionID, req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusAccepted, job, nil)
		return
	}

	result, err := h.service.Optimize(c.Request.Context(), sessionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
