package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisched/schedule-builder-api/internal/dto"
	"github.com/unisched/schedule-builder-api/internal/models"
	"github.com/unisched/schedule-builder-api/internal/service"
	appErrors "github.com/unisched/schedule-builder-api/pkg/errors"
	"github.com/unisched/schedule-builder-api/pkg/response"
)

type catalogAPI interface {
	ListClassrooms(ctx context.Context) ([]models.Classroom, error)
	CreateClassroom(ctx context.Context, req dto.CreateClassroomRequest) (*models.Classroom, error)
	UpdateClassroom(ctx context.Context, id string, req dto.UpdateClassroomRequest) (*models.Classroom, error)
	DeleteClassroom(ctx context.Context, id string) error
	ClassroomUtilization(ctx context.Context) (*dto.ClassroomUtilization, error)
	ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error)
	CreateTimeSlot(ctx context.Context, req dto.CreateTimeSlotRequest) (*models.TimeSlot, error)
	UpdateTimeSlotStatus(ctx context.Context, id string, req dto.UpdateTimeSlotStatusRequest) error
	DeleteTimeSlot(ctx context.Context, id string) error
	BootstrapStandardSlots(ctx context.Context) ([]models.TimeSlot, error)
	TimeSlotUtilization(ctx context.Context) (*dto.TimeSlotUtilization, error)
}

// CatalogHandler exposes classroom and time-slot inventory endpoints.
type CatalogHandler struct {
	service catalogAPI
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// ListClassrooms godoc
// @Summary List classrooms
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classrooms [get]
func (h *CatalogHandler) ListClassrooms(c *gin.Context) {
	classrooms, err := h.service.ListClassrooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classrooms, nil)
}

// CreateClassroom godoc
// @Summary Register a classroom
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateClassroomRequest true "Classroom"
// @Success 201 {object} response.Envelope
// @Router /classrooms [post]
func (h *CatalogHandler) CreateClassroom(c *gin.Context) {
	var req dto.CreateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid classroom payload"))
		return
	}
	classroom, err := h.service.CreateClassroom(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, classroom)
}

// UpdateClassroom godoc
// @Summary Update a classroom
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Classroom ID"
// @Param payload body dto.UpdateClassroomRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id} [patch]
func (h *CatalogHandler) UpdateClassroom(c *gin.Context) {
	var req dto.UpdateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid classroom payload"))
		return
	}
	classroom, err := h.service.UpdateClassroom(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classroom, nil)
}

// DeleteClassroom godoc
// @Summary Delete a classroom
// @Tags Catalog
// @Param id path string true "Classroom ID"
// @Success 204
// @Router /classrooms/{id} [delete]
func (h *CatalogHandler) DeleteClassroom(c *gin.Context) {
	if err := h.service.DeleteClassroom(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ClassroomUtilization godoc
// @Summary Classroom inventory summary
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classrooms/utilization [get]
func (h *CatalogHandler) ClassroomUtilization(c *gin.Context) {
	report, err := h.service.ClassroomUtilization(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// ListTimeSlots godoc
// @Summary List time slots
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /time-slots [get]
func (h *CatalogHandler) ListTimeSlots(c *gin.Context) {
	slots, err := h.service.ListTimeSlots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// CreateTimeSlot godoc
// @Summary Register a time slot
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateTimeSlotRequest true "Time slot"
// @Success 201 {object} response.Envelope
// @Router /time-slots [post]
func (h *CatalogHandler) CreateTimeSlot(c *gin.Context) {
	var req dto.CreateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid time slot payload"))
		return
	}
	slot, err := h.service.CreateTimeSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// UpdateTimeSlotStatus godoc
// @Summary Toggle time slot availability
// @Tags Catalog
// @Accept json
// @Param id path string true "Time slot ID"
// @Param payload body dto.UpdateTimeSlotStatusRequest true "New status"
// @Success 204
// @Router /time-slots/{id}/status [put]
func (h *CatalogHandler) UpdateTimeSlotStatus(c *gin.Context) {
	var req dto.UpdateTimeSlotStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	if err := h.service.UpdateTimeSlotStatus(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteTimeSlot godoc
// @Summary Delete a time slot
// @Tags Catalog
// @Param id path string true "Time slot ID"
// @Success 204
// @Router /time-slots/{id} [delete]
func (h *CatalogHandler) DeleteTimeSlot(c *gin.Context) {
	if err := h.service.DeleteTimeSlot(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BootstrapTimeSlots godoc
// @Summary Create the standard 15-slot week
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /time-slots/bootstrap [post]
func (h *CatalogHandler) BootstrapTimeSlots(c *gin.Context) {
	slots, err := h.service.BootstrapStandardSlots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// TimeSlotUtilization godoc
// @Summary Time slot inventory summary
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /time-slots/utilization [get]
func (h *CatalogHandler) TimeSlotUtilization(c *gin.Context) {
	report, err := h.service.TimeSlotUtilization(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
