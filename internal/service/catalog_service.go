package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unisched/schedule-builder-api/internal/dto"
	"github.com/unisched/schedule-builder-api/internal/engine"
	"github.com/unisched/schedule-builder-api/internal/models"
	appErrors "github.com/unisched/schedule-builder-api/pkg/errors"
)

type classroomStore interface {
	List(ctx context.Context) ([]models.Classroom, error)
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	Create(ctx context.Context, classroom *models.Classroom) error
	Update(ctx context.Context, classroom *models.Classroom) error
	Delete(ctx context.Context, id string) error
}

type timeSlotStore interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
	Create(ctx context.Context, slot *models.TimeSlot) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

// CatalogService manages the classroom and time-slot inventories.
type CatalogService struct {
	classrooms classroomStore
	slots      timeSlotStore
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCatalogService wires catalog dependencies.
func NewCatalogService(classrooms classroomStore, slots timeSlotStore, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{classrooms: classrooms, slots: slots, validator: validate, logger: logger}
}

// ListClassrooms returns the classroom inventory.
func (s *CatalogService) ListClassrooms(ctx context.Context) ([]models.Classroom, error) {
	classrooms, err := s.classrooms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list classrooms")
	}
	return classrooms, nil
}

// CreateClassroom registers a new classroom.
func (s *CatalogService) CreateClassroom(ctx context.Context, req dto.CreateClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom")
	}
	classroom := &models.Classroom{
		Name:      req.Name,
		Capacity:  req.Capacity,
		Equipment: strings.Join(req.Equipment, ","),
		Status:    models.StatusAvailable,
	}
	if err := s.classrooms.Create(ctx, classroom); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create classroom")
	}
	s.logger.Info("classroom created", zap.String("id", classroom.ID), zap.String("name", classroom.Name))
	return classroom, nil
}

// UpdateClassroom patches a classroom; zero-valued fields keep their value.
func (s *CatalogService) UpdateClassroom(ctx context.Context, id string, req dto.UpdateClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom update")
	}
	classroom, err := s.findClassroom(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		classroom.Name = req.Name
	}
	if req.Capacity > 0 {
		classroom.Capacity = req.Capacity
	}
	if req.Equipment != nil {
		classroom.Equipment = strings.Join(req.Equipment, ",")
	}
	if req.Status != "" {
		classroom.Status = req.Status
	}
	if err := s.classrooms.Update(ctx, classroom); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update classroom")
	}
	return classroom, nil
}

// DeleteClassroom removes a classroom.
func (s *CatalogService) DeleteClassroom(ctx context.Context, id string) error {
	if _, err := s.findClassroom(ctx, id); err != nil {
		return err
	}
	if err := s.classrooms.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete classroom")
	}
	return nil
}

// ClassroomUtilization summarises the classroom inventory.
func (s *CatalogService) ClassroomUtilization(ctx context.Context) (*dto.ClassroomUtilization, error) {
	classrooms, err := s.classrooms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list classrooms")
	}
	report := &dto.ClassroomUtilization{Total: len(classrooms)}
	for _, room := range classrooms {
		if room.Available() {
			report.Available++
		}
		report.TotalCapacity += room.Capacity
		if report.MinCapacity == 0 || room.Capacity < report.MinCapacity {
			report.MinCapacity = room.Capacity
		}
		if room.Capacity > report.MaxCapacity {
			report.MaxCapacity = room.Capacity
		}
	}
	if len(classrooms) > 0 {
		report.AvgCapacity = float64(report.TotalCapacity) / float64(len(classrooms))
	}
	return report, nil
}

// ListTimeSlots returns the slot inventory.
func (s *CatalogService) ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list time slots")
	}
	return slots, nil
}

// CreateTimeSlot registers a new bookable period.
func (s *CatalogService) CreateTimeSlot(ctx context.Context, req dto.CreateTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot")
	}
	band := models.ParseBand(req.Band)
	id := req.ID
	if id == "" {
		id = strings.ToLower(req.Day)
		if band != "" {
			id += "_" + string(band)
		}
	}
	slot := &models.TimeSlot{
		ID:        id,
		Day:       req.Day,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Duration:  req.Duration,
		Band:      band,
		Status:    models.StatusAvailable,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create time slot")
	}
	return slot, nil
}

// UpdateTimeSlotStatus toggles slot availability.
func (s *CatalogService) UpdateTimeSlotStatus(ctx context.Context, id string, req dto.UpdateTimeSlotStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status")
	}
	if _, err := s.findTimeSlot(ctx, id); err != nil {
		return err
	}
	if err := s.slots.UpdateStatus(ctx, id, req.Status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update time slot status")
	}
	return nil
}

// DeleteTimeSlot removes a slot.
func (s *CatalogService) DeleteTimeSlot(ctx context.Context, id string) error {
	if _, err := s.findTimeSlot(ctx, id); err != nil {
		return err
	}
	if err := s.slots.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete time slot")
	}
	return nil
}

// BootstrapStandardSlots creates any missing slots of the standard 15-slot
// week and returns the full inventory afterwards.
func (s *CatalogService) BootstrapStandardSlots(ctx context.Context) ([]models.TimeSlot, error) {
	existing, err := s.slots.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list time slots")
	}
	present := make(map[string]bool, len(existing))
	for _, slot := range existing {
		present[slot.ID] = true
	}
	for _, slot := range engine.StandardTimeSlots() {
		if present[slot.ID] {
			continue
		}
		created := slot
		if err := s.slots.Create(ctx, &created); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "bootstrap time slot")
		}
	}
	return s.ListTimeSlots(ctx)
}

// TimeSlotUtilization summarises the slot inventory per weekday.
func (s *CatalogService) TimeSlotUtilization(ctx context.Context) (*dto.TimeSlotUtilization, error) {
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list time slots")
	}
	report := &dto.TimeSlotUtilization{
		Total:         len(slots),
		SlotsPerDay:   make(map[string]int),
		MinutesPerDay: make(map[string]int),
	}
	for _, slot := range slots {
		if slot.Available() {
			report.Available++
		}
		report.SlotsPerDay[slot.Day]++
		report.MinutesPerDay[slot.Day] += slot.Duration
	}
	return report, nil
}

func (s *CatalogService) findClassroom(ctx context.Context, id string) (*models.Classroom, error) {
	classroom, err := s.classrooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load classroom")
	}
	return classroom, nil
}

func (s *CatalogService) findTimeSlot(ctx context.Context, id string) (*models.TimeSlot, error) {
	slot, err := s.slots.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load time slot")
	}
	return slot, nil
}
