package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/unisched/schedule-builder-api/internal/engine"
	"github.com/unisched/schedule-builder-api/internal/models"
	appErrors "github.com/unisched/schedule-builder-api/pkg/errors"
	"github.com/unisched/schedule-builder-api/pkg/export"
)

type scheduleLoader interface {
	GetSchedule(ctx context.Context, sessionID string) ([]models.Assignment, error)
}

type sessionLectureLoader interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.Lecture, error)
}

type catalogSnapshotter interface {
	ListClassrooms(ctx context.Context) ([]models.Classroom, error)
	ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error)
}

// ExportService renders stored schedules as downloadable documents.
type ExportService struct {
	schedules   scheduleLoader
	lectures    sessionLectureLoader
	catalog     catalogSnapshotter
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	institution string
	logger      *zap.Logger
}

// NewExportService wires export dependencies.
func NewExportService(schedules scheduleLoader, lectures sessionLectureLoader, catalog catalogSnapshotter, institution string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		schedules:   schedules,
		lectures:    lectures,
		catalog:     catalog,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		institution: institution,
		logger:      logger,
	}
}

// TimetableCSV renders the session timetable as CSV.
func (s *ExportService) TimetableCSV(ctx context.Context, sessionID string) ([]byte, error) {
	dataset, err := s.dataset(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv")
	}
	return payload, nil
}

// TimetablePDF renders the session timetable as a tabular PDF.
func (s *ExportService) TimetablePDF(ctx context.Context, sessionID string) ([]byte, error) {
	dataset, err := s.dataset(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	title := "Timetable"
	if s.institution != "" {
		title = fmt.Sprintf("%s Timetable", s.institution)
	}
	payload, err := s.pdf.Render(*dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf")
	}
	return payload, nil
}

func (s *ExportService) dataset(ctx context.Context, sessionID string) (*export.Dataset, error) {
	assignments, err := s.schedules.GetSchedule(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	lectures, err := s.lectures.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load lectures")
	}
	rooms, err := s.catalog.ListClassrooms(ctx)
	if err != nil {
		return nil, err
	}
	slots, err := s.catalog.ListTimeSlots(ctx)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		slots = engine.StandardTimeSlots()
	}
	dataset := timetableDataset(assignments, lectures, engine.NewCatalog(rooms, slots))
	return &dataset, nil
}
