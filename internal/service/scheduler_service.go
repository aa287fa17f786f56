package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/unisched/schedule-builder-api/internal/dto"
	"github.com/unisched/schedule-builder-api/internal/engine"
	"github.com/unisched/schedule-builder-api/internal/models"
	appErrors "github.com/unisched/schedule-builder-api/pkg/errors"
	"github.com/unisched/schedule-builder-api/pkg/jobs"
)

type sessionStore interface {
	List(ctx context.Context, status string, page, size int) ([]models.ScheduleSession, int, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleSession, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, session *models.ScheduleSession) error
	UpdateStatus(ctx context.Context, id, status string, overallScore float64) error
	Delete(ctx context.Context, id string) error
}

type lectureStore interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.Lecture, error)
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, lectures []models.Lecture) error
	DeleteBySession(ctx context.Context, sessionID string) error
}

type assignmentStore interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.Assignment, error)
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, assignments []models.Assignment) error
	ReplaceForSessionWithTx(ctx context.Context, tx *sqlx.Tx, sessionID string, assignments []models.Assignment) error
	DeleteBySession(ctx context.Context, sessionID string) error
}

type classroomReader interface {
	List(ctx context.Context) ([]models.Classroom, error)
}

type timeSlotReader interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type reportCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

type schedulerMetrics interface {
	RecordRun(assigned, unscheduled int)
	RecordConflicts(report engine.ConflictReport)
	RecordOptimization(improvement float64)
}

type optimizeEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// SchedulerConfig tunes the scheduling service.
type SchedulerConfig struct {
	MinRoomCapacity     int
	OptimizerIterations int
	ReportCacheTTL      time.Duration
}

// SchedulerService orchestrates schedule generation, auditing and
// optimization over persisted sessions.
type SchedulerService struct {
	sessions    sessionStore
	lectures    lectureStore
	assignments assignmentStore
	classrooms  classroomReader
	slots       timeSlotReader
	tx          txProvider
	cache       reportCache
	metrics     schedulerMetrics
	queue       optimizeEnqueuer
	cfg         SchedulerConfig
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSchedulerService wires scheduler dependencies.
func NewSchedulerService(
	sessions sessionStore,
	lectures lectureStore,
	assignments assignmentStore,
	classrooms classroomReader,
	slots timeSlotReader,
	tx txProvider,
	cache reportCache,
	metrics schedulerMetrics,
	queue optimizeEnqueuer,
	cfg SchedulerConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *SchedulerService {
	if cfg.MinRoomCapacity <= 0 {
		cfg.MinRoomCapacity = engine.DefaultMinRoomCapacity
	}
	if cfg.OptimizerIterations <= 0 {
		cfg.OptimizerIterations = engine.DefaultOptimizerIterations
	}
	if cfg.ReportCacheTTL <= 0 {
		cfg.ReportCacheTTL = 10 * time.Minute
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulerService{
		sessions:    sessions,
		lectures:    lectures,
		assignments: assignments,
		classrooms:  classrooms,
		slots:       slots,
		tx:          tx,
		cache:       cache,
		metrics:     metrics,
		queue:       queue,
		cfg:         cfg,
		validator:   validate,
		logger:      logger,
	}
}

// SetQueue attaches the async optimization queue. The queue handler closes
// over this service, so the queue is wired after construction.
func (s *SchedulerService) SetQueue(queue optimizeEnqueuer) {
	s.queue = queue
}

// Generate validates and persists a lecture batch, runs the assignment pass
// and stores the result as a new session.
func (s *SchedulerService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule request")
	}

	sessionID := uuid.NewString()
	lectures, err := buildLectures(sessionID, req.Lectures)
	if err != nil {
		return nil, err
	}

	catalog, err := s.buildCatalog(ctx)
	if err != nil {
		return nil, err
	}

	result := engine.NewScheduler(s.cfg.MinRoomCapacity).Run(sessionID, lectures, catalog)
	score := engine.NewEvaluator(nil).Score(result.Assignments, lectures, catalog)

	session := &models.ScheduleSession{
		ID:           sessionID,
		Name:         req.SessionName,
		Status:       models.SessionScheduled,
		LectureCount: len(lectures),
		OverallScore: score.Overall,
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "begin schedule transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.sessions.CreateWithTx(ctx, tx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist session")
	}
	if err = s.lectures.BulkCreateWithTx(ctx, tx, lectures); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist lectures")
	}
	if err = s.assignments.BulkCreateWithTx(ctx, tx, result.Assignments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist assignments")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "commit schedule transaction")
	}

	if s.metrics != nil {
		s.metrics.RecordRun(len(result.Assignments), len(result.Unscheduled))
	}
	s.logger.Info("schedule generated",
		zap.String("session_id", sessionID),
		zap.Int("assigned", len(result.Assignments)),
		zap.Int("unscheduled", len(result.Unscheduled)),
		zap.Float64("overall_score", score.Overall),
	)

	return &dto.GenerateScheduleResponse{
		SessionID:   sessionID,
		Assignments: result.Assignments,
		Unscheduled: result.Unscheduled,
		Score:       score,
	}, nil
}

// GetSchedule returns the stored assignments of a session.
func (s *SchedulerService) GetSchedule(ctx context.Context, sessionID string) ([]models.Assignment, error) {
	if _, err := s.findSession(ctx, sessionID); err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load assignments")
	}
	return assignments, nil
}

// ListSessions returns stored sessions with pagination.
func (s *SchedulerService) ListSessions(ctx context.Context, query dto.SessionQuery) ([]models.ScheduleSession, *models.Pagination, error) {
	sessions, total, err := s.sessions.List(ctx, query.Status, query.Page, query.PageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list sessions")
	}
	return sessions, models.NewPagination(query.Page, query.PageSize, total), nil
}

// DeleteSession removes a session and its lectures and assignments.
func (s *SchedulerService) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.findSession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.assignments.DeleteBySession(ctx, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete assignments")
	}
	if err := s.lectures.DeleteBySession(ctx, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete lectures")
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete session")
	}
	if s.cache != nil {
		s.cache.Delete(ctx, conflictCacheKey(sessionID))
	}
	return nil
}

// AuditConflicts re-audits the stored assignments of a session. Reports are
// cached per session until the schedule changes.
func (s *SchedulerService) AuditConflicts(ctx context.Context, sessionID string) (*dto.ConflictReportResponse, error) {
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, conflictCacheKey(sessionID)); ok {
			var cached dto.ConflictReportResponse
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	assignments, lectures, catalog, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	report := engine.NewDetector().Detect(assignments, lectures, catalog)
	if s.metrics != nil {
		s.metrics.RecordConflicts(report)
	}

	resp := &dto.ConflictReportResponse{
		SessionID: sessionID,
		Report:    report,
		Total:     report.Total(),
		Severity:  report.Severity(),
	}
	if s.cache != nil {
		if raw, err := json.Marshal(resp); err == nil {
			s.cache.Set(ctx, conflictCacheKey(sessionID), string(raw), s.cfg.ReportCacheTTL)
		}
	}
	return resp, nil
}

// Score recomputes the quality breakdown of a session's stored schedule.
func (s *SchedulerService) Score(ctx context.Context, sessionID string) (*engine.ScoreBreakdown, error) {
	assignments, lectures, catalog, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	breakdown := engine.NewEvaluator(nil).Score(assignments, lectures, catalog)
	return &breakdown, nil
}

// Optimize runs the hill-climbing search over a session's stored schedule and
// persists the improved assignment list.
func (s *SchedulerService) Optimize(ctx context.Context, sessionID string, req dto.OptimizeScheduleRequest) (*dto.OptimizeScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid optimize request")
	}

	assignments, lectures, catalog, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	iterations := req.Iterations
	if iterations <= 0 {
		iterations = s.cfg.OptimizerIterations
	}
	result := engine.NewOptimizer(nil).Optimize(assignments, lectures, catalog, engine.OptimizerOptions{Iterations: iterations})

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "begin optimize transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = s.assignments.ReplaceForSessionWithTx(ctx, tx, sessionID, result.Assignments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist optimized assignments")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "commit optimize transaction")
	}

	if err := s.sessions.UpdateStatus(ctx, sessionID, models.SessionOptimized, result.Final.Overall); err != nil {
		s.logger.Warn("update session after optimize failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	if s.cache != nil {
		s.cache.Delete(ctx, conflictCacheKey(sessionID))
	}
	if s.metrics != nil {
		s.metrics.RecordOptimization(result.Final.Overall - result.Initial.Overall)
	}
	s.logger.Info("schedule optimized",
		zap.String("session_id", sessionID),
		zap.Int("iterations", result.Iterations),
		zap.Int("accepted", result.Accepted),
		zap.Float64("initial", result.Initial.Overall),
		zap.Float64("final", result.Final.Overall),
	)

	return &dto.OptimizeScheduleResponse{
		SessionID:   sessionID,
		Assignments: result.Assignments,
		Initial:     result.Initial,
		Final:       result.Final,
		Iterations:  result.Iterations,
		Accepted:    result.Accepted,
	}, nil
}

// OptimizeAsync queues an optimization run and returns immediately.
func (s *SchedulerService) OptimizeAsync(ctx context.Context, sessionID string, req dto.OptimizeScheduleRequest) (*dto.OptimizeJobResponse, error) {
	if s.queue == nil {
		return nil, appErrors.New(appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "async optimization not configured")
	}
	if _, err := s.findSession(ctx, sessionID); err != nil {
		return nil, err
	}
	jobID := uuid.NewString()
	if err := s.queue.Enqueue(jobs.Job{
		ID:      jobID,
		Type:    "optimize_schedule",
		Payload: OptimizeJobPayload{SessionID: sessionID, Iterations: req.Iterations},
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "enqueue optimization")
	}
	return &dto.OptimizeJobResponse{JobID: jobID, SessionID: sessionID, Status: "queued"}, nil
}

// OptimizeJobPayload is the queue payload for async optimization runs.
type OptimizeJobPayload struct {
	SessionID  string
	Iterations int
}

// HandleOptimizeJob is the queue handler for async optimization.
func (s *SchedulerService) HandleOptimizeJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(OptimizeJobPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for job %s", job.Payload, job.ID)
	}
	_, err := s.Optimize(ctx, payload.SessionID, dto.OptimizeScheduleRequest{Iterations: payload.Iterations})
	return err
}

func (s *SchedulerService) findSession(ctx context.Context, sessionID string) (*models.ScheduleSession, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load session")
	}
	return session, nil
}

func (s *SchedulerService) loadSession(ctx context.Context, sessionID string) ([]models.Assignment, []models.Lecture, *engine.Catalog, error) {
	if _, err := s.findSession(ctx, sessionID); err != nil {
		return nil, nil, nil, err
	}
	assignments, err := s.assignments.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load assignments")
	}
	lectures, err := s.lectures.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load lectures")
	}
	catalog, err := s.buildCatalog(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return assignments, lectures, catalog, nil
}

// buildCatalog snapshots the classroom and slot inventories. An empty slot
// table falls back to the standard 15-slot week so a fresh deployment can
// schedule without seeding.
func (s *SchedulerService) buildCatalog(ctx context.Context) (*engine.Catalog, error) {
	rooms, err := s.classrooms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load classrooms")
	}
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load time slots")
	}
	if len(slots) == 0 {
		slots = engine.StandardTimeSlots()
	}
	if len(rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptyCatalog, "no classrooms registered")
	}
	return engine.NewCatalog(rooms, slots), nil
}

func buildLectures(sessionID string, inputs []dto.LectureInput) ([]models.Lecture, error) {
	lectures := make([]models.Lecture, 0, len(inputs))
	for _, in := range inputs {
		if !models.ValidDurations[in.Duration] {
			return nil, appErrors.Clone(appErrors.ErrInvalidDuration,
				fmt.Sprintf("lecture %q duration %d not in allowed set", in.Title, in.Duration))
		}
		requirement := models.Requirement(in.Requirement)
		if requirement == "" {
			requirement = models.RequirementObligatory
		}
		role := models.InstructorRole(in.Role)
		if role == "" {
			role = models.RoleLead
		}
		lectures = append(lectures, models.Lecture{
			ID:           uuid.NewString(),
			SessionID:    sessionID,
			Title:        in.Title,
			Department:   in.Department,
			Semester:     in.Semester,
			Level:        in.Level,
			AcademicYear: in.AcademicYear,
			Instructor:   in.Instructor,
			Group:        in.Group,
			Kind:         models.LectureKind(in.Kind),
			Requirement:  requirement,
			Role:         role,
			Duration:     models.NormalizeDuration(in.Duration),
			Preference:   models.ParseBand(in.Preference),
		})
	}
	return lectures, nil
}

func conflictCacheKey(sessionID string) string {
	return "schedule:conflicts:" + sessionID
}
