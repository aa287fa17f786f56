package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisched/schedule-builder-api/internal/dto"
	"github.com/unisched/schedule-builder-api/internal/engine"
	"github.com/unisched/schedule-builder-api/internal/models"
	appErrors "github.com/unisched/schedule-builder-api/pkg/errors"
	"github.com/unisched/schedule-builder-api/pkg/jobs"
)

type stubSessionStore struct {
	byID          map[string]*models.ScheduleSession
	created       []*models.ScheduleSession
	statusUpdates []string
	lastScore     float64
	deleted       []string
}

func (s *stubSessionStore) List(ctx context.Context, status string, page, size int) ([]models.ScheduleSession, int, error) {
	var out []models.ScheduleSession
	for _, sess := range s.byID {
		if status == "" || sess.Status == status {
			out = append(out, *sess)
		}
	}
	return out, len(out), nil
}

func (s *stubSessionStore) FindByID(ctx context.Context, id string) (*models.ScheduleSession, error) {
	sess, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return sess, nil
}

func (s *stubSessionStore) CreateWithTx(ctx context.Context, tx *sqlx.Tx, session *models.ScheduleSession) error {
	s.created = append(s.created, session)
	return nil
}

func (s *stubSessionStore) UpdateStatus(ctx context.Context, id, status string, overallScore float64) error {
	s.statusUpdates = append(s.statusUpdates, status)
	s.lastScore = overallScore
	return nil
}

func (s *stubSessionStore) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubLectureStore struct {
	bySession map[string][]models.Lecture
	created   []models.Lecture
	deleted   []string
}

func (s *stubLectureStore) ListBySession(ctx context.Context, sessionID string) ([]models.Lecture, error) {
	return s.bySession[sessionID], nil
}

func (s *stubLectureStore) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, lectures []models.Lecture) error {
	s.created = append(s.created, lectures...)
	return nil
}

func (s *stubLectureStore) DeleteBySession(ctx context.Context, sessionID string) error {
	s.deleted = append(s.deleted, sessionID)
	return nil
}

type stubAssignmentStore struct {
	bySession map[string][]models.Assignment
	listErr   error
	created   []models.Assignment
	replaced  []models.Assignment
	deleted   []string
}

func (s *stubAssignmentStore) ListBySession(ctx context.Context, sessionID string) ([]models.Assignment, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.bySession[sessionID], nil
}

func (s *stubAssignmentStore) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, assignments []models.Assignment) error {
	s.created = append(s.created, assignments...)
	return nil
}

func (s *stubAssignmentStore) ReplaceForSessionWithTx(ctx context.Context, tx *sqlx.Tx, sessionID string, assignments []models.Assignment) error {
	s.replaced = append(s.replaced, assignments...)
	return nil
}

func (s *stubAssignmentStore) DeleteBySession(ctx context.Context, sessionID string) error {
	s.deleted = append(s.deleted, sessionID)
	return nil
}

type stubClassroomReader struct {
	rooms []models.Classroom
}

func (s *stubClassroomReader) List(ctx context.Context) ([]models.Classroom, error) {
	return s.rooms, nil
}

type stubTimeSlotReader struct {
	slots []models.TimeSlot
}

func (s *stubTimeSlotReader) List(ctx context.Context) ([]models.TimeSlot, error) {
	return s.slots, nil
}

type stubReportCache struct {
	entries map[string]string
	deleted []string
}

func (c *stubReportCache) Get(ctx context.Context, key string) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *stubReportCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	c.entries[key] = value
}

func (c *stubReportCache) Delete(ctx context.Context, key string) {
	c.deleted = append(c.deleted, key)
	delete(c.entries, key)
}

type stubSchedulerMetrics struct {
	runs          int
	conflictRuns  int
	optimizations int
}

func (m *stubSchedulerMetrics) RecordRun(assigned, unscheduled int)          { m.runs++ }
func (m *stubSchedulerMetrics) RecordConflicts(report engine.ConflictReport) { m.conflictRuns++ }
func (m *stubSchedulerMetrics) RecordOptimization(improvement float64)       { m.optimizations++ }

type stubQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *stubQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type schedulerFixture struct {
	svc         *SchedulerService
	sessions    *stubSessionStore
	lectures    *stubLectureStore
	assignments *stubAssignmentStore
	rooms       *stubClassroomReader
	slots       *stubTimeSlotReader
	cache       *stubReportCache
	metrics     *stubSchedulerMetrics
	queue       *stubQueue
	mock        sqlmock.Sqlmock
	close       func()
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	f := &schedulerFixture{
		sessions:    &stubSessionStore{byID: map[string]*models.ScheduleSession{}},
		lectures:    &stubLectureStore{bySession: map[string][]models.Lecture{}},
		assignments: &stubAssignmentStore{bySession: map[string][]models.Assignment{}},
		rooms: &stubClassroomReader{rooms: []models.Classroom{
			{ID: "room-1", Name: "Amphitheatre A", Capacity: 60, Status: models.StatusAvailable},
			{ID: "room-2", Name: "Lab 2", Capacity: 35, Status: models.StatusAvailable},
		}},
		slots:   &stubTimeSlotReader{},
		cache:   &stubReportCache{entries: map[string]string{}},
		metrics: &stubSchedulerMetrics{},
		queue:   &stubQueue{},
		mock:    mock,
		close:   func() { db.Close() },
	}
	f.svc = NewSchedulerService(
		f.sessions, f.lectures, f.assignments, f.rooms, f.slots,
		sqlx.NewDb(db, "sqlmock"), f.cache, f.metrics, f.queue,
		SchedulerConfig{MinRoomCapacity: 30, OptimizerIterations: 50, ReportCacheTTL: time.Minute},
		nil, nil,
	)
	return f
}

func (f *schedulerFixture) seedSession(id string) {
	f.sessions.byID[id] = &models.ScheduleSession{ID: id, Name: "Winter 2026", Status: models.SessionScheduled}
	f.lectures.bySession[id] = []models.Lecture{
		{ID: "l1", SessionID: id, Title: "Microeconomics", Department: "Economics", Instructor: "Dr. A", Group: "G1", Kind: models.KindLecture, Requirement: models.RequirementObligatory, Duration: 90, Preference: models.BandMorning},
	}
	f.assignments.bySession[id] = []models.Assignment{
		{ID: "a1", SessionID: id, LectureID: "l1", TimeSlotID: "friday_evening", ClassroomID: "room-1", Instructor: "Dr. A"},
	}
}

func TestSchedulerServiceGenerate(t *testing.T) {
	f := newSchedulerFixture(t)
	defer f.close()

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Generate(context.Background(), dto.GenerateScheduleRequest{
		SessionName: "Winter 2026",
		Lectures: []dto.LectureInput{
			{Title: "Microeconomics", Instructor: "Dr. A", Group: "G1", Kind: "L", Duration: 90},
			{Title: "Microeconomics Lab", Instructor: "TA B", Group: "G1.1", Kind: "U", Role: "A", Duration: 45},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.Len(t, resp.Assignments, 2)
	assert.Empty(t, resp.Unscheduled)
	assert.Greater(t, resp.Score.Overall, 0.0)

	require.Len(t, f.sessions.created, 1)
	assert.Equal(t, models.SessionScheduled, f.sessions.created[0].Status)
	assert.Equal(t, 2, f.sessions.created[0].LectureCount)
	assert.Len(t, f.lectures.created, 2)
	assert.Len(t, f.assignments.created, 2)
	assert.Equal(t, 1, f.metrics.runs)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSchedulerServiceGenerateValidation(t *testing.T) {
	f := newSchedulerFixture(t)
	defer f.close()

	_, err := f.svc.Generate(context.Background(), dto.GenerateScheduleRequest{SessionName: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSchedulerServiceGenerateInvalidDuration(t *testing.T) {
	f := newSchedulerFixture(t)
	defer f.close()

	_, err := f.svc.Generate(context.Background(), dto.GenerateScheduleRequest{
		SessionName: "Winter 2026",
		Lectures: []dto.LectureInput{
			{Title: "Microeconomics", Instructor: "Dr. A", Group: "G1", Kind: "L", Duration: 60},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidDuration.Code, appErrors.FromError(err).Code)
}

func TestSchedulerServiceGenerateEmptyCatalog(t *testing.T) {
	f := newSchedulerFixture(t)
	defer f.close()
	f.rooms.rooms = nil

	_, err := f.svc.Generate(context.Background(), dto.GenerateScheduleRequest{
		SessionName: "Winter 2026",
		Lectures: []dto.LectureInput{
			{Title: "Microeconomics", Instructor: "Dr. A", Group: "G1", Kind: "L", Duration: 90},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptyCatalog.Code, appErrors.FromError(err).Code)
}

func TestSchedulerServiceSessionNotFound(t *testing.T) {
	f := newSchedulerFixture(t)
	defer f.close()

	_, err := f.svc.GetSchedule(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSchedulerServiceAuditConflictsCachesReport(t *testing.T) {
	f := newSchedulerFixture(t)
	defer f.close()
	f.seedSession("s1")

	first, err := f.svc.AuditConflicts(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", first.SessionID)
	assert.Equal(t, 1, f.metrics.conflictRuns)
	assert.Contains(t, f.cache.entries, "schedule:conflicts:s1")

	// Second audit must come from cache: break the store to prove it.
	f.assignments.listErr = errors.New("db down")
	second, err := f.svc.AuditConflicts(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, 1, f.metrics.conflictRuns)
}

func TestSchedulerServiceOptimize(t *testing.T) {
	f := newSchedulerFixture(t)
	defer f.close()
	f.seedSession("s1")

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Optimize(context.Background(), "s1", dto.OptimizeScheduleRequest{Iterations: 100})
	require.NoError(t, err)
	assert.Equal(t, "s1", resp.SessionID)
	assert.GreaterOrEqual(t, resp.Final.Overall, resp.Initial.Overall)
	assert.Len(t, resp.Assignments, 1)

	assert.Contains(t, f.sessions.statusUpdates, models.SessionOptimized)
	assert.Contains(t, f.cache.deleted, "schedule:conflicts:s1")
	assert.Equal(t, 1, f.metrics.optimizations)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSchedulerServiceOptimizeAsync(t *testing.T) {
	f := newSchedulerFixture(t)
	defer f.close()
	f.seedSession("s1")

	resp, err := f.svc.OptimizeAsync(context.Background(), "s1", dto.OptimizeScheduleRequest{Iterations: 200})
	require.NoError(t, err)
	assert.Equal(t, "queued", resp.Status)
	assert.Equal(t, "s1", resp.SessionID)
	assert.NotEmpty(t, resp.JobID)

	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, "optimize_schedule", f.queue.jobs[0].Type)
	payload, ok := f.queue.jobs[0].Payload.(OptimizeJobPayload)
	require.True(t, ok)
	assert.Equal(t, "s1", payload.SessionID)
	assert.Equal(t, 200, payload.Iterations)
}

func TestSchedulerServiceOptimizeAsyncWithoutQueue(t *testing.T) {
	f := newSchedulerFixture(t)
	defer f.close()
	f.seedSession("s1")
	f.svc.SetQueue(nil)

	_, err := f.svc.OptimizeAsync(context.Background(), "s1", dto.OptimizeScheduleRequest{})
	require.Error(t, err)
}

func TestSchedulerServiceHandleOptimizeJob(t *testing.T) {
	f := newSchedulerFixture(t)
	defer f.close()
	f.seedSession("s1")

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	err := f.svc.HandleOptimizeJob(context.Background(), jobs.Job{
		ID:      "j1",
		Type:    "optimize_schedule",
		Payload: OptimizeJobPayload{SessionID: "s1", Iterations: 10},
	})
	require.NoError(t, err)
	assert.Contains(t, f.sessions.statusUpdates, models.SessionOptimized)
}

func TestSchedulerServiceHandleOptimizeJobBadPayload(t *testing.T) {
	f := newSchedulerFixture(t)
	defer f.close()

	err := f.svc.HandleOptimizeJob(context.Background(), jobs.Job{ID: "j1", Payload: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("job %s", "j1"))
}

func TestSchedulerServiceDeleteSession(t *testing.T) {
	f := newSchedulerFixture(t)
	defer f.close()
	f.seedSession("s1")
	f.cache.entries["schedule:conflicts:s1"] = "{}"

	require.NoError(t, f.svc.DeleteSession(context.Background(), "s1"))
	assert.Equal(t, []string{"s1"}, f.assignments.deleted)
	assert.Equal(t, []string{"s1"}, f.lectures.deleted)
	assert.Equal(t, []string{"s1"}, f.sessions.deleted)
	assert.NotContains(t, f.cache.entries, "schedule:conflicts:s1")
}

func TestSchedulerServiceListSessions(t *testing.T) {
	f := newSchedulerFixture(t)
	defer f.close()
	f.seedSession("s1")

	sessions, pagination, err := f.svc.ListSessions(context.Background(), dto.SessionQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	require.NotNil(t, pagination)
	assert.Equal(t, 1, pagination.Total)
}
