package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/unisched/schedule-builder-api/internal/dto"
	"github.com/unisched/schedule-builder-api/internal/engine"
	"github.com/unisched/schedule-builder-api/internal/models"
	appErrors "github.com/unisched/schedule-builder-api/pkg/errors"
)

type schedulerMock struct {
	capturedGenerate dto.GenerateScheduleRequest
	capturedQuery    dto.SessionQuery
	capturedOptimize dto.OptimizeScheduleRequest
	getErr           error
	deletedSession   string
}

func (m *schedulerMock) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	m.capturedGenerate = req
	return &dto.GenerateScheduleResponse{SessionID: "s1"}, nil
}

func (m *schedulerMock) GetSchedule(ctx context.Context, sessionID string) ([]models.Assignment, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return []models.Assignment{{ID: "a1", SessionID: sessionID}}, nil
}

func (m *schedulerMock) ListSessions(ctx context.Context, query dto.SessionQuery) ([]models.ScheduleSession, *models.Pagination, error) {
	m.capturedQuery = query
	return []models.ScheduleSession{{ID: "s1"}}, models.NewPagination(query.Page, query.PageSize, 1), nil
}

func (m *schedulerMock) DeleteSession(ctx context.Context, sessionID string) error {
	m.deletedSession = sessionID
	return nil
}

func (m *schedulerMock) AuditConflicts(ctx context.Context, sessionID string) (*dto.ConflictReportResponse, error) {
	return &dto.ConflictReportResponse{SessionID: sessionID, Severity: engine.SeverityNone}, nil
}

func (m *schedulerMock) Score(ctx context.Context, sessionID string) (*engine.ScoreBreakdown, error) {
	return &engine.ScoreBreakdown{Overall: 72.5}, nil
}

func (m *schedulerMock) Optimize(ctx context.Context, sessionID string, req dto.OptimizeScheduleRequest) (*dto.OptimizeScheduleResponse, error) {
	m.capturedOptimize = req
	return &dto.OptimizeScheduleResponse{SessionID: sessionID}, nil
}

func (m *schedulerMock) OptimizeAsync(ctx context.Context, sessionID string, req dto.OptimizeScheduleRequest) (*dto.OptimizeJobResponse, error) {
	m.capturedOptimize = req
	return &dto.OptimizeJobResponse{JobID: "j1", SessionID: sessionID, Status: "queued"}, nil
}

func newSchedulerTestContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, target, nil)
	}
	c.Request = req
	return c, w
}

func TestSchedulerHandlerGenerate(t *testing.T) {
	mockSvc := &schedulerMock{}
	h := &SchedulerHandler{service: mockSvc}
	payload := []byte(`{"session_name":"Winter 2026","lectures":[{"title":"Microeconomics","instructor":"Dr. A","group":"G1","kind":"L","duration_minutes":90}]}`)
	c, w := newSchedulerTestContext(t, http.MethodPost, "/schedules", payload)

	h.Generate(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "Winter 2026", mockSvc.capturedGenerate.SessionName)
	require.Len(t, mockSvc.capturedGenerate.Lectures, 1)
	require.Equal(t, "Microeconomics", mockSvc.capturedGenerate.Lectures[0].Title)
}

func TestSchedulerHandlerGenerateMalformedBody(t *testing.T) {
	h := &SchedulerHandler{service: &schedulerMock{}}
	c, w := newSchedulerTestContext(t, http.MethodPost, "/schedules", []byte(`{"session_name":`))

	h.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSchedulerHandlerGetScheduleNotFound(t *testing.T) {
	mockSvc := &schedulerMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "session not found")}
	h := &SchedulerHandler{service: mockSvc}
	c, w := newSchedulerTestContext(t, http.MethodGet, "/schedules/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.GetSchedule(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, appErrors.ErrNotFound.Code, envelope.Error.Code)
}

func TestSchedulerHandlerListSessionsQuery(t *testing.T) {
	mockSvc := &schedulerMock{}
	h := &SchedulerHandler{service: mockSvc}
	c, w := newSchedulerTestContext(t, http.MethodGet, "/schedules?page=2&page_size=5&status=optimized", nil)

	h.ListSessions(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, mockSvc.capturedQuery.Page)
	require.Equal(t, 5, mockSvc.capturedQuery.PageSize)
	require.Equal(t, "optimized", mockSvc.capturedQuery.Status)
}

func TestSchedulerHandlerDeleteSession(t *testing.T) {
	mockSvc := &schedulerMock{}
	h := &SchedulerHandler{service: mockSvc}
	c, w := newSchedulerTestContext(t, http.MethodDelete, "/schedules/s1", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	h.DeleteSession(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "s1", mockSvc.deletedSession)
}

func TestSchedulerHandlerConflicts(t *testing.T) {
	h := &SchedulerHandler{service: &schedulerMock{}}
	c, w := newSchedulerTestContext(t, http.MethodGet, "/schedules/s1/conflicts", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	h.Conflicts(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"session_id":"s1"`)
}

func TestSchedulerHandlerOptimizeSync(t *testing.T) {
	mockSvc := &schedulerMock{}
	h := &SchedulerHandler{service: mockSvc}
	c, w := newSchedulerTestContext(t, http.MethodPost, "/schedules/s1/optimize", []byte(`{"iterations":250}`))
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	h.Optimize(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 250, mockSvc.capturedOptimize.Iterations)
	require.False(t, mockSvc.capturedOptimize.Async)
}

func TestSchedulerHandlerOptimizeAsync(t *testing.T) {
	mockSvc := &schedulerMock{}
	h := &SchedulerHandler{service: mockSvc}
	c, w := newSchedulerTestContext(t, http.MethodPost, "/schedules/s1/optimize", []byte(`{"iterations":250,"async":true}`))
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	h.Optimize(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Contains(t, w.Body.String(), `"status":"queued"`)
}

func TestSchedulerHandlerOptimizeEmptyBody(t *testing.T) {
	mockSvc := &schedulerMock{}
	h := &SchedulerHandler{service: mockSvc}
	c, w := newSchedulerTestContext(t, http.MethodPost, "/schedules/s1/optimize", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	h.Optimize(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, mockSvc.capturedOptimize.Iterations)
}
