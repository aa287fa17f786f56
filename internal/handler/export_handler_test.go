package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unisched/schedule-builder-api/pkg/errors"
)

type exportMock struct {
	err error
}

func (m *exportMock) TimetableCSV(ctx context.Context, sessionID string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []byte("Day,Time,Course\n"), nil
}

func (m *exportMock) TimetablePDF(ctx context.Context, sessionID string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []byte("%PDF-1.3"), nil
}

func TestExportHandlerTimetableCSV(t *testing.T) {
	h := &ExportHandler{service: &exportMock{}}
	c, w := newSchedulerTestContext(t, http.MethodGet, "/schedules/s1/export/csv", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	h.TimetableCSV(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="timetable_s1.csv"`, w.Header().Get("Content-Disposition"))
	require.Contains(t, w.Body.String(), "Day,Time,Course")
}

func TestExportHandlerTimetablePDF(t *testing.T) {
	h := &ExportHandler{service: &exportMock{}}
	c, w := newSchedulerTestContext(t, http.MethodGet, "/schedules/s1/export/pdf", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	h.TimetablePDF(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="timetable_s1.pdf"`, w.Header().Get("Content-Disposition"))
}

func TestExportHandlerNotFound(t *testing.T) {
	h := &ExportHandler{service: &exportMock{err: appErrors.Clone(appErrors.ErrNotFound, "session not found")}}
	c, w := newSchedulerTestContext(t, http.MethodGet, "/schedules/missing/export/csv", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.TimetableCSV(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}
