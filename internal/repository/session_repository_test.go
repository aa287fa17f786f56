package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisched/schedule-builder-api/internal/models"
)

func TestSessionRepositoryListWithStatusFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "status", "lecture_count", "overall_score", "created_at", "updated_at"}).
		AddRow("s1", "Winter 2026", models.SessionScheduled, 42, 78.5, time.Now(), time.Now())
	mock.ExpectQuery("SELECT .+ FROM schedule_sessions WHERE 1=1 AND status = ").
		WithArgs(models.SessionScheduled).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM schedule_sessions").
		WithArgs(models.SessionScheduled).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	sessions, total, err := repo.List(context.Background(), models.SessionScheduled, 1, 20)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Winter 2026", sessions[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreateWithTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_sessions")).
		WithArgs(sqlmock.AnyArg(), "Winter 2026", models.SessionScheduled, 42, 78.5, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	session := &models.ScheduleSession{Name: "Winter 2026", Status: models.SessionScheduled, LectureCount: 42, OverallScore: 78.5}
	require.NoError(t, repo.CreateWithTx(context.Background(), tx, session))
	require.NoError(t, tx.Commit())
	assert.NotEmpty(t, session.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE schedule_sessions SET status = $1, overall_score = $2, updated_at = $3 WHERE id = $4")).
		WithArgs(models.SessionOptimized, 81.2, sqlmock.AnyArg(), "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "s1", models.SessionOptimized, 81.2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
