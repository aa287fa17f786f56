package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisched/schedule-builder-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestClassroomRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "capacity", "equipment", "status"}).
		AddRow("room-1", "Amphitheatre A", 120, "projector", models.StatusAvailable).
		AddRow("room-2", "Lab 2", 35, "", models.StatusUnavailable)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, capacity, equipment, status FROM classrooms ORDER BY name ASC")).
		WillReturnRows(rows)

	classrooms, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, classrooms, 2)
	assert.Equal(t, 120, classrooms[0].Capacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryListAvailable(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "capacity", "equipment", "status"}).
		AddRow("room-1", "Amphitheatre A", 120, "", models.StatusAvailable)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, capacity, equipment, status FROM classrooms WHERE status = $1 ORDER BY name ASC")).
		WithArgs(models.StatusAvailable).
		WillReturnRows(rows)

	classrooms, err := repo.ListAvailable(context.Background())
	require.NoError(t, err)
	assert.Len(t, classrooms, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO classrooms")).
		WithArgs(sqlmock.AnyArg(), "Lab 3", 40, "", models.StatusAvailable).
		WillReturnResult(sqlmock.NewResult(1, 1))

	classroom := &models.Classroom{Name: "Lab 3", Capacity: 40}
	require.NoError(t, repo.Create(context.Background(), classroom))
	assert.NotEmpty(t, classroom.ID)
	assert.Equal(t, models.StatusAvailable, classroom.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM classrooms WHERE id = $1")).
		WithArgs("room-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "room-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
