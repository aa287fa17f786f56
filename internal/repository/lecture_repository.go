package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unisched/schedule-builder-api/internal/models"
)

const lectureColumns = `id, session_id, title, department, semester, level, academic_year, instructor, group_code, kind, requirement, instructor_role, duration_minutes, time_preference, related_lecture_id`

// LectureRepository provides persistence for imported lectures.
type LectureRepository struct {
	db *sqlx.DB
}

// NewLectureRepository creates a new lecture repository.
func NewLectureRepository(db *sqlx.DB) *LectureRepository {
	return &LectureRepository{db: db}
}

// ListBySession returns every lecture of an import session.
func (r *LectureRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Lecture, error) {
	query := fmt.Sprintf(`SELECT %s FROM lectures WHERE session_id = $1 ORDER BY title ASC`, lectureColumns)
	var lectures []models.Lecture
	if err := r.db.SelectContext(ctx, &lectures, query, sessionID); err != nil {
		return nil, fmt.Errorf("list lectures by session: %w", err)
	}
	return lectures, nil
}

// BulkCreateWithTx inserts a lecture batch using an existing transaction.
func (r *LectureRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, lectures []models.Lecture) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	query := fmt.Sprintf(`INSERT INTO lectures (%s) VALUES (:id, :session_id, :title, :department, :semester, :level, :academic_year, :instructor, :group_code, :kind, :requirement, :instructor_role, :duration_minutes, :time_preference, :related_lecture_id)`, lectureColumns)
	for i := range lectures {
		if lectures[i].ID == "" {
			lectures[i].ID = uuid.NewString()
		}
		if _, err := sqlx.NamedExecContext(ctx, tx, query, &lectures[i]); err != nil {
			return fmt.Errorf("bulk insert lecture: %w", err)
		}
	}
	return nil
}

// DeleteBySession removes every lecture of a session.
func (r *LectureRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	const query = `DELETE FROM lectures WHERE session_id = $1`
	if _, err := r.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("delete lectures by session: %w", err)
	}
	return nil
}
