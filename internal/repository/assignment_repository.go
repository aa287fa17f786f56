package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unisched/schedule-builder-api/internal/models"
)

const assignmentColumns = `id, session_id, lecture_id, time_slot_id, classroom_id, instructor, created_at, updated_at`

// AssignmentRepository provides persistence for schedule assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListBySession returns every assignment of a session.
func (r *AssignmentRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE session_id = $1 ORDER BY time_slot_id ASC, classroom_id ASC`, assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, sessionID); err != nil {
		return nil, fmt.Errorf("list assignments by session: %w", err)
	}
	return assignments, nil
}

// ReplaceForSessionWithTx deletes the session's assignments and inserts the
// new list inside the given transaction. Regeneration is replace, not merge.
func (r *AssignmentRepository) ReplaceForSessionWithTx(ctx context.Context, tx *sqlx.Tx, sessionID string, assignments []models.Assignment) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clear session assignments: %w", err)
	}
	return r.bulkInsert(ctx, tx, assignments)
}

// BulkCreateWithTx inserts assignments using an existing transaction.
func (r *AssignmentRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, assignments []models.Assignment) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	return r.bulkInsert(ctx, tx, assignments)
}

func (r *AssignmentRepository) bulkInsert(ctx context.Context, exec sqlx.ExtContext, assignments []models.Assignment) error {
	query := fmt.Sprintf(`INSERT INTO assignments (%s) VALUES (:id, :session_id, :lecture_id, :time_slot_id, :classroom_id, :instructor, :created_at, :updated_at)`, assignmentColumns)
	now := time.Now().UTC()
	for i := range assignments {
		payload := assignments[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.UpdatedAt = now
		if _, err := sqlx.NamedExecContext(ctx, exec, query, &payload); err != nil {
			return fmt.Errorf("bulk insert assignment: %w", err)
		}
		assignments[i] = payload
	}
	return nil
}

// DeleteBySession removes every assignment of a session.
func (r *AssignmentRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	const query = `DELETE FROM assignments WHERE session_id = $1`
	if _, err := r.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("delete assignments by session: %w", err)
	}
	return nil
}
