package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unisched/schedule-builder-api/internal/models"
)

const sessionColumns = `id, name, status, lecture_count, overall_score, created_at, updated_at`

// SessionRepository provides persistence for schedule sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// List returns sessions ordered newest first, with pagination.
func (r *SessionRepository) List(ctx context.Context, status string, page, size int) ([]models.ScheduleSession, int, error) {
	base := "FROM schedule_sessions WHERE 1=1"
	var args []interface{}
	if status != "" {
		base += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, status)
	}

	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", sessionColumns, base, size, offset)
	var sessions []models.ScheduleSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}
	return sessions, total, nil
}

// FindByID loads a session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.ScheduleSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_sessions WHERE id = $1`, sessionColumns)
	var session models.ScheduleSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateWithTx stores a new session inside the given transaction.
func (r *SessionRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, session *models.ScheduleSession) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	const query = `INSERT INTO schedule_sessions (id, name, status, lecture_count, overall_score, created_at, updated_at) VALUES (:id, :name, :status, :lecture_count, :overall_score, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, tx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// UpdateStatus records the session lifecycle state and latest overall score.
func (r *SessionRepository) UpdateStatus(ctx context.Context, id, status string, overallScore float64) error {
	const query = `UPDATE schedule_sessions SET status = $1, overall_score = $2, updated_at = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, status, overallScore, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}

// Delete removes a session record.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM schedule_sessions WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
