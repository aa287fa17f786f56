package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/unisched/schedule-builder-api/internal/models"
)

// TimeSlotRepository provides persistence for time slots.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new time slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// List returns every time slot ordered by id.
func (r *TimeSlotRepository) List(ctx context.Context) ([]models.TimeSlot, error) {
	const query = `SELECT id, day, start_time, end_time, duration_minutes, band, status FROM time_slots ORDER BY id ASC`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// FindByID loads a time slot by id.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	const query = `SELECT id, day, start_time, end_time, duration_minutes, band, status FROM time_slots WHERE id = $1`
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create stores a new time slot record.
func (r *TimeSlotRepository) Create(ctx context.Context, slot *models.TimeSlot) error {
	if slot.Status == "" {
		slot.Status = models.StatusAvailable
	}
	const query = `INSERT INTO time_slots (id, day, start_time, end_time, duration_minutes, band, status) VALUES (:id, :day, :start_time, :end_time, :duration_minutes, :band, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

// UpdateStatus toggles a slot's availability.
func (r *TimeSlotRepository) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `UPDATE time_slots SET status = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, status, id); err != nil {
		return fmt.Errorf("update time slot status: %w", err)
	}
	return nil
}

// BulkCreateWithTx inserts slots using an existing transaction, skipping ids
// that already exist.
func (r *TimeSlotRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, slots []models.TimeSlot) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	const query = `INSERT INTO time_slots (id, day, start_time, end_time, duration_minutes, band, status) VALUES (:id, :day, :start_time, :end_time, :duration_minutes, :band, :status) ON CONFLICT (id) DO NOTHING`
	for i := range slots {
		if _, err := sqlx.NamedExecContext(ctx, tx, query, &slots[i]); err != nil {
			return fmt.Errorf("bulk insert time slot: %w", err)
		}
	}
	return nil
}

// Delete removes a time slot record.
func (r *TimeSlotRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM time_slots WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete time slot: %w", err)
	}
	return nil
}
