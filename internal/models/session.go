package models

import "time"

// Session status lifecycle.
const (
	SessionDraft     = "draft"
	SessionScheduled = "scheduled"
	SessionOptimized = "optimized"
)

// ScheduleSession groups one batch of imported lectures and the assignments
// generated for them. Regenerating a session replaces its assignments.
type ScheduleSession struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Status       string    `db:"status" json:"status"`
	LectureCount int       `db:"lecture_count" json:"lecture_count"`
	OverallScore float64   `db:"overall_score" json:"overall_score"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
