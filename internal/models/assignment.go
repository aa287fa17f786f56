package models

import "time"

// Assignment binds one lecture to exactly one time slot and classroom. The
// instructor is denormalised from the lecture for fast conflict lookups.
type Assignment struct {
	ID          string    `db:"id" json:"id"`
	SessionID   string    `db:"session_id" json:"session_id"`
	LectureID   string    `db:"lecture_id" json:"lecture_id"`
	TimeSlotID  string    `db:"time_slot_id" json:"time_slot_id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	Instructor  string    `db:"instructor" json:"instructor"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
