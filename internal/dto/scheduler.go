package dto

import (
	"github.com/unisched/schedule-builder-api/internal/engine"
	"github.com/unisched/schedule-builder-api/internal/models"
)

// LectureInput is one course offering submitted for scheduling.
type LectureInput struct {
	Title        string `json:"title" validate:"required"`
	Department   string `json:"department"`
	Semester     string `json:"semester"`
	Level        string `json:"level"`
	AcademicYear string `json:"academic_year"`
	Instructor   string `json:"instructor" validate:"required"`
	Group        string `json:"group" validate:"required"`
	Kind         string `json:"kind" validate:"required,oneof=L U"`
	Requirement  string `json:"requirement" validate:"omitempty,oneof=O Z"`
	Role         string `json:"instructor_role" validate:"omitempty,oneof=P A"`
	Duration     int    `json:"duration_minutes" validate:"required"`
	Preference   string `json:"time_preference" validate:"omitempty,oneof=morning midday evening"`
}

// GenerateScheduleRequest submits a lecture batch for assignment.
type GenerateScheduleRequest struct {
	SessionName string         `json:"session_name" validate:"required"`
	Lectures    []LectureInput `json:"lectures" validate:"required,min=1,dive"`
}

// GenerateScheduleResponse reports the assignment pass outcome.
type GenerateScheduleResponse struct {
	SessionID   string                      `json:"session_id"`
	Assignments []models.Assignment         `json:"assignments"`
	Unscheduled []engine.UnscheduledLecture `json:"unscheduled"`
	Score       engine.ScoreBreakdown       `json:"score"`
}

// ConflictReportResponse wraps a detector audit with its severity.
type ConflictReportResponse struct {
	SessionID string                `json:"session_id"`
	Report    engine.ConflictReport `json:"report"`
	Total     int                   `json:"total_conflicts"`
	Severity  engine.Severity       `json:"severity"`
}

// OptimizeScheduleRequest tunes one optimization run.
type OptimizeScheduleRequest struct {
	Iterations int  `json:"iterations" validate:"omitempty,min=1,max=10000"`
	Async      bool `json:"async"`
}

// OptimizeScheduleResponse reports the local-search outcome.
type OptimizeScheduleResponse struct {
	SessionID   string                `json:"session_id"`
	Assignments []models.Assignment   `json:"assignments"`
	Initial     engine.ScoreBreakdown `json:"initial_score"`
	Final       engine.ScoreBreakdown `json:"final_score"`
	Iterations  int                   `json:"iterations"`
	Accepted    int                   `json:"accepted_mutations"`
}

// OptimizeJobResponse acknowledges an asynchronous optimization run.
type OptimizeJobResponse struct {
	JobID     string `json:"job_id"`
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// SessionQuery filters session listings.
type SessionQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
}
