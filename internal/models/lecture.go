package models

import "strings"

// LectureKind distinguishes lecture sessions from exercise sessions.
type LectureKind string

const (
	KindLecture  LectureKind = "L"
	KindExercise LectureKind = "U"
)

// Label expands the single-letter code for human-facing output.
func (k LectureKind) Label() string {
	switch k {
	case KindLecture:
		return "Lecture"
	case KindExercise:
		return "Exercise"
	default:
		return string(k)
	}
}

// Requirement marks a course as obligatory or elective.
type Requirement string

const (
	RequirementObligatory Requirement = "O"
	RequirementElective   Requirement = "Z"
)

// InstructorRole distinguishes lead professors from teaching assistants.
type InstructorRole string

const (
	RoleLead      InstructorRole = "P"
	RoleAssistant InstructorRole = "A"
)

// ValidDurations lists the accepted lecture lengths in minutes. 44 and 89 are
// tolerated near-duplicates of 45 and 90 found in legacy imports.
var ValidDurations = map[int]bool{44: true, 45: true, 89: true, 90: true, 135: true}

// NormalizeDuration folds the legacy 44/89 values onto the canonical grid.
func NormalizeDuration(minutes int) int {
	switch minutes {
	case 44:
		return 45
	case 89:
		return 90
	default:
		return minutes
	}
}

// Lecture is one academic course offering inside an import session.
type Lecture struct {
	ID           string         `db:"id" json:"id"`
	SessionID    string         `db:"session_id" json:"session_id"`
	Title        string         `db:"title" json:"title"`
	Department   string         `db:"department" json:"department"`
	Semester     string         `db:"semester" json:"semester"`
	Level        string         `db:"level" json:"level"`
	AcademicYear string         `db:"academic_year" json:"academic_year"`
	Instructor   string         `db:"instructor" json:"instructor"`
	Group        string         `db:"group_code" json:"group"`
	Kind         LectureKind    `db:"kind" json:"kind"`
	Requirement  Requirement    `db:"requirement" json:"requirement"`
	Role         InstructorRole `db:"instructor_role" json:"instructor_role"`
	Duration     int            `db:"duration_minutes" json:"duration_minutes"`
	Preference   Band           `db:"time_preference" json:"time_preference,omitempty"`
	RelatedID    string         `db:"related_lecture_id" json:"related_lecture_id,omitempty"`
}

// SplitGroup derives the primary-group key and, for dotted codes, the subgroup
// key from a raw group code. The primary key is the code with its last
// dot-segment removed ("G1.2" -> "G1", "Gr. 1.2" -> "Gr. 1"); subgroup is the
// full code when a dot is present, otherwise empty.
func SplitGroup(code string) (primary, subgroup string) {
	idx := strings.LastIndex(code, ".")
	if idx < 0 {
		return code, ""
	}
	return code[:idx], code
}

// PrimaryGroup returns the occupancy key for the lecture's top-level cohort.
func (l Lecture) PrimaryGroup() string {
	primary, _ := SplitGroup(l.Group)
	return primary
}

// Subgroup returns the subgroup occupancy key, or "" for undotted codes.
func (l Lecture) Subgroup() string {
	_, sub := SplitGroup(l.Group)
	return sub
}
