package models

// Group is a top-level student cohort.
type Group struct {
	ID           string   `db:"id" json:"id"`
	Subgroups    []string `db:"-" json:"subgroups,omitempty"`
	LectureCount int      `db:"lecture_count" json:"lecture_count"`
	DailyLimit   int      `db:"daily_limit" json:"daily_limit"`
}

// Subgroup is a dotted refinement of a group; it holds an explicit reference
// to its parent instead of relying on string splitting.
type Subgroup struct {
	ID           string `db:"id" json:"id"`
	ParentGroup  string `db:"parent_group" json:"parent_group"`
	LectureCount int    `db:"lecture_count" json:"lecture_count"`
	DailyLimit   int    `db:"daily_limit" json:"daily_limit"`
}

// Department groups lectures for cohesion reporting.
type Department struct {
	Code             string `db:"code" json:"code"`
	Name             string `db:"name" json:"name"`
	LectureCount     int    `db:"lecture_count" json:"lecture_count"`
	CohesionPriority int    `db:"cohesion_priority" json:"cohesion_priority"`
}
