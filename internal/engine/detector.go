package engine

import (
	"fmt"
	"sort"

	"github.com/unisched/schedule-builder-api/internal/models"
)

// ConflictType tags one audit category.
type ConflictType string

const (
	ConflictClassroom       ConflictType = "classroom_conflict"
	ConflictInstructor      ConflictType = "professor_conflict"
	ConflictGroup           ConflictType = "group_conflict"
	ConflictSubgroup        ConflictType = "subgroup_conflict"
	ConflictTimeSlot        ConflictType = "time_slot_conflict"
	ConflictLectureExercise ConflictType = "lecture_exercise_conflict"
	ConflictCapacity        ConflictType = "capacity_conflict"
	ConflictDepartmental    ConflictType = "departmental_conflict"
)

// Conflict is one structured audit finding.
type Conflict struct {
	Type          ConflictType `json:"type"`
	Resource      string       `json:"resource"`
	AssignmentIDs []string     `json:"assignment_ids"`
	Description   string       `json:"description"`
}

// Severity classifies a report by raw conflict count.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ConflictReport holds the findings of one audit pass, per category.
type ConflictReport struct {
	Classroom       []Conflict `json:"classroom_conflicts"`
	Instructor      []Conflict `json:"professor_conflicts"`
	Group           []Conflict `json:"group_conflicts"`
	Subgroup        []Conflict `json:"subgroup_conflicts"`
	TimeSlot        []Conflict `json:"time_slot_conflicts"`
	LectureExercise []Conflict `json:"lecture_exercise_conflicts"`
	Capacity        []Conflict `json:"capacity_conflicts"`
	Departmental    []Conflict `json:"departmental_conflicts"`
}

// Total counts findings across every category.
func (r ConflictReport) Total() int {
	return len(r.Classroom) + len(r.Instructor) + len(r.Group) + len(r.Subgroup) +
		len(r.TimeSlot) + len(r.LectureExercise) + len(r.Capacity) + len(r.Departmental)
}

// HardCount counts the categories whose violation invalidates a schedule.
// Pairing anomalies and departmental warnings are soft.
func (r ConflictReport) HardCount() int {
	return len(r.Classroom) + len(r.Instructor) + len(r.Group) + len(r.Subgroup) + len(r.TimeSlot)
}

// Severity maps the total count onto the fixed thresholds.
func (r ConflictReport) Severity() Severity {
	switch total := r.Total(); {
	case total == 0:
		return SeverityNone
	case total <= 5:
		return SeverityLow
	case total <= 15:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// Detector re-audits a finished assignment list across every conflict
// category. It recomputes occupancy from scratch and never consults the
// scheduler's internal state.
type Detector struct{}

// NewDetector constructs a detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect runs every category over the assignments. Audits always run to
// completion, including over partial or corrupted data.
func (d *Detector) Detect(assignments []models.Assignment, lectures []models.Lecture, catalog *Catalog) ConflictReport {
	lectureByID := indexLectures(lectures)
	return ConflictReport{
		Classroom:       d.classroomConflicts(assignments),
		Instructor:      d.instructorConflicts(assignments),
		Group:           d.groupConflicts(assignments, lectureByID, false),
		Subgroup:        d.groupConflicts(assignments, lectureByID, true),
		TimeSlot:        d.timeSlotConflicts(assignments, lectureByID, catalog),
		LectureExercise: d.pairingConflicts(assignments, lectureByID),
		Capacity:        d.capacityConflicts(),
		Departmental:    d.departmentalWarnings(assignments, lectureByID, catalog),
	}
}

func indexLectures(lectures []models.Lecture) map[string]models.Lecture {
	byID := make(map[string]models.Lecture, len(lectures))
	for _, lecture := range lectures {
		byID[lecture.ID] = lecture
	}
	return byID
}

type pairKey struct {
	resource string
	slotID   string
}

func (d *Detector) classroomConflicts(assignments []models.Assignment) []Conflict {
	seen := make(map[pairKey]models.Assignment)
	conflicts := make([]Conflict, 0)
	for _, a := range assignments {
		key := pairKey{a.ClassroomID, a.TimeSlotID}
		if prior, ok := seen[key]; ok {
			conflicts = append(conflicts, Conflict{
				Type:          ConflictClassroom,
				Resource:      a.ClassroomID,
				AssignmentIDs: []string{prior.ID, a.ID},
				Description:   fmt.Sprintf("classroom %s double-booked at time slot %s", a.ClassroomID, a.TimeSlotID),
			})
			continue
		}
		seen[key] = a
	}
	return conflicts
}

func (d *Detector) instructorConflicts(assignments []models.Assignment) []Conflict {
	seen := make(map[pairKey]models.Assignment)
	conflicts := make([]Conflict, 0)
	for _, a := range assignments {
		key := pairKey{a.Instructor, a.TimeSlotID}
		if prior, ok := seen[key]; ok {
			conflicts = append(conflicts, Conflict{
				Type:          ConflictInstructor,
				Resource:      a.Instructor,
				AssignmentIDs: []string{prior.ID, a.ID},
				Description:   fmt.Sprintf("professor %s double-booked at time slot %s", a.Instructor, a.TimeSlotID),
			})
			continue
		}
		seen[key] = a
	}
	return conflicts
}

// groupConflicts audits either primary groups or subgroups depending on the
// flag; the two categories are reported separately.
func (d *Detector) groupConflicts(assignments []models.Assignment, lectureByID map[string]models.Lecture, subgroups bool) []Conflict {
	seen := make(map[pairKey]models.Assignment)
	conflicts := make([]Conflict, 0)
	conflictType := ConflictGroup
	if subgroups {
		conflictType = ConflictSubgroup
	}
	for _, a := range assignments {
		lecture, ok := lectureByID[a.LectureID]
		if !ok {
			continue
		}
		groupKey := lecture.PrimaryGroup()
		if subgroups {
			if groupKey = lecture.Subgroup(); groupKey == "" {
				continue
			}
		}
		key := pairKey{groupKey, a.TimeSlotID}
		if prior, ok := seen[key]; ok {
			label := "group"
			if subgroups {
				label = "subgroup"
			}
			conflicts = append(conflicts, Conflict{
				Type:          conflictType,
				Resource:      groupKey,
				AssignmentIDs: []string{prior.ID, a.ID},
				Description:   fmt.Sprintf("%s %s double-booked at time slot %s", label, groupKey, a.TimeSlotID),
			})
			continue
		}
		seen[key] = a
	}
	return conflicts
}

func (d *Detector) timeSlotConflicts(assignments []models.Assignment, lectureByID map[string]models.Lecture, catalog *Catalog) []Conflict {
	conflicts := make([]Conflict, 0)
	for _, a := range assignments {
		lecture, ok := lectureByID[a.LectureID]
		if !ok {
			continue
		}
		slot, ok := catalog.Slot(a.TimeSlotID)
		if !ok {
			conflicts = append(conflicts, Conflict{
				Type:          ConflictTimeSlot,
				Resource:      a.TimeSlotID,
				AssignmentIDs: []string{a.ID},
				Description:   fmt.Sprintf("assignment %s references unknown time slot %s", a.ID, a.TimeSlotID),
			})
			continue
		}
		if slot.Duration < lecture.Duration {
			conflicts = append(conflicts, Conflict{
				Type:          ConflictTimeSlot,
				Resource:      a.TimeSlotID,
				AssignmentIDs: []string{a.ID},
				Description: fmt.Sprintf("lecture %q duration (%d min) exceeds time slot %s duration (%d min)",
					lecture.Title, lecture.Duration, slot.ID, slot.Duration),
			})
		}
	}
	return conflicts
}

// pairingConflicts flags exercises scheduled without a lecture of the same
// title. Temporal ordering between the pair is not audited.
func (d *Detector) pairingConflicts(assignments []models.Assignment, lectureByID map[string]models.Lecture) []Conflict {
	lectureTitles := make(map[string]struct{})
	type exerciseEntry struct {
		title        string
		assignmentID string
	}
	var exercises []exerciseEntry
	for _, a := range assignments {
		lecture, ok := lectureByID[a.LectureID]
		if !ok {
			continue
		}
		switch lecture.Kind {
		case models.KindLecture:
			lectureTitles[lecture.Title] = struct{}{}
		case models.KindExercise:
			exercises = append(exercises, exerciseEntry{title: lecture.Title, assignmentID: a.ID})
		}
	}

	conflicts := make([]Conflict, 0)
	for _, exercise := range exercises {
		if _, ok := lectureTitles[exercise.title]; ok {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Type:          ConflictLectureExercise,
			Resource:      exercise.title,
			AssignmentIDs: []string{exercise.assignmentID},
			Description:   fmt.Sprintf("exercise %q scheduled without a corresponding lecture", exercise.title),
		})
	}
	return conflicts
}

// capacityConflicts is declared but produces nothing: enrollment context is
// not available at this call site. Accepted incompleteness, not a bug.
func (d *Detector) capacityConflicts() []Conflict {
	return []Conflict{}
}

// departmentalWarnings flags departments whose scheduled lectures are spread
// thin: more than 5 lectures across more than 3 distinct weekdays. Soft
// warning only.
func (d *Detector) departmentalWarnings(assignments []models.Assignment, lectureByID map[string]models.Lecture, catalog *Catalog) []Conflict {
	type deptStats struct {
		count int
		days  map[string]struct{}
		ids   []string
	}
	byDept := make(map[string]*deptStats)
	for _, a := range assignments {
		lecture, ok := lectureByID[a.LectureID]
		if !ok {
			continue
		}
		stats := byDept[lecture.Department]
		if stats == nil {
			stats = &deptStats{days: make(map[string]struct{})}
			byDept[lecture.Department] = stats
		}
		stats.count++
		stats.ids = append(stats.ids, a.ID)
		if slot, ok := catalog.Slot(a.TimeSlotID); ok {
			stats.days[slot.Day] = struct{}{}
		}
	}

	depts := make([]string, 0, len(byDept))
	for dept := range byDept {
		depts = append(depts, dept)
	}
	sort.Strings(depts)

	conflicts := make([]Conflict, 0)
	for _, dept := range depts {
		stats := byDept[dept]
		if stats.count > 5 && len(stats.days) > 3 {
			conflicts = append(conflicts, Conflict{
				Type:          ConflictDepartmental,
				Resource:      dept,
				AssignmentIDs: stats.ids,
				Description: fmt.Sprintf("department %s has %d lectures spread across %d days (may affect cohesion)",
					dept, stats.count, len(stats.days)),
			})
		}
	}
	return conflicts
}
