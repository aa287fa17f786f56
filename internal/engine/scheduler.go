package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/unisched/schedule-builder-api/internal/models"
)

// SchedulingState tracks resource occupancy for one scheduling run: for each
// room, instructor, primary group and subgroup, the set of time-slot ids
// already booked. A state instance is owned by a single run and must never be
// shared across concurrent sessions.
type SchedulingState struct {
	rooms       map[string]map[string]struct{}
	instructors map[string]map[string]struct{}
	groups      map[string]map[string]struct{}
	subgroups   map[string]map[string]struct{}
}

// NewSchedulingState returns empty occupancy indices.
func NewSchedulingState() *SchedulingState {
	return &SchedulingState{
		rooms:       make(map[string]map[string]struct{}),
		instructors: make(map[string]map[string]struct{}),
		groups:      make(map[string]map[string]struct{}),
		subgroups:   make(map[string]map[string]struct{}),
	}
}

func occupied(index map[string]map[string]struct{}, key, slotID string) bool {
	_, ok := index[key][slotID]
	return ok
}

func reserve(index map[string]map[string]struct{}, key, slotID string) {
	if index[key] == nil {
		index[key] = make(map[string]struct{})
	}
	index[key][slotID] = struct{}{}
}

// Commit records the booked slot in every index relevant to the lecture.
func (s *SchedulingState) Commit(lecture models.Lecture, roomID, slotID string) {
	reserve(s.rooms, roomID, slotID)
	reserve(s.instructors, lecture.Instructor, slotID)
	reserve(s.groups, lecture.PrimaryGroup(), slotID)
	if sub := lecture.Subgroup(); sub != "" {
		reserve(s.subgroups, sub, slotID)
	}
}

// UnscheduledLecture records a lecture the pass could not place.
type UnscheduledLecture struct {
	Lecture models.Lecture `json:"lecture"`
	Reason  string         `json:"reason"`
}

// ScheduleResult is the outcome of one full assignment pass. Partial results
// are always produced; one unplaceable lecture never aborts the batch.
type ScheduleResult struct {
	Assignments []models.Assignment  `json:"assignments"`
	Unscheduled []UnscheduledLecture `json:"unscheduled"`
}

// Scheduler performs the greedy single-pass assignment.
type Scheduler struct {
	combinations *CombinationGenerator
	minCapacity  int
	now          func() time.Time
}

// NewScheduler builds a scheduler; minCapacity <= 0 selects the default floor.
func NewScheduler(minCapacity int) *Scheduler {
	if minCapacity <= 0 {
		minCapacity = DefaultMinRoomCapacity
	}
	return &Scheduler{
		combinations: NewCombinationGenerator(minCapacity),
		minCapacity:  minCapacity,
		now:          time.Now,
	}
}

// Run assigns each lecture to its best feasible candidate, or records it as
// unscheduled with a human-readable reason. Deterministic given the same
// input ordering and catalog.
func (s *Scheduler) Run(sessionID string, lectures []models.Lecture, catalog *Catalog) ScheduleResult {
	state := NewSchedulingState()
	result := ScheduleResult{
		Assignments: make([]models.Assignment, 0, len(lectures)),
		Unscheduled: make([]UnscheduledLecture, 0),
	}

	rooms := catalog.AvailableRooms()
	slots := catalog.AvailableSlots()

	for _, lecture := range sortLectures(lectures) {
		assignment, reason := s.place(sessionID, lecture, rooms, slots, state)
		if assignment != nil {
			result.Assignments = append(result.Assignments, *assignment)
			continue
		}
		result.Unscheduled = append(result.Unscheduled, UnscheduledLecture{Lecture: lecture, Reason: reason})
	}
	return result
}

// sortLectures orders hardest-to-place first: lectures before exercises,
// obligatory before elective, then morning < midday < evening by preference
// (midday when unspecified). The sort is stable.
func sortLectures(lectures []models.Lecture) []models.Lecture {
	sorted := make([]models.Lecture, len(lectures))
	copy(sorted, lectures)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sortKey(sorted[i]), sortKey(sorted[j])
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return sorted
}

func sortKey(lecture models.Lecture) [3]int {
	kind := 0
	if lecture.Kind != models.KindLecture {
		kind = 1
	}
	requirement := 0
	if lecture.Requirement != models.RequirementObligatory {
		requirement = 1
	}
	band := 1
	switch lecture.Preference {
	case models.BandMorning:
		band = 0
	case models.BandEvening:
		band = 2
	}
	return [3]int{kind, requirement, band}
}

func (s *Scheduler) place(sessionID string, lecture models.Lecture, rooms []models.Classroom, slots []models.TimeSlot, state *SchedulingState) (*models.Assignment, string) {
	candidates := s.combinations.Candidates(lecture, rooms, slots)
	if len(candidates) == 0 {
		return nil, fmt.Sprintf("no feasible classroom/time-slot combination for lecture %q", lecture.Title)
	}

	firstReason := ""
	for _, candidate := range candidates {
		reason := s.checkConstraints(lecture, candidate, state)
		if reason == "" {
			now := s.now().UTC()
			state.Commit(lecture, candidate.Room.ID, candidate.Slot.ID)
			return &models.Assignment{
				ID:          uuid.NewString(),
				SessionID:   sessionID,
				LectureID:   lecture.ID,
				TimeSlotID:  candidate.Slot.ID,
				ClassroomID: candidate.Room.ID,
				Instructor:  lecture.Instructor,
				CreatedAt:   now,
				UpdatedAt:   now,
			}, ""
		}
		if firstReason == "" {
			firstReason = reason
		}
	}
	return nil, firstReason
}

// checkConstraints evaluates the hard constraints in order and returns the
// first violation, or "" when the candidate is admissible.
func (s *Scheduler) checkConstraints(lecture models.Lecture, candidate Candidate, state *SchedulingState) string {
	roomID, slotID := candidate.Room.ID, candidate.Slot.ID

	if occupied(state.rooms, roomID, slotID) {
		return fmt.Sprintf("classroom %s already booked at time slot %s", roomID, slotID)
	}
	if occupied(state.instructors, lecture.Instructor, slotID) {
		return fmt.Sprintf("instructor %s already teaching at time slot %s", lecture.Instructor, slotID)
	}
	if occupied(state.groups, lecture.PrimaryGroup(), slotID) {
		return fmt.Sprintf("group %s already has a lecture at time slot %s", lecture.PrimaryGroup(), slotID)
	}
	if sub := lecture.Subgroup(); sub != "" {
		if occupied(state.subgroups, sub, slotID) {
			return fmt.Sprintf("subgroup %s already has a lecture at time slot %s", sub, slotID)
		}
	}
	if candidate.Room.Capacity < s.minCapacity {
		return fmt.Sprintf("classroom %s capacity (%d) below minimum (%d)", roomID, candidate.Room.Capacity, s.minCapacity)
	}
	if candidate.Slot.Duration < lecture.Duration {
		return fmt.Sprintf("time slot %s duration (%d min) too short for lecture (%d min)", slotID, candidate.Slot.Duration, lecture.Duration)
	}
	return ""
}
