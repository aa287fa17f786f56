package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisched/schedule-builder-api/internal/models"
)

func TestEvaluatorEmptyInputs(t *testing.T) {
	catalog := testCatalog(nil, StandardTimeSlots())
	breakdown := NewEvaluator(nil).Score(nil, nil, catalog)

	assert.Equal(t, 100.0, breakdown.Conflict)
	assert.Equal(t, 0.0, breakdown.Cohesion)
	assert.Equal(t, 0.0, breakdown.Balance)
	assert.Equal(t, 0.0, breakdown.Utilization)
	assert.Equal(t, 0.0, breakdown.Distribution)
	assert.Equal(t, 100.0, breakdown.Preference, "no declared preferences means nothing is violated")
	// 100*0.25 + 100*0.15
	assert.InDelta(t, 40.0, breakdown.Overall, 1e-9)
}

func TestEvaluatorConflictPenalty(t *testing.T) {
	catalog := testCatalog(
		[]models.Classroom{{ID: "r1", Capacity: 60, Status: models.StatusAvailable}},
		StandardTimeSlots(),
	)
	lectures := []models.Lecture{
		{ID: "l1", Title: "Micro", Instructor: "Dr. X", Group: "G1", Kind: models.KindLecture, Duration: 90},
		{ID: "l2", Title: "Macro", Instructor: "Dr. X", Group: "G2", Kind: models.KindLecture, Duration: 90},
	}
	assignments := []models.Assignment{
		{ID: "a1", LectureID: "l1", TimeSlotID: "monday_morning", ClassroomID: "r1", Instructor: "Dr. X"},
		{ID: "a2", LectureID: "l2", TimeSlotID: "monday_morning", ClassroomID: "r1", Instructor: "Dr. X"},
	}

	breakdown := NewEvaluator(nil).Score(assignments, lectures, catalog)
	// classroom + professor double-booking: 2 findings, 10 points each.
	assert.Equal(t, 80.0, breakdown.Conflict)
}

func TestBalanceScore(t *testing.T) {
	assignments := []models.Assignment{
		{ID: "a1", TimeSlotID: "monday_morning"},
		{ID: "a2", TimeSlotID: "monday_morning"},
		{ID: "a3", TimeSlotID: "tuesday_morning"},
	}
	// loads 2 and 1: min/max = 0.5
	assert.Equal(t, 50.0, balanceScore(assignments))

	assert.Equal(t, 0.0, balanceScore(nil))
	assert.Equal(t, 100.0, balanceScore([]models.Assignment{{ID: "a1", TimeSlotID: "monday_morning"}}))
}

func TestDistributionScore(t *testing.T) {
	catalog := testCatalog(nil, StandardTimeSlots())

	even := []models.Assignment{
		{ID: "a1", TimeSlotID: "monday_morning"},
		{ID: "a2", TimeSlotID: "tuesday_morning"},
		{ID: "a3", TimeSlotID: "wednesday_morning"},
	}
	assert.Equal(t, 100.0, distributionScore(even, catalog))

	uneven := []models.Assignment{
		{ID: "a1", TimeSlotID: "monday_morning"},
		{ID: "a2", TimeSlotID: "monday_midday"},
		{ID: "a3", TimeSlotID: "monday_evening"},
		{ID: "a4", TimeSlotID: "tuesday_morning"},
	}
	// counts 3 and 1: mean 2, variance 1, penalty 25.
	assert.Equal(t, 75.0, distributionScore(uneven, catalog))
}

func TestUtilizationScore(t *testing.T) {
	catalog := testCatalog(
		[]models.Classroom{
			{ID: "r1", Capacity: 2, Status: models.StatusAvailable},
			{ID: "r2", Capacity: 4, Status: models.StatusAvailable},
		},
		StandardTimeSlots(),
	)
	assignments := []models.Assignment{
		{ID: "a1", ClassroomID: "r1", TimeSlotID: "monday_morning"},
		{ID: "a2", ClassroomID: "r1", TimeSlotID: "tuesday_morning"},
		{ID: "a3", ClassroomID: "r2", TimeSlotID: "monday_midday"},
	}
	// r1: 2/2 -> 100, r2: 1/4 -> 25, average 62.5
	assert.Equal(t, 62.5, utilizationScore(assignments, catalog))
}

func TestCohesionScore(t *testing.T) {
	catalog := testCatalog(nil, StandardTimeSlots())
	lectures := []models.Lecture{
		{ID: "l1", Department: "Economics"},
		{ID: "l2", Department: "Economics"},
		{ID: "l3", Department: "Law"},
	}
	byID := indexLectures(lectures)

	assignments := []models.Assignment{
		{ID: "a1", LectureID: "l1", TimeSlotID: "monday_morning"},
		{ID: "a2", LectureID: "l2", TimeSlotID: "monday_midday"},
		{ID: "a3", LectureID: "l3", TimeSlotID: "tuesday_morning"},
	}
	// Law has a single assignment and is skipped; Economics packs 2 lectures
	// into 1 day: ratio 2, scaled by 20.
	assert.Equal(t, 40.0, cohesionScore(assignments, byID, catalog))
}

func TestPreferenceScore(t *testing.T) {
	catalog := testCatalog(nil, StandardTimeSlots())
	lectures := []models.Lecture{
		{ID: "l1", Preference: models.BandMorning},
		{ID: "l2", Preference: models.BandEvening},
		{ID: "l3"},
	}
	byID := indexLectures(lectures)

	assignments := []models.Assignment{
		{ID: "a1", LectureID: "l1", TimeSlotID: "monday_morning"},
		{ID: "a2", LectureID: "l2", TimeSlotID: "monday_midday"},
		{ID: "a3", LectureID: "l3", TimeSlotID: "monday_evening"},
	}
	// l3 has no preference and does not count; 1 of 2 matches.
	assert.Equal(t, 50.0, preferenceScore(assignments, byID, catalog))
}

func TestOverallIsWeightedBlend(t *testing.T) {
	catalog := testCatalog(
		[]models.Classroom{{ID: "r1", Capacity: 60, Status: models.StatusAvailable}},
		StandardTimeSlots(),
	)
	lectures := []models.Lecture{
		{ID: "l1", Title: "Micro", Instructor: "Dr. A", Group: "G1", Kind: models.KindLecture, Duration: 90, Department: "Economics"},
		{ID: "l2", Title: "Macro", Instructor: "Dr. B", Group: "G2", Kind: models.KindLecture, Duration: 90, Department: "Economics"},
	}
	assignments := []models.Assignment{
		{ID: "a1", LectureID: "l1", TimeSlotID: "monday_morning", ClassroomID: "r1", Instructor: "Dr. A"},
		{ID: "a2", LectureID: "l2", TimeSlotID: "monday_midday", ClassroomID: "r1", Instructor: "Dr. B"},
	}

	breakdown := NewEvaluator(nil).Score(assignments, lectures, catalog)
	expected := breakdown.Conflict*0.25 + breakdown.Cohesion*0.15 + breakdown.Balance*0.15 +
		breakdown.Utilization*0.15 + breakdown.Distribution*0.15 + breakdown.Preference*0.15
	require.InDelta(t, expected, breakdown.Overall, 1e-9)
	assert.GreaterOrEqual(t, breakdown.Overall, 0.0)
	assert.LessOrEqual(t, breakdown.Overall, 100.0)
}
