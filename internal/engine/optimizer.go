package engine

import (
	"math/rand"
	"time"

	"github.com/unisched/schedule-builder-api/internal/models"
)

// DefaultOptimizerIterations bounds the local-search loop when no budget is
// configured.
const DefaultOptimizerIterations = 100

// OptimizerOptions tunes the local search.
type OptimizerOptions struct {
	// Iterations is the hard cap on the search loop; <= 0 selects the default.
	Iterations int
	// Rand supplies the mutation randomness. Nil seeds from the clock; tests
	// pass a fixed-seed source for determinism.
	Rand *rand.Rand
}

// OptimizeResult reports the outcome of one optimization run.
type OptimizeResult struct {
	Assignments []models.Assignment `json:"assignments"`
	Initial     ScoreBreakdown      `json:"initial_score"`
	Final       ScoreBreakdown      `json:"final_score"`
	Iterations  int                 `json:"iterations"`
	Accepted    int                 `json:"accepted_mutations"`
}

// Optimizer improves a completed assignment list by randomized single-neighbor
// hill climbing: mutate one assignment's slot or room, rescore the whole list,
// keep the mutation only when it strictly improves the overall score and does
// not raise the hard-conflict count.
type Optimizer struct {
	detector  *Detector
	evaluator *Evaluator
	rng       *rand.Rand
}

// NewOptimizer constructs an optimizer; a nil rng is seeded from the clock.
func NewOptimizer(rng *rand.Rand) *Optimizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	detector := NewDetector()
	return &Optimizer{
		detector:  detector,
		evaluator: NewEvaluator(detector),
		rng:       rng,
	}
}

// Optimize runs the counted search loop and returns the best assignment list
// found. The result never scores below the input (steepest-ascent acceptance);
// conflict-freedom is not guaranteed beyond the hard-conflict guard.
func (o *Optimizer) Optimize(assignments []models.Assignment, lectures []models.Lecture, catalog *Catalog, opts OptimizerOptions) OptimizeResult {
	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = DefaultOptimizerIterations
	}
	rng := opts.Rand
	if rng == nil {
		rng = o.rng
	}

	current := cloneAssignments(assignments)
	currentReport := o.detector.Detect(current, lectures, catalog)
	currentScore := o.evaluator.ScoreWithReport(current, lectures, catalog, currentReport)
	initial := currentScore

	result := OptimizeResult{Initial: initial, Iterations: iterations}
	if len(current) == 0 {
		result.Assignments = current
		result.Final = currentScore
		return result
	}

	rooms := catalog.AvailableRooms()
	slots := catalog.AvailableSlots()

	for i := 0; i < iterations; i++ {
		neighbor := o.mutate(current, rooms, slots, rng)
		if neighbor == nil {
			continue
		}
		neighborReport := o.detector.Detect(neighbor, lectures, catalog)
		if neighborReport.HardCount() > currentReport.HardCount() {
			continue
		}
		neighborScore := o.evaluator.ScoreWithReport(neighbor, lectures, catalog, neighborReport)
		if neighborScore.Overall > currentScore.Overall {
			current = neighbor
			currentReport = neighborReport
			currentScore = neighborScore
			result.Accepted++
		}
	}

	result.Assignments = current
	result.Final = currentScore
	return result
}

// mutate copies the list and reassigns one random entry's slot or room.
func (o *Optimizer) mutate(assignments []models.Assignment, rooms []models.Classroom, slots []models.TimeSlot, rng *rand.Rand) []models.Assignment {
	neighbor := cloneAssignments(assignments)
	idx := rng.Intn(len(neighbor))

	if rng.Intn(2) == 0 {
		if len(slots) == 0 {
			return nil
		}
		neighbor[idx].TimeSlotID = slots[rng.Intn(len(slots))].ID
	} else {
		if len(rooms) == 0 {
			return nil
		}
		neighbor[idx].ClassroomID = rooms[rng.Intn(len(rooms))].ID
	}
	neighbor[idx].UpdatedAt = time.Now().UTC()
	return neighbor
}

func cloneAssignments(assignments []models.Assignment) []models.Assignment {
	cloned := make([]models.Assignment, len(assignments))
	copy(cloned, assignments)
	return cloned
}
