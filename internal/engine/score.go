package engine

import (
	"math"

	"github.com/unisched/schedule-builder-api/internal/models"
)

// ScoreBreakdown holds the six normalised sub-scores (0-100 each) and their
// weighted blend.
type ScoreBreakdown struct {
	Conflict     float64 `json:"conflict_score"`
	Cohesion     float64 `json:"cohesion_score"`
	Balance      float64 `json:"balance_score"`
	Utilization  float64 `json:"utilization_score"`
	Distribution float64 `json:"distribution_score"`
	Preference   float64 `json:"preference_score"`
	Overall      float64 `json:"overall_score"`
}

const (
	weightConflict     = 0.25
	weightCohesion     = 0.15
	weightBalance      = 0.15
	weightUtilization  = 0.15
	weightDistribution = 0.15
	weightPreference   = 0.15
)

// Evaluator computes the composite schedule quality score.
type Evaluator struct {
	detector *Detector
}

// NewEvaluator constructs an evaluator sharing the given detector.
func NewEvaluator(detector *Detector) *Evaluator {
	if detector == nil {
		detector = NewDetector()
	}
	return &Evaluator{detector: detector}
}

// Score computes every sub-score and the weighted overall for the assignment
// list. Pure; no side effects on its inputs.
func (e *Evaluator) Score(assignments []models.Assignment, lectures []models.Lecture, catalog *Catalog) ScoreBreakdown {
	report := e.detector.Detect(assignments, lectures, catalog)
	return e.ScoreWithReport(assignments, lectures, catalog, report)
}

// ScoreWithReport reuses an existing conflict report to avoid re-auditing.
func (e *Evaluator) ScoreWithReport(assignments []models.Assignment, lectures []models.Lecture, catalog *Catalog, report ConflictReport) ScoreBreakdown {
	lectureByID := indexLectures(lectures)

	breakdown := ScoreBreakdown{
		Conflict:     math.Max(0, 100-float64(report.Total())*10),
		Cohesion:     cohesionScore(assignments, lectureByID, catalog),
		Balance:      balanceScore(assignments),
		Utilization:  utilizationScore(assignments, catalog),
		Distribution: distributionScore(assignments, catalog),
		Preference:   preferenceScore(assignments, lectureByID, catalog),
	}
	breakdown.Overall = breakdown.Conflict*weightConflict +
		breakdown.Cohesion*weightCohesion +
		breakdown.Balance*weightBalance +
		breakdown.Utilization*weightUtilization +
		breakdown.Distribution*weightDistribution +
		breakdown.Preference*weightPreference
	return breakdown
}

// cohesionScore averages lecture_count/distinct_days over departments with at
// least two assignments, scaled by 20 and capped at 100.
func cohesionScore(assignments []models.Assignment, lectureByID map[string]models.Lecture, catalog *Catalog) float64 {
	type deptStats struct {
		count int
		days  map[string]struct{}
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
		if slot, ok := catalog.Slot(a.TimeSlotID); ok {
			stats.days[slot.Day] = struct{}{}
		}
	}

	var sum float64
	var considered int
	for _, stats := range byDept {
		if stats.count < 2 || len(stats.days) == 0 {
			continue
		}
		sum += float64(stats.count) / float64(len(stats.days))
		considered++
	}
	if considered == 0 {
		return 0
	}
	return math.Min(100, sum/float64(considered)*20)
}

// balanceScore is min/max slot load across used time slots, scaled to 100.
func balanceScore(assignments []models.Assignment) float64 {
	loads := make(map[string]int)
	for _, a := range assignments {
		loads[a.TimeSlotID]++
	}
	if len(loads) == 0 {
		return 0
	}
	minLoad, maxLoad := math.MaxInt, 0
	for _, load := range loads {
		if load < minLoad {
			minLoad = load
		}
		if load > maxLoad {
			maxLoad = load
		}
	}
	if maxLoad == 0 {
		return 0
	}
	return float64(minLoad) / float64(maxLoad) * 100
}

// utilizationScore averages assignment_count/capacity per used room (a
// heuristic, not true occupancy), each capped at 100.
func utilizationScore(assignments []models.Assignment, catalog *Catalog) float64 {
	counts := make(map[string]int)
	for _, a := range assignments {
		counts[a.ClassroomID]++
	}

	var sum float64
	var rooms int
	for roomID, count := range counts {
		room, ok := catalog.Room(roomID)
		if !ok || room.Capacity <= 0 {
			continue
		}
		sum += math.Min(100, float64(count)/float64(room.Capacity)*100)
		rooms++
	}
	if rooms == 0 {
		return 0
	}
	return sum / float64(rooms)
}

// distributionScore penalises uneven per-weekday load: 100 minus the load
// variance relative to the squared mean, floored at 0.
func distributionScore(assignments []models.Assignment, catalog *Catalog) float64 {
	dayCounts := make(map[string]int)
	for _, a := range assignments {
		if slot, ok := catalog.Slot(a.TimeSlotID); ok {
			dayCounts[slot.Day]++
		}
	}
	if len(dayCounts) == 0 {
		return 0
	}

	var total int
	for _, count := range dayCounts {
		total += count
	}
	mean := float64(total) / float64(len(dayCounts))

	var variance float64
	for _, count := range dayCounts {
		diff := float64(count) - mean
		variance += diff * diff
	}
	variance /= float64(len(dayCounts))

	maxVariance := mean * mean
	if maxVariance == 0 {
		return 100
	}
	return math.Max(0, 100-variance/maxVariance*100)
}

// preferenceScore is the percentage of preference-bearing lectures whose
// assigned slot band matches; 100 when no lecture declares a preference.
func preferenceScore(assignments []models.Assignment, lectureByID map[string]models.Lecture, catalog *Catalog) float64 {
	var matches, total int
	for _, a := range assignments {
		lecture, ok := lectureByID[a.LectureID]
		if !ok || lecture.Preference == "" {
			continue
		}
		total++
		if slot, ok := catalog.Slot(a.TimeSlotID); ok && slot.EffectiveBand() == lecture.Preference {
			matches++
		}
	}
	if total == 0 {
		return 100
	}
	return float64(matches) / float64(total) * 100
}
