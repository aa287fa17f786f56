package engine

import (
	"sort"

	"github.com/unisched/schedule-builder-api/internal/models"
)

// DefaultMinRoomCapacity is the fixed seat floor applied before scoring.
// Rooms below it are never candidates, regardless of the lecture.
const DefaultMinRoomCapacity = 30

// Candidate is one feasible (classroom, time slot) pairing for a lecture.
type Candidate struct {
	Room  models.Classroom `json:"classroom"`
	Slot  models.TimeSlot  `json:"time_slot"`
	Score float64          `json:"score"`
}

// CombinationGenerator enumerates and ranks candidate pairings. It is a pure
// function of its inputs and keeps no state between calls.
type CombinationGenerator struct {
	minCapacity int
}

// NewCombinationGenerator builds a generator; minCapacity <= 0 selects the
// default seat floor.
func NewCombinationGenerator(minCapacity int) *CombinationGenerator {
	if minCapacity <= 0 {
		minCapacity = DefaultMinRoomCapacity
	}
	return &CombinationGenerator{minCapacity: minCapacity}
}

// Candidates returns every (room, slot) pair whose slot duration covers the
// lecture and whose room clears the capacity floor, ranked descending by
// score. Ties keep enumeration order.
func (g *CombinationGenerator) Candidates(lecture models.Lecture, rooms []models.Classroom, slots []models.TimeSlot) []Candidate {
	var candidates []Candidate
	for _, room := range rooms {
		if room.Capacity < g.minCapacity {
			continue
		}
		for _, slot := range slots {
			if slot.Duration < lecture.Duration {
				continue
			}
			candidates = append(candidates, Candidate{
				Room:  room,
				Slot:  slot,
				Score: scoreCombination(lecture, room, slot),
			})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// scoreCombination applies the additive multi-factor ranking. Scores are not
// normalised; larger is better.
func scoreCombination(lecture models.Lecture, room models.Classroom, slot models.TimeSlot) float64 {
	var score float64
	band := slot.EffectiveBand()

	if lecture.Preference != "" && lecture.Preference == band {
		score += 10
	}

	switch excess := slot.Duration - lecture.Duration; {
	case excess == 0:
		score += 5
	case excess <= 45:
		score += 3
	default:
		score += 1
	}

	// Duration over capacity is a stand-in for enrollment-to-capacity fit;
	// true occupancy is not known at this layer.
	utilization := float64(lecture.Duration) / float64(room.Capacity)
	switch {
	case utilization >= 0.5 && utilization <= 0.9:
		score += 5
	case utilization > 0.9:
		score += 2
	default:
		score += 1
	}

	switch lecture.Requirement {
	case models.RequirementElective:
		if band == models.BandMorning || band == models.BandEvening {
			score += 3
		}
	case models.RequirementObligatory:
		if band == models.BandMidday {
			score += 3
		}
	}

	return score
}
