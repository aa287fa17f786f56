package service

import (
	"fmt"
	"sort"

	"github.com/unisched/schedule-builder-api/internal/engine"
	"github.com/unisched/schedule-builder-api/internal/models"
	"github.com/unisched/schedule-builder-api/pkg/export"
)

var timetableHeaders = []string{"Day", "Time", "Course", "Type", "Group", "Instructor", "Classroom"}

var dayRank = map[string]int{
	"Monday": 0, "Tuesday": 1, "Wednesday": 2, "Thursday": 3, "Friday": 4,
	"Saturday": 5, "Sunday": 6,
}

// timetableDataset flattens an assignment list into an exportable table,
// ordered by weekday then start time. Assignments referencing unknown
// lectures or slots are rendered with blank cells rather than dropped.
func timetableDataset(assignments []models.Assignment, lectures []models.Lecture, catalog *engine.Catalog) export.Dataset {
	lectureByID := make(map[string]models.Lecture, len(lectures))
	for _, lecture := range lectures {
		lectureByID[lecture.ID] = lecture
	}

	type entry struct {
		row  map[string]string
		day  int
		time string
	}
	entries := make([]entry, 0, len(assignments))
	for _, a := range assignments {
		row := map[string]string{"Classroom": a.ClassroomID, "Instructor": a.Instructor}
		dayIdx := len(dayRank)
		start := ""
		if slot, ok := catalog.Slot(a.TimeSlotID); ok {
			row["Day"] = slot.Day
			row["Time"] = fmt.Sprintf("%s-%s", slot.StartTime, slot.EndTime)
			if rank, ok := dayRank[slot.Day]; ok {
				dayIdx = rank
			}
			start = slot.StartTime
		}
		if room, ok := catalog.Room(a.ClassroomID); ok && room.Name != "" {
			row["Classroom"] = room.Name
		}
		if lecture, ok := lectureByID[a.LectureID]; ok {
			row["Course"] = lecture.Title
			row["Type"] = lecture.Kind.Label()
			row["Group"] = lecture.Group
		}
		entries = append(entries, entry{row: row, day: dayIdx, time: start})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].day != entries[j].day {
			return entries[i].day < entries[j].day
		}
		return entries[i].time < entries[j].time
	})

	rows := make([]map[string]string, len(entries))
	for i, e := range entries {
		rows[i] = e.row
	}
	return export.Dataset{Headers: timetableHeaders, Rows: rows}
}
