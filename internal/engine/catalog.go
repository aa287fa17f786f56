// Package engine implements the assignment and conflict-resolution core:
// candidate enumeration, greedy constraint-respecting scheduling, post-hoc
// conflict auditing and local-search optimization. Everything operates on
// in-memory snapshots; persistence and transport live elsewhere.
package engine

import (
	"fmt"
	"strings"

	"github.com/unisched/schedule-builder-api/internal/models"
)

// Catalog is a read-only snapshot of the classroom and time-slot inventories
// for one scheduling run. It is safe for concurrent reads; runs that mutate
// resources must build a fresh snapshot.
type Catalog struct {
	rooms     map[string]models.Classroom
	slots     map[string]models.TimeSlot
	roomOrder []string
	slotOrder []string
}

// NewCatalog builds a snapshot preserving the enumeration order of the input
// slices (candidate ranking ties break on that order).
func NewCatalog(rooms []models.Classroom, slots []models.TimeSlot) *Catalog {
	c := &Catalog{
		rooms: make(map[string]models.Classroom, len(rooms)),
		slots: make(map[string]models.TimeSlot, len(slots)),
	}
	for _, room := range rooms {
		if _, ok := c.rooms[room.ID]; ok {
			continue
		}
		c.rooms[room.ID] = room
		c.roomOrder = append(c.roomOrder, room.ID)
	}
	for _, slot := range slots {
		if _, ok := c.slots[slot.ID]; ok {
			continue
		}
		c.slots[slot.ID] = slot
		c.slotOrder = append(c.slotOrder, slot.ID)
	}
	return c
}

// Room looks up a classroom by id.
func (c *Catalog) Room(id string) (models.Classroom, bool) {
	room, ok := c.rooms[id]
	return room, ok
}

// Slot looks up a time slot by id.
func (c *Catalog) Slot(id string) (models.TimeSlot, bool) {
	slot, ok := c.slots[id]
	return slot, ok
}

// Rooms returns every classroom in enumeration order.
func (c *Catalog) Rooms() []models.Classroom {
	result := make([]models.Classroom, 0, len(c.roomOrder))
	for _, id := range c.roomOrder {
		result = append(result, c.rooms[id])
	}
	return result
}

// Slots returns every time slot in enumeration order.
func (c *Catalog) Slots() []models.TimeSlot {
	result := make([]models.TimeSlot, 0, len(c.slotOrder))
	for _, id := range c.slotOrder {
		result = append(result, c.slots[id])
	}
	return result
}

// AvailableRooms filters rooms by availability status.
func (c *Catalog) AvailableRooms() []models.Classroom {
	var result []models.Classroom
	for _, id := range c.roomOrder {
		if room := c.rooms[id]; room.Available() {
			result = append(result, room)
		}
	}
	return result
}

// AvailableSlots filters slots by availability status.
func (c *Catalog) AvailableSlots() []models.TimeSlot {
	var result []models.TimeSlot
	for _, id := range c.slotOrder {
		if slot := c.slots[id]; slot.Available() {
			result = append(result, slot)
		}
	}
	return result
}

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

type bandWindow struct {
	band     models.Band
	start    string
	end      string
	duration int
}

var standardBands = []bandWindow{
	{models.BandMorning, "09:00", "11:00", 120},
	{models.BandMidday, "11:00", "15:00", 240},
	{models.BandEvening, "15:00", "17:00", 120},
}

// StandardTimeSlots builds the default catalog of 15 slots: three contiguous
// bands per weekday, Monday through Friday. Collaborators may replace it
// entirely with their own slot inventory.
func StandardTimeSlots() []models.TimeSlot {
	slots := make([]models.TimeSlot, 0, len(weekdays)*len(standardBands))
	for _, day := range weekdays {
		for _, window := range standardBands {
			slots = append(slots, models.TimeSlot{
				ID:        fmt.Sprintf("%s_%s", strings.ToLower(day), window.band),
				Day:       day,
				StartTime: window.start,
				EndTime:   window.end,
				Duration:  window.duration,
				Band:      window.band,
				Status:    models.StatusAvailable,
			})
		}
	}
	return slots
}
