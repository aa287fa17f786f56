package dto

// CreateClassroomRequest registers a classroom.
type CreateClassroomRequest struct {
	Name      string   `json:"name" validate:"required"`
	Capacity  int      `json:"capacity" validate:"required,min=1"`
	Equipment []string `json:"equipment"`
}

// UpdateClassroomRequest patches classroom fields; zero values are ignored.
type UpdateClassroomRequest struct {
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity" validate:"omitempty,min=1"`
	Equipment []string `json:"equipment"`
	Status    string   `json:"status" validate:"omitempty,oneof=available unavailable"`
}

// CreateTimeSlotRequest registers a bookable period.
type CreateTimeSlotRequest struct {
	ID        string `json:"id"`
	Day       string `json:"day" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Duration  int    `json:"duration_minutes" validate:"required,min=1"`
	Band      string `json:"band" validate:"omitempty,oneof=morning midday evening"`
}

// UpdateTimeSlotStatusRequest toggles slot availability.
type UpdateTimeSlotStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available unavailable"`
}

// ClassroomUtilization summarises the classroom inventory.
type ClassroomUtilization struct {
	Total         int     `json:"total_classrooms"`
	Available     int     `json:"available_classrooms"`
	TotalCapacity int     `json:"total_capacity"`
	MinCapacity   int     `json:"min_capacity"`
	MaxCapacity   int     `json:"max_capacity"`
	AvgCapacity   float64 `json:"avg_capacity"`
}

// TimeSlotUtilization summarises the slot inventory.
type TimeSlotUtilization struct {
	Total         int            `json:"total_slots"`
	Available     int            `json:"available_slots"`
	SlotsPerDay   map[string]int `json:"slots_per_day"`
	MinutesPerDay map[string]int `json:"minutes_per_day"`
}
