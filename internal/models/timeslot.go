package models

import "strings"

// Band is one of the three fixed intra-day periods used for slot
// classification and preference matching.
type Band string

const (
	BandMorning Band = "morning"
	BandMidday  Band = "midday"
	BandEvening Band = "evening"
)

// ParseBand normalises a free-text band value; unknown values map to "".
func ParseBand(raw string) Band {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "morning":
		return BandMorning
	case "midday":
		return BandMidday
	case "evening":
		return BandEvening
	default:
		return ""
	}
}

// Availability status shared by classrooms and time slots.
const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
)

// TimeSlot is a bookable period on a weekday.
type TimeSlot struct {
	ID        string `db:"id" json:"id"`
	Day       string `db:"day" json:"day"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	Duration  int    `db:"duration_minutes" json:"duration_minutes"`
	Band      Band   `db:"band" json:"band,omitempty"`
	Status    string `db:"status" json:"status"`
}

// EffectiveBand returns the explicit band when set, falling back to the
// legacy id-suffix convention (`_morning`/`_midday`/`_evening`).
func (t TimeSlot) EffectiveBand() Band {
	if t.Band != "" {
		return t.Band
	}
	switch {
	case strings.HasSuffix(t.ID, "_morning"):
		return BandMorning
	case strings.HasSuffix(t.ID, "_midday"):
		return BandMidday
	case strings.HasSuffix(t.ID, "_evening"):
		return BandEvening
	}
	return ""
}

// Available reports whether the slot can receive assignments.
func (t TimeSlot) Available() bool {
	return t.Status == StatusAvailable
}
