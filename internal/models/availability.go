package models

import "time"

// DayKey names a weekday in availability profiles.
type DayKey string

const (
	DaySunday    DayKey = "sun"
	DayMonday    DayKey = "mon"
	DayTuesday   DayKey = "tue"
	DayWednesday DayKey = "wed"
	DayThursday  DayKey = "thu"
	DayFriday    DayKey = "fri"
	DaySaturday  DayKey = "sat"
)

// DayKeys lists weekday keys indexed by time.Weekday.
var DayKeys = [7]DayKey{DaySunday, DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday, DaySaturday}

// DayAvailability is the enabled study window for one weekday, in HH:MM.
type DayAvailability struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Start   string `json:"start" yaml:"start" validate:"required,datetime=15:04"`
	End     string `json:"end" yaml:"end" validate:"required,datetime=15:04"`
}

// TimeWindow is a daily time-of-day range in HH:MM. Start after End wraps past midnight.
type TimeWindow struct {
	Start string `json:"start" yaml:"start" validate:"required,datetime=15:04"`
	End   string `json:"end" yaml:"end" validate:"required,datetime=15:04"`
}

// AvailabilityProfile describes when study sessions may be scheduled.
type AvailabilityProfile struct {
	ByDay            map[DayKey]DayAvailability `json:"byDay" yaml:"byDay" validate:"required,dive"`
	MaxMinutesPerDay int                        `json:"maxMinutesPerDay" yaml:"maxMinutesPerDay" validate:"min=0,max=1440"`
	ProtectedHours   TimeWindow                 `json:"protectedHours" yaml:"protectedHours"`
}

// Day returns the availability for the given weekday. Missing days are disabled.
func (p AvailabilityProfile) Day(weekday time.Weekday) DayAvailability {
	if p.ByDay == nil {
		return DayAvailability{}
	}
	return p.ByDay[DayKeys[weekday]]
}

// DefaultAvailability returns the profile used when a user has not stored one.
func DefaultAvailability() AvailabilityProfile {
	return AvailabilityProfile{
		ByDay: map[DayKey]DayAvailability{
			DaySunday:    {Enabled: false, Start: "09:00", End: "17:00"},
			DayMonday:    {Enabled: true, Start: "09:00", End: "18:00"},
			DayTuesday:   {Enabled: true, Start: "09:00", End: "18:00"},
			DayWednesday: {Enabled: true, Start: "09:00", End: "18:00"},
			DayThursday:  {Enabled: true, Start: "09:00", End: "18:00"},
			DayFriday:    {Enabled: true, Start: "09:00", End: "17:00"},
			DaySaturday:  {Enabled: true, Start: "10:00", End: "14:00"},
		},
		MaxMinutesPerDay: 240,
		ProtectedHours:   TimeWindow{Start: "22:00", End: "07:00"},
	}
}
