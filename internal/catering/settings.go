package catering

import (
	"fmt"
	"time"
)

const (
	SettingsCollection  = "settings"
	GlobalSettingsDocID = "global_settings"
)

// Settings are the ordering rules kept in the global settings document.
type Settings struct {
	StartTime        string  `json:"startTime"`
	EndTime          string  `json:"endTime"`
	TimeSlotInterval int     `json:"timeSlotInterval"`
	MinQuoteAmount   float64 `json:"minQuoteAmount"`
}

// DefaultSettings applies when the document or one of its fields is absent.
func DefaultSettings() Settings {
	return Settings{StartTime: "07:30", EndTime: "18:00", TimeSlotInterval: 30}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.StartTime == "" {
		s.StartTime = d.StartTime
	}
	if s.EndTime == "" {
		s.EndTime = d.EndTime
	}
	if s.TimeSlotInterval <= 0 {
		s.TimeSlotInterval = d.TimeSlotInterval
	}
	return s
}

// TimeSlots lists the "HH:MM" event times offered between StartTime and
// EndTime inclusive.
func (s Settings) TimeSlots() ([]string, error) {
	s = s.withDefaults()
	start, err := time.Parse("15:04", s.StartTime)
	if err != nil {
		return nil, fmt.Errorf("catering: start time: %w", err)
	}
	end, err := time.Parse("15:04", s.EndTime)
	if err != nil {
		return nil, fmt.Errorf("catering: end time: %w", err)
	}
	step := time.Duration(s.TimeSlotInterval) * time.Minute

	slots := make([]string, 0)
	for t := start; !t.After(end); t = t.Add(step) {
		slots = append(slots, t.Format("15:04"))
	}
	return slots, nil
}
