package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ValidatePollConfig checks a config before any slot is computed. It is
// deliberately independent of the storage layer so creation can fail fast at
// the service boundary.
func ValidatePollConfig(cfg PollConfig) error {
	if len(cfg.TargetDates) == 0 {
		return fmt.Errorf("%w: at least one target date is required", ErrInvalidConfig)
	}
	for _, d := range cfg.TargetDates {
		if d.IsZero() {
			return fmt.Errorf("%w: target date is not a valid date", ErrInvalidConfig)
		}
	}
	startH, startM, err := parseClock(cfg.DailyStartTime)
	if err != nil {
		return fmt.Errorf("%w: dailyStartTime: %v", ErrInvalidConfig, err)
	}
	endH, endM, err := parseClock(cfg.DailyEndTime)
	if err != nil {
		return fmt.Errorf("%w: dailyEndTime: %v", ErrInvalidConfig, err)
	}
	if startH*60+startM > endH*60+endM {
		return fmt.Errorf("%w: dailyStartTime must not be after dailyEndTime", ErrInvalidConfig)
	}
	if cfg.SlotDuration <= 0 {
		return fmt.Errorf("%w: slotDuration must be a positive number of minutes", ErrInvalidConfig)
	}
	return nil
}

// ExpandSlots expands a validated config into the ordered sequence of votable
// time instants. For every target date a cursor starts at the daily start
// time and advances by the slot duration for as long as it stays strictly
// before the daily end time, so a trailing partial slot is emitted when its
// start still falls inside the window. All arithmetic is wall-clock local to
// the date's own location; no timezone conversion happens.
func ExpandSlots(cfg PollConfig) ([]time.Time, error) {
	if err := ValidatePollConfig(cfg); err != nil {
		return nil, err
	}

	startH, startM, _ := parseClock(cfg.DailyStartTime)
	endH, endM, _ := parseClock(cfg.DailyEndTime)
	step := time.Duration(cfg.SlotDuration) * time.Minute

	slots := []time.Time{}
	for _, day := range normalizeTargetDates(cfg.TargetDates) {
		cursor := time.Date(day.Year(), day.Month(), day.Day(), startH, startM, 0, 0, day.Location())
		limit := time.Date(day.Year(), day.Month(), day.Day(), endH, endM, 0, 0, day.Location())
		for cursor.Before(limit) {
			slots = append(slots, cursor)
			cursor = cursor.Add(step)
		}
	}
	return slots, nil
}

// normalizeTargetDates truncates to calendar days, removes duplicates and
// sorts ascending so expansion yields one contiguous block per date.
func normalizeTargetDates(dates []time.Time) []time.Time {
	seen := make(map[string]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
		key := day.Format("2006-01-02")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%q is not a HH:MM time", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%q has an invalid hour", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%q has an invalid minute", s)
	}
	return hour, minute, nil
}
