package scheduling

import (
	"fmt"
	"time"

	"hms/models"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"

	// Slot lengths share the bookable appointment range.
	MinSlotMinutes = models.MinAppointmentMinutes
	MaxSlotMinutes = models.MaxAppointmentMinutes
)

// Window is a provider's working interval on one concrete date, with an optional break.
type Window struct {
	Start      time.Time
	End        time.Time
	BreakStart time.Time
	BreakEnd   time.Time
}

func (w Window) HasBreak() bool {
	return w.BreakEnd.After(w.BreakStart)
}

// Covers reports whether [start, end) lies inside the working hours and clear of the break.
func (w Window) Covers(start, end time.Time) bool {
	if start.Before(w.Start) || end.After(w.End) || !end.After(start) {
		return false
	}
	if w.HasBreak() && Overlaps(start, end, w.BreakStart, w.BreakEnd) {
		return false
	}
	return true
}

// parseClock parses "HH:MM" into minutes after midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// atClock returns the wall-clock time minutes after midnight on day's date, in day's zone.
func atClock(day time.Time, minutes int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, day.Location())
}

// IsUnavailableOn reports whether date is one of the provider's blocked days.
func IsUnavailableOn(p *models.Provider, date time.Time) bool {
	key := date.Format(dateLayout)
	for _, u := range p.UnavailableDates {
		if u.Date == key {
			return true
		}
	}
	return false
}

// WorkingDay resolves the provider's working window on date, interpreted in loc.
// It returns false when the provider is inactive or does not work that day,
// including days with an empty or inverted window and days with malformed hours.
func WorkingDay(p *models.Provider, date time.Time, loc *time.Location) (Window, bool) {
	if p == nil || !p.IsActive {
		return Window{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	day := date.In(loc)
	if IsUnavailableOn(p, day) {
		return Window{}, false
	}
	entry, ok := p.Availability[models.WeekdayKey(day.Weekday())]
	if !ok || !entry.IsAvailable {
		return Window{}, false
	}

	startMin, err := parseClock(entry.StartTime)
	if err != nil {
		return Window{}, false
	}
	endMin, err := parseClock(entry.EndTime)
	if err != nil || endMin <= startMin {
		return Window{}, false
	}

	w := Window{Start: atClock(day, startMin), End: atClock(day, endMin)}
	if entry.BreakStart != "" && entry.BreakEnd != "" {
		bs, errS := parseClock(entry.BreakStart)
		be, errE := parseClock(entry.BreakEnd)
		if errS == nil && errE == nil && be > bs {
			w.BreakStart = atClock(day, bs)
			w.BreakEnd = atClock(day, be)
		}
	}
	return w, true
}

// SlotDuration picks the requested duration, else the provider's, else the fallback.
func SlotDuration(requested int, p *models.Provider, fallback int) int {
	if requested > 0 {
		return requested
	}
	if p != nil && p.SlotDurationMinutes > 0 {
		return p.SlotDurationMinutes
	}
	return fallback
}

// ValidateAvailability rejects malformed weekly hours, exception dates and slot durations.
func ValidateAvailability(update models.AvailabilityUpdate) error {
	for day, entry := range update.Availability {
		if !isWeekdayKey(day) {
			return newError(KindInvalidRequest, "unknown weekday %q", day)
		}
		if !entry.IsAvailable {
			continue
		}
		start, err := parseClock(entry.StartTime)
		if err != nil {
			return newError(KindInvalidRequest, "%s start: %v", day, err)
		}
		end, err := parseClock(entry.EndTime)
		if err != nil {
			return newError(KindInvalidRequest, "%s end: %v", day, err)
		}
		if end <= start {
			return newError(KindInvalidRequest, "%s ends at or before it starts", day)
		}

		if (entry.BreakStart == "") != (entry.BreakEnd == "") {
			return newError(KindInvalidRequest, "%s break needs both start and end", day)
		}
		if entry.BreakStart == "" {
			continue
		}
		bs, err := parseClock(entry.BreakStart)
		if err != nil {
			return newError(KindInvalidRequest, "%s break start: %v", day, err)
		}
		be, err := parseClock(entry.BreakEnd)
		if err != nil {
			return newError(KindInvalidRequest, "%s break end: %v", day, err)
		}
		if be <= bs || bs < start || be > end {
			return newError(KindInvalidRequest, "%s break must fall inside working hours", day)
		}
	}

	for _, u := range update.UnavailableDates {
		if _, err := time.Parse(dateLayout, u.Date); err != nil {
			return newError(KindInvalidRequest, "invalid unavailable date %q", u.Date)
		}
	}

	if d := update.SlotDurationMinutes; d != 0 && (d < MinSlotMinutes || d > MaxSlotMinutes) {
		return newError(KindInvalidRequest, "slot duration must be between %d and %d minutes", MinSlotMinutes, MaxSlotMinutes)
	}
	return nil
}

func isWeekdayKey(s string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if models.WeekdayKey(d) == s {
			return true
		}
	}
	return false
}

// ParseDate parses a "YYYY-MM-DD" calendar date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, newError(KindInvalidRequest, "invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}
