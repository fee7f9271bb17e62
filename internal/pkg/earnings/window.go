package earnings

import "time"

// Window is an inclusive range of calendar dates, each stored as UTC midnight.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WeekWindow returns Monday through Sunday of the week containing now, as seen in loc.
func WeekWindow(now time.Time, loc *time.Location) Window {
	today := civil(now.In(location(loc)))
	offset := (int(today.Weekday()) + 6) % 7
	start := today.AddDate(0, 0, -offset)
	return Window{Start: start, End: start.AddDate(0, 0, 6)}
}

// WeekOf returns the Monday-Sunday window containing the calendar date day.
func WeekOf(day time.Time) Window {
	return WeekWindow(civil(day), time.UTC)
}

func DayWindow(now time.Time, loc *time.Location) Window {
	today := civil(now.In(location(loc)))
	return Window{Start: today, End: today}
}

func (w Window) Contains(date time.Time) bool {
	d := civil(date)
	return !d.Before(w.Start) && !d.After(w.End)
}

// EndExclusive is the first date after the window, handy for range queries.
func (w Window) EndExclusive() time.Time {
	return w.End.AddDate(0, 0, 1)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
