package services

import "time"

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// TodayAt returns the calendar date of now as seen in location.
func TodayAt(now time.Time, location *time.Location) time.Time {
	return CalendarDate(DateAtLocation(now, location))
}

func DayRange(value time.Time) (time.Time, time.Time) {
	start := CalendarDate(value)
	return start, start.AddDate(0, 0, 1)
}
