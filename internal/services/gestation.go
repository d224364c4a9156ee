package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TotalGestationDays is the nominal equine gestation length. Day 340 is the due day.
const TotalGestationDays = 340

const calendarDateLayout = "2006-01-02"

type GestationStage string

const (
	StageEarly      GestationStage = "early"
	StageMid        GestationStage = "mid"
	StageLate       GestationStage = "late"
	StagePreFoaling GestationStage = "pre_foaling"
)

type stageBoundary struct {
	stage   GestationStage
	lastDay int
}

// Upper bounds are inclusive. Anything past the last bound stays pre-foaling.
var stageBoundaries = []stageBoundary{
	{stage: StageEarly, lastDay: 114},
	{stage: StageMid, lastDay: 225},
	{stage: StageLate, lastDay: 310},
}

func (stage GestationStage) DisplayName() string {
	switch stage {
	case StageEarly:
		return "Early"
	case StageMid:
		return "Mid"
	case StageLate:
		return "Late"
	case StagePreFoaling:
		return "Pre-foaling"
	default:
		return string(stage)
	}
}

func (stage GestationStage) Valid() bool {
	switch stage {
	case StageEarly, StageMid, StageLate, StagePreFoaling:
		return true
	default:
		return false
	}
}

func GestationStages() []GestationStage {
	return []GestationStage{StageEarly, StageMid, StageLate, StagePreFoaling}
}

// LookupGestationStage maps elapsed days to a stage. Negative values report
// the first stage so that a reference date before conception still renders.
func LookupGestationStage(elapsedDays int) GestationStage {
	for _, boundary := range stageBoundaries {
		if elapsedDays <= boundary.lastDay {
			return boundary.stage
		}
	}
	return StagePreFoaling
}

var ErrInvalidDate = errors.New("invalid date")

type InvalidDateError struct {
	Field string
	Value string
}

func (err *InvalidDateError) Error() string {
	field := strings.TrimSpace(err.Field)
	if field == "" {
		field = "date"
	}
	if err.Value == "" {
		return fmt.Sprintf("invalid %s: empty value", field)
	}
	return fmt.Sprintf("invalid %s: %q is not a calendar date", field, err.Value)
}

func (err *InvalidDateError) Unwrap() error {
	return ErrInvalidDate
}

// ParseCalendarDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns
// the calendar date anchored at UTC midnight.
func ParseCalendarDate(field string, raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, &InvalidDateError{Field: field, Value: raw}
	}

	if parsed, err := time.Parse(calendarDateLayout, value); err == nil {
		return CalendarDate(parsed), nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return CalendarDate(parsed), nil
	}
	return time.Time{}, &InvalidDateError{Field: field, Value: raw}
}

// CalendarDate drops the time of day and location, keeping the date the value
// shows in its own location.
func CalendarDate(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func FormatCalendarDate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return CalendarDate(value).Format(calendarDateLayout)
}

func normalizeInputDate(field string, value time.Time) (time.Time, error) {
	if value.IsZero() {
		return time.Time{}, &InvalidDateError{Field: field}
	}
	return CalendarDate(value), nil
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween counts whole calendar days from start to end. Both sides are
// UTC midnights, so the Unix second difference divides evenly. time.Duration
// saturates past roughly 292 years and cannot be used here.
func DaysBetween(start time.Time, end time.Time) int {
	return int((CalendarDate(end).Unix() - CalendarDate(start).Unix()) / secondsPerDay)
}

type PregnancyStatus struct {
	ConceptionDate   time.Time
	ReferenceDate    time.Time
	ElapsedDays      int
	Stage            GestationStage
	DueDate          time.Time
	ProgressPercent  float64
	DaysRemaining    int
	IsOverdue        bool
	BeforeConception bool
}

func ComputePregnancyStatus(conceptionDate time.Time, referenceDate time.Time) (PregnancyStatus, error) {
	conception, err := normalizeInputDate("conception date", conceptionDate)
	if err != nil {
		return PregnancyStatus{}, err
	}
	reference, err := normalizeInputDate("reference date", referenceDate)
	if err != nil {
		return PregnancyStatus{}, err
	}

	elapsed := DaysBetween(conception, reference)
	return PregnancyStatus{
		ConceptionDate:   conception,
		ReferenceDate:    reference,
		ElapsedDays:      elapsed,
		Stage:            LookupGestationStage(elapsed),
		DueDate:          conception.AddDate(0, 0, TotalGestationDays),
		ProgressPercent:  gestationProgress(elapsed),
		DaysRemaining:    TotalGestationDays - elapsed,
		IsOverdue:        elapsed > TotalGestationDays,
		BeforeConception: elapsed < 0,
	}, nil
}

// ComputePregnancyStatusFromStrings parses both dates; an empty reference
// falls back to now.
func ComputePregnancyStatusFromStrings(conceptionDate string, referenceDate string, now time.Time) (PregnancyStatus, error) {
	conception, err := ParseCalendarDate("conception date", conceptionDate)
	if err != nil {
		return PregnancyStatus{}, err
	}

	reference := now
	if strings.TrimSpace(referenceDate) != "" {
		reference, err = ParseCalendarDate("reference date", referenceDate)
		if err != nil {
			return PregnancyStatus{}, err
		}
	}
	return ComputePregnancyStatus(conception, reference)
}

func gestationProgress(elapsedDays int) float64 {
	percent := float64(elapsedDays) / float64(TotalGestationDays) * 100
	switch {
	case percent < 0:
		return 0
	case percent > 100:
		return 100
	default:
		return percent
	}
}

type Milestone struct {
	Key   string `json:"key"`
	Day   int    `json:"day"`
	Label string `json:"label"`
}

func DefaultMilestones() []Milestone {
	return []Milestone{
		{Key: "heartbeat", Day: 30, Label: "Heartbeat detectable"},
		{Key: "midterm_checkup", Day: 150, Label: "Mid-term checkup"},
		{Key: "foaling_prep", Day: 270, Label: "Foaling preparation"},
		{Key: "foaling_imminent", Day: 320, Label: "Foaling imminent"},
	}
}

func UpcomingMilestones(elapsedDays int, table []Milestone) []Milestone {
	upcoming := make([]Milestone, 0, len(table))
	for _, milestone := range table {
		if milestone.Day > elapsedDays {
			upcoming = append(upcoming, milestone)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Day < upcoming[j].Day
	})
	return upcoming
}

// CompletedMilestones returns the most recent milestone first. The elapsed
// day itself counts as completed.
func CompletedMilestones(elapsedDays int, table []Milestone) []Milestone {
	completed := make([]Milestone, 0, len(table))
	for _, milestone := range table {
		if milestone.Day <= elapsedDays {
			completed = append(completed, milestone)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].Day > completed[j].Day
	})
	return completed
}

func NextMilestone(elapsedDays int, table []Milestone) (Milestone, bool) {
	upcoming := UpcomingMilestones(elapsedDays, table)
	if len(upcoming) == 0 {
		return Milestone{}, false
	}
	return upcoming[0], true
}
