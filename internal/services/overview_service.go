package services

import (
	"sort"
	"time"

	"github.com/terraincognita07/foalwatch/internal/models"
)

const DueSoonWindowDays = 30

type OverviewPregnancyReader interface {
	ListByUser(userID uint, filter models.PregnancyFilter) ([]models.Pregnancy, error)
}

type OverviewService struct {
	pregnancies OverviewPregnancyReader
	milestones  []Milestone
}

type PregnancyTimeline struct {
	Pregnancy         models.Pregnancy
	Status            PregnancyStatus
	NextMilestone     *Milestone
	DaysUntilNext     int
	DueSoon           bool
	MilestonesReached int
}

type Overview struct {
	ReferenceDate  time.Time
	OngoingCount   int
	StageCounts    map[GestationStage]int
	DueSoonCount   int
	OverdueCount   int
	DataIssueCount int
	Timelines      []PregnancyTimeline
}

func NewOverviewService(pregnancies OverviewPregnancyReader) *OverviewService {
	return &OverviewService{
		pregnancies: pregnancies,
		milestones:  DefaultMilestones(),
	}
}

func (service *OverviewService) BuildOverview(userID uint, reference time.Time) (Overview, error) {
	ongoing, err := service.pregnancies.ListByUser(userID, models.PregnancyFilter{Outcome: models.OutcomeOngoing})
	if err != nil {
		return Overview{}, err
	}
	return BuildOverviewFromPregnancies(ongoing, reference, service.milestones)
}

// BuildOverviewFromPregnancies ignores closed pregnancies and orders the
// timelines by due date.
func BuildOverviewFromPregnancies(pregnancies []models.Pregnancy, reference time.Time, milestones []Milestone) (Overview, error) {
	overview := Overview{
		ReferenceDate: CalendarDate(reference),
		StageCounts:   make(map[GestationStage]int, len(GestationStages())),
		Timelines:     make([]PregnancyTimeline, 0, len(pregnancies)),
	}
	for _, stage := range GestationStages() {
		overview.StageCounts[stage] = 0
	}

	for _, pregnancy := range pregnancies {
		if !pregnancy.IsOngoing() {
			continue
		}
		timeline, err := BuildPregnancyTimeline(pregnancy, reference, milestones)
		if err != nil {
			return Overview{}, err
		}

		overview.OngoingCount++
		overview.StageCounts[timeline.Status.Stage]++
		if timeline.Status.IsOverdue {
			overview.OverdueCount++
		}
		if timeline.DueSoon {
			overview.DueSoonCount++
		}
		if timeline.Status.BeforeConception {
			overview.DataIssueCount++
		}
		overview.Timelines = append(overview.Timelines, timeline)
	}

	sort.SliceStable(overview.Timelines, func(i, j int) bool {
		left := overview.Timelines[i].Status.DueDate
		right := overview.Timelines[j].Status.DueDate
		if left.Equal(right) {
			return overview.Timelines[i].Pregnancy.ID < overview.Timelines[j].Pregnancy.ID
		}
		return left.Before(right)
	})
	return overview, nil
}

func BuildPregnancyTimeline(pregnancy models.Pregnancy, reference time.Time, milestones []Milestone) (PregnancyTimeline, error) {
	status, err := ComputePregnancyStatus(pregnancy.ConceptionDate, PregnancyReferenceDate(pregnancy, reference))
	if err != nil {
		return PregnancyTimeline{}, err
	}

	timeline := PregnancyTimeline{
		Pregnancy:         pregnancy,
		Status:            status,
		MilestonesReached: len(CompletedMilestones(status.ElapsedDays, milestones)),
		DueSoon:           pregnancy.IsOngoing() && !status.IsOverdue && status.DaysRemaining <= DueSoonWindowDays,
	}
	if next, ok := NextMilestone(status.ElapsedDays, milestones); ok {
		timeline.NextMilestone = &next
		timeline.DaysUntilNext = next.Day - status.ElapsedDays
	}
	return timeline, nil
}
