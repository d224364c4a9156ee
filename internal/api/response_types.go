package api

import (
	"math"

	"github.com/terraincognita07/foalwatch/internal/models"
	"github.com/terraincognita07/foalwatch/internal/services"
)

type statusResponse struct {
	ConceptionDate   string  `json:"conception_date"`
	ReferenceDate    string  `json:"reference_date"`
	ElapsedDays      int     `json:"elapsed_days"`
	Stage            string  `json:"stage"`
	StageLabel       string  `json:"stage_label"`
	DueDate          string  `json:"due_date"`
	ProgressPercent  float64 `json:"progress_percent"`
	DaysRemaining    int     `json:"days_remaining"`
	IsOverdue        bool    `json:"is_overdue"`
	BeforeConception bool    `json:"before_conception"`
}

type milestoneResponse struct {
	Key   string `json:"key"`
	Day   int    `json:"day"`
	Label string `json:"label"`
}

type userResponse struct {
	ID                 uint   `json:"id"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password"`
	HerdOwnerID        *uint  `json:"herd_owner_id,omitempty"`
}

type horseResponse struct {
	ID        uint   `json:"id"`
	PublicID  string `json:"public_id"`
	Name      string `json:"name"`
	Breed     string `json:"breed"`
	Sex       string `json:"sex"`
	BirthDate string `json:"birth_date,omitempty"`
	AgeYears  *int   `json:"age_years,omitempty"`
	Color     string `json:"color"`
	Notes     string `json:"notes"`
}

type pregnancyResponse struct {
	ID             uint            `json:"id"`
	MareID         uint            `json:"mare_id"`
	MareName       string          `json:"mare_name"`
	StallionID     *uint           `json:"stallion_id,omitempty"`
	SireName       string          `json:"sire_name"`
	ConceptionDate string          `json:"conception_date"`
	Outcome        string          `json:"outcome"`
	FoalingDate    string          `json:"foaling_date,omitempty"`
	Notes          string          `json:"notes"`
	Status         *statusResponse `json:"status,omitempty"`
}

type timelineResponse struct {
	Pregnancy         pregnancyResponse  `json:"pregnancy"`
	NextMilestone     *milestoneResponse `json:"next_milestone"`
	DaysUntilNext     *int               `json:"days_until_next_milestone"`
	DueSoon           bool               `json:"due_soon"`
	MilestonesReached int                `json:"milestones_reached"`
}

type overviewResponse struct {
	ReferenceDate  string             `json:"reference_date"`
	OngoingCount   int                `json:"ongoing_count"`
	StageCounts    map[string]int     `json:"stage_counts"`
	DueSoonCount   int                `json:"due_soon_count"`
	OverdueCount   int                `json:"overdue_count"`
	DataIssueCount int                `json:"data_issue_count"`
	DueSoonWindow  int                `json:"due_soon_window_days"`
	Pregnancies    []timelineResponse `json:"pregnancies"`
}

func roundPercent(value float64) float64 {
	return math.Round(value*10) / 10
}

func (handler *Handler) buildStatusResponse(language string, status services.PregnancyStatus) statusResponse {
	return statusResponse{
		ConceptionDate:   services.FormatCalendarDate(status.ConceptionDate),
		ReferenceDate:    services.FormatCalendarDate(status.ReferenceDate),
		ElapsedDays:      status.ElapsedDays,
		Stage:            string(status.Stage),
		StageLabel:       handler.i18n.StageLabel(language, string(status.Stage)),
		DueDate:          services.FormatCalendarDate(status.DueDate),
		ProgressPercent:  roundPercent(status.ProgressPercent),
		DaysRemaining:    status.DaysRemaining,
		IsOverdue:        status.IsOverdue,
		BeforeConception: status.BeforeConception,
	}
}

func (handler *Handler) buildMilestoneResponses(language string, milestones []services.Milestone) []milestoneResponse {
	result := make([]milestoneResponse, 0, len(milestones))
	for _, milestone := range milestones {
		result = append(result, handler.buildMilestoneResponse(language, milestone))
	}
	return result
}

func (handler *Handler) buildMilestoneResponse(language string, milestone services.Milestone) milestoneResponse {
	return milestoneResponse{
		Key:   milestone.Key,
		Day:   milestone.Day,
		Label: handler.i18n.MilestoneLabel(language, milestone.Key, milestone.Label),
	}
}

func buildUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:                 user.ID,
		Email:              user.Email,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
		HerdOwnerID:        user.HerdOwnerID,
	}
}

func (handler *Handler) buildHorseResponse(horse models.Horse) horseResponse {
	response := horseResponse{
		ID:       horse.ID,
		PublicID: horse.PublicID,
		Name:     horse.Name,
		Breed:    horse.Breed,
		Sex:      horse.Sex,
		Color:    horse.Color,
		Notes:    horse.Notes,
	}
	if horse.BirthDate != nil {
		response.BirthDate = services.FormatCalendarDate(*horse.BirthDate)
		age := services.HorseAgeYears(horse, handler.today())
		response.AgeYears = &age
	}
	return response
}

func buildPregnancyResponse(pregnancy models.Pregnancy) pregnancyResponse {
	response := pregnancyResponse{
		ID:             pregnancy.ID,
		MareID:         pregnancy.MareID,
		MareName:       pregnancy.Mare.Name,
		StallionID:     pregnancy.StallionID,
		SireName:       pregnancy.SireName,
		ConceptionDate: services.FormatCalendarDate(pregnancy.ConceptionDate),
		Outcome:        pregnancy.Outcome,
		Notes:          pregnancy.Notes,
	}
	if pregnancy.Stallion != nil && response.SireName == "" {
		response.SireName = pregnancy.Stallion.Name
	}
	if pregnancy.FoalingDate != nil {
		response.FoalingDate = services.FormatCalendarDate(*pregnancy.FoalingDate)
	}
	return response
}

// buildPregnancyWithStatus attaches the computed status; a record that cannot
// be computed is returned without one.
func (handler *Handler) buildPregnancyWithStatus(language string, pregnancy models.Pregnancy, status services.PregnancyStatus, ok bool) pregnancyResponse {
	response := buildPregnancyResponse(pregnancy)
	if ok {
		payload := handler.buildStatusResponse(language, status)
		response.Status = &payload
	}
	return response
}

func (handler *Handler) buildOverviewResponse(language string, overview services.Overview) overviewResponse {
	response := overviewResponse{
		ReferenceDate:  services.FormatCalendarDate(overview.ReferenceDate),
		OngoingCount:   overview.OngoingCount,
		StageCounts:    make(map[string]int, len(overview.StageCounts)),
		DueSoonCount:   overview.DueSoonCount,
		OverdueCount:   overview.OverdueCount,
		DataIssueCount: overview.DataIssueCount,
		DueSoonWindow:  services.DueSoonWindowDays,
		Pregnancies:    make([]timelineResponse, 0, len(overview.Timelines)),
	}
	for stage, count := range overview.StageCounts {
		response.StageCounts[string(stage)] = count
	}

	for _, timeline := range overview.Timelines {
		item := timelineResponse{
			Pregnancy:         handler.buildPregnancyWithStatus(language, timeline.Pregnancy, timeline.Status, true),
			DueSoon:           timeline.DueSoon,
			MilestonesReached: timeline.MilestonesReached,
		}
		if timeline.NextMilestone != nil {
			next := handler.buildMilestoneResponse(language, *timeline.NextMilestone)
			days := timeline.DaysUntilNext
			item.NextMilestone = &next
			item.DaysUntilNext = &days
		}
		response.Pregnancies = append(response.Pregnancies, item)
	}
	return response
}
