package services

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/foalwatch/internal/models"
)

var ExportCSVHeaders = []string{
	"Mare",
	"Sire",
	"Conception date",
	"Outcome",
	"Foaling date",
	"Elapsed days",
	"Stage",
	"Progress %",
	"Due date",
	"Days remaining",
	"Overdue",
	"Notes",
}

type ExportPregnancyReader interface {
	ListByUser(userID uint, filter models.PregnancyFilter) ([]models.Pregnancy, error)
}

type ExportService struct {
	pregnancies ExportPregnancyReader
}

type ExportSummary struct {
	TotalEntries int
	HasData      bool
	DateFrom     string
	DateTo       string
}

type ExportEntry struct {
	ID              uint    `json:"id"`
	Mare            string  `json:"mare"`
	Sire            string  `json:"sire"`
	ConceptionDate  string  `json:"conception_date"`
	Outcome         string  `json:"outcome"`
	FoalingDate     string  `json:"foaling_date,omitempty"`
	ElapsedDays     int     `json:"elapsed_days"`
	Stage           string  `json:"stage"`
	ProgressPercent float64 `json:"progress_percent"`
	DueDate         string  `json:"due_date"`
	DaysRemaining   int     `json:"days_remaining"`
	IsOverdue       bool    `json:"is_overdue"`
	Notes           string  `json:"notes"`
}

func NewExportService(pregnancies ExportPregnancyReader) *ExportService {
	return &ExportService{pregnancies: pregnancies}
}

func (service *ExportService) loadForRange(userID uint, from *time.Time, to *time.Time) ([]models.Pregnancy, error) {
	filter := models.PregnancyFilter{From: from}
	if to != nil {
		_, end := DayRange(*to)
		filter.To = &end
	}

	pregnancies, err := service.pregnancies.ListByUser(userID, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(pregnancies, func(i, j int) bool {
		if pregnancies[i].ConceptionDate.Equal(pregnancies[j].ConceptionDate) {
			return pregnancies[i].ID < pregnancies[j].ID
		}
		return pregnancies[i].ConceptionDate.Before(pregnancies[j].ConceptionDate)
	})
	return pregnancies, nil
}

func (service *ExportService) BuildSummary(userID uint, from *time.Time, to *time.Time) (ExportSummary, error) {
	pregnancies, err := service.loadForRange(userID, from, to)
	if err != nil {
		return ExportSummary{}, err
	}
	if len(pregnancies) == 0 {
		return ExportSummary{}, nil
	}

	return ExportSummary{
		TotalEntries: len(pregnancies),
		HasData:      true,
		DateFrom:     FormatCalendarDate(pregnancies[0].ConceptionDate),
		DateTo:       FormatCalendarDate(pregnancies[len(pregnancies)-1].ConceptionDate),
	}, nil
}

// BuildEntries returns one row per pregnancy with its status on reference.
func (service *ExportService) BuildEntries(userID uint, from *time.Time, to *time.Time, reference time.Time) ([]ExportEntry, error) {
	pregnancies, err := service.loadForRange(userID, from, to)
	if err != nil {
		return nil, err
	}

	entries := make([]ExportEntry, 0, len(pregnancies))
	for _, pregnancy := range pregnancies {
		status, err := ComputePregnancyStatus(pregnancy.ConceptionDate, PregnancyReferenceDate(pregnancy, reference))
		if err != nil {
			return nil, err
		}

		entry := ExportEntry{
			ID:              pregnancy.ID,
			Mare:            pregnancy.Mare.Name,
			Sire:            exportSireName(pregnancy),
			ConceptionDate:  FormatCalendarDate(status.ConceptionDate),
			Outcome:         pregnancy.Outcome,
			ElapsedDays:     status.ElapsedDays,
			Stage:           string(status.Stage),
			ProgressPercent: roundProgress(status.ProgressPercent),
			DueDate:         FormatCalendarDate(status.DueDate),
			DaysRemaining:   status.DaysRemaining,
			IsOverdue:       status.IsOverdue,
			Notes:           pregnancy.Notes,
		}
		if pregnancy.FoalingDate != nil {
			entry.FoalingDate = FormatCalendarDate(*pregnancy.FoalingDate)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (entry ExportEntry) Columns() []string {
	return []string{
		entry.Mare,
		entry.Sire,
		entry.ConceptionDate,
		entry.Outcome,
		entry.FoalingDate,
		strconv.Itoa(entry.ElapsedDays),
		GestationStage(entry.Stage).DisplayName(),
		strconv.FormatFloat(entry.ProgressPercent, 'f', 1, 64),
		entry.DueDate,
		strconv.Itoa(entry.DaysRemaining),
		csvYesNo(entry.IsOverdue),
		entry.Notes,
	}
}

func exportSireName(pregnancy models.Pregnancy) string {
	if pregnancy.Stallion != nil && strings.TrimSpace(pregnancy.Stallion.Name) != "" {
		return pregnancy.Stallion.Name
	}
	return strings.TrimSpace(pregnancy.SireName)
}

func roundProgress(value float64) float64 {
	return float64(int(value*10+0.5)) / 10
}

func csvYesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}
