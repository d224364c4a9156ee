package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/foalwatch/internal/models"
)

var (
	ErrPregnancyMareRequired       = errors.New("mare is required")
	ErrPregnancyMareNotFound       = errors.New("mare not found")
	ErrPregnancyNotMare            = errors.New("horse is not a mare")
	ErrPregnancyStallionInvalid    = errors.New("invalid stallion")
	ErrPregnancyOngoingExists      = errors.New("mare already has an ongoing pregnancy")
	ErrPregnancyConceptionInvalid  = errors.New("invalid conception date")
	ErrPregnancyFoalingDateInvalid = errors.New("invalid foaling date")
	ErrPregnancyOutcomeInvalid     = errors.New("invalid pregnancy outcome")
	ErrPregnancyNotFound           = errors.New("pregnancy not found")
	ErrCreatePregnancyFailed       = errors.New("create pregnancy failed")
	ErrUpdatePregnancyFailed       = errors.New("update pregnancy failed")
	ErrDeletePregnancyFailed       = errors.New("delete pregnancy failed")
)

const (
	maxSireNameLength       = 80
	maxPregnancyNotesLength = 2000
	// Conception dates further out than this are treated as typos.
	maxConceptionLeadDays = 30
)

type PregnancyInput struct {
	MareID         uint
	StallionID     uint
	SireName       string
	ConceptionDate string
	Outcome        string
	FoalingDate    string
	Notes          string
}

type PregnancyListFilter struct {
	MareID  uint
	Outcome string
	From    string
	To      string
}

type PregnancyRepository interface {
	ListByUser(userID uint, filter models.PregnancyFilter) ([]models.Pregnancy, error)
	FindByIDForUser(pregnancyID uint, userID uint) (models.Pregnancy, bool, error)
	CountOngoingForMare(mareID uint, excludeID uint) (int64, error)
	Create(pregnancy *models.Pregnancy) error
	Save(pregnancy *models.Pregnancy) error
	Delete(pregnancy *models.Pregnancy) error
}

type PregnancyHorseFinder interface {
	FindByIDForUser(horseID uint, userID uint) (models.Horse, bool, error)
}

type PregnancyService struct {
	pregnancies PregnancyRepository
	horses      PregnancyHorseFinder
	milestones  []Milestone
	now         func() time.Time
}

func NewPregnancyService(pregnancies PregnancyRepository, horses PregnancyHorseFinder, now func() time.Time) *PregnancyService {
	if now == nil {
		now = time.Now
	}
	return &PregnancyService{
		pregnancies: pregnancies,
		horses:      horses,
		milestones:  DefaultMilestones(),
		now:         now,
	}
}

func (service *PregnancyService) Milestones() []Milestone {
	table := make([]Milestone, len(service.milestones))
	copy(table, service.milestones)
	return table
}

func NormalizePregnancyOutcome(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", models.OutcomeOngoing:
		return models.OutcomeOngoing, nil
	case models.OutcomeFoaled:
		return models.OutcomeFoaled, nil
	case models.OutcomeLost:
		return models.OutcomeLost, nil
	default:
		return "", ErrPregnancyOutcomeInvalid
	}
}

func (service *PregnancyService) CreatePregnancy(userID uint, input PregnancyInput) (models.Pregnancy, error) {
	pregnancy := models.Pregnancy{UserID: userID}
	if err := service.applyInput(userID, &pregnancy, input); err != nil {
		return models.Pregnancy{}, err
	}
	if err := service.ensureSingleOngoing(pregnancy); err != nil {
		return models.Pregnancy{}, err
	}
	if err := service.pregnancies.Create(&pregnancy); err != nil {
		return models.Pregnancy{}, fmt.Errorf("%w: %v", ErrCreatePregnancyFailed, err)
	}
	return pregnancy, nil
}

func (service *PregnancyService) UpdatePregnancy(userID uint, pregnancyID uint, input PregnancyInput) (models.Pregnancy, error) {
	pregnancy, err := service.FindPregnancy(userID, pregnancyID)
	if err != nil {
		return models.Pregnancy{}, err
	}
	if err := service.applyInput(userID, &pregnancy, input); err != nil {
		return models.Pregnancy{}, err
	}
	if err := service.ensureSingleOngoing(pregnancy); err != nil {
		return models.Pregnancy{}, err
	}
	if err := service.pregnancies.Save(&pregnancy); err != nil {
		return models.Pregnancy{}, fmt.Errorf("%w: %v", ErrUpdatePregnancyFailed, err)
	}
	return pregnancy, nil
}

// RecordFoaling closes an ongoing pregnancy with the foaling date.
func (service *PregnancyService) RecordFoaling(userID uint, pregnancyID uint, rawFoalingDate string) (models.Pregnancy, error) {
	pregnancy, err := service.FindPregnancy(userID, pregnancyID)
	if err != nil {
		return models.Pregnancy{}, err
	}

	foalingDate, err := service.parseFoalingDate(rawFoalingDate, pregnancy.ConceptionDate)
	if err != nil {
		return models.Pregnancy{}, err
	}

	pregnancy.Outcome = models.OutcomeFoaled
	pregnancy.FoalingDate = &foalingDate
	if err := service.pregnancies.Save(&pregnancy); err != nil {
		return models.Pregnancy{}, fmt.Errorf("%w: %v", ErrUpdatePregnancyFailed, err)
	}
	return pregnancy, nil
}

func (service *PregnancyService) DeletePregnancy(userID uint, pregnancyID uint) error {
	pregnancy, err := service.FindPregnancy(userID, pregnancyID)
	if err != nil {
		return err
	}
	if err := service.pregnancies.Delete(&pregnancy); err != nil {
		return fmt.Errorf("%w: %v", ErrDeletePregnancyFailed, err)
	}
	return nil
}

func (service *PregnancyService) FindPregnancy(userID uint, pregnancyID uint) (models.Pregnancy, error) {
	pregnancy, found, err := service.pregnancies.FindByIDForUser(pregnancyID, userID)
	if err != nil {
		return models.Pregnancy{}, err
	}
	if !found {
		return models.Pregnancy{}, ErrPregnancyNotFound
	}
	return pregnancy, nil
}

func (service *PregnancyService) ListPregnancies(userID uint, filter PregnancyListFilter) ([]models.Pregnancy, error) {
	query := models.PregnancyFilter{MareID: filter.MareID}
	if strings.TrimSpace(filter.Outcome) != "" {
		outcome, err := NormalizePregnancyOutcome(filter.Outcome)
		if err != nil {
			return nil, err
		}
		query.Outcome = outcome
	}

	from, to, err := ParseDateRange(filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	query.From = from
	if to != nil {
		_, end := DayRange(*to)
		query.To = &end
	}
	return service.pregnancies.ListByUser(userID, query)
}

// StatusFor computes the gestation status. Closed pregnancies freeze at the
// foaling date (or the last update for losses).
func (service *PregnancyService) StatusFor(pregnancy models.Pregnancy, reference time.Time) (PregnancyStatus, error) {
	return ComputePregnancyStatus(pregnancy.ConceptionDate, PregnancyReferenceDate(pregnancy, reference))
}

func PregnancyReferenceDate(pregnancy models.Pregnancy, reference time.Time) time.Time {
	switch pregnancy.Outcome {
	case models.OutcomeFoaled:
		if pregnancy.FoalingDate != nil && !pregnancy.FoalingDate.IsZero() && pregnancy.FoalingDate.Before(reference) {
			return *pregnancy.FoalingDate
		}
	case models.OutcomeLost:
		if !pregnancy.UpdatedAt.IsZero() && pregnancy.UpdatedAt.Before(reference) {
			return pregnancy.UpdatedAt
		}
	}
	return reference
}

func (service *PregnancyService) applyInput(userID uint, pregnancy *models.Pregnancy, input PregnancyInput) error {
	if input.MareID == 0 {
		return ErrPregnancyMareRequired
	}
	mare, found, err := service.horses.FindByIDForUser(input.MareID, userID)
	if err != nil {
		return err
	}
	if !found {
		return ErrPregnancyMareNotFound
	}
	if !mare.IsMare() {
		return ErrPregnancyNotMare
	}

	var stallionID *uint
	var stallionRef *models.Horse
	if input.StallionID != 0 {
		stallion, found, err := service.horses.FindByIDForUser(input.StallionID, userID)
		if err != nil {
			return err
		}
		if !found || !stallion.IsStallion() {
			return ErrPregnancyStallionInvalid
		}
		id := stallion.ID
		stallionID = &id
		stallionRef = &stallion
	}

	sireName := strings.TrimSpace(input.SireName)
	if utf8.RuneCountInString(sireName) > maxSireNameLength {
		return ErrPregnancyStallionInvalid
	}

	conception, err := ParseCalendarDate("conception date", input.ConceptionDate)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPregnancyConceptionInvalid, err)
	}
	if conception.After(CalendarDate(service.now()).AddDate(0, 0, maxConceptionLeadDays)) {
		return ErrPregnancyConceptionInvalid
	}

	outcome, err := NormalizePregnancyOutcome(input.Outcome)
	if err != nil {
		return err
	}

	var foalingDate *time.Time
	switch outcome {
	case models.OutcomeFoaled:
		parsed, err := service.parseFoalingDate(input.FoalingDate, conception)
		if err != nil {
			return err
		}
		foalingDate = &parsed
	default:
		if strings.TrimSpace(input.FoalingDate) != "" {
			return ErrPregnancyFoalingDateInvalid
		}
	}

	notes := strings.TrimSpace(input.Notes)
	if utf8.RuneCountInString(notes) > maxPregnancyNotesLength {
		notes = string([]rune(notes)[:maxPregnancyNotesLength])
	}

	pregnancy.MareID = mare.ID
	pregnancy.Mare = mare
	pregnancy.StallionID = stallionID
	pregnancy.Stallion = stallionRef
	pregnancy.SireName = sireName
	pregnancy.ConceptionDate = conception
	pregnancy.Outcome = outcome
	pregnancy.FoalingDate = foalingDate
	pregnancy.Notes = notes
	return nil
}

func (service *PregnancyService) parseFoalingDate(raw string, conception time.Time) (time.Time, error) {
	foalingDate, err := ParseCalendarDate("foaling date", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrPregnancyFoalingDateInvalid, err)
	}
	if foalingDate.Before(CalendarDate(conception)) || foalingDate.After(CalendarDate(service.now())) {
		return time.Time{}, ErrPregnancyFoalingDateInvalid
	}
	return foalingDate, nil
}

func (service *PregnancyService) ensureSingleOngoing(pregnancy models.Pregnancy) error {
	if !pregnancy.IsOngoing() {
		return nil
	}
	count, err := service.pregnancies.CountOngoingForMare(pregnancy.MareID, pregnancy.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrPregnancyOngoingExists
	}
	return nil
}
