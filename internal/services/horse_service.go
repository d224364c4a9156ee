package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/terraincognita07/foalwatch/internal/models"
)

var (
	ErrInvalidHorseName      = errors.New("invalid horse name")
	ErrInvalidHorseSex       = errors.New("invalid horse sex")
	ErrInvalidHorseBreed     = errors.New("invalid horse breed")
	ErrInvalidHorseBirthDate = errors.New("invalid horse birth date")
	ErrHorseNotFound         = errors.New("horse not found")
	ErrHorseInUse            = errors.New("horse has an ongoing pregnancy")
	ErrHorseSexLocked        = errors.New("horse sex cannot change while in an ongoing pregnancy")
	ErrCreateHorseFailed     = errors.New("create horse failed")
	ErrUpdateHorseFailed     = errors.New("update horse failed")
	ErrDeleteHorseFailed     = errors.New("delete horse failed")
)

const (
	maxHorseNameLength  = 80
	maxHorseBreedLength = 80
	maxHorseNotesLength = 2000
)

type HorseInput struct {
	Name      string
	Breed     string
	Sex       string
	BirthDate string
	Color     string
	Notes     string
}

type HorseRepository interface {
	ListByUser(userID uint, sex string) ([]models.Horse, error)
	FindByIDForUser(horseID uint, userID uint) (models.Horse, bool, error)
	Create(horse *models.Horse) error
	Save(horse *models.Horse) error
	Delete(horse *models.Horse) error
}

type HorsePregnancyCounter interface {
	CountOngoingForHorse(horseID uint, excludeID uint) (int64, error)
}

type HorseService struct {
	horses      HorseRepository
	pregnancies HorsePregnancyCounter
	now         func() time.Time
}

func NewHorseService(horses HorseRepository, pregnancies HorsePregnancyCounter, now func() time.Time) *HorseService {
	if now == nil {
		now = time.Now
	}
	return &HorseService{
		horses:      horses,
		pregnancies: pregnancies,
		now:         now,
	}
}

func NormalizeHorseSex(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case models.SexMare:
		return models.SexMare, nil
	case models.SexStallion:
		return models.SexStallion, nil
	case models.SexGelding:
		return models.SexGelding, nil
	default:
		return "", ErrInvalidHorseSex
	}
}

func (service *HorseService) applyInput(horse *models.Horse, input HorseInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" || utf8.RuneCountInString(name) > maxHorseNameLength {
		return ErrInvalidHorseName
	}
	breed := strings.TrimSpace(input.Breed)
	if utf8.RuneCountInString(breed) > maxHorseBreedLength {
		return ErrInvalidHorseBreed
	}
	sex, err := NormalizeHorseSex(input.Sex)
	if err != nil {
		return err
	}

	var birthDate *time.Time
	if strings.TrimSpace(input.BirthDate) != "" {
		parsed, err := ParseCalendarDate("birth date", input.BirthDate)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidHorseBirthDate, err)
		}
		if parsed.After(CalendarDate(service.now())) {
			return ErrInvalidHorseBirthDate
		}
		birthDate = &parsed
	}

	notes := strings.TrimSpace(input.Notes)
	if utf8.RuneCountInString(notes) > maxHorseNotesLength {
		notes = string([]rune(notes)[:maxHorseNotesLength])
	}

	horse.Name = name
	horse.Breed = breed
	horse.Sex = sex
	horse.BirthDate = birthDate
	horse.Color = strings.TrimSpace(input.Color)
	horse.Notes = notes
	return nil
}

func (service *HorseService) CreateHorse(userID uint, input HorseInput) (models.Horse, error) {
	horse := models.Horse{
		PublicID: uuid.NewString(),
		UserID:   userID,
	}
	if err := service.applyInput(&horse, input); err != nil {
		return models.Horse{}, err
	}
	if err := service.horses.Create(&horse); err != nil {
		return models.Horse{}, fmt.Errorf("%w: %v", ErrCreateHorseFailed, err)
	}
	return horse, nil
}

func (service *HorseService) UpdateHorse(userID uint, horseID uint, input HorseInput) (models.Horse, error) {
	horse, err := service.FindHorse(userID, horseID)
	if err != nil {
		return models.Horse{}, err
	}

	previousSex := horse.Sex
	if err := service.applyInput(&horse, input); err != nil {
		return models.Horse{}, err
	}
	if horse.Sex != previousSex {
		inUse, err := service.horseInOngoingPregnancy(horse.ID)
		if err != nil {
			return models.Horse{}, fmt.Errorf("%w: %v", ErrUpdateHorseFailed, err)
		}
		if inUse {
			return models.Horse{}, ErrHorseSexLocked
		}
	}

	if err := service.horses.Save(&horse); err != nil {
		return models.Horse{}, fmt.Errorf("%w: %v", ErrUpdateHorseFailed, err)
	}
	return horse, nil
}

func (service *HorseService) DeleteHorse(userID uint, horseID uint) error {
	horse, err := service.FindHorse(userID, horseID)
	if err != nil {
		return err
	}

	inUse, err := service.horseInOngoingPregnancy(horse.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteHorseFailed, err)
	}
	if inUse {
		return ErrHorseInUse
	}

	if err := service.horses.Delete(&horse); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteHorseFailed, err)
	}
	return nil
}

func (service *HorseService) FindHorse(userID uint, horseID uint) (models.Horse, error) {
	horse, found, err := service.horses.FindByIDForUser(horseID, userID)
	if err != nil {
		return models.Horse{}, err
	}
	if !found {
		return models.Horse{}, ErrHorseNotFound
	}
	return horse, nil
}

// ListHorses accepts an empty sex filter for all horses.
func (service *HorseService) ListHorses(userID uint, sex string) ([]models.Horse, error) {
	if strings.TrimSpace(sex) != "" {
		normalized, err := NormalizeHorseSex(sex)
		if err != nil {
			return nil, err
		}
		sex = normalized
	}
	return service.horses.ListByUser(userID, sex)
}

func (service *HorseService) horseInOngoingPregnancy(horseID uint) (bool, error) {
	count, err := service.pregnancies.CountOngoingForHorse(horseID, 0)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HorseAgeYears returns whole years on the reference date, or -1 without a birth date.
func HorseAgeYears(horse models.Horse, reference time.Time) int {
	if horse.BirthDate == nil || horse.BirthDate.IsZero() {
		return -1
	}
	birth := CalendarDate(*horse.BirthDate)
	today := CalendarDate(reference)
	years := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
