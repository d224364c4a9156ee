package db

import (
	"github.com/terraincognita07/foalwatch/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PregnancyRepository struct {
	database *gorm.DB
}

func NewPregnancyRepository(database *gorm.DB) *PregnancyRepository {
	return &PregnancyRepository{database: database}
}

func (repo *PregnancyRepository) ListByUser(userID uint, filter models.PregnancyFilter) ([]models.Pregnancy, error) {
	query := repo.database.
		Preload("Mare").
		Preload("Stallion").
		Where("user_id = ?", userID)
	if filter.MareID != 0 {
		query = query.Where("mare_id = ?", filter.MareID)
	}
	if filter.Outcome != "" {
		query = query.Where("outcome = ?", filter.Outcome)
	}
	if filter.From != nil {
		query = query.Where("conception_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("conception_date < ?", *filter.To)
	}

	pregnancies := make([]models.Pregnancy, 0)
	if err := query.Order("conception_date ASC, id ASC").Find(&pregnancies).Error; err != nil {
		return nil, err
	}
	return pregnancies, nil
}

func (repo *PregnancyRepository) FindByIDForUser(pregnancyID uint, userID uint) (models.Pregnancy, bool, error) {
	pregnancy := models.Pregnancy{}
	result := repo.database.
		Preload("Mare").
		Preload("Stallion").
		Where("id = ? AND user_id = ?", pregnancyID, userID).
		Limit(1).
		Find(&pregnancy)
	if result.Error != nil {
		return models.Pregnancy{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Pregnancy{}, false, nil
	}
	return pregnancy, true, nil
}

// CountOngoingForHorse counts ongoing pregnancies where the horse is the mare
// or the sire, skipping excludeID.
func (repo *PregnancyRepository) CountOngoingForHorse(horseID uint, excludeID uint) (int64, error) {
	var count int64
	query := repo.database.Model(&models.Pregnancy{}).
		Where("outcome = ? AND (mare_id = ? OR stallion_id = ?)", models.OutcomeOngoing, horseID, horseID)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *PregnancyRepository) CountOngoingForMare(mareID uint, excludeID uint) (int64, error) {
	var count int64
	query := repo.database.Model(&models.Pregnancy{}).
		Where("outcome = ? AND mare_id = ?", models.OutcomeOngoing, mareID)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *PregnancyRepository) Create(pregnancy *models.Pregnancy) error {
	return repo.database.Omit(clause.Associations).Create(pregnancy).Error
}

func (repo *PregnancyRepository) Save(pregnancy *models.Pregnancy) error {
	return repo.database.Omit(clause.Associations).Save(pregnancy).Error
}

func (repo *PregnancyRepository) Delete(pregnancy *models.Pregnancy) error {
	return repo.database.Delete(&models.Pregnancy{}, pregnancy.ID).Error
}
