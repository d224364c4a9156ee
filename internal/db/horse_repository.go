package db

import (
	"github.com/terraincognita07/foalwatch/internal/models"
	"gorm.io/gorm"
)

type HorseRepository struct {
	database *gorm.DB
}

func NewHorseRepository(database *gorm.DB) *HorseRepository {
	return &HorseRepository{database: database}
}

func (repo *HorseRepository) ListByUser(userID uint, sex string) ([]models.Horse, error) {
	query := repo.database.Where("user_id = ?", userID)
	if sex != "" {
		query = query.Where("sex = ?", sex)
	}

	horses := make([]models.Horse, 0)
	if err := query.Order("lower(name) ASC, id ASC").Find(&horses).Error; err != nil {
		return nil, err
	}
	return horses, nil
}

func (repo *HorseRepository) FindByIDForUser(horseID uint, userID uint) (models.Horse, bool, error) {
	horse := models.Horse{}
	result := repo.database.
		Where("id = ? AND user_id = ?", horseID, userID).
		Limit(1).
		Find(&horse)
	if result.Error != nil {
		return models.Horse{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Horse{}, false, nil
	}
	return horse, true, nil
}

func (repo *HorseRepository) Create(horse *models.Horse) error {
	return repo.database.Create(horse).Error
}

func (repo *HorseRepository) Save(horse *models.Horse) error {
	return repo.database.Save(horse).Error
}

func (repo *HorseRepository) Delete(horse *models.Horse) error {
	return repo.database.Delete(horse).Error
}
