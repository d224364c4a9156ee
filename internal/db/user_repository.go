package db

import (
	"github.com/terraincognita07/foalwatch/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) CountUsers() (int64, error) {
	var count int64
	if err := repo.database.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *UserRepository) FindByID(userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByNormalizedEmail(email string) (models.User, error) {
	var user models.User
	if err := repo.database.Where("lower(trim(email)) = ?", email).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) ExistsByNormalizedEmail(email string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("lower(trim(email)) = ?", email).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) ListOwners() ([]models.User, error) {
	owners := make([]models.User, 0)
	if err := repo.database.Where("role = ?", models.RoleOwner).Order("id ASC").Find(&owners).Error; err != nil {
		return nil, err
	}
	return owners, nil
}

// CreateFirstUser inserts user only while the table is empty. The check and
// the insert run as one statement, so concurrent first registrations cannot
// both succeed. It reports false when another account already exists.
func (repo *UserRepository) CreateFirstUser(user *models.User) (bool, error) {
	created := false
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(
			`INSERT INTO users (email, password_hash, role, must_change_password, created_at)
			SELECT ?, ?, ?, ?, ?
			WHERE NOT EXISTS (SELECT 1 FROM users)`,
			user.Email, user.PasswordHash, user.Role, user.MustChangePassword, user.CreatedAt,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		created = true
		return tx.Where("email = ?", user.Email).First(user).Error
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (repo *UserRepository) ListViewers(ownerID uint) ([]models.User, error) {
	viewers := make([]models.User, 0)
	if err := repo.database.
		Where("role = ? AND herd_owner_id = ?", models.RoleViewer, ownerID).
		Order("email ASC").
		Find(&viewers).Error; err != nil {
		return nil, err
	}
	return viewers, nil
}

// DeleteViewer removes a viewer bound to ownerID and reports whether one matched.
func (repo *UserRepository) DeleteViewer(ownerID uint, viewerID uint) (bool, error) {
	result := repo.database.
		Where("id = ? AND role = ? AND herd_owner_id = ?", viewerID, models.RoleViewer, ownerID).
		Delete(&models.User{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *UserRepository) Create(user *models.User) error {
	return repo.database.Create(user).Error
}

func (repo *UserRepository) Save(user *models.User) error {
	return repo.database.Save(user).Error
}

func (repo *UserRepository) UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"password_hash":        passwordHash,
		"must_change_password": mustChangePassword,
	}).Error
}
