package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/foalwatch/internal/models"
	"github.com/terraincognita07/foalwatch/internal/security"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrViewerOwnerRequired = errors.New("owner access required")
	ErrViewerNotFound      = errors.New("viewer not found")
)

const viewerTemporaryPasswordLength = 12

// CreateViewer adds a read-only account bound to owner's herd. The returned
// temporary password must be changed at first login.
func (service *AuthService) CreateViewer(owner *models.User, rawEmail string, now time.Time) (models.User, string, error) {
	if !IsOwnerUser(owner) {
		return models.User{}, "", ErrViewerOwnerRequired
	}
	email, err := NormalizeEmail(rawEmail)
	if err != nil {
		return models.User{}, "", err
	}

	exists, err := service.users.ExistsByNormalizedEmail(email)
	if err != nil {
		return models.User{}, "", fmt.Errorf("%w: %v", ErrAuthCreateUserFailed, err)
	}
	if exists {
		return models.User{}, "", ErrAuthEmailExists
	}

	temporaryPassword, err := security.TemporaryPassword(viewerTemporaryPasswordLength)
	if err != nil {
		return models.User{}, "", fmt.Errorf("%w: %v", ErrAuthCreateUserFailed, err)
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(temporaryPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", fmt.Errorf("%w: %v", ErrAuthCreateUserFailed, err)
	}

	ownerID := owner.ID
	viewer := models.User{
		Email:              email,
		PasswordHash:       string(passwordHash),
		Role:               models.RoleViewer,
		MustChangePassword: true,
		HerdOwnerID:        &ownerID,
		CreatedAt:          now,
	}
	if err := service.users.Create(&viewer); err != nil {
		return models.User{}, "", ErrAuthEmailExists
	}
	return viewer, temporaryPassword, nil
}

func (service *AuthService) ListViewers(owner *models.User) ([]models.User, error) {
	if !IsOwnerUser(owner) {
		return nil, ErrViewerOwnerRequired
	}
	return service.users.ListViewers(owner.ID)
}

func (service *AuthService) RemoveViewer(owner *models.User, viewerID uint) error {
	if !IsOwnerUser(owner) {
		return ErrViewerOwnerRequired
	}
	removed, err := service.users.DeleteViewer(owner.ID, viewerID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrViewerNotFound
	}
	return nil
}
