package services

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/terraincognita07/foalwatch/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAuthInvalidEmail       = errors.New("invalid email")
	ErrAuthEmailExists        = errors.New("email already exists")
	ErrAuthInvalidCredentials = errors.New("invalid credentials")
	ErrAuthPasswordMismatch   = errors.New("password mismatch")
	ErrAuthPasswordChange     = errors.New("password change required")
	ErrAuthCurrentPassword    = errors.New("invalid current password")
	ErrAuthPasswordMustDiffer = errors.New("new password must differ")
	ErrAuthCreateUserFailed   = errors.New("create user failed")
	ErrAuthRegistrationClosed = errors.New("registration closed")
)

type AuthUserRepository interface {
	ExistsByNormalizedEmail(email string) (bool, error)
	FindByNormalizedEmail(email string) (models.User, error)
	FindByID(userID uint) (models.User, error)
	CreateFirstUser(user *models.User) (bool, error)
	Create(user *models.User) error
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
	ListViewers(ownerID uint) ([]models.User, error)
	DeleteViewer(ownerID uint, viewerID uint) (bool, error)
}

type AuthService struct {
	users AuthUserRepository
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users}
}

func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrAuthInvalidEmail
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return "", ErrAuthInvalidEmail
	}
	return email, nil
}

// RegisterUser creates the farm owner on a fresh install. Once any account
// exists public registration is closed; viewers are added by the owner.
func (service *AuthService) RegisterUser(rawEmail string, password string, confirmPassword string, now time.Time) (models.User, error) {
	email, err := NormalizeEmail(rawEmail)
	if err != nil {
		return models.User{}, err
	}
	if password != confirmPassword {
		return models.User{}, ErrAuthPasswordMismatch
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrAuthCreateUserFailed, err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleOwner,
		CreatedAt:    now,
	}
	created, err := service.users.CreateFirstUser(&user)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrAuthCreateUserFailed, err)
	}
	if !created {
		return models.User{}, ErrAuthRegistrationClosed
	}
	return user, nil
}

func (service *AuthService) Authenticate(rawEmail string, password string) (models.User, error) {
	email, err := NormalizeEmail(rawEmail)
	if err != nil {
		return models.User{}, ErrAuthInvalidCredentials
	}

	user, err := service.users.FindByNormalizedEmail(email)
	if err != nil {
		return models.User{}, ErrAuthInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrAuthInvalidCredentials
	}
	return user, nil
}

func (service *AuthService) ChangePassword(user *models.User, currentPassword string, newPassword string, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrAuthPasswordMismatch
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrAuthCurrentPassword
	}
	if currentPassword == newPassword {
		return ErrAuthPasswordMustDiffer
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := service.users.UpdatePassword(user.ID, string(passwordHash), false); err != nil {
		return err
	}
	user.PasswordHash = string(passwordHash)
	user.MustChangePassword = false
	return nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	return service.users.FindByID(userID)
}
