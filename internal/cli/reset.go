package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/terraincognita07/foalwatch/internal/db"
	"github.com/terraincognita07/foalwatch/internal/models"
	"github.com/terraincognita07/foalwatch/internal/security"
	"github.com/terraincognita07/foalwatch/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const temporaryPasswordLength = 12

type passwordUserStore interface {
	FindByNormalizedEmail(email string) (models.User, error)
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
}

// RunResetPasswordCommand replaces the user's password with a generated one
// and forces a change at the next login.
func RunResetPasswordCommand(dbPath string, email string, out io.Writer) error {
	users, err := openUserStore(dbPath)
	if err != nil {
		return err
	}

	temporaryPassword, err := security.TemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}

	normalizedEmail, err := applyPassword(users, email, temporaryPassword, true)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Password reset for %s\n", normalizedEmail)
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	fmt.Fprintln(out, "User must change password on next login.")
	return nil
}

// RunSetPasswordCommand asks for a new password twice. A terminal gets
// hidden input; piped stdin is read line by line.
func RunSetPasswordCommand(dbPath string, email string, stdin *os.File, out io.Writer) error {
	users, err := openUserStore(dbPath)
	if err != nil {
		return err
	}

	prompt, err := newSecretPrompt(stdin, out)
	if err != nil {
		return err
	}
	password, err := prompt.ask("New password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	confirmation, err := prompt.ask("Repeat password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	if err := validateChosenPassword(password, confirmation); err != nil {
		return err
	}

	normalizedEmail, err := applyPassword(users, email, password, false)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Password updated for %s\n", normalizedEmail)
	return nil
}

func openUserStore(dbPath string) (passwordUserStore, error) {
	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	return db.NewUserRepository(database), nil
}

func applyPassword(users passwordUserStore, email string, password string, mustChangePassword bool) (string, error) {
	normalizedEmail, err := services.NormalizeEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid email address %q", email)
	}

	user, err := users.FindByNormalizedEmail(normalizedEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("user %s not found", normalizedEmail)
		}
		return "", fmt.Errorf("load user: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := users.UpdatePassword(user.ID, string(passwordHash), mustChangePassword); err != nil {
		return "", fmt.Errorf("update user password: %w", err)
	}
	return normalizedEmail, nil
}

func validateChosenPassword(password string, confirmation string) error {
	if password != confirmation {
		return errors.New("passwords do not match")
	}
	if err := services.ValidatePasswordStrength(password); err != nil {
		return fmt.Errorf("password rejected: %w", err)
	}
	return nil
}
