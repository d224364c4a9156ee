package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/foalwatch/internal/db"
	"github.com/terraincognita07/foalwatch/internal/models"
	"github.com/terraincognita07/foalwatch/internal/services"
	"golang.org/x/crypto/bcrypt"
)

func TestRunResetPasswordCommandForcesPasswordChange(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "foalwatch.db")
	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	users := db.NewUserRepository(database)
	user := models.User{
		Email:        "owner@farm.example",
		PasswordHash: "unused",
		Role:         models.RoleOwner,
		CreatedAt:    time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := users.Create(&user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	var output bytes.Buffer
	if err := RunResetPasswordCommand(dbPath, "  Owner@Farm.Example ", &output); err != nil {
		t.Fatalf("RunResetPasswordCommand returned error: %v", err)
	}

	temporaryPassword := ""
	for _, line := range strings.Split(output.String(), "\n") {
		if value, ok := strings.CutPrefix(line, "Temporary password: "); ok {
			temporaryPassword = value
		}
	}
	if len(temporaryPassword) != temporaryPasswordLength {
		t.Fatalf("expected %d character temporary password in output, got %q", temporaryPasswordLength, output.String())
	}
	if err := services.ValidatePasswordStrength(temporaryPassword); err != nil {
		t.Fatalf("temporary password %q fails the password policy: %v", temporaryPassword, err)
	}

	updated, err := users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !updated.MustChangePassword {
		t.Fatal("expected reset to force a password change")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(temporaryPassword)); err != nil {
		t.Fatalf("stored hash does not match printed password: %v", err)
	}
}

func TestRunResetPasswordCommandRejectsUnknownAndInvalidEmail(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "foalwatch.db")
	var output bytes.Buffer

	err := RunResetPasswordCommand(dbPath, "nobody@farm.example", &output)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}

	err = RunResetPasswordCommand(dbPath, "not-an-email", &output)
	if err == nil || !strings.Contains(err.Error(), "invalid email") {
		t.Fatalf("expected invalid email error, got %v", err)
	}
	if output.Len() != 0 {
		t.Fatalf("expected no output on failure, got %q", output.String())
	}
}

func TestValidateChosenPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		password     string
		confirmation string
		wantErr      bool
	}{
		{name: "mismatch", password: "StrongPass1", confirmation: "StrongPass2", wantErr: true},
		{name: "weak", password: "password", confirmation: "password", wantErr: true},
		{name: "strong", password: "StrongPass1", confirmation: "StrongPass1", wantErr: false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			err := validateChosenPassword(test.password, test.confirmation)
			if (err != nil) != test.wantErr {
				t.Fatalf("validateChosenPassword() error = %v, wantErr %v", err, test.wantErr)
			}
		})
	}
}

func pipedStdin(t *testing.T, input string) *os.File {
	t.Helper()

	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("create pipe: %v", err)
	}
	t.Cleanup(func() { _ = reader.Close() })
	if _, err := writer.WriteString(input); err != nil {
		t.Fatalf("write pipe: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close pipe writer: %v", err)
	}
	return reader
}

func TestRunSetPasswordCommandReadsPipedInput(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "foalwatch.db")
	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	users := db.NewUserRepository(database)
	user := models.User{
		Email:              "owner@farm.example",
		PasswordHash:       "unused",
		Role:               models.RoleOwner,
		MustChangePassword: true,
		CreatedAt:          time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := users.Create(&user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	var output bytes.Buffer
	stdin := pipedStdin(t, "ChosenPass9\r\nChosenPass9\n")
	if err := RunSetPasswordCommand(dbPath, "owner@farm.example", stdin, &output); err != nil {
		t.Fatalf("RunSetPasswordCommand returned error: %v", err)
	}
	if !strings.Contains(output.String(), "Password updated for owner@farm.example") {
		t.Fatalf("unexpected output %q", output.String())
	}

	updated, err := users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if updated.MustChangePassword {
		t.Fatal("expected set-password to clear the forced change flag")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("ChosenPass9")); err != nil {
		t.Fatalf("stored hash does not match chosen password: %v", err)
	}
}

func TestRunSetPasswordCommandRejectsShortInput(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty stdin", input: "", want: "no input"},
		{name: "missing confirmation", input: "ChosenPass9\n", want: "no input"},
		{name: "mismatch", input: "ChosenPass9\nChosenPass8\n", want: "do not match"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			dbPath := filepath.Join(t.TempDir(), "foalwatch.db")
			var output bytes.Buffer
			err := RunSetPasswordCommand(dbPath, "owner@farm.example", pipedStdin(t, testCase.input), &output)
			if err == nil || !strings.Contains(err.Error(), testCase.want) {
				t.Fatalf("expected error containing %q, got %v", testCase.want, err)
			}
		})
	}
}
