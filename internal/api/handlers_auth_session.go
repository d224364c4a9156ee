package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/foalwatch/internal/services"
)

type credentialsInput struct {
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	RememberMe      bool   `json:"remember_me" form:"remember_me"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	credentials := credentialsInput{}
	if err := c.BodyParser(&credentials); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.authService.RegisterUser(credentials.Email, credentials.Password, credentials.ConfirmPassword, handler.now().In(handler.location))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuthInvalidEmail):
			return apiError(c, fiber.StatusBadRequest, "invalid email")
		case errors.Is(err, services.ErrAuthPasswordMismatch):
			return apiError(c, fiber.StatusBadRequest, "password mismatch")
		case errors.Is(err, services.ErrWeakPassword):
			return apiError(c, fiber.StatusBadRequest, "weak password")
		case errors.Is(err, services.ErrPasswordTooLong):
			return apiError(c, fiber.StatusBadRequest, "password too long")
		case errors.Is(err, services.ErrAuthRegistrationClosed):
			return apiError(c, fiber.StatusForbidden, "registration closed")
		default:
			return apiError(c, fiber.StatusInternalServerError, "failed to create account")
		}
	}

	token, err := handler.setAuthCookie(c, &user, true)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  buildUserResponse(&user),
		"token": token,
	})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	credentials := credentialsInput{}
	if err := c.BodyParser(&credentials); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	attemptKeys := loginKeysFor(c, credentials.Email)
	now := handler.now()
	if handler.loginLimiter.blocked(attemptKeys, now) {
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	user, err := handler.authService.Authenticate(credentials.Email, credentials.Password)
	if err != nil {
		handler.loginLimiter.recordFailure(attemptKeys, now)
		return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
	}
	handler.loginLimiter.forget(attemptKeys)

	token, err := handler.setAuthCookie(c, &user, credentials.RememberMe)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(fiber.Map{
		"user":  buildUserResponse(&user),
		"token": token,
	})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) CurrentUser(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(buildUserResponse(user))
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := changePasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	if err := handler.authService.ChangePassword(user, input.CurrentPassword, input.NewPassword, input.ConfirmPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrAuthPasswordMismatch):
			return apiError(c, fiber.StatusBadRequest, "password mismatch")
		case errors.Is(err, services.ErrAuthCurrentPassword):
			return apiError(c, fiber.StatusBadRequest, "invalid current password")
		case errors.Is(err, services.ErrAuthPasswordMustDiffer):
			return apiError(c, fiber.StatusBadRequest, "new password must differ")
		case errors.Is(err, services.ErrWeakPassword):
			return apiError(c, fiber.StatusBadRequest, "weak password")
		case errors.Is(err, services.ErrPasswordTooLong):
			return apiError(c, fiber.StatusBadRequest, "password too long")
		default:
			return apiError(c, fiber.StatusInternalServerError, "failed to update password")
		}
	}

	if _, err := handler.setAuthCookie(c, user, false); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) SetupStatus(c *fiber.Ctx) error {
	required, err := handler.setupService.RequiresInitialSetup()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load setup status")
	}
	return c.JSON(fiber.Map{"requires_setup": required})
}
