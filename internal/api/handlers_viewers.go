package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/foalwatch/internal/services"
)

type viewerInput struct {
	Email string `json:"email" form:"email"`
}

func (handler *Handler) ListViewers(c *fiber.Ctx) error {
	owner, _ := currentUser(c)
	viewers, err := handler.authService.ListViewers(owner)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load viewers")
	}

	response := make([]userResponse, 0, len(viewers))
	for index := range viewers {
		response = append(response, buildUserResponse(&viewers[index]))
	}
	return c.JSON(response)
}

// CreateViewer returns the temporary password once; it is not stored in
// clear anywhere.
func (handler *Handler) CreateViewer(c *fiber.Ctx) error {
	owner, _ := currentUser(c)
	input := viewerInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	viewer, temporaryPassword, err := handler.authService.CreateViewer(owner, input.Email, handler.now().In(handler.location))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuthInvalidEmail):
			return apiError(c, fiber.StatusBadRequest, "invalid email")
		case errors.Is(err, services.ErrAuthEmailExists):
			return apiError(c, fiber.StatusConflict, "email already exists")
		case errors.Is(err, services.ErrViewerOwnerRequired):
			return apiError(c, fiber.StatusForbidden, "owner access required")
		default:
			return apiError(c, fiber.StatusInternalServerError, "failed to create account")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":               buildUserResponse(&viewer),
		"temporary_password": temporaryPassword,
	})
}

func (handler *Handler) DeleteViewer(c *fiber.Ctx) error {
	owner, _ := currentUser(c)
	viewerID, ok := parseIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid viewer id")
	}

	if err := handler.authService.RemoveViewer(owner, viewerID); err != nil {
		if errors.Is(err, services.ErrViewerNotFound) {
			return apiError(c, fiber.StatusNotFound, "viewer not found")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to delete viewer")
	}
	return c.JSON(fiber.Map{"ok": true})
}
