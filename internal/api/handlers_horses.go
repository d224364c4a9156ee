package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/foalwatch/internal/services"
)

type horsePayload struct {
	Name      string `json:"name" form:"name"`
	Breed     string `json:"breed" form:"breed"`
	Sex       string `json:"sex" form:"sex"`
	BirthDate string `json:"birth_date" form:"birth_date"`
	Color     string `json:"color" form:"color"`
	Notes     string `json:"notes" form:"notes"`
}

func (payload horsePayload) toInput() services.HorseInput {
	return services.HorseInput{
		Name:      payload.Name,
		Breed:     payload.Breed,
		Sex:       payload.Sex,
		BirthDate: payload.BirthDate,
		Color:     payload.Color,
		Notes:     payload.Notes,
	}
}

func (handler *Handler) ListHorses(c *fiber.Ctx) error {
	ownerID, status, message := handler.requestDataOwner(c)
	if status != 0 {
		return apiError(c, status, message)
	}

	horses, err := handler.horseService.ListHorses(ownerID, c.Query("sex"))
	if err != nil {
		return respondServiceError(c, err, "failed to load horses")
	}

	response := make([]horseResponse, 0, len(horses))
	for _, horse := range horses {
		response = append(response, handler.buildHorseResponse(horse))
	}
	return c.JSON(response)
}

func (handler *Handler) GetHorse(c *fiber.Ctx) error {
	ownerID, status, message := handler.requestDataOwner(c)
	if status != 0 {
		return apiError(c, status, message)
	}
	horseID, ok := parseIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid horse id")
	}

	horse, err := handler.horseService.FindHorse(ownerID, horseID)
	if err != nil {
		return respondServiceError(c, err, "failed to load horse")
	}
	return c.JSON(handler.buildHorseResponse(horse))
}

func (handler *Handler) CreateHorse(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	payload := horsePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	horse, err := handler.horseService.CreateHorse(user.ID, payload.toInput())
	if err != nil {
		return respondServiceError(c, err, "failed to create horse")
	}
	return c.Status(fiber.StatusCreated).JSON(handler.buildHorseResponse(horse))
}

func (handler *Handler) UpdateHorse(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	horseID, ok := parseIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid horse id")
	}
	payload := horsePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	horse, err := handler.horseService.UpdateHorse(user.ID, horseID, payload.toInput())
	if err != nil {
		return respondServiceError(c, err, "failed to update horse")
	}
	return c.JSON(handler.buildHorseResponse(horse))
}

func (handler *Handler) DeleteHorse(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	horseID, ok := parseIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid horse id")
	}

	if err := handler.horseService.DeleteHorse(user.ID, horseID); err != nil {
		return respondServiceError(c, err, "failed to delete horse")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) requestDataOwner(c *fiber.Ctx) (uint, int, string) {
	user, ok := currentUser(c)
	if !ok {
		return 0, fiber.StatusUnauthorized, "unauthorized"
	}
	ownerID := services.ResolveHerdOwnerID(user)
	if ownerID == 0 {
		return 0, fiber.StatusForbidden, "no herd access"
	}
	return ownerID, 0, ""
}
