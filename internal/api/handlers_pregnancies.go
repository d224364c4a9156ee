package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/foalwatch/internal/models"
	"github.com/terraincognita07/foalwatch/internal/services"
)

type pregnancyPayload struct {
	MareID         uint   `json:"mare_id" form:"mare_id"`
	StallionID     uint   `json:"stallion_id" form:"stallion_id"`
	SireName       string `json:"sire_name" form:"sire_name"`
	ConceptionDate string `json:"conception_date" form:"conception_date"`
	Outcome        string `json:"outcome" form:"outcome"`
	FoalingDate    string `json:"foaling_date" form:"foaling_date"`
	Notes          string `json:"notes" form:"notes"`
}

type foalingPayload struct {
	FoalingDate string `json:"foaling_date" form:"foaling_date"`
}

func (payload pregnancyPayload) toInput() services.PregnancyInput {
	return services.PregnancyInput{
		MareID:         payload.MareID,
		StallionID:     payload.StallionID,
		SireName:       payload.SireName,
		ConceptionDate: payload.ConceptionDate,
		Outcome:        payload.Outcome,
		FoalingDate:    payload.FoalingDate,
		Notes:          payload.Notes,
	}
}

func (handler *Handler) ListPregnancies(c *fiber.Ctx) error {
	ownerID, status, message := handler.requestDataOwner(c)
	if status != 0 {
		return apiError(c, status, message)
	}

	filter := services.PregnancyListFilter{
		Outcome: c.Query("outcome"),
		From:    c.Query("from"),
		To:      c.Query("to"),
	}
	if rawMareID := strings.TrimSpace(c.Query("mare_id")); rawMareID != "" {
		mareID, err := strconv.ParseUint(rawMareID, 10, 64)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid mare id")
		}
		filter.MareID = uint(mareID)
	}

	pregnancies, err := handler.pregnancyService.ListPregnancies(ownerID, filter)
	if err != nil {
		return respondServiceError(c, err, "failed to load pregnancies")
	}

	language := currentLanguage(c)
	reference := handler.today()
	response := make([]pregnancyResponse, 0, len(pregnancies))
	for _, pregnancy := range pregnancies {
		response = append(response, handler.pregnancyWithStatus(language, pregnancy, reference))
	}
	return c.JSON(response)
}

func (handler *Handler) GetPregnancy(c *fiber.Ctx) error {
	pregnancy, status, message := handler.loadRequestPregnancy(c)
	if status != 0 {
		return apiError(c, status, message)
	}
	return c.JSON(handler.pregnancyWithStatus(currentLanguage(c), pregnancy, handler.today()))
}

func (handler *Handler) CreatePregnancy(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	payload := pregnancyPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	pregnancy, err := handler.pregnancyService.CreatePregnancy(user.ID, payload.toInput())
	if err != nil {
		return respondServiceError(c, err, "failed to create pregnancy")
	}
	return c.Status(fiber.StatusCreated).JSON(handler.pregnancyWithStatus(currentLanguage(c), pregnancy, handler.today()))
}

func (handler *Handler) UpdatePregnancy(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	pregnancyID, ok := parseIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid pregnancy id")
	}
	payload := pregnancyPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	pregnancy, err := handler.pregnancyService.UpdatePregnancy(user.ID, pregnancyID, payload.toInput())
	if err != nil {
		return respondServiceError(c, err, "failed to update pregnancy")
	}
	return c.JSON(handler.pregnancyWithStatus(currentLanguage(c), pregnancy, handler.today()))
}

func (handler *Handler) DeletePregnancy(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	pregnancyID, ok := parseIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid pregnancy id")
	}

	if err := handler.pregnancyService.DeletePregnancy(user.ID, pregnancyID); err != nil {
		return respondServiceError(c, err, "failed to delete pregnancy")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) RecordFoaling(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	pregnancyID, ok := parseIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid pregnancy id")
	}
	payload := foalingPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	pregnancy, err := handler.pregnancyService.RecordFoaling(user.ID, pregnancyID, payload.FoalingDate)
	if err != nil {
		return respondServiceError(c, err, "failed to record foaling")
	}
	return c.JSON(handler.pregnancyWithStatus(currentLanguage(c), pregnancy, handler.today()))
}

func (handler *Handler) PregnancyStatus(c *fiber.Ctx) error {
	pregnancy, status, message := handler.loadRequestPregnancy(c)
	if status != 0 {
		return apiError(c, status, message)
	}
	reference, err := handler.referenceDateFromQuery(c)
	if err != nil {
		return respondInvalidDate(c, err)
	}

	computed, err := handler.pregnancyService.StatusFor(pregnancy, reference)
	if err != nil {
		return respondInvalidDate(c, err)
	}

	language := currentLanguage(c)
	milestones := handler.pregnancyService.Milestones()
	return c.JSON(fiber.Map{
		"pregnancy":            buildPregnancyResponse(pregnancy),
		"status":               handler.buildStatusResponse(language, computed),
		"upcoming_milestones":  handler.buildMilestoneResponses(language, services.UpcomingMilestones(computed.ElapsedDays, milestones)),
		"completed_milestones": handler.buildMilestoneResponses(language, services.CompletedMilestones(computed.ElapsedDays, milestones)),
	})
}

func (handler *Handler) loadRequestPregnancy(c *fiber.Ctx) (models.Pregnancy, int, string) {
	ownerID, status, message := handler.requestDataOwner(c)
	if status != 0 {
		return models.Pregnancy{}, status, message
	}
	pregnancyID, ok := parseIDParam(c)
	if !ok {
		return models.Pregnancy{}, fiber.StatusBadRequest, "invalid pregnancy id"
	}

	pregnancy, err := handler.pregnancyService.FindPregnancy(ownerID, pregnancyID)
	if err != nil {
		if errors.Is(err, services.ErrPregnancyNotFound) {
			return models.Pregnancy{}, fiber.StatusNotFound, "pregnancy not found"
		}
		return models.Pregnancy{}, fiber.StatusInternalServerError, "failed to load pregnancy"
	}
	return pregnancy, 0, ""
}

func (handler *Handler) pregnancyWithStatus(language string, pregnancy models.Pregnancy, reference time.Time) pregnancyResponse {
	status, err := handler.pregnancyService.StatusFor(pregnancy, reference)
	return handler.buildPregnancyWithStatus(language, pregnancy, status, err == nil)
}
