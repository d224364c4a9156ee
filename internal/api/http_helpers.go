package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/foalwatch/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func parseIDParam(c *fiber.Ctx) (uint, bool) {
	raw := strings.TrimSpace(c.Params("id"))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// referenceDateFromQuery reads ?on=YYYY-MM-DD, falling back to the farm-local today.
func (handler *Handler) referenceDateFromQuery(c *fiber.Ctx) (time.Time, error) {
	raw := strings.TrimSpace(c.Query("on"))
	if raw == "" {
		return handler.today(), nil
	}
	return services.ParseCalendarDate("reference date", raw)
}

func respondInvalidDate(c *fiber.Ctx, err error) error {
	var dateErr *services.InvalidDateError
	if errors.As(err, &dateErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid date",
			"field": dateErr.Field,
		})
	}
	return apiError(c, fiber.StatusBadRequest, "invalid date")
}

type serviceErrorMapping struct {
	err     error
	status  int
	message string
}

var serviceErrorMappings = []serviceErrorMapping{
	{services.ErrHorseNotFound, fiber.StatusNotFound, "horse not found"},
	{services.ErrPregnancyNotFound, fiber.StatusNotFound, "pregnancy not found"},
	{services.ErrHorseInUse, fiber.StatusConflict, "horse has an ongoing pregnancy"},
	{services.ErrHorseSexLocked, fiber.StatusConflict, "horse sex cannot change while in an ongoing pregnancy"},
	{services.ErrPregnancyOngoingExists, fiber.StatusConflict, "mare already has an ongoing pregnancy"},
	{services.ErrInvalidHorseName, fiber.StatusBadRequest, "invalid horse name"},
	{services.ErrInvalidHorseSex, fiber.StatusBadRequest, "invalid horse sex"},
	{services.ErrInvalidHorseBreed, fiber.StatusBadRequest, "invalid horse breed"},
	{services.ErrInvalidHorseBirthDate, fiber.StatusBadRequest, "invalid date"},
	{services.ErrPregnancyMareRequired, fiber.StatusBadRequest, "mare is required"},
	{services.ErrPregnancyMareNotFound, fiber.StatusBadRequest, "mare not found"},
	{services.ErrPregnancyNotMare, fiber.StatusBadRequest, "horse is not a mare"},
	{services.ErrPregnancyStallionInvalid, fiber.StatusBadRequest, "invalid stallion"},
	{services.ErrPregnancyConceptionInvalid, fiber.StatusBadRequest, "invalid date"},
	{services.ErrPregnancyFoalingDateInvalid, fiber.StatusBadRequest, "invalid foaling date"},
	{services.ErrPregnancyOutcomeInvalid, fiber.StatusBadRequest, "invalid pregnancy outcome"},
	{services.ErrRangeFromDateInvalid, fiber.StatusBadRequest, "invalid from date"},
	{services.ErrRangeToDateInvalid, fiber.StatusBadRequest, "invalid to date"},
	{services.ErrRangeInvalid, fiber.StatusBadRequest, "invalid range"},
	{services.ErrInvalidDate, fiber.StatusBadRequest, "invalid date"},
}

// respondServiceError maps domain errors to HTTP responses; anything unknown is
// reported with fallback as a 500.
func respondServiceError(c *fiber.Ctx, err error, fallback string) error {
	for _, mapping := range serviceErrorMappings {
		if errors.Is(err, mapping.err) {
			return apiError(c, mapping.status, mapping.message)
		}
	}
	return apiError(c, fiber.StatusInternalServerError, fallback)
}
