package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) Overview(c *fiber.Ctx) error {
	ownerID, status, message := handler.requestDataOwner(c)
	if status != 0 {
		return apiError(c, status, message)
	}
	reference, err := handler.referenceDateFromQuery(c)
	if err != nil {
		return respondInvalidDate(c, err)
	}

	overview, err := handler.overviewService.BuildOverview(ownerID, reference)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build overview")
	}
	return c.JSON(handler.buildOverviewResponse(currentLanguage(c), overview))
}
