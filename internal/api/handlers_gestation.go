package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/foalwatch/internal/services"
)

type gestationStatusInput struct {
	ConceptionDate string `json:"conception_date" form:"conception_date"`
	ReferenceDate  string `json:"reference_date" form:"reference_date"`
}

// GestationStatus is the stateless calculator endpoint; it needs no account.
func (handler *Handler) GestationStatus(c *fiber.Ctx) error {
	input := gestationStatusInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	status, err := services.ComputePregnancyStatusFromStrings(input.ConceptionDate, input.ReferenceDate, handler.today())
	if err != nil {
		return respondInvalidDate(c, err)
	}

	language := currentLanguage(c)
	milestones := services.DefaultMilestones()
	return c.JSON(fiber.Map{
		"status":               handler.buildStatusResponse(language, status),
		"upcoming_milestones":  handler.buildMilestoneResponses(language, services.UpcomingMilestones(status.ElapsedDays, milestones)),
		"completed_milestones": handler.buildMilestoneResponses(language, services.CompletedMilestones(status.ElapsedDays, milestones)),
	})
}

func (handler *Handler) GestationMilestones(c *fiber.Ctx) error {
	language := currentLanguage(c)
	stages := make([]fiber.Map, 0, len(services.GestationStages()))
	for _, stage := range services.GestationStages() {
		stages = append(stages, fiber.Map{
			"stage": string(stage),
			"label": handler.i18n.StageLabel(language, string(stage)),
		})
	}
	return c.JSON(fiber.Map{
		"total_gestation_days": services.TotalGestationDays,
		"stages":               stages,
		"milestones":           handler.buildMilestoneResponses(language, services.DefaultMilestones()),
	})
}
