package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/foalwatch/internal/models"
	"github.com/terraincognita07/foalwatch/internal/services"
)

func (handler *Handler) exportUserAndRange(c *fiber.Ctx) (*models.User, *time.Time, *time.Time, int, string) {
	user, ok := currentUser(c)
	if !ok {
		return nil, nil, nil, fiber.StatusUnauthorized, "unauthorized"
	}

	from, to, err := services.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRangeFromDateInvalid):
			return nil, nil, nil, fiber.StatusBadRequest, "invalid from date"
		case errors.Is(err, services.ErrRangeToDateInvalid):
			return nil, nil, nil, fiber.StatusBadRequest, "invalid to date"
		default:
			return nil, nil, nil, fiber.StatusBadRequest, "invalid range"
		}
	}
	return user, from, to, 0, ""
}

func (handler *Handler) ExportSummary(c *fiber.Ctx) error {
	user, from, to, status, message := handler.exportUserAndRange(c)
	if status != 0 {
		return apiError(c, status, message)
	}

	summary, err := handler.exportService.BuildSummary(user.ID, from, to)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load pregnancies")
	}
	return c.JSON(fiber.Map{
		"total_entries": summary.TotalEntries,
		"has_data":      summary.HasData,
		"date_from":     summary.DateFrom,
		"date_to":       summary.DateTo,
	})
}

func (handler *Handler) ExportCSV(c *fiber.Ctx) error {
	user, from, to, status, message := handler.exportUserAndRange(c)
	if status != 0 {
		return apiError(c, status, message)
	}

	entries, err := handler.exportService.BuildEntries(user.ID, from, to, handler.today())
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load pregnancies")
	}

	var output bytes.Buffer
	writer := csv.NewWriter(&output)
	if err := writer.Write(services.ExportCSVHeaders); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}
	for _, entry := range entries {
		if err := writer.Write(entry.Columns()); err != nil {
			return apiError(c, fiber.StatusInternalServerError, "failed to build export")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	setExportAttachmentHeaders(c, "text/csv", buildExportFilename(handler.today(), "csv"))
	return c.Send(output.Bytes())
}

func (handler *Handler) ExportJSON(c *fiber.Ctx) error {
	user, from, to, status, message := handler.exportUserAndRange(c)
	if status != 0 {
		return apiError(c, status, message)
	}

	entries, err := handler.exportService.BuildEntries(user.ID, from, to, handler.today())
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load pregnancies")
	}

	payload := fiber.Map{
		"exported_at": handler.now().In(handler.location).Format(time.RFC3339),
		"entries":     entries,
	}
	serialized, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	setExportAttachmentHeaders(c, fiber.MIMEApplicationJSON, buildExportFilename(handler.today(), "json"))
	return c.Send(serialized)
}

func buildExportFilename(day time.Time, extension string) string {
	return fmt.Sprintf("foalwatch-export-%s.%s", services.FormatCalendarDate(day), extension)
}

func setExportAttachmentHeaders(c *fiber.Ctx, contentType string, filename string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
}
