package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/foalwatch/internal/models"
)

const (
	authCookieName     = "foalwatch_auth"
	contextUserKey     = "current_user"
	contextLanguageKey = "current_language"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok && user != nil
}

func currentLanguage(c *fiber.Ctx) string {
	language, _ := c.Locals(contextLanguageKey).(string)
	return language
}

func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	language := handler.i18n.DetectFromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
	if query := c.Query("lang"); query != "" {
		language = handler.i18n.NormalizeLanguage(query)
	}
	c.Locals(contextLanguageKey, language)
	return c.Next()
}

