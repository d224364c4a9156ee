package api

import (
	"errors"
	"time"

	"github.com/terraincognita07/foalwatch/internal/db"
	"github.com/terraincognita07/foalwatch/internal/i18n"
	"github.com/terraincognita07/foalwatch/internal/services"
	"gorm.io/gorm"
)

const (
	defaultAuthTokenTTL  = 7 * 24 * time.Hour
	rememberAuthTokenTTL = 30 * 24 * time.Hour

	loginAddressAttemptLimit = 8
	loginAccountAttemptLimit = 5
	loginAttemptWindow       = 15 * time.Minute
)

type Handler struct {
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
	i18n         *i18n.Manager
	loginLimiter *loginThrottle
	now          func() time.Time

	repositories     *db.Repositories
	authService      *services.AuthService
	setupService     *services.SetupService
	horseService     *services.HorseService
	pregnancyService *services.PregnancyService
	overviewService  *services.OverviewService
	exportService    *services.ExportService
}

func NewHandler(database *gorm.DB, secret string, location *time.Location, i18nManager *i18n.Manager, cookieSecure bool) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if i18nManager == nil {
		return nil, errors.New("i18n manager is required")
	}
	if location == nil {
		location = time.Local
	}

	handler := &Handler{
		secretKey:    []byte(secret),
		location:     location,
		cookieSecure: cookieSecure,
		i18n:         i18nManager,
		loginLimiter: newLoginThrottle(loginAddressAttemptLimit, loginAccountAttemptLimit, loginAttemptWindow),
		now:          time.Now,
	}
	return handler.withDependencies(database), nil
}

func (handler *Handler) withDependencies(database *gorm.DB) *Handler {
	handler.repositories = db.NewRepositories(database)
	handler.authService = services.NewAuthService(handler.repositories.Users)
	handler.setupService = services.NewSetupService(handler.repositories.Users)
	handler.horseService = services.NewHorseService(handler.repositories.Horses, handler.repositories.Pregnancies, handler.clock)
	handler.pregnancyService = services.NewPregnancyService(handler.repositories.Pregnancies, handler.repositories.Horses, handler.clock)
	handler.overviewService = services.NewOverviewService(handler.repositories.Pregnancies)
	handler.exportService = services.NewExportService(handler.repositories.Pregnancies)
	return handler
}

// SetClock replaces the handler's notion of now. Services read it lazily.
func (handler *Handler) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	handler.now = now
}

func (handler *Handler) clock() time.Time {
	return handler.now()
}

// today is the farm-local calendar date.
func (handler *Handler) today() time.Time {
	return services.TodayAt(handler.now(), handler.location)
}
