package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/terraincognita07/foalwatch/internal/api"
	"github.com/terraincognita07/foalwatch/internal/cli"
	"github.com/terraincognita07/foalwatch/internal/db"
	"github.com/terraincognita07/foalwatch/internal/i18n"
	"github.com/terraincognita07/foalwatch/internal/services"
)

const minSecretKeyLength = 32

var insecureSecretPlaceholders = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

func main() {
	dbPath := getEnv("DB_PATH", filepath.Join("data", "foalwatch.db"))

	if len(os.Args) > 1 {
		if err := runCommand(dbPath, os.Args[1:]); err != nil {
			log.Fatal(err)
		}
		return
	}

	location := mustLoadLocation(getEnv("TZ", "UTC"))
	time.Local = location

	secretKey, err := resolveSecretKey()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	port, err := resolvePort()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	cookieSecure, err := resolveCookieSecure()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	reminderDays, err := resolveFoalingReminderDays()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	defaultLanguage := getEnv("DEFAULT_LANGUAGE", "en")

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	i18nManager, err := i18n.NewManager(defaultLanguage, i18n.EmbeddedLocales())
	if err != nil {
		log.Fatalf("i18n init failed: %v", err)
	}

	handler, err := api.NewHandler(database, secretKey, location, i18nManager, cookieSecure)
	if err != nil {
		log.Fatalf("handler init failed: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Foalwatch",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(handler.LanguageMiddleware)
	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)

	repositories := db.NewRepositories(database)
	notifier := services.NewNotificationService(
		repositories.Users,
		repositories.Pregnancies,
		services.NotificationConfig{
			BotToken:            os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID:              os.Getenv("TELEGRAM_CHAT_ID"),
			FoalingReminderDays: reminderDays,
		},
		location,
	)
	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()
	notifier.Start(lifecycleCtx)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Foalwatch listening on http://0.0.0.0:%s (db: %s, tz: %s)", port, dbPath, location.String())
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func runCommand(dbPath string, args []string) error {
	command := strings.TrimSpace(args[0])
	switch command {
	case "reset-password", "set-password":
		if len(args) != 2 {
			return fmt.Errorf("usage: foalwatch %s <email>", command)
		}
		if command == "reset-password" {
			return cli.RunResetPasswordCommand(dbPath, args[1], os.Stdout)
		}
		return cli.RunSetPasswordCommand(dbPath, args[1], os.Stdin, os.Stdout)
	default:
		return fmt.Errorf("unknown command %q (available: reset-password, set-password)", command)
	}
}

func resolveSecretKey() (string, error) {
	secret := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretPlaceholders[secret]; insecure {
		return "", errors.New("SECRET_KEY uses a placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

func resolvePort() (string, error) {
	raw := strings.TrimSpace(getEnv("PORT", "8080"))
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("PORT must be between 1 and 65535, got %q", raw)
	}
	return strconv.Itoa(port), nil
}

func resolveCookieSecure() (bool, error) {
	raw := strings.TrimSpace(os.Getenv("COOKIE_SECURE"))
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("COOKIE_SECURE must be a boolean, got %q", raw)
	}
	return value, nil
}

// resolveFoalingReminderDays returns the default when unset; 0 turns the
// before-due reminder off.
func resolveFoalingReminderDays() (int, error) {
	raw := strings.TrimSpace(os.Getenv("FOALING_REMINDER_DAYS"))
	if raw == "" {
		return services.DefaultFoalingReminderDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 || days > services.TotalGestationDays {
		return 0, fmt.Errorf("FOALING_REMINDER_DAYS must be between 0 and %d, got %q", services.TotalGestationDays, raw)
	}
	return days, nil
}

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
