package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/terraincognita07/foalwatch/internal/models"
)

const (
	DefaultFoalingReminderDays = 14
	notificationInterval       = 6 * time.Hour
	maxTrackedNotifications    = 500
)

type NotificationConfig struct {
	BotToken            string
	ChatID              string
	FoalingReminderDays int
	APIBaseURL          string
}

func (config NotificationConfig) Enabled() bool {
	return strings.TrimSpace(config.BotToken) != "" && strings.TrimSpace(config.ChatID) != ""
}

type NotificationOwnerReader interface {
	ListOwners() ([]models.User, error)
}

type NotificationPregnancyReader interface {
	ListByUser(userID uint, filter models.PregnancyFilter) ([]models.Pregnancy, error)
}

// Notice is one reminder ready to send.
type Notice struct {
	Key     string
	Message string
}

type NotificationService struct {
	owners       NotificationOwnerReader
	pregnancies  NotificationPregnancyReader
	config       NotificationConfig
	location     *time.Location
	milestones   []Milestone
	client       *http.Client
	now          func() time.Time
	mu           sync.Mutex
	sentToday    map[string]time.Time
	sendOverride func(ctx context.Context, message string) error
}

func NewNotificationService(owners NotificationOwnerReader, pregnancies NotificationPregnancyReader, config NotificationConfig, location *time.Location) *NotificationService {
	if config.FoalingReminderDays < 0 {
		config.FoalingReminderDays = DefaultFoalingReminderDays
	}
	if strings.TrimSpace(config.APIBaseURL) == "" {
		config.APIBaseURL = "https://api.telegram.org"
	}
	if location == nil {
		location = time.Local
	}

	return &NotificationService{
		owners:      owners,
		pregnancies: pregnancies,
		config:      config,
		location:    location,
		milestones:  DefaultMilestones(),
		client: &http.Client{
			Timeout: 8 * time.Second,
		},
		now:       time.Now,
		sentToday: make(map[string]time.Time),
	}
}

func (service *NotificationService) Start(ctx context.Context) {
	if !service.config.Enabled() {
		return
	}

	ticker := time.NewTicker(notificationInterval)
	go func() {
		defer ticker.Stop()

		service.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				service.RunOnce(ctx)
			}
		}
	}()
}

func (service *NotificationService) RunOnce(ctx context.Context) {
	owners, err := service.owners.ListOwners()
	if err != nil {
		log.Printf("notifications: fetch owners failed: %v", err)
		return
	}

	today := TodayAt(service.now(), service.location)
	for _, owner := range owners {
		if ctx.Err() != nil {
			return
		}

		ongoing, err := service.pregnancies.ListByUser(owner.ID, models.PregnancyFilter{Outcome: models.OutcomeOngoing})
		if err != nil {
			log.Printf("notifications: fetch pregnancies failed for user %d: %v", owner.ID, err)
			continue
		}

		for _, notice := range BuildFoalingNotices(ongoing, today, service.config.FoalingReminderDays, service.milestones) {
			if !service.shouldSend(notice.Key, today) {
				continue
			}
			if err := service.send(ctx, notice.Message); err != nil {
				log.Printf("notifications: send %s failed: %v", notice.Key, err)
			}
		}
	}
}

// BuildFoalingNotices lists the reminders due on today for ongoing pregnancies.
func BuildFoalingNotices(pregnancies []models.Pregnancy, today time.Time, reminderDays int, milestones []Milestone) []Notice {
	day := FormatCalendarDate(today)
	notices := make([]Notice, 0)
	for _, pregnancy := range pregnancies {
		if !pregnancy.IsOngoing() {
			continue
		}
		status, err := ComputePregnancyStatus(pregnancy.ConceptionDate, today)
		if err != nil || status.BeforeConception {
			continue
		}

		mareName := strings.TrimSpace(pregnancy.Mare.Name)
		if mareName == "" {
			mareName = fmt.Sprintf("mare #%d", pregnancy.MareID)
		}

		if reminderDays > 0 && status.DaysRemaining == reminderDays {
			notices = append(notices, Notice{
				Key: fmt.Sprintf("due:%d:%s", pregnancy.ID, day),
				Message: fmt.Sprintf("Foalwatch: %s is due in %d day(s), on %s.",
					mareName, reminderDays, status.DueDate.Format("Jan 2"),
				),
			})
		}

		for _, milestone := range milestones {
			if milestone.Day != status.ElapsedDays {
				continue
			}
			notices = append(notices, Notice{
				Key: fmt.Sprintf("milestone:%d:%s:%s", pregnancy.ID, milestone.Key, day),
				Message: fmt.Sprintf("Foalwatch: %s reached day %d (%s).",
					mareName, milestone.Day, milestone.Label,
				),
			})
		}

		if status.IsOverdue {
			notices = append(notices, Notice{
				Key: fmt.Sprintf("overdue:%d:%s", pregnancy.ID, day),
				Message: fmt.Sprintf("Foalwatch: %s is %d day(s) past the due date (%s).",
					mareName, -status.DaysRemaining, status.DueDate.Format("Jan 2"),
				),
			})
		}
	}
	return notices
}

func (service *NotificationService) shouldSend(key string, today time.Time) bool {
	service.mu.Lock()
	defer service.mu.Unlock()

	if sentOn, ok := service.sentToday[key]; ok && sentOn.Equal(today) {
		return false
	}

	if len(service.sentToday) >= maxTrackedNotifications {
		service.sentToday = make(map[string]time.Time)
	}
	service.sentToday[key] = today
	return true
}

func (service *NotificationService) send(ctx context.Context, message string) error {
	if service.sendOverride != nil {
		return service.sendOverride(ctx, message)
	}
	return service.sendTelegram(ctx, message)
}

func (service *NotificationService) sendTelegram(ctx context.Context, message string) error {
	values := url.Values{}
	values.Set("chat_id", service.config.ChatID)
	values.Set("text", message)

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(service.config.APIBaseURL, "/"), service.config.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := service.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
