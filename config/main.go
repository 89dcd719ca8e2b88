package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Nathankoth/waitlist-main-second/config/router"
	"github.com/Nathankoth/waitlist-main-second/internal/log"
	"github.com/Nathankoth/waitlist-main-second/internal/models"
	"github.com/Nathankoth/waitlist-main-second/pkg/constants"
	"gorm.io/gorm"
)

type ApplicationConfig struct {
	DB              *gorm.DB
	RouterService   *router.RouterService
	Logger          *log.Logger
	Cache           Cache
	Config          *AppConfig
	Notify          NotificationDrainer
	TracingShutdown func(context.Context) error
}

// NotificationDrainer blocks until in-flight signup notifications finish.
// Implemented by the notification dispatcher; consulted during Cleanup so
// shutdown does not cut goroutines off mid-delivery.
type NotificationDrainer interface {
	Wait()
}

type AppConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration

	// Waitlist validation rules. Empty slices mean "use the built-in
	// defaults" so a bare deployment needs no extra configuration.
	WaitlistRoles        []string
	WaitlistMonthlyBands []string
	WaitlistYearsBands   []string

	AdminAPIToken string

	SlackWebhookURL       string
	MailchimpAPIKey       string
	MailchimpListID       string
	MailchimpServerPrefix string
}

func NewAppConfig() *AppConfig {
	config := &AppConfig{
		RateLimitRequests: constants.DefaultRateLimitRequests,
		RateLimitWindow:   constants.DefaultRateLimitWindow(),
		RequestTimeout:    30 * time.Second, // Default request timeout
	}

	// Override from environment variables
	if reqStr := os.Getenv("RATE_LIMIT_REQUESTS"); reqStr != "" {
		if parsed, err := strconv.Atoi(reqStr); err == nil && parsed > 0 {
			config.RateLimitRequests = parsed
		}
	}

	if winStr := os.Getenv("RATE_LIMIT_WINDOW"); winStr != "" {
		if parsed, err := time.ParseDuration(winStr); err == nil && parsed > 0 {
			config.RateLimitWindow = parsed
		}
	}

	if timeoutStr := os.Getenv("REQUEST_TIMEOUT"); timeoutStr != "" {
		if parsed, err := time.ParseDuration(timeoutStr); err == nil && parsed > 0 {
			config.RequestTimeout = parsed
		}
	}

	config.WaitlistRoles = splitEnvList("WAITLIST_ROLES")
	config.WaitlistMonthlyBands = splitEnvList("WAITLIST_MONTHLY_LISTING_BANDS")
	config.WaitlistYearsBands = splitEnvList("WAITLIST_YEARS_EXPERIENCE_BANDS")

	config.AdminAPIToken = os.Getenv("ADMIN_API_TOKEN")

	config.SlackWebhookURL = os.Getenv("SLACK_WEBHOOK_URL")
	config.MailchimpAPIKey = os.Getenv("MAILCHIMP_API_KEY")
	config.MailchimpListID = os.Getenv("MAILCHIMP_LIST_ID")
	config.MailchimpServerPrefix = os.Getenv("MAILCHIMP_SERVER_PREFIX")

	return config
}

// splitEnvList parses a comma separated environment variable into a slice,
// trimming whitespace and dropping empty items.
func splitEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	var values []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			values = append(values, trimmed)
		}
	}

	return values
}

func (ac *ApplicationConfig) Cleanup() {
	if ac.Notify != nil {
		ac.Notify.Wait()
	}

	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}

	if ac.DB != nil {
		CloseDatabase(ac.DB, ac.Logger)
	}

	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	if ac.Cache != nil {
		CloseCache(ac.Cache, ac.Logger)
	}

	ac.Logger.Info("Application cleanup completed")
}

func LoadApplicationConfiguration(logger *log.Logger, autoMigrate bool) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	if autoMigrate {
		appEnv := GetAppEnv()
		if err := ValidateAutoMigrateAllowed(appEnv); err != nil {
			return nil, err
		}
		if appEnv == "" {
			logger.Warn("APP_ENV not set; allowing --auto-migrate as development")
		}
	}

	tracingShutdown, err := SetupTracing(logger)
	if err != nil {
		return nil, err
	}

	dbCfg := &DBConfig{}
	db, err := NewDatabase(logger, dbCfg)
	if err != nil {
		return nil, err
	}

	if autoMigrate {
		if err := AutoMigrate(logger, db, models.ModelRegistry...); err != nil {
			return nil, err
		}
	}

	appConfig := NewAppConfig()
	cache := NewCacheConfig().NewCacheOrNil(logger)

	routerService := router.CreateRouterService(logger, cache, &router.RouterConfig{
		RateLimitRequests: appConfig.RateLimitRequests,
		RateLimitWindow:   appConfig.RateLimitWindow,
		RequestTimeout:    appConfig.RequestTimeout,
	})

	logger.Info("Application configuration loaded successfully")

	return &ApplicationConfig{
		DB:              db,
		RouterService:   routerService,
		Logger:          logger,
		Cache:           cache,
		Config:          appConfig,
		TracingShutdown: tracingShutdown,
	}, nil
}
