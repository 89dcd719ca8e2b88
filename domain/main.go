package domain

import (
	"github.com/Nathankoth/waitlist-main-second/config"
	"github.com/Nathankoth/waitlist-main-second/domain/monitoring"
	"github.com/Nathankoth/waitlist-main-second/domain/waitlist"
	"github.com/Nathankoth/waitlist-main-second/pkg/notify"
)

// SetupCoreDomain validates the waitlist rules, builds the notification
// dispatcher and mounts every controller. Configuration problems surface
// here, before the server starts taking traffic.
func SetupCoreDomain(appConfig *config.ApplicationConfig) error {
	rules := buildRules(appConfig.Config)
	if err := rules.ValidateConfig(); err != nil {
		return err
	}

	var dispatcher waitlist.SignupDispatcher
	if d := buildDispatcher(appConfig); d != nil {
		dispatcher = d
		appConfig.Notify = d
	}

	monitoringFactory := monitoring.NewMonitoringControllerFactory(appConfig.DB, appConfig.Logger, appConfig.Cache)
	appConfig.RouterService.MountController(monitoringFactory.CreateController())

	waitlistFactory := waitlist.NewWaitlistServiceFactory(appConfig.DB, appConfig.Logger, &waitlist.ControllerConfig{
		Rules:      rules,
		Dispatcher: dispatcher,
		AdminToken: appConfig.Config.AdminAPIToken,
	})
	appConfig.RouterService.MountController(waitlistFactory.CreateController())

	return nil
}

func buildRules(cfg *config.AppConfig) waitlist.Rules {
	rules := waitlist.DefaultRules()

	if len(cfg.WaitlistRoles) > 0 {
		rules.Roles = cfg.WaitlistRoles
	}
	if len(cfg.WaitlistMonthlyBands) > 0 {
		rules.MonthlyListingBands = cfg.WaitlistMonthlyBands
	}
	if len(cfg.WaitlistYearsBands) > 0 {
		rules.YearsExperienceBands = cfg.WaitlistYearsBands
	}

	return rules
}

// buildDispatcher assembles the configured notification sinks. Returns nil
// when no sink is configured so the service skips dispatching entirely.
func buildDispatcher(appConfig *config.ApplicationConfig) *notify.Dispatcher {
	cfg := appConfig.Config
	logger := appConfig.Logger

	var notifiers []notify.Notifier

	if cfg.SlackWebhookURL != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(cfg.SlackWebhookURL, nil))
	} else {
		logger.Info("Slack webhook not configured, signup notifications to Slack disabled")
	}

	if cfg.MailchimpAPIKey != "" && cfg.MailchimpListID != "" {
		notifiers = append(notifiers, notify.NewMailchimpNotifier(cfg.MailchimpAPIKey, cfg.MailchimpListID, cfg.MailchimpServerPrefix, nil))
	} else {
		logger.Info("Mailchimp not configured, signup list subscription disabled")
	}

	if len(notifiers) == 0 {
		return nil
	}

	return notify.NewDispatcher(logger, nil, notifiers...)
}
