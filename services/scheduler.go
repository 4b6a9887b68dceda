package services

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"santodinheiro/email"
	"santodinheiro/logging"
)

// StartScheduler starts the periodic jobs: the nightly billing sync and the
// morning upcoming-income reminder run. The returned cron can be stopped on
// shutdown.
func StartScheduler(sender *email.Sender) *cron.Cron {
	c := cron.New()

	// Mirror the billing provider's subscriptions shortly after midnight
	if _, err := c.AddFunc("15 0 * * *", func() {
		if err := SyncSubscriptions(); err != nil {
			if errors.Is(err, ErrBillingNotConfigured) {
				logging.Log.Debug("Billing not configured, skipping subscription sync")
				return
			}
			logging.Log.Errorf("Scheduled subscription sync failed: %v", err)
		}
	}); err != nil {
		logging.Log.Errorf("Failed to schedule subscription sync: %v", err)
	}

	// Warm every user's month row at the start of a new period
	if _, err := c.AddFunc("0 5 1 * *", func() {
		if err := ProvisionCurrentMonths(time.Now()); err != nil {
			logging.Log.Errorf("Month provisioning sweep failed: %v", err)
		}
	}); err != nil {
		logging.Log.Errorf("Failed to schedule month provisioning sweep: %v", err)
	}

	// Morning reminder about incomes scheduled later in the month
	if _, err := c.AddFunc("0 8 * * *", func() {
		if err := SendUpcomingIncomeReminders(sender, time.Now()); err != nil {
			logging.Log.Errorf("Reminder run failed: %v", err)
		}
	}); err != nil {
		logging.Log.Errorf("Failed to schedule income reminders: %v", err)
	}

	c.Start()
	logging.Log.Info("Task scheduler started")
	return c
}
