package services

import (
	"errors"
	"fmt"
	"time"

	"santodinheiro/database"
	"santodinheiro/email"
	"santodinheiro/finance"
	"santodinheiro/logging"
)

// SendUpcomingIncomeReminders emails every opted-in user about their next
// scheduled income, if any remains after today. Failures are logged per user
// so one bad address never blocks the rest of the run.
func SendUpcomingIncomeReminders(sender *email.Sender, now time.Time) error {
	if !sender.Enabled() {
		logging.Log.Debug("SMTP not configured, skipping reminder run")
		return nil
	}

	rows, err := database.DB.Query(`
		SELECT id, name, email FROM users WHERE notify_upcoming = ? AND email != ''
	`, true)
	if err != nil {
		return fmt.Errorf("failed to query reminder recipients: %w", err)
	}
	defer rows.Close()

	type recipient struct {
		id, name, email string
	}
	var recipients []recipient
	for rows.Next() {
		var r recipient
		if err := rows.Scan(&r.id, &r.name, &r.email); err != nil {
			return fmt.Errorf("failed to scan recipient: %w", err)
		}
		recipients = append(recipients, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range recipients {
		m, err := GetMonth(r.id, now.Year(), int(now.Month()))
		if err != nil {
			if !errors.Is(err, ErrMonthNotFound) {
				logging.Log.WithField("userId", r.id).Warnf("Failed to load month for reminder: %v", err)
			}
			continue
		}

		next := finance.NextUpcomingIncome(m.Incomes, now.Day())
		if next == nil {
			continue
		}

		if err := sender.SendUpcomingIncomeReminder(r.email, r.name, next.Description, next.DayOfMonth, next.Amount); err != nil {
			logging.Log.WithField("userId", r.id).Warnf("Failed to send reminder: %v", err)
		}
	}

	return nil
}
