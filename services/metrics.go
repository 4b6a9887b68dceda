package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"santodinheiro/database"
	"santodinheiro/models"
)

var months12 = decimal.NewFromInt(12)

// ComputeBusinessMetrics builds the cross-tenant admin dashboard: recurring
// revenue from the mirrored subscriptions, churn over the trailing 30 days
// and the tithe volume users have marked paid.
func ComputeBusinessMetrics(now time.Time) (*models.BusinessMetrics, error) {
	metrics := &models.BusinessMetrics{
		MRR:             decimal.Zero,
		ARR:             decimal.Zero,
		ChurnRate:       decimal.Zero,
		TithePaidVolume: decimal.Zero,
	}

	rows, err := database.DB.Query(`
		SELECT monthly_amount FROM subscriptions WHERE status IN (?, ?)
	`, models.SubscriptionActive, models.SubscriptionTrialing)
	if err != nil {
		return nil, fmt.Errorf("failed to query active subscriptions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return nil, fmt.Errorf("failed to scan subscription amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("invalid subscription amount stored: %w", err)
		}
		metrics.ActiveSubscriptions++
		metrics.MRR = metrics.MRR.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	metrics.ARR = metrics.MRR.Mul(months12)

	cutoff := now.AddDate(0, 0, -30)
	err = database.DB.QueryRow(`
		SELECT COUNT(*) FROM subscriptions WHERE status = ? AND canceled_at >= ?
	`, models.SubscriptionCanceled, cutoff).Scan(&metrics.CanceledLast30Days)
	if err != nil {
		return nil, fmt.Errorf("failed to count canceled subscriptions: %w", err)
	}

	// Churn = cancellations in the window over the cohort size at its start
	cohort := metrics.ActiveSubscriptions + metrics.CanceledLast30Days
	if cohort > 0 {
		metrics.ChurnRate = decimal.NewFromInt(int64(metrics.CanceledLast30Days)).
			Div(decimal.NewFromInt(int64(cohort))).
			Round(4)
	}

	rows, err = database.DB.Query(`
		SELECT tithe_paid_amount FROM months WHERE is_tithe_paid = ?
	`, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query tithe volume: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return nil, fmt.Errorf("failed to scan tithe amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("invalid tithe amount stored: %w", err)
		}
		metrics.MonthsWithTithePaid++
		metrics.TithePaidVolume = metrics.TithePaidVolume.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = database.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&metrics.TotalUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	return metrics, nil
}
