package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription mirrors one billing-provider subscription for a user. Rows are
// written by the billing webhook and the daily sync, never by user actions.
type Subscription struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Plan          string          `json:"plan"`
	Status        string          `json:"status"`
	MonthlyAmount decimal.Decimal `json:"monthlyAmount"`
	Currency      string          `json:"currency"`
	StartedAt     time.Time       `json:"startedAt"`
	CanceledAt    *time.Time      `json:"canceledAt,omitempty"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// BusinessMetrics is the cross-tenant admin dashboard payload.
type BusinessMetrics struct {
	ActiveSubscriptions int             `json:"activeSubscriptions"`
	CanceledLast30Days  int             `json:"canceledLast30Days"`
	MRR                 decimal.Decimal `json:"mrr"`
	ARR                 decimal.Decimal `json:"arr"`
	ChurnRate           decimal.Decimal `json:"churnRate"`
	TithePaidVolume     decimal.Decimal `json:"tithePaidVolume"`
	MonthsWithTithePaid int             `json:"monthsWithTithePaid"`
	TotalUsers          int             `json:"totalUsers"`
}
