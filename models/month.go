package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Month is the container for one user's calendar month. Exactly one row
// exists per (userID, month, year); the four child lists are cascade-deleted
// with it.
type Month struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Month           int             `json:"month"` // 1-12
	Year            int             `json:"year"`
	IsTithePaid     bool            `json:"isTithePaid"`
	TithePaidAmount decimal.Decimal `json:"tithePaidAmount"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// MonthWithItems is a Month plus its fully loaded child collections, the
// in-memory snapshot the aggregation engine operates on.
type MonthWithItems struct {
	Month
	Incomes      []Income      `json:"incomes"`
	Expenses     []Expense     `json:"expenses"`
	Investments  []Investment  `json:"investments"`
	MiscExpenses []MiscExpense `json:"miscExpenses"`
}
