package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// UnscheduledDay is the sentinel returned by ScheduledDay for items without
// a day of month. It never satisfies <= currentDay for any valid day, so
// undated items only count toward "up to today" once settled.
const UnscheduledDay = 32

// Income is a scheduled or received inflow.
type Income struct {
	ID          string          `json:"id"`
	MonthID     string          `json:"monthId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DayOfMonth  *int            `json:"dayOfMonth,omitempty"`
	IsReceived  bool            `json:"isReceived"`
	IsTithePaid bool            `json:"isTithePaid"`
	Order       int             `json:"order"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Expense is a scheduled or paid outflow. Type partitions standard recurring
// spend from the tithe line item.
type Expense struct {
	ID          string          `json:"id"`
	MonthID     string          `json:"monthId"`
	Description string          `json:"description"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	PaidAmount  decimal.Decimal `json:"paidAmount"`
	DayOfMonth  *int            `json:"dayOfMonth,omitempty"`
	IsPaid      bool            `json:"isPaid"`
	Type        string          `json:"type"`
	Order       int             `json:"order"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Investment is a scheduled or made contribution.
type Investment struct {
	ID          string          `json:"id"`
	MonthID     string          `json:"monthId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DayOfMonth  *int            `json:"dayOfMonth,omitempty"`
	IsPaid      bool            `json:"isPaid"`
	Order       int             `json:"order"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// MiscExpense is an unplanned or variable spend.
type MiscExpense struct {
	ID          string          `json:"id"`
	MonthID     string          `json:"monthId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DayOfMonth  *int            `json:"dayOfMonth,omitempty"`
	IsPaid      bool            `json:"isPaid"`
	Order       int             `json:"order"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func scheduledDay(day *int) int {
	if day == nil {
		return UnscheduledDay
	}
	return *day
}

// ScheduledDay returns the income's day of month, or UnscheduledDay when absent.
func (i Income) ScheduledDay() int { return scheduledDay(i.DayOfMonth) }

// IsSettled reports whether the income has been received.
func (i Income) IsSettled() bool { return i.IsReceived }

// PlannedAmount returns the full scheduled amount.
func (i Income) PlannedAmount() decimal.Decimal { return i.Amount }

// SettledAmount returns the amount actually received so far.
func (i Income) SettledAmount() decimal.Decimal {
	if i.IsReceived {
		return i.Amount
	}
	return decimal.Zero
}

func (e Expense) ScheduledDay() int { return scheduledDay(e.DayOfMonth) }

// IsSettled reports whether any money has moved against this expense. A
// partial early payment pulls the expense into "up to today" just like a
// full one.
func (e Expense) IsSettled() bool { return e.PaidAmount.IsPositive() }

func (e Expense) PlannedAmount() decimal.Decimal { return e.TotalAmount }

func (e Expense) SettledAmount() decimal.Decimal { return e.PaidAmount }

// CountsTowardPrediction reports whether the expense type participates in
// balance math. Other types are categorization only.
func (e Expense) CountsTowardPrediction() bool {
	return e.Type == ExpenseTypeStandard || e.Type == ExpenseTypeTithe
}

func (v Investment) ScheduledDay() int { return scheduledDay(v.DayOfMonth) }

func (v Investment) IsSettled() bool { return v.IsPaid }

func (v Investment) PlannedAmount() decimal.Decimal { return v.Amount }

func (v Investment) SettledAmount() decimal.Decimal {
	if v.IsPaid {
		return v.Amount
	}
	return decimal.Zero
}

func (m MiscExpense) ScheduledDay() int { return scheduledDay(m.DayOfMonth) }

func (m MiscExpense) IsSettled() bool { return m.IsPaid }

func (m MiscExpense) PlannedAmount() decimal.Decimal { return m.Amount }

func (m MiscExpense) SettledAmount() decimal.Decimal {
	if m.IsPaid {
		return m.Amount
	}
	return decimal.Zero
}

// ValidateAmountAndDay enforces the write-boundary rules shared by all four
// item kinds: amount strictly positive, day of month in [1,31] when present.
func ValidateAmountAndDay(amount decimal.Decimal, day *int) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be greater than zero")
	}
	if day != nil && (*day < 1 || *day > 31) {
		return fmt.Errorf("dayOfMonth must be between 1 and 31")
	}
	return nil
}

// Validate checks the income against the write-boundary rules.
func (i Income) Validate() error {
	return ValidateAmountAndDay(i.Amount, i.DayOfMonth)
}

// Validate checks the expense against the write-boundary rules. PaidAmount
// may be zero but never negative or above the total.
func (e Expense) Validate() error {
	if err := ValidateAmountAndDay(e.TotalAmount, e.DayOfMonth); err != nil {
		return err
	}
	if e.PaidAmount.IsNegative() {
		return fmt.Errorf("paidAmount must not be negative")
	}
	if e.PaidAmount.GreaterThan(e.TotalAmount) {
		return fmt.Errorf("paidAmount must not exceed totalAmount")
	}
	if e.Type == "" {
		return fmt.Errorf("type is required")
	}
	return nil
}

// Validate checks the investment against the write-boundary rules.
func (v Investment) Validate() error {
	return ValidateAmountAndDay(v.Amount, v.DayOfMonth)
}

// Validate checks the misc expense against the write-boundary rules.
func (m MiscExpense) Validate() error {
	return ValidateAmountAndDay(m.Amount, m.DayOfMonth)
}
