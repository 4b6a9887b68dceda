// Package finance implements the monthly aggregation engine: pure,
// deterministic reductions over a month's loaded items. No I/O happens here;
// "today" is always injected by the caller.
package finance

import (
	"github.com/shopspring/decimal"

	"santodinheiro/models"
)

// titheRate is the fixed fraction of total income owed as tithe.
var titheRate = decimal.NewFromFloat(0.10)

// Item is the settlement-query view shared by all four ledger kinds, so the
// due-by-today reduction is written once.
type Item interface {
	ScheduledDay() int
	IsSettled() bool
	PlannedAmount() decimal.Decimal
	SettledAmount() decimal.Decimal
}

// NextIncome describes the earliest still-unreceived income scheduled after
// the current day.
type NextIncome struct {
	DayOfMonth  int             `json:"dayOfMonth"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Aggregates is the full figure set the month view displays.
type Aggregates struct {
	IncomesUpToToday   decimal.Decimal `json:"incomesUpToToday"`
	IncomesReceived    decimal.Decimal `json:"incomesReceived"`
	IncomesRemaining   decimal.Decimal `json:"incomesRemaining"`
	TotalIncomeOverall decimal.Decimal `json:"totalIncomeOverall"`

	ExpensesUpToToday   decimal.Decimal `json:"expensesUpToToday"`
	ExpensesPaid        decimal.Decimal `json:"expensesPaid"`
	ExpensesRemaining   decimal.Decimal `json:"expensesRemaining"`
	TotalExpenseOverall decimal.Decimal `json:"totalExpenseOverall"`

	InvestmentsUpToToday   decimal.Decimal `json:"investmentsUpToToday"`
	InvestmentsPaid        decimal.Decimal `json:"investmentsPaid"`
	InvestmentsRemaining   decimal.Decimal `json:"investmentsRemaining"`
	TotalInvestmentOverall decimal.Decimal `json:"totalInvestmentOverall"`

	MiscUpToToday    decimal.Decimal `json:"miscUpToToday"`
	MiscPaid         decimal.Decimal `json:"miscPaid"`
	MiscRemaining    decimal.Decimal `json:"miscRemaining"`
	TotalMiscOverall decimal.Decimal `json:"totalMiscOverall"`

	TitheAmount      decimal.Decimal `json:"titheAmount"`
	PredictedBalance decimal.Decimal `json:"predictedBalance"`
	ActualBalance    decimal.Decimal `json:"actualBalance"`

	NextUpcomingIncome *NextIncome `json:"nextUpcomingIncome"`
}

// dueByToday reports whether an item counts toward the "up to today"
// exposure: scheduled on or before the current day, or already settled
// regardless of date (an early payment still counts).
func dueByToday(it Item, currentDay int) bool {
	return it.ScheduledDay() <= currentDay || it.IsSettled()
}

// sums is one category's reduction result.
type sums struct {
	upToToday decimal.Decimal
	settled   decimal.Decimal
	remaining decimal.Decimal
	total     decimal.Decimal
}

// reduce walks one category once, bucketing each item by the due-by-today
// rule. remaining is the planned amount of items not yet due, i.e. the part
// of the month still ahead of the schedule.
func reduce[T Item](items []T, currentDay int) sums {
	s := sums{
		upToToday: decimal.Zero,
		settled:   decimal.Zero,
		remaining: decimal.Zero,
		total:     decimal.Zero,
	}
	for _, it := range items {
		planned := it.PlannedAmount()
		s.total = s.total.Add(planned)
		s.settled = s.settled.Add(it.SettledAmount())
		if dueByToday(it, currentDay) {
			s.upToToday = s.upToToday.Add(planned)
		} else {
			s.remaining = s.remaining.Add(planned)
		}
	}
	return s
}

// predictionExpenses filters the month's expenses down to the types that
// participate in balance math. The same type restriction applies to every
// expense figure so the balance identity holds on any day.
func predictionExpenses(expenses []models.Expense) []models.Expense {
	out := make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.CountsTowardPrediction() {
			out = append(out, e)
		}
	}
	return out
}

// TitheAmount derives the tithe owed for a set of incomes: 10% of the sum of
// all income amounts, received or not.
func TitheAmount(incomes []models.Income) decimal.Decimal {
	total := decimal.Zero
	for _, in := range incomes {
		total = total.Add(in.Amount)
	}
	return total.Mul(titheRate)
}

// NextUpcomingIncome selects the unreceived income with the smallest day of
// month strictly after currentDay. Ties go to the earlier list position;
// undated and already-received incomes never qualify.
func NextUpcomingIncome(incomes []models.Income, currentDay int) *NextIncome {
	var best *models.Income
	for i := range incomes {
		in := &incomes[i]
		if in.IsReceived || in.DayOfMonth == nil || *in.DayOfMonth <= currentDay {
			continue
		}
		if best == nil || *in.DayOfMonth < *best.DayOfMonth {
			best = in
		}
	}
	if best == nil {
		return nil
	}
	return &NextIncome{
		DayOfMonth:  *best.DayOfMonth,
		Description: best.Description,
		Amount:      best.Amount,
	}
}

// ComputeAggregates turns a loaded month plus the current day of month into
// every figure the month view displays. Inputs are assumed validated at the
// write boundary; the computation is total.
func ComputeAggregates(m models.MonthWithItems, currentDay int) Aggregates {
	incomes := reduce(m.Incomes, currentDay)
	expenses := reduce(predictionExpenses(m.Expenses), currentDay)
	investments := reduce(m.Investments, currentDay)
	misc := reduce(m.MiscExpenses, currentDay)

	predicted := incomes.upToToday.
		Sub(expenses.upToToday).
		Sub(investments.upToToday).
		Sub(misc.upToToday)

	tithePaid := decimal.Zero
	if m.IsTithePaid {
		tithePaid = m.TithePaidAmount
	}
	actual := incomes.settled.
		Sub(expenses.settled).
		Sub(investments.settled).
		Sub(misc.settled).
		Sub(tithePaid)

	return Aggregates{
		IncomesUpToToday:   incomes.upToToday,
		IncomesReceived:    incomes.settled,
		IncomesRemaining:   incomes.upToToday.Sub(incomes.settled),
		TotalIncomeOverall: incomes.total,

		ExpensesUpToToday:   expenses.upToToday,
		ExpensesPaid:        expenses.settled,
		ExpensesRemaining:   expenses.remaining,
		TotalExpenseOverall: expenses.total,

		InvestmentsUpToToday:   investments.upToToday,
		InvestmentsPaid:        investments.settled,
		InvestmentsRemaining:   investments.remaining,
		TotalInvestmentOverall: investments.total,

		MiscUpToToday:    misc.upToToday,
		MiscPaid:         misc.settled,
		MiscRemaining:    misc.remaining,
		TotalMiscOverall: misc.total,

		TitheAmount:      TitheAmount(m.Incomes),
		PredictedBalance: predicted,
		ActualBalance:    actual,

		NextUpcomingIncome: NextUpcomingIncome(m.Incomes, currentDay),
	}
}
