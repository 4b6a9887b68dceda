package finance

import (
	"testing"

	"github.com/shopspring/decimal"

	"santodinheiro/models"
)

func day(d int) *int { return &d }

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func income(amount string, dayOfMonth *int, received bool) models.Income {
	return models.Income{
		Description: "income",
		Amount:      dec(amount),
		DayOfMonth:  dayOfMonth,
		IsReceived:  received,
	}
}

func expense(total, paid string, dayOfMonth *int, typ string) models.Expense {
	return models.Expense{
		Description: "expense",
		TotalAmount: dec(total),
		PaidAmount:  dec(paid),
		DayOfMonth:  dayOfMonth,
		Type:        typ,
	}
}

func TestTitheAmountIgnoresReceivedFlag(t *testing.T) {
	incomes := []models.Income{
		income("8500", day(6), true),
		income("1500", day(20), false),
		income("250.50", nil, false),
	}

	got := TitheAmount(incomes)
	want := dec("1025.05")
	if !got.Equal(want) {
		t.Errorf("Expected tithe %s, got %s", want, got)
	}

	// Flipping every received flag must not change the tithe
	for i := range incomes {
		incomes[i].IsReceived = !incomes[i].IsReceived
	}
	if !TitheAmount(incomes).Equal(want) {
		t.Errorf("Tithe changed when received flags flipped")
	}
}

func TestDueByTodayMonotonicInclusion(t *testing.T) {
	m := models.MonthWithItems{
		Incomes: []models.Income{
			income("100", day(5), false),
			income("200", day(15), false),
			income("300", day(25), false),
		},
	}

	prev := decimal.Zero
	for currentDay := 1; currentDay <= 31; currentDay++ {
		agg := ComputeAggregates(m, currentDay)
		if agg.IncomesUpToToday.LessThan(prev) {
			t.Fatalf("IncomesUpToToday decreased from %s to %s at day %d",
				prev, agg.IncomesUpToToday, currentDay)
		}
		prev = agg.IncomesUpToToday
	}

	if !prev.Equal(dec("600")) {
		t.Errorf("Expected all incomes included by day 31, got %s", prev)
	}
}

func TestSettledItemsCountBeforeScheduledDay(t *testing.T) {
	m := models.MonthWithItems{
		Incomes: []models.Income{
			income("500", day(28), true), // received early
			income("120", nil, true),     // undated but received
			income("999", nil, false),    // undated, unreceived: excluded
		},
		Investments: []models.Investment{
			{Description: "cdb", Amount: dec("200"), DayOfMonth: day(30), IsPaid: true},
		},
		Expenses: []models.Expense{
			// Partial early payment pulls the whole planned amount in
			expense("1600", "100", day(29), models.ExpenseTypeStandard),
		},
	}

	agg := ComputeAggregates(m, 10)

	if !agg.IncomesUpToToday.Equal(dec("620")) {
		t.Errorf("Expected incomesUpToToday 620, got %s", agg.IncomesUpToToday)
	}
	if !agg.InvestmentsUpToToday.Equal(dec("200")) {
		t.Errorf("Expected investmentsUpToToday 200, got %s", agg.InvestmentsUpToToday)
	}
	if !agg.ExpensesUpToToday.Equal(dec("1600")) {
		t.Errorf("Expected expensesUpToToday 1600, got %s", agg.ExpensesUpToToday)
	}
}

func TestPredictedBalanceIdentity(t *testing.T) {
	m := models.MonthWithItems{
		Incomes: []models.Income{
			income("8500", day(6), true),
			income("1200", day(20), false),
		},
		Expenses: []models.Expense{
			expense("1600", "1520", day(18), models.ExpenseTypeStandard),
			expense("850", "0", day(5), models.ExpenseTypeTithe),
			expense("75", "75", day(2), "CARD"), // categorization only, never in balances
		},
		Investments: []models.Investment{
			{Description: "etf", Amount: dec("200"), DayOfMonth: day(10), IsPaid: true},
		},
		MiscExpenses: []models.MiscExpense{
			{Description: "gift", Amount: dec("90"), DayOfMonth: day(12), IsPaid: false},
		},
	}

	for _, currentDay := range []int{1, 6, 15, 28, 31} {
		agg := ComputeAggregates(m, currentDay)
		want := agg.IncomesUpToToday.
			Sub(agg.ExpensesUpToToday).
			Sub(agg.InvestmentsUpToToday).
			Sub(agg.MiscUpToToday)
		if !agg.PredictedBalance.Equal(want) {
			t.Errorf("day %d: predictedBalance %s, expected identity value %s",
				currentDay, agg.PredictedBalance, want)
		}
	}
}

func TestCategorizationOnlyExpensesExcluded(t *testing.T) {
	m := models.MonthWithItems{
		Expenses: []models.Expense{
			expense("75", "75", day(2), "CARD"),
		},
	}

	agg := ComputeAggregates(m, 28)
	if !agg.ExpensesUpToToday.IsZero() || !agg.ExpensesPaid.IsZero() || !agg.TotalExpenseOverall.IsZero() {
		t.Errorf("Expected CARD expense excluded from all expense figures, got upToToday=%s paid=%s total=%s",
			agg.ExpensesUpToToday, agg.ExpensesPaid, agg.TotalExpenseOverall)
	}
}

func TestNextUpcomingIncomeSelection(t *testing.T) {
	incomes := []models.Income{
		income("100", day(5), false),  // past and unreceived: excluded
		income("200", day(20), false), // the winner
		income("300", day(12), true),  // received: excluded
	}

	next := NextUpcomingIncome(incomes, 10)
	if next == nil {
		t.Fatal("Expected an upcoming income, got nil")
	}
	if next.DayOfMonth != 20 {
		t.Errorf("Expected day 20, got %d", next.DayOfMonth)
	}
	if !next.Amount.Equal(dec("200")) {
		t.Errorf("Expected amount 200, got %s", next.Amount)
	}

	if got := NextUpcomingIncome(incomes, 25); got != nil {
		t.Errorf("Expected nil after the last scheduled income, got day %d", got.DayOfMonth)
	}
}

func TestNextUpcomingIncomeTieBreaksOnListOrder(t *testing.T) {
	incomes := []models.Income{
		{Description: "first", Amount: dec("50"), DayOfMonth: day(15)},
		{Description: "second", Amount: dec("60"), DayOfMonth: day(15)},
	}

	next := NextUpcomingIncome(incomes, 10)
	if next == nil || next.Description != "first" {
		t.Errorf("Expected the earlier list position to win the tie, got %+v", next)
	}
}

func TestFullMonthScenario(t *testing.T) {
	m := models.MonthWithItems{
		Month: models.Month{
			IsTithePaid:     true,
			TithePaidAmount: dec("850"),
		},
		Incomes: []models.Income{
			income("8500", day(6), true),
		},
		Expenses: []models.Expense{
			expense("1600", "1520", day(18), models.ExpenseTypeStandard),
		},
		Investments: []models.Investment{
			{Description: "cdb", Amount: dec("200"), DayOfMonth: day(10), IsPaid: true},
		},
	}

	agg := ComputeAggregates(m, 28)

	if !agg.IncomesUpToToday.Equal(dec("8500")) {
		t.Errorf("incomesUpToToday = %s, want 8500", agg.IncomesUpToToday)
	}
	if !agg.ExpensesUpToToday.Equal(dec("1600")) {
		t.Errorf("expensesUpToToday = %s, want 1600", agg.ExpensesUpToToday)
	}
	if !agg.InvestmentsUpToToday.Equal(dec("200")) {
		t.Errorf("investmentsUpToToday = %s, want 200", agg.InvestmentsUpToToday)
	}
	if !agg.PredictedBalance.Equal(dec("6700")) {
		t.Errorf("predictedBalance = %s, want 6700", agg.PredictedBalance)
	}

	// 8500 - (1520 + 200 + 0) - 850 tithe paid
	if !agg.ActualBalance.Equal(dec("5930")) {
		t.Errorf("actualBalance = %s, want 5930", agg.ActualBalance)
	}
	if !agg.TitheAmount.Equal(dec("850")) {
		t.Errorf("titheAmount = %s, want 850", agg.TitheAmount)
	}
}

func TestTitheNotDoubleCountedWhenUnpaid(t *testing.T) {
	m := models.MonthWithItems{
		Month: models.Month{IsTithePaid: false, TithePaidAmount: dec("850")},
		Incomes: []models.Income{
			income("1000", day(1), true),
		},
	}

	agg := ComputeAggregates(m, 15)
	if !agg.ActualBalance.Equal(dec("1000")) {
		t.Errorf("Expected unpaid tithe to stay out of actualBalance, got %s", agg.ActualBalance)
	}
}

func TestZeroIncomeMonth(t *testing.T) {
	m := models.MonthWithItems{
		Expenses: []models.Expense{
			expense("300", "0", day(10), models.ExpenseTypeStandard),
		},
	}

	agg := ComputeAggregates(m, 15)

	if !agg.TitheAmount.IsZero() {
		t.Errorf("Expected zero tithe with no incomes, got %s", agg.TitheAmount)
	}
	if !agg.PredictedBalance.Equal(dec("-300")) {
		t.Errorf("Expected predictedBalance -300, got %s", agg.PredictedBalance)
	}
	if agg.NextUpcomingIncome != nil {
		t.Errorf("Expected no upcoming income, got %+v", agg.NextUpcomingIncome)
	}
}

func TestRemainingFigures(t *testing.T) {
	m := models.MonthWithItems{
		Incomes: []models.Income{
			income("1000", day(5), true),
			income("500", day(10), false),
		},
		Expenses: []models.Expense{
			expense("400", "0", day(8), models.ExpenseTypeStandard),
			expense("250", "0", day(25), models.ExpenseTypeStandard),
		},
	}

	agg := ComputeAggregates(m, 12)

	// 1500 due by day 12, only 1000 received
	if !agg.IncomesRemaining.Equal(dec("500")) {
		t.Errorf("incomesRemaining = %s, want 500", agg.IncomesRemaining)
	}
	// Only the day-25 expense is still ahead of the schedule
	if !agg.ExpensesRemaining.Equal(dec("250")) {
		t.Errorf("expensesRemaining = %s, want 250", agg.ExpensesRemaining)
	}
}
