package insights

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spendlens/backend/internal/config"
	"github.com/spendlens/backend/internal/models"
)

// UpcomingBill is an active recurring charge projected to fall due inside
// the requested window.
type UpcomingBill struct {
	SubscriptionID uuid.UUID               `json:"subscriptionId"`
	Merchant       string                  `json:"merchant"`
	Kind           models.SubscriptionKind `json:"kind"`
	Cadence        models.Cadence          `json:"cadence"`
	Amount         decimal.Decimal         `json:"amount"`
	NextDueDate    time.Time               `json:"nextDueDate"`
	DaysUntilDue   int                     `json:"daysUntilDue"`
	ReminderLevel  string                  `json:"reminderLevel"` // "urgent", "upcoming" or "soon"
}

// UpcomingBills is the bill list for a window plus its total.
type UpcomingBills struct {
	WindowDays int             `json:"windowDays"`
	TotalDue   decimal.Decimal `json:"totalDue"`
	Items      []UpcomingBill  `json:"items"`
}

// CashflowPoint is one day of the forecast series.
type CashflowPoint struct {
	Date             time.Time       `json:"date"`
	ProjectedOutflow decimal.Decimal `json:"projectedOutflow"` // cumulative
	ProjectedBalance decimal.Decimal `json:"projectedBalance"`
}

// CashflowForecast projects outflow over a window: recurring commitments on
// their due dates plus a flat variable daily average.
type CashflowForecast struct {
	Days                  int             `json:"days"`
	StartingCash          decimal.Decimal `json:"startingCash"`
	RecurringCommitments  decimal.Decimal `json:"recurringCommitments"`
	VariableDailyAverage  decimal.Decimal `json:"variableDailyAverage"`
	VariableProjected     decimal.Decimal `json:"variableProjected"`
	TotalProjectedOutflow decimal.Decimal `json:"totalProjectedOutflow"`
	ProjectedEndingCash   decimal.Decimal `json:"projectedEndingCash"`
	Points                []CashflowPoint `json:"points"`
}

// Forecaster projects near-term cash needs from active subscriptions and
// the trailing variable spend baseline.
type Forecaster struct {
	cfg config.Config
}

func NewForecaster(cfg config.Config) *Forecaster {
	return &Forecaster{cfg: cfg}
}

// UpcomingBills lists active recurring charges due within the next `days`
// days of `today`, sorted by urgency. The next occurrence is projected from
// the cadence and the last observed charge.
func (f *Forecaster) UpcomingBills(days int, today time.Time) (UpcomingBills, error) {
	today = truncateDay(today)
	windowEnd := today.AddDate(0, 0, days)

	var subs []models.Subscription
	err := models.DB.Where("active = ?", true).Find(&subs).Error
	if err != nil {
		return UpcomingBills{}, err
	}

	result := UpcomingBills{WindowDays: days, Items: []UpcomingBill{}}
	for _, sub := range subs {
		due := sub.NextDueDate(today.AddDate(0, 0, -1))
		if due.IsZero() || due.After(windowEnd) {
			continue
		}

		due = truncateDay(due)
		daysLeft := int(due.Sub(today).Hours() / 24)
		level := "soon"
		switch {
		case daysLeft <= 3:
			level = "urgent"
		case daysLeft <= 7:
			level = "upcoming"
		}

		result.Items = append(result.Items, UpcomingBill{
			SubscriptionID: sub.ID,
			Merchant:       sub.Merchant,
			Kind:           sub.Kind,
			Cadence:        sub.Cadence,
			Amount:         sub.Amount,
			NextDueDate:    due,
			DaysUntilDue:   daysLeft,
			ReminderLevel:  level,
		})
		result.TotalDue = result.TotalDue.Add(sub.Amount)
	}

	sort.Slice(result.Items, func(i, j int) bool {
		a, b := result.Items[i], result.Items[j]
		if a.DaysUntilDue != b.DaysUntilDue {
			return a.DaysUntilDue < b.DaysUntilDue
		}
		return a.Amount.LessThan(b.Amount)
	})

	return result, nil
}

// Forecast builds the daily projected balance series for the window.
// Recurring commitments land on their due dates, variable spend is the
// trailing baseline daily average of non-recurring, non-excluded spend
// applied uniformly. The cumulative outflow never decreases; the caller
// decides what a negative ending balance means.
func (f *Forecaster) Forecast(days int, startingCash decimal.Decimal, today time.Time) (CashflowForecast, error) {
	today = truncateDay(today)

	bills, err := f.UpcomingBills(days, today)
	if err != nil {
		return CashflowForecast{}, err
	}

	variableDaily, err := f.variableDailyAverage(today)
	if err != nil {
		return CashflowForecast{}, err
	}

	dueByDay := map[time.Time]decimal.Decimal{}
	for _, bill := range bills.Items {
		dueByDay[bill.NextDueDate] = dueByDay[bill.NextDueDate].Add(bill.Amount)
	}

	forecast := CashflowForecast{
		Days:                 days,
		StartingCash:         startingCash,
		RecurringCommitments: bills.TotalDue,
		VariableDailyAverage: variableDaily.Round(2),
		VariableProjected:    variableDaily.Mul(decimal.NewFromInt(int64(days))).Round(2),
	}

	cumulative := decimal.Zero
	for day := today; !day.After(today.AddDate(0, 0, days)); day = day.AddDate(0, 0, 1) {
		cumulative = cumulative.Add(variableDaily).Add(dueByDay[day])
		forecast.Points = append(forecast.Points, CashflowPoint{
			Date:             day,
			ProjectedOutflow: cumulative.Round(2),
			ProjectedBalance: startingCash.Sub(cumulative).Round(2),
		})
	}

	forecast.TotalProjectedOutflow = bills.TotalDue.Add(forecast.VariableProjected).Round(2)
	forecast.ProjectedEndingCash = startingCash.Sub(forecast.TotalProjectedOutflow).Round(2)

	return forecast, nil
}

// variableDailyAverage averages non-recurring spend over the trailing
// baseline window. Recurring charges are excluded, they are already
// counted on their due dates.
func (f *Forecaster) variableDailyAverage(today time.Time) (decimal.Decimal, error) {
	baselineDays := f.cfg.ForecastBaselineDays
	trailStart := today.AddDate(0, 0, -baselineDays)

	var total decimal.NullDecimal
	err := models.DB.Model(&models.Transaction{}).
		Where("posted_date >= ? AND posted_date <= ?", trailStart, today).
		Where("amount > 0").
		Where("excluded = ?", false).
		Where("recurring_signature = ?", "").
		Select("SUM(amount)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}

	return total.Decimal.Div(decimal.NewFromInt(int64(baselineDays))), nil
}

func truncateDay(t time.Time) time.Time {
	year, month, day := t.In(time.UTC).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
