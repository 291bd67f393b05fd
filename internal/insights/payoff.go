package insights

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendlens/backend/internal/config"
)

// PayoffStatus classifies the outcome of a payoff simulation.
type PayoffStatus string

const (
	PayoffPaid              PayoffStatus = "paid"
	PayoffInvalidPayment    PayoffStatus = "invalid_payment"
	PayoffPaymentTooLow     PayoffStatus = "payment_too_low"
	PayoffOK                PayoffStatus = "ok"
	PayoffMaxMonthsExceeded PayoffStatus = "max_months_exceeded"
)

// PayoffRow is one month of an amortization schedule.
type PayoffRow struct {
	Month           int             `json:"month"`
	Date            time.Time       `json:"date"`
	StartingBalance decimal.Decimal `json:"startingBalance"`
	Interest        decimal.Decimal `json:"interest"`
	Payment         decimal.Decimal `json:"payment"`
	Principal       decimal.Decimal `json:"principal"`
	EndingBalance   decimal.Decimal `json:"endingBalance"`
}

// PayoffPlan is the result of simulating fixed monthly payments against a
// revolving balance with compound monthly interest.
type PayoffPlan struct {
	Status         PayoffStatus    `json:"status"`
	MonthsToPayoff int             `json:"monthsToPayoff"` // 0 unless status is ok or paid
	TotalInterest  decimal.Decimal `json:"totalInterest"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	PayoffDate     *time.Time      `json:"payoffDate"`
	Schedule       []PayoffRow     `json:"schedule"`
}

// PayoffPlanner simulates credit card payoff schedules.
type PayoffPlanner struct {
	cfg config.Config
}

func NewPayoffPlanner(cfg config.Config) *PayoffPlanner {
	return &PayoffPlanner{cfg: cfg}
}

var hundred = decimal.NewFromInt(100)

// Plan simulates paying monthlyPayment against balance at the given APR
// starting from start. Interest accrues monthly and is rounded to cents
// before it compounds. The final payment is capped so the balance closes
// exactly. If the payment cannot outrun the first month's interest the
// simulation is refused with payment_too_low; if the balance survives the
// configured month cap the partial schedule is returned for display.
func (p *PayoffPlanner) Plan(balance, monthlyPayment, aprPercentage decimal.Decimal, start time.Time) PayoffPlan {
	if balance.LessThanOrEqual(decimal.Zero) {
		now := start
		return PayoffPlan{Status: PayoffPaid, PayoffDate: &now, Schedule: []PayoffRow{}}
	}

	if monthlyPayment.LessThanOrEqual(decimal.Zero) {
		return PayoffPlan{Status: PayoffInvalidPayment, Schedule: []PayoffRow{}}
	}

	monthlyRate := aprPercentage.Div(hundred).Div(decimal.NewFromInt(12))
	if monthlyRate.IsPositive() {
		firstInterest := balance.Mul(monthlyRate).Round(2)
		if monthlyPayment.LessThanOrEqual(firstInterest) {
			return PayoffPlan{Status: PayoffPaymentTooLow, Schedule: []PayoffRow{}}
		}
	}

	var (
		totalInterest decimal.Decimal
		totalPaid     decimal.Decimal
		schedule      []PayoffRow
		current       = start
	)

	for month := 1; month <= p.cfg.MaxPayoffMonths; month++ {
		interest := balance.Mul(monthlyRate).Round(2)
		afterInterest := balance.Add(interest)
		payment := decimal.Min(monthlyPayment, afterInterest).Round(2)
		principal := payment.Sub(interest).Round(2)
		ending := afterInterest.Sub(payment).Round(2)

		totalInterest = totalInterest.Add(interest)
		totalPaid = totalPaid.Add(payment)

		schedule = append(schedule, PayoffRow{
			Month:           month,
			Date:            current,
			StartingBalance: balance,
			Interest:        interest,
			Payment:         payment,
			Principal:       principal,
			EndingBalance:   decimal.Max(ending, decimal.Zero),
		})

		balance = ending
		if balance.LessThanOrEqual(decimal.Zero) {
			payoff := current
			return PayoffPlan{
				Status:         PayoffOK,
				MonthsToPayoff: month,
				TotalInterest:  totalInterest.Round(2),
				TotalPaid:      totalPaid.Round(2),
				PayoffDate:     &payoff,
				Schedule:       schedule,
			}
		}

		current = addMonths(current, 1)
	}

	return PayoffPlan{Status: PayoffMaxMonthsExceeded, Schedule: schedule}
}

// addMonths advances a date by whole months, clamping the day to the
// target month's last day (Jan 31 + 1 month is Feb 28, not Mar 3).
func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}
