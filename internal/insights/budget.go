package insights

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spendlens/backend/internal/config"
	"github.com/spendlens/backend/internal/models"
	"github.com/spendlens/backend/internal/types"
)

// BudgetStatus is one budget's progress within a month.
type BudgetStatus struct {
	BudgetID          uuid.UUID          `json:"budgetId"`
	Scope             models.BudgetScope `json:"scope"`
	CategoryID        *uuid.UUID         `json:"categoryId"`
	CategoryName      string             `json:"categoryName,omitempty"`
	CategoryColor     string             `json:"categoryColor,omitempty"`
	MonthlyLimit      decimal.Decimal    `json:"monthlyLimit"`
	Spent             decimal.Decimal    `json:"spent"`
	Percent           float64            `json:"percent"`
	ThresholdsCrossed []int              `json:"thresholdsCrossed"`
}

// BudgetTracker computes budget progress from the ledger. It holds no
// state, threshold crossings are recomputed fresh on every call.
type BudgetTracker struct {
	cfg config.Config
}

func NewBudgetTracker(cfg config.Config) *BudgetTracker {
	return &BudgetTracker{cfg: cfg}
}

// Status returns the progress of every configured budget for the month.
// Spent is the sum of non-excluded spend posted in that month; the total
// scope sums across all categories. Over budget entries sort first.
func (b *BudgetTracker) Status(month types.Month) ([]BudgetStatus, error) {
	var budgets []models.Budget
	err := models.DB.Preload("Category").Find(&budgets).Error
	if err != nil {
		return nil, err
	}

	start := time.Time(month)
	end := time.Time(month.AddDate(0, 1))

	items := make([]BudgetStatus, 0, len(budgets))
	for _, budget := range budgets {
		query := models.DB.Model(&models.Transaction{}).
			Where("posted_date >= ? AND posted_date < ?", start, end).
			Where("excluded = ?", false).
			Where("amount > 0")
		if budget.Scope == models.ScopeCategory && budget.CategoryID != nil {
			query = query.Where("category_id = ?", budget.CategoryID)
		}

		var spent decimal.NullDecimal
		err = query.Select("SUM(amount)").Scan(&spent).Error
		if err != nil {
			return nil, err
		}
		if !spent.Valid {
			spent.Decimal = decimal.Zero
		}

		percent := 0.0
		if budget.MonthlyLimit.IsPositive() && !spent.Decimal.IsZero() {
			percent, _ = spent.Decimal.Div(budget.MonthlyLimit).Mul(decimal.NewFromInt(100)).Round(1).Float64()
		}

		crossed := make([]int, 0, len(b.cfg.BudgetThresholds))
		for _, threshold := range b.cfg.BudgetThresholds {
			if percent >= float64(threshold) {
				crossed = append(crossed, threshold)
			}
		}

		status := BudgetStatus{
			BudgetID:          budget.ID,
			Scope:             budget.Scope,
			CategoryID:        budget.CategoryID,
			MonthlyLimit:      budget.MonthlyLimit,
			Spent:             spent.Decimal,
			Percent:           percent,
			ThresholdsCrossed: crossed,
		}
		if budget.CategoryID != nil {
			status.CategoryName = budget.Category.Name
			status.CategoryColor = budget.Category.Color
		}

		items = append(items, status)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Percent > items[j].Percent })

	return items, nil
}
