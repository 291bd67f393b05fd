package v1

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spendlens/backend/internal/httputil"
	"github.com/spendlens/backend/internal/insights"
	"github.com/spendlens/backend/internal/models"
)

// RegisterPlannerRoutes registers the routes for financial planning with
// the RouterGroup that is passed.
func (co Controller) RegisterPlannerRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("/upcoming-bills", httputil.OptionsGet)
		r.GET("/upcoming-bills", co.GetUpcomingBills)
	}

	{
		r.OPTIONS("/cashflow-forecast", httputil.OptionsGet)
		r.GET("/cashflow-forecast", co.GetCashflowForecast)
	}

	{
		r.OPTIONS("/payoff-plan", httputil.OptionsPost)
		r.POST("/payoff-plan", co.CreatePayoffPlan)
	}

	// Savings goals
	{
		r.OPTIONS("/goals", httputil.OptionsGetPost)
		r.GET("/goals", co.GetGoals)
		r.POST("/goals", co.CreateGoal)
		r.OPTIONS("/goals/:id", co.OptionsGoalDetail)
		r.PATCH("/goals/:id", co.UpdateGoal)
		r.DELETE("/goals/:id", co.DeleteGoal)
	}
}

// PayoffRequest is the input for a payoff plan. A missing APR falls back
// to the configured APR setting.
type PayoffRequest struct {
	Balance        decimal.Decimal  `json:"balance" example:"84500"`
	MonthlyPayment decimal.Decimal  `json:"monthlyPayment" example:"10000"`
	APRPercentage  *decimal.Decimal `json:"aprPercentage" example:"42"`
}

// Goal is a savings goal. Goals live in the settings store, not in their
// own table.
type Goal struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name" example:"Emergency fund"`
	TargetAmount decimal.Decimal `json:"targetAmount" example:"300000"`
	SavedAmount  decimal.Decimal `json:"savedAmount" example:"120000"`
	TargetDate   *time.Time      `json:"targetDate"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// GoalEditable contains the goal fields a client can change.
type GoalEditable struct {
	Name         *string          `json:"name"`
	TargetAmount *decimal.Decimal `json:"targetAmount"`
	SavedAmount  *decimal.Decimal `json:"savedAmount"`
	TargetDate   *time.Time       `json:"targetDate"`
}

type UpcomingBillsResponse struct {
	Data insights.UpcomingBills `json:"data"`
}

type CashflowForecastResponse struct {
	Data insights.CashflowForecast `json:"data"`
}

type PayoffPlanResponse struct {
	Data insights.PayoffPlan `json:"data"`
}

type GoalResponse struct {
	Data Goal `json:"data"`
}

type GoalListResponse struct {
	Data []Goal `json:"data"`
}

// daysWindow parses the "days" query parameter, clamped to a sane window.
func daysWindow(c *gin.Context, fallback int) (int, error) {
	days := fallback
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, errDaysNotParseable
		}
		days = parsed
	}

	if days < 7 {
		days = 7
	}
	if days > 120 {
		days = 120
	}

	return days, nil
}

// @Summary		Upcoming bills
// @Description	Returns the recurring charges expected within the given window, soonest first
// @Tags			Planner
// @Produce		json
// @Success		200		{object}	UpcomingBillsResponse
// @Failure		400		{object}	httpError
// @Param			days	query		int	false	"Window in days. Defaults to 30, at least 7, at most 120."
// @Router			/v1/planner/upcoming-bills [get]
func (co Controller) GetUpcomingBills(c *gin.Context) {
	days, err := daysWindow(c, 30)
	if err != nil {
		e(c, err)
		return
	}

	data, err := co.Forecaster.UpcomingBills(days, time.Now().In(time.UTC))
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, UpcomingBillsResponse{Data: data})
}

// @Summary		Cashflow forecast
// @Description	Projects the daily outflow and remaining balance over the given window from the recurring charges and the trailing variable spend
// @Tags			Planner
// @Produce		json
// @Success		200				{object}	CashflowForecastResponse
// @Failure		400				{object}	httpError
// @Param			days			query		int		false	"Window in days. Defaults to 30, at least 7, at most 120."
// @Param			startingCash	query		string	false	"The cash available at the start of the window"
// @Router			/v1/planner/cashflow-forecast [get]
func (co Controller) GetCashflowForecast(c *gin.Context) {
	days, err := daysWindow(c, 30)
	if err != nil {
		e(c, err)
		return
	}

	startingCash := decimal.Zero
	if raw := c.Query("startingCash"); raw != "" {
		startingCash, err = decimal.NewFromString(raw)
		if err != nil {
			e(c, errAmountNotParseable)
			return
		}
	}

	data, err := co.Forecaster.Forecast(days, startingCash, time.Now().In(time.UTC))
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, CashflowForecastResponse{Data: data})
}

// @Summary		Payoff plan
// @Description	Returns the month by month amortization schedule for paying off the given balance. Without an APR in the request, the configured APR setting is used.
// @Tags			Planner
// @Accept			json
// @Produce		json
// @Success		200		{object}	PayoffPlanResponse
// @Failure		400		{object}	httpError
// @Param			plan	body		PayoffRequest	true	"Payoff parameters"
// @Router			/v1/planner/payoff-plan [post]
func (co Controller) CreatePayoffPlan(c *gin.Context) {
	var request PayoffRequest
	err := httputil.BindData(c, &request)
	if err != nil {
		e(c, err)
		return
	}

	apr := models.SettingDecimal(models.DB, models.SettingAPR, decimal.NewFromInt(36))
	if request.APRPercentage != nil {
		apr = *request.APRPercentage
	}

	plan := co.Payoff.Plan(request.Balance, request.MonthlyPayment, apr, time.Now().In(time.UTC))
	c.JSON(http.StatusOK, PayoffPlanResponse{Data: plan})
}

func loadGoals() ([]Goal, error) {
	setting, err := models.GetSetting(models.DB, models.SettingSavingsGoals)
	if err != nil {
		// No goals saved yet
		return []Goal{}, nil
	}

	var goals []Goal
	if err := json.Unmarshal([]byte(setting.Value), &goals); err != nil {
		return nil, httputil.ErrInvalidBody
	}

	return goals, nil
}

func saveGoals(goals []Goal) error {
	value, err := json.Marshal(goals)
	if err != nil {
		return err
	}

	return models.UpsertSetting(models.DB, models.AppSetting{
		Key:       models.SettingSavingsGoals,
		Value:     string(value),
		ValueType: "json",
	})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Planner
// @Success		204
// @Router			/v1/planner/goals/{id} [options]
func (co Controller) OptionsGoalDetail(c *gin.Context) {
	httputil.OptionsPatchDelete(c)
}

// @Summary		List savings goals
// @Description	Returns all savings goals
// @Tags			Planner
// @Produce		json
// @Success		200	{object}	GoalListResponse
// @Failure		500	{object}	httpError
// @Router			/v1/planner/goals [get]
func (co Controller) GetGoals(c *gin.Context) {
	goals, err := loadGoals()
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, GoalListResponse{Data: goals})
}

// @Summary		Create savings goal
// @Description	Creates a savings goal
// @Tags			Planner
// @Accept			json
// @Produce		json
// @Success		201		{object}	GoalResponse
// @Failure		400		{object}	httpError
// @Param			goal	body		GoalEditable	true	"Goal"
// @Router			/v1/planner/goals [post]
func (co Controller) CreateGoal(c *gin.Context) {
	var editable GoalEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		e(c, err)
		return
	}

	if editable.Name == nil || *editable.Name == "" || editable.TargetAmount == nil || !editable.TargetAmount.IsPositive() {
		e(c, errGoalIncomplete)
		return
	}

	goals, err := loadGoals()
	if err != nil {
		e(c, err)
		return
	}

	goal := Goal{
		ID:           uuid.New(),
		Name:         *editable.Name,
		TargetAmount: *editable.TargetAmount,
		TargetDate:   editable.TargetDate,
		CreatedAt:    time.Now().In(time.UTC),
	}
	if editable.SavedAmount != nil {
		goal.SavedAmount = *editable.SavedAmount
	}

	goals = append(goals, goal)
	if err := saveGoals(goals); err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusCreated, GoalResponse{Data: goal})
}

// @Summary		Update savings goal
// @Description	Updates a savings goal. Only values to be updated need to be specified.
// @Tags			Planner
// @Accept			json
// @Produce		json
// @Success		200		{object}	GoalResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Param			id		path		string			true	"ID formatted as string"
// @Param			goal	body		GoalEditable	true	"Goal"
// @Router			/v1/planner/goals/{id} [patch]
func (co Controller) UpdateGoal(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var update GoalEditable
	err = httputil.BindData(c, &update)
	if err != nil {
		e(c, err)
		return
	}

	goals, err := loadGoals()
	if err != nil {
		e(c, err)
		return
	}

	for i := range goals {
		if goals[i].ID != id {
			continue
		}

		if update.Name != nil && *update.Name != "" {
			goals[i].Name = *update.Name
		}
		if update.TargetAmount != nil && update.TargetAmount.IsPositive() {
			goals[i].TargetAmount = *update.TargetAmount
		}
		if update.SavedAmount != nil {
			goals[i].SavedAmount = *update.SavedAmount
		}
		if update.TargetDate != nil {
			goals[i].TargetDate = update.TargetDate
		}

		if err := saveGoals(goals); err != nil {
			e(c, err)
			return
		}

		c.JSON(http.StatusOK, GoalResponse{Data: goals[i]})
		return
	}

	e(c, errNoGoal)
}

// @Summary		Delete savings goal
// @Description	Deletes a savings goal
// @Tags			Planner
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/planner/goals/{id} [delete]
func (co Controller) DeleteGoal(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	goals, err := loadGoals()
	if err != nil {
		e(c, err)
		return
	}

	kept := make([]Goal, 0, len(goals))
	for _, goal := range goals {
		if goal.ID != id {
			kept = append(kept, goal)
		}
	}

	if len(kept) == len(goals) {
		e(c, errNoGoal)
		return
	}

	if err := saveGoals(kept); err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
