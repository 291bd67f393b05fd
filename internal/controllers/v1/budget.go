package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spendlens/backend/internal/httputil"
	"github.com/spendlens/backend/internal/insights"
	"github.com/spendlens/backend/internal/models"
	"github.com/spendlens/backend/internal/types"
)

// RegisterBudgetRoutes registers the routes for budgets with
// the RouterGroup that is passed.
func (co Controller) RegisterBudgetRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetBudgets)
		r.POST("", co.CreateBudget)
	}

	// Budget status
	{
		r.OPTIONS("/status", httputil.OptionsGet)
		r.GET("/status", co.GetBudgetStatus)
	}

	// Budget with ID
	{
		r.OPTIONS("/:id", co.OptionsBudgetDetail)
		r.GET("/:id", co.GetBudget)
		r.PATCH("/:id", co.UpdateBudget)
		r.DELETE("/:id", co.DeleteBudget)
	}
}

// BudgetEditable contains the fields of a budget a client can set.
type BudgetEditable struct {
	Scope        models.BudgetScope `json:"scope" example:"category"`
	CategoryID   *uuid.UUID         `json:"categoryId"`
	MonthlyLimit decimal.Decimal    `json:"monthlyLimit" example:"15000"`
}

type BudgetResponse struct {
	Data models.Budget `json:"data"`
}

type BudgetListResponse struct {
	Data []models.Budget `json:"data"`
}

type BudgetStatusResponse struct {
	Data []insights.BudgetStatus `json:"data"`
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/budgets/{id} [options]
func (co Controller) OptionsBudgetDetail(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var budget models.Budget
	err = models.DB.First(&budget, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		List budgets
// @Description	Returns all budgets
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	BudgetListResponse
// @Failure		500	{object}	httpError
// @Router			/v1/budgets [get]
func (co Controller) GetBudgets(c *gin.Context) {
	var budgets []models.Budget
	err := models.DB.Order("created_at asc").Find(&budgets).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetListResponse{Data: budgets})
}

// @Summary		Get budget
// @Description	Returns a specific budget
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	BudgetResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/budgets/{id} [get]
func (co Controller) GetBudget(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var budget models.Budget
	err = models.DB.First(&budget, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Data: budget})
}

// @Summary		Create budget
// @Description	Creates a budget. Only one budget with total scope and one budget per category can exist.
// @Tags			Budgets
// @Accept			json
// @Produce		json
// @Success		201		{object}	BudgetResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError	"The category does not exist"
// @Failure		409		{object}	httpError	"A budget for this scope and category already exists"
// @Param			budget	body		BudgetEditable	true	"Budget"
// @Router			/v1/budgets [post]
func (co Controller) CreateBudget(c *gin.Context) {
	var editable BudgetEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		e(c, err)
		return
	}

	if editable.Scope == "" {
		editable.Scope = models.ScopeCategory
	}

	if editable.CategoryID != nil && *editable.CategoryID != uuid.Nil {
		if err := categoryExists(*editable.CategoryID); err != nil {
			e(c, err)
			return
		}
	}

	budget := models.Budget{
		Scope:        editable.Scope,
		CategoryID:   editable.CategoryID,
		MonthlyLimit: editable.MonthlyLimit,
	}

	err = models.DB.Create(&budget).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusCreated, BudgetResponse{Data: budget})
}

// @Summary		Update budget
// @Description	Updates the monthly limit of a budget
// @Tags			Budgets
// @Accept			json
// @Produce		json
// @Success		200		{object}	BudgetResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Param			id		path		string			true	"ID formatted as string"
// @Param			budget	body		BudgetEditable	true	"Budget"
// @Router			/v1/budgets/{id} [patch]
func (co Controller) UpdateBudget(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var budget models.Budget
	err = models.DB.First(&budget, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	var update BudgetEditable
	err = httputil.BindData(c, &update)
	if err != nil {
		e(c, err)
		return
	}

	if !update.MonthlyLimit.IsZero() {
		budget.MonthlyLimit = update.MonthlyLimit
	}

	err = models.DB.Save(&budget).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Data: budget})
}

// @Summary		Delete budget
// @Description	Deletes a budget
// @Tags			Budgets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/budgets/{id} [delete]
func (co Controller) DeleteBudget(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var budget models.Budget
	err = models.DB.First(&budget, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	err = models.DB.Delete(&budget).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Budget status
// @Description	Returns the spending against every budget for the given month, most used budgets first
// @Tags			Budgets
// @Produce		json
// @Success		200		{object}	BudgetStatusResponse
// @Failure		400		{object}	httpError
// @Param			month	query		string	false	"The month, formatted as YYYY-MM. Defaults to the current month."
// @Router			/v1/budgets/status [get]
func (co Controller) GetBudgetStatus(c *gin.Context) {
	month := types.MonthOf(time.Now())
	if raw := c.Query("month"); raw != "" {
		var err error
		month, err = types.ParseMonth(raw)
		if err != nil {
			e(c, errMonthNotParseable)
			return
		}
	}

	data, err := co.Budgets.Status(month)
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetStatusResponse{Data: data})
}
