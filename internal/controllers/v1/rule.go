package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/spendlens/backend/internal/httputil"
	"github.com/spendlens/backend/internal/models"
)

// RegisterRuleRoutes registers the routes for category rules with
// the RouterGroup that is passed.
func (co Controller) RegisterRuleRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetRules)
		r.POST("", co.CreateRule)
	}

	// Rule with ID
	{
		r.OPTIONS("/:id", co.OptionsRuleDetail)
		r.DELETE("/:id", co.DeleteRule)
	}
}

// RuleEditable contains the fields of a category rule a client can set.
type RuleEditable struct {
	Pattern    string    `json:"pattern" example:"*zomato*"`
	CategoryID uuid.UUID `json:"categoryId" example:"1b6cdc23-ffc5-447e-a3a5-3a21f107b0ae"`
	Priority   int       `json:"priority" example:"10"`
}

type RuleResponse struct {
	Data models.CategoryRule `json:"data"`
}

type RuleListResponse struct {
	Data []models.CategoryRule `json:"data"`
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Rules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/rules/{id} [options]
func (co Controller) OptionsRuleDetail(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var rule models.CategoryRule
	err = models.DB.First(&rule, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	httputil.OptionsDelete(c)
}

// @Summary		List rules
// @Description	Returns all category rules in match order
// @Tags			Rules
// @Produce		json
// @Success		200	{object}	RuleListResponse
// @Failure		500	{object}	httpError
// @Router			/v1/rules [get]
func (co Controller) GetRules(c *gin.Context) {
	var rules []models.CategoryRule
	err := models.DB.Order("priority asc, created_at asc").Find(&rules).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, RuleListResponse{Data: rules})
}

// @Summary		Create rule
// @Description	Creates a category rule. Rules assign a category to every current and future transaction whose description or merchant matches the glob pattern, overriding the category suggested during parsing.
// @Tags			Rules
// @Accept			json
// @Produce		json
// @Success		201		{object}	RuleResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError	"The category does not exist"
// @Failure		409		{object}	httpError	"A rule with this pattern already exists"
// @Param			rule	body		RuleEditable	true	"Rule"
// @Router			/v1/rules [post]
func (co Controller) CreateRule(c *gin.Context) {
	var editable RuleEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		e(c, err)
		return
	}

	if editable.Pattern == "" {
		e(c, errRulePatternMissing)
		return
	}

	if err := categoryExists(editable.CategoryID); err != nil {
		e(c, err)
		return
	}

	rule := models.CategoryRule{
		Pattern:    editable.Pattern,
		CategoryID: editable.CategoryID,
		Priority:   editable.Priority,
	}

	err = models.DB.Create(&rule).Error
	if err != nil {
		e(c, err)
		return
	}

	// Apply the new rule to the existing ledger
	_, err = co.Service.ApplyRules(c.Request.Context())
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusCreated, RuleResponse{Data: rule})
}

// @Summary		Delete rule
// @Description	Deletes a category rule. Categories already assigned by the rule are kept.
// @Tags			Rules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/rules/{id} [delete]
func (co Controller) DeleteRule(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var rule models.CategoryRule
	err = models.DB.First(&rule, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	err = models.DB.Delete(&rule).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
