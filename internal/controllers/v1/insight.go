package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/spendlens/backend/internal/httputil"
	"github.com/spendlens/backend/internal/insights"
)

// RegisterInsightRoutes registers the routes for spending insights with
// the RouterGroup that is passed.
func (co Controller) RegisterInsightRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("/anomalies", httputil.OptionsGet)
		r.GET("/anomalies", co.GetAnomalies)
		r.OPTIONS("/anomalies/:id/dismiss", httputil.OptionsPost)
		r.POST("/anomalies/:id/dismiss", co.DismissAnomaly)
	}

	{
		r.OPTIONS("/fees", httputil.OptionsGet)
		r.GET("/fees", co.GetFees)
	}
}

type AnomalyListResponse struct {
	Data []insights.Anomaly `json:"data"`
}

type FeeReportResponse struct {
	Data insights.FeeReport `json:"data"`
}

// @Summary		List anomalies
// @Description	Returns transactions whose amount is unusual for their category or merchant, largest first
// @Tags			Insights
// @Produce		json
// @Success		200			{object}	AnomalyListResponse
// @Failure		400			{object}	httpError
// @Param			minAmount	query		string	false	"Only report anomalies at or above this amount"
// @Router			/v1/insights/anomalies [get]
func (co Controller) GetAnomalies(c *gin.Context) {
	minAmount := decimal.Zero
	if raw := c.Query("minAmount"); raw != "" {
		var err error
		minAmount, err = decimal.NewFromString(raw)
		if err != nil {
			e(c, errAmountNotParseable)
			return
		}
	}

	data, err := co.Anomalies.Detect(minAmount)
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, AnomalyListResponse{Data: data})
}

// @Summary		Dismiss anomaly
// @Description	Marks the transaction so it is no longer reported as an anomaly
// @Tags			Insights
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"Transaction ID formatted as string"
// @Router			/v1/insights/anomalies/{id}/dismiss [post]
func (co Controller) DismissAnomaly(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	err = co.Anomalies.Dismiss(id)
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Fee report
// @Description	Returns all fee, tax and interest charges in the ledger with a breakdown by fee type
// @Tags			Insights
// @Produce		json
// @Success		200	{object}	FeeReportResponse
// @Failure		500	{object}	httpError
// @Router			/v1/insights/fees [get]
func (co Controller) GetFees(c *gin.Context) {
	data, err := insights.AnalyzeFees()
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, FeeReportResponse{Data: data})
}
