package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/spendlens/backend/internal/httputil"
	"github.com/spendlens/backend/internal/models"
)

// RegisterSubscriptionRoutes registers the routes for subscriptions with
// the RouterGroup that is passed.
func (co Controller) RegisterSubscriptionRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGet)
		r.GET("", co.GetSubscriptions)
	}

	// Recurrence scan
	{
		r.OPTIONS("/scan", httputil.OptionsPost)
		r.POST("/scan", co.ScanSubscriptions)
	}

	// Subscription with ID
	{
		r.OPTIONS("/:id", co.OptionsSubscriptionDetail)
		r.GET("/:id", co.GetSubscription)
		r.PATCH("/:id", co.UpdateSubscription)
		r.DELETE("/:id", co.DeleteSubscription)
	}
}

// SubscriptionEditable contains the subscription fields a client can
// change. Everything else is owned by the recurrence scan.
type SubscriptionEditable struct {
	Active        *bool                    `json:"active"`
	UserConfirmed *bool                    `json:"userConfirmed"`
	Kind          *models.SubscriptionKind `json:"kind"`
	CategoryID    *uuid.UUID               `json:"categoryId"`
}

type SubscriptionResponse struct {
	Data models.Subscription `json:"data"`
}

type SubscriptionListResponse struct {
	Data []models.Subscription `json:"data"`
}

// ScanResponse reports what a recurrence scan changed.
type ScanResponse struct {
	SubscriptionsUpserted int `json:"subscriptionsUpserted" example:"7"`
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Subscriptions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/subscriptions/{id} [options]
func (co Controller) OptionsSubscriptionDetail(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var subscription models.Subscription
	err = models.DB.First(&subscription, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		List subscriptions
// @Description	Returns all detected recurring charges, most recently seen first
// @Tags			Subscriptions
// @Produce		json
// @Success		200		{object}	SubscriptionListResponse
// @Failure		400		{object}	httpError
// @Param			active	query		bool	false	"Filter by active state"
// @Param			kind	query		string	false	"Filter by kind: subscription, installment or possible_installment"
// @Router			/v1/subscriptions [get]
func (co Controller) GetSubscriptions(c *gin.Context) {
	q := models.DB.Order("last_seen desc")

	if raw, ok := c.GetQuery("active"); ok {
		q = q.Where("active = ?", raw == "true")
	}

	if kind := c.Query("kind"); kind != "" {
		q = q.Where("kind = ?", kind)
	}

	var subscriptions []models.Subscription
	err := q.Find(&subscriptions).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, SubscriptionListResponse{Data: subscriptions})
}

// @Summary		Get subscription
// @Description	Returns a specific subscription
// @Tags			Subscriptions
// @Produce		json
// @Success		200	{object}	SubscriptionResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/subscriptions/{id} [get]
func (co Controller) GetSubscription(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var subscription models.Subscription
	err = models.DB.First(&subscription, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, SubscriptionResponse{Data: subscription})
}

// @Summary		Update subscription
// @Description	Updates the user managed fields of a subscription. Only values to be updated need to be specified.
// @Tags			Subscriptions
// @Accept			json
// @Produce		json
// @Success		200				{object}	SubscriptionResponse
// @Failure		400				{object}	httpError
// @Failure		404				{object}	httpError
// @Param			id				path		string					true	"ID formatted as string"
// @Param			subscription	body		SubscriptionEditable	true	"Subscription"
// @Router			/v1/subscriptions/{id} [patch]
func (co Controller) UpdateSubscription(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var subscription models.Subscription
	err = models.DB.First(&subscription, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	var update SubscriptionEditable
	err = httputil.BindData(c, &update)
	if err != nil {
		e(c, err)
		return
	}

	if update.Active != nil {
		subscription.Active = *update.Active
		// A manual state change counts as confirmation so the next
		// scan does not undo it
		subscription.UserConfirmed = true
	}
	if update.UserConfirmed != nil {
		subscription.UserConfirmed = *update.UserConfirmed
	}
	if update.Kind != nil {
		subscription.Kind = *update.Kind
	}
	if update.CategoryID != nil {
		if *update.CategoryID == uuid.Nil {
			subscription.CategoryID = nil
		} else {
			if err := categoryExists(*update.CategoryID); err != nil {
				e(c, err)
				return
			}
			subscription.CategoryID = update.CategoryID
		}
	}

	err = models.DB.Save(&subscription).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, SubscriptionResponse{Data: subscription})
}

// @Summary		Delete subscription
// @Description	Deletes a subscription. A future recurrence scan may detect it again, deactivate it instead to suppress it permanently.
// @Tags			Subscriptions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/subscriptions/{id} [delete]
func (co Controller) DeleteSubscription(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var subscription models.Subscription
	err = models.DB.First(&subscription, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	err = models.DB.Delete(&subscription).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Scan for recurring charges
// @Description	Runs the recurrence scan over the whole ledger and creates or updates subscriptions for the recurring charges found
// @Tags			Subscriptions
// @Produce		json
// @Success		200	{object}	ScanResponse
// @Failure		500	{object}	httpError
// @Router			/v1/subscriptions/scan [post]
func (co Controller) ScanSubscriptions(c *gin.Context) {
	count, err := co.Detector.Scan()
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, ScanResponse{SubscriptionsUpserted: count})
}
