package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/spendlens/backend/internal/models"
)

// @Summary		Delete everything
// @Description	Permanently deletes all resources
// @Tags			v1
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			confirm	query		string	false	"Confirmation to delete all resources. Must have the value 'yes-please-delete-everything'"
// @Router			/v1 [delete]
func (co Controller) Cleanup(c *gin.Context) {
	var params struct {
		Confirm string `form:"confirm"`
	}

	err := c.Bind(&params)
	if err != nil || params.Confirm != "yes-please-delete-everything" {
		e(c, errCleanupConfirmation)
		return
	}

	// The order is important here since there are foreign keys to consider!
	tables := []any{
		models.Transaction{},
		models.ParseJob{},
		models.Statement{},
		models.Subscription{},
		models.Budget{},
		models.CategoryRule{},
		models.Category{},
		models.AppSetting{},
	}

	// Use a transaction so that we can roll back if errors happen
	tx := models.DB.Begin()

	for _, table := range tables {
		err := tx.Session(&gorm.Session{SkipHooks: true}).Unscoped().Where("true").Delete(&table).Error
		if err != nil {
			tx.Rollback()
			e(c, models.ErrGeneral)
			return
		}
	}

	tx.Commit()
	c.JSON(http.StatusNoContent, nil)
}
