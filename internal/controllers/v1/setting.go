package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spendlens/backend/internal/httputil"
	"github.com/spendlens/backend/internal/models"
)

// RegisterSettingRoutes registers the routes for settings with
// the RouterGroup that is passed.
func (co Controller) RegisterSettingRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGet)
		r.GET("", co.GetSettings)
	}

	// Setting with key
	{
		r.OPTIONS("/:key", httputil.OptionsGetPut)
		r.GET("/:key", co.GetSetting)
		r.PUT("/:key", co.UpdateSetting)
	}
}

// SettingEditable contains the setting fields a client can set.
type SettingEditable struct {
	Value     string `json:"value" example:"42"`
	ValueType string `json:"valueType" example:"number"`
}

type SettingResponse struct {
	Data models.AppSetting `json:"data"`
}

type SettingListResponse struct {
	Data []models.AppSetting `json:"data"`
}

// @Summary		List settings
// @Description	Returns all settings
// @Tags			Settings
// @Produce		json
// @Success		200	{object}	SettingListResponse
// @Failure		500	{object}	httpError
// @Router			/v1/settings [get]
func (co Controller) GetSettings(c *gin.Context) {
	var settings []models.AppSetting
	err := models.DB.Order("key asc").Find(&settings).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, SettingListResponse{Data: settings})
}

// @Summary		Get setting
// @Description	Returns a specific setting
// @Tags			Settings
// @Produce		json
// @Success		200	{object}	SettingResponse
// @Failure		404	{object}	httpError
// @Param			key	path		string	true	"Setting key"
// @Router			/v1/settings/{key} [get]
func (co Controller) GetSetting(c *gin.Context) {
	setting, err := models.GetSetting(models.DB, c.Param("key"))
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, SettingResponse{Data: setting})
}

// @Summary		Update setting
// @Description	Creates or replaces a setting
// @Tags			Settings
// @Accept			json
// @Produce		json
// @Success		200		{object}	SettingResponse
// @Failure		400		{object}	httpError
// @Param			key		path		string			true	"Setting key"
// @Param			setting	body		SettingEditable	true	"Setting"
// @Router			/v1/settings/{key} [put]
func (co Controller) UpdateSetting(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		e(c, errSettingKeyMissing)
		return
	}

	var editable SettingEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		e(c, err)
		return
	}

	setting := models.AppSetting{
		Key:       key,
		Value:     editable.Value,
		ValueType: editable.ValueType,
	}

	err = models.UpsertSetting(models.DB, setting)
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, SettingResponse{Data: setting})
}
