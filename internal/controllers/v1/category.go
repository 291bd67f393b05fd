package v1

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/spendlens/backend/internal/httputil"
	"github.com/spendlens/backend/internal/models"
	"github.com/spendlens/backend/internal/taxonomy"
)

// RegisterCategoryRoutes registers the routes for categories with
// the RouterGroup that is passed.
func (co Controller) RegisterCategoryRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetCategories)
		r.POST("", co.CreateCategory)
	}

	// Category with ID
	{
		r.OPTIONS("/:id", co.OptionsCategoryDetail)
		r.GET("/:id", co.GetCategory)
		r.PATCH("/:id", co.UpdateCategory)
		r.DELETE("/:id", co.DeleteCategory)
	}

	// Taxonomy import
	{
		r.OPTIONS("/import-taxonomy", httputil.OptionsPost)
		r.POST("/import-taxonomy", co.ImportTaxonomy)
	}
}

// CategoryEditable contains the category fields a client can change.
type CategoryEditable struct {
	Name  *string `json:"name" example:"Coffee"`
	Color *string `json:"color" example:"#A16207"`
	Icon  *string `json:"icon" example:"coffee"`
	Note  *string `json:"note"`
}

type CategoryResponse struct {
	Data models.Category `json:"data"`
}

type CategoryListResponse struct {
	Data []models.Category `json:"data"`
}

// TaxonomyImportResponse reports what a taxonomy import changed. The
// reclassification itself runs in the background parse workers.
type TaxonomyImportResponse struct {
	CategoriesImported int `json:"categoriesImported" example:"104"`
	ReparsesStarted    int `json:"reparsesStarted" example:"3"`
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Categories
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/categories/{id} [options]
func (co Controller) OptionsCategoryDetail(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var category models.Category
	err = models.DB.First(&category, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		List categories
// @Description	Returns all categories, sorted by name
// @Tags			Categories
// @Produce		json
// @Success		200	{object}	CategoryListResponse
// @Failure		500	{object}	httpError
// @Router			/v1/categories [get]
func (co Controller) GetCategories(c *gin.Context) {
	var categories []models.Category
	err := models.DB.Order("name asc").Find(&categories).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, CategoryListResponse{Data: categories})
}

// @Summary		Get category
// @Description	Returns a specific category
// @Tags			Categories
// @Produce		json
// @Success		200	{object}	CategoryResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/categories/{id} [get]
func (co Controller) GetCategory(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var category models.Category
	err = models.DB.First(&category, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, CategoryResponse{Data: category})
}

// @Summary		Create category
// @Description	Creates a new custom category
// @Tags			Categories
// @Accept			json
// @Produce		json
// @Success		201			{object}	CategoryResponse
// @Failure		400			{object}	httpError
// @Failure		409			{object}	httpError	"A category with this name already exists"
// @Param			category	body		CategoryEditable	true	"Category"
// @Router			/v1/categories [post]
func (co Controller) CreateCategory(c *gin.Context) {
	var editable CategoryEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		e(c, err)
		return
	}

	if editable.Name == nil || *editable.Name == "" {
		e(c, errCategoryNameMissing)
		return
	}

	category := models.Category{Name: *editable.Name}
	if editable.Color != nil {
		category.Color = *editable.Color
	}
	if editable.Icon != nil {
		category.Icon = *editable.Icon
	}
	if editable.Note != nil {
		category.Note = *editable.Note
	}

	err = models.DB.Create(&category).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusCreated, CategoryResponse{Data: category})
}

// @Summary		Update category
// @Description	Updates an existing category. Only values to be updated need to be specified.
// @Tags			Categories
// @Accept			json
// @Produce		json
// @Success		200			{object}	CategoryResponse
// @Failure		400			{object}	httpError
// @Failure		404			{object}	httpError
// @Failure		409			{object}	httpError	"A category with this name already exists"
// @Param			id			path		string				true	"ID formatted as string"
// @Param			category	body		CategoryEditable	true	"Category"
// @Router			/v1/categories/{id} [patch]
func (co Controller) UpdateCategory(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var category models.Category
	err = models.DB.First(&category, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	var update CategoryEditable
	err = httputil.BindData(c, &update)
	if err != nil {
		e(c, err)
		return
	}

	if update.Name != nil && *update.Name != "" {
		category.Name = *update.Name
	}
	if update.Color != nil {
		category.Color = *update.Color
	}
	if update.Icon != nil {
		category.Icon = *update.Icon
	}
	if update.Note != nil {
		category.Note = *update.Note
	}

	err = models.DB.Save(&category).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, CategoryResponse{Data: category})
}

// @Summary		Delete category
// @Description	Deletes a category. Its transactions are kept and become uncategorized. Default categories cannot be deleted.
// @Tags			Categories
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/categories/{id} [delete]
func (co Controller) DeleteCategory(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var category models.Category
	err = models.DB.First(&category, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	err = models.DB.Delete(&category).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Import taxonomy
// @Description	Replaces the categories with the taxonomy from the uploaded CSV and reclassifies all transactions. Without a file, the configured taxonomy CSV is used.
// @Tags			Categories
// @Accept			multipart/form-data
// @Produce		json
// @Success		200		{object}	TaxonomyImportResponse
// @Failure		400		{object}	httpError
// @Param			file	formData	file	false	"Taxonomy CSV with PRIMARY and DETAILED columns"
// @Router			/v1/categories/import-taxonomy [post]
func (co Controller) ImportTaxonomy(c *gin.Context) {
	var rows []taxonomy.CSVCategory

	formFile, err := c.FormFile("file")
	if err == nil {
		f, err := formFile.Open()
		if err != nil {
			e(c, err)
			return
		}
		defer f.Close()

		rows, err = taxonomy.ReadCSV(f)
		if err != nil {
			e(c, err)
			return
		}
	} else if co.Cfg.TaxonomyCSV != "" {
		f, err := os.Open(co.Cfg.TaxonomyCSV)
		if err != nil {
			e(c, err)
			return
		}
		defer f.Close()

		rows, err = taxonomy.ReadCSV(f)
		if err != nil {
			e(c, err)
			return
		}
	} else {
		e(c, errNoFilePost)
		return
	}

	if len(rows) == 0 {
		e(c, errTaxonomyEmpty)
		return
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		// Detach all transactions before replacing the categories
		err := tx.Model(&models.Transaction{}).
			Where("category_id IS NOT NULL").
			Updates(map[string]any{"category_id": nil, "category_source": ""}).Error
		if err != nil {
			return err
		}

		err = tx.Session(&gorm.Session{SkipHooks: true}).
			Unscoped().
			Where("1 = 1").
			Delete(&models.Category{}).Error
		if err != nil {
			return err
		}

		for _, row := range rows {
			category := models.Category{
				Name:             row.Name(),
				Color:            taxonomy.Color(row.Name()),
				TaxonomyPrimary:  row.Primary,
				TaxonomyDetailed: row.Detailed,
				IsDefault:        true,
			}
			if err := tx.Create(&category).Error; err != nil {
				return err
			}
		}

		// There is always a fallback category
		var other models.Category
		err = tx.Where("name = ? OR taxonomy_detailed = ?", "Other", "Other").First(&other).Error
		if err != nil {
			return tx.Create(&models.Category{
				Name:      "Other",
				Color:     taxonomy.Color("Other"),
				IsDefault: true,
			}).Error
		}

		return nil
	})
	if err != nil {
		e(c, err)
		return
	}

	started, err := co.Service.Reclassify(c.Request.Context())
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, TaxonomyImportResponse{
		CategoriesImported: len(rows),
		ReparsesStarted:    started,
	})
}
